// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the framed value codec described by the
// protocol: a self-describing, length-prefixed wire format with a small,
// fixed set of type tags, plus the Command type built on top of it.
package wire

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the discriminant of a Value. Its integer order is also the
// primary key of the total order required by the protocol (§4.1): two
// Values of different Kind compare by Kind first.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBigNumber
	KindError
	KindString
	KindBytes
	KindArray
	KindMap
	KindSet
	KindAttribute
	KindPush
	// KindDone is the internal sentinel (spec §3): a Handler returning a
	// Done Value tells the runtime it already wrote its own response.
	// It MUST NOT be encoded.
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBigNumber:
		return "big-number"
	case KindError:
		return "error"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindAttribute:
		return "attribute"
	case KindPush:
		return "push"
	case KindDone:
		return "done"
	default:
		return "unknown"
	}
}

// Float is a total-order newtype over float64 so that floats can be used
// as Map keys and Set elements (spec §3: "Floats are wrapped in a total
// order newtype"). All NaN payloads normalise to one canonical value so
// that, per the protocol's invariant, NaN == NaN.
type Float struct{ v float64 }

// NewFloat normalises NaN and wraps f.
func NewFloat(f float64) Float {
	if math.IsNaN(f) {
		return Float{v: math.NaN()}
	}
	return Float{v: f}
}

// Float64 unwraps the underlying value.
func (f Float) Float64() float64 { return f.v }

// orderKey maps a float64 onto a uint64 so that unsigned comparison of
// the keys matches the IEEE-754 total order (NaN included, consistently
// ordered after +Inf since we never need it to compare meaningfully
// against non-NaN values beyond stability).
func (f Float) orderKey() uint64 {
	bits := math.Float64bits(f.v)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

func compareFloat(a, b Float) int {
	ak, bk := a.orderKey(), b.orderKey()
	switch {
	case ak < bk:
		return -1
	case ak > bk:
		return 1
	default:
		return 0
	}
}

// MapEntry is one key/value pair of a Map or the metadata list of an
// Attribute.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is the tagged sum described by spec §3: 13 on-wire variants plus
// the internal Done sentinel. The zero Value is Null.
type Value struct {
	kind Kind

	b     bool
	i     int64
	f     Float
	s     string   // String / Error / BigNumber payload
	by    []byte   // Bytes payload
	arr   []Value  // Array elements, or Push payload (name held in s)
	pairs []MapEntry // Map entries (sorted), or Attribute metadata (sorted)
	inner []Value  // Attribute's wrapped inner value (len 1) - slice so Value stays comparable-by-value-free

	// verbatimFormat records the 4-byte format tag of a decoded
	// VerbatimString frame (spec §3, §9 D.5). It plays no part in
	// equality or ordering; it exists only so a caller can inspect it.
	verbatimFormat string
	hasVerbatim    bool
}

// Null is the Null Value.
var Null = Value{kind: KindNull}

// Done is the internal sentinel. It MUST NOT be passed to Encoder.Encode.
var Done = Value{kind: KindDone}

// NewBool builds a Bool Value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt builds an Int Value.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloatValue builds a Float Value.
func NewFloatValue(f float64) Value { return Value{kind: KindFloat, f: NewFloat(f)} }

// NewBigNumber builds a BigNumber Value. The decimal text is carried
// verbatim; the protocol treats it as an opaque ASCII payload.
func NewBigNumber(decimal string) Value { return Value{kind: KindBigNumber, s: decimal} }

// NewError builds an Error Value.
func NewError(msg string) Value { return Value{kind: KindError, s: msg} }

// Errorf builds an Error Value with fmt.Sprintf-style formatting.
func Errorf(format string, args ...interface{}) Value {
	return NewError(fmt.Sprintf(format, args...))
}

// NewString builds a String Value.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// OK is the conventional simple-string success reply.
func OK() Value { return NewString("OK") }

// NewBytes builds a Bytes Value.
func NewBytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, by: cp}
}

// NewArray builds an Array Value.
func NewArray(values ...Value) Value {
	return Value{kind: KindArray, arr: append([]Value(nil), values...)}
}

// NewMap builds a Map Value. Entries are stored sorted by key order
// (spec §3: "Maps and sets are ordered deterministically") so that two
// Maps built from the same entries in any insertion order are Equal and
// encode identically.
func NewMap(entries ...MapEntry) Value {
	return Value{kind: KindMap, pairs: sortedEntries(entries)}
}

// NewSet builds a Set Value. Duplicate elements (by structural equality)
// collapse to one, matching a mathematical set / Rust's BTreeSet.
func NewSet(values ...Value) Value {
	return Value{kind: KindSet, pairs: nil, arr: sortedUniqueValues(values)}
}

// NewAttribute builds an Attribute Value: a metadata map annotating an
// inner value (spec §3, §9). The core decoder may choose to strip
// attributes transparently; see Decoder's PreserveAttributes option.
func NewAttribute(meta []MapEntry, innerValue Value) Value {
	return Value{kind: KindAttribute, pairs: sortedEntries(meta), inner: []Value{innerValue}}
}

// NewPush builds a Push Value: an unsolicited frame of the form
// `>N\r\n<kind>...`. Added per SPEC_FULL §D.6 so a Handler that streams a
// response (returning Done after writing through the Client) has a
// concrete helper for building the frame it writes.
func NewPush(kind string, values ...Value) Value {
	return Value{kind: KindPush, s: kind, arr: append([]Value(nil), values...)}
}

// Kind reports the variant discriminant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null Value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// VerbatimFormat returns the 4-byte format tag carried by a Value decoded
// from a VerbatimString frame, and whether one was present.
func (v Value) VerbatimFormat() (string, bool) { return v.verbatimFormat, v.hasVerbatim }

func (v Value) withVerbatim(tag string) Value {
	v.verbatimFormat = tag
	v.hasVerbatim = true
	return v
}

// --- permissive accessor views (spec §4.1) ---

// AsBool returns the bool payload if v is a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// AsInt accepts Int, Float (truncating) and String (if it parses).
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		return int64(v.f.Float64()), true
	case KindString:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// AsFloat is symmetric with AsInt: it accepts Float, Int, and parseable
// String.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f.Float64(), true
	case KindInt:
		return float64(v.i), true
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsString returns the payload for String, Error and BigNumber Values.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString, KindError, KindBigNumber:
		return v.s, true
	default:
		return "", false
	}
}

// AsBytes returns the payload for a Bytes Value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind == KindBytes {
		return v.by, true
	}
	return nil, false
}

// AsArray returns the elements of an Array or Push Value.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind == KindArray || v.kind == KindPush {
		return v.arr, true
	}
	return nil, false
}

// AsMap returns the sorted entries of a Map Value.
func (v Value) AsMap() ([]MapEntry, bool) {
	if v.kind == KindMap {
		return v.pairs, true
	}
	return nil, false
}

// AsSet returns the sorted elements of a Set Value.
func (v Value) AsSet() ([]Value, bool) {
	if v.kind == KindSet {
		return v.arr, true
	}
	return nil, false
}

// AsAttribute returns the metadata entries and inner value of an
// Attribute Value.
func (v Value) AsAttribute() ([]MapEntry, Value, bool) {
	if v.kind == KindAttribute && len(v.inner) == 1 {
		return v.pairs, v.inner[0], true
	}
	return nil, Value{}, false
}

// AsPush returns the kind name and payload of a Push Value.
func (v Value) AsPush() (string, []Value, bool) {
	if v.kind == KindPush {
		return v.s, v.arr, true
	}
	return "", nil, false
}

// AsError returns the message of an Error Value.
func (v Value) AsError() (string, bool) {
	if v.kind == KindError {
		return v.s, true
	}
	return "", false
}
