// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// Encoder writes Values to a byte stream in the wire format (spec §4.2).
// It never decides short-vs-blob on its own input shape beyond the one
// rule the protocol specifies: a String or Error containing neither CR
// nor LF is written as its short (simple) form, otherwise as its blob
// form. Callers never choose the frame shape directly.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes v. Encoding the Done sentinel is a programmer error.
func (e *Encoder) Encode(v Value) error {
	if v.kind == KindDone {
		return ErrInternal("wire: Done is not an encodable value")
	}
	if err := e.encode(v); err != nil {
		return err
	}
	return nil
}

// Flush pushes any buffered bytes to the underlying writer.
func (e *Encoder) Flush() error {
	if err := e.w.Flush(); err != nil {
		return errIO(err)
	}
	return nil
}

func (e *Encoder) encode(v Value) error {
	switch v.kind {
	case KindNull:
		return e.writeLine('_', "")
	case KindBool:
		if v.b {
			return e.writeLine('#', "t")
		}
		return e.writeLine('#', "f")
	case KindInt:
		return e.writeLine(':', strconv.FormatInt(v.i, 10))
	case KindFloat:
		return e.writeLine(',', formatFloat(v.f.Float64()))
	case KindBigNumber:
		return e.writeLine('(', v.s)
	case KindError:
		return e.encodeStringOrError('-', '!', v.s)
	case KindString:
		if v.hasVerbatim {
			return e.writeVerbatim(v.verbatimFormat, []byte(v.s))
		}
		return e.encodeStringOrError('+', '$', v.s)
	case KindBytes:
		if v.hasVerbatim {
			return e.writeVerbatim(v.verbatimFormat, v.by)
		}
		return e.writeBlob('$', v.by)
	case KindArray:
		return e.encodeArray(v.arr)
	case KindMap:
		return e.encodeMap(v.pairs)
	case KindSet:
		return e.encodeSet(v.arr)
	case KindAttribute:
		return e.encodeAttribute(v)
	case KindPush:
		return e.encodePush(v)
	default:
		return ErrInternal("wire: unknown value kind")
	}
}

// encodeStringOrError picks the short-form tag when s has neither CR nor
// LF, the blob-form tag otherwise (spec §4.2).
func (e *Encoder) encodeStringOrError(shortTag, blobTag byte, s string) error {
	if strings.ContainsAny(s, "\r\n") {
		return e.writeBlob(blobTag, []byte(s))
	}
	return e.writeLine(shortTag, s)
}

func (e *Encoder) writeLine(tag byte, body string) error {
	if err := e.w.WriteByte(tag); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString(body); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString("\r\n"); err != nil {
		return errIO(err)
	}
	return nil
}

func (e *Encoder) writeBlob(tag byte, payload []byte) error {
	if err := e.w.WriteByte(tag); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString(strconv.Itoa(len(payload))); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString("\r\n"); err != nil {
		return errIO(err)
	}
	if _, err := e.w.Write(payload); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString("\r\n"); err != nil {
		return errIO(err)
	}
	return nil
}

// writeVerbatim encodes a String/Bytes Value that carries a VerbatimFormat
// tag as a `=` frame, with the tag counted inside the declared length
// (spec §9, SPEC_FULL §E).
func (e *Encoder) writeVerbatim(tag string, payload []byte) error {
	if err := e.w.WriteByte('='); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString(strconv.Itoa(len(tag) + len(payload))); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString("\r\n"); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString(tag); err != nil {
		return errIO(err)
	}
	if _, err := e.w.Write(payload); err != nil {
		return errIO(err)
	}
	if _, err := e.w.WriteString("\r\n"); err != nil {
		return errIO(err)
	}
	return nil
}

func (e *Encoder) encodeArray(values []Value) error {
	if err := e.writeLine('*', strconv.Itoa(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := e.encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeMap(entries []MapEntry) error {
	if err := e.writeLine('%', strconv.Itoa(len(entries))); err != nil {
		return err
	}
	for _, kv := range entries {
		if err := e.encode(kv.Key); err != nil {
			return err
		}
		if err := e.encode(kv.Value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeSet(values []Value) error {
	if err := e.writeLine('~', strconv.Itoa(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := e.encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeAttribute(v Value) error {
	if err := e.writeLine('|', strconv.Itoa(len(v.pairs))); err != nil {
		return err
	}
	for _, kv := range v.pairs {
		if err := e.encode(kv.Key); err != nil {
			return err
		}
		if err := e.encode(kv.Value); err != nil {
			return err
		}
	}
	var inner Value
	if len(v.inner) == 1 {
		inner = v.inner[0]
	}
	return e.encode(inner)
}

func (e *Encoder) encodePush(v Value) error {
	if err := e.writeLine('>', strconv.Itoa(len(v.arr)+1)); err != nil {
		return err
	}
	if err := e.encode(NewString(v.s)); err != nil {
		return err
	}
	for _, item := range v.arr {
		if err := e.encode(item); err != nil {
			return err
		}
	}
	return nil
}

// formatFloat renders a float64 the way the protocol wants: "inf",
// "-inf" and "nan" for the special values, shortest round-tripping
// decimal otherwise.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
