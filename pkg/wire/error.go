// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import (
	"errors"
	"fmt"
)

// ErrKind classifies a wire.Error the way the protocol cares about it:
// does the connection stay open, or is this fatal to the session.
type ErrKind int

const (
	// KindIO wraps a failed read/write on the underlying stream. Fatal.
	KindIO ErrKind = iota + 1
	// KindParseInt signals a malformed ASCII-decimal integer atom. Fatal:
	// the stream is desynchronised at this point.
	KindParseInt
	// KindParseFloat signals a malformed ASCII float atom. Fatal.
	KindParseFloat
	// KindInvalidByte signals an unexpected prefix byte or malformed line.
	// Fatal.
	KindInvalidByte
	// KindInvalidValue signals a value of the wrong shape for the caller's
	// expectation (e.g. a HELLO reply that isn't a Map). Surfaced to the
	// caller, not necessarily fatal.
	KindInvalidValue
	// KindInternal is a handler-originated programmer error. Logged,
	// reported as an Error frame, connection stays open.
	KindInternal
	// KindDisconnect is a controlled, protocol-level termination.
	KindDisconnect
)

func (k ErrKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParseInt:
		return "parse-int"
	case KindParseFloat:
		return "parse-float"
	case KindInvalidByte:
		return "invalid-byte"
	case KindInvalidValue:
		return "invalid-value"
	case KindInternal:
		return "internal"
	case KindDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by this package. The protocol
// taxonomy it carries (Kind) is what the server's connection loop inspects
// to decide whether to keep the connection alive.
type Error struct {
	Kind ErrKind
	// Byte holds the offending prefix byte for KindInvalidByte, if known.
	Byte    *byte
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Byte != nil {
		return fmt.Sprintf("[WIRE]> %s: %s (byte %#x)", e.Kind, e.Message, *e.Byte)
	}
	if e.Err != nil {
		return fmt.Sprintf("[WIRE]> %s: %s: %s", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[WIRE]> %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func errIO(err error) *Error {
	return &Error{Kind: KindIO, Message: "i/o failed", Err: err}
}

func errParseInt(err error) *Error {
	return &Error{Kind: KindParseInt, Message: "malformed integer atom", Err: err}
}

func errParseFloat(err error) *Error {
	return &Error{Kind: KindParseFloat, Message: "malformed float atom", Err: err}
}

// ErrInvalidByte builds a KindInvalidByte error for an unexpected prefix
// byte. Pass nil for structural violations that aren't about one bad byte
// (e.g. a push frame whose kind isn't a string).
func ErrInvalidByte(b *byte) *Error {
	if b == nil {
		return &Error{Kind: KindInvalidByte, Message: "invalid byte"}
	}
	return &Error{Kind: KindInvalidByte, Byte: b, Message: "invalid byte"}
}

func errInvalidByteVal(b byte) *Error {
	return ErrInvalidByte(&b)
}

// ErrInvalidValue reports that v had the wrong shape for the caller.
func ErrInvalidValue(v Value) *Error {
	return &Error{Kind: KindInvalidValue, Message: fmt.Sprintf("invalid value: %#v", v)}
}

// ErrInternal wraps a handler-originated programmer error. The connection
// stays open; the runtime reports it as an Error frame.
func ErrInternal(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}

// ErrDisconnect builds the sole mechanism a Handler has to cleanly
// terminate a client: the runtime emits one Error(msg) frame, flushes,
// and closes.
func ErrDisconnect(msg string) *Error {
	return &Error{Kind: KindDisconnect, Message: msg}
}

// IsDisconnect reports whether err is a controlled Disconnect error.
func IsDisconnect(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindDisconnect
	}
	return false
}
