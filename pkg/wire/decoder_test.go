// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decode(t *testing.T, frame string) Value {
	t.Helper()
	v, err := NewDecoder(strings.NewReader(frame)).Decode()
	assert.NoError(t, err)
	return v
}

func TestDecodeLeafKinds(t *testing.T) {
	assert.True(t, decode(t, "_\r\n").IsNull())

	b, _ := decode(t, "#t\r\n").AsBool()
	assert.True(t, b)
	b, _ = decode(t, "#f\r\n").AsBool()
	assert.False(t, b)

	n, _ := decode(t, ":-42\r\n").AsInt()
	assert.Equal(t, int64(-42), n)

	f, _ := decode(t, ",3.5\r\n").AsFloat()
	assert.Equal(t, 3.5, f)

	s, _ := decode(t, "(12345678901234567890\r\n").AsString()
	assert.Equal(t, "12345678901234567890", s)

	s, _ = decode(t, "+hello\r\n").AsString()
	assert.Equal(t, "hello", s)

	s, _ = decode(t, "-NOCOMMAND invalid command\r\n").AsError()
	assert.Equal(t, "NOCOMMAND invalid command", s)
}

func TestDecodeHandshakeFrame(t *testing.T) {
	cmd, ok := FromArray(mustArray(t, decode(t, "*2\r\n$5\r\nHELLO\r\n$1\r\n3\r\n")))
	assert.True(t, ok)
	assert.Equal(t, "hello", cmd.Name)
	assert.Equal(t, 1, cmd.Len())
	s, _ := cmd.Args[0].AsString()
	assert.Equal(t, "3", s)
}

func TestDecodeEmptyBlobStringIsEmptyString(t *testing.T) {
	v := decode(t, "$0\r\n\r\n")
	s, ok := v.AsString()
	assert.True(t, ok)
	assert.Equal(t, "", s)
}

func TestDecodeInvalidUTF8BlobStringPromotesToBytes(t *testing.T) {
	v := decode(t, "$3\r\n\xff\xfe\xfd\r\n")
	_, ok := v.AsString()
	assert.False(t, ok)
	by, ok := v.AsBytes()
	assert.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xfe, 0xfd}, by)
}

func TestDecodeInvalidUTF8BlobErrorIsLossy(t *testing.T) {
	v := decode(t, "!3\r\n\xff\xfe\xfd\r\n")
	s, ok := v.AsError()
	assert.True(t, ok)
	assert.Contains(t, s, "�")
}

func TestDecodeVerbatimStringTagInsideLength(t *testing.T) {
	// "txt:" (4 bytes) + "hi" (2 bytes) = length 6.
	v := decode(t, "=6\r\ntxt:hi\r\n")
	s, ok := v.AsString()
	assert.True(t, ok)
	assert.Equal(t, "hi", s)
	tag, ok := v.VerbatimFormat()
	assert.True(t, ok)
	assert.Equal(t, "txt:", tag)
}

func TestDecodeArrayMapSet(t *testing.T) {
	arr := mustArray(t, decode(t, "*3\r\n:1\r\n:2\r\n:3\r\n"))
	assert.Len(t, arr, 3)

	m := decode(t, "%2\r\n+a\r\n:1\r\n+b\r\n:2\r\n")
	entries, ok := m.AsMap()
	assert.True(t, ok)
	assert.Len(t, entries, 2)

	set := decode(t, "~3\r\n:1\r\n:2\r\n:1\r\n")
	values, ok := set.AsSet()
	assert.True(t, ok)
	assert.Len(t, values, 2)
}

func TestDecodeAttributePreservedByDefault(t *testing.T) {
	v := decode(t, "|1\r\n+ttl\r\n:100\r\n+value\r\n")
	meta, inner, ok := v.AsAttribute()
	assert.True(t, ok)
	assert.Len(t, meta, 1)
	s, _ := inner.AsString()
	assert.Equal(t, "value", s)
}

func TestDecodeAttributeStrippedWhenDisabled(t *testing.T) {
	d := NewDecoder(strings.NewReader("|1\r\n+ttl\r\n:100\r\n+value\r\n"))
	d.PreserveAttributes = false
	v, err := d.Decode()
	assert.NoError(t, err)
	s, ok := v.AsString()
	assert.True(t, ok)
	assert.Equal(t, "value", s)
}

func TestDecodePushRequiresStringKind(t *testing.T) {
	_, err := NewDecoder(strings.NewReader(">2\r\n:1\r\n:2\r\n")).Decode()
	assert.Error(t, err)
	var werr *Error
	assert.ErrorAs(t, err, &werr)
	assert.Equal(t, KindInvalidByte, werr.Kind)
}

func TestDecodePushWellFormed(t *testing.T) {
	v := decode(t, ">2\r\n+message\r\n+hi\r\n")
	kind, items, ok := v.AsPush()
	assert.True(t, ok)
	assert.Equal(t, "message", kind)
	assert.Len(t, items, 1)
}

func TestDecodeMissingCRLFYieldsInvalidByte(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("+hello\n")).Decode()
	assert.Error(t, err)
	var werr *Error
	assert.ErrorAs(t, err, &werr)
	assert.Equal(t, KindInvalidByte, werr.Kind)
	// The reported byte is the one in place of the expected '\r', i.e.
	// the byte before the LF ('o' in "hello\n"), not the LF itself.
	assert.NotNil(t, werr.Byte)
	assert.Equal(t, byte('o'), *werr.Byte)
}

func TestDecodeOverlongBoolReportsSecondByte(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("#tt\r\n")).Decode()
	assert.Error(t, err)
	var werr *Error
	assert.ErrorAs(t, err, &werr)
	assert.Equal(t, KindInvalidByte, werr.Kind)
	assert.NotNil(t, werr.Byte)
	assert.Equal(t, byte('t'), *werr.Byte)
}

func TestDecodeTruncatedFrameYieldsIOError(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("$10\r\nabc")).Decode()
	assert.Error(t, err)
	var werr *Error
	assert.ErrorAs(t, err, &werr)
	assert.Equal(t, KindIO, werr.Kind)
}

func TestDecodeUnknownPrefixYieldsInvalidByte(t *testing.T) {
	_, err := NewDecoder(strings.NewReader("@foo\r\n")).Decode()
	assert.Error(t, err)
	var werr *Error
	assert.ErrorAs(t, err, &werr)
	assert.Equal(t, KindInvalidByte, werr.Kind)
	assert.NotNil(t, werr.Byte)
	assert.Equal(t, byte('@'), *werr.Byte)
}

func mustArray(t *testing.T, v Value) []Value {
	t.Helper()
	arr, ok := v.AsArray()
	assert.True(t, ok)
	return arr
}
