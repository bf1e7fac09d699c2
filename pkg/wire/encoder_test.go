// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encode(t *testing.T, v Value) string {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.Encode(v))
	assert.NoError(t, enc.Flush())
	return buf.String()
}

func TestEncodeLeafKinds(t *testing.T) {
	assert.Equal(t, "_\r\n", encode(t, Null))
	assert.Equal(t, "#t\r\n", encode(t, NewBool(true)))
	assert.Equal(t, "#f\r\n", encode(t, NewBool(false)))
	assert.Equal(t, ":-42\r\n", encode(t, NewInt(-42)))
	assert.Equal(t, "+hello\r\n", encode(t, NewString("hello")))
	assert.Equal(t, "-NOCOMMAND invalid command\r\n", encode(t, NewError("NOCOMMAND invalid command")))
}

func TestEncodeStringWithNewlinePromotesToBlob(t *testing.T) {
	assert.Equal(t, "$4\r\na\r\nb\r\n", encode(t, NewString("a\r\nb")))
}

func TestEncodeErrorWithNewlinePromotesToBlob(t *testing.T) {
	assert.Equal(t, "!5\r\na\nb\nc\r\n", encode(t, NewError("a\nb\nc")))
}

func TestEncodeFloatSpecials(t *testing.T) {
	assert.Equal(t, ",inf\r\n", encode(t, NewFloatValue(math.Inf(1))))
	assert.Equal(t, ",-inf\r\n", encode(t, NewFloatValue(math.Inf(-1))))
	assert.Equal(t, ",nan\r\n", encode(t, NewFloatValue(math.NaN())))
}

func TestEncodeDoneIsRejected(t *testing.T) {
	var buf bytes.Buffer
	err := NewEncoder(&buf).Encode(Done)
	assert.Error(t, err)
}

func TestEncodePingReply(t *testing.T) {
	assert.Equal(t, "+hello\r\n", encode(t, NewString("hello")))
}

func TestEncodeUnknownCommandReply(t *testing.T) {
	assert.Equal(t, "-NOCOMMAND invalid command\r\n", encode(t, NewError("NOCOMMAND invalid command")))
}

func TestEncodeHandshakeReplyShape(t *testing.T) {
	reply := NewMap(
		MapEntry{Key: NewString("server"), Value: NewString("worm")},
		MapEntry{Key: NewString("version"), Value: NewString("0.1.0")},
		MapEntry{Key: NewString("proto"), Value: NewInt(3)},
	)
	out := encode(t, reply)
	assert.True(t, strings.HasPrefix(out, "%3\r\n"))
	assert.Contains(t, out, "+server\r\n+worm\r\n")
	assert.Contains(t, out, "+version\r\n")
	assert.Contains(t, out, "+proto\r\n:3\r\n")
}

func TestEncodeVerbatimRoundTrips(t *testing.T) {
	v := NewString("hi").withVerbatim("txt:")
	out := encode(t, v)
	assert.Equal(t, "=6\r\ntxt:hi\r\n", out)

	decoded, err := NewDecoder(strings.NewReader(out)).Decode()
	assert.NoError(t, err)
	assert.True(t, Equal(decoded, NewString("hi")))
	tag, ok := decoded.VerbatimFormat()
	assert.True(t, ok)
	assert.Equal(t, "txt:", tag)
}

func TestRoundTripComposite(t *testing.T) {
	original := NewArray(
		NewMap(
			MapEntry{Key: NewInt(1), Value: NewString("abc")},
			MapEntry{Key: NewString("test"), Value: NewBool(true)},
		),
		NewArray(NewInt(1), NewInt(2), NewInt(3)),
	)

	out := encode(t, original)
	decoded, err := NewDecoder(strings.NewReader(out)).Decode()
	assert.NoError(t, err)
	assert.True(t, Equal(original, decoded))
}

func TestRoundTripPreservesAttributeWhenEnabled(t *testing.T) {
	original := NewAttribute(
		[]MapEntry{{Key: NewString("ttl"), Value: NewInt(100)}},
		NewString("value"),
	)
	out := encode(t, original)
	decoded, err := NewDecoder(strings.NewReader(out)).Decode()
	assert.NoError(t, err)
	assert.True(t, Equal(original, decoded))
}

func TestRoundTripPush(t *testing.T) {
	original := NewPush("message", NewString("channel"), NewString("payload"))
	out := encode(t, original)
	decoded, err := NewDecoder(strings.NewReader(out)).Decode()
	assert.NoError(t, err)
	assert.True(t, Equal(original, decoded))
}
