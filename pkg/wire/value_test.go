// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatNaNNormalises(t *testing.T) {
	a := NewFloat(math.NaN())
	b := NewFloat(math.NaN())
	assert.Equal(t, a.orderKey(), b.orderKey())
	assert.True(t, math.IsNaN(a.Float64()))
}

func TestFloatOrderKeyMonotonic(t *testing.T) {
	values := []float64{math.Inf(-1), -100.5, -0.001, 0, 0.001, 100.5, math.Inf(1)}
	for i := 0; i < len(values)-1; i++ {
		a := NewFloat(values[i])
		b := NewFloat(values[i+1])
		assert.Less(t, a.orderKey(), b.orderKey())
	}
}

func TestMapEntriesSortedRegardlessOfInsertionOrder(t *testing.T) {
	m1 := NewMap(
		MapEntry{Key: NewString("b"), Value: NewInt(2)},
		MapEntry{Key: NewString("a"), Value: NewInt(1)},
	)
	m2 := NewMap(
		MapEntry{Key: NewString("a"), Value: NewInt(1)},
		MapEntry{Key: NewString("b"), Value: NewInt(2)},
	)
	assert.True(t, Equal(m1, m2))

	entries, ok := m1.AsMap()
	assert.True(t, ok)
	assert.Equal(t, "a", entries[0].Key.s)
	assert.Equal(t, "b", entries[1].Key.s)
}

func TestMapDuplicateKeyLastWriterWins(t *testing.T) {
	m := NewMap(
		MapEntry{Key: NewString("k"), Value: NewInt(1)},
		MapEntry{Key: NewString("k"), Value: NewInt(2)},
	)
	entries, _ := m.AsMap()
	assert.Len(t, entries, 1)
	n, _ := entries[0].Value.AsInt()
	assert.Equal(t, int64(2), n)
}

func TestSetDedupesAndSorts(t *testing.T) {
	s := NewSet(NewInt(3), NewInt(1), NewInt(2), NewInt(1))
	values, ok := s.AsSet()
	assert.True(t, ok)
	assert.Len(t, values, 3)
	for i, want := range []int64{1, 2, 3} {
		n, _ := values[i].AsInt()
		assert.Equal(t, want, n)
	}
}

func TestAsIntCoercions(t *testing.T) {
	n, ok := NewString("42").AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	n, ok = NewFloatValue(9.9).AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(9), n)

	_, ok = NewBytes([]byte{1, 2}).AsInt()
	assert.False(t, ok)
}

func TestVerbatimFormatRoundTripsThroughValue(t *testing.T) {
	v := NewString("hello").withVerbatim("txt:")
	tag, ok := v.VerbatimFormat()
	assert.True(t, ok)
	assert.Equal(t, "txt:", tag)

	// Verbatim tagging plays no part in equality.
	assert.True(t, Equal(v, NewString("hello")))
}

func TestDoneIsNotNull(t *testing.T) {
	assert.False(t, Done.IsNull())
	assert.True(t, Null.IsNull())
	assert.Equal(t, KindDone, Done.Kind())
}
