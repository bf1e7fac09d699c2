// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing(3)
	r.Push(Entry{Name: "a", UnixMS: 1})
	r.Push(Entry{Name: "b", UnixMS: 2})
	r.Push(Entry{Name: "c", UnixMS: 3})
	r.Push(Entry{Name: "d", UnixMS: 4})

	snap := r.Snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, []string{"b", "c", "d"}, namesOf(snap))
}

func TestRingBelowCapacity(t *testing.T) {
	r := NewRing(5)
	r.Push(Entry{Name: "a"})
	r.Push(Entry{Name: "b"})

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, namesOf(r.Snapshot()))
}

func TestRingZeroCapacityClampsToOne(t *testing.T) {
	r := NewRing(0)
	r.Push(Entry{Name: "a"})
	r.Push(Entry{Name: "b"})
	assert.Equal(t, []string{"b"}, namesOf(r.Snapshot()))
}

func namesOf(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
