// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wire

import (
	"bytes"
	"sort"
)

// Compare implements the total order required by spec §4.1: variant
// discriminant first, then payload-lexicographic within a variant. It is
// what keeps Map/Set iteration order a deterministic function of
// contents rather than of insertion order.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}

	switch a.kind {
	case KindNull, KindDone:
		return 0
	case KindBool:
		return compareBool(a.b, b.b)
	case KindInt:
		return compareInt64(a.i, b.i)
	case KindFloat:
		return compareFloat(a.f, b.f)
	case KindBigNumber, KindError, KindString:
		return compareString(a.s, b.s)
	case KindBytes:
		return bytes.Compare(a.by, b.by)
	case KindArray:
		return compareValueSlices(a.arr, b.arr)
	case KindMap:
		return compareEntrySlices(a.pairs, b.pairs)
	case KindSet:
		return compareValueSlices(a.arr, b.arr)
	case KindAttribute:
		if c := compareEntrySlices(a.pairs, b.pairs); c != 0 {
			return c
		}
		var av Value
		if len(a.inner) == 1 {
			av = a.inner[0]
		}
		var bv Value
		if len(b.inner) == 1 {
			bv = b.inner[0]
		}
		return Compare(av, bv)
	case KindPush:
		if c := compareString(a.s, b.s); c != 0 {
			return c
		}
		return compareValueSlices(a.arr, b.arr)
	default:
		return 0
	}
}

// Equal reports structural equality, i.e. Compare(a, b) == 0.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareValueSlices(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

func compareEntrySlices(a, b []MapEntry) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := Compare(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

// sortedEntries returns entries sorted by key order. Later duplicate
// keys (by Equal) overwrite earlier ones, matching BTreeMap::insert
// semantics in the reference implementation.
func sortedEntries(entries []MapEntry) []MapEntry {
	if len(entries) == 0 {
		return nil
	}

	dedup := make([]MapEntry, 0, len(entries))
	for _, e := range entries {
		replaced := false
		for i := range dedup {
			if Equal(dedup[i].Key, e.Key) {
				dedup[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			dedup = append(dedup, e)
		}
	}

	sort.SliceStable(dedup, func(i, j int) bool {
		return Compare(dedup[i].Key, dedup[j].Key) < 0
	})
	return dedup
}

// sortedUniqueValues returns values sorted and de-duplicated, matching
// BTreeSet::insert semantics.
func sortedUniqueValues(values []Value) []Value {
	if len(values) == 0 {
		return nil
	}

	dedup := make([]Value, 0, len(values))
	for _, v := range values {
		found := false
		for _, d := range dedup {
			if Equal(d, v) {
				found = true
				break
			}
		}
		if !found {
			dedup = append(dedup, v)
		}
	}

	sort.SliceStable(dedup, func(i, j int) bool {
		return Compare(dedup[i], dedup[j]) < 0
	})
	return dedup
}
