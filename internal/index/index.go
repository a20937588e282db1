// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package index implements searching over tables kept in StarDict order.
//
// StarDict tools sort the .idx and .syn files by comparing words byte by byte
// with ASCII letters folded to lower case, breaking ties with a plain byte
// comparison. Because the primary key ignores ASCII case, a case-insensitive
// binary search over the raw table is exact.
package index

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an ordered table of string keys.
type Table interface {
	// Len returns the number of keys.
	Len() int

	// Key returns the i-th key.
	Key(i int) string
}

// Index is a generic sorted array index. The slice is kept in the order it
// was given and is never re-sorted.
type Index[V fmt.Stringer] struct {
	index []V
}

// NewIndex creates an index over the given slice. The slice is expected to be
// sorted in StarDict order already.
func NewIndex[V fmt.Stringer](index []V) *Index[V] {
	return &Index[V]{
		index: index,
	}
}

// Len implements [Table.Len].
func (idx *Index[V]) Len() int {
	return len(idx.index)
}

// Key implements [Table.Key].
func (idx *Index[V]) Key(i int) string {
	return idx.index[i].String()
}

// At returns the i-th value.
func (idx *Index[V]) At(i int) V {
	return idx.index[i]
}

// Values returns the underlying slice.
func (idx *Index[V]) Values() []V {
	return idx.index
}

// Compare orders strings the way StarDict sorts its index files.
func Compare(a, b string) int {
	if c := FoldCompare(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// FoldCompare compares a and b byte by byte with ASCII letters folded to
// lower case.
func FoldCompare(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// HasFoldPrefix reports whether s begins with prefix ignoring ASCII case.
func HasFoldPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return FoldCompare(s[:len(prefix)], prefix) == 0
}

// LowerBound returns the first position whose key is not less than query
// under FoldCompare.
func LowerBound(t Table, query string) int {
	return sort.Search(t.Len(), func(i int) bool {
		return FoldCompare(t.Key(i), query) >= 0
	})
}

// Run returns the half open range [lo, hi) of keys equal to query under
// FoldCompare. ok is false if the neighbourhood of the run shows that the
// table is not sorted.
func Run(t Table, query string) (lo, hi int, ok bool) {
	lo = LowerBound(t, query)
	hi = lo
	for hi < t.Len() && FoldCompare(t.Key(hi), query) == 0 {
		hi++
	}
	return lo, hi, Consistent(t, lo, hi)
}

// PrefixRun returns the range [lo, hi) of keys starting with prefix under
// ASCII case folding. At most limit keys are included when limit > 0. ok is
// false if the neighbourhood of the run shows that the table is not sorted.
func PrefixRun(t Table, prefix string, limit int) (lo, hi int, ok bool) {
	lo = LowerBound(t, prefix)
	hi = lo
	for hi < t.Len() && HasFoldPrefix(t.Key(hi), prefix) {
		if limit > 0 && hi-lo >= limit {
			return lo, hi, Consistent(t, lo, hi)
		}
		hi++
	}
	return lo, hi, Consistent(t, lo, hi)
}

// Verify checks that the table is non-decreasing under FoldCompare. It returns
// the position of the first key that is out of order, or -1.
func Verify(t Table) int {
	for i := 1; i < t.Len(); i++ {
		if FoldCompare(t.Key(i-1), t.Key(i)) > 0 {
			return i
		}
	}
	return -1
}

// Consistent checks the ordering of the keys bordering the run [lo, hi).
func Consistent(t Table, lo, hi int) bool {
	if lo > 0 && lo < t.Len() && FoldCompare(t.Key(lo-1), t.Key(lo)) > 0 {
		return false
	}
	if hi > 0 && hi < t.Len() && FoldCompare(t.Key(hi-1), t.Key(hi)) > 0 {
		return false
	}
	if hi+1 < t.Len() && FoldCompare(t.Key(hi), t.Key(hi+1)) > 0 {
		return false
	}
	return true
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
