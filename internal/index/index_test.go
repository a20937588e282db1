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

package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type String string

func (s String) String() string {
	return string(s)
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		index    []String
		query    string
		expected []String
	}{
		{
			name:     "single results",
			index:    []String{"bar", "baz", "foo"},
			query:    "foo",
			expected: []String{"foo"},
		},
		{
			name:     "multiple results",
			index:    []String{"bar", "bar", "baz", "foo"},
			query:    "bar",
			expected: []String{"bar", "bar"},
		},
		{
			name:     "case folded run",
			index:    []String{"Bar", "bar", "baz", "foo"},
			query:    "BAR",
			expected: []String{"Bar", "bar"},
		},
		{
			name:     "no results",
			index:    []String{"bar", "baz", "foo"},
			query:    "none",
			expected: nil,
		},
		{
			name:     "empty",
			index:    nil,
			query:    "none",
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			index := NewIndex(test.index)

			lo, hi, ok := Run(index, test.query)
			if !ok {
				t.Fatal("Run: inconsistent")
			}
			if diff := cmp.Diff(test.expected, index.Values()[lo:hi], cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Run (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b     string
		expected int
	}{
		{"apple", "apple", 0},
		{"apple", "Apple", 1},
		{"Apple", "apple", -1},
		{"Apple", "banana", -1},
		{"apple", "applesauce", -1},
		{"Zebra", "apple", 1},
		{"_", "a", -1},
		{"_", "A", -1},
	}

	for _, test := range tests {
		if got := Compare(test.a, test.b); got != test.expected {
			t.Errorf("Compare(%q, %q); want: %d, got: %d", test.a, test.b, test.expected, got)
		}
	}
}

func TestPrefixRun(t *testing.T) {
	t.Parallel()

	index := NewIndex([]String{"a", "App", "apple", "applesauce", "apricot", "banana"})

	tests := []struct {
		name   string
		prefix string
		limit  int
		lo, hi int
	}{
		{
			name:   "prefix",
			prefix: "app",
			lo:     1,
			hi:     4,
		},
		{
			name:   "limit",
			prefix: "app",
			limit:  2,
			lo:     1,
			hi:     3,
		},
		{
			name:   "no match",
			prefix: "c",
			lo:     6,
			hi:     6,
		},
		{
			name:   "empty prefix",
			prefix: "",
			lo:     0,
			hi:     6,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			lo, hi, ok := PrefixRun(index, test.prefix, test.limit)
			if !ok {
				t.Fatal("PrefixRun: inconsistent")
			}
			if diff := cmp.Diff([]int{test.lo, test.hi}, []int{lo, hi}); diff != "" {
				t.Fatalf("PrefixRun (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	if got := Verify(NewIndex([]String{"a", "B", "b", "c"})); got != -1 {
		t.Fatalf("Verify sorted; want: -1, got: %d", got)
	}
	if got := Verify(NewIndex([]String{"a", "c", "b"})); got != 2 {
		t.Fatalf("Verify unsorted; want: 2, got: %d", got)
	}
}

func TestRun_inconsistent(t *testing.T) {
	t.Parallel()

	// The binary search lands on "c" and the key after it is smaller.
	_, _, ok := Run(NewIndex([]String{"a", "c", "b", "d"}), "b")
	if ok {
		t.Fatal("Run: expected inconsistency")
	}
}
