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

package match_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/agnivade/levenshtein"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/match"
)

type words []string

func (w words) Len() int         { return len(w) }
func (w words) Key(i int) string { return w[i] }

func (w words) at(c []match.Candidate) []string {
	var s []string
	for _, x := range c {
		s = append(s, w[x.Index])
	}
	return s
}

// TestFind tests Find.
func TestFind(t *testing.T) {
	t.Parallel()

	fruit := words{"apple", "applesauce", "banana"}
	cased := words{"Apple", "apple", "apple", "applesauce", "banana"}
	animals := words{"bat", "cat", "cart", "dog"}

	tests := []struct {
		name     string
		table    words
		query    string
		mode     match.Mode
		opts     *match.Options
		expected []match.Candidate
		err      error
	}{
		{
			name:  "prefix",
			table: fruit,
			query: "app",
			mode:  match.Prefix,
			expected: []match.Candidate{
				{Index: 0},
				{Index: 1},
			},
		},
		{
			name:  "fuzzy max distance",
			table: fruit,
			query: "aple",
			mode:  match.Fuzzy,
			opts:  &match.Options{MaxDistance: 1},
			expected: []match.Candidate{
				{Index: 0, Distance: 1},
			},
		},
		{
			name:  "exact",
			table: fruit,
			query: "banana",
			mode:  match.Exact,
			expected: []match.Candidate{
				{Index: 2},
			},
		},
		{
			name:  "exact miss",
			table: fruit,
			query: "cherry",
			mode:  match.Exact,
		},
		{
			name:  "exact whitespace",
			table: fruit,
			query: "  banana\t",
			mode:  match.Exact,
			expected: []match.Candidate{
				{Index: 2},
			},
		},
		{
			name:  "empty query",
			table: fruit,
			query: "   ",
			mode:  match.Exact,
		},
		{
			name:  "exact run",
			table: cased,
			query: "APPLE",
			mode:  match.Exact,
			expected: []match.Candidate{
				{Index: 0},
				{Index: 1},
				{Index: 2},
			},
		},
		{
			name:  "exact case sensitive",
			table: cased,
			query: "apple",
			mode:  match.Exact,
			opts:  &match.Options{CaseSensitive: true},
			expected: []match.Candidate{
				{Index: 1},
				{Index: 2},
			},
		},
		{
			name:  "exact case sensitive miss",
			table: cased,
			query: "APPLE",
			mode:  match.Exact,
			opts:  &match.Options{CaseSensitive: true},
		},
		{
			name:  "prefix case sensitive",
			table: cased,
			query: "App",
			mode:  match.Prefix,
			opts:  &match.Options{CaseSensitive: true},
			expected: []match.Candidate{
				{Index: 0},
			},
		},
		{
			name:  "prefix limit",
			table: cased,
			query: "a",
			mode:  match.Prefix,
			opts:  &match.Options{PrefixLimit: 2},
			expected: []match.Candidate{
				{Index: 0},
				{Index: 1},
			},
		},
		{
			name:  "fuzzy order",
			table: animals,
			query: "cat",
			mode:  match.Fuzzy,
			opts:  &match.Options{MaxDistance: 1},
			expected: []match.Candidate{
				{Index: 1, Distance: 0},
				{Index: 0, Distance: 1},
				{Index: 2, Distance: 1},
			},
		},
		{
			name:  "fuzzy limit",
			table: animals,
			query: "cat",
			mode:  match.Fuzzy,
			opts:  &match.Options{MaxDistance: 1, FuzzyLimit: 2},
			expected: []match.Candidate{
				{Index: 1, Distance: 0},
				{Index: 0, Distance: 1},
			},
		},
		{
			name:  "fuzzy case insensitive",
			table: animals,
			query: "CAT",
			mode:  match.Fuzzy,
			opts:  &match.Options{MaxDistance: 1, FuzzyLimit: 1},
			expected: []match.Candidate{
				{Index: 1, Distance: 0},
			},
		},
		{
			name:  "fuzzy case sensitive",
			table: animals,
			query: "CAT",
			mode:  match.Fuzzy,
			opts:  &match.Options{MaxDistance: 1, CaseSensitive: true},
		},
		{
			name:  "fuzzy unicode",
			table: words{"Éclair", "eclipse"},
			query: "eclair",
			mode:  match.Fuzzy,
			opts:  &match.Options{MaxDistance: 1},
			expected: []match.Candidate{
				{Index: 0, Distance: 1},
			},
		},
		{
			name:  "unsorted",
			table: words{"a", "c", "b", "d"},
			query: "b",
			mode:  match.Exact,
			err:   idx.ErrUnsortedIndex,
		},
		{
			name:  "unsorted linear",
			table: words{"a", "c", "b", "d"},
			query: "b",
			mode:  match.Exact,
			opts:  &match.Options{Linear: true},
			expected: []match.Candidate{
				{Index: 2},
			},
		},
		{
			name:  "linear prefix order",
			table: words{"b", "ab", "aa"},
			query: "a",
			mode:  match.Prefix,
			opts:  &match.Options{Linear: true},
			expected: []match.Candidate{
				{Index: 2},
				{Index: 1},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			c, err := match.Find(test.table, test.query, test.mode, test.opts)
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Find error (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.expected, c); diff != "" {
				t.Fatalf("Find (-want, +got):\n%s", diff)
			}
		})
	}
}

var dictionary = words{
	"a", "aardvark", "abacus", "abandon", "abandoned", "abate", "abbey",
	"abbot", "abbreviate", "abdomen", "abide", "ability", "able", "abnormal",
	"aboard", "abolish", "about", "above", "abroad", "abrupt", "absence",
	"absent", "absolute", "absorb", "abstract", "absurd",
}

// TestFind_prefixMonotonic tests that extending a prefix never finds words
// the shorter prefix missed.
func TestFind_prefixMonotonic(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"a", "ab", "abs", "abb", "abo"} {
		short, err := match.Find(dictionary, p, match.Prefix, nil)
		if err != nil {
			t.Fatalf("Find(%q): %v", p, err)
		}
		shortWords := dictionary.at(short)

		for _, x := range "abcdeos" {
			long, err := match.Find(dictionary, p+string(x), match.Prefix, nil)
			if err != nil {
				t.Fatalf("Find(%q): %v", p+string(x), err)
			}
			for _, w := range dictionary.at(long) {
				if strings.HasPrefix(w, p) && !slices.Contains(shortWords, w) {
					t.Errorf("Find(%q) found %q, missing from Find(%q)", p+string(x), w, p)
				}
			}
		}
	}
}

// TestFind_fuzzyBound tests that fuzzy results are within the threshold and
// sorted by distance.
func TestFind_fuzzyBound(t *testing.T) {
	t.Parallel()

	opts := &match.Options{FuzzyLimit: 100}
	for _, q := range []string{"abot", "absrd", "abandonned", "abilty", "xyz"} {
		c, err := match.Find(dictionary, q, match.Fuzzy, opts)
		if err != nil {
			t.Fatalf("Find(%q): %v", q, err)
		}
		threshold := opts.Threshold(len(q))
		for i, x := range c {
			if d := levenshtein.ComputeDistance(q, dictionary[x.Index]); d != x.Distance || d > threshold {
				t.Errorf("Find(%q): %q distance %d, reported %d, threshold %d", q, dictionary[x.Index], d, x.Distance, threshold)
			}
			if i > 0 && c[i-1].Distance > x.Distance {
				t.Errorf("Find(%q): results not sorted by distance at %d", q, i)
			}
		}
	}
}

// TestFind_rawHeadwords tests that headwords which normalization would alter
// are still found by their own text.
func TestFind_rawHeadwords(t *testing.T) {
	t.Parallel()

	raw := words{" lead", "a  b", "tab\tword", "trail ", "\xff\xfebin"}
	for _, opts := range []*match.Options{
		{},
		{CaseSensitive: true},
		{Linear: true},
	} {
		for i, w := range raw {
			for _, mode := range []match.Mode{match.Exact, match.Prefix} {
				c, err := match.Find(raw, w, mode, opts)
				if err != nil {
					t.Fatalf("Find(%q, %v): %v", w, mode, err)
				}
				if !slices.Contains(c, match.Candidate{Index: i}) {
					t.Errorf("Find(%q, %v, %+v) = %v, missing %d", w, mode, *opts, c, i)
				}
			}
		}
	}
}

// TestParseMode tests ParseMode.
func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, m := range []match.Mode{match.Exact, match.Prefix, match.Fuzzy} {
		got, err := match.ParseMode(strings.ToUpper(m.String()))
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", m, err)
		}
		if got != m {
			t.Fatalf("ParseMode(%q); want: %v, got: %v", m, m, got)
		}
	}

	if _, err := match.ParseMode("regex"); err == nil {
		t.Fatal("ParseMode: expected failure")
	}
}
