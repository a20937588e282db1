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

// Package match finds the entries of an ordered word table that match a
// query.
package match

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/internal/folding"
	"github.com/ianlewis/sdlookup/internal/index"
)

// Table is an ordered table of headwords.
type Table = index.Table

// Candidate is a matching table entry.
type Candidate struct {
	// Index is the position of the entry in the table.
	Index int

	// Distance is the edit distance to the query. It is zero for exact and
	// prefix matches.
	Distance int
}

// Options are options for Find.
type Options struct {
	// CaseSensitive disables case folding.
	CaseSensitive bool

	// PrefixLimit caps the number of prefix matches.
	PrefixLimit int

	// FuzzyLimit caps the number of fuzzy matches.
	FuzzyLimit int

	// MaxDistance is the largest accepted edit distance. Zero means one per
	// four runes of the query, at least one.
	MaxDistance int

	// Linear scans the whole table instead of binary searching it. It is used
	// for tables that are not in StarDict order.
	Linear bool
}

// DefaultOptions is the default options for Find.
var DefaultOptions = &Options{
	PrefixLimit: 50,
	FuzzyLimit:  10,
}

func (o *Options) prefixLimit() int {
	if o.PrefixLimit > 0 {
		return o.PrefixLimit
	}
	return DefaultOptions.PrefixLimit
}

func (o *Options) fuzzyLimit() int {
	if o.FuzzyLimit > 0 {
		return o.FuzzyLimit
	}
	return DefaultOptions.FuzzyLimit
}

// Threshold returns the largest edit distance accepted for a query of n runes.
func (o *Options) Threshold(n int) int {
	if o.MaxDistance > 0 {
		return o.MaxDistance
	}
	return max(1, n/4)
}

// Find returns the entries of t matching query. Exact and prefix matches are
// returned in table order. The query is first matched as given, so stored
// headwords with unusual whitespace or invalid UTF-8 are found by their own
// text, and the normalized query is only tried when that finds nothing.
// Fuzzy matches are ordered by distance then by StarDict order. If a binary
// search finds that t is not sorted an error wrapping [idx.ErrUnsortedIndex]
// is returned and the search should be repeated with Options.Linear.
func Find(t Table, query string, mode Mode, opts *Options) ([]Candidate, error) {
	if opts == nil {
		opts = DefaultOptions
	}

	switch mode {
	case Exact, Prefix:
		if query == "" {
			return nil, nil
		}
		c, err := search(t, query, mode, opts)
		if err != nil || len(c) > 0 {
			return c, err
		}
		q, err := folding.String(folding.Query(opts.CaseSensitive), query)
		if err != nil {
			return nil, fmt.Errorf("normalizing query: %w", err)
		}
		if q == "" || q == query {
			return nil, nil
		}
		return search(t, q, mode, opts)
	case Fuzzy:
		q, err := folding.String(folding.Fuzzy(opts.CaseSensitive), query)
		if err != nil {
			return nil, fmt.Errorf("normalizing query: %w", err)
		}
		if q == "" {
			return nil, nil
		}
		return fuzzy(t, q, opts), nil
	default:
		return nil, fmt.Errorf("%w: %v", errUnknownMode, mode)
	}
}

func search(t Table, q string, mode Mode, opts *Options) ([]Candidate, error) {
	if mode == Exact {
		if opts.Linear {
			return linearExact(t, q, opts), nil
		}
		return exact(t, q, opts)
	}
	if opts.Linear {
		return linearPrefix(t, q, opts), nil
	}
	return prefix(t, q, opts)
}

func equal(key, q string, caseSensitive bool) bool {
	if caseSensitive {
		return key == q
	}
	return index.FoldCompare(key, q) == 0
}

func hasPrefix(key, q string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.HasPrefix(key, q)
	}
	return index.HasFoldPrefix(key, q)
}

func unsorted(lo, hi int) error {
	return fmt.Errorf("%w: inconsistent order around [%d, %d)", idx.ErrUnsortedIndex, lo, hi)
}

func exact(t Table, q string, opts *Options) ([]Candidate, error) {
	lo, hi, ok := index.Run(t, q)
	if !ok {
		return nil, unsorted(lo, hi)
	}

	var c []Candidate
	for i := lo; i < hi; i++ {
		if opts.CaseSensitive && t.Key(i) != q {
			continue
		}
		c = append(c, Candidate{Index: i})
	}
	return c, nil
}

func prefix(t Table, q string, opts *Options) ([]Candidate, error) {
	limit := opts.prefixLimit()
	if !opts.CaseSensitive {
		lo, hi, ok := index.PrefixRun(t, q, limit)
		if !ok {
			return nil, unsorted(lo, hi)
		}
		c := make([]Candidate, 0, hi-lo)
		for i := lo; i < hi; i++ {
			c = append(c, Candidate{Index: i})
		}
		return c, nil
	}

	// Case-sensitive matches are a subset of the folded run, so the limit is
	// applied after filtering.
	lo := index.LowerBound(t, q)
	hi := lo
	var c []Candidate
	for ; hi < t.Len() && len(c) < limit && index.HasFoldPrefix(t.Key(hi), q); hi++ {
		if !strings.HasPrefix(t.Key(hi), q) {
			continue
		}
		c = append(c, Candidate{Index: hi})
	}
	if !index.Consistent(t, lo, hi) {
		return nil, unsorted(lo, hi)
	}
	return c, nil
}

func linearExact(t Table, q string, opts *Options) []Candidate {
	var c []Candidate
	for i := 0; i < t.Len(); i++ {
		if equal(t.Key(i), q, opts.CaseSensitive) {
			c = append(c, Candidate{Index: i})
		}
	}
	return c
}

func linearPrefix(t Table, q string, opts *Options) []Candidate {
	var c []Candidate
	for i := 0; i < t.Len(); i++ {
		if hasPrefix(t.Key(i), q, opts.CaseSensitive) {
			c = append(c, Candidate{Index: i})
		}
	}
	slices.SortStableFunc(c, func(a, b Candidate) int {
		return index.Compare(t.Key(a.Index), t.Key(b.Index))
	})
	return c[:min(len(c), opts.prefixLimit())]
}

func fuzzy(t Table, q string, opts *Options) []Candidate {
	qLen := utf8.RuneCountInString(q)
	threshold := opts.Threshold(qLen)
	fold := newFolder(opts.CaseSensitive)

	var c []Candidate
	for i := 0; i < t.Len(); i++ {
		key := t.Key(i)
		if isASCII(key) {
			// ASCII folding keeps the length so the filter can run first.
			if abs(len(key)-qLen) > threshold {
				continue
			}
		}
		key = fold(key)
		kLen := utf8.RuneCountInString(key)
		if abs(kLen-qLen) > threshold {
			continue
		}
		d := levenshtein.ComputeDistance(q, key)
		if d > threshold {
			continue
		}
		c = append(c, Candidate{
			Index:    i,
			Distance: d,
		})
	}

	slices.SortStableFunc(c, func(a, b Candidate) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return index.Compare(t.Key(a.Index), t.Key(b.Index))
	})
	return c[:min(len(c), opts.fuzzyLimit())]
}

// newFolder returns the function used to fold headwords for fuzzy matching.
// A [cases.Caser] is not safe for concurrent use so one is made per search.
func newFolder(caseSensitive bool) func(string) string {
	if caseSensitive {
		return func(s string) string { return s }
	}
	caser := cases.Fold()
	return func(s string) string {
		if isASCII(s) {
			return asciiLower(s)
		}
		return caser.String(s)
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			return strings.ToLower(s)
		}
	}
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
