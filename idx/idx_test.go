// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package idx_test

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/internal/testutil"
	"github.com/ianlewis/sdlookup/match"
)

var threeWords = []*idx.Word{
	{Word: "apple", Offset: 0, Size: 5},
	{Word: "applesauce", Offset: 5, Size: 10},
	{Word: "banana", Offset: 15, Size: 6},
}

// TestLoad tests Load.
func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		options *idx.Options

		expected []*idx.Word
		err      error
	}{
		{
			name:     "nil options",
			data:     testutil.MakeIndex(threeWords, 32),
			expected: threeWords,
		},
		{
			name: "word count matches",
			data: testutil.MakeIndex(threeWords, 64),
			options: &idx.Options{
				OffsetBits: 64,
				WordCount:  3,
				FileSize:   int64(len(testutil.MakeIndex(threeWords, 64))),
				DataSize:   21,
			},
			expected: threeWords,
		},
		{
			name: "too few words",
			data: testutil.MakeIndex(threeWords[:2], 32),
			options: &idx.Options{
				WordCount: 3,
			},
			err: idx.ErrTruncatedIndex,
		},
		{
			name: "too many words",
			data: testutil.MakeIndex(threeWords, 32),
			options: &idx.Options{
				WordCount: 2,
			},
			err: idx.ErrMalformedIndex,
		},
		{
			name:    "zero word count",
			data:    testutil.MakeIndex(threeWords, 32),
			options: &idx.Options{},
			err:     idx.ErrMalformedIndex,
		},
		{
			name:     "zero word count empty",
			data:     nil,
			options:  &idx.Options{},
			expected: nil,
		},
		{
			name: "skip word count",
			data: testutil.MakeIndex(threeWords, 32),
			options: &idx.Options{
				SkipWordCount: true,
			},
			expected: threeWords,
		},
		{
			name: "short file",
			data: testutil.MakeIndex(threeWords, 32),
			options: &idx.Options{
				WordCount: 3,
				FileSize:  1000,
			},
			err: idx.ErrTruncatedIndex,
		},
		{
			name: "partial record",
			data: testutil.MakeIndex(threeWords, 32)[:30],
			options: &idx.Options{
				WordCount: 3,
			},
			err: idx.ErrTruncatedIndex,
		},
		{
			name: "offset out of range",
			data: testutil.MakeIndex(threeWords, 32),
			options: &idx.Options{
				WordCount: 3,
				DataSize:  20,
			},
			err: idx.ErrOffsetOutOfRange,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			index, err := idx.Load(bytes.NewReader(test.data), test.options)
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Load error (-want, +got):\n%s", diff)
			}
			if err != nil {
				return
			}

			if diff := cmp.Diff(test.expected, index.Words()); diff != "" {
				t.Fatalf("Words (-want, +got):\n%s", diff)
			}
			if want, got := len(test.expected), index.Len(); want != got {
				t.Fatalf("Len; want: %d, got: %d", want, got)
			}
		})
	}
}

// TestLoad_preservesOrder tests that Load never re-sorts the index.
func TestLoad_preservesOrder(t *testing.T) {
	t.Parallel()

	words := []*idx.Word{
		{Word: "banana"},
		{Word: "apple"},
	}
	index, err := idx.Load(bytes.NewReader(testutil.MakeIndex(words, 32)), &idx.Options{WordCount: 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(words, index.Words()); diff != "" {
		t.Fatalf("Words (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(idx.ErrUnsortedIndex, index.Verify(), cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Verify (-want, +got):\n%s", diff)
	}
}

// TestIdx_exact tests exact matching over a loaded index.
func TestIdx_exact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		idxWords []*idx.Word

		expected []*idx.Word
	}{
		{
			name:     "empty index",
			query:    "foo",
			idxWords: []*idx.Word{},
			expected: nil,
		},
		{
			name:  "no match",
			query: "hoge",
			idxWords: []*idx.Word{
				{Word: "bar"},
				{Word: "baz"},
				{Word: "foo"},
			},
			expected: nil,
		},
		{
			name:  "single match first",
			query: "bar",
			idxWords: []*idx.Word{
				{Word: "bar"},
				{Word: "baz"},
				{Word: "foo"},
			},
			expected: []*idx.Word{
				{Word: "bar"},
			},
		},
		{
			name:  "single match last",
			query: "foo",
			idxWords: []*idx.Word{
				{Word: "bar"},
				{Word: "baz"},
				{Word: "foo"},
			},
			expected: []*idx.Word{
				{Word: "foo"},
			},
		},
		{
			name:  "multi-match",
			query: "hoge",
			idxWords: []*idx.Word{
				{Word: "bar"},
				{Word: "foo"},
				{Word: "hoge", Offset: 123, Size: 456},
				{Word: "hoge", Offset: 234, Size: 567},
				{Word: "hoge", Offset: 345, Size: 678},
				{Word: "pico"},
			},
			expected: []*idx.Word{
				{Word: "hoge", Offset: 123, Size: 456},
				{Word: "hoge", Offset: 234, Size: 567},
				{Word: "hoge", Offset: 345, Size: 678},
			},
		},
		{
			name:  "ascii case folding",
			query: "hoge",
			idxWords: []*idx.Word{
				{Word: "bar"},
				{Word: "foo"},
				{Word: "Hoge"},
				{Word: "pico"},
			},
			expected: []*idx.Word{
				// NOTE: The returned index word is the value in the index
				//       and not the folded value.
				{Word: "Hoge"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			b := testutil.MakeIndex(test.idxWords, 32)

			index, err := idx.Load(bytes.NewReader(b), nil)
			if err != nil {
				t.Fatalf("idx.Load: %v", err)
			}

			c, err := match.Find(index, test.query, match.Exact, nil)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			var got []*idx.Word
			for _, x := range c {
				got = append(got, index.Word(x.Index))
			}
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatalf("Find (-want, +got):\n%s", diff)
			}
		})
	}
}

// TestNewFromIfoPath tests NewFromIfoPath.
func TestNewFromIfoPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ext  string
		gzip bool
	}{
		{
			name: "plain",
			ext:  ".idx",
		},
		{
			name: "upper case",
			ext:  ".IDX",
		},
		{
			name: "gzip",
			ext:  ".idx.gz",
			gzip: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			b := testutil.MakeIndex(threeWords, 32)
			if test.gzip {
				var buf bytes.Buffer
				z := gzip.NewWriter(&buf)
				if _, err := z.Write(b); err != nil {
					t.Fatal(err)
				}
				if err := z.Close(); err != nil {
					t.Fatal(err)
				}
				b = buf.Bytes()
			}
			if err := os.WriteFile(filepath.Join(dir, "dictionary"+test.ext), b, 0o600); err != nil {
				t.Fatal(err)
			}

			index, err := idx.NewFromIfoPath(filepath.Join(dir, "dictionary.ifo"), &idx.Options{
				WordCount: 3,
			})
			if err != nil {
				t.Fatalf("NewFromIfoPath: %v", err)
			}
			if diff := cmp.Diff(threeWords, index.Words()); diff != "" {
				t.Fatalf("Words (-want, +got):\n%s", diff)
			}
		})
	}

	if _, err := idx.NewFromIfoPath(filepath.Join(t.TempDir(), "missing.ifo"), nil); err == nil {
		t.Fatal("NewFromIfoPath: expected failure")
	}
}
