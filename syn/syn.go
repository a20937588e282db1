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

// Package syn implements reading .syn files.
//
// Each .syn entry is a NUL terminated alternate headword followed by the 32
// bit big endian position of the entry it refers to in the .idx file. Entries
// are sorted the same way as the .idx file.
package syn

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/internal/index"
)

// Word is a .syn file entry.
type Word struct {
	// Word is the synonym word.
	Word string

	// OriginalWordIndex is the index into the .idx index.
	OriginalWordIndex uint32
}

// String implements [fmt.Stringer] and returns the synonym.
func (w *Word) String() string {
	return w.Word
}

// Options are options for loading synonyms.
type Options struct {
	// WordCount is the synwordcount declared by the .ifo file. It is checked
	// when greater than zero.
	WordCount int64

	// IndexSize is the number of words in the .idx file. Synonyms pointing at
	// or past it are rejected when it is greater than zero.
	IndexSize int
}

// Syn is the synonym table held in on-disk order.
type Syn struct {
	index *index.Index[*Word]
}

// Load reads all synonyms from r.
func Load(r io.Reader, options *Options) (*Syn, error) {
	if options == nil {
		options = &Options{}
	}

	s := NewScanner(bufio.NewReader(r))
	var words []*Word
	for s.Scan() {
		w := s.Word()
		if options.IndexSize > 0 && int64(w.OriginalWordIndex) >= int64(options.IndexSize) {
			return nil, fmt.Errorf("%w: synonym %q points at %d of %d words",
				idx.ErrOffsetOutOfRange, w.Word, w.OriginalWordIndex, options.IndexSize)
		}
		words = append(words, w)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scanning synonyms: %w", err)
	}

	if options.WordCount > 0 {
		switch n := int64(len(words)); {
		case n < options.WordCount:
			return nil, fmt.Errorf("%w: read %d of %d synonyms", idx.ErrTruncatedIndex, n, options.WordCount)
		case n > options.WordCount:
			return nil, fmt.Errorf("%w: read %d synonyms, expected %d", idx.ErrMalformedIndex, n, options.WordCount)
		}
	}

	return &Syn{
		index: index.NewIndex(words),
	}, nil
}

// NewFromIfoPath loads the synonyms belonging to the .ifo file at ifoPath.
func NewFromIfoPath(ifoPath string, options *Options) (*Syn, error) {
	f, err := Open(ifoPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	synExt := strings.ToLower(filepath.Ext(f.Name()))
	if synExt == ".gz" || synExt == ".dz" {
		z, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating .syn gzip reader: %w", err)
		}
		defer z.Close()
		r = z
	}

	syn, err := Load(r, options)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", f.Name(), err)
	}
	return syn, nil
}

// Open opens the .syn file given the path to the .ifo file. The returned
// error wraps [os.ErrNotExist] when the dictionary has no .syn file.
func Open(ifoPath string) (*os.File, error) {
	baseName := strings.TrimSuffix(ifoPath, filepath.Ext(ifoPath))

	synExts := []string{
		".syn",
		".syn.gz",
		".syn.GZ",
		".syn.dz",
		".syn.DZ",
		".SYN",
		".SYN.gz",
		".SYN.GZ",
		".SYN.dz",
		".SYN.DZ",
	}
	var err error
	for _, ext := range synExts {
		var f *os.File
		f, err = os.Open(baseName + ext)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening .syn file: %w", err)
		}
	}

	return nil, fmt.Errorf("opening .syn file: %w", err)
}

// Len returns the number of synonyms.
func (syn *Syn) Len() int {
	return syn.index.Len()
}

// Key returns the i-th synonym word.
func (syn *Syn) Key(i int) string {
	return syn.index.Key(i)
}

// Word returns the i-th synonym in on-disk order.
func (syn *Syn) Word(i int) *Word {
	return syn.index.At(i)
}

// Words returns all synonyms in on-disk order. The slice must not be
// modified.
func (syn *Syn) Words() []*Word {
	return syn.index.Values()
}

// Verify checks that the synonyms are in StarDict order.
func (syn *Syn) Verify() error {
	if i := index.Verify(syn.index); i >= 0 {
		return fmt.Errorf("%w: synonym %q sorts before %q", idx.ErrUnsortedIndex, syn.Key(i), syn.Key(i-1))
	}
	return nil
}
