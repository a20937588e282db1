// Copyright 2021 Google LLC
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

package idx

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ianlewis/sdlookup/internal/index"
)

var (
	// ErrTruncatedIndex indicates that fewer records than expected could be
	// read from the index.
	ErrTruncatedIndex = errors.New("truncated index")

	// ErrMalformedIndex indicates that the index holds more records than the
	// descriptor declares.
	ErrMalformedIndex = errors.New("malformed index")

	// ErrOffsetOutOfRange indicates that a record points past the end of the
	// dictionary data.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrUnsortedIndex indicates that the index is not in StarDict order.
	ErrUnsortedIndex = errors.New("unsorted index")
)

// Word is an .idx file entry.
type Word struct {
	Word   string
	Offset uint64
	Size   uint32
}

// String implements [fmt.Stringer] and returns the headword.
func (w *Word) String() string {
	return w.Word
}

// Options are options for loading an index.
type Options struct {
	// OffsetBits are the number of bits in the offset fields, 32 or 64.
	OffsetBits int

	// WordCount is the number of records declared by the .ifo file. The index
	// must hold exactly WordCount records, including zero, unless
	// SkipWordCount is set.
	WordCount int64

	// SkipWordCount disables the WordCount check.
	SkipWordCount bool

	// FileSize is the uncompressed size of the index declared by the .ifo
	// file. It is checked when greater than zero.
	FileSize int64

	// DataSize is the upper bound of the dictionary data size. Records ending
	// past it are rejected when it is greater than zero.
	DataSize int64
}

// DefaultOptions is the default options for loading an index.
var DefaultOptions = &Options{
	OffsetBits:    32,
	SkipWordCount: true,
}

// Idx is an in-memory index held in on-disk order.
type Idx struct {
	index *index.Index[*Word]
}

// Load reads the full index from r and validates it against options.
func Load(r io.Reader, options *Options) (*Idx, error) {
	if options == nil {
		options = DefaultOptions
	}
	offsetBits := options.OffsetBits
	if offsetBits == 0 {
		offsetBits = DefaultOptions.OffsetBits
	}

	cr := &countingReader{r: r}
	s, err := NewScanner(bufio.NewReader(cr), &ScannerOptions{
		OffsetBits: offsetBits,
	})
	if err != nil {
		return nil, err
	}

	var words []*Word
	if options.WordCount > 0 {
		words = make([]*Word, 0, options.WordCount)
	}
	for s.Scan() {
		w := s.Word()
		if options.DataSize > 0 && w.Offset+uint64(w.Size) > uint64(options.DataSize) {
			return nil, fmt.Errorf("%w: %q at %d+%d exceeds %d", ErrOffsetOutOfRange, w.Word, w.Offset, w.Size, options.DataSize)
		}
		words = append(words, w)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scanning index: %w", err)
	}

	if options.FileSize > 0 && cr.n < options.FileSize {
		return nil, fmt.Errorf("%w: read %d of %d bytes", ErrTruncatedIndex, cr.n, options.FileSize)
	}
	if !options.SkipWordCount {
		switch n := int64(len(words)); {
		case n < options.WordCount:
			return nil, fmt.Errorf("%w: read %d of %d words", ErrTruncatedIndex, n, options.WordCount)
		case n > options.WordCount:
			return nil, fmt.Errorf("%w: read %d words, expected %d", ErrMalformedIndex, n, options.WordCount)
		}
	}

	return &Idx{
		index: index.NewIndex(words),
	}, nil
}

// NewFromIfoPath loads the index belonging to the .ifo file at ifoPath.
// Gzip compressed .idx.gz files are decompressed transparently.
func NewFromIfoPath(ifoPath string, options *Options) (*Idx, error) {
	f, err := Open(ifoPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.ToLower(filepath.Ext(f.Name())) == ".gz" {
		z, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating .idx gzip reader: %w", err)
		}
		defer z.Close()
		r = z
	}

	idx, err := Load(r, options)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", f.Name(), err)
	}
	return idx, nil
}

// Open opens the .idx file given the path to the .ifo file.
func Open(ifoPath string) (*os.File, error) {
	baseName := strings.TrimSuffix(ifoPath, filepath.Ext(ifoPath))

	idxExts := []string{
		".idx",
		".idx.gz",
		".idx.GZ",
		".IDX",
		".IDX.gz",
		".IDX.GZ",
	}
	var f *os.File
	var err error
	for _, ext := range idxExts {
		f, err = os.Open(baseName + ext)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening .idx file: %w", err)
		}
	}
	return nil, fmt.Errorf("opening .idx file: %w", err)
}

// Len returns the number of words in the index.
func (idx *Idx) Len() int {
	return idx.index.Len()
}

// Key returns the headword of the i-th word.
func (idx *Idx) Key(i int) string {
	return idx.index.Key(i)
}

// Word returns the i-th word in on-disk order.
func (idx *Idx) Word(i int) *Word {
	return idx.index.At(i)
}

// Words returns all words in on-disk order. The slice must not be modified.
func (idx *Idx) Words() []*Word {
	return idx.index.Values()
}

// Verify checks that the index is in StarDict order.
func (idx *Idx) Verify() error {
	if i := index.Verify(idx.index); i >= 0 {
		return fmt.Errorf("%w: %q sorts before %q", ErrUnsortedIndex, idx.Key(i), idx.Key(i-1))
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	//nolint:wrapcheck // passthrough reader
	return n, err
}
