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

package dict

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

var (
	// ErrIO indicates that dictionary data could not be read.
	ErrIO = errors.New("dictionary i/o error")

	// ErrDecompression indicates that dictzip data could not be decompressed.
	ErrDecompression = errors.New("dictionary decompression error")
)

// Reader reads definition data by byte range. Implementations are safe for
// concurrent use.
type Reader interface {
	// Read returns size bytes starting at offset in the uncompressed data.
	Read(offset uint64, size uint32) ([]byte, error)

	// Size returns the size of the uncompressed data.
	Size() int64

	// Close releases the underlying file.
	Close() error
}

type readerAtCloser interface {
	io.ReaderAt
	io.Closer
}

// RawReader reads uncompressed .dict data.
type RawReader struct {
	r    readerAtCloser
	size int64
}

// NewRawReader returns a RawReader reading from r which holds size bytes.
func NewRawReader(r readerAtCloser, size int64) *RawReader {
	return &RawReader{
		r:    r,
		size: size,
	}
}

// Read implements Reader.Read.
func (r *RawReader) Read(offset uint64, size uint32) ([]byte, error) {
	if err := checkRange(offset, size, r.size); err != nil {
		return nil, err
	}

	b := make([]byte, size)
	//nolint:gosec // offset is bounds checked above.
	n, err := r.r.ReadAt(b, int64(offset))
	if n == len(b) {
		return b, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("%w: reading %d bytes at %d: %w", ErrIO, size, offset, err)
}

// Size implements Reader.Size.
func (r *RawReader) Size() int64 {
	return r.size
}

// Close implements Reader.Close.
func (r *RawReader) Close() error {
	if err := r.r.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func checkRange(offset uint64, size uint32, total int64) error {
	// TODO(#9): Support dictionary word offsets math.MaxInt64 > x < math.MaxUint64
	if offset > math.MaxInt64 || offset+uint64(size) > uint64(total) {
		return fmt.Errorf("%w: range %d+%d outside of %d bytes", ErrIO, offset, size, total)
	}
	return nil
}

var dictExts = []string{
	".dict.dz",
	".dict",
	".DICT.DZ",
	".DICT",
	".dict.DZ",
}

// Open opens the dictionary data belonging to the .ifo file at ifoPath. A
// dictzip file is preferred over an uncompressed one.
func Open(ifoPath string, options *Options) (Reader, error) {
	if options == nil {
		options = DefaultOptions
	}
	base := strings.TrimSuffix(ifoPath, ".ifo")
	base = strings.TrimSuffix(base, ".IFO")

	for _, ext := range dictExts {
		path := base + ext
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}

		if strings.EqualFold(ext, ".dict.dz") {
			r, err := NewDictzipReader(f, &DictzipOptions{CacheSize: options.CacheSize})
			if err != nil {
				_ = f.Close()
				return nil, err
			}
			return r, nil
		}

		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		return NewRawReader(f, fi.Size()), nil
	}

	return nil, fmt.Errorf("%w: no dictionary data for %q: %w", ErrIO, ifoPath, os.ErrNotExist)
}
