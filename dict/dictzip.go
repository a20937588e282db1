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
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/ianlewis/go-dictzip"
)

// DefaultCacheSize is the default number of decompressed chunks kept by a
// DictzipReader.
const DefaultCacheSize = 8

var errNoRandomAccess = errors.New("missing dictzip random access header")

// DictzipOptions are options for a DictzipReader.
type DictzipOptions struct {
	// CacheSize is the number of decompressed chunks to keep. Values less
	// than one use DefaultCacheSize.
	CacheSize int
}

// DictzipReader reads dictzip compressed .dict.dz data. Decompressed chunks
// are kept in a least recently used cache.
type DictzipReader struct {
	f *os.File

	// mu guards z.
	mu sync.Mutex
	z  *dictzip.Reader

	chunkLen int64
	size     int64
	cache    *lru.Cache[int64, []byte]
}

// NewDictzipReader returns a DictzipReader for the dictzip file f. The reader
// takes ownership of f.
func NewDictzipReader(f *os.File, opts *DictzipOptions) (*DictzipReader, error) {
	cacheSize := DefaultCacheSize
	if opts != nil && opts.CacheSize > 0 {
		cacheSize = opts.CacheSize
	}

	chunkLen, chunkCount, err := readRAHeader(f)
	if err != nil {
		return nil, err
	}

	size, err := uncompressedSize(f, chunkLen, chunkCount)
	if err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	z, err := dictzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}

	cache, err := lru.New[int64, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating chunk cache: %w", err)
	}

	return &DictzipReader{
		f:        f,
		z:        z,
		chunkLen: chunkLen,
		size:     size,
		cache:    cache,
	}, nil
}

// readRAHeader returns the chunk length and chunk count from the RA extra
// field of the gzip header.
func readRAHeader(f *os.File) (int64, int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrDecompression, err)
	}

	// Subfields are SI1 SI2 LEN(le16) followed by LEN bytes of data.
	extra := gz.Header.Extra
	for len(extra) >= 4 {
		n := int(binary.LittleEndian.Uint16(extra[2:4]))
		if len(extra) < 4+n {
			break
		}
		data := extra[4 : 4+n]
		if extra[0] == 'R' && extra[1] == 'A' && len(data) >= 6 {
			// VERSION(le16) CHLEN(le16) CHCNT(le16) sizes...
			chunkLen := int64(binary.LittleEndian.Uint16(data[2:4]))
			chunkCount := int64(binary.LittleEndian.Uint16(data[4:6]))
			if chunkLen == 0 {
				break
			}
			return chunkLen, chunkCount, nil
		}
		extra = extra[4+n:]
	}

	return 0, 0, fmt.Errorf("%w: %w", ErrDecompression, errNoRandomAccess)
}

// uncompressedSize derives the data size from the ISIZE trailer, which holds
// the size modulo 2^32, and the chunk table.
func uncompressedSize(f *os.File, chunkLen, chunkCount int64) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if fi.Size() < 4 {
		return 0, fmt.Errorf("%w: %w", ErrDecompression, io.ErrUnexpectedEOF)
	}

	var trailer [4]byte
	if _, err := f.ReadAt(trailer[:], fi.Size()-4); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	isize := int64(binary.LittleEndian.Uint32(trailer[:]))

	upper := chunkLen * chunkCount
	lower := upper - chunkLen
	size := isize
	for size <= lower && size+(1<<32) <= upper {
		size += 1 << 32
	}
	return size, nil
}

// Read implements Reader.Read.
func (r *DictzipReader) Read(offset uint64, size uint32) ([]byte, error) {
	if err := checkRange(offset, size, r.size); err != nil {
		return nil, err
	}

	b := make([]byte, 0, size)
	//nolint:gosec // offset is bounds checked above.
	pos := int64(offset)
	end := pos + int64(size)
	for pos < end {
		i := pos / r.chunkLen
		chunk, err := r.chunk(i)
		if err != nil {
			return nil, err
		}

		start := pos - i*r.chunkLen
		if start >= int64(len(chunk)) {
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrIO, i, io.ErrUnexpectedEOF)
		}
		stop := min(int64(len(chunk)), end-i*r.chunkLen)
		b = append(b, chunk[start:stop]...)
		pos += stop - start
	}
	return b, nil
}

// chunk returns the decompressed chunk i. Concurrent misses for the same
// chunk may both decompress it and the last one stored is kept.
func (r *DictzipReader) chunk(i int64) ([]byte, error) {
	if c, ok := r.cache.Get(i); ok {
		return c, nil
	}

	buf := make([]byte, r.chunkLen)
	r.mu.Lock()
	n, err := r.z.ReadAt(buf, i*r.chunkLen)
	r.mu.Unlock()
	if err != nil && !(errors.Is(err, io.EOF) && n > 0) {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) || errors.Is(err, fs.ErrClosed) {
			return nil, fmt.Errorf("%w: chunk %d: %w", ErrIO, i, err)
		}
		return nil, fmt.Errorf("%w: chunk %d: %w", ErrDecompression, i, err)
	}

	buf = buf[:n]
	r.cache.Add(i, buf)
	return buf, nil
}

// Size implements Reader.Size.
func (r *DictzipReader) Size() int64 {
	return r.size
}

// Close implements Reader.Close.
func (r *DictzipReader) Close() error {
	r.cache.Purge()
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
