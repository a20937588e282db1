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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidIdxOffset indicates that the OffsetBits is an invalid value.
var ErrInvalidIdxOffset = errors.New("invalid idxoffsetbits")

// maxWordSize bounds a single record. StarDict limits headwords to 256 bytes
// but some converters write longer ones.
const maxWordSize = 64 * 1024

// Scanner scans an index from start to end.
type Scanner struct {
	s             *bufio.Scanner
	idxoffsetbits int
	n             int
}

// ScannerOptions are options for scanning an .idx file.
type ScannerOptions struct {
	// OffsetBits are the number of bits in the offset fields. Valid values for
	// OffsetBits are either 32 or 64.
	OffsetBits int
}

// DefaultScannerOptions is the default options for a Scanner.
var DefaultScannerOptions = &ScannerOptions{
	OffsetBits: 32,
}

// NewScanner return a new index scanner that scans the index from start to
// end.
func NewScanner(r io.Reader, options *ScannerOptions) (*Scanner, error) {
	if options == nil {
		options = DefaultScannerOptions
	}

	if options.OffsetBits != 32 && options.OffsetBits != 64 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdxOffset, options.OffsetBits)
	}
	s := &Scanner{
		s:             bufio.NewScanner(r),
		idxoffsetbits: options.OffsetBits,
	}
	s.s.Buffer(make([]byte, 0, 4096), maxWordSize+12)
	s.s.Split(s.splitIndex)
	return s, nil
}

// Scan advances the index to the next index entry. It returns false if the
// scan stops either by reaching the end of the index or an error.
func (s *Scanner) Scan() bool {
	if s.s.Scan() {
		s.n++
		return true
	}
	return false
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	err := s.s.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		return fmt.Errorf("%w: record %d exceeds %d bytes", ErrMalformedIndex, s.n+1, maxWordSize)
	}
	//nolint:wrapcheck // error should not be wrapped
	return err
}

// Count returns the number of records scanned so far.
func (s *Scanner) Count() int {
	return s.n
}

// Word gets the current entry in the index.
func (s *Scanner) Word() *Word {
	var e Word
	b := s.s.Bytes()
	i := bytes.IndexByte(b, 0)
	e.Word = string(b[0:i])
	b = b[i+1:]
	if s.idxoffsetbits == 64 {
		e.Offset = binary.BigEndian.Uint64(b)
		b = b[8:]
	} else {
		e.Offset = uint64(binary.BigEndian.Uint32(b))
		b = b[4:]
	}
	e.Size = binary.BigEndian.Uint32(b)

	return &e
}

// splitIndex splits an index entry in the index file.
func (s *Scanner) splitIndex(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		// Found zero byte.
		tokenSize := i + 1 + s.idxoffsetbits/8 + 4
		if len(data) >= tokenSize {
			return tokenSize, data[:tokenSize], nil
		}
	}

	if atEOF {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes after record %d", ErrTruncatedIndex, len(data), s.n)
	}

	// Request more data.
	return 0, nil, nil
}
