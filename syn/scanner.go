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

package syn

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ianlewis/sdlookup/idx"
)

// Scanner scans a synonym file from start to end.
type Scanner struct {
	s *bufio.Scanner
	n int
}

// NewScanner return a new synonym scanner that scans the file from start to
// end.
func NewScanner(r io.Reader) *Scanner {
	s := &Scanner{
		s: bufio.NewScanner(r),
	}
	s.s.Split(s.splitIndex)
	return s
}

// Scan advances the scanner to the next synonym entry. It returns false if
// the scan stops either by reaching the end of the file or an error.
func (s *Scanner) Scan() bool {
	if s.s.Scan() {
		s.n++
		return true
	}
	return false
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	//nolint:wrapcheck // error should not be wrapped
	return s.s.Err()
}

// Word gets the current entry.
func (s *Scanner) Word() *Word {
	b := s.s.Bytes()
	i := bytes.IndexByte(b, 0)
	return &Word{
		Word:              string(b[0:i]),
		OriginalWordIndex: binary.BigEndian.Uint32(b[i+1:]),
	}
}

// splitIndex splits a synonym entry.
func (s *Scanner) splitIndex(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		// Found zero byte. The record ends 4 bytes later, after the 32 bit
		// original_word_index.
		tokenSize := i + 5
		if len(data) >= tokenSize {
			return tokenSize, data[:tokenSize], nil
		}
	}

	if atEOF {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes after synonym %d", idx.ErrTruncatedIndex, len(data), s.n)
	}

	// Request more data.
	return 0, nil, nil
}
