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

package sdlookup

import (
	"errors"
	"fmt"

	"github.com/ianlewis/sdlookup/dict"
	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/ifo"
)

var (
	// ErrMalformedDescriptor indicates a bad .ifo file.
	ErrMalformedDescriptor = ifo.ErrMalformedDescriptor

	// ErrTruncatedIndex indicates that an index holds fewer records than
	// declared.
	ErrTruncatedIndex = idx.ErrTruncatedIndex

	// ErrMalformedIndex indicates that an index holds more records than
	// declared.
	ErrMalformedIndex = idx.ErrMalformedIndex

	// ErrOffsetOutOfRange indicates an index record pointing past the
	// dictionary data.
	ErrOffsetOutOfRange = idx.ErrOffsetOutOfRange

	// ErrUnsortedIndex indicates an index that is not in StarDict order. It is
	// never returned by queries.
	ErrUnsortedIndex = idx.ErrUnsortedIndex

	// ErrIO indicates a failure reading dictionary data.
	ErrIO = dict.ErrIO

	// ErrDecompression indicates corrupt dictzip data.
	ErrDecompression = dict.ErrDecompression

	// ErrEmptyQuery is returned for queries without any non-space characters.
	ErrEmptyQuery = errors.New("empty query")

	errNoWords = errors.New("no words loaded")
)

// LoadError is a failure to load a single dictionary.
type LoadError struct {
	// Path is the .ifo file or directory that failed to load.
	Path string
	Err  error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %q: %v", e.Path, e.Err)
}

// Unwrap returns the cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}
