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

// Package ifo implements reading .ifo files.
//
// The .ifo file is a small UTF-8 text file describing a dictionary. The first
// line is a magic string and each following line is a key=value pair. The
// first key must be "version".
package ifo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrMalformedDescriptor indicates that the .ifo file could not be parsed or
// is missing required values.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

var keyRegex = regexp.MustCompile("^[a-zA-Z0-9-_]+$")

// Ifo holds the raw key/value content of an .ifo file.
type Ifo struct {
	magic    string
	metadata map[string]string
	keys     []string
}

// New reads a new Ifo from r.
func New(r io.Reader) (*Ifo, error) {
	i := &Ifo{
		metadata: map[string]string{},
	}

	s := bufio.NewScanner(bufio.NewReader(r))
	if s.Scan() {
		// Some writers emit a UTF-8 byte order mark.
		i.magic = strings.TrimPrefix(strings.TrimRight(s.Text(), "\r"), "\ufeff")
	}

	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, err := readKV(line)
		if err != nil {
			return nil, err
		}
		if len(i.keys) == 0 && key != "version" {
			return nil, fmt.Errorf("%w: missing version", ErrMalformedDescriptor)
		}

		if _, ok := i.metadata[key]; !ok {
			i.keys = append(i.keys, key)
		}
		i.metadata[key] = value
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading ifo: %w", err)
	}

	if len(i.keys) == 0 {
		return nil, fmt.Errorf("%w: missing version", ErrMalformedDescriptor)
	}

	return i, nil
}

// Magic returns the magic string from the first line of the file.
func (i *Ifo) Magic() string {
	return i.magic
}

// Value returns the value for the given key or an empty string if the key is
// not present.
func (i *Ifo) Value(key string) string {
	return i.metadata[key]
}

// Lookup returns the value for the given key and whether it was present.
func (i *Ifo) Lookup(key string) (string, bool) {
	v, ok := i.metadata[key]
	return v, ok
}

// Keys returns the keys in the order they first appeared.
func (i *Ifo) Keys() []string {
	return append([]string(nil), i.keys...)
}

func readKV(line string) (string, string, error) {
	k, v, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", fmt.Errorf("%w: invalid line: %q", ErrMalformedDescriptor, line)
	}
	key := strings.TrimSpace(k)
	value := strings.TrimSpace(v)
	if !keyRegex.MatchString(key) {
		return "", "", fmt.Errorf("%w: invalid key: %q", ErrMalformedDescriptor, key)
	}
	return key, value, nil
}
