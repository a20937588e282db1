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

package ifo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Magic is the expected first line of an .ifo file.
const Magic = "StarDict's dict ifo file"

// Descriptor is the parsed metadata of a dictionary.
type Descriptor struct {
	Version     string
	Bookname    string
	WordCount   int64
	IdxFileSize int64

	// SynWordCount is the number of entries in the .syn file. It is zero when
	// the dictionary has no synonyms.
	SynWordCount int64

	// IdxOffsetBits is the width of offsets in the .idx file, 32 or 64.
	IdxOffsetBits int

	// SameTypeSequence lists the type markers of each field in a definition.
	// It is empty when every field carries its own type byte.
	SameTypeSequence string

	Author      string
	Email       string
	Website     string
	Description string
	Date        string

	// Compressed is true when the dictionary data is stored in dictzip format.
	// It is not part of the .ifo file and is set by the loader.
	Compressed bool
}

// Open reads and parses the .ifo file at path. When the file has no bookname
// the base name of the file is used.
func Open(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	i, err := New(f)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	d, err := Parse(i)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	if d.Bookname == "" {
		d.Bookname = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Parse validates the raw .ifo values and returns a Descriptor.
func Parse(i *Ifo) (*Descriptor, error) {
	if i.Magic() != Magic {
		return nil, fmt.Errorf("%w: bad magic data: %q", ErrMalformedDescriptor, i.Magic())
	}

	d := &Descriptor{
		Version:          i.Value("version"),
		Bookname:         i.Value("bookname"),
		SameTypeSequence: i.Value("sametypesequence"),
		Author:           i.Value("author"),
		Email:            i.Value("email"),
		Website:          i.Value("website"),
		Description:      i.Value("description"),
		Date:             i.Value("date"),
		IdxOffsetBits:    32,
	}

	switch d.Version {
	case "2.4.2", "3.0.0":
	default:
		return nil, fmt.Errorf("%w: invalid version: %q", ErrMalformedDescriptor, d.Version)
	}

	var err error
	if d.WordCount, err = requiredInt(i, "wordcount"); err != nil {
		return nil, err
	}
	if d.IdxFileSize, err = requiredInt(i, "idxfilesize"); err != nil {
		return nil, err
	}
	if d.SynWordCount, err = optionalInt(i, "synwordcount"); err != nil {
		return nil, err
	}

	// idxoffsetbits was introduced in 3.0.0 and is ignored for older files.
	if d.Version == "3.0.0" {
		bits, err := optionalInt(i, "idxoffsetbits")
		if err != nil {
			return nil, err
		}
		switch bits {
		case 0:
		case 32, 64:
			d.IdxOffsetBits = int(bits)
		default:
			return nil, fmt.Errorf("%w: invalid idxoffsetbits: %d", ErrMalformedDescriptor, bits)
		}
	}

	return d, nil
}

func requiredInt(i *Ifo, key string) (int64, error) {
	v, ok := i.Lookup(key)
	if !ok || v == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedDescriptor, key)
	}
	return parseCount(key, v)
}

func optionalInt(i *Ifo, key string) (int64, error) {
	v, ok := i.Lookup(key)
	if !ok || v == "" {
		return 0, nil
	}
	return parseCount(key, v)
}

func parseCount(key, v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s: %w", ErrMalformedDescriptor, key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: bad %s: %d", ErrMalformedDescriptor, key, n)
	}
	return n, nil
}
