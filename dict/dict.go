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

// Package dict implements reading .dict and .dict.dz files.
package dict

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/k3a/html2text"

	"github.com/ianlewis/sdlookup/idx"
)

var (
	errInvalidType   = errors.New("invalid type")
	errMalformedWord = errors.New("malformed word data")
)

// Word is a full dictionary entry.
type Word struct {
	Data []*Data
}

// DataType is a type of data in a word. Data types are specified by a single
// byte at the beginning of a word. Lower case characters represent string-like
// data that is terminated by a null terminator ('\0'). Upper case characters
// represent file-like data that starts with a 32-bit size followed by file
// data.
type DataType byte

const (
	// UTFTextType is utf-8 text.
	UTFTextType = DataType('m')

	// LocaleTextType is text in a locale encoding.
	LocaleTextType = DataType('l')

	// PangoTextType is utf-8 text in the Pango text format.
	PangoTextType = DataType('g')

	// PhoneticType is utf-8 text representing an English phonetic string.
	PhoneticType = DataType('t')

	// XDXFType is utf-8 encoded xml in XDXF format.
	XDXFType = DataType('x')

	// YinBiaoOrKataType is utf-8 encoded Yin Biao or Kana phonetic string.
	YinBiaoOrKataType = DataType('y')

	// PowerWordType is a utf-8 encoded KingSoft PowerWord XML format.
	PowerWordType = DataType('k')

	// MediaWikiType is utf-8 encoded text in MediaWiki format.
	MediaWikiType = DataType('w')

	// HTMLType is utf-8 encoded HTML text.
	HTMLType = DataType('h')

	// WordNetType is WordNet data.
	WordNetType = DataType('n')

	// ResourceFileListType is a list of files in resource storage.
	ResourceFileListType = DataType('r')

	// WavType is .wav sound file data.
	WavType = DataType('W')

	// PictureType is image file data.
	PictureType = DataType('P')

	// ExperimentalType is reserved for experimental features.
	ExperimentalType = DataType('X')
)

// IsText reports whether the type holds NUL terminated string data.
func (t DataType) IsText() bool {
	return 'a' <= t && t <= 'z'
}

// Data is a data entry in a Word.
type Data struct {
	Type DataType
	Data []byte
}

// String returns a plain text rendering of text like data. Data types that
// have no plain text rendering return an empty string.
func (d *Data) String() string {
	switch d.Type {
	case UTFTextType, LocaleTextType, PhoneticType, YinBiaoOrKataType, MediaWikiType:
		return string(d.Data)
	case HTMLType, PangoTextType:
		return html2text.HTML2Text(string(d.Data))
	default:
		return ""
	}
}

// ParseSameTypeSequence converts the sametypesequence value of an .ifo file
// and validates each type.
func ParseSameTypeSequence(s string) ([]DataType, error) {
	var seq []DataType
	for i := 0; i < len(s); i++ {
		t := DataType(s[i])
		if err := validateType(t); err != nil {
			return nil, err
		}
		seq = append(seq, t)
	}
	return seq, nil
}

func validateType(t DataType) error {
	switch t {
	case UTFTextType,
		LocaleTextType,
		PangoTextType,
		PhoneticType,
		XDXFType,
		YinBiaoOrKataType,
		PowerWordType,
		MediaWikiType,
		HTMLType,
		WordNetType,
		ResourceFileListType,
		WavType,
		PictureType,
		ExperimentalType:
		return nil
	default:
		return fmt.Errorf("%w: %q", errInvalidType, byte(t))
	}
}

// Parse splits raw word data into its fields. When sametypesequence is empty
// every field starts with its own type byte. Otherwise the types come from
// sametypesequence and the last field runs to the end of the data without a
// terminator or size.
func Parse(b []byte, sametypesequence []DataType) (*Word, error) {
	var wordData []*Data
	if len(sametypesequence) > 0 {
		for i, t := range sametypesequence {
			last := i == len(sametypesequence)-1
			var data []byte
			var err error
			switch {
			case last:
				data, b = b, nil
			case t.IsText():
				data, b, err = splitText(b, false)
			default:
				data, b, err = splitFile(b)
			}
			if err != nil {
				return nil, fmt.Errorf("field %d (%c): %w", i, byte(t), err)
			}
			wordData = append(wordData, &Data{
				Type: t,
				Data: data,
			})
		}
	} else {
		for len(b) > 0 {
			t := DataType(b[0])
			b = b[1:]

			var data []byte
			var err error
			if t.IsText() {
				// The terminator of the final field is sometimes dropped.
				data, b, err = splitText(b, true)
			} else {
				data, b, err = splitFile(b)
			}
			if err != nil {
				return nil, fmt.Errorf("field %d (%c): %w", len(wordData), byte(t), err)
			}
			wordData = append(wordData, &Data{
				Type: t,
				Data: data,
			})
		}
	}

	return &Word{
		Data: wordData,
	}, nil
}

func splitText(b []byte, lenient bool) ([]byte, []byte, error) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		if lenient {
			return b, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: missing terminator", errMalformedWord)
	}
	return b[:i], b[i+1:], nil
}

func splitFile(b []byte) ([]byte, []byte, error) {
	if len(b) < 4 {
		return nil, nil, fmt.Errorf("%w: missing size", errMalformedWord)
	}
	size := binary.BigEndian.Uint32(b)
	b = b[4:]
	if uint64(size) > uint64(len(b)) {
		return nil, nil, fmt.Errorf("%w: size %d exceeds %d remaining bytes", errMalformedWord, size, len(b))
	}
	return b[:size], b[size:], nil
}

// Dict represents a Stardict dictionary's dictionary data.
type Dict struct {
	r                Reader
	sametypesequence []DataType
}

// Options are options for dict data.
type Options struct {
	// SameTypeSequence is the sametypesequence value of the .ifo file.
	SameTypeSequence []DataType

	// CacheSize is the number of decompressed chunks kept by the dictzip
	// reader. It has no effect on uncompressed dictionaries.
	CacheSize int
}

// DefaultOptions is the default options for a Dict.
var DefaultOptions = &Options{
	CacheSize: DefaultCacheSize,
}

// New returns a new Dict reading from r. Dict takes ownership of the reader.
// The reader can be closed via the Dict's Close method.
func New(r Reader, options *Options) (*Dict, error) {
	if options == nil {
		options = DefaultOptions
	}

	for _, t := range options.SameTypeSequence {
		if err := validateType(t); err != nil {
			return nil, err
		}
	}

	return &Dict{
		r:                r,
		sametypesequence: options.SameTypeSequence,
	}, nil
}

// NewFromIfoPath opens the .dict or .dict.dz file belonging to the .ifo file
// at ifoPath.
func NewFromIfoPath(ifoPath string, options *Options) (*Dict, error) {
	if options == nil {
		options = DefaultOptions
	}
	r, err := Open(ifoPath, options)
	if err != nil {
		return nil, err
	}
	d, err := New(r, options)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	return d, nil
}

// SameTypeSequence returns the field types used to parse words.
func (d *Dict) SameTypeSequence() []DataType {
	return d.sametypesequence
}

// Reader returns the underlying data reader.
func (d *Dict) Reader() Reader {
	return d.r
}

// Bytes returns the raw data of the given index entry.
func (d *Dict) Bytes(e *idx.Word) ([]byte, error) {
	//nolint:wrapcheck // Reader errors are already wrapped.
	return d.r.Read(e.Offset, e.Size)
}

// Word retrieves the word for the given index entry from the dictionary.
func (d *Dict) Word(e *idx.Word) (*Word, error) {
	b, err := d.Bytes(e)
	if err != nil {
		return nil, err
	}
	return Parse(b, d.sametypesequence)
}

// Close closes the underlying reader.
func (d *Dict) Close() error {
	//nolint:wrapcheck // Reader errors are already wrapped.
	return d.r.Close()
}
