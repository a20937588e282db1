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

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ianlewis/sdlookup/dict"
	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/internal/index"
	"github.com/ianlewis/sdlookup/syn"
)

// Entry is a headword with its definition and synonyms.
type Entry struct {
	Word     string
	Data     []*dict.Data
	Synonyms []string
}

// TextEntry returns an Entry with a single utf-8 text definition.
func TextEntry(word, definition string, synonyms ...string) *Entry {
	return &Entry{
		Word: word,
		Data: []*dict.Data{
			{
				Type: dict.UTFTextType,
				Data: []byte(definition),
			},
		},
		Synonyms: synonyms,
	}
}

// DictionaryOptions are options for WriteDictionary.
type DictionaryOptions struct {
	// Bookname is the bookname written to the .ifo file. The file name is used
	// if empty.
	Bookname string

	// DictZip compresses the dictionary data with dictzip.
	DictZip bool

	// OffsetBits is the idxoffsetbits value. 64 writes a 3.0.0 .ifo file.
	OffsetBits int

	// SameTypeSequence is the sametypesequence option.
	SameTypeSequence []dict.DataType

	// Ifo replaces the generated .ifo file contents when not empty.
	Ifo string
}

// WriteDictionary writes a complete dictionary file set named name into dir
// and returns the path of the .ifo file. Entries are written in the order
// given. Synonyms are sorted.
func WriteDictionary(t *testing.T, dir, name string, entries []*Entry, opts *DictionaryOptions) string {
	t.Helper()
	if opts == nil {
		opts = &DictionaryOptions{}
	}
	bits := opts.OffsetBits
	if bits == 0 {
		bits = 32
	}

	var data []byte
	var idxWords []*idx.Word
	var synWords []*syn.Word
	for i, e := range entries {
		b := MakeWordData(t, &dict.Word{Data: e.Data}, opts.SameTypeSequence)
		idxWords = append(idxWords, &idx.Word{
			Word:   e.Word,
			Offset: uint64(len(data)),
			//nolint:gosec // test data is small.
			Size: uint32(len(b)),
		})
		data = append(data, b...)
		for _, s := range e.Synonyms {
			synWords = append(synWords, &syn.Word{
				Word: s,
				//nolint:gosec // test data is small.
				OriginalWordIndex: uint32(i),
			})
		}
	}
	slices.SortStableFunc(synWords, func(a, b *syn.Word) int {
		return index.Compare(a.Word, b.Word)
	})

	base := filepath.Join(dir, name)
	idxData := MakeIndex(idxWords, bits)
	writeFile(t, base+".idx", idxData)
	if len(synWords) > 0 {
		writeFile(t, base+".syn", MakeSyn(t, synWords))
	}
	if opts.DictZip {
		WriteDict(t, base+".dict.dz", data, true)
	} else {
		WriteDict(t, base+".dict", data, false)
	}

	ifo := opts.Ifo
	if ifo == "" {
		var sb strings.Builder
		sb.WriteString("StarDict's dict ifo file\n")
		if bits == 64 {
			sb.WriteString("version=3.0.0\n")
		} else {
			sb.WriteString("version=2.4.2\n")
		}
		if opts.Bookname != "" {
			fmt.Fprintf(&sb, "bookname=%s\n", opts.Bookname)
		}
		fmt.Fprintf(&sb, "wordcount=%d\n", len(idxWords))
		if len(synWords) > 0 {
			fmt.Fprintf(&sb, "synwordcount=%d\n", len(synWords))
		}
		fmt.Fprintf(&sb, "idxfilesize=%d\n", len(idxData))
		if bits == 64 {
			sb.WriteString("idxoffsetbits=64\n")
		}
		if len(opts.SameTypeSequence) > 0 {
			seq := make([]byte, 0, len(opts.SameTypeSequence))
			for _, dt := range opts.SameTypeSequence {
				seq = append(seq, byte(dt))
			}
			fmt.Fprintf(&sb, "sametypesequence=%s\n", seq)
		}
		ifo = sb.String()
	}
	ifoPath := base + ".ifo"
	writeFile(t, ifoPath, []byte(ifo))
	return ifoPath
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
}
