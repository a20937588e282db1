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

package sdlookup

import (
	"strings"
	"sync"

	"github.com/ianlewis/sdlookup/dict"
	"github.com/ianlewis/sdlookup/idx"
)

// Result is a query match. The definition is read on first use.
type Result struct {
	// Dictionary is the name of the dictionary holding the entry.
	Dictionary string

	// Headword is the matched index entry's word as stored.
	Headword string

	// Synonym is the synonym that matched when ViaSynonym is set.
	Synonym    string
	ViaSynonym bool

	// Distance is the edit distance of a fuzzy match.
	Distance int

	// Position is the rank of the result within its dictionary.
	Position int

	entry *idx.Word
	dict  *dict.Dict

	once sync.Once
	data []byte
	err  error
}

// Entry returns the index entry of the result.
func (r *Result) Entry() idx.Word {
	return *r.entry
}

// Definition returns the raw definition bytes. The data is read once and the
// outcome, including any error, is kept.
func (r *Result) Definition() ([]byte, error) {
	r.once.Do(func() {
		r.data, r.err = r.dict.Bytes(r.entry)
	})
	return r.data, r.err
}

// Word returns the definition split into its fields.
func (r *Result) Word() (*dict.Word, error) {
	b, err := r.Definition()
	if err != nil {
		return nil, err
	}
	return dict.Parse(b, r.dict.SameTypeSequence())
}

// Available reports whether the definition could be read, fetching it if
// needed. A result whose fetch failed stays unavailable.
func (r *Result) Available() bool {
	_, err := r.Definition()
	return err == nil
}

// Err returns the error of the definition fetch, if any.
func (r *Result) Err() error {
	_, err := r.Definition()
	return err
}

// String returns a plain text rendering of the result.
func (r *Result) String() string {
	var sb strings.Builder
	sb.WriteString(r.Headword)
	if r.ViaSynonym {
		sb.WriteString(" (" + r.Synonym + ")")
	}
	sb.WriteString("\n")

	w, err := r.Word()
	if err != nil {
		sb.WriteString("<unavailable: " + err.Error() + ">\n")
		return sb.String()
	}
	for _, d := range w.Data {
		if s := d.String(); s != "" {
			sb.WriteString(s + "\n")
		}
	}
	return sb.String()
}
