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

package match

import (
	"errors"
	"fmt"
	"strings"
)

var errUnknownMode = errors.New("unknown match mode")

// Mode is the kind of match performed by a query.
type Mode int

const (
	// Exact matches headwords equal to the query.
	Exact Mode = iota

	// Prefix matches headwords starting with the query.
	Prefix

	// Fuzzy matches headwords within an edit distance of the query.
	Fuzzy
)

var modeNames = map[Mode]string{
	Exact:  "exact",
	Prefix: "prefix",
	Fuzzy:  "fuzzy",
}

// String implements [fmt.Stringer].
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode named by s, ignoring case.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errUnknownMode, s)
}
