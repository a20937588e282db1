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

// Package folding implements query normalization. Folding is only ever
// applied to queries and to temporary comparison keys, never to the headwords
// stored in a dictionary.
package folding

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query returns the transformer applied to exact and prefix queries.
// Whitespace is always folded. When caseSensitive is false ASCII letters are
// lowered, matching the case folding used by the StarDict sort order.
func Query(caseSensitive bool) transform.Transformer {
	if caseSensitive {
		return &WhitespaceFolder{}
	}
	return transform.Chain(&WhitespaceFolder{}, ASCIILower())
}

// Fuzzy returns the transformer applied to fuzzy queries and to the headwords
// they are compared against. When caseSensitive is false full Unicode case
// folding is applied.
func Fuzzy(caseSensitive bool) transform.Transformer {
	if caseSensitive {
		return transform.Chain(&WhitespaceFolder{}, norm.NFC)
	}
	return transform.Chain(&WhitespaceFolder{}, norm.NFC, cases.Fold())
}

// ASCIILower maps ASCII upper case letters to lower case and leaves all other
// runes alone.
func ASCIILower() transform.Transformer {
	return runes.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	})
}

// String applies t to s.
func String(t transform.Transformer, s string) (string, error) {
	out, _, err := transform.String(t, s)
	if err != nil {
		return "", fmt.Errorf("folding %q: %w", s, err)
	}
	return out, nil
}

// WhitespaceFolder trims leading and trailing whitespace and collapses each
// internal whitespace span into a single ASCII space.
type WhitespaceFolder struct {
	// started is set once a non-whitespace rune has been emitted.
	started bool

	// pending is set while inside a whitespace span that follows a
	// non-whitespace rune.
	pending bool
}

// Transform implements [transform.Transformer.Transform].
func (w *WhitespaceFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	nDst, nSrc := 0, 0
	for nSrc < len(src) {
		c, size := utf8.DecodeRune(src[nSrc:])
		if c == utf8.RuneError && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		if unicode.IsSpace(c) {
			nSrc += size
			w.pending = w.started
			continue
		}

		need := utf8.RuneLen(c)
		if w.pending {
			need++
		}
		if nDst+need > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		if w.pending {
			dst[nDst] = ' '
			nDst++
			w.pending = false
		}
		// c may be utf8.RuneError, whose encoding is longer than size.
		nDst += utf8.EncodeRune(dst[nDst:], c)
		nSrc += size
		w.started = true
	}

	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (w *WhitespaceFolder) Reset() {
	*w = WhitespaceFolder{}
}
