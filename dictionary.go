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
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ianlewis/sdlookup/dict"
	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/ifo"
	"github.com/ianlewis/sdlookup/match"
	"github.com/ianlewis/sdlookup/syn"
)

// Dictionary is a loaded stardict dictionary.
type Dictionary struct {
	name string
	path string

	desc *ifo.Descriptor
	idx  *idx.Idx
	syn  *syn.Syn
	dict *dict.Dict

	match match.Options
	log   *logrus.Entry

	verifyOnce sync.Once

	// linear is set once the index is found to be out of order.
	linear atomic.Bool
}

// Open opens a Stardict dictionary from the given .ifo file path. The index
// and synonyms are read into memory. Errors are returned as a [*LoadError].
func Open(path string, options *Options) (*Dictionary, error) {
	if options == nil {
		options = DefaultOptions
	}

	d, err := open(path, options)
	if err != nil {
		return nil, &LoadError{
			Path: path,
			Err:  err,
		}
	}
	return d, nil
}

func open(path string, options *Options) (*Dictionary, error) {
	ifoExt := filepath.Ext(path)
	if ifoExt != ".ifo" && ifoExt != ".IFO" {
		return nil, fmt.Errorf("%w: bad extension: %v", ifo.ErrMalformedDescriptor, ifoExt)
	}

	desc, err := ifo.Open(path)
	if err != nil {
		return nil, err
	}

	sts, err := dict.ParseSameTypeSequence(desc.SameTypeSequence)
	if err != nil {
		return nil, fmt.Errorf("%w: sametypesequence: %w", ifo.ErrMalformedDescriptor, err)
	}

	data, err := dict.NewFromIfoPath(path, &dict.Options{
		SameTypeSequence: sts,
		CacheSize:        options.CacheSize,
	})
	if err != nil {
		return nil, err
	}
	_, desc.Compressed = data.Reader().(*dict.DictzipReader)

	index, err := idx.NewFromIfoPath(path, &idx.Options{
		OffsetBits: desc.IdxOffsetBits,
		WordCount:  desc.WordCount,
		FileSize:   desc.IdxFileSize,
		DataSize:   data.Reader().Size(),
	})
	if err != nil {
		_ = data.Close()
		return nil, err
	}

	var synonyms *syn.Syn
	if desc.SynWordCount > 0 {
		synonyms, err = syn.NewFromIfoPath(path, &syn.Options{
			WordCount: desc.SynWordCount,
			IndexSize: index.Len(),
		})
		if err != nil {
			_ = data.Close()
			return nil, err
		}
	}

	d := &Dictionary{
		name:  desc.Bookname,
		path:  path,
		desc:  desc,
		idx:   index,
		syn:   synonyms,
		dict:  data,
		match: options.Match,
	}
	d.log = options.logger().WithFields(logrus.Fields{
		"dictionary": d.name,
		"path":       d.path,
	})
	return d, nil
}

// Name returns the dictionary name. It is the bookname unless the session
// renamed it to keep names unique.
func (d *Dictionary) Name() string {
	return d.name
}

func (d *Dictionary) rename(name string) {
	d.name = name
	d.log = d.log.WithField("dictionary", name)
}

// Path returns the path of the .ifo file.
func (d *Dictionary) Path() string {
	return d.path
}

// Descriptor returns the dictionary metadata.
func (d *Dictionary) Descriptor() *ifo.Descriptor {
	return d.desc
}

// Len returns the number of headwords.
func (d *Dictionary) Len() int {
	return d.idx.Len()
}

// Degraded reports whether the index was found to be out of order and
// exact and prefix queries fall back to a linear scan.
func (d *Dictionary) Degraded() bool {
	return d.linear.Load()
}

// Query returns the entries matching text. Direct hits come first, followed
// by entries reached through a synonym. Fuzzy results are ordered by
// distance with direct hits first among equal distances.
func (d *Dictionary) Query(text string, mode match.Mode) ([]*Result, error) {
	return d.query(text, mode, d.log)
}

func (d *Dictionary) query(text string, mode match.Mode, log *logrus.Entry) ([]*Result, error) {
	direct, err := d.find(d.idx, text, mode, log)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(direct))
	results := make([]*Result, 0, len(direct))
	for _, c := range direct {
		seen[c.Index] = true
		results = append(results, d.result(c.Index, c.Distance, "", false))
	}

	if d.syn != nil {
		synonyms, err := d.find(d.syn, text, mode, log)
		if err != nil {
			return nil, err
		}
		for _, c := range synonyms {
			w := d.syn.Word(c.Index)
			target := int(w.OriginalWordIndex)
			if seen[target] {
				continue
			}
			seen[target] = true
			results = append(results, d.result(target, c.Distance, w.Word, true))
		}
	}

	switch mode {
	case match.Prefix:
		results = results[:min(len(results), limitOr(d.match.PrefixLimit, match.DefaultOptions.PrefixLimit))]
	case match.Fuzzy:
		slices.SortStableFunc(results, func(a, b *Result) int {
			return a.Distance - b.Distance
		})
		results = results[:min(len(results), limitOr(d.match.FuzzyLimit, match.DefaultOptions.FuzzyLimit))]
	}

	for i, r := range results {
		r.Position = i
	}
	return results, nil
}

func limitOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

// find runs the match engine over t. Exact and prefix queries are verified
// against the table order the first time and fall back to a linear scan when
// the table is not sorted.
func (d *Dictionary) find(t match.Table, text string, mode match.Mode, log *logrus.Entry) ([]match.Candidate, error) {
	opts := d.match
	if mode != match.Fuzzy {
		d.verifyOnce.Do(d.verify)
		opts.Linear = d.linear.Load()
	}

	c, err := match.Find(t, text, mode, &opts)
	if errors.Is(err, idx.ErrUnsortedIndex) {
		d.degrade(err)
		opts.Linear = true
		c, err = match.Find(t, text, mode, &opts)
	}
	if err != nil {
		log.WithError(err).Debug("match failed")
		return nil, fmt.Errorf("querying %q: %w", d.name, err)
	}
	return c, nil
}

func (d *Dictionary) verify() {
	if err := d.idx.Verify(); err != nil {
		d.degrade(err)
		return
	}
	if d.syn != nil {
		if err := d.syn.Verify(); err != nil {
			d.degrade(err)
		}
	}
}

func (d *Dictionary) degrade(err error) {
	if d.linear.CompareAndSwap(false, true) {
		d.log.WithError(err).Warn("index is not sorted, using linear search")
	}
}

func (d *Dictionary) result(i, distance int, synonym string, viaSynonym bool) *Result {
	e := d.idx.Word(i)
	return &Result{
		Dictionary: d.name,
		Headword:   e.Word,
		Synonym:    synonym,
		ViaSynonym: viaSynonym,
		Distance:   distance,
		entry:      e,
		dict:       d.dict,
	}
}

// Close closes the dictionary data file.
func (d *Dictionary) Close() error {
	//nolint:wrapcheck // Reader errors are already wrapped.
	return d.dict.Close()
}
