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
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ianlewis/sdlookup/idx"
	"github.com/ianlewis/sdlookup/match"
)

// Session is a set of loaded dictionaries queried together. Dictionaries are
// kept in the order they were declared, which is also their priority.
type Session struct {
	dicts  []*Dictionary
	byName map[string]*Dictionary
	opts   *Options
	log    *logrus.Logger
}

// Load opens the dictionaries at paths. Each path is an .ifo file or a
// directory that is searched recursively for .ifo files. Dictionaries that
// fail to load are skipped and reported as [*LoadError] values. The session
// is usable even if no dictionary could be loaded.
func Load(paths []string, options *Options) (*Session, []error) {
	if options == nil {
		options = DefaultOptions
	}
	s := &Session{
		byName: map[string]*Dictionary{},
		opts:   options,
		log:    options.logger(),
	}

	ifoPaths, errs := expand(paths)

	dicts := make([]*Dictionary, len(ifoPaths))
	loadErrs := make([]error, len(ifoPaths))
	var g errgroup.Group
	g.SetLimit(options.parallelism())
	for i, path := range ifoPaths {
		g.Go(func() error {
			dicts[i], loadErrs[i] = Open(path, options)
			return nil
		})
	}
	_ = g.Wait()

	for i, d := range dicts {
		if loadErrs[i] != nil {
			errs = append(errs, loadErrs[i])
			continue
		}
		s.add(d)
	}

	for _, err := range errs {
		s.log.WithError(err).Warn("failed to load dictionary")
	}
	s.log.WithFields(logrus.Fields{
		"loaded": len(s.dicts),
		"failed": len(errs),
	}).Debug("dictionaries loaded")

	return s, errs
}

// expand returns the .ifo files named by paths in declared order.
func expand(paths []string) ([]string, []error) {
	var ifoPaths []string
	var errs []error
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			errs = append(errs, &LoadError{Path: path, Err: err})
			continue
		}
		if !fi.IsDir() {
			ifoPaths = append(ifoPaths, path)
			continue
		}

		if err := filepath.WalkDir(path, func(p string, info fs.DirEntry, err error) error {
			// Walking the file path will ignore errors.
			if err != nil {
				errs = append(errs, &LoadError{Path: p, Err: err})
				return nil
			}
			if !info.IsDir() && (filepath.Ext(info.Name()) == ".ifo" || filepath.Ext(info.Name()) == ".IFO") {
				ifoPaths = append(ifoPaths, p)
			}
			return nil
		}); err != nil {
			errs = append(errs, &LoadError{Path: path, Err: err})
		}
	}
	return ifoPaths, errs
}

// add registers d under a unique name. A name that is already taken gets a
// "#n" suffix.
func (s *Session) add(d *Dictionary) {
	name := d.Name()
	for n := 2; s.byName[name] != nil; n++ {
		name = fmt.Sprintf("%s#%d", d.Name(), n)
	}
	if name != d.Name() {
		d.rename(name)
	}
	s.byName[name] = d
	s.dicts = append(s.dicts, d)
}

// Dictionaries returns the loaded dictionaries in priority order.
func (s *Session) Dictionaries() []*Dictionary {
	return slices.Clone(s.dicts)
}

// Dictionary returns the dictionary with the given name.
func (s *Session) Dictionary(name string) (*Dictionary, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// Query searches every dictionary for text. Each dictionary's results keep
// their order and dictionaries are interleaved by priority. At most limit
// results are returned. A limit of zero uses Options.Limit.
func (s *Session) Query(text string, mode match.Mode, limit uint32) ([]*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if limit == 0 {
		limit = s.opts.limit()
	}

	log := s.log.WithFields(logrus.Fields{
		"query_id": uuid.NewString(),
		"mode":     mode.String(),
	})
	start := time.Now()

	variants := dedupe(s.opts.variants(text))
	perDict := make([][]*Result, len(s.dicts))
	var g errgroup.Group
	for i, d := range s.dicts {
		g.Go(func() error {
			r, err := d.queryVariants(variants, mode, log.WithField("dictionary", d.Name()))
			perDict[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := merge(perDict)
	results = results[:min(len(results), int(limit))]

	log.WithFields(logrus.Fields{
		"results": len(results),
		"elapsed": time.Since(start),
	}).Debug("query done")
	return results, nil
}

// queryVariants looks up each variant in order, drops entries found by an
// earlier variant and orders the rest by distance.
func (d *Dictionary) queryVariants(variants []string, mode match.Mode, log *logrus.Entry) ([]*Result, error) {
	if len(variants) == 1 {
		return d.query(variants[0], mode, log)
	}

	var results []*Result
	seen := map[*idx.Word]bool{}
	for _, v := range variants {
		r, err := d.query(v, mode, log)
		if err != nil {
			return nil, err
		}
		for _, x := range r {
			if seen[x.entry] {
				continue
			}
			seen[x.entry] = true
			results = append(results, x)
		}
	}
	// Keep the dictionary's own order consistent with the merge order.
	slices.SortStableFunc(results, func(a, b *Result) int {
		return a.Distance - b.Distance
	})
	for i, r := range results {
		r.Position = i
	}
	return results, nil
}

// merge orders results by distance, then by position within their
// dictionary, then by dictionary priority.
func merge(perDict [][]*Result) []*Result {
	type ranked struct {
		r        *Result
		priority int
	}
	var all []ranked
	for p, rs := range perDict {
		for _, r := range rs {
			all = append(all, ranked{r: r, priority: p})
		}
	}
	slices.SortStableFunc(all, func(a, b ranked) int {
		if a.r.Distance != b.r.Distance {
			return a.r.Distance - b.r.Distance
		}
		if a.r.Position != b.r.Position {
			return a.r.Position - b.r.Position
		}
		return a.priority - b.priority
	})

	results := make([]*Result, 0, len(all))
	for _, x := range all {
		results = append(results, x.r)
	}
	return results
}

func dedupe(s []string) []string {
	var out []string
	for _, v := range s {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Random returns a random headword from the loaded dictionaries. Every
// headword is equally likely.
func (s *Session) Random(rng *rand.Rand) (*Result, error) {
	total := 0
	for _, d := range s.dicts {
		total += d.Len()
	}
	if total == 0 {
		return nil, errNoWords
	}

	n := rng.IntN(total)
	for _, d := range s.dicts {
		if n < d.Len() {
			return d.result(n, 0, "", false), nil
		}
		n -= d.Len()
	}
	// Unreachable since n < total.
	return nil, errNoWords
}

// Close closes every dictionary.
func (s *Session) Close() error {
	var errs []error
	for _, d := range s.dicts {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
