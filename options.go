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
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/ianlewis/sdlookup/dict"
	"github.com/ianlewis/sdlookup/match"
)

// DefaultLimit is the default number of results returned by a session query.
const DefaultLimit = 100

// Options are options for loading and querying dictionaries. Zero fields use
// the defaults.
type Options struct {
	// Match configures matching in each dictionary.
	Match match.Options

	// CacheSize is the number of decompressed dictzip chunks kept per
	// dictionary.
	CacheSize int

	// Limit caps the number of results of a session query.
	Limit uint32

	// Parallelism bounds the number of dictionaries loaded at once. It
	// defaults to GOMAXPROCS.
	Parallelism int

	// Logger receives load warnings and query debug logs. It defaults to the
	// logrus standard logger.
	Logger *logrus.Logger

	// Variants returns the forms of a query to look up, in order. The query
	// itself is looked up when nil.
	Variants func(string) []string
}

// DefaultOptions is the default options.
var DefaultOptions = &Options{
	Match:     *match.DefaultOptions,
	CacheSize: dict.DefaultCacheSize,
	Limit:     DefaultLimit,
}

func (o *Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

func (o *Options) limit() uint32 {
	if o.Limit > 0 {
		return o.Limit
	}
	return DefaultLimit
}

func (o *Options) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

func (o *Options) variants(q string) []string {
	if o.Variants == nil {
		return []string{q}
	}
	v := o.Variants(q)
	if len(v) == 0 {
		return []string{q}
	}
	return v
}
