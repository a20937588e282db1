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

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdlookup"
	"github.com/ianlewis/sdlookup/match"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrSdlookup is a parent error for all command errors.
var ErrSdlookup = errors.New("sdlookup")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrSdlookup)

// ErrNoDictionaries indicates that no dictionary could be loaded.
var ErrNoDictionaries = fmt.Errorf("%w: no dictionaries", ErrSdlookup)

var copyrightNames = []string{
	"2021 Google LLC",
	"2024 Ian Lewis",
}

//nolint:gochecknoinits // init needed needed for global variable.
func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This is done because `sdlookup --help foo` will display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// matchFlags are the flags shared by commands that run queries.
var matchFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "mode",
		Usage:   "match `MODE`: exact, prefix or fuzzy",
		Aliases: []string{"m"},
		Value:   match.Exact.String(),
	},
	&cli.UintFlag{
		Name:    "limit",
		Usage:   "return at most `N` results",
		Aliases: []string{"n"},
		Value:   sdlookup.DefaultLimit,
	},
	&cli.BoolFlag{
		Name:  "case-sensitive",
		Usage: "do not fold case when matching",
	},
	&cli.IntFlag{
		Name:  "max-distance",
		Usage: "largest edit `DISTANCE` for fuzzy matches (0 scales with the query)",
	},
}

// newLogger returns the logger used by the commands. Warnings go to stderr.
func newLogger(c *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(c.App.ErrWriter)
	logger.SetLevel(logrus.WarnLevel)
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// dataDirs returns the dictionary locations to load. Default locations that
// do not exist are skipped.
func dataDirs(c *cli.Context) []string {
	dirs := c.StringSlice("data-dir")
	if c.IsSet("data-dir") {
		return dirs
	}

	var existing []string
	for _, d := range dirs {
		if _, err := os.Stat(d); err == nil {
			existing = append(existing, d)
		}
	}
	return existing
}

// baseOptions returns the session options set by the global flags.
func baseOptions(c *cli.Context) (*sdlookup.Options, error) {
	cacheSize := c.Int("cache-size")
	if cacheSize < 0 {
		return nil, fmt.Errorf("%w: negative cache-size: %d", ErrFlagParse, cacheSize)
	}
	return &sdlookup.Options{
		Match:     *match.DefaultOptions,
		CacheSize: cacheSize,
		Limit:     sdlookup.DefaultLimit,
		Logger:    newLogger(c),
	}, nil
}

// sessionOptions returns the session options and match mode for commands
// taking the match flags.
func sessionOptions(c *cli.Context) (*sdlookup.Options, match.Mode, error) {
	opts, err := baseOptions(c)
	if err != nil {
		return nil, 0, err
	}

	mode, err := match.ParseMode(c.String("mode"))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrFlagParse, err)
	}

	if limit := c.Uint("limit"); limit > 0 {
		if limit > math.MaxUint32 {
			return nil, 0, fmt.Errorf("%w: limit too large: %d", ErrFlagParse, limit)
		}
		opts.Limit = uint32(limit)
	}
	opts.Match.CaseSensitive = c.Bool("case-sensitive")
	opts.Match.MaxDistance = c.Int("max-distance")
	if opts.Match.MaxDistance < 0 {
		return nil, 0, fmt.Errorf("%w: negative max-distance: %d", ErrFlagParse, opts.Match.MaxDistance)
	}

	return opts, mode, nil
}

// loadSession loads the dictionaries named by the data-dir flag. Load
// failures are logged and only fatal if nothing could be loaded.
func loadSession(c *cli.Context, opts *sdlookup.Options) (*sdlookup.Session, error) {
	s, _ := sdlookup.Load(dataDirs(c), opts)
	if len(s.Dictionaries()) == 0 {
		_ = s.Close()
		return nil, ErrNoDictionaries
	}
	return s, nil
}

func printResults(w io.Writer, results []*sdlookup.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "Found no result!")
		return err
	}

	last := ""
	for _, r := range results {
		if r.Dictionary != last {
			if _, err := fmt.Fprintf(w, "From %s\n", r.Dictionary); err != nil {
				return err
			}
			last = r.Dictionary
		}
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}

func newSdlookupApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Search Stardict dictionaries.",
		Description: strings.Join([]string{
			"Stardict lookup utility written in Go.",
			"http://github.com/ianlewis/sdlookup",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "data-dir",
				Usage:   "include dictionaries in `DIR`",
				Aliases: []string{"d"},
				Value:   cli.NewStringSlice(dictLocations()...),
			},
			&cli.IntFlag{
				Name:  "cache-size",
				Usage: "keep `N` decompressed dictzip chunks per dictionary",
			},
			&cli.BoolFlag{
				Name:               "verbose",
				Usage:              "print debug logs",
				Aliases:            []string{"v"},
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			listCommand,
			queryCommand,
			randomCommand,
			replCommand,
		},
	}
}
