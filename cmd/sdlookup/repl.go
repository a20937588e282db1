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
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdlookup"
	"github.com/ianlewis/sdlookup/match"
)

const replPrompt = "Enter a word to search or z to exit."

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "Query dictionaries interactively",
	Description: "Read queries from standard input. A line starting with " +
		"exact, prefix or fuzzy uses that mode. z or exit quits.",
	Flags: matchFlags,
	Action: func(c *cli.Context) error {
		opts, mode, err := sessionOptions(c)
		if err != nil {
			return err
		}
		s, err := loadSession(c, opts)
		if err != nil {
			return err
		}
		defer s.Close()

		return repl(c.App.Reader, c.App.Writer, s, mode)
	},
}

// repl answers queries read line by line from r until r is exhausted or the
// user quits.
func repl(r io.Reader, w io.Writer, s *sdlookup.Session, mode match.Mode) error {
	scanner := bufio.NewScanner(r)
	for {
		if _, err := fmt.Fprintln(w, replPrompt); err != nil {
			return err
		}
		if !scanner.Scan() {
			break
		}

		words, err := shellquote.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(w, "invalid query: %v\n", err)
			continue
		}
		if len(words) == 0 {
			continue
		}
		if strings.EqualFold(words[0], "z") || strings.EqualFold(words[0], "exit") {
			return nil
		}

		queryMode := mode
		if m, err := match.ParseMode(words[0]); err == nil && len(words) > 1 {
			queryMode = m
			words = words[1:]
		}

		results, err := s.Query(strings.Join(words, " "), queryMode, 0)
		if err != nil {
			fmt.Fprintf(w, "query failed: %v\n", err)
			continue
		}
		if err := printResults(w, results); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: reading input: %w", ErrSdlookup, err)
	}
	return nil
}
