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

package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

var queryCommand = &cli.Command{
	Name:        "query",
	Usage:       "Query dictionaries",
	ArgsUsage:   "QUERY...",
	Description: "Look up a word in all dictionaries.",
	Flags:       matchFlags,
	Action: func(c *cli.Context) error {
		if !c.Args().Present() {
			return fmt.Errorf("%w: missing query", ErrFlagParse)
		}

		opts, mode, err := sessionOptions(c)
		if err != nil {
			return err
		}
		s, err := loadSession(c, opts)
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := s.Query(strings.Join(c.Args().Slice(), " "), mode, 0)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSdlookup, err)
		}
		return printResults(c.App.Writer, results)
	},
}
