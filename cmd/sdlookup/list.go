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

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdlookup"
)

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "List dictionaries",
	ArgsUsage: "[DIR]...",
	Description: "List all dictionaries found in the given directories or " +
		"the data directories.",
	Action: func(c *cli.Context) error {
		paths := dataDirs(c)
		if c.Args().Present() {
			paths = c.Args().Slice()
		}

		opts, err := baseOptions(c)
		if err != nil {
			return err
		}
		s, errs := sdlookup.Load(paths, opts)
		defer s.Close()

		tbl := table.New("#", "Name", "Words", "Synonyms", "Author", "Path").WithWriter(c.App.Writer)
		for i, d := range s.Dictionaries() {
			desc := d.Descriptor()
			tbl.AddRow(i+1, d.Name(), desc.WordCount, desc.SynWordCount, desc.Author, d.Path())
		}
		tbl.Print()

		if len(errs) > 0 {
			return fmt.Errorf("%w: %d dictionaries failed to load", ErrSdlookup, len(errs))
		}
		return nil
	},
}
