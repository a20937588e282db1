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
	"fmt"
	"math/rand/v2"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdlookup"
)

var randomCommand = &cli.Command{
	Name:        "random",
	Usage:       "Print random words",
	Description: "Print random headwords and their definitions.",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Usage:   "print `N` words",
			Aliases: []string{"n"},
			Value:   1,
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "random `SEED` (0 picks one)",
		},
	},
	Action: func(c *cli.Context) error {
		opts, err := baseOptions(c)
		if err != nil {
			return err
		}
		s, err := loadSession(c, opts)
		if err != nil {
			return err
		}
		defer s.Close()

		seed := c.Uint64("seed")
		if seed == 0 {
			seed = rand.Uint64()
		}
		rng := rand.New(rand.NewPCG(seed, seed))

		var results []*sdlookup.Result
		for range c.Int("count") {
			r, err := s.Random(rng)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrSdlookup, err)
			}
			results = append(results, r)
		}
		return printResults(c.App.Writer, results)
	},
}
