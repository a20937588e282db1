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
	"bytes"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/ianlewis/sdlookup/dict"
	"github.com/ianlewis/sdlookup/internal/testutil"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newSdlookupApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"sdlookup"}, args...))
	return out.String(), err
}

// TestBaseOptions tests that the global flags reach the session options.
func TestBaseOptions(t *testing.T) {
	t.Parallel()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.Int("cache-size", 0, "")
	set.Bool("verbose", false, "")
	if err := set.Parse([]string{"--cache-size", "3"}); err != nil {
		t.Fatal(err)
	}
	c := cli.NewContext(&cli.App{Writer: io.Discard, ErrWriter: io.Discard}, set, nil)

	opts, err := baseOptions(c)
	if err != nil {
		t.Fatalf("baseOptions: %v", err)
	}
	if want, got := 3, opts.CacheSize; want != got {
		t.Fatalf("CacheSize; want: %d, got: %d", want, got)
	}
}

// TestCommands_cacheSize tests that every command honours --cache-size.
func TestCommands_cacheSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteDictionary(t, dir, "fruit", []*testutil.Entry{
		testutil.TextEntry("apple", "a round fruit"),
		testutil.TextEntry("banana", "a long yellow fruit"),
	}, &testutil.DictionaryOptions{
		Bookname:         "Fruit",
		DictZip:          true,
		SameTypeSequence: []dict.DataType{dict.UTFTextType},
	})

	for _, args := range [][]string{
		{"list"},
		{"query", "apple"},
		{"random", "--seed", "1"},
	} {
		// Commands are package level values mutated by App.Run so the
		// subtests run sequentially.
		t.Run(args[0], func(t *testing.T) {
			_, err := runApp(t, append([]string{"--data-dir", dir, "--cache-size=-1"}, args...)...)
			if !errors.Is(err, ErrFlagParse) {
				t.Fatalf("Run: want %v, got %v", ErrFlagParse, err)
			}

			out, err := runApp(t, append([]string{"--data-dir", dir, "--cache-size=1"}, args...)...)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !strings.Contains(out, "Fruit") {
				t.Fatalf("Run: output %q does not name the dictionary", out)
			}
		})
	}
}
