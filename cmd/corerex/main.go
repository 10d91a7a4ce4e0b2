// Command corerex is a thin command-line wrapper over the corerex
// library: compile a pattern, match it against input, and report
// whether (and where) it matched. It consumes the library surface
// only; no matching logic lives here.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/corerex/corerex"
	"github.com/corerex/corerex/internal/diagnostics"
)

const usage = `usage: corerex [flags] <pattern> [input-file]

Matches pattern against input-file, or standard input if omitted.

flags:
  -V, --verbose      print the match span and every capture group
  -q, --quiet        print nothing; only set the exit code
  -t, --timing       print compile and match duration to stderr
  -g, --groups-only  print only capture group text, one per line
  -f, --features     print detected CPU fast-path diagnostics and exit
  -v, --version      print the version string and exit
  -h, --help         print this message and exit

exit codes:
  0  pattern matched
  1  no match, or the pattern failed to compile
  2  input could not be read (out of memory or I/O error)
  3  an internal error occurred
`

const version = "corerex 0.1.0"

type flags struct {
	verbose    bool
	quiet      bool
	timing     bool
	groupsOnly bool
	features   bool
	showVer    bool
	help       bool
}

func parseFlags(args []string) (*flags, []string, error) {
	fs := flag.NewFlagSet("corerex", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	f := &flags{}
	for _, name := range []string{"V", "verbose"} {
		fs.BoolVar(&f.verbose, name, false, "")
	}
	for _, name := range []string{"q", "quiet"} {
		fs.BoolVar(&f.quiet, name, false, "")
	}
	for _, name := range []string{"t", "timing"} {
		fs.BoolVar(&f.timing, name, false, "")
	}
	for _, name := range []string{"g", "groups-only"} {
		fs.BoolVar(&f.groupsOnly, name, false, "")
	}
	for _, name := range []string{"f", "features"} {
		fs.BoolVar(&f.features, name, false, "")
	}
	for _, name := range []string{"v", "version"} {
		fs.BoolVar(&f.showVer, name, false, "")
	}
	for _, name := range []string{"h", "help"} {
		fs.BoolVar(&f.help, name, false, "")
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	f, rest, err := parseFlags(args)
	if err != nil {
		fmt.Fprint(stderr, usage)
		return 1
	}

	if f.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if f.showVer {
		fmt.Fprintln(stdout, version)
		return 0
	}
	if f.features {
		fmt.Fprintln(stdout, diagnostics.Detect().String())
		return 0
	}

	if len(rest) < 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}
	pattern := rest[0]

	var input []byte
	if len(rest) >= 2 {
		input, err = os.ReadFile(rest[1])
	} else {
		input, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(stderr, "corerex: read input:", err)
		return 2
	}

	compileStart := time.Now()
	re, err := corerex.Compile(pattern)
	compileDur := time.Since(compileStart)
	if err != nil {
		if !f.quiet {
			fmt.Fprintln(stderr, "corerex:", err)
		}
		return 1
	}

	matchStart := time.Now()
	m := re.Find(input)
	matchDur := time.Since(matchStart)

	if f.timing {
		fmt.Fprintf(stderr, "corerex: compile %s, match %s\n", compileDur, matchDur)
	}

	if m == nil {
		return 1
	}

	if f.quiet {
		return 0
	}

	switch {
	case f.groupsOnly:
		for i := 1; i < m.NumGroups(); i++ {
			if m.Found(i) {
				fmt.Fprintf(stdout, "%s\n", m.GroupSlice(i))
			}
		}
	case f.verbose:
		fmt.Fprintf(stdout, "match: [%d,%d) %q\n", m.Start(), m.End(), m.Slice())
		for i := 1; i < m.NumGroups(); i++ {
			if m.Found(i) {
				fmt.Fprintf(stdout, "  group %d: %q\n", i, m.GroupSlice(i))
			} else {
				fmt.Fprintf(stdout, "  group %d: <no match>\n", i)
			}
		}
	default:
		fmt.Fprintf(stdout, "%s\n", m.Slice())
	}

	return 0
}
