// Package corerex implements a regular-expression engine: a pattern
// parser producing an abstract syntax tree (package ast), a Thompson-
// style NFA builder and set-based simulator with capture-group
// tracking (package nfa), a streaming driver that preserves
// partial-match state across chunk boundaries (package stream), and an
// optional linear-bytecode compiler and thread VM selectable when the
// pattern carries no zero-width assertions (package bytecode).
//
// Compile a pattern once and reuse the result; a *Regex is safe for
// concurrent read-only use (Find/FindAll/IsMatch). The root package is
// a thin composition layer over the ast/nfa/bytecode/stream pipeline;
// no regex logic lives here beyond execution-path selection.
package corerex

import (
	"github.com/corerex/corerex/ast"
	"github.com/corerex/corerex/bytecode"
	"github.com/corerex/corerex/internal/diagnostics"
	"github.com/corerex/corerex/nfa"
	"github.com/corerex/corerex/prefilter"
	"github.com/corerex/corerex/stream"
)

// Regex is a compiled pattern: the source text, its AST, its NFA and,
// when eligible, a compiled bytecode program. It is immutable after
// Compile returns.
type Regex struct {
	pattern string
	ast     *ast.Pattern
	nfa     *nfa.NFA
	prog    *bytecode.Program // nil unless usesBytecode

	config Config
	pf     prefilter.Prefilter // nil if no literal was extracted

	states *statePool
}

// Compile parses pattern, lowers it to an NFA, and (when eligible)
// compiles a bytecode program, using DefaultConfig.
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile is like Compile but panics on error, for patterns known
// valid at init time.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("corerex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles pattern under an explicit Config.
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	if !config.UnicodeEnabled && containsPropertyEscape(pattern) {
		return nil, &Error{Kind: UnsupportedFeature, Pattern: pattern}
	}
	p, err := ast.Parse(pattern)
	if err != nil {
		return nil, &Error{Kind: InvalidPattern, Pattern: pattern, Err: err}
	}

	n, err := nfa.Compile(p)
	if err != nil {
		return nil, &Error{Kind: CompilationFailed, Pattern: pattern, Err: err}
	}

	r := &Regex{pattern: pattern, ast: p, nfa: n, config: config}

	if r.eligibleForBytecode() {
		prog, err := bytecode.Compile(n)
		if err != nil {
			return nil, &Error{Kind: CompilationFailed, Pattern: pattern, Err: err}
		}
		r.prog = prog
	}

	r.pf = buildPrefilter(p.Root)
	r.states = newStatePool(n, r.prog)
	return r, nil
}

// eligibleForBytecode decides whether the bytecode path applies:
// JITEnabled && PreferJIT && !ForceNFA, no capture groups required,
// and no anchor assertions anywhere in the pattern. The VM itself can
// track groups (see bytecode.VM), but the selection boundary is kept
// conservative so the simulator remains the single source of group
// semantics.
func (r *Regex) eligibleForBytecode() bool {
	if r.nfa.HasAssertion {
		return false
	}
	groupsRequired := r.config.CaptureGroups && r.ast.NumGroups > 1
	if groupsRequired {
		return false
	}
	return r.config.JITEnabled && r.config.PreferJIT && !r.config.ForceNFA
}

// containsPropertyEscape reports whether pattern uses \p or \P, the
// one syntax UnicodeEnabled gates. Walked byte by byte so an escaped
// backslash (`\\p`) is not mistaken for a property escape.
func containsPropertyEscape(pattern string) bool {
	for i := 0; i+1 < len(pattern); i++ {
		if pattern[i] != '\\' {
			continue
		}
		if pattern[i+1] == 'p' || pattern[i+1] == 'P' {
			return true
		}
		i++ // skip the escaped byte, whatever it is
	}
	return false
}

// buildPrefilter extracts a candidate-narrowing literal from the
// pattern: a literal alternation first (more selective when it
// applies), falling back to a single required literal.
func buildPrefilter(root ast.Node) prefilter.Prefilter {
	if lits, ok := prefilter.LiteralAlternatives(root); ok {
		alt, err := prefilter.NewAlternation(lits)
		if err == nil {
			return alt
		}
	}
	if lit, ok := prefilter.RequiredLiteral(root); ok && len(lit) > 0 {
		return prefilter.NewLiteralScan(lit)
	}
	return nil
}

// String returns the source pattern text.
func (r *Regex) String() string { return r.pattern }

// NumSubexp returns the number of capture groups including group 0.
func (r *Regex) NumSubexp() int { return r.ast.NumGroups }

// Diagnostics reports CPU fast-path availability, when the Config that
// compiled r enabled diagnostics; otherwise it returns the zero Report.
func (r *Regex) Diagnostics() diagnostics.Report {
	if !r.config.EnableDiagnostics {
		return diagnostics.Report{}
	}
	return diagnostics.Detect()
}

// UsesBytecode reports whether r selected the bytecode execution path.
func (r *Regex) UsesBytecode() bool { return r.prog != nil }

// IsMatch reports whether input contains any match.
func (r *Regex) IsMatch(input []byte) bool {
	return r.Find(input) != nil
}

// Find returns the leftmost-longest match, or nil if none exists.
func (r *Regex) Find(input []byte) *Match {
	if r.config.PreferStreaming {
		return r.findStreaming(input)
	}
	if r.pf != nil && !r.UsesBytecode() {
		return r.findWithPrefilter(input, 0)
	}
	return r.findAt(input, 0, false)
}

// FindAll returns every non-overlapping leftmost-longest match,
// advancing past an empty match by one byte to guarantee progress.
func (r *Regex) FindAll(input []byte) []*Match {
	if r.config.PreferStreaming {
		return r.findAllStreaming(input)
	}
	var out []*Match
	pos := 0
	for pos <= len(input) {
		var m *Match
		if r.pf != nil && !r.UsesBytecode() {
			m = r.findWithPrefilter(input, pos)
		} else {
			m = r.findAt(input, pos, false)
		}
		if m == nil {
			break
		}
		out = append(out, m)
		if m.End() > m.Start() {
			pos = m.End()
		} else {
			pos = m.Start() + 1
		}
	}
	return out
}

// findAt runs Find (anchored when anchored is true) from offset pos
// using the selected execution engine, managed through the state pool.
func (r *Regex) findAt(input []byte, pos int, anchored bool) *Match {
	st := r.states.get()
	defer r.states.put(st)

	if r.UsesBytecode() {
		var vm *bytecode.Match
		if anchored {
			vm = st.vm.FindAt(input, pos)
		} else {
			vm = st.vm.Find(input, pos)
		}
		if vm == nil {
			return nil
		}
		return r.finish(newMatch(convertSpans(len(vm.Groups), func(i int) (int, int) {
			return vm.Groups[i].Start, vm.Groups[i].End
		}), input))
	}

	var nm *nfa.Match
	if anchored {
		nm = st.sim.FindAt(input, pos)
	} else {
		nm = st.sim.Find(input, pos)
	}
	return r.finish(fromNFAMatch(nm, input))
}

// finish applies Config-level result policy: with CaptureGroups off,
// group slots beyond the whole match are reported unmatched even
// though the engine tracked them.
func (r *Regex) finish(m *Match) *Match {
	if m == nil || r.config.CaptureGroups {
		return m
	}
	for i := 1; i < len(m.groups); i++ {
		m.groups[i] = nfa.Span{Start: -1, End: -1}
	}
	return m
}

// findWithPrefilter uses the extracted literal to skip ahead to
// candidate start offsets, verifying each with an anchored search
// (the literal is always a required prefix of any match, see
// prefilter.RequiredLiteral and prefilter.LiteralAlternatives' doc
// comments) rather than trusting the prefilter's own match bounds, so
// prefilter selection can never change match results, only how fast
// they're found.
func (r *Regex) findWithPrefilter(input []byte, from int) *Match {
	pos := from
	for {
		cand := r.pf.Find(input, pos)
		if cand == -1 {
			return nil
		}
		if m := r.findAt(input, cand, true); m != nil {
			return m
		}
		pos = cand + 1
	}
}

// findStreaming reproduces Find's result via a one-shot stream.Matcher
// (a single Feed with the whole input, then Finalize), exercising the
// same code path Regex.Streaming uses incrementally. The streaming and
// direct paths agree on every input, so Config.PreferStreaming never
// changes observable results, only which machinery produced them.
func (r *Regex) findStreaming(input []byte) *Match {
	m := stream.NewMatcher(r.nfa)
	m.Feed(input)
	m.Finalize()
	matches := m.Matches()
	if len(matches) == 0 {
		return nil
	}
	bm := matches[0]
	return r.finish(newMatch(convertSpans(len(bm.Match.Groups), func(i int) (int, int) {
		return bm.Match.Groups[i].Start, bm.Match.Groups[i].End
	}), input))
}

// findAllStreaming is FindAll's PreferStreaming counterpart: the same
// one-shot stream.Matcher findStreaming uses, read to exhaustion
// instead of stopping at the first match.
func (r *Regex) findAllStreaming(input []byte) []*Match {
	m := stream.NewMatcher(r.nfa)
	m.Feed(input)
	m.Finalize()
	bms := m.Matches()
	if len(bms) == 0 {
		return nil
	}
	out := make([]*Match, len(bms))
	for i, bm := range bms {
		out[i] = r.finish(newMatch(convertSpans(len(bm.Match.Groups), func(j int) (int, int) {
			return bm.Match.Groups[j].Start, bm.Match.Groups[j].End
		}), input))
	}
	return out
}

// Streaming returns a new streaming matcher over r's NFA, letting a
// caller feed input incrementally instead of supplying it all up
// front. Returns UnsupportedFeature if Config disabled streaming.
func (r *Regex) Streaming() (*stream.Matcher, error) {
	if !r.config.StreamingEnabled {
		return nil, &Error{Kind: UnsupportedFeature, Pattern: r.pattern}
	}
	return stream.NewMatcher(r.nfa), nil
}
