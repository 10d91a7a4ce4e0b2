// Package prefilter narrows candidate match-start positions before the
// NFA or bytecode path runs, using literals extracted from the pattern
// AST. It covers two cases: a single required literal (bytes.Index)
// and a literal alternation (Aho-Corasick) — each good enough to skip
// running the automaton at every byte offset when the pattern has a
// literal anchor to scan for. No Teddy/SIMD multi-literal search, no
// byte-frequency heuristics.
package prefilter

// Prefilter finds candidate positions in a haystack where a full match
// could start. A prefilter hit is necessary but not sufficient: unless
// IsComplete is true the caller must still verify with the full
// automaton.
type Prefilter interface {
	// Find returns the index of the first candidate at or after start,
	// or -1 if none exists.
	Find(haystack []byte, start int) int

	// IsComplete reports whether a Find hit is itself a full match
	// (true only for a prefilter built from the pattern's entire
	// literal content, with nothing left for the automaton to check).
	IsComplete() bool

	// LiteralLen returns the match length when every hit has one fixed
	// length, and 0 otherwise (Alternation reports 0 even though its
	// IsComplete is true, since its branches may differ in length).
	LiteralLen() int
}
