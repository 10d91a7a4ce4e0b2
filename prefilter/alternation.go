package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/corerex/corerex/ast"
)

// MinAlternatives is the smallest literal-alternation branch count worth
// building an Aho-Corasick automaton for; below this a LiteralScan (or
// no prefilter at all) is cheaper to build and run.
const MinAlternatives = 3

// LiteralAlternatives reports the flattened set of pure-literal
// branches of a top-level Alternation tree (`cat|dog|bird`-shaped
// patterns, also when the whole pattern is wrapped in non-capturing
// groups), or ok=false if n is not such a tree, any branch is not a
// pure literal run, or there are fewer than MinAlternatives branches.
// Alternation associates left in the parser, so the tree is a
// left-leaning chain of binary nodes; this walks it the same way
// compileAlternation (nfa/compile.go) does.
func LiteralAlternatives(n ast.Node) ([][]byte, bool) {
	for {
		g, ok := n.(*ast.NonCaptureGroup)
		if !ok {
			break
		}
		n = g.Inner
	}
	var branches []ast.Node
	flattenAlternation(n, &branches)
	if len(branches) < MinAlternatives {
		return nil, false
	}
	lits := make([][]byte, 0, len(branches))
	for _, b := range branches {
		lit, complete := pureLiteral(b)
		if !complete {
			return nil, false
		}
		lits = append(lits, lit)
	}
	return lits, true
}

func flattenAlternation(n ast.Node, out *[]ast.Node) {
	if alt, ok := n.(*ast.Alternation); ok {
		flattenAlternation(alt.Left, out)
		flattenAlternation(alt.Right, out)
		return
	}
	*out = append(*out, n)
}

// pureLiteral reports whether n is entirely a literal byte sequence
// (a Literal, or a Concatenation/group of nothing but Literals), with
// no anchors, classes, or quantifiers anywhere in it — a stricter
// condition than RequiredLiteral's prefix walk, since every branch of
// the alternation must resolve to one exact candidate string for
// Aho-Corasick to replace the automaton outright.
func pureLiteral(n ast.Node) ([]byte, bool) {
	switch v := n.(type) {
	case *ast.Literal:
		return []byte{v.Byte}, true
	case *ast.NonCaptureGroup:
		return pureLiteral(v.Inner)
	case *ast.CaptureGroup:
		return pureLiteral(v.Inner)
	case *ast.Concatenation:
		left, ok := pureLiteral(v.Left)
		if !ok {
			return nil, false
		}
		right, ok := pureLiteral(v.Right)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	default:
		return nil, false
	}
}

// Alternation is a Prefilter backed by a multi-pattern Aho-Corasick
// automaton over a fixed literal set, for patterns with several
// literal alternatives.
type Alternation struct {
	automaton *ahocorasick.Automaton
}

// NewAlternation builds an Aho-Corasick automaton over literals.
func NewAlternation(literals [][]byte) (*Alternation, error) {
	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern(lit)
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Alternation{automaton: automaton}, nil
}

// Find returns the start of the first literal match at or after start.
func (p *Alternation) Find(haystack []byte, start int) int {
	m := p.automaton.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// IsComplete reports true: since every branch of the alternation this
// automaton was built from is a complete literal and the pattern has no
// other structure, a hit from the automaton already *is* the full regex
// match. The root package still re-verifies every candidate with an
// anchored NFA/bytecode search rather than trusting IsComplete directly
// (see Regex.findWithPrefilter), so this flag currently documents the
// property without any caller branching on it.
func (p *Alternation) IsComplete() bool { return true }

// LiteralLen is not meaningful here: branches may have different
// lengths, so there is no single fixed length to report.
func (p *Alternation) LiteralLen() int { return 0 }

// Match exposes the underlying automaton's match span for callers that
// need the end offset rather than just the start, since branch lengths
// vary and can't be recovered from Find's single int alone.
func (p *Alternation) Match(haystack []byte, start int) (begin, end int, ok bool) {
	m := p.automaton.Find(haystack, start)
	if m == nil {
		return 0, 0, false
	}
	return m.Start, m.End, true
}
