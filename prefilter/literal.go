package prefilter

import (
	"bytes"

	"github.com/corerex/corerex/ast"
)

// RequiredLiteral walks n looking for a contiguous run of literal bytes
// that must appear verbatim in any match — the prefix of the pattern up
// to the first construct that isn't a plain byte (a class, `.`, an
// alternation, an unbounded-minimum quantifier, and so on). Anchors are
// transparent: `^hello` and `hello` extract the same literal, since the
// anchor only constrains where the literal may start, not whether it
// is present. A bounded-minimum quantifier (`a{2,}`, `a{2,4}`) still
// contributes its minimum repeat count to the run, since that many
// copies are required regardless of how many more are allowed.
//
// Only the single contiguous prefix run is extracted; no suffix
// extraction, cross-product expansion over small classes, or inexact
// literals.
func RequiredLiteral(n ast.Node) ([]byte, bool) {
	var buf []byte
	walkLiteralPrefix(n, &buf)
	return buf, len(buf) > 0
}

// walkLiteralPrefix appends the literal run at the head of n to buf and
// reports whether the run exactly consumes all of n (so the caller's
// concatenation can keep walking into whatever follows). This return
// value only matters to walkLiteralPrefix's own recursive callers, not
// to RequiredLiteral: even a partially-consumed run is a real required
// literal.
func walkLiteralPrefix(n ast.Node, buf *[]byte) bool {
	switch v := n.(type) {
	case *ast.Literal:
		*buf = append(*buf, v.Byte)
		return true
	case *ast.AnchorStart, *ast.AnchorEnd:
		return true
	case *ast.NonCaptureGroup:
		return walkLiteralPrefix(v.Inner, buf)
	case *ast.CaptureGroup:
		return walkLiteralPrefix(v.Inner, buf)
	case *ast.Concatenation:
		if !walkLiteralPrefix(v.Left, buf) {
			return false
		}
		return walkLiteralPrefix(v.Right, buf)
	case *ast.Quantifier:
		if v.Max == nil || *v.Max != v.Min {
			// Variable-length repetition: the minimum count is still
			// required, but anything beyond it is optional, so the run
			// stops being a single fixed literal here.
			for i := 0; i < v.Min; i++ {
				if !walkLiteralPrefix(v.Inner, buf) {
					return false
				}
			}
			return false
		}
		for i := 0; i < v.Min; i++ {
			if !walkLiteralPrefix(v.Inner, buf) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// LiteralScan is a Prefilter backed by bytes.Index over a single
// required literal, the simplest and most common case (grep-style
// patterns consisting mostly of plain text).
type LiteralScan struct {
	lit []byte
}

// NewLiteralScan returns a LiteralScan searching for lit.
func NewLiteralScan(lit []byte) *LiteralScan {
	return &LiteralScan{lit: lit}
}

// Find returns the first offset at or after start where lit occurs.
func (p *LiteralScan) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		if len(p.lit) == 0 && start == len(haystack) {
			return start
		}
		return -1
	}
	idx := bytes.Index(haystack[start:], p.lit)
	if idx < 0 {
		return -1
	}
	return start + idx
}

// IsComplete reports false: a required literal only narrows candidate
// starts, it does not by itself prove the surrounding pattern matched.
func (p *LiteralScan) IsComplete() bool { return false }

// LiteralLen returns the length of the scanned literal.
func (p *LiteralScan) LiteralLen() int { return len(p.lit) }
