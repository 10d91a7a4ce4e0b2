package nfa

import (
	"fmt"

	"github.com/corerex/corerex/ast"
	"github.com/corerex/corerex/charclass"
	"github.com/corerex/corerex/internal/conv"
)

// compiler lowers a parsed pattern AST into NFA fragments using
// Thompson construction. Each compile* method returns the (start, end)
// state pair of the fragment it built; end is always an unpatched
// state (Next/the relevant branch left at InvalidState) so the caller
// can wire it into whatever follows.
type compiler struct {
	b *Builder
}

// Compile lowers a parsed pattern into an NFA. The resulting NFA is
// always implicitly anchored at Start; unanchored ("search anywhere")
// behavior is the simulator's responsibility (it restarts the search
// from each input position), not the automaton's.
func Compile(p *ast.Pattern) (*NFA, error) {
	c := &compiler{b: NewBuilder()}
	start, end, err := c.compileNode(p.Root)
	if err != nil {
		return nil, &CompileError{Pattern: p.Source, Err: err}
	}
	match := c.b.AddMatch()
	if err := c.b.Patch(end, match); err != nil {
		return nil, &CompileError{Pattern: p.Source, Err: err}
	}
	c.b.SetStart(start)
	return c.b.Build(p.NumGroups, hasAssertion(p.Root))
}

func (c *compiler) compileNode(n ast.Node) (start, end StateID, err error) {
	switch v := n.(type) {
	case *ast.Literal:
		return c.compileLiteral(v)
	case *ast.AnyChar:
		return c.compileAnyChar()
	case *ast.CharClass:
		return c.compileCharClass(v)
	case *ast.AnchorStart:
		id := c.b.AddAssertStart(InvalidState)
		return id, id, nil
	case *ast.AnchorEnd:
		id := c.b.AddAssertEnd(InvalidState)
		return id, id, nil
	case *ast.Concatenation:
		return c.compileConcat(v)
	case *ast.Alternation:
		return c.compileAlternation(v)
	case *ast.Quantifier:
		return c.compileQuantifier(v)
	case *ast.CaptureGroup:
		return c.compileCapture(v)
	case *ast.NonCaptureGroup:
		return c.compileNode(v.Inner)
	default:
		return InvalidState, InvalidState, fmt.Errorf("nfa: unsupported ast node %T", n)
	}
}

func (c *compiler) compileLiteral(n *ast.Literal) (start, end StateID, err error) {
	id := c.b.AddByteRange(n.Byte, n.Byte, InvalidState)
	return id, id, nil
}

// compileAnyChar lowers '.': any codepoint but newline.
func (c *compiler) compileAnyChar() (start, end StateID, err error) {
	ranges := charclass.Negate([]charclass.Range{{Lo: '\n', Hi: '\n'}})
	end = c.b.AddEpsilon(InvalidState)
	start, err = c.compileRanges(ranges, end)
	return start, end, err
}

func (c *compiler) compileCharClass(n *ast.CharClass) (start, end StateID, err error) {
	ranges := n.Ranges
	if n.Negated {
		ranges = charclass.Negate(ranges)
	} else {
		ranges = charclass.Normalize(ranges)
	}
	if len(ranges) == 0 {
		// An exhausted class (e.g. [^\x00-\x{10FFFF}]) can never match;
		// build an unreachable fragment rather than special-casing "no
		// match" throughout the simulator.
		start = c.b.AddEpsilon(InvalidState)
		end = c.b.AddEpsilon(InvalidState)
		return start, end, nil
	}
	end = c.b.AddEpsilon(InvalidState)
	start, err = c.compileRanges(ranges, end)
	return start, end, err
}

// compileRanges lowers a normalized codepoint range set into a byte
// automaton feeding into endState. The ASCII subrange goes through a
// charclass.Class bitmap and collapses into a single StateSparse (one
// state, several byte-range arms read off contiguous bitmap runs);
// ranges above U+007F are lowered to chains of StateByteRange
// fragments over their UTF-8 encoding, split by encoded length and,
// within a length, by where the leading bytes stop being constant —
// the same technique regexp/automata engines use to avoid enumerating
// every codepoint individually.
func (c *compiler) compileRanges(ranges []charclass.Range, endState StateID) (StateID, error) {
	cls := charclass.NewClass(ranges, false)
	cls.Build()

	var starts []StateID
	for _, r := range cls.Ranges {
		lo, hi := r.Lo, r.Hi
		if hi <= 0x7F {
			continue // covered by the bitmap below
		}
		if lo <= 0x7F {
			lo = 0x80
		}
		starts = append(starts, c.compileUTF8Range(lo, hi, endState)...)
	}
	if ascii := asciiTransitions(cls, endState); len(ascii) > 0 {
		starts = append(starts, c.b.AddSparse(ascii))
	}
	if len(starts) == 0 {
		return InvalidState, fmt.Errorf("nfa: empty range set")
	}
	return c.buildSplitChain(starts), nil
}

// asciiTransitions reads the class's 128-bit ASCII bitmap back out as
// contiguous byte-range arms for one StateSparse.
func asciiTransitions(cls *charclass.Class, endState StateID) []Transition {
	lo64, hi64, ok := cls.ASCIIBitmap()
	if !ok {
		return nil
	}
	words := [2]uint64{lo64, hi64}
	var out []Transition
	run := -1
	for b := 0; b < 128; b++ {
		set := words[b/64]&(1<<uint(b%64)) != 0
		switch {
		case set && run < 0:
			run = b
		case !set && run >= 0:
			out = append(out, Transition{Lo: byte(run), Hi: byte(b - 1), Next: endState})
			run = -1
		}
	}
	if run >= 0 {
		out = append(out, Transition{Lo: byte(run), Hi: 127, Next: endState})
	}
	return out
}

// buildSplitChain folds n fragment starts into one state via a
// right-leaning chain of StateSplit nodes, explored in the given
// order; order is irrelevant to which match wins under
// leftmost-longest policy, only to thread enumeration order.
func (c *compiler) buildSplitChain(starts []StateID) StateID {
	if len(starts) == 1 {
		return starts[0]
	}
	right := c.buildSplitChain(starts[1:])
	return c.b.AddSplit(starts[0], right)
}

// compileUTF8Range lowers the codepoint range [lo, hi], with lo >=
// 0x80 (the ASCII portion is handled by the caller), split at the
// boundaries where the UTF-8 encoded length changes.
func (c *compiler) compileUTF8Range(lo, hi rune, endState StateID) []StateID {
	var starts []StateID

	if lo <= 0x7FF {
		h := hi
		if h > 0x7FF {
			h = 0x7FF
		}
		starts = append(starts, c.compileUTF82Byte(lo, h, endState)...)
		lo = 0x800
	}
	if lo > hi {
		return starts
	}

	if lo <= 0xFFFF {
		h := hi
		if h > 0xFFFF {
			h = 0xFFFF
		}
		starts = append(starts, c.compileUTF83Byte(lo, h, endState)...)
		lo = 0x10000
	}
	if lo > hi {
		return starts
	}

	starts = append(starts, c.compileUTF84Byte(lo, hi, endState)...)
	return starts
}

// compileUTF82Byte lowers [lo, hi] within U+0080-U+07FF (2-byte
// encodings: 110xxxxx 10xxxxxx).
func (c *compiler) compileUTF82Byte(lo, hi rune, endState StateID) []StateID {
	loLead, loCont := byte(0xC0|(lo>>6)), byte(0x80|(lo&0x3F))
	hiLead, hiCont := byte(0xC0|(hi>>6)), byte(0x80|(hi&0x3F))

	if loLead == hiLead {
		cont := c.b.AddByteRange(loCont, hiCont, endState)
		return []StateID{c.b.AddByteRange(loLead, loLead, cont)}
	}

	var starts []StateID
	cont1 := c.b.AddByteRange(loCont, 0xBF, endState)
	starts = append(starts, c.b.AddByteRange(loLead, loLead, cont1))
	if hiLead > loLead+1 {
		contM := c.b.AddByteRange(0x80, 0xBF, endState)
		starts = append(starts, c.b.AddByteRange(loLead+1, hiLead-1, contM))
	}
	cont2 := c.b.AddByteRange(0x80, hiCont, endState)
	starts = append(starts, c.b.AddByteRange(hiLead, hiLead, cont2))
	return starts
}

// compileUTF83Byte lowers [lo, hi] within U+0800-U+FFFF (3-byte
// encodings: 1110xxxx 10xxxxxx 10xxxxxx), carving out the D800-DFFF
// surrogate gap that charclass.Negate already excludes from negated
// classes but which an explicit literal range could still name.
func (c *compiler) compileUTF83Byte(lo, hi rune, endState StateID) []StateID {
	const surLo, surHi = 0xD800, 0xDFFF
	if lo <= surHi && hi >= surLo {
		var starts []StateID
		if lo <= surLo-1 {
			starts = append(starts, c.compileUTF83ByteSimple(lo, surLo-1, endState)...)
		}
		if hi >= surHi+1 {
			starts = append(starts, c.compileUTF83ByteSimple(surHi+1, hi, endState)...)
		}
		return starts
	}
	return c.compileUTF83ByteSimple(lo, hi, endState)
}

func (c *compiler) compileUTF83ByteSimple(lo, hi rune, endState StateID) []StateID {
	loLead, loCont1, loCont2 := byte(0xE0|(lo>>12)), byte(0x80|((lo>>6)&0x3F)), byte(0x80|(lo&0x3F))
	hiLead, hiCont1, hiCont2 := byte(0xE0|(hi>>12)), byte(0x80|((hi>>6)&0x3F)), byte(0x80|(hi&0x3F))

	switch {
	case loLead == hiLead && loCont1 == hiCont1:
		cont2 := c.b.AddByteRange(loCont2, hiCont2, endState)
		cont1 := c.b.AddByteRange(loCont1, loCont1, cont2)
		return []StateID{c.b.AddByteRange(loLead, loLead, cont1)}

	case loLead == hiLead:
		var starts []StateID
		for v := loCont1; ; v++ {
			c2lo, c2hi := byte(0x80), byte(0xBF)
			if v == loCont1 {
				c2lo = loCont2
			}
			if v == hiCont1 {
				c2hi = hiCont2
			}
			cont2 := c.b.AddByteRange(c2lo, c2hi, endState)
			cont1 := c.b.AddByteRange(v, v, cont2)
			starts = append(starts, c.b.AddByteRange(loLead, loLead, cont1))
			if v == hiCont1 {
				break
			}
		}
		return starts

	default:
		var starts []StateID
		for lead := loLead; ; lead++ {
			c1lo, c1hi := byte(0x80), byte(0xBF)
			if lead == loLead {
				c1lo = loCont1
			}
			if lead == hiLead {
				c1hi = hiCont1
			}
			if lead == 0xED && c1hi > 0x9F {
				c1hi = 0x9F // exclude the D800-DFFF surrogate band
			}
			for cont1 := c1lo; ; cont1++ {
				c2lo, c2hi := byte(0x80), byte(0xBF)
				if lead == loLead && cont1 == loCont1 {
					c2lo = loCont2
				}
				if lead == hiLead && cont1 == hiCont1 {
					c2hi = hiCont2
				}
				cont2 := c.b.AddByteRange(c2lo, c2hi, endState)
				c1 := c.b.AddByteRange(cont1, cont1, cont2)
				starts = append(starts, c.b.AddByteRange(lead, lead, c1))
				if cont1 == c1hi {
					break
				}
			}
			if lead == hiLead {
				break
			}
		}
		return starts
	}
}

// compileUTF84Byte lowers [lo, hi] within U+10000-U+10FFFF (4-byte
// encodings: 11110xxx 10xxxxxx 10xxxxxx 10xxxxxx), one split branch
// per distinct lead byte.
func (c *compiler) compileUTF84Byte(lo, hi rune, endState StateID) []StateID {
	loLead := byte(0xF0 | (lo >> 18))
	hiLead := byte(0xF0 | (hi >> 18))

	var starts []StateID
	for lead := loLead; ; lead++ {
		c1lo, c1hi := byte(0x80), byte(0xBF)
		if lead == 0xF0 {
			c1lo = 0x90
		}
		if lead == 0xF4 {
			c1hi = 0x8F
		}
		cont3 := c.b.AddByteRange(0x80, 0xBF, endState)
		cont2 := c.b.AddByteRange(0x80, 0xBF, cont3)
		cont1 := c.b.AddByteRange(c1lo, c1hi, cont2)
		starts = append(starts, c.b.AddByteRange(lead, lead, cont1))
		if lead == hiLead {
			break
		}
	}
	return starts
}

func (c *compiler) compileConcat(n *ast.Concatenation) (start, end StateID, err error) {
	lstart, lend, err := c.compileNode(n.Left)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	rstart, rend, err := c.compileNode(n.Right)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	if err := c.b.Patch(lend, rstart); err != nil {
		return InvalidState, InvalidState, err
	}
	return lstart, rend, nil
}

func (c *compiler) compileAlternation(n *ast.Alternation) (start, end StateID, err error) {
	lstart, lend, err := c.compileNode(n.Left)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	rstart, rend, err := c.compileNode(n.Right)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	split := c.b.AddSplit(lstart, rstart)
	join := c.b.AddEpsilon(InvalidState)
	if err := c.b.Patch(lend, join); err != nil {
		return InvalidState, InvalidState, err
	}
	if err := c.b.Patch(rend, join); err != nil {
		return InvalidState, InvalidState, err
	}
	return split, join, nil
}

// compileQuantifier lowers Min..Max repetitions of Inner. The
// simulator's leftmost-longest policy explores both split branches of
// every thread to completion regardless of priority, so unlike a
// leftmost-first (backtracking-equivalent) engine, Greedy does not
// change which match wins here and is not read. The bytecode program is
// compiled from this NFA and its VM is leftmost-longest as well, so
// Greedy affects neither execution path.
func (c *compiler) compileQuantifier(n *ast.Quantifier) (start, end StateID, err error) {
	if n.Max == nil {
		if n.Min == 0 {
			return c.compileStar(n.Inner)
		}
		return c.compileMinUnbounded(n.Inner, n.Min)
	}
	if n.Min == *n.Max {
		return c.compileExact(n.Inner, n.Min)
	}
	return c.compileRange(n.Inner, n.Min, *n.Max)
}

func (c *compiler) compileStar(inner ast.Node) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileNode(inner)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.b.AddEpsilon(InvalidState)
	split := c.b.AddSplit(subStart, end)
	if err := c.b.Patch(subEnd, split); err != nil {
		return InvalidState, InvalidState, err
	}
	return split, end, nil
}

func (c *compiler) compileQuest(inner ast.Node) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileNode(inner)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.b.AddEpsilon(InvalidState)
	if err := c.b.Patch(subEnd, end); err != nil {
		return InvalidState, InvalidState, err
	}
	split := c.b.AddSplit(subStart, end)
	return split, end, nil
}

func (c *compiler) compileExact(inner ast.Node, n int) (start, end StateID, err error) {
	if n == 0 {
		id := c.b.AddEpsilon(InvalidState)
		return id, id, nil
	}
	start, end, err = c.compileNode(inner)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	for i := 1; i < n; i++ {
		nstart, nend, err := c.compileNode(inner)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if err := c.b.Patch(end, nstart); err != nil {
			return InvalidState, InvalidState, err
		}
		end = nend
	}
	return start, end, nil
}

// compileMinUnbounded lowers a{n,} as n copies of inner followed by
// inner*.
func (c *compiler) compileMinUnbounded(inner ast.Node, n int) (start, end StateID, err error) {
	if n == 0 {
		return c.compileStar(inner)
	}
	start, end, err = c.compileExact(inner, n)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	starStart, starEnd, err := c.compileStar(inner)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	if err := c.b.Patch(end, starStart); err != nil {
		return InvalidState, InvalidState, err
	}
	return start, starEnd, nil
}

// compileRange lowers a{n,m} as n copies of inner followed by (m-n)
// optional copies chained one after another, so that a{2,4} is
// lowered as aa(a)?(a)?.
func (c *compiler) compileRange(inner ast.Node, n, m int) (start, end StateID, err error) {
	if m < n {
		return InvalidState, InvalidState, fmt.Errorf("nfa: invalid repeat range {%d,%d}", n, m)
	}
	if n == 0 && m == 0 {
		id := c.b.AddEpsilon(InvalidState)
		return id, id, nil
	}

	optional := m - n
	var optStart, optEnd StateID
	if optional > 0 {
		optStart, optEnd, err = c.compileQuest(inner)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		tailEnd := optEnd
		for i := 1; i < optional; i++ {
			innerStart, innerEnd, err := c.compileQuest(inner)
			if err != nil {
				return InvalidState, InvalidState, err
			}
			if err := c.b.Patch(tailEnd, innerStart); err != nil {
				return InvalidState, InvalidState, err
			}
			tailEnd = innerEnd
		}
		optEnd = tailEnd
	}

	if n == 0 {
		return optStart, optEnd, nil
	}

	start, end, err = c.compileExact(inner, n)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	if optional > 0 {
		if err := c.b.Patch(end, optStart); err != nil {
			return InvalidState, InvalidState, err
		}
		end = optEnd
	}
	return start, end, nil
}

func (c *compiler) compileCapture(n *ast.CaptureGroup) (start, end StateID, err error) {
	innerStart, innerEnd, err := c.compileNode(n.Inner)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	gstart := c.b.AddGroupStart(conv.IntToUint32(n.ID), innerStart)
	gend := c.b.AddGroupEnd(conv.IntToUint32(n.ID), InvalidState)
	if err := c.b.Patch(innerEnd, gend); err != nil {
		return InvalidState, InvalidState, err
	}
	return gstart, gend, nil
}

// hasAssertion reports whether the tree contains a '^' or '$' anchor,
// the signal the bytecode compiler uses to decide whether the
// assertion-free thread VM applies.
func hasAssertion(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.AnchorStart, *ast.AnchorEnd:
		return true
	case *ast.Concatenation:
		return hasAssertion(v.Left) || hasAssertion(v.Right)
	case *ast.Alternation:
		return hasAssertion(v.Left) || hasAssertion(v.Right)
	case *ast.Quantifier:
		return hasAssertion(v.Inner)
	case *ast.CaptureGroup:
		return hasAssertion(v.Inner)
	case *ast.NonCaptureGroup:
		return hasAssertion(v.Inner)
	default:
		return false
	}
}
