package corerex

import "github.com/corerex/corerex/nfa"

// Span is an inclusive-start, exclusive-end byte range into the
// matched input.
type Span struct {
	Start, End int
}

// Match is a single match result: Groups[0] is the whole match and
// Groups[i] for i>0 is capture group i. A group that did not
// participate reports Found(i) == false.
type Match struct {
	groups []nfa.Span
	input  []byte
}

func newMatch(groups []nfa.Span, input []byte) *Match {
	return &Match{groups: groups, input: input}
}

// Start returns the whole match's start offset.
func (m *Match) Start() int { return m.groups[0].Start }

// End returns the whole match's end offset.
func (m *Match) End() int { return m.groups[0].End }

// Found reports whether group i participated in the match. Group 0
// always participates if Match is non-nil.
func (m *Match) Found(i int) bool {
	return i >= 0 && i < len(m.groups) && m.groups[i].Start >= 0
}

// Group returns the span of group i, or nil if i is out of range or
// the group did not participate.
func (m *Match) Group(i int) *Span {
	if !m.Found(i) {
		return nil
	}
	return &Span{Start: m.groups[i].Start, End: m.groups[i].End}
}

// NumGroups returns the number of group slots, including group 0.
func (m *Match) NumGroups() int { return len(m.groups) }

// Slice returns the matched bytes of the whole match, a subslice of
// the input Match.Slice was built from.
func (m *Match) Slice() []byte {
	return m.input[m.groups[0].Start:m.groups[0].End]
}

// GroupSlice returns the matched bytes of group i, or nil if it did
// not participate.
func (m *Match) GroupSlice(i int) []byte {
	g := m.Group(i)
	if g == nil {
		return nil
	}
	return m.input[g.Start:g.End]
}

func fromNFAMatch(m *nfa.Match, input []byte) *Match {
	if m == nil {
		return nil
	}
	return newMatch(m.Groups, input)
}

// convertSpans adapts the parallel Span types bytecode.Span and
// stream.Span define alongside their own Match into nfa.Span, the
// common group representation Match stores, via a per-index accessor
// so the three packages don't need to share a type.
func convertSpans(n int, get func(i int) (start, end int)) []nfa.Span {
	out := make([]nfa.Span, n)
	for i := 0; i < n; i++ {
		start, end := get(i)
		out[i] = nfa.Span{Start: start, End: end}
	}
	return out
}
