package nfa

import (
	"github.com/corerex/corerex/internal/sparse"
)

// Simulator executes an NFA against a byte slice using Thompson's
// parallel ("thread") simulation: every state reachable by epsilon
// closure from the current thread set is explored each step, so
// matching never backtracks and runs in O(len(nfa)*len(input)) time.
//
// A Simulator holds reusable scratch state (thread queues, a sparse
// visited set) and is not safe for concurrent use; callers needing
// concurrency should pool Simulators per NFA (see corerex.Regex).
type Simulator struct {
	nfa *NFA

	queue, nextQueue []thread
	visited          *sparse.SparseSet
}

// thread is one live execution path: a state plus the position it
// started matching from and its current capture slots.
type thread struct {
	state    StateID
	startPos int
	captures cowCaptures
}

// NewSimulator returns a Simulator for nfa, with scratch state
// preallocated to its state count.
func NewSimulator(nfa *NFA) *Simulator {
	capacity := len(nfa.States)
	if capacity < 16 {
		capacity = 16
	}
	return &Simulator{
		nfa:       nfa,
		queue:     make([]thread, 0, capacity),
		nextQueue: make([]thread, 0, capacity),
		visited:   sparse.NewSparseSet(uint32(capacity)),
	}
}

// Span is an inclusive-exclusive byte range, used both for the whole
// match and for each capture group.
type Span struct {
	Start, End int
}

// Match is a single match result: Groups[0] is the whole match and
// Groups[i] for i>0 is capture group i, or (-1,-1)/!Found when that
// group did not participate.
type Match struct {
	Groups []Span
}

// Found reports whether group i participated in the match.
func (m *Match) Found(i int) bool {
	return i >= 0 && i < len(m.Groups) && m.Groups[i].Start >= 0
}

// Find runs an unanchored search starting no earlier than from,
// returning the leftmost-longest match, or nil if none exists.
func (s *Simulator) Find(input []byte, from int) *Match {
	s.queue = s.queue[:0]
	s.nextQueue = s.nextQueue[:0]
	s.visited.Clear()

	bestStart, bestEnd := -1, -1
	var bestCaptures []int

	for pos := from; pos <= len(input); pos++ {
		if bestStart == -1 {
			s.visited.Clear()
			s.addThread(thread{state: s.nfa.Start, startPos: pos, captures: s.newCaptures()}, input, pos)
		}

		for _, t := range s.queue {
			if s.nfa.IsMatch(t.state) {
				if bestStart == -1 || t.startPos < bestStart || (t.startPos == bestStart && pos > bestEnd) {
					bestStart, bestEnd = t.startPos, pos
					bestCaptures = t.captures.copyData()
				}
			}
		}

		if pos >= len(input) {
			break
		}
		if bestStart != -1 {
			leftmostCandidate := false
			for _, t := range s.queue {
				if t.startPos <= bestStart {
					leftmostCandidate = true
					break
				}
			}
			if !leftmostCandidate {
				break
			}
		}

		b := input[pos]
		s.visited.Clear()
		for _, t := range s.queue {
			s.step(t, b, input, pos+1)
		}
		s.queue, s.nextQueue = s.nextQueue, s.queue[:0]
	}

	if bestStart == -1 {
		return nil
	}
	return s.buildMatch(bestCaptures, bestStart, bestEnd, input)
}

// FindAt runs an anchored search: the match, if any, must start
// exactly at from.
func (s *Simulator) FindAt(input []byte, from int) *Match {
	s.queue = s.queue[:0]
	s.nextQueue = s.nextQueue[:0]
	s.visited.Clear()

	s.addThread(thread{state: s.nfa.Start, startPos: from, captures: s.newCaptures()}, input, from)

	lastMatchPos := -1
	var lastCaptures []int

	for pos := from; pos <= len(input); pos++ {
		for _, t := range s.queue {
			if s.nfa.IsMatch(t.state) {
				lastMatchPos = pos
				lastCaptures = t.captures.copyData()
				break
			}
		}
		if len(s.queue) == 0 || pos >= len(input) {
			break
		}
		b := input[pos]
		s.visited.Clear()
		for _, t := range s.queue {
			s.step(t, b, input, pos+1)
		}
		s.queue, s.nextQueue = s.nextQueue, s.queue[:0]
	}

	if lastMatchPos == -1 {
		return nil
	}
	return s.buildMatch(lastCaptures, from, lastMatchPos, input)
}

// FindAll returns every non-overlapping leftmost-longest match,
// advancing past an empty match by one byte to guarantee progress.
func (s *Simulator) FindAll(input []byte) []*Match {
	var out []*Match
	pos := 0
	for pos <= len(input) {
		m := s.Find(input, pos)
		if m == nil {
			break
		}
		out = append(out, m)
		if m.Groups[0].End > m.Groups[0].Start {
			pos = m.Groups[0].End
		} else {
			pos = m.Groups[0].Start + 1
		}
	}
	return out
}

func (s *Simulator) buildMatch(caps []int, start, end int, input []byte) *Match {
	groups := make([]Span, s.nfa.NumGroups)
	groups[0] = Span{Start: start, End: end}
	for i := 1; i < s.nfa.NumGroups; i++ {
		lo, hi := i*2, i*2+1
		if caps != nil && hi < len(caps) && caps[lo] >= 0 && caps[hi] >= 0 {
			groups[i] = Span{Start: caps[lo], End: caps[hi]}
		} else {
			groups[i] = Span{Start: -1, End: -1}
		}
	}
	return &Match{Groups: groups}
}

// addThread adds t to the current generation's queue, following
// epsilon transitions, splits, group markers, and assertions
// immediately since none of them consume input. assertStart/End are
// evaluated against pos, the position t is being added at.
func (s *Simulator) addThread(t thread, input []byte, pos int) {
	if s.visited.Contains(uint32(t.state)) {
		return
	}
	s.visited.Insert(uint32(t.state))

	st := s.nfa.State(t.state)
	if st == nil {
		return
	}

	switch st.Kind {
	case StateMatch, StateByteRange, StateSparse:
		s.queue = append(s.queue, t)

	case StateEpsilon:
		if st.Next != InvalidState {
			s.addThread(thread{state: st.Next, startPos: t.startPos, captures: t.captures}, input, pos)
		}

	case StateSplit:
		right := t.captures
		if st.Right != InvalidState {
			right = t.captures.clone()
		}
		if st.Left != InvalidState {
			s.addThread(thread{state: st.Left, startPos: t.startPos, captures: t.captures}, input, pos)
		}
		if st.Right != InvalidState {
			s.addThread(thread{state: st.Right, startPos: t.startPos, captures: right}, input, pos)
		}

	case StateAssertStart:
		if pos == 0 && st.Next != InvalidState {
			s.addThread(thread{state: st.Next, startPos: t.startPos, captures: t.captures}, input, pos)
		}

	case StateAssertEnd:
		if pos == len(input) && st.Next != InvalidState {
			s.addThread(thread{state: st.Next, startPos: t.startPos, captures: t.captures}, input, pos)
		}

	case StateGroupStart, StateGroupEnd:
		if st.Next != InvalidState {
			newCaps := t.captures.update(slotFor(st), pos)
			s.addThread(thread{state: st.Next, startPos: t.startPos, captures: newCaps}, input, pos)
		}

	case StateFail:
	}
}

// step consumes byte b for thread t, feeding any resulting
// transitions into the next generation.
func (s *Simulator) step(t thread, b byte, input []byte, nextPos int) {
	st := s.nfa.State(t.state)
	if st == nil {
		return
	}
	switch st.Kind {
	case StateByteRange:
		if b >= st.Lo && b <= st.Hi {
			s.addThreadToNext(thread{state: st.Next, startPos: t.startPos, captures: t.captures}, input, nextPos)
		}
	case StateSparse:
		for _, tr := range st.Transitions {
			if b >= tr.Lo && b <= tr.Hi {
				s.addThreadToNext(thread{state: tr.Next, startPos: t.startPos, captures: t.captures}, input, nextPos)
			}
		}
	}
}

// addThreadToNext is addThread but writing into nextQueue; it must
// use the same visited set semantics (cleared once per generation by
// the caller) to avoid thread-count blowup on classes like
// A[AB]B[BC]C[CD]... where the same state is reachable many ways.
func (s *Simulator) addThreadToNext(t thread, input []byte, pos int) {
	if s.visited.Contains(uint32(t.state)) {
		return
	}
	s.visited.Insert(uint32(t.state))

	st := s.nfa.State(t.state)
	if st == nil {
		return
	}

	switch st.Kind {
	case StateEpsilon:
		if st.Next != InvalidState {
			s.addThreadToNext(thread{state: st.Next, startPos: t.startPos, captures: t.captures}, input, pos)
		}
		return
	case StateSplit:
		right := t.captures
		if st.Right != InvalidState {
			right = t.captures.clone()
		}
		if st.Left != InvalidState {
			s.addThreadToNext(thread{state: st.Left, startPos: t.startPos, captures: t.captures}, input, pos)
		}
		if st.Right != InvalidState {
			s.addThreadToNext(thread{state: st.Right, startPos: t.startPos, captures: right}, input, pos)
		}
		return
	case StateAssertStart:
		if pos == 0 && st.Next != InvalidState {
			s.addThreadToNext(thread{state: st.Next, startPos: t.startPos, captures: t.captures}, input, pos)
		}
		return
	case StateAssertEnd:
		if pos == len(input) && st.Next != InvalidState {
			s.addThreadToNext(thread{state: st.Next, startPos: t.startPos, captures: t.captures}, input, pos)
		}
		return
	case StateGroupStart, StateGroupEnd:
		if st.Next != InvalidState {
			newCaps := t.captures.update(slotFor(st), pos)
			s.addThreadToNext(thread{state: st.Next, startPos: t.startPos, captures: newCaps}, input, pos)
		}
		return
	}
	s.nextQueue = append(s.nextQueue, t)
}

func slotFor(st *State) int {
	slot := int(st.GroupID) * 2
	if st.Kind == StateGroupEnd {
		slot++
	}
	return slot
}

// MatchesEmpty reports whether the NFA accepts the empty string,
// i.e. a match state is reachable from Start by epsilon transitions
// (and zero-width assertions, evaluated as if at position 0 of an
// empty input) alone.
func (s *Simulator) MatchesEmpty() bool {
	s.visited.Clear()
	stack := []StateID{s.nfa.Start}
	s.visited.Insert(uint32(s.nfa.Start))

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if s.nfa.IsMatch(id) {
			return true
		}
		st := s.nfa.State(id)
		if st == nil {
			continue
		}
		push := func(next StateID) {
			if next != InvalidState && !s.visited.Contains(uint32(next)) {
				s.visited.Insert(uint32(next))
				stack = append(stack, next)
			}
		}
		switch st.Kind {
		case StateEpsilon, StateGroupStart, StateGroupEnd:
			push(st.Next)
		case StateAssertStart, StateAssertEnd:
			push(st.Next) // position 0 of an empty input satisfies both
		case StateSplit:
			push(st.Left)
			push(st.Right)
		}
	}
	return false
}
