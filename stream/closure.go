package stream

import "github.com/corerex/corerex/nfa"

// addThread adds t to the current frontier, following epsilon
// transitions, splits, group markers and assertions immediately since
// none of them consume input. AssertStart fires only at absolute
// position 0 (which happens once per Matcher lifetime, or after
// Reset); AssertEnd fires only when atEnd is true, i.e. from Finalize,
// never from an ordinary Feed byte — this is what keeps a chunk
// boundary from ever being mistaken for end of stream.
func (m *Matcher) addThread(t frontierThread, dst *[]frontierThread, pos int, atEnd bool) {
	if m.visited.Contains(uint32(t.state)) {
		return
	}
	m.visited.Insert(uint32(t.state))

	st := m.nfa.State(t.state)
	if st == nil {
		return
	}

	switch st.Kind {
	case nfa.StateMatch, nfa.StateByteRange, nfa.StateSparse:
		*dst = append(*dst, t)

	case nfa.StateEpsilon:
		if st.Next != nfa.InvalidState {
			m.addThread(frontierThread{state: st.Next, startPos: t.startPos, captures: t.captures}, dst, pos, atEnd)
		}

	case nfa.StateSplit:
		right := t.captures
		if st.Right != nfa.InvalidState {
			right = t.captures.clone()
		}
		if st.Left != nfa.InvalidState {
			m.addThread(frontierThread{state: st.Left, startPos: t.startPos, captures: t.captures}, dst, pos, atEnd)
		}
		if st.Right != nfa.InvalidState {
			m.addThread(frontierThread{state: st.Right, startPos: t.startPos, captures: right}, dst, pos, atEnd)
		}

	case nfa.StateAssertStart:
		if pos == 0 && st.Next != nfa.InvalidState {
			m.addThread(frontierThread{state: st.Next, startPos: t.startPos, captures: t.captures}, dst, pos, atEnd)
		}

	case nfa.StateAssertEnd:
		if atEnd {
			if st.Next != nfa.InvalidState {
				m.addThread(frontierThread{state: st.Next, startPos: t.startPos, captures: t.captures}, dst, pos, atEnd)
			}
			return
		}
		// Park the thread at the assertion: if the next event is another
		// byte the assertion has failed and step drops it, but if the
		// next event is Finalize the re-closure there lets it complete.
		*dst = append(*dst, t)

	case nfa.StateGroupStart, nfa.StateGroupEnd:
		if st.Next != nfa.InvalidState {
			slot := int(st.GroupID) * 2
			if st.Kind == nfa.StateGroupEnd {
				slot++
			}
			newCaps := t.captures.update(slot, pos)
			m.addThread(frontierThread{state: st.Next, startPos: t.startPos, captures: newCaps}, dst, pos, atEnd)
		}

	case nfa.StateFail:
	}
}

// step consumes byte b for thread t, feeding any resulting transitions
// into the next generation's frontier.
func (m *Matcher) step(t frontierThread, b byte, nextPos int) {
	st := m.nfa.State(t.state)
	if st == nil {
		return
	}
	switch st.Kind {
	case nfa.StateByteRange:
		if b >= st.Lo && b <= st.Hi {
			m.addThread(frontierThread{state: st.Next, startPos: t.startPos, captures: t.captures}, &m.nextQueue, nextPos, false)
		}
	case nfa.StateSparse:
		for _, tr := range st.Transitions {
			if b >= tr.Lo && b <= tr.Hi {
				m.addThread(frontierThread{state: tr.Next, startPos: t.startPos, captures: t.captures}, &m.nextQueue, nextPos, false)
			}
		}
	}
}
