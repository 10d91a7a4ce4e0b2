package nfa

import "fmt"

// Builder constructs an NFA incrementally: each Add* call appends one
// state and returns its id, and Patch/PatchSplit fill in forward
// references once the target state exists. This mirrors the two-pass
// shape Thompson construction needs (a quantifier's loop-back edge is
// only known after its body has been compiled).
type Builder struct {
	states []State
	start  StateID
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{states: make([]State, 0, 16)}
}

func (b *Builder) push(s State) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, s)
	return id
}

// AddMatch appends an accepting state.
func (b *Builder) AddMatch() StateID {
	return b.push(State{Kind: StateMatch})
}

// AddByteRange appends a state that consumes one byte in [lo, hi] then
// transitions to next. Set lo == hi for a single byte.
func (b *Builder) AddByteRange(lo, hi byte, next StateID) StateID {
	return b.push(State{Kind: StateByteRange, Lo: lo, Hi: hi, Next: next})
}

// AddSparse appends a state matching one byte against several
// [Lo,Hi] ranges at once, each with its own continuation. transitions
// is copied to avoid aliasing the caller's slice.
func (b *Builder) AddSparse(transitions []Transition) StateID {
	cp := make([]Transition, len(transitions))
	copy(cp, transitions)
	return b.push(State{Kind: StateSparse, Transitions: cp})
}

// AddSplit appends a state with two epsilon branches explored in
// priority order: Left first, then Right.
func (b *Builder) AddSplit(left, right StateID) StateID {
	return b.push(State{Kind: StateSplit, Left: left, Right: right})
}

// AddEpsilon appends an unconditional epsilon transition to next.
func (b *Builder) AddEpsilon(next StateID) StateID {
	return b.push(State{Kind: StateEpsilon, Next: next})
}

// AddFail appends a dead state with no outgoing transitions.
func (b *Builder) AddFail() StateID {
	return b.push(State{Kind: StateFail})
}

// AddAssertStart appends a zero-width start-of-input assertion.
func (b *Builder) AddAssertStart(next StateID) StateID {
	return b.push(State{Kind: StateAssertStart, Next: next})
}

// AddAssertEnd appends a zero-width end-of-input assertion.
func (b *Builder) AddAssertEnd(next StateID) StateID {
	return b.push(State{Kind: StateAssertEnd, Next: next})
}

// AddGroupStart appends a state recording the current position into
// group id's start slot before continuing to next.
func (b *Builder) AddGroupStart(id uint32, next StateID) StateID {
	return b.push(State{Kind: StateGroupStart, GroupID: id, Next: next})
}

// AddGroupEnd appends a state recording the current position into
// group id's end slot before continuing to next.
func (b *Builder) AddGroupEnd(id uint32, next StateID) StateID {
	return b.push(State{Kind: StateGroupEnd, GroupID: id, Next: next})
}

// Patch rewrites the Next field of a state that transitions
// unconditionally (ByteRange, Epsilon, AssertStart, AssertEnd,
// GroupStart, GroupEnd). It is an error to patch any other kind.
// StateSparse is not patchable: its Transitions already carry their
// own Next targets at construction time, since the NFA compiler
// always allocates a fragment's end state before building the sparse
// transitions that lead to it.
func (b *Builder) Patch(id, target StateID) error {
	if int(id) >= len(b.states) {
		return &BuildError{Message: "state id out of bounds", StateID: id}
	}
	s := &b.states[id]
	switch s.Kind {
	case StateByteRange, StateEpsilon, StateAssertStart, StateAssertEnd, StateGroupStart, StateGroupEnd:
		s.Next = target
		return nil
	default:
		return &BuildError{Message: fmt.Sprintf("cannot patch state of kind %s", s.Kind), StateID: id}
	}
}

// PatchSplit rewrites the Left and Right branches of a split state.
func (b *Builder) PatchSplit(id StateID, left, right StateID) error {
	if int(id) >= len(b.states) {
		return &BuildError{Message: "state id out of bounds", StateID: id}
	}
	s := &b.states[id]
	if s.Kind != StateSplit {
		return &BuildError{Message: fmt.Sprintf("expected split state, got %s", s.Kind), StateID: id}
	}
	s.Left, s.Right = left, right
	return nil
}

// SetStart records the NFA's start state.
func (b *Builder) SetStart(start StateID) {
	b.start = start
}

// Len reports the number of states added so far.
func (b *Builder) Len() int {
	return len(b.states)
}

// Validate checks that every state reference is in bounds and a start
// state has been set.
func (b *Builder) Validate() error {
	if int(b.start) >= len(b.states) {
		return &BuildError{Message: "start state not set or out of bounds", StateID: b.start}
	}
	for i, s := range b.states {
		id := StateID(i)
		inBounds := func(t StateID) bool { return t == InvalidState || int(t) < len(b.states) }
		switch s.Kind {
		case StateByteRange, StateEpsilon, StateAssertStart, StateAssertEnd, StateGroupStart, StateGroupEnd:
			if !inBounds(s.Next) {
				return &BuildError{Message: fmt.Sprintf("invalid next state %d", s.Next), StateID: id}
			}
		case StateSplit:
			if !inBounds(s.Left) || !inBounds(s.Right) {
				return &BuildError{Message: "invalid split branch", StateID: id}
			}
		case StateSparse:
			for _, t := range s.Transitions {
				if !inBounds(t.Next) {
					return &BuildError{Message: fmt.Sprintf("invalid sparse transition target %d", t.Next), StateID: id}
				}
			}
		}
	}
	return nil
}

// Build finalizes the NFA. numGroups includes group 0 (the whole
// match). hasAssertion should be true if the pattern used '^' or '$'
// anywhere, which the simulator and bytecode compiler both need to
// know up front (the bytecode VM falls back to the NFA simulator
// rather than run an assertion-free thread VM against one).
func (b *Builder) Build(numGroups int, hasAssertion bool) (*NFA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &NFA{
		States:       b.states,
		Start:        b.start,
		NumGroups:    numGroups,
		HasAssertion: hasAssertion,
	}, nil
}
