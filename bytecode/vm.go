package bytecode

import (
	"github.com/corerex/corerex/internal/sparse"
)

// Span is an inclusive-exclusive byte range.
type Span struct {
	Start, End int
}

// Match is one match result, Groups[0] being the whole match.
type Match struct {
	Groups []Span
}

// vmThread is one live bytecode thread: an instruction pointer, the
// position it started matching from, and its capture slots.
type vmThread struct {
	pc       int
	startPos int
	captures cowCaptures
}

// VM runs a Program against input using the same thread-based parallel
// simulation nfa.Simulator uses, at the instruction-pointer level
// instead of the state-id level. It holds reusable scratch state and is
// not safe for concurrent use.
type VM struct {
	prog *Program

	queue, nextQueue []vmThread
	visited          *sparse.SparseSet
}

// NewVM returns a VM for prog.
func NewVM(prog *Program) *VM {
	capacity := len(prog.Insts)
	if capacity < 16 {
		capacity = 16
	}
	return &VM{
		prog:      prog,
		queue:     make([]vmThread, 0, capacity),
		nextQueue: make([]vmThread, 0, capacity),
		visited:   sparse.NewSparseSet(uint32(capacity)),
	}
}

// Find runs an unanchored search starting no earlier than from,
// returning the leftmost-longest match, or nil if none exists.
func (vm *VM) Find(input []byte, from int) *Match {
	vm.queue = vm.queue[:0]
	vm.nextQueue = vm.nextQueue[:0]

	bestStart, bestEnd := -1, -1
	var bestCaptures []int

	for pos := from; pos <= len(input); pos++ {
		if bestStart == -1 {
			vm.visited.Clear()
			vm.addThread(vmThread{pc: vm.prog.Start, startPos: pos, captures: newCaptures(vm.prog.NumGroups)}, pos, &vm.queue)
		}

		for _, t := range vm.queue {
			if vm.prog.Insts[t.pc].Op == OpMatch {
				if bestStart == -1 || t.startPos < bestStart || (t.startPos == bestStart && pos > bestEnd) {
					bestStart, bestEnd = t.startPos, pos
					bestCaptures = t.captures.copyData()
				}
			}
		}

		if pos >= len(input) || len(vm.queue) == 0 {
			break
		}
		if bestStart != -1 {
			leftmostCandidate := false
			for _, t := range vm.queue {
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
		vm.visited.Clear()
		for _, t := range vm.queue {
			vm.step(t, b, pos+1)
		}
		vm.queue, vm.nextQueue = vm.nextQueue, vm.queue[:0]
	}

	if bestStart == -1 {
		return nil
	}
	return vm.buildMatch(bestCaptures, bestStart, bestEnd)
}

// FindAt runs an anchored search: the match, if any, must start
// exactly at from. Mirrors nfa.Simulator.FindAt at the instruction-
// pointer level, the anchored counterpart prefilter candidate
// verification needs (a required literal only guarantees a match
// starts at a given offset, not that it starts no earlier).
func (vm *VM) FindAt(input []byte, from int) *Match {
	vm.queue = vm.queue[:0]
	vm.nextQueue = vm.nextQueue[:0]
	vm.visited.Clear()

	vm.addThread(vmThread{pc: vm.prog.Start, startPos: from, captures: newCaptures(vm.prog.NumGroups)}, from, &vm.queue)

	lastMatchPos := -1
	var lastCaptures []int

	for pos := from; pos <= len(input); pos++ {
		for _, t := range vm.queue {
			if vm.prog.Insts[t.pc].Op == OpMatch {
				lastMatchPos = pos
				lastCaptures = t.captures.copyData()
				break
			}
		}
		if len(vm.queue) == 0 || pos >= len(input) {
			break
		}
		b := input[pos]
		vm.visited.Clear()
		for _, t := range vm.queue {
			vm.step(t, b, pos+1)
		}
		vm.queue, vm.nextQueue = vm.nextQueue, vm.queue[:0]
	}

	if lastMatchPos == -1 {
		return nil
	}
	return vm.buildMatch(lastCaptures, from, lastMatchPos)
}

// FindAll returns every non-overlapping leftmost-longest match,
// advancing past an empty match by one byte to guarantee progress.
func (vm *VM) FindAll(input []byte) []*Match {
	var out []*Match
	pos := 0
	for pos <= len(input) {
		m := vm.Find(input, pos)
		if m == nil {
			break
		}
		out = append(out, m)
		if m.Groups[0].End > pos {
			pos = m.Groups[0].End
		} else {
			pos++
		}
	}
	return out
}

func (vm *VM) buildMatch(caps []int, start, end int) *Match {
	groups := make([]Span, vm.prog.NumGroups)
	groups[0] = Span{Start: start, End: end}
	for i := 1; i < vm.prog.NumGroups; i++ {
		lo, hi := i*2, i*2+1
		if caps != nil && hi < len(caps) && caps[lo] >= 0 && caps[hi] >= 0 {
			groups[i] = Span{Start: caps[lo], End: caps[hi]}
		} else {
			groups[i] = Span{Start: -1, End: -1}
		}
	}
	return &Match{Groups: groups}
}

// addThread follows Jump/Split/GroupStart/GroupEnd instructions
// (zero-width, so explored immediately) until it reaches a consuming
// instruction or OpMatch, which is queued. pos is the input position
// the thread is being added at; group instructions record it.
func (vm *VM) addThread(t vmThread, pos int, dst *[]vmThread) {
	if t.pc < 0 || t.pc >= len(vm.prog.Insts) {
		// A dangling target (the compiled form of nfa.InvalidState,
		// e.g. from a class that can never match) is a dead thread.
		return
	}
	if vm.visited.Contains(uint32(t.pc)) {
		return
	}
	vm.visited.Insert(uint32(t.pc))

	in := &vm.prog.Insts[t.pc]
	switch in.Op {
	case OpMatch, OpByteRange, OpSparse:
		*dst = append(*dst, t)

	case OpJump:
		vm.addThread(vmThread{pc: in.Next, startPos: t.startPos, captures: t.captures}, pos, dst)

	case OpSplit:
		right := t.captures.clone()
		vm.addThread(vmThread{pc: in.X, startPos: t.startPos, captures: t.captures}, pos, dst)
		vm.addThread(vmThread{pc: in.Y, startPos: t.startPos, captures: right}, pos, dst)

	case OpGroupStart, OpGroupEnd:
		slot := int(in.GroupID) * 2
		if in.Op == OpGroupEnd {
			slot++
		}
		newCaps := t.captures.update(slot, pos)
		vm.addThread(vmThread{pc: in.Next, startPos: t.startPos, captures: newCaps}, pos, dst)

	case OpFail:
	}
}

// step consumes byte b for thread t, feeding any resulting threads into
// the next generation.
func (vm *VM) step(t vmThread, b byte, nextPos int) {
	in := &vm.prog.Insts[t.pc]
	switch in.Op {
	case OpByteRange:
		if b >= in.Lo && b <= in.Hi {
			vm.addThread(vmThread{pc: in.Next, startPos: t.startPos, captures: t.captures}, nextPos, &vm.nextQueue)
		}
	case OpSparse:
		for _, tr := range in.Transitions {
			if b >= tr.Lo && b <= tr.Hi {
				vm.addThread(vmThread{pc: tr.Next, startPos: t.startPos, captures: t.captures}, nextPos, &vm.nextQueue)
			}
		}
	}
}
