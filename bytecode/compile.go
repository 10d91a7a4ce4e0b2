package bytecode

import (
	"fmt"

	"github.com/corerex/corerex/nfa"
)

// Compile lowers a built NFA into a bytecode Program by a worklist
// traversal: every reachable state is assigned an instruction index in
// discovery order, state kinds are translated to instructions one for
// one, and a rewrite pass turns state-id targets into instruction
// indices once every reachable state has a pc. A final peephole pass
// collapses chains of Jump instructions so a thread never burns a step
// on a Jump whose target is itself another Jump.
//
// Compile refuses an NFA built from a pattern containing zero-width
// assertions: the instruction set has no AssertStart/AssertEnd op, so
// such an NFA must run on nfa.Simulator instead (see corerex.Regex's
// path-selection logic).
func Compile(n *nfa.NFA) (*Program, error) {
	if n.HasAssertion {
		return nil, fmt.Errorf("bytecode: NFA contains zero-width assertions, not eligible for bytecode compilation")
	}

	order, pcOf := discover(n)

	insts := make([]Inst, len(order))
	for pc, id := range order {
		st := n.State(id)
		insts[pc] = emit(st)
	}
	rewrite(insts, pcOf)
	collapseJumps(insts)

	start, ok := pcOf[n.Start]
	if !ok {
		return nil, fmt.Errorf("bytecode: start state %d unreachable", n.Start)
	}
	return &Program{Insts: insts, Start: start, NumGroups: n.NumGroups}, nil
}

// discover walks the NFA breadth-first from its start state, returning
// the reachable states in visitation order and a map from state id to
// its assigned instruction index.
func discover(n *nfa.NFA) ([]nfa.StateID, map[nfa.StateID]int) {
	pcOf := make(map[nfa.StateID]int)
	var order []nfa.StateID
	queue := []nfa.StateID{n.Start}
	pcOf[n.Start] = 0

	push := func(id nfa.StateID) {
		if id == nfa.InvalidState {
			return
		}
		if _, seen := pcOf[id]; seen {
			return
		}
		pcOf[id] = -1 // reserved, index assigned once popped
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		pcOf[id] = len(order)
		order = append(order, id)

		st := n.State(id)
		if st == nil {
			continue
		}
		switch st.Kind {
		case nfa.StateByteRange, nfa.StateEpsilon, nfa.StateGroupStart, nfa.StateGroupEnd:
			push(st.Next)
		case nfa.StateSparse:
			for _, tr := range st.Transitions {
				push(tr.Next)
			}
		case nfa.StateSplit:
			push(st.Left)
			push(st.Right)
		}
	}
	return order, pcOf
}

// emit translates one NFA state into its instruction, leaving any
// target fields (Next, X, Y, Transitions[i].Next) holding the raw
// state id cast to int; rewrite replaces them with instruction indices.
func emit(st *nfa.State) Inst {
	switch st.Kind {
	case nfa.StateMatch:
		return Inst{Op: OpMatch}
	case nfa.StateFail:
		return Inst{Op: OpFail}
	case nfa.StateByteRange:
		return Inst{Op: OpByteRange, Lo: st.Lo, Hi: st.Hi, Next: int(st.Next)}
	case nfa.StateSparse:
		trs := make([]Transition, len(st.Transitions))
		for i, tr := range st.Transitions {
			trs[i] = Transition{Lo: tr.Lo, Hi: tr.Hi, Next: int(tr.Next)}
		}
		return Inst{Op: OpSparse, Transitions: trs}
	case nfa.StateEpsilon:
		return Inst{Op: OpJump, Next: int(st.Next)}
	case nfa.StateSplit:
		return Inst{Op: OpSplit, X: int(st.Left), Y: int(st.Right)}
	case nfa.StateGroupStart:
		return Inst{Op: OpGroupStart, GroupID: st.GroupID, Next: int(st.Next)}
	case nfa.StateGroupEnd:
		return Inst{Op: OpGroupEnd, GroupID: st.GroupID, Next: int(st.Next)}
	default:
		// StateAssertStart/StateAssertEnd cannot reach here: Compile
		// rejects any NFA with HasAssertion before discover runs.
		return Inst{Op: OpFail}
	}
}

// rewrite converts every raw state-id target left by emit into its
// instruction index.
func rewrite(insts []Inst, pcOf map[nfa.StateID]int) {
	pc := func(raw int) int {
		id := nfa.StateID(raw)
		if id == nfa.InvalidState {
			return -1
		}
		return pcOf[id]
	}
	for i := range insts {
		in := &insts[i]
		switch in.Op {
		case OpByteRange, OpJump, OpGroupStart, OpGroupEnd:
			in.Next = pc(in.Next)
		case OpSparse:
			for j := range in.Transitions {
				in.Transitions[j].Next = pc(in.Transitions[j].Next)
			}
		case OpSplit:
			in.X = pc(in.X)
			in.Y = pc(in.Y)
		}
	}
}

// collapseJumps rewrites every instruction target that points at an
// OpJump instruction to point directly at that jump's own (already
// collapsed) target, so no VM step is ever spent on a pure Jump whose
// target is itself another Jump. Instructions are not removed, only
// their targets are redirected, which keeps every other pc in the
// program stable.
func collapseJumps(insts []Inst) {
	resolved := make([]int, len(insts))
	for i := range resolved {
		resolved[i] = -2 // not yet computed
	}
	var resolve func(pc int) int
	resolve = func(pc int) int {
		if pc < 0 || pc >= len(insts) {
			return pc
		}
		if resolved[pc] != -2 {
			return resolved[pc]
		}
		resolved[pc] = pc // break cycles (an empty-loop program) at the entry pc itself
		if insts[pc].Op == OpJump {
			resolved[pc] = resolve(insts[pc].Next)
		} else {
			resolved[pc] = pc
		}
		return resolved[pc]
	}
	for i := range insts {
		resolve(i)
	}
	for i := range insts {
		in := &insts[i]
		switch in.Op {
		case OpByteRange, OpGroupStart, OpGroupEnd, OpJump:
			in.Next = resolve(in.Next)
		case OpSparse:
			for j := range in.Transitions {
				in.Transitions[j].Next = resolve(in.Transitions[j].Next)
			}
		case OpSplit:
			in.X = resolve(in.X)
			in.Y = resolve(in.Y)
		}
	}
}
