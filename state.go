package corerex

import (
	"sync"

	"github.com/corerex/corerex/bytecode"
	"github.com/corerex/corerex/nfa"
)

// searchState is the per-call mutable scratch a Find/IsMatch/FindAll
// call needs: an nfa.Simulator and, if the regex has a compiled
// bytecode program, a bytecode.VM. Pooling these (rather than
// allocating fresh ones per call, or storing one on Regex and forcing
// callers to serialize) keeps a single immutable Regex safe for
// concurrent read-only use.
type searchState struct {
	sim *nfa.Simulator
	vm  *bytecode.VM
}

type statePool struct {
	pool sync.Pool
}

func newStatePool(n *nfa.NFA, prog *bytecode.Program) *statePool {
	sp := &statePool{}
	sp.pool.New = func() any {
		st := &searchState{sim: nfa.NewSimulator(n)}
		if prog != nil {
			st.vm = bytecode.NewVM(prog)
		}
		return st
	}
	return sp
}

func (sp *statePool) get() *searchState {
	return sp.pool.Get().(*searchState)
}

func (sp *statePool) put(st *searchState) {
	sp.pool.Put(st)
}
