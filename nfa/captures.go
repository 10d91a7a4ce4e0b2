package nfa

// cowCaptures is a copy-on-write capture-slot vector: [start0, end0,
// start1, end1, ...] with -1 meaning "not set". Threads that split
// share the same backing array until one of them writes a slot, at
// which point only that thread copies — the common case (most
// threads never touch most groups) stays allocation-free.
type cowCaptures struct {
	shared *sharedCaptures
}

type sharedCaptures struct {
	data []int
	refs int
}

// clone returns a reference to the same backing data with its
// refcount bumped; callers pass the result to sibling threads created
// by a split or epsilon fan-out.
func (c cowCaptures) clone() cowCaptures {
	if c.shared == nil {
		return cowCaptures{}
	}
	c.shared.refs++
	return cowCaptures{shared: c.shared}
}

// update sets slot to value, copying the backing array first if it is
// currently shared by more than one thread.
func (c cowCaptures) update(slot, value int) cowCaptures {
	if c.shared == nil || slot < 0 || slot >= len(c.shared.data) {
		return c
	}
	if c.shared.refs > 1 {
		c.shared.refs--
		data := make([]int, len(c.shared.data))
		copy(data, c.shared.data)
		data[slot] = value
		return cowCaptures{shared: &sharedCaptures{data: data, refs: 1}}
	}
	c.shared.data[slot] = value
	return c
}

// copyData returns an owned copy of the capture slots, safe to retain
// after the simulator resumes mutating threads.
func (c cowCaptures) copyData() []int {
	if c.shared == nil {
		return nil
	}
	dst := make([]int, len(c.shared.data))
	copy(dst, c.shared.data)
	return dst
}

// newCaptures allocates a fresh capture vector sized for the NFA's
// group count, all slots unset.
func (s *Simulator) newCaptures() cowCaptures {
	n := s.nfa.NumGroups * 2
	if n == 0 {
		return cowCaptures{}
	}
	data := make([]int, n)
	for i := range data {
		data[i] = -1
	}
	return cowCaptures{shared: &sharedCaptures{data: data, refs: 1}}
}
