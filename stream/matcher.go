// Package stream implements a chunked/streaming driver over an NFA: a
// matcher that ingests arbitrary byte chunks one at a time and reports
// matches with offsets in the cumulative stream, instead of requiring
// the whole input up front the way nfa.Simulator does.
package stream

import (
	"sort"

	"github.com/corerex/corerex/internal/sparse"
	"github.com/corerex/corerex/nfa"
)

// Span is an inclusive-exclusive byte range in the cumulative stream.
type Span struct {
	Start, End int
}

// Match is one match result, Groups[0] being the whole match.
type Match struct {
	Groups []Span
}

// BoundaryMatch is a Match tagged with the chunk indices (0-based, in
// feed order) its start and end fall in, and whether it spans more
// than one chunk.
type BoundaryMatch struct {
	Match         Match
	StartChunk    int
	EndChunk      int
	CrossBoundary bool
}

type frontierThread struct {
	state    nfa.StateID
	startPos int
	captures cowCaptures
}

// Matcher drives an NFA over a stream of byte chunks. It is not safe
// for concurrent use.
type Matcher struct {
	nfa *nfa.NFA

	chunks       [][]byte
	chunkOffsets []int // chunkOffsets[i] = cumulative offset of chunks[i][0]
	committed    int   // total bytes fed so far

	queue, nextQueue []frontierThread
	visited          *sparse.SparseSet

	// suppressUntil prevents injecting a new start thread at a position
	// already covered by the most recently recorded match, the
	// streaming analogue of nfa.Simulator.FindAll's "advance past a
	// match" rule.
	suppressUntil int

	bestStart, bestEnd int
	bestCaptures       []int

	matches []BoundaryMatch
}

// NewMatcher returns a Matcher for n, in the initial state (as if freshly
// Reset).
func NewMatcher(n *nfa.NFA) *Matcher {
	m := &Matcher{nfa: n}
	m.visited = sparse.NewSparseSet(sparseCapacity(n))
	m.resetFrontier()
	return m
}

func sparseCapacity(n *nfa.NFA) uint32 {
	c := uint32(len(n.States))
	if c < 16 {
		c = 16
	}
	return c
}

func (m *Matcher) resetFrontier() {
	m.bestStart, m.bestEnd = -1, -1
	m.bestCaptures = nil
	m.queue = m.queue[:0]
	m.nextQueue = m.nextQueue[:0]
}

// Feed records a chunk boundary at the current cumulative offset,
// retains the chunk for later SliceOf calls, and advances the
// simulation over its bytes.
func (m *Matcher) Feed(chunk []byte) {
	m.chunkOffsets = append(m.chunkOffsets, m.committed)
	m.chunks = append(m.chunks, chunk)

	for i, b := range chunk {
		pos := m.committed + i
		m.stepAbsolute(pos, &b)
	}
	m.committed += len(chunk)
}

// Finalize applies AssertEnd-gated epsilon closure at the current
// cumulative offset (stream end) and records the final match if one
// exists. Call it exactly once, after the last Feed; to reuse the
// Matcher afterwards, Reset first.
func (m *Matcher) Finalize() {
	m.stepAbsolute(m.committed, nil)
	m.flushMatch()
}

// stepAbsolute advances the frontier by one position. If b is non-nil
// the byte is consumed (the normal feed path); if b is nil this is the
// end-of-stream call from Finalize, evaluated only for its epsilon
// closure (AssertEnd becomes satisfiable) and accepting-state check,
// with no further byte consumption.
func (m *Matcher) stepAbsolute(pos int, b *byte) {
	atEnd := b == nil

	if atEnd {
		// Re-run the closure over the surviving frontier with the end
		// assertion satisfiable, so threads parked on an AssertEnd state
		// can complete.
		m.visited.Clear()
		m.nextQueue = m.nextQueue[:0]
		for _, t := range m.queue {
			m.addThread(t, &m.nextQueue, pos, true)
		}
		m.queue, m.nextQueue = m.nextQueue, m.queue[:0]
	}

	if pos >= m.suppressUntil {
		m.visited.Clear()
		for _, t := range m.queue {
			m.visited.Insert(uint32(t.state))
		}
		m.addThread(frontierThread{state: m.nfa.Start, startPos: pos, captures: newCaptures(m.nfa.NumGroups)}, &m.queue, pos, atEnd)
	}

	for _, t := range m.queue {
		if m.nfa.IsMatch(t.state) {
			if m.bestStart == -1 || t.startPos < m.bestStart || (t.startPos == m.bestStart && pos > m.bestEnd) {
				m.bestStart, m.bestEnd = t.startPos, pos
				m.bestCaptures = t.captures.copyData()
			}
		}
	}

	if atEnd || len(m.queue) == 0 {
		return
	}

	m.visited.Clear()
	m.nextQueue = m.nextQueue[:0]
	for _, t := range m.queue {
		m.step(t, *b, pos+1)
	}
	m.queue, m.nextQueue = m.nextQueue, m.queue[:0]

	if m.bestStart != -1 {
		leftmostSurvives := false
		for _, t := range m.queue {
			if t.startPos <= m.bestStart {
				leftmostSurvives = true
				break
			}
		}
		if !leftmostSurvives {
			m.flushMatch()
		}
	}
}

// flushMatch records the pending best match, if any, and resets the
// frontier to search for the next one starting no earlier than its end.
func (m *Matcher) flushMatch() {
	if m.bestStart == -1 {
		return
	}
	groups := make([]Span, m.nfa.NumGroups)
	groups[0] = Span{Start: m.bestStart, End: m.bestEnd}
	for i := 1; i < m.nfa.NumGroups; i++ {
		lo, hi := i*2, i*2+1
		if m.bestCaptures != nil && hi < len(m.bestCaptures) && m.bestCaptures[lo] >= 0 && m.bestCaptures[hi] >= 0 {
			groups[i] = Span{Start: m.bestCaptures[lo], End: m.bestCaptures[hi]}
		} else {
			groups[i] = Span{Start: -1, End: -1}
		}
	}

	startChunk := m.chunkIndex(m.bestStart)
	endChunk := m.chunkIndex(maxInt(m.bestEnd-1, m.bestStart))
	m.matches = append(m.matches, BoundaryMatch{
		Match:         Match{Groups: groups},
		StartChunk:    startChunk,
		EndChunk:      endChunk,
		CrossBoundary: startChunk != endChunk,
	})

	end := m.bestEnd
	if end <= m.bestStart {
		end = m.bestStart + 1
	}
	m.suppressUntil = end

	// Keep threads that began at or after the recorded match's end:
	// they are the in-flight candidates for the next non-overlapping
	// match. Threads overlapping the match are dropped, matching
	// nfa.Simulator.FindAll's resume-at-end rule.
	kept := m.queue[:0]
	for _, t := range m.queue {
		if t.startPos >= end {
			kept = append(kept, t)
		}
	}
	m.queue = kept

	m.bestStart, m.bestEnd = -1, -1
	m.bestCaptures = nil
}

// chunkIndex returns the index of the chunk containing absolute
// position pos, via binary search over the monotonic chunkOffsets list.
func (m *Matcher) chunkIndex(pos int) int {
	i := sort.Search(len(m.chunkOffsets), func(i int) bool {
		return m.chunkOffsets[i] > pos
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// Matches returns every match recorded so far, in increasing
// start-offset order.
func (m *Matcher) Matches() []BoundaryMatch {
	return m.matches
}

// SliceOf reconstructs the matched text by splicing the retained chunks
// across boundaries as needed.
func (m *Matcher) SliceOf(bm BoundaryMatch) []byte {
	span := bm.Match.Groups[0]
	return m.sliceAbsolute(span.Start, span.End)
}

func (m *Matcher) sliceAbsolute(start, end int) []byte {
	if start >= end {
		return nil
	}
	out := make([]byte, 0, end-start)
	for i, chunk := range m.chunks {
		chunkStart := m.chunkOffsets[i]
		chunkEnd := chunkStart + len(chunk)
		lo := maxInt(start, chunkStart)
		hi := minInt(end, chunkEnd)
		if lo < hi {
			out = append(out, chunk[lo-chunkStart:hi-chunkStart]...)
		}
	}
	return out
}

// Reset returns the Matcher to its initial state: an empty buffer, no
// recorded matches, and a freshly reseeded epsilon closure at absolute
// position 0 the next time Feed or Finalize runs.
func (m *Matcher) Reset() {
	m.chunks = nil
	m.chunkOffsets = nil
	m.committed = 0
	m.suppressUntil = 0
	m.matches = nil
	m.resetFrontier()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
