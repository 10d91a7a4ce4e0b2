package stream

import (
	"bytes"
	"testing"

	"github.com/corerex/corerex/ast"
	"github.com/corerex/corerex/nfa"
)

func mustMatcher(t *testing.T, pattern string) *Matcher {
	t.Helper()
	p, err := ast.Parse(pattern)
	if err != nil {
		t.Fatalf("ast.Parse(%q): %v", pattern, err)
	}
	n, err := nfa.Compile(p)
	if err != nil {
		t.Fatalf("nfa.Compile(%q): %v", pattern, err)
	}
	return NewMatcher(n)
}

func TestFeedSingleChunk(t *testing.T) {
	m := mustMatcher(t, "hello")
	m.Feed([]byte("say hello there"))
	m.Finalize()

	matches := m.Matches()
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if g := matches[0].Match.Groups[0]; g.Start != 4 || g.End != 9 {
		t.Errorf("got (%d,%d), want (4,9)", g.Start, g.End)
	}
}

func TestFeedAcrossChunkBoundary(t *testing.T) {
	m := mustMatcher(t, "hello")
	m.Feed([]byte("say hel"))
	m.Feed([]byte("lo there"))
	m.Finalize()

	matches := m.Matches()
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	bm := matches[0]
	if g := bm.Match.Groups[0]; g.Start != 4 || g.End != 9 {
		t.Errorf("got (%d,%d), want (4,9)", g.Start, g.End)
	}
	if !bm.CrossBoundary {
		t.Error("expected CrossBoundary = true")
	}
	if bm.StartChunk != 0 || bm.EndChunk != 1 {
		t.Errorf("got chunks (%d,%d), want (0,1)", bm.StartChunk, bm.EndChunk)
	}
	if got := string(m.SliceOf(bm)); got != "hello" {
		t.Errorf("SliceOf = %q, want %q", got, "hello")
	}
}

func TestFeedMultipleMatchesAcrossChunks(t *testing.T) {
	m := mustMatcher(t, "ll")
	m.Feed([]byte("he"))
	m.Feed([]byte("llo be"))
	m.Feed([]byte("ll well"))
	m.Finalize()

	matches := m.Matches()
	want := [][2]int{{2, 4}, {8, 10}, {13, 15}}
	if len(matches) != len(want) {
		t.Fatalf("got %d matches, want %d", len(matches), len(want))
	}
	for i, bm := range matches {
		g := bm.Match.Groups[0]
		if g.Start != want[i][0] || g.End != want[i][1] {
			t.Errorf("match %d = (%d,%d), want (%d,%d)", i, g.Start, g.End, want[i][0], want[i][1])
		}
	}
}

func TestEndAnchorOnlyFiresAtFinalize(t *testing.T) {
	m := mustMatcher(t, "world$")
	m.Feed([]byte("hello world"))
	// A chunk boundary must not be mistaken for end of stream.
	if len(m.Matches()) != 0 {
		t.Fatal("expected no match before Finalize")
	}
	m.Finalize()
	matches := m.Matches()
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if g := matches[0].Match.Groups[0]; g.Start != 6 || g.End != 11 {
		t.Errorf("got (%d,%d), want (6,11)", g.Start, g.End)
	}
}

func TestStartAnchorFiresOnceAtStreamStart(t *testing.T) {
	m := mustMatcher(t, "^hello")
	m.Feed([]byte("hello "))
	m.Feed([]byte("hello again"))
	m.Finalize()

	matches := m.Matches()
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 (only the stream-initial occurrence)", len(matches))
	}
	if g := matches[0].Match.Groups[0]; g.Start != 0 || g.End != 5 {
		t.Errorf("got (%d,%d), want (0,5)", g.Start, g.End)
	}
}

func TestCaptureGroupsAcrossChunks(t *testing.T) {
	m := mustMatcher(t, `(hel)(lo)`)
	m.Feed([]byte("say he"))
	m.Feed([]byte("llo there"))
	m.Finalize()

	matches := m.Matches()
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	groups := matches[0].Match.Groups
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if groups[1] != (Span{4, 7}) {
		t.Errorf("group 1 = %v, want (4,7)", groups[1])
	}
	if groups[2] != (Span{7, 9}) {
		t.Errorf("group 2 = %v, want (7,9)", groups[2])
	}
}

func TestReset(t *testing.T) {
	m := mustMatcher(t, "hello")
	m.Feed([]byte("hello"))
	m.Finalize()
	if len(m.Matches()) != 1 {
		t.Fatal("expected 1 match before Reset")
	}

	m.Reset()
	if len(m.Matches()) != 0 {
		t.Fatal("expected 0 matches after Reset")
	}
	m.Feed([]byte("hello again"))
	m.Finalize()
	if len(m.Matches()) != 1 {
		t.Fatal("expected 1 match after refeeding post-Reset")
	}
	if g := m.Matches()[0].Match.Groups[0]; g.Start != 0 || g.End != 5 {
		t.Errorf("got (%d,%d), want (0,5) — absolute offsets must restart from 0", g.Start, g.End)
	}
}

func TestSliceOfSpansThreeChunks(t *testing.T) {
	m := mustMatcher(t, "a+b+c+")
	m.Feed([]byte("xxa"))
	m.Feed([]byte("aab"))
	m.Feed([]byte("bcc"))
	m.Finalize()

	matches := m.Matches()
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	got := m.SliceOf(matches[0])
	if !bytes.Equal(got, []byte("aaabbcc")) {
		t.Errorf("SliceOf = %q, want %q", got, "aaabbcc")
	}
}
