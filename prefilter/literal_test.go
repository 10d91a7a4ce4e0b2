package prefilter

import (
	"testing"

	"github.com/corerex/corerex/ast"
)

func mustParse(t *testing.T, pattern string) ast.Node {
	t.Helper()
	p, err := ast.Parse(pattern)
	if err != nil {
		t.Fatalf("ast.Parse(%q): %v", pattern, err)
	}
	return p.Root
}

func TestRequiredLiteral(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
		wantOk  bool
	}{
		{"hello", "hello", true},
		{"^hello", "hello", true},
		{"hello$", "hello", true},
		{"hello world", "hello world", true},
		{"(?:hello)", "hello", true},
		{"(hello)", "hello", true},
		{"ab*c", "a", true},
		{"a.c", "a", true},
		{"a{2}", "aa", true},
		{"a{2,}", "aa", true},
		{"a{2,4}", "aa", true},
		{".*", "", false},
		{"[abc]", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			root := mustParse(t, tt.pattern)
			got, ok := RequiredLiteral(root)
			if ok != tt.wantOk {
				t.Fatalf("RequiredLiteral(%q) ok = %v, want %v (lit=%q)", tt.pattern, ok, tt.wantOk, got)
			}
			if ok && string(got) != tt.want {
				t.Fatalf("RequiredLiteral(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestLiteralScanFind(t *testing.T) {
	p := NewLiteralScan([]byte("ll"))
	if got := p.Find([]byte("hello bell"), 0); got != 2 {
		t.Fatalf("Find at 0 = %d, want 2", got)
	}
	if got := p.Find([]byte("hello bell"), 3); got != 8 {
		t.Fatalf("Find at 3 = %d, want 8", got)
	}
	if got := p.Find([]byte("hello bell"), 9); got != -1 {
		t.Fatalf("Find at 9 = %d, want -1", got)
	}
	if p.IsComplete() {
		t.Fatal("LiteralScan.IsComplete() = true, want false")
	}
	if p.LiteralLen() != 2 {
		t.Fatalf("LiteralLen() = %d, want 2", p.LiteralLen())
	}
}

func TestLiteralScanEmptyLiteral(t *testing.T) {
	p := NewLiteralScan(nil)
	if got := p.Find([]byte("abc"), 0); got != 0 {
		t.Fatalf("Find([]byte(\"abc\"), 0) = %d, want 0 (bytes.Index with an empty substr always matches)", got)
	}
}
