package ast

import (
	"errors"
	"testing"
)

func TestParseLiteral(t *testing.T) {
	p, err := Parse("abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c1, ok := p.Root.(*Concatenation)
	if !ok {
		t.Fatalf("root = %T, want *Concatenation", p.Root)
	}
	c0, ok := c1.Left.(*Concatenation)
	if !ok {
		t.Fatalf("left = %T, want *Concatenation", c1.Left)
	}
	if lit, ok := c0.Left.(*Literal); !ok || lit.Byte != 'a' {
		t.Errorf("leftmost literal = %#v, want 'a'", c0.Left)
	}
	if lit, ok := c0.Right.(*Literal); !ok || lit.Byte != 'b' {
		t.Errorf("middle literal = %#v, want 'b'", c0.Right)
	}
	if lit, ok := c1.Right.(*Literal); !ok || lit.Byte != 'c' {
		t.Errorf("rightmost literal = %#v, want 'c'", c1.Right)
	}
}

func TestParseGroupAssignsIDsInOpenParenOrder(t *testing.T) {
	p, err := Parse(`(a(b))(c)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.NumGroups != 4 {
		t.Fatalf("NumGroups = %d, want 4", p.NumGroups)
	}
	outer, ok := p.Root.(*Concatenation)
	if !ok {
		t.Fatalf("root = %T, want *Concatenation", p.Root)
	}
	g1, ok := outer.Left.(*CaptureGroup)
	if !ok || g1.ID != 1 {
		t.Fatalf("left group = %#v, want ID 1", outer.Left)
	}
	inner, ok := g1.Inner.(*Concatenation)
	if !ok {
		t.Fatalf("group 1 inner = %T, want *Concatenation", g1.Inner)
	}
	g2, ok := inner.Right.(*CaptureGroup)
	if !ok || g2.ID != 2 {
		t.Fatalf("nested group = %#v, want ID 2", inner.Right)
	}
	g3, ok := outer.Right.(*CaptureGroup)
	if !ok || g3.ID != 3 {
		t.Fatalf("right group = %#v, want ID 3", outer.Right)
	}
}

func TestParseNonCaptureGroupDoesNotConsumeID(t *testing.T) {
	p, err := Parse(`(?:a)(b)`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.NumGroups != 2 {
		t.Fatalf("NumGroups = %d, want 2", p.NumGroups)
	}
	root, ok := p.Root.(*Concatenation)
	if !ok {
		t.Fatalf("root = %T, want *Concatenation", p.Root)
	}
	if _, ok := root.Left.(*NonCaptureGroup); !ok {
		t.Errorf("left = %T, want *NonCaptureGroup", root.Left)
	}
	if g, ok := root.Right.(*CaptureGroup); !ok || g.ID != 1 {
		t.Errorf("right = %#v, want CaptureGroup{ID: 1}", root.Right)
	}
}

func TestParseQuantifiers(t *testing.T) {
	tests := []struct {
		pattern string
		wantMin int
		wantMax *int
	}{
		{"a*", 0, nil},
		{"a+", 1, nil},
		{"a?", 0, intPtr(1)},
		{"a{3}", 3, intPtr(3)},
		{"a{2,5}", 2, intPtr(5)},
		{"a{2,}", 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := Parse(tt.pattern)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.pattern, err)
			}
			q, ok := p.Root.(*Quantifier)
			if !ok {
				t.Fatalf("root = %T, want *Quantifier", p.Root)
			}
			if q.Min != tt.wantMin {
				t.Errorf("Min = %d, want %d", q.Min, tt.wantMin)
			}
			if !equalIntPtr(q.Max, tt.wantMax) {
				t.Errorf("Max = %v, want %v", derefOrNil(q.Max), derefOrNil(tt.wantMax))
			}
		})
	}
}

func TestParseQuantifierGreediness(t *testing.T) {
	p, err := Parse("a*?")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	q := p.Root.(*Quantifier)
	if q.Greedy {
		t.Error("a*? should be non-greedy")
	}
}

func TestParseRejectsPossessiveQuantifier(t *testing.T) {
	_, err := Parse("a*+")
	assertParseErrorKind(t, err, InvalidQuantifier)
}

func TestParseRejectsOutOfOrderRange(t *testing.T) {
	_, err := Parse("a{5,2}")
	assertParseErrorKind(t, err, InvalidQuantifier)
}

func TestParseRejectsDoubleQuantifier(t *testing.T) {
	_, err := Parse("a**")
	assertParseErrorKind(t, err, InvalidQuantifier)
}

func TestParseRejectsUnbalancedParens(t *testing.T) {
	for _, pattern := range []string{"(a", "a)", "(a(b)"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := Parse(pattern)
			assertParseErrorKind(t, err, UnbalancedParentheses)
		})
	}
}

func TestParseRejectsNonGoalConstructs(t *testing.T) {
	tests := []struct {
		pattern string
		kind    ErrorKind
	}{
		{`(a)\1`, InvalidEscape},
		{`(?=a)`, InvalidGroup},
		{`(?!a)`, InvalidGroup},
		{`(?<=a)`, InvalidGroup},
		{`(?<name>a)`, InvalidGroup},
		{`(?P<name>a)`, InvalidGroup},
		{`(?i)a`, InvalidGroup},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := Parse(tt.pattern)
			assertParseErrorKind(t, err, tt.kind)
		})
	}
}

func TestParseCharClass(t *testing.T) {
	p, err := Parse("[a-z0-9]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cc, ok := p.Root.(*CharClass)
	if !ok {
		t.Fatalf("root = %T, want *CharClass", p.Root)
	}
	if cc.Negated {
		t.Error("should not be negated")
	}
	if len(cc.Ranges) == 0 {
		t.Error("expected at least one range")
	}
}

func TestParseCharClassNegated(t *testing.T) {
	p, err := Parse("[^a-z]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cc := p.Root.(*CharClass)
	if !cc.Negated {
		t.Error("expected Negated = true")
	}
}

func TestParseCharClassMultiByte(t *testing.T) {
	p, err := Parse("[é]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cc := p.Root.(*CharClass)
	if len(cc.Ranges) != 1 || cc.Ranges[0].Lo != 'é' || cc.Ranges[0].Hi != 'é' {
		t.Fatalf("ranges = %v, want the single codepoint é", cc.Ranges)
	}

	p, err = Parse("[α-ω]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cc = p.Root.(*CharClass)
	if len(cc.Ranges) != 1 || cc.Ranges[0].Lo != 'α' || cc.Ranges[0].Hi != 'ω' {
		t.Fatalf("ranges = %v, want α-ω as one range", cc.Ranges)
	}
}

func TestParseCharClassRejectsInvalidUTF8(t *testing.T) {
	_, err := Parse("[\xC3]") // lone lead byte
	assertParseErrorKind(t, err, InvalidCharacterClass)
}

func TestParseCharClassRejectsEmpty(t *testing.T) {
	_, err := Parse("[]")
	assertParseErrorKind(t, err, InvalidCharacterClass)
}

func TestParseCharClassRejectsUnterminated(t *testing.T) {
	_, err := Parse("[abc")
	assertParseErrorKind(t, err, InvalidCharacterClass)
}

func TestParseUnicodeProperty(t *testing.T) {
	p, err := Parse(`\p{L}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cc, ok := p.Root.(*CharClass)
	if !ok {
		t.Fatalf("root = %T, want *CharClass", p.Root)
	}
	if cc.Negated {
		t.Error("should not be negated")
	}
	if len(cc.Ranges) == 0 {
		t.Error("expected ranges for \\p{L}")
	}
}

func TestParseUnicodePropertyUnknown(t *testing.T) {
	_, err := Parse(`\p{NotARealProperty}`)
	assertParseErrorKind(t, err, InvalidEscape)
}

func TestParseAnchorsAndAnyChar(t *testing.T) {
	p, err := Parse("^.$")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c1 := p.Root.(*Concatenation)
	c0 := c1.Left.(*Concatenation)
	if _, ok := c0.Left.(*AnchorStart); !ok {
		t.Errorf("left = %T, want *AnchorStart", c0.Left)
	}
	if _, ok := c0.Right.(*AnyChar); !ok {
		t.Errorf("middle = %T, want *AnyChar", c0.Right)
	}
	if _, ok := c1.Right.(*AnchorEnd); !ok {
		t.Errorf("right = %T, want *AnchorEnd", c1.Right)
	}
}

func assertParseErrorKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error is %T, want *ParseError", err)
	}
	if pe.Kind != want {
		t.Fatalf("Kind = %s, want %s", pe.Kind, want)
	}
}

func intPtr(v int) *int { return &v }

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func derefOrNil(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
