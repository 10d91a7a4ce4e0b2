package charclass

import "testing"

func TestNormalizeMergesOverlappingAndAdjacent(t *testing.T) {
	in := []Range{{10, 20}, {0, 5}, {21, 25}, {30, 40}, {6, 9}}
	got := Normalize(in)
	want := []Range{{0, 25}, {30, 40}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNegateExcludesSurrogates(t *testing.T) {
	neg := Negate([]Range{{0, MaxRune}})
	if neg != nil {
		t.Fatalf("negating the full range should be empty, got %v", neg)
	}
	neg = Negate([]Range{{0, 0xD7FF}, {0xE000, MaxRune}})
	if neg != nil {
		t.Fatalf("got %v, want empty: the surrogate gap is not part of the complement", neg)
	}
}

func TestNegateDigit(t *testing.T) {
	neg := NotDigit()
	if Contains(neg, '5') {
		t.Error("negated \\d should not contain '5'")
	}
	if !Contains(neg, 'a') {
		t.Error("negated \\d should contain 'a'")
	}
}

func TestContains(t *testing.T) {
	ranges := []Range{{'a', 'f'}, {'0', '9'}}
	for _, r := range []rune{'a', 'c', 'f', '0', '9'} {
		if !Contains(ranges, r) {
			t.Errorf("Contains(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'g', '/', ':'} {
		if Contains(ranges, r) {
			t.Errorf("Contains(%q) = true, want false", r)
		}
	}
}

func TestClassMatchesASCIIBitmapAndFallback(t *testing.T) {
	c := NewClass([]Range{{'a', 'z'}, {0x4E00, 0x9FFF}}, false)
	c.Build()

	for _, r := range []rune{'a', 'm', 'z'} {
		if !c.Matches(r) {
			t.Errorf("Matches(%q) = false, want true", r)
		}
	}
	if c.Matches('A') {
		t.Error("Matches('A') = true, want false")
	}
	if !c.Matches(0x4E2D) {
		t.Error("Matches(0x4E2D) = false, want true (non-ASCII fallback)")
	}
}

func TestClassNegated(t *testing.T) {
	c := NewClass([]Range{{'0', '9'}}, true)
	c.Build()
	if c.Matches('5') {
		t.Error("negated class should not match '5'")
	}
	if !c.Matches('a') {
		t.Error("negated class should match 'a'")
	}
}

func TestClassASCIIBitmapBeforeBuild(t *testing.T) {
	c := NewClass([]Range{{'a', 'z'}}, false)
	if _, _, ok := c.ASCIIBitmap(); ok {
		t.Error("ASCIIBitmap should report ok=false before Build")
	}
}

func TestPredefinedClasses(t *testing.T) {
	if !Contains(Digit(), '7') || Contains(Digit(), 'x') {
		t.Error("Digit() mismatch")
	}
	if !Contains(Word(), '_') || Contains(Word(), ' ') {
		t.Error("Word() mismatch")
	}
	if !Contains(Space(), '\t') || Contains(Space(), 'x') {
		t.Error("Space() mismatch")
	}
}

func TestDecodeRuneASCII(t *testing.T) {
	r, next, ok := DecodeRune([]byte("a"), 0)
	if !ok || r != 'a' || next != 1 {
		t.Fatalf("DecodeRune(\"a\") = (%q, %d, %v)", r, next, ok)
	}
}

func TestDecodeRuneMultiByte(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want rune
		n    int
	}{
		{"2-byte", "é", 'é', 2},
		{"3-byte", "世", '世', 3},
		{"4-byte", "😀", '😀', 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, next, ok := DecodeRune([]byte(tt.in), 0)
			if !ok || r != tt.want || next != tt.n {
				t.Fatalf("DecodeRune(%q) = (%q, %d, %v), want (%q, %d, true)", tt.in, r, next, ok, tt.want, tt.n)
			}
		})
	}
}

func TestDecodeRuneTruncated(t *testing.T) {
	// Lead byte for a 3-byte sequence with only one continuation byte.
	b := []byte{0xE4, 0xB8}
	if _, _, ok := DecodeRune(b, 0); ok {
		t.Error("expected ok=false for a truncated sequence")
	}
}

func TestDecodeRuneOverlong(t *testing.T) {
	// Overlong 2-byte encoding of NUL (0xC0 0x80).
	b := []byte{0xC0, 0x80}
	if _, _, ok := DecodeRune(b, 0); ok {
		t.Error("expected ok=false for an overlong encoding")
	}
}

func TestDecodeRuneSurrogate(t *testing.T) {
	// 3-byte encoding of U+D800 (a surrogate, never a valid codepoint).
	b := []byte{0xED, 0xA0, 0x80}
	if _, _, ok := DecodeRune(b, 0); ok {
		t.Error("expected ok=false for a surrogate codepoint")
	}
}

func TestPropertyLetter(t *testing.T) {
	ranges, ok := Property("L")
	if !ok {
		t.Fatal("Property(\"L\") not found")
	}
	if !Contains(ranges, 'a') || !Contains(ranges, 'Z') {
		t.Error("expected Letter ranges to contain ASCII letters")
	}
	if Contains(ranges, '1') {
		t.Error("Letter ranges should not contain digits")
	}
}

func TestPropertyScript(t *testing.T) {
	ranges, ok := Property("Greek")
	if !ok {
		t.Fatal("Property(\"Greek\") not found")
	}
	if !Contains(ranges, 0x03B1) { // alpha
		t.Error("expected Greek script to contain U+03B1")
	}
}

func TestPropertyScriptPrefix(t *testing.T) {
	a, ok := Property("Script=Greek")
	if !ok {
		t.Fatal("Property(\"Script=Greek\") not found")
	}
	b, _ := Property("Greek")
	if len(a) != len(b) {
		t.Errorf("Script=Greek and Greek should resolve identically, got %d vs %d ranges", len(a), len(b))
	}
}

func TestPropertyUnknown(t *testing.T) {
	if _, ok := Property("NotARealProperty"); ok {
		t.Error("expected ok=false for an unknown property")
	}
}

func TestSimpleFold(t *testing.T) {
	if got := SimpleFold('A'); got != 'a' {
		t.Errorf("SimpleFold('A') = %q, want 'a'", got)
	}
	if got := SimpleFold('5'); got != '5' {
		t.Errorf("SimpleFold('5') = %q, want '5'", got)
	}
}
