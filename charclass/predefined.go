package charclass

// Predefined escape classes, exactly as enumerated in the pattern
// grammar: \d \D \w \W \s \S.

// Digit returns the ranges for \d: [0-9].
func Digit() []Range {
	return []Range{{'0', '9'}}
}

// NotDigit returns the ranges for \D: the negation of \d.
func NotDigit() []Range {
	return Negate(Digit())
}

// Word returns the ranges for \w: [A-Za-z0-9_].
func Word() []Range {
	return []Range{
		{'A', 'Z'},
		{'a', 'z'},
		{'0', '9'},
		{'_', '_'},
	}
}

// NotWord returns the ranges for \W: the negation of \w.
func NotWord() []Range {
	return Negate(Word())
}

// Space returns the ranges for \s: [ \t\r\n\x0B\x0C].
func Space() []Range {
	return []Range{
		{' ', ' '},
		{'\t', '\t'},
		{'\n', '\n'},
		{0x0B, 0x0B},
		{'\r', '\r'},
		{0x0C, 0x0C},
	}
}

// NotSpace returns the ranges for \S: the negation of \s.
func NotSpace() []Range {
	return Negate(Space())
}
