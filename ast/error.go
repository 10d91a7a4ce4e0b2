package ast

import "fmt"

// ErrorKind classifies a parse diagnostic.
type ErrorKind int

const (
	// UnexpectedCharacter indicates a byte the grammar did not expect
	// in the current position.
	UnexpectedCharacter ErrorKind = iota
	// UnbalancedParentheses indicates a '(' with no matching ')', or
	// vice versa.
	UnbalancedParentheses
	// InvalidQuantifier indicates a malformed '{...}' repetition or a
	// quantifier applied where no atom precedes it.
	InvalidQuantifier
	// InvalidCharacterClass indicates a malformed '[...]' (unterminated,
	// empty, or a backwards range such as [z-a]).
	InvalidCharacterClass
	// InvalidEscape indicates a '\' sequence the grammar does not
	// recognize, or a backreference such as \1, recognized only to be
	// rejected. Lookaround, named groups and flag groups are InvalidGroup.
	InvalidEscape
	// InvalidGroup indicates a '(?...)' form other than the supported
	// '(?:...)' non-capturing group.
	InvalidGroup
)

// String names the error kind for diagnostic messages.
func (k ErrorKind) String() string {
	switch k {
	case UnexpectedCharacter:
		return "UnexpectedCharacter"
	case UnbalancedParentheses:
		return "UnbalancedParentheses"
	case InvalidQuantifier:
		return "InvalidQuantifier"
	case InvalidCharacterClass:
		return "InvalidCharacterClass"
	case InvalidEscape:
		return "InvalidEscape"
	case InvalidGroup:
		return "InvalidGroup"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError is a diagnostic raised while parsing a pattern. It carries
// enough context for a caller to render a caret under the offending
// byte, the way compiler diagnostics usually do.
type ParseError struct {
	Kind    ErrorKind
	Pattern string
	Offset  int // byte offset into Pattern
	Line    int // 1-based, advances on '\n'
	Column  int // 1-based, resets on '\n'
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d (offset %d): %s", e.Kind, e.Line, e.Column, e.Offset, e.Message)
}

// Context returns a small window of the pattern around the error
// offset, with a caret line under the offending byte, suitable for
// printing under the error message.
func (e *ParseError) Context() string {
	const radius = 16
	start := e.Offset - radius
	if start < 0 {
		start = 0
	}
	end := e.Offset + radius
	if end > len(e.Pattern) {
		end = len(e.Pattern)
	}
	window := e.Pattern[start:end]
	caretPos := e.Offset - start
	caret := make([]byte, caretPos)
	for i := range caret {
		caret[i] = ' '
	}
	return fmt.Sprintf("%s\n%s^", window, caret)
}
