package charclass

import "unicode"

// Property resolves a \p{NAME} (or \P{NAME}) name to its codepoint
// ranges. NAME is drawn from a closed enumeration: a handful of
// general categories, any script name in the standard library's
// unicode.Scripts table (via "Script=NAME" or the bare script name),
// and three binary properties.
//
// The underlying data comes from the standard library's unicode
// package range tables (unicode.Letter, unicode.Scripts["Greek"], ...).
// This is the same authoritative Unicode database regexp/syntax itself
// draws on; hand-maintaining an equivalent range list here would be
// reinventing, not grounding, so the stdlib tables are used directly
// (see DESIGN.md).
func Property(name string) ([]Range, bool) {
	if n, ok := stripScriptPrefix(name); ok {
		name = n
	}

	if rt, ok := generalCategories[name]; ok {
		return rangeTableToRanges(rt), true
	}
	if rt, ok := unicode.Scripts[name]; ok {
		return rangeTableToRanges(rt), true
	}
	switch name {
	case "ASCII":
		return []Range{{0, 0x7F}}, true
	case "ASCII_Hex_Digit":
		return []Range{{'0', '9'}, {'A', 'F'}, {'a', 'f'}}, true
	case "White_Space":
		return rangeTableToRanges(unicode.White_Space), true
	}
	return nil, false
}

func stripScriptPrefix(name string) (string, bool) {
	const prefix = "Script="
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):], true
	}
	return name, false
}

// generalCategories maps the recognized category names to the stdlib
// RangeTable that implements them.
var generalCategories = map[string]*unicode.RangeTable{
	"L":               unicode.Letter,
	"Letter":          unicode.Letter,
	"Ll":              unicode.Ll,
	"Lu":              unicode.Lu,
	"N":               unicode.Number,
	"Number":          unicode.Number,
	"Nd":              unicode.Nd,
	"P":               unicode.Punct,
	"Punctuation":     unicode.Punct,
	"S":               unicode.Symbol,
	"Symbol":          unicode.Symbol,
	"Z":               unicode.Space,
	"Separator":       unicode.Space,
	"Zs":              unicode.Zs,
	"Space_Separator": unicode.Zs,
}

// rangeTableToRanges flattens a unicode.RangeTable (R16 + R32 entries,
// each with Lo/Hi/Stride) into our inclusive Range list. Stride != 1
// entries (e.g. every-other-codepoint tables) are expanded one
// sub-range per codepoint; the enumerated property subset used here is
// small enough that this does not blow up range counts in practice.
func rangeTableToRanges(rt *unicode.RangeTable) []Range {
	var out []Range
	for _, r16 := range rt.R16 {
		if r16.Stride == 1 {
			out = append(out, Range{rune(r16.Lo), rune(r16.Hi)})
			continue
		}
		for c := rune(r16.Lo); c <= rune(r16.Hi); c += rune(r16.Stride) {
			out = append(out, Range{c, c})
		}
	}
	for _, r32 := range rt.R32 {
		if r32.Stride == 1 {
			out = append(out, Range{rune(r32.Lo), rune(r32.Hi)})
			continue
		}
		for c := rune(r32.Lo); c <= rune(r32.Hi); c += rune(r32.Stride) {
			out = append(out, Range{c, c})
		}
	}
	return Normalize(out)
}
