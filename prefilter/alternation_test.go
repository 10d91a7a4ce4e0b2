package prefilter

import "testing"

func TestLiteralAlternatives(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
		wantOk  bool
	}{
		{"cat|dog|bird", []string{"cat", "dog", "bird"}, true},
		{"(?:cat|dog|bird)", []string{"cat", "dog", "bird"}, true},
		{"cat|dog", nil, false}, // below MinAlternatives
		{"cat|dog|b.rd", nil, false}, // not a pure literal branch
		{"hello", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			root := mustParse(t, tt.pattern)
			got, ok := LiteralAlternatives(root)
			if ok != tt.wantOk {
				t.Fatalf("LiteralAlternatives(%q) ok = %v, want %v", tt.pattern, ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("LiteralAlternatives(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
			for i, w := range tt.want {
				if string(got[i]) != w {
					t.Fatalf("LiteralAlternatives(%q)[%d] = %q, want %q", tt.pattern, i, got[i], w)
				}
			}
		})
	}
}
