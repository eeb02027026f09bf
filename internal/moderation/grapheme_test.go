package moderation

import "testing"

func TestIsSingleVisibleGrapheme(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"empty", "", false},
		{"single ascii letter", "a", true},
		{"single emoji", "\U0001F44D", true},
		{"decomposed base plus combining accent", "é", true},
		{"leading combining mark", "́a", false},
		{"two letters", "ab", false},
		{"word", "hello", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsSingleVisibleGrapheme(c.in); got != c.want {
				t.Errorf("IsSingleVisibleGrapheme(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
