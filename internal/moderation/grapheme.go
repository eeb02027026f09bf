package moderation

import "unicode"

// IsSingleVisibleGrapheme reports whether s is a single visible grapheme
// cluster: exactly one non-combining base rune, optionally followed by
// combining marks (spec.md §4.G "Trivial acceptance"). No grapheme-
// segmentation library appears anywhere in the example pack, so this
// approximates UAX #29 with the standard library's unicode.Mn and
// unicode.Me (nonspacing and enclosing mark) classification rather than pulling in a dedicated dependency for one
// narrow check.
func IsSingleVisibleGrapheme(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	if unicode.Is(unicode.Mn, runes[0]) || unicode.Is(unicode.Me, runes[0]) {
		// A leading combining mark has no base to attach to.
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Me, r) {
			return false
		}
	}
	return true
}
