package utils

import "strings"

// subscriptDigits maps '0'..'9' to U+2080..U+2089
var subscriptDigits = [10]rune{'₀', '₁', '₂', '₃', '₄', '₅', '₆', '₇', '₈', '₉'}

// QuickPickFormulas are the formula shortcuts offered next to the chemical list
var QuickPickFormulas = []string{"NaCl", "CH3OH", "H2SO4", "NaOH", "HCl", "KMnO4"}

// InsertFormula rewrites every ASCII digit of a formula into its subscript glyph.
// Example: "H2SO4" -> "H₂SO₄"
func InsertFormula(formula string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return subscriptDigits[r-'0']
		}
		return r
	}, formula)
}

// InsertAt inserts the subscripted formula into text at the given rune position
// and returns the new text with the cursor position just after the insertion
func InsertAt(text string, cursor int, formula string) (string, int) {
	runes := []rune(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}

	inserted := []rune(InsertFormula(formula))
	out := make([]rune, 0, len(runes)+len(inserted))
	out = append(out, runes[:cursor]...)
	out = append(out, inserted...)
	out = append(out, runes[cursor:]...)
	return string(out), cursor + len(inserted)
}
