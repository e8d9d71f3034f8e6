// Package textclean filters raw OCR output down to usable text fragments.
package textclean

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"foodsafe/internal/domain"
)

// MinLength is the minimum number of runes a fragment needs to be kept.
const MinLength = 3

// Clean returns the text of every line that is at least MinLength runes long
// and made only of printable runes, in detection order. It never returns nil.
func Clean(lines []domain.OCRLine) []string {
	cleaned := make([]string, 0, len(lines))
	for i := range lines {
		if keep(lines[i].Text) {
			cleaned = append(cleaned, lines[i].Text)
		}
	}
	return cleaned
}

// Join renders cleaned fragments the way they are embedded into prompts.
func Join(cleaned []string) string {
	return strings.Join(cleaned, ", ")
}

func keep(text string) bool {
	if !utf8.ValidString(text) || utf8.RuneCountInString(text) < MinLength {
		return false
	}
	for _, r := range text {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
