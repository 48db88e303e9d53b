package domain

import (
	"strings"
)

// NormalizeText prepares a highlighted term for storage and lookup:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved so Vietnamese
// meanings and hyphenated terms survive normalization.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
