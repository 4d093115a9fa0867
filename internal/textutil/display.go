package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// SanitizeLine replaces control characters in matched line text so it can be
// handed to a presentation layer without injecting escape sequences.
func SanitizeLine(text string) string {
	clean := true
	for _, r := range text {
		if requiresSanitization(r) {
			clean = false
			break
		}
	}
	if clean {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t':
			b.WriteByte(' ')
		case requiresSanitization(r):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TruncateDisplay bounds text to the given display width, appending an
// ellipsis when something was cut. Width accounting is cell-based so wide
// runes do not overflow the column.
func TruncateDisplay(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

func requiresSanitization(r rune) bool {
	if r == '\t' {
		return true
	}
	return (r >= 0 && r < 0x20) || r == 0x7f
}
