package service

import (
	"strings"
	"unicode"
)

// NormalizeText cleans user and model supplied text. Whitespace runs, Unicode
// spaces included, collapse to a single space (or a single newline when the
// run contains one). Other control characters below 0x20 are removed without
// breaking a run, and surrounding spaces are trimmed. Newline is the only
// control character that can survive.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inRun, runHasNewline := false, false
	flush := func() {
		if !inRun {
			return
		}
		if runHasNewline {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
		inRun, runHasNewline = false, false
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			inRun = true
			if r == '\n' {
				runHasNewline = true
			}
		case r < 32:
		default:
			flush()
			b.WriteRune(r)
		}
	}
	flush()
	return strings.Trim(b.String(), " ")
}
