package ui

import "strings"

// SanitizeText neutralizes user-supplied text before it is inserted into
// the terminal. The injection vector here is not HTML but raw control
// bytes: an ESC sequence smuggled into a message could repaint the screen,
// move the cursor or retitle the window. Everything below 0x20 except tab
// and newline is dropped, as are DEL and the C1 range; printable text such
// as "<script>" passes through untouched and renders literally.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			// C0 controls and DEL, ESC included.
		case r >= 0x80 && r <= 0x9f:
			// C1 controls; CSI lives here.
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sanitizeLine is SanitizeText for single-line fields: newlines and tabs
// collapse to spaces so a nickname can't break list alignment.
func sanitizeLine(s string) string {
	clean := SanitizeText(s)
	clean = strings.ReplaceAll(clean, "\n", " ")
	clean = strings.ReplaceAll(clean, "\t", " ")
	return clean
}
