package ui

import "testing"

func TestSanitizeTextStripsControls(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"esc sequence", "\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"bell and backspace", "a\x07b\x08c", "abc"},
		{"del", "a\x7fb", "ab"},
		{"c1 csi", "a31mb", "a31mb"},
		{"keeps newline and tab", "line1\n\tline2", "line1\n\tline2"},
		{"carriage return dropped", "one\r\ntwo", "one\ntwo"},
		{"html passes literally", "<script>alert(1)</script>", "<script>alert(1)</script>"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeText(tc.in); got != tc.want {
				t.Fatalf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeLineCollapsesWhitespace(t *testing.T) {
	if got := sanitizeLine("nick\nname\ttail"); got != "nick name tail" {
		t.Fatalf("got %q", got)
	}
	if got := sanitizeLine("\x1b]0;title\x07plain"); got != "]0;titleplain" {
		t.Fatalf("got %q", got)
	}
}
