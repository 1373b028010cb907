package ui

import (
	"fmt"
	"testing"

	"go-chat-cli/internal/api"
)

func TestParseImageCommand(t *testing.T) {
	cases := []struct {
		in      string
		path    string
		caption string
		ok      bool
	}{
		{"/image /tmp/cat.png", "/tmp/cat.png", "", true},
		{"/image /tmp/cat.png look at this", "/tmp/cat.png", "look at this", true},
		{"/image   ", "", "", false},
		{"hello world", "", "", false},
		{"/imagery /tmp/cat.png", "", "", false},
	}
	for _, tc := range cases {
		path, caption, ok := parseImageCommand(tc.in)
		if path != tc.path || caption != tc.caption || ok != tc.ok {
			t.Errorf("parseImageCommand(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.in, path, caption, ok, tc.path, tc.caption, tc.ok)
		}
	}
}

func TestUserMessage(t *testing.T) {
	// Application errors surface verbatim.
	srv := &api.ErrServer{Message: "invalid credentials"}
	if got := userMessage(srv); got != "invalid credentials" {
		t.Fatalf("got %q", got)
	}

	// Transport errors collapse to the generic fallback; the cause stays
	// out of the footer.
	wrapped := fmt.Errorf("%w: connection refused", api.ErrTransport)
	if got := userMessage(wrapped); got != genericFailure {
		t.Fatalf("got %q", got)
	}
}
