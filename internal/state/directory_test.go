package state

import (
	"testing"

	"go-chat-cli/internal/api"
)

func ch(id int, name string) api.Channel {
	return api.Channel{ID: id, Name: name, UserCount: 1}
}

func ids(channels []api.Channel) []int {
	out := make([]int, len(channels))
	for i, c := range channels {
		out[i] = c.ID
	}
	return out
}

func TestRefreshDedupes(t *testing.T) {
	d := NewDirectory()
	d.RefreshJoined([]api.Channel{ch(1, "general"), ch(2, "random"), ch(1, "general")})

	if got := len(d.Joined()); got != 2 {
		t.Fatalf("joined len = %d, want 2", got)
	}
	if !d.IsJoined(1) || !d.IsJoined(2) || d.IsJoined(3) {
		t.Fatalf("membership wrong: %v", ids(d.Joined()))
	}
}

func TestAddAndRemoveJoined(t *testing.T) {
	d := NewDirectory()
	d.RefreshJoined([]api.Channel{ch(1, "general")})

	d.AddJoined(ch(2, "random"))
	d.AddJoined(ch(2, "random")) // duplicate join is a no-op
	if got := len(d.Joined()); got != 2 {
		t.Fatalf("joined len = %d, want 2", got)
	}

	d.RemoveJoined(99) // absent channel is a no-op
	d.RemoveJoined(1)
	if d.IsJoined(1) {
		t.Fatal("channel 1 still joined after remove")
	}
	if got := len(d.Joined()); got != 1 {
		t.Fatalf("joined len = %d, want 1", got)
	}
}

func TestSearchOverridesRenderedListOnly(t *testing.T) {
	d := NewDirectory()
	d.RefreshPublic([]api.Channel{ch(1, "general"), ch(2, "random"), ch(3, "golang")})

	d.SetSearchResults([]api.Channel{ch(3, "golang")})
	if got := len(d.RenderedPublic()); got != 1 {
		t.Fatalf("rendered len = %d, want 1", got)
	}
	// The authoritative public list is untouched under the filter.
	if got := len(d.Public()); got != 3 {
		t.Fatalf("public len = %d, want 3", got)
	}

	d.ClearSearch()
	if got := len(d.RenderedPublic()); got != 3 {
		t.Fatalf("rendered len after clear = %d, want 3", got)
	}
}

func TestRefreshPublicClearsFilter(t *testing.T) {
	d := NewDirectory()
	d.RefreshPublic([]api.Channel{ch(1, "general"), ch(2, "random")})
	d.SetSearchResults([]api.Channel{ch(2, "random")})

	d.RefreshPublic([]api.Channel{ch(1, "general"), ch(2, "random"), ch(3, "golang")})
	if got := len(d.RenderedPublic()); got != 3 {
		t.Fatalf("rendered len = %d, want 3 after refresh", got)
	}
}

func TestApplyChannelCreated(t *testing.T) {
	d := NewDirectory()
	d.RefreshPublic([]api.Channel{ch(1, "general")})

	d.ApplyChannelCreated(ch(2, "random"))
	d.ApplyChannelCreated(ch(2, "random")) // duplicate push frame
	if got := len(d.Public()); got != 2 {
		t.Fatalf("public len = %d, want 2", got)
	}
	// Creation announcements never grant membership.
	if len(d.Joined()) != 0 {
		t.Fatal("broadcast channel leaked into joined list")
	}
}

func TestUpdateUserCount(t *testing.T) {
	d := NewDirectory()
	d.RefreshJoined([]api.Channel{ch(1, "general")})
	d.RefreshPublic([]api.Channel{ch(1, "general"), ch(2, "random")})

	d.UpdateUserCount(1, 7)
	if got := d.Joined()[0].UserCount; got != 7 {
		t.Fatalf("joined count = %d, want 7", got)
	}
	for _, c := range d.Public() {
		if c.ID == 1 && c.UserCount != 7 {
			t.Fatalf("public count = %d, want 7", c.UserCount)
		}
	}
}
