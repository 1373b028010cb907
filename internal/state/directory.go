// Package state holds the client's mirror of server state: the channel
// directory, the active conversation and the session user. Everything here
// is pure bookkeeping; no I/O, no rendering, so every rule is testable
// without a terminal or a live socket.
package state

import (
	"sync"

	"go-chat-cli/internal/api"
)

// Directory mirrors the joined and public channel lists. Both sequences
// preserve server order; a channel id appears at most once per sequence.
// Reads return snapshots, so rendering never races a refresh.
type Directory struct {
	mu     sync.RWMutex
	joined []api.Channel
	public []api.Channel

	// filtered overrides the rendered public list while a search is
	// active. It never replaces the authoritative public sequence.
	filtered  []api.Channel
	filtering bool
}

func NewDirectory() *Directory {
	return &Directory{}
}

// RefreshJoined replaces the joined sequence wholesale.
func (d *Directory) RefreshJoined(channels []api.Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.joined = dedupe(channels)
}

// RefreshPublic replaces the public sequence wholesale and drops any
// active search filter, restoring the full rendered list.
func (d *Directory) RefreshPublic(channels []api.Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.public = dedupe(channels)
	d.filtered = nil
	d.filtering = false
}

// AddJoined appends after a successful join call. Adding an id that is
// already present is a no-op.
func (d *Directory) AddJoined(ch api.Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.joined {
		if existing.ID == ch.ID {
			return
		}
	}
	d.joined = append(d.joined, ch)
}

// RemoveJoined drops a channel after a successful leave call; absent ids
// are a no-op.
func (d *Directory) RemoveJoined(channelID int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.joined[:0]
	for _, ch := range d.joined {
		if ch.ID != channelID {
			out = append(out, ch)
		}
	}
	d.joined = out
}

// ApplyChannelCreated appends a pushed channel to the public sequence.
// The joined sequence is untouched.
func (d *Directory) ApplyChannelCreated(ch api.Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.public {
		if existing.ID == ch.ID {
			return
		}
	}
	d.public = append(d.public, ch)
}

// SetSearchResults overrides the rendered public list with a server-side
// filter result. The authoritative sequence is kept.
func (d *Directory) SetSearchResults(channels []api.Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filtered = dedupe(channels)
	d.filtering = true
}

// ClearSearch restores the full public list without a refetch.
func (d *Directory) ClearSearch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filtered = nil
	d.filtering = false
}

// UpdateUserCount patches the roster count of a channel in both sequences.
func (d *Directory) UpdateUserCount(channelID, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.joined {
		if d.joined[i].ID == channelID {
			d.joined[i].UserCount = count
		}
	}
	for i := range d.public {
		if d.public[i].ID == channelID {
			d.public[i].UserCount = count
		}
	}
	for i := range d.filtered {
		if d.filtered[i].ID == channelID {
			d.filtered[i].UserCount = count
		}
	}
}

// Joined returns a snapshot of the joined sequence.
func (d *Directory) Joined() []api.Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snapshot(d.joined)
}

// Public returns a snapshot of the authoritative public sequence,
// regardless of any active search filter.
func (d *Directory) Public() []api.Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snapshot(d.public)
}

// RenderedPublic returns what the public pane should show: the filter
// result while a search is active, the full sequence otherwise.
func (d *Directory) RenderedPublic() []api.Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.filtering {
		return snapshot(d.filtered)
	}
	return snapshot(d.public)
}

// IsJoined reports whether the id is in the joined sequence.
func (d *Directory) IsJoined(channelID int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ch := range d.joined {
		if ch.ID == channelID {
			return true
		}
	}
	return false
}

func snapshot(in []api.Channel) []api.Channel {
	out := make([]api.Channel, len(in))
	copy(out, in)
	return out
}

func dedupe(in []api.Channel) []api.Channel {
	seen := make(map[int]bool, len(in))
	out := make([]api.Channel, 0, len(in))
	for _, ch := range in {
		if seen[ch.ID] {
			continue
		}
		seen[ch.ID] = true
		out = append(out, ch)
	}
	return out
}
