package state

import (
	"sync"

	"go-chat-cli/internal/api"
)

// Conversation is the single active-conversation slot. Two states: Idle
// (no channel, input disabled, empty list) and Active (one channel, input
// enabled, append-only message list).
//
// Select bumps an epoch and ApplyHistory carries the epoch it was fetched
// under, so a history response that resolves after the user has moved to
// another channel is discarded instead of rendered into the wrong view.
type Conversation struct {
	mu       sync.RWMutex
	channel  *api.Channel
	messages []api.Message
	epoch    uint64
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Active reports whether a channel is selected.
func (c *Conversation) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel != nil
}

// Channel returns a copy of the selected channel, or nil when Idle.
func (c *Conversation) Channel() *api.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.channel == nil {
		return nil
	}
	ch := *c.channel
	return &ch
}

// Select makes the channel active, clears any prior message list and
// returns the epoch the caller must pass to ApplyHistory. Re-selecting the
// same channel replaces history wholesale, same as selecting a new one.
func (c *Conversation) Select(ch api.Channel) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channel = &ch
	c.messages = nil
	c.epoch++
	return c.epoch
}

// ApplyHistory installs the fetched history, replacing whatever is
// rendered. Stale responses (epoch mismatch) are dropped.
func (c *Conversation) ApplyHistory(epoch uint64, msgs []api.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil || epoch != c.epoch {
		return false
	}
	c.messages = make([]api.Message, len(msgs))
	copy(c.messages, msgs)
	return true
}

// Append adds one inbound message. Messages for other channels (or while
// Idle) are ignored; the push room should prevent that, but a frame can be
// in flight across a channel switch.
func (c *Conversation) Append(msg api.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return false
	}
	if msg.ChannelID != 0 && msg.ChannelID != c.channel.ID {
		return false
	}
	c.messages = append(c.messages, msg)
	return true
}

// UpdateUserCount patches the active channel's roster count without
// touching the message list. No-op when Idle or for another channel.
func (c *Conversation) UpdateUserCount(channelID, count int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil || c.channel.ID != channelID {
		return false
	}
	c.channel.UserCount = count
	return true
}

// Leave returns to Idle: selection cleared, messages cleared.
func (c *Conversation) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channel = nil
	c.messages = nil
	c.epoch++
}

// Messages returns a snapshot of the rendered list.
func (c *Conversation) Messages() []api.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]api.Message, len(c.messages))
	copy(out, c.messages)
	return out
}
