package state

import (
	"sync"

	"go-chat-cli/internal/api"
)

// Session holds the authenticated identity. It is written at login (or a
// successful session check) and refreshed after profile updates; there are
// no concurrent writers beyond that.
type Session struct {
	mu   sync.RWMutex
	user *api.User
}

func NewSession() *Session {
	return &Session{}
}

// Set installs or refreshes the session user.
func (s *Session) Set(u api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// Clear forgets the session user (logout).
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// User returns a copy of the session user, or nil when logged out.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsOwn reports whether senderID is the session user. Messages from the
// viewer are styled differently in the conversation view.
func (s *Session) IsOwn(senderID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.ID == senderID
}
