package chattest

import (
	"crypto/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server is the fake chat backend. Mount Handler() on an httptest.Server
// and point the client under test at its URL.
type Server struct {
	store     *store
	hub       *hub
	router    chi.Router
	jwtSecret []byte
}

func New() *Server {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	s := &Server{
		store:     newStore(),
		jwtSecret: secret,
	}
	s.hub = newHub(s)
	s.router = s.routes()
	return s
}

// Handler returns the full HTTP surface: envelope API plus the /ws push
// endpoint.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/send_verification_code", s.handleSendCode)
	r.Post("/api/logout", s.handleLogout)
	r.Get("/api/check_login", s.handleCheckLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/api/user", s.handleGetUser)
		r.Put("/api/user", s.handleUpdateUser)
		r.Post("/api/upload/avatar", s.handleUploadAvatar)
		r.Get("/api/channels/joined", s.handleJoinedChannels)
		r.Get("/api/channels/public", s.handlePublicChannels)
		r.Get("/api/channels/search", s.handleSearchChannels)
		r.Post("/api/channels", s.handleCreateChannel)
		r.Get("/api/channels/{id}", s.handleChannelDetail)
		r.Post("/api/channels/{id}/join", s.handleJoinChannel)
		r.Post("/api/channels/{id}/leave", s.handleLeaveChannel)
		r.Get("/api/channels/{id}/messages", s.handleChannelMessages)
		r.Post("/api/send_image_message", s.handleSendImageMessage)
		r.Get("/ws", s.serveWs)
	})

	return r
}

// ---------------------------------------------
// Test seams
// ---------------------------------------------

// SeedUser registers a user directly, skipping email verification.
func (s *Server) SeedUser(username, password string) *User {
	u, err := s.store.createUser(username, username+"@example.com", password)
	if err != nil {
		panic(err)
	}
	return u
}

// SeedChannel creates a channel owned (and joined) by creator.
func (s *Server) SeedChannel(name, description string, isPrivate bool, creator int) *Channel {
	return s.store.createChannel(name, description, isPrivate, creator)
}

// SeedMember adds a user to a channel roster directly.
func (s *Server) SeedMember(channelID, userID int) {
	s.store.join(channelID, userID)
}

// SeedMessage appends a message directly to a channel's history.
func (s *Server) SeedMessage(channelID, senderID int, content string) *Message {
	return s.store.addMessage(channelID, senderID, content, "")
}

// LastCode returns the most recent verification code issued for an email,
// standing in for reading the inbox.
func (s *Server) LastCode(email string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.codes[email]
}

// BroadcastChannelCreated pushes a channel_created event to every
// connected client, as the real backend does after a channel is created.
func (s *Server) BroadcastChannelCreated(ch *Channel) {
	s.hub.broadcastAll(frame("channel_created", map[string]any{
		"channel": s.channelJSON(ch),
	}))
}

func isoTime(t time.Time) string { return t.Format(time.RFC3339) }
