package chattest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, map[string]any{"status": "error", "message": message})
}

func (s *Server) userJSON(u *User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"nickname": u.Nickname,
		"avatar":   u.Avatar,
		"bio":      u.Bio,
	}
}

func (s *Server) channelJSON(ch *Channel) map[string]any {
	return map[string]any{
		"id":          ch.ID,
		"name":        ch.Name,
		"description": ch.Description,
		"is_private":  ch.IsPrivate,
		"created_by":  ch.CreatedBy,
		"created_at":  isoTime(ch.CreatedAt),
		"user_count":  s.store.memberCount(ch.ID),
	}
}

func (s *Server) messageJSON(m *Message) map[string]any {
	sender := s.store.user(m.SenderID)
	out := map[string]any{
		"id":              m.ID,
		"type":            "message",
		"content":         m.Content,
		"sender_id":       m.SenderID,
		"sender_nickname": sender.Nickname,
		"sender_avatar":   sender.Avatar,
		"channel_id":      m.ChannelID,
		"created_at":      isoTime(m.CreatedAt),
	}
	if m.Image != "" {
		out["image"] = m.Image
	}
	return out
}

func (s *Server) channelListJSON(chans []*Channel) []map[string]any {
	out := make([]map[string]any, 0, len(chans))
	for _, ch := range chans {
		out = append(out, s.channelJSON(ch))
	}
	return out
}

// ---------------------------------------------
// Auth
// ---------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, map[string]any{"status": "ok", "message": "chat API is running"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "missing request data")
		return
	}
	if req.Username == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "username and password are required")
		return
	}
	u := s.store.authenticate(req.Username, req.Password)
	if u == nil {
		fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.issueSession(w, u.ID, u.Username, req.Remember)
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "message": "logged in", "user": s.userJSON(u),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "missing request data")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" || req.Code == "" {
		fail(w, http.StatusBadRequest, "username, password, email and code are required")
		return
	}
	if !s.store.checkCode(req.Email, req.Code) {
		fail(w, http.StatusBadRequest, "invalid verification code")
		return
	}
	u, err := s.store.createUser(req.Username, req.Email, req.Password)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "message": "registered", "user_id": u.ID,
	})
}

func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		fail(w, http.StatusBadRequest, "email is required")
		return
	}
	if s.store.emailRegistered(req.Email) {
		fail(w, http.StatusBadRequest, "email already registered")
		return
	}
	s.store.issueCode(req.Email)
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "message": "verification code sent",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "message": "logged out"})
}

func (s *Server) handleCheckLogin(w http.ResponseWriter, r *http.Request) {
	userID := s.sessionUser(r)
	if userID == 0 {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{
			"status": "error", "message": "not logged in", "is_logged_in": false,
		})
		return
	}
	u := s.store.user(userID)
	if u == nil {
		writeEnvelope(w, http.StatusNotFound, map[string]any{
			"status": "error", "message": "user not found", "is_logged_in": false,
		})
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "is_logged_in": true, "user": s.userJSON(u),
	})
}

// ---------------------------------------------
// Profile
// ---------------------------------------------

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u := s.store.user(requestUser(r))
	writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "user": s.userJSON(u)})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
		Avatar   string `json:"avatar"`
		Bio      string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "missing request data")
		return
	}
	u := s.store.updateProfile(requestUser(r), req.Nickname, req.Avatar, req.Bio)
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "message": "profile updated", "user": s.userJSON(u),
	})
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	ref, _, err := s.acceptImage(r, "avatar")
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	s.store.setAvatar(requestUser(r), ref)
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "message": "avatar uploaded", "avatar": ref,
	})
}

// acceptImage validates and "stores" a multipart image, returning its
// reference. Bytes are discarded; tests only care about the contract.
func (s *Server) acceptImage(r *http.Request, field string) (string, string, error) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		return "", "", fmt.Errorf("no file selected")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", fmt.Errorf("no file selected")
	}
	defer file.Close()

	if header.Size > 16<<20 {
		return "", "", fmt.Errorf("file too large")
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	switch http.DetectContentType(head[:n]) {
	case "image/png", "image/jpeg", "image/gif":
	default:
		return "", "", fmt.Errorf("only PNG, JPG, JPEG and GIF images are allowed")
	}
	ref := fmt.Sprintf("uploads/%d_%s", time.Now().UnixNano(), header.Filename)
	return ref, header.Filename, nil
}

// ---------------------------------------------
// Channels
// ---------------------------------------------

func (s *Server) handleJoinedChannels(w http.ResponseWriter, r *http.Request) {
	chans := s.store.joinedChannels(requestUser(r))
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "channels": s.channelListJSON(chans),
	})
}

func (s *Server) handlePublicChannels(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "channels": s.channelListJSON(s.store.publicChannels()),
	})
}

func (s *Server) handleSearchChannels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		fail(w, http.StatusBadRequest, "search keyword is required")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "channels": s.channelListJSON(s.store.searchChannels(q)),
	})
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"is_private"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "missing request data")
		return
	}
	if req.Name == "" {
		fail(w, http.StatusBadRequest, "channel name is required")
		return
	}
	ch := s.store.createChannel(req.Name, req.Description, req.IsPrivate, requestUser(r))
	if !ch.IsPrivate {
		s.BroadcastChannelCreated(ch)
	}
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "message": "channel created", "channel": s.channelJSON(ch),
	})
}

func (s *Server) channelFromPath(w http.ResponseWriter, r *http.Request) *Channel {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, http.StatusBadRequest, "bad channel id")
		return nil
	}
	ch := s.store.channel(id)
	if ch == nil {
		fail(w, http.StatusNotFound, "channel not found")
		return nil
	}
	return ch
}

func (s *Server) handleChannelDetail(w http.ResponseWriter, r *http.Request) {
	ch := s.channelFromPath(w, r)
	if ch == nil {
		return
	}
	body := s.channelJSON(ch)
	body["is_joined"] = s.store.isMember(ch.ID, requestUser(r))
	writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "channel": body})
}

func (s *Server) handleJoinChannel(w http.ResponseWriter, r *http.Request) {
	ch := s.channelFromPath(w, r)
	if ch == nil {
		return
	}
	if !s.store.join(ch.ID, requestUser(r)) {
		fail(w, http.StatusBadRequest, "already a channel member")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "message": "joined channel"})
}

func (s *Server) handleLeaveChannel(w http.ResponseWriter, r *http.Request) {
	ch := s.channelFromPath(w, r)
	if ch == nil {
		return
	}
	if !s.store.leave(ch.ID, requestUser(r)) {
		fail(w, http.StatusBadRequest, "not a channel member")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "message": "left channel"})
}

func (s *Server) handleChannelMessages(w http.ResponseWriter, r *http.Request) {
	ch := s.channelFromPath(w, r)
	if ch == nil {
		return
	}
	if !s.store.isMember(ch.ID, requestUser(r)) {
		fail(w, http.StatusForbidden, "not a channel member")
		return
	}
	msgs := s.store.channelMessages(ch.ID)
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, s.messageJSON(m))
	}
	writeEnvelope(w, http.StatusOK, map[string]any{"status": "success", "messages": out})
}

func (s *Server) handleSendImageMessage(w http.ResponseWriter, r *http.Request) {
	ref, _, err := s.acceptImage(r, "image")
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	channelID, err := strconv.Atoi(r.FormValue("channel_id"))
	if err != nil || channelID == 0 {
		fail(w, http.StatusBadRequest, "missing channel id")
		return
	}
	userID := requestUser(r)
	if s.store.channel(channelID) == nil {
		fail(w, http.StatusNotFound, "channel not found")
		return
	}
	if !s.store.isMember(channelID, userID) {
		fail(w, http.StatusForbidden, "not a channel member")
		return
	}
	m := s.store.addMessage(channelID, userID, r.FormValue("content"), ref)
	s.hub.broadcastRoom(channelID, frame("new_message", s.messageJSON(m)))
	writeEnvelope(w, http.StatusOK, map[string]any{
		"status": "success", "message": "image message sent", "message_data": s.messageJSON(m),
	})
}
