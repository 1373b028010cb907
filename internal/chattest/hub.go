package chattest

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsClient is a middleman between one websocket connection and the hub.
type wsClient struct {
	hub    *hub
	conn   *websocket.Conn
	send   chan []byte
	userID int
	room   int // channel room the connection has joined, 0 = none
}

// hub tracks the connections and their rooms and fans frames out.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]bool
	srv     *Server
}

func newHub(srv *Server) *hub {
	return &hub{clients: make(map[*wsClient]bool), srv: srv}
}

func (h *hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// frame builds the push wire envelope {"event": ..., "data": ...}.
func frame(event string, data any) []byte {
	payload, _ := json.Marshal(data)
	out, _ := json.Marshal(map[string]json.RawMessage{
		"event": json.RawMessage(`"` + event + `"`),
		"data":  payload,
	})
	return out
}

func (h *hub) broadcastAll(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.deliver(c, msg)
	}
}

func (h *hub) broadcastRoom(channelID int, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.room == channelID {
			h.deliver(c, msg)
		}
	}
}

// deliver must be called with the lock held.
func (h *hub) deliver(c *wsClient, msg []byte) {
	select {
	case c.send <- msg:
	default:
		// Slow consumer; drop the connection like the real hub does.
		delete(h.clients, c)
		close(c.send)
	}
}

// serveWs upgrades the request and starts the pumps.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	userID := s.sessionUser(r)
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &wsClient{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}
	s.hub.register(client)

	go client.writePump()
	go client.readPump(s)
}

func (c *wsClient) readPump(s *Server) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleEvent(c, raw)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent processes one inbound frame from a connection.
func (s *Server) handleEvent(c *wsClient, raw []byte) {
	var ev struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return
	}

	switch ev.Event {
	case "join_channel":
		var data struct {
			ChannelID int `json:"channel_id"`
		}
		if json.Unmarshal(ev.Data, &data) != nil || data.ChannelID == 0 {
			s.pushError(c, "missing channel id")
			return
		}
		if !s.store.isMember(data.ChannelID, c.userID) {
			s.pushError(c, "not a channel member")
			return
		}
		c.room = data.ChannelID
		u := s.store.user(c.userID)
		s.hub.broadcastRoom(data.ChannelID, frame("system_notification", map[string]any{
			"type":       "system",
			"content":    u.Nickname + " joined the channel",
			"channel_id": data.ChannelID,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		}))

	case "send_message":
		var data struct {
			ChannelID int    `json:"channel_id"`
			Content   string `json:"content"`
		}
		if json.Unmarshal(ev.Data, &data) != nil || data.ChannelID == 0 || data.Content == "" {
			s.pushError(c, "missing channel id or content")
			return
		}
		if !s.store.isMember(data.ChannelID, c.userID) {
			s.pushError(c, "not a channel member")
			return
		}
		m := s.store.addMessage(data.ChannelID, c.userID, data.Content, "")
		s.hub.broadcastRoom(data.ChannelID, frame("new_message", s.messageJSON(m)))

	case "leave_channel":
		if c.room != 0 {
			u := s.store.user(c.userID)
			room := c.room
			c.room = 0
			s.hub.broadcastRoom(room, frame("system_notification", map[string]any{
				"type":       "system",
				"content":    u.Nickname + " left the channel",
				"channel_id": room,
				"created_at": time.Now().UTC().Format(time.RFC3339),
			}))
		}
	}
}

func (s *Server) pushError(c *wsClient, msg string) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.hub.clients[c] {
		s.hub.deliver(c, frame("error", map[string]any{"message": msg}))
	}
}
