// Package realtime maintains the persistent push connection to the chat
// server. One connection per session; inbound events are dispatched to
// registered handlers in server-delivery order, outbound joins and sends
// are fire-and-forget.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"go-chat-cli/internal/api"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 64 << 10            // Maximum inbound frame size; image payloads travel over HTTP, not here.
)

// ErrClosed is reported on emits after the connection has gone away.
var ErrClosed = errors.New("push connection closed")

// Client is the push-connection endpoint. Register handlers before Dial;
// all handlers run on the single read goroutine, so delivery order is the
// server's send order and each event is seen at most once.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	onMessage        func(api.Message)
	onNotification   func(Notification)
	onChannelCreated func(api.Channel)
	onError          func(string)
	onDisconnect     func(error)

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient() *Client {
	return &Client{
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
}

// OnMessage registers the handler for inbound chat messages.
func (c *Client) OnMessage(h func(api.Message)) { c.onMessage = h }

// OnNotification registers the handler for system notifications.
func (c *Client) OnNotification(h func(Notification)) { c.onNotification = h }

// OnChannelCreated registers the handler for channel-creation broadcasts.
func (c *Client) OnChannelCreated(h func(api.Channel)) { c.onChannelCreated = h }

// OnError registers the handler for server-pushed error events.
func (c *Client) OnError(h func(string)) { c.onError = h }

// OnDisconnect registers the handler invoked once when the connection is
// lost, with the terminal read error. There is no automatic reconnect.
func (c *Client) OnDisconnect(h func(error)) { c.onDisconnect = h }

// Dial opens the push connection at <server>/ws, authenticated by the
// session cookie in jar, and starts the read and write pumps.
func (c *Client) Dial(ctx context.Context, serverURL string, jar http.CookieJar) error {
	wsURL, err := pushURL(serverURL)
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{Jar: jar, HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	c.conn = conn

	go c.writePump()
	go c.readPump()
	return nil
}

// pushURL rewrites the HTTP base URL into the ws endpoint.
func pushURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// JoinChannel asks the server to put this connection into the channel's
// event room. Fire-and-forget: no acknowledgment is expected.
func (c *Client) JoinChannel(channelID int) error {
	return c.emit(EventJoinChannel, joinPayload{ChannelID: channelID})
}

// LeaveChannel drops out of the current event room. The server announces
// the departure to the remaining members.
func (c *Client) LeaveChannel() error {
	return c.emit(EventLeaveChannel, struct{}{})
}

// SendMessage publishes a text message. The message is not echoed locally;
// it comes back through OnMessage once the server has persisted it.
func (c *Client) SendMessage(channelID int, content string) error {
	return c.emit(EventSendMessage, sendPayload{ChannelID: channelID, Content: content})
}

// Close tears the connection down. OnDisconnect still fires, with the read
// error caused by the close.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			deadline := time.Now().Add(writeWait)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = c.conn.Close()
		}
	})
}

func (c *Client) emit(name string, payload any) error {
	frame, err := marshalEvent(name, payload)
	if err != nil {
		return err
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// readPump pumps frames from the connection to the registered handlers.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("[realtime] read error")
			}
			if c.onDisconnect != nil {
				c.onDisconnect(err)
			}
			return
		}
		c.dispatch(frame)
	}
}

// writePump pumps outbound frames and keeps the connection alive with
// periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) dispatch(frame []byte) {
	var ev Event
	if err := json.Unmarshal(frame, &ev); err != nil {
		log.Debug().Err(err).Msg("[realtime] bad frame")
		return
	}

	switch ev.Event {
	case EventNewMessage:
		var msg api.Message
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			log.Debug().Err(err).Msg("[realtime] bad new_message payload")
			return
		}
		if c.onMessage != nil {
			c.onMessage(msg)
		}
	case EventNotification:
		var note Notification
		if err := json.Unmarshal(ev.Data, &note); err != nil {
			log.Debug().Err(err).Msg("[realtime] bad notification payload")
			return
		}
		if c.onNotification != nil {
			c.onNotification(note)
		}
	case EventChannelCreated:
		var data channelCreatedData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			log.Debug().Err(err).Msg("[realtime] bad channel_created payload")
			return
		}
		if c.onChannelCreated != nil {
			c.onChannelCreated(data.Channel)
		}
	case EventError:
		var data errorData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return
		}
		if c.onError != nil {
			c.onError(data.Message)
		}
	default:
		log.Debug().Str("event", ev.Event).Msg("[realtime] unknown event")
	}
}
