package realtime

import (
	"encoding/json"

	"go-chat-cli/internal/api"
)

// Event is the wire envelope for every frame on the push connection, both
// directions: {"event": <name>, "data": <payload>}.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EventNewMessage     = "new_message"
	EventNotification   = "system_notification"
	EventChannelCreated = "channel_created"
	EventError          = "error"
)

// Outbound event names.
const (
	EventJoinChannel  = "join_channel"
	EventLeaveChannel = "leave_channel"
	EventSendMessage  = "send_message"
)

// Notification is a system notice scoped to a channel room (member joined,
// member left).
type Notification struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	ChannelID int    `json:"channel_id"`
	CreatedAt string `json:"created_at"`
}

// channelCreatedData wraps the channel in the channel_created payload.
type channelCreatedData struct {
	Channel api.Channel `json:"channel"`
}

// errorData is the payload of an error event.
type errorData struct {
	Message string `json:"message"`
}

// joinPayload is sent with join_channel.
type joinPayload struct {
	ChannelID int `json:"channel_id"`
}

// sendPayload is sent with send_message.
type sendPayload struct {
	ChannelID int    `json:"channel_id"`
	Content   string `json:"content"`
}

func marshalEvent(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: name, Data: data})
}
