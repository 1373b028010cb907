package api

// ---------------------------------------------
// Wire Models (mirroring the server's JSON)
// ---------------------------------------------

// Envelope is the uniform wrapper every endpoint returns.
// Status is the only branch condition; HTTP status codes are not inspected.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Success reports whether the server accepted the request.
func (e Envelope) Success() bool { return e.Status == "success" }

// User is the authenticated identity as the server reports it.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
	CreatedAt string `json:"created_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
}

// DisplayName prefers the nickname, falling back to the username.
func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// Channel is a chat room. UserCount is denormalized by the server so the
// directory can render roster sizes without extra round-trips.
type Channel struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	CreatedBy   int    `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UserCount   int    `json:"user_count"`
	IsJoined    bool   `json:"is_joined,omitempty"`
}

// Message is one chat entry. Content and Image are both optional but a
// well-formed message carries at least one of them.
type Message struct {
	ID             int    `json:"id"`
	Type           string `json:"type,omitempty"` // "message" or "system"
	Content        string `json:"content"`
	Image          string `json:"image,omitempty"`
	SenderID       int    `json:"sender_id"`
	SenderNickname string `json:"sender_nickname"`
	SenderAvatar   string `json:"sender_avatar,omitempty"`
	ChannelID      int    `json:"channel_id"`
	CreatedAt      string `json:"created_at"`
}

// ---------------------------------------------
// Response payloads
// ---------------------------------------------

type loginResponse struct {
	Envelope
	User *User `json:"user"`
}

type checkLoginResponse struct {
	Envelope
	IsLoggedIn bool  `json:"is_logged_in"`
	User       *User `json:"user"`
}

type userResponse struct {
	Envelope
	User *User `json:"user"`
}

type channelsResponse struct {
	Envelope
	Channels []Channel `json:"channels"`
}

type channelResponse struct {
	Envelope
	Channel *Channel `json:"channel"`
}

type messagesResponse struct {
	Envelope
	Messages []Message `json:"messages"`
}

type sendImageResponse struct {
	Envelope
	MessageData *Message `json:"message_data"`
}

type avatarResponse struct {
	Envelope
	Avatar string `json:"avatar"`
}

type registerResponse struct {
	Envelope
	UserID int `json:"user_id"`
}
