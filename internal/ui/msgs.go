package ui

import (
	"go-chat-cli/internal/api"
	"go-chat-cli/internal/realtime"
)

// ---------------------------------------------
// Bubble Tea messages: HTTP results
// ---------------------------------------------

type sessionCheckedMsg struct {
	user *api.User // nil when no live session
	err  error
}

type loginResultMsg struct {
	user *api.User
	err  error
}

type registerResultMsg struct{ err error }

type codeSentMsg struct{ err error }

type logoutDoneMsg struct{}

type connectedMsg struct{ err error }

type joinedChannelsMsg struct {
	channels []api.Channel
	err      error
}

type publicChannelsMsg struct {
	channels []api.Channel
	err      error
}

type searchResultMsg struct {
	channels []api.Channel
	err      error
}

type channelCreatedMsg struct {
	channel *api.Channel
	err     error
}

type joinResultMsg struct {
	channel api.Channel
	err     error
}

type leaveResultMsg struct {
	channelID int
	err       error
}

// historyMsg carries the epoch the fetch was issued under so stale
// responses can be discarded.
type historyMsg struct {
	epoch    uint64
	messages []api.Message
	err      error
}

type scrollbackMsg struct {
	epoch    uint64
	messages []api.Message
}

type imageSentMsg struct{ err error }

type profileLoadedMsg struct {
	user *api.User
	err  error
}

type profileSavedMsg struct {
	user *api.User
	err  error
}

type avatarUploadedMsg struct {
	ref string
	err error
}

// ---------------------------------------------
// Push events, forwarded off the realtime dispatch goroutine
// ---------------------------------------------

type pushMessageMsg struct{ message api.Message }

type pushNotificationMsg struct{ note realtime.Notification }

type pushChannelCreatedMsg struct{ channel api.Channel }

type pushErrorMsg struct{ message string }

type disconnectedMsg struct{ err error }

// countdownTickMsg drives the verification-code resend countdown.
type countdownTickMsg struct{}
