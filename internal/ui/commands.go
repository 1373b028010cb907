package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"go-chat-cli/internal/api"
)

// genericFailure replaces transport errors in the footer; the cause is
// already in the log. Server envelope messages pass through verbatim.
const genericFailure = "request failed, please try again"

func userMessage(err error) string {
	var srvErr *api.ErrServer
	if errors.As(err, &srvErr) {
		return srvErr.Message
	}
	if errors.Is(err, api.ErrTransport) {
		return genericFailure
	}
	return err.Error()
}

func (m Model) checkSession() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		user, err := m.client.CheckLogin(ctx)
		return sessionCheckedMsg{user: user, err: err}
	}
}

func (m Model) doLogin(username, password string, remember bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		user, err := m.client.Login(ctx, username, password, remember)
		return loginResultMsg{user: user, err: err}
	}
}

func (m Model) doRegister(username, email, code, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_, err := m.client.Register(ctx, username, email, code, password)
		return registerResultMsg{err: err}
	}
}

func (m Model) doSendCode(email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return codeSentMsg{err: m.client.SendVerificationCode(ctx, email)}
	}
}

func (m Model) doLogout() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.client.Logout(ctx); err != nil {
			log.Debug().Err(err).Msg("[ui] logout")
		}
		return logoutDoneMsg{}
	}
}

// connect opens the push connection once a session exists.
func (m Model) connect() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := m.rt.Dial(ctx, m.client.BaseURL(), m.client.HTTPClient().Jar)
		return connectedMsg{err: err}
	}
}

func (m Model) loadJoined() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		chans, err := m.client.JoinedChannels(ctx)
		return joinedChannelsMsg{channels: chans, err: err}
	}
}

func (m Model) loadPublic() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		chans, err := m.client.PublicChannels(ctx)
		return publicChannelsMsg{channels: chans, err: err}
	}
}

func (m Model) doSearch(keyword string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		chans, err := m.client.SearchChannels(ctx, keyword)
		return searchResultMsg{channels: chans, err: err}
	}
}

func (m Model) doCreateChannel(name, description string, isPrivate bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		ch, err := m.client.CreateChannel(ctx, name, description, isPrivate)
		return channelCreatedMsg{channel: ch, err: err}
	}
}

func (m Model) doJoin(ch api.Channel) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return joinResultMsg{channel: ch, err: m.client.JoinChannel(ctx, ch.ID)}
	}
}

func (m Model) doLeave(channelID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return leaveResultMsg{channelID: channelID, err: m.client.LeaveChannel(ctx, channelID)}
	}
}

// loadHistory fetches the channel history under the given epoch. The
// response carries the epoch back so a fetch that raced a channel switch
// is discarded instead of rendered.
func (m Model) loadHistory(channelID int, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		msgs, err := m.client.ChannelMessages(ctx, channelID)
		return historyMsg{epoch: epoch, messages: msgs, err: err}
	}
}

// loadScrollback shows locally cached messages while the fetch is in
// flight. Nil store yields an empty result.
func (m Model) loadScrollback(channelID int, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		msgs, err := m.store.Recent(channelID, 100)
		if err != nil {
			log.Debug().Err(err).Msg("[ui] scrollback load")
			return scrollbackMsg{epoch: epoch}
		}
		return scrollbackMsg{epoch: epoch, messages: msgs}
	}
}

func (m Model) doSendImage(channelID int, path, caption string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return imageSentMsg{err: m.client.SendImageMessage(ctx, channelID, path, caption)}
	}
}

func (m Model) loadProfile() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		user, err := m.client.CurrentUser(ctx)
		return profileLoadedMsg{user: user, err: err}
	}
}

func (m Model) doSaveProfile(nickname, avatar, bio string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		user, err := m.client.UpdateProfile(ctx, nickname, avatar, bio)
		return profileSavedMsg{user: user, err: err}
	}
}

func (m Model) doUploadAvatar(path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		ref, err := m.client.UploadAvatar(ctx, path)
		return avatarUploadedMsg{ref: ref, err: err}
	}
}

func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}

// parseImageCommand splits "/image <path> [caption]". Returns ok=false for
// plain text messages.
func parseImageCommand(input string) (path, caption string, ok bool) {
	const prefix = "/image "
	if !strings.HasPrefix(input, prefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(input, prefix))
	if rest == "" {
		return "", "", false
	}
	if i := strings.IndexByte(rest, ' '); i > 0 {
		return rest[:i], strings.TrimSpace(rest[i+1:]), true
	}
	return rest, "", true
}
