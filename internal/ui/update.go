package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"go-chat-cli/internal/api"
	"go-chat-cli/internal/state"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)

	case countdownTickMsg:
		if m.countdown.Tick() {
			return m, countdownTick()
		}
		return m, nil

	case sessionCheckedMsg:
		return m.handleSessionChecked(msg)
	case loginResultMsg:
		return m.handleLoginResult(msg)
	case registerResultMsg:
		return m.handleRegisterResult(msg)
	case codeSentMsg:
		return m.handleCodeSent(msg)
	case logoutDoneMsg:
		return m, tea.Quit
	case connectedMsg:
		return m.handleConnected(msg)

	case joinedChannelsMsg:
		return m.handleJoinedChannels(msg)
	case publicChannelsMsg:
		return m.handlePublicChannels(msg)
	case searchResultMsg:
		return m.handleSearchResult(msg)
	case channelCreatedMsg:
		return m.handleChannelCreated(msg)
	case joinResultMsg:
		return m.handleJoinResult(msg)
	case leaveResultMsg:
		return m.handleLeaveResult(msg)
	case historyMsg:
		return m.handleHistory(msg)
	case scrollbackMsg:
		return m.handleScrollback(msg)
	case imageSentMsg:
		return m.handleImageSent(msg)

	case profileLoadedMsg:
		return m.handleProfileLoaded(msg)
	case profileSavedMsg:
		return m.handleProfileSaved(msg)
	case avatarUploadedMsg:
		return m.handleAvatarUploaded(msg)

	case pushMessageMsg:
		return m.handlePushMessage(msg)
	case pushNotificationMsg:
		return m.handlePushNotification(msg)
	case pushChannelCreatedMsg:
		m.directory.ApplyChannelCreated(msg.channel)
		return m, m.waitForPush()
	case pushErrorMsg:
		m.errText = msg.message
		return m, m.waitForPush()
	case disconnectedMsg:
		m.connected = false
		m.status = "push connection lost"
		log.Debug().Err(msg.err).Msg("[ui] disconnected")
		return m, m.waitForPush()
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.messages.Width = max(msg.Width-channelPaneWidth-8, 20)
	m.messages.Height = max(msg.Height-7, 5)
	m.refreshMessages()
	return m, nil
}

// ---------------------------------------------
// HTTP results
// ---------------------------------------------

func (m Model) handleSessionChecked(msg sessionCheckedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil || msg.user == nil {
		// No live session; stay on the login form.
		return m, nil
	}
	m.session.Set(*msg.user)
	return m.enterChat()
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	if msg.user != nil {
		m.session.Set(*msg.user)
	}
	return m.enterChat()
}

// enterChat switches to the chat view and kicks off the initialization
// sequence: open the push connection, then fetch both channel lists.
func (m Model) enterChat() (tea.Model, tea.Cmd) {
	m.view = viewChat
	m.focus = paneChannels
	m.status = ""
	return m, tea.Batch(m.connect(), m.loadJoined(), m.loadPublic())
}

func (m Model) handleRegisterResult(msg registerResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	m.status = "account created, please log in"
	m.view = viewLogin
	m.setLoginFocus(0)
	return m, nil
}

func (m Model) handleCodeSent(msg codeSentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	m.status = "verification code sent"
	m.countdown.Start(state.DefaultCountdownSeconds)
	return m, countdownTick()
}

func (m Model) handleConnected(msg connectedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = genericFailure
		log.Debug().Err(msg.err).Msg("[ui] push dial")
		return m, nil
	}
	m.connected = true
	return m, nil
}

func (m Model) handleJoinedChannels(msg joinedChannelsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Debug().Err(msg.err).Msg("[ui] load joined")
		return m, nil
	}
	m.directory.RefreshJoined(msg.channels)
	m.clampSelection()
	return m, nil
}

func (m Model) handlePublicChannels(msg publicChannelsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Debug().Err(msg.err).Msg("[ui] load public")
		return m, nil
	}
	m.directory.RefreshPublic(msg.channels)
	m.clampSelection()
	return m, nil
}

func (m Model) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.directory.SetSearchResults(msg.channels)
	m.tab = tabPublic
	m.selected = 0
	return m, nil
}

func (m Model) handleChannelCreated(msg channelCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	m.status = "channel created"
	m.view = viewChat
	m.focus = paneChannels
	m.chName.SetValue("")
	m.chDesc.SetValue("")
	m.chPrivate = false
	// Reload both lists; the creator is auto-joined server-side.
	return m, tea.Batch(m.loadJoined(), m.loadPublic())
}

func (m Model) handleJoinResult(msg joinResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	ch := msg.channel
	ch.UserCount++
	m.directory.AddJoined(ch)
	m.directory.UpdateUserCount(ch.ID, ch.UserCount)
	// Header-only refresh when this is the active channel; the message
	// list is untouched.
	m.conversation.UpdateUserCount(ch.ID, ch.UserCount)

	// Now that membership exists, the selection can go live.
	if active := m.conversation.Channel(); active != nil && active.ID == ch.ID {
		epoch := m.conversation.Select(ch)
		m.epoch = epoch
		if err := m.rt.JoinChannel(ch.ID); err != nil {
			log.Debug().Err(err).Msg("[ui] join room")
		}
		return m, tea.Batch(m.loadScrollback(ch.ID, epoch), m.loadHistory(ch.ID, epoch))
	}
	return m, nil
}

func (m Model) handleLeaveResult(msg leaveResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	var newCount int
	if active := m.conversation.Channel(); active != nil && active.ID == msg.channelID {
		newCount = active.UserCount - 1
		m.conversation.Leave()
		if err := m.rt.LeaveChannel(); err != nil {
			log.Debug().Err(err).Msg("[ui] leave room")
		}
		m.refreshMessages()
		m.focus = paneChannels
	} else {
		for _, ch := range m.directory.Public() {
			if ch.ID == msg.channelID {
				newCount = ch.UserCount - 1
			}
		}
	}
	m.directory.RemoveJoined(msg.channelID)
	if newCount > 0 {
		m.directory.UpdateUserCount(msg.channelID, newCount)
	}
	m.clampSelection()
	return m, nil
}

func (m Model) handleHistory(msg historyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	if !m.conversation.ApplyHistory(msg.epoch, msg.messages) {
		// The active channel changed while the fetch was in flight.
		return m, nil
	}
	if ch := m.conversation.Channel(); ch != nil {
		if err := m.store.Replace(ch.ID, msg.messages); err != nil {
			log.Debug().Err(err).Msg("[ui] scrollback replace")
		}
	}
	m.refreshMessages()
	m.messages.GotoBottom()
	return m, nil
}

func (m Model) handleScrollback(msg scrollbackMsg) (tea.Model, tea.Cmd) {
	// Cached scrollback only fills the gap before the server history
	// lands; never overwrite an already-populated list.
	if len(msg.messages) == 0 || len(m.conversation.Messages()) > 0 {
		return m, nil
	}
	if m.conversation.ApplyHistory(msg.epoch, msg.messages) {
		m.refreshMessages()
		m.messages.GotoBottom()
	}
	return m, nil
}

func (m Model) handleImageSent(msg imageSentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	// The rendered message arrives through the push feed, same as text.
	m.status = "image sent"
	return m, nil
}

func (m Model) handleProfileLoaded(msg profileLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	if msg.user != nil {
		m.profNick.SetValue(msg.user.Nickname)
		m.profAvatar.SetValue(msg.user.Avatar)
		m.profBio.SetValue(msg.user.Bio)
	}
	m.view = viewProfile
	m.setProfileFocus(0)
	return m, nil
}

func (m Model) handleProfileSaved(msg profileSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	m.status = "profile updated"
	if msg.user != nil {
		m.session.Set(*msg.user)
	}
	m.view = viewChat
	m.focus = paneChannels
	return m, nil
}

func (m Model) handleAvatarUploaded(msg avatarUploadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errText = userMessage(msg.err)
		return m, nil
	}
	m.errText = ""
	// The returned reference becomes the form value; the view renders it
	// as the live preview.
	m.profAvatar.SetValue(msg.ref)
	m.status = "avatar uploaded"
	return m, nil
}

// ---------------------------------------------
// Push events
// ---------------------------------------------

func (m Model) handlePushMessage(msg pushMessageMsg) (tea.Model, tea.Cmd) {
	if m.conversation.Append(msg.message) {
		if ch := m.conversation.Channel(); ch != nil {
			if err := m.store.Append(ch.ID, msg.message); err != nil {
				log.Debug().Err(err).Msg("[ui] scrollback append")
			}
		}
		m.refreshMessages()
		m.messages.GotoBottom()
	}
	return m, m.waitForPush()
}

func (m Model) handlePushNotification(msg pushNotificationMsg) (tea.Model, tea.Cmd) {
	// System notices render inline but are ephemeral: not cached.
	note := api.Message{
		Type:      "system",
		Content:   msg.note.Content,
		ChannelID: msg.note.ChannelID,
		CreatedAt: msg.note.CreatedAt,
	}
	if m.conversation.Append(note) {
		m.refreshMessages()
		m.messages.GotoBottom()
	}
	return m, m.waitForPush()
}

// ---------------------------------------------
// Key handling
// ---------------------------------------------

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.view {
	case viewLogin:
		return m.handleLoginKey(msg)
	case viewRegister:
		return m.handleRegisterKey(msg)
	case viewChat:
		return m.handleChatKey(msg)
	case viewNewChannel:
		return m.handleNewChannelKey(msg)
	case viewProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.setLoginFocus((m.loginIdx + 1) % 2)
		return m, nil
	case "shift+tab", "up":
		m.setLoginFocus((m.loginIdx + 1) % 2)
		return m, nil
	case "ctrl+r":
		m.remember = !m.remember
		return m, nil
	case "ctrl+n":
		m.view = viewRegister
		m.errText = ""
		m.setRegisterFocus(0)
		return m, nil
	case "enter":
		username := strings.TrimSpace(m.loginUser.Value())
		password := m.loginPass.Value()
		if username == "" || password == "" {
			m.errText = "username and password are required"
			return m, nil
		}
		m.errText = ""
		return m, m.doLogin(username, password, m.remember)
	}
	return m.updateFocusedInput(msg)
}

func (m Model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewLogin
		m.errText = ""
		m.setLoginFocus(0)
		return m, nil
	case "tab", "down":
		m.setRegisterFocus((m.regIdx + 1) % 5)
		return m, nil
	case "shift+tab", "up":
		m.setRegisterFocus((m.regIdx + 4) % 5)
		return m, nil
	case "ctrl+s":
		if m.countdown.Active() {
			return m, nil
		}
		email := strings.TrimSpace(m.regEmail.Value())
		if email == "" {
			m.errText = "email must not be empty"
			return m, nil
		}
		if !strings.Contains(email, "@") {
			m.errText = "invalid email address"
			return m, nil
		}
		m.errText = ""
		return m, m.doSendCode(email)
	case "enter":
		username := strings.TrimSpace(m.regUser.Value())
		email := strings.TrimSpace(m.regEmail.Value())
		code := strings.TrimSpace(m.regCode.Value())
		password := m.regPass.Value()
		if username == "" || email == "" || code == "" || password == "" {
			m.errText = "all fields are required"
			return m, nil
		}
		if password != m.regConfirm.Value() {
			m.errText = "passwords do not match"
			return m, nil
		}
		m.errText = ""
		return m, m.doRegister(username, email, code, password)
	}
	return m.updateFocusedInput(msg)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case paneInput:
		return m.handleInputKey(msg)
	case paneSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleChannelPaneKey(msg)
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = paneChannels
		m.input.Blur()
		return m, nil
	case "enter":
		return m.sendCurrentInput()
	}
	return m.updateFocusedInput(msg)
}

// sendCurrentInput dispatches the composed message. Text goes over the
// push connection and is not locally appended; it renders when the echo
// arrives. Images upload over HTTP and likewise wait for the echo.
func (m Model) sendCurrentInput() (tea.Model, tea.Cmd) {
	ch := m.conversation.Channel()
	if ch == nil {
		return m, nil
	}
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	// Input clears immediately in both paths.
	m.input.SetValue("")

	if path, caption, ok := parseImageCommand(content); ok {
		return m, m.doSendImage(ch.ID, path, caption)
	}
	if err := m.rt.SendMessage(ch.ID, content); err != nil {
		m.errText = genericFailure
		log.Debug().Err(err).Msg("[ui] send message")
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.directory.ClearSearch()
		m.focus = paneChannels
		return m, nil
	case "enter":
		keyword := strings.TrimSpace(m.search.Value())
		m.search.Blur()
		m.focus = paneChannels
		if keyword == "" {
			// Empty keyword restores the full public list.
			m.directory.ClearSearch()
			return m, m.loadPublic()
		}
		return m, m.doSearch(keyword)
	}
	return m.updateFocusedInput(msg)
}

func (m Model) handleChannelPaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.selected--
		m.clampSelection()
		return m, nil
	case "down", "j":
		m.selected++
		m.clampSelection()
		return m, nil
	case "tab":
		if m.tab == tabJoined {
			m.tab = tabPublic
		} else {
			m.tab = tabJoined
		}
		m.selected = 0
		return m, nil
	case "/":
		m.focus = paneSearch
		return m, m.search.Focus()
	case "i":
		if m.conversation.Active() {
			m.focus = paneInput
			return m, m.input.Focus()
		}
		return m, nil
	case "n":
		m.view = viewNewChannel
		m.setNewChannelFocus(0)
		return m, nil
	case "p":
		return m, m.loadProfile()
	case "J":
		return m.joinSelected()
	case "L":
		return m.leaveActive()
	case "ctrl+q":
		return m, m.doLogout()
	case "enter":
		return m.selectChannel()
	}
	// Scroll the message viewport from the channel pane.
	var cmd tea.Cmd
	m.messages, cmd = m.messages.Update(msg)
	return m, cmd
}

// selectChannel runs the Idle -> Active transition for the channel under
// the cursor: mark selection, (re)fetch history, join the push room,
// enable input. Non-members get the header only until they join.
func (m Model) selectChannel() (tea.Model, tea.Cmd) {
	channels := m.visibleChannels()
	if m.selected >= len(channels) {
		return m, nil
	}
	ch := channels[m.selected]
	epoch := m.conversation.Select(ch)
	m.epoch = epoch
	m.refreshMessages()

	if !m.directory.IsJoined(ch.ID) {
		m.status = "not a member; press J to join"
		return m, nil
	}
	if err := m.rt.JoinChannel(ch.ID); err != nil {
		log.Debug().Err(err).Msg("[ui] join room")
	}
	m.focus = paneInput
	m.status = ""
	return m, tea.Batch(m.loadScrollback(ch.ID, epoch), m.loadHistory(ch.ID, epoch), m.input.Focus())
}

func (m Model) joinSelected() (tea.Model, tea.Cmd) {
	channels := m.visibleChannels()
	if m.selected >= len(channels) {
		return m, nil
	}
	ch := channels[m.selected]
	if m.directory.IsJoined(ch.ID) {
		m.status = "already a member"
		return m, nil
	}
	return m, m.doJoin(ch)
}

// leaveActive leaves the active channel; membership is confirmed first so
// a stray keypress on a non-joined channel is a no-op.
func (m Model) leaveActive() (tea.Model, tea.Cmd) {
	ch := m.conversation.Channel()
	if ch == nil || !m.directory.IsJoined(ch.ID) {
		return m, nil
	}
	return m, m.doLeave(ch.ID)
}

func (m Model) handleNewChannelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewChat
		m.focus = paneChannels
		return m, nil
	case "tab", "down":
		m.setNewChannelFocus((m.chIdx + 1) % 2)
		return m, nil
	case "shift+tab", "up":
		m.setNewChannelFocus((m.chIdx + 1) % 2)
		return m, nil
	case "ctrl+p":
		m.chPrivate = !m.chPrivate
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.chName.Value())
		if name == "" {
			m.errText = "channel name must not be empty"
			return m, nil
		}
		m.errText = ""
		return m, m.doCreateChannel(name, strings.TrimSpace(m.chDesc.Value()), m.chPrivate)
	}
	return m.updateFocusedInput(msg)
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewChat
		m.focus = paneChannels
		return m, nil
	case "tab", "down":
		m.setProfileFocus((m.profIdx + 1) % 3)
		return m, nil
	case "shift+tab", "up":
		m.setProfileFocus((m.profIdx + 2) % 3)
		return m, nil
	case "ctrl+u":
		path := strings.TrimSpace(m.profAvatar.Value())
		if path == "" {
			m.errText = "enter an image path to upload"
			return m, nil
		}
		m.errText = ""
		return m, m.doUploadAvatar(path)
	case "enter":
		nickname := strings.TrimSpace(m.profNick.Value())
		if nickname == "" {
			// Rejected client-side; no request goes out.
			m.errText = "nickname must not be empty"
			return m, nil
		}
		m.errText = ""
		return m, m.doSaveProfile(nickname, strings.TrimSpace(m.profAvatar.Value()), m.profBio.Value())
	}
	return m.updateFocusedInput(msg)
}

// ---------------------------------------------
// Focus plumbing
// ---------------------------------------------

func (m *Model) setLoginFocus(i int) {
	m.loginIdx = i
	focusOnly(i, &m.loginUser, &m.loginPass)
}

func (m *Model) setRegisterFocus(i int) {
	m.regIdx = i
	focusOnly(i, &m.regUser, &m.regEmail, &m.regCode, &m.regPass, &m.regConfirm)
}

func (m *Model) setNewChannelFocus(i int) {
	m.chIdx = i
	focusOnly(i, &m.chName, &m.chDesc)
}

func (m *Model) setProfileFocus(i int) {
	m.profIdx = i
	focusOnly(i, &m.profNick, &m.profAvatar, &m.profBio)
}

func focusOnly(i int, inputs ...*textinput.Model) {
	for n, in := range inputs {
		if n == i {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// updateFocusedInput forwards a message to whichever text input currently
// has focus.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewLogin:
		if m.loginIdx == 0 {
			m.loginUser, cmd = m.loginUser.Update(msg)
		} else {
			m.loginPass, cmd = m.loginPass.Update(msg)
		}
	case viewRegister:
		inputs := []*textinput.Model{&m.regUser, &m.regEmail, &m.regCode, &m.regPass, &m.regConfirm}
		*inputs[m.regIdx], cmd = inputs[m.regIdx].Update(msg)
	case viewChat:
		switch m.focus {
		case paneInput:
			m.input, cmd = m.input.Update(msg)
		case paneSearch:
			m.search, cmd = m.search.Update(msg)
		}
	case viewNewChannel:
		if m.chIdx == 0 {
			m.chName, cmd = m.chName.Update(msg)
		} else {
			m.chDesc, cmd = m.chDesc.Update(msg)
		}
	case viewProfile:
		inputs := []*textinput.Model{&m.profNick, &m.profAvatar, &m.profBio}
		*inputs[m.profIdx], cmd = inputs[m.profIdx].Update(msg)
	}
	return m, cmd
}

// formatTimestamp shortens an RFC 3339 stamp for display.
func formatTimestamp(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("15:04")
}
