package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"go-chat-cli/internal/api"
)

const channelPaneWidth = 28

func (m Model) View() string {
	var body string
	switch m.view {
	case viewLogin:
		body = m.viewLoginForm()
	case viewRegister:
		body = m.viewRegisterForm()
	case viewChat:
		body = m.viewChatScreen()
	case viewNewChannel:
		body = m.viewNewChannelForm()
	case viewProfile:
		body = m.viewProfileForm()
	}
	return body + "\n" + m.viewFooter()
}

// ---------------------------------------------
// Forms
// ---------------------------------------------

func (m Model) viewLoginForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("sign in") + "\n\n")
	b.WriteString(formRow("username", m.loginUser, m.loginIdx == 0))
	b.WriteString(formRow("password", m.loginPass, m.loginIdx == 1))
	check := "[ ]"
	if m.remember {
		check = "[x]"
	}
	b.WriteString("  " + labelStyle.Render("remember me ") + check + "\n\n")
	b.WriteString(helpStyle.Render("enter sign in · ctrl+r remember · ctrl+n register · ctrl+c quit"))
	return b.String()
}

func (m Model) viewRegisterForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("create account") + "\n\n")
	b.WriteString(formRow("username", m.regUser, m.regIdx == 0))
	b.WriteString(formRow("email", m.regEmail, m.regIdx == 1))
	b.WriteString(formRow("code", m.regCode, m.regIdx == 2))
	b.WriteString(formRow("password", m.regPass, m.regIdx == 3))
	b.WriteString(formRow("confirm", m.regConfirm, m.regIdx == 4))
	b.WriteString("\n")
	if m.countdown.Active() {
		b.WriteString("  " + labelStyle.Render(m.countdown.Label()) + "\n")
	} else {
		b.WriteString("  " + helpStyle.Render("ctrl+s send verification code") + "\n")
	}
	b.WriteString(helpStyle.Render("enter submit · esc back to sign in"))
	return b.String()
}

func (m Model) viewNewChannelForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("new channel") + "\n\n")
	b.WriteString(formRow("name", m.chName, m.chIdx == 0))
	b.WriteString(formRow("description", m.chDesc, m.chIdx == 1))
	visibility := "public"
	if m.chPrivate {
		visibility = "private"
	}
	b.WriteString("  " + labelStyle.Render("visibility ") + visibility + "\n\n")
	b.WriteString(helpStyle.Render("enter create · ctrl+p toggle visibility · esc cancel"))
	return b.String()
}

func (m Model) viewProfileForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("profile") + "\n\n")
	b.WriteString(formRow("nickname", m.profNick, m.profIdx == 0))
	b.WriteString(formRow("avatar", m.profAvatar, m.profIdx == 1))
	b.WriteString(formRow("bio", m.profBio, m.profIdx == 2))
	if ref := strings.TrimSpace(m.profAvatar.Value()); ref != "" {
		b.WriteString("\n  " + labelStyle.Render("preview ") + avatarGlyphFrom(ref, m.profNick.Value()) + " " + ref + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter save · ctrl+u upload avatar · esc back"))
	return b.String()
}

func formRow(label string, in textinput.Model, focused bool) string {
	style := labelStyle
	if focused {
		style = activeStyle
	}
	return fmt.Sprintf("  %s %s\n", style.Render(fmt.Sprintf("%-10s", label)), in.View())
}

// ---------------------------------------------
// Chat screen
// ---------------------------------------------

func (m Model) viewChatScreen() string {
	left := paneBorder.Width(channelPaneWidth).Render(m.viewChannelPane())
	right := paneBorder.Render(m.viewConversationPane())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) viewChannelPane() string {
	var b strings.Builder
	joinedTab, publicTab := "joined", "public"
	if m.tab == tabJoined {
		joinedTab = activeStyle.Render(joinedTab)
		publicTab = labelStyle.Render(publicTab)
	} else {
		joinedTab = labelStyle.Render(joinedTab)
		publicTab = activeStyle.Render(publicTab)
	}
	b.WriteString(joinedTab + " | " + publicTab + "\n\n")

	channels := m.visibleChannels()
	if len(channels) == 0 {
		b.WriteString(labelStyle.Render("no channels") + "\n")
	}
	active := m.conversation.Channel()
	for i, ch := range channels {
		line := fmt.Sprintf("%s (%d)", SanitizeText(ch.Name), ch.UserCount)
		if ch.IsPrivate {
			line = "🔒 " + line
		}
		if active != nil && active.ID == ch.ID {
			line = "* " + line
		}
		if i == m.selected && m.focus == paneChannels {
			b.WriteString(channelSelectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(channelStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + labelStyle.Render("search ") + m.search.View())
	return b.String()
}

func (m Model) viewConversationPane() string {
	var b strings.Builder
	b.WriteString(m.viewChannelHeader() + "\n")
	b.WriteString(m.messages.View() + "\n")
	b.WriteString(m.viewComposer())
	return b.String()
}

func (m Model) viewChannelHeader() string {
	ch := m.conversation.Channel()
	if ch == nil {
		return labelStyle.Render("select a channel to start chatting")
	}
	header := titleStyle.Render(SanitizeText(ch.Name)) +
		labelStyle.Render(fmt.Sprintf("  %d members", ch.UserCount))
	if desc := strings.TrimSpace(ch.Description); desc != "" {
		header += "  " + labelStyle.Render(sanitizeLine(desc))
	}
	if !m.connected {
		header += "  " + errorStyle.Render("offline")
	}
	return header
}

func (m Model) viewComposer() string {
	if !m.conversation.Active() || !m.directory.IsJoined(channelIDOf(m.conversation.Channel())) {
		return helpStyle.Render("J join · L leave · n new channel · p profile · / search · ctrl+q sign out")
	}
	return m.input.View()
}

func channelIDOf(ch *api.Channel) int {
	if ch == nil {
		return 0
	}
	return ch.ID
}

// refreshMessages rebuilds the viewport content from the conversation
// snapshot. Called after every mutation of the message list.
func (m *Model) refreshMessages() {
	msgs := m.conversation.Messages()
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, m.renderMessage(msg))
	}
	m.messages.SetContent(strings.Join(lines, "\n"))
}

// renderMessage formats one entry. All user-controlled text passes through
// SanitizeText so pasted control sequences never reach the terminal.
func (m Model) renderMessage(msg api.Message) string {
	if msg.Type == "system" {
		return systemStyle.Render("· " + sanitizeLine(msg.Content))
	}

	style := otherMessageStyle
	if m.session.IsOwn(msg.SenderID) {
		style = ownMessageStyle
	}
	name := sanitizeLine(msg.SenderNickname)
	if name == "" {
		name = "unknown"
	}
	glyph := avatarGlyphFrom(msg.SenderAvatar, name)

	var b strings.Builder
	b.WriteString(glyph + " " + style.Render(name))
	b.WriteString(" " + timeStyle.Render(formatTimestamp(msg.CreatedAt)))
	b.WriteString("\n  ")
	if content := SanitizeText(msg.Content); content != "" {
		b.WriteString(content)
	}
	if msg.Image != "" {
		if msg.Content != "" {
			b.WriteString("\n  ")
		}
		b.WriteString(labelStyle.Render("[image] " + sanitizeLine(msg.Image)))
	}
	return b.String()
}

// avatarGlyphFrom picks the avatar stand-in: a fixed marker when an avatar
// reference exists, otherwise the first rune of the display name.
func avatarGlyphFrom(avatar, name string) string {
	if avatar != "" {
		return "◉"
	}
	for _, r := range name {
		return string(r)
	}
	return "?"
}

func (m Model) viewFooter() string {
	if m.errText != "" {
		return errorStyle.Render(sanitizeLine(m.errText))
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	if m.view == viewChat {
		return helpStyle.Render("enter open · tab lists · i compose · esc channel list · ctrl+c quit")
	}
	return ""
}
