// Package ui renders the chat client as a Bubble Tea program. State lives
// in internal/state and is mutated only by Update; View is a pure function
// over the current snapshot.
package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"go-chat-cli/internal/api"
	"go-chat-cli/internal/history"
	"go-chat-cli/internal/realtime"
	"go-chat-cli/internal/state"
)

type view int

const (
	viewLogin view = iota
	viewRegister
	viewChat
	viewNewChannel
	viewProfile
)

// pane is the focus target inside the chat view.
type pane int

const (
	paneChannels pane = iota
	paneInput
	paneSearch
)

// channelTab selects which directory list the channel pane shows.
type channelTab int

const (
	tabJoined channelTab = iota
	tabPublic
)

type Model struct {
	client *api.Client
	rt     *realtime.Client
	store  *history.Store // nil when scrollback cache is disabled

	session      *state.Session
	directory    *state.Directory
	conversation *state.Conversation
	countdown    *state.Countdown

	// events carries push callbacks onto the program goroutine.
	events chan tea.Msg

	view      view
	focus     pane
	tab       channelTab
	selected  int // cursor inside the visible channel list
	epoch     uint64
	connected bool

	width  int
	height int

	// status and errText share the footer line; errText wins.
	status  string
	errText string

	// login form
	loginUser textinput.Model
	loginPass textinput.Model
	remember  bool
	loginIdx  int

	// register form
	regUser    textinput.Model
	regEmail   textinput.Model
	regCode    textinput.Model
	regPass    textinput.Model
	regConfirm textinput.Model
	regIdx     int

	// chat view
	messages viewport.Model
	input    textinput.Model
	search   textinput.Model

	// new-channel form
	chName    textinput.Model
	chDesc    textinput.Model
	chPrivate bool
	chIdx     int

	// profile form
	profNick   textinput.Model
	profAvatar textinput.Model
	profBio    textinput.Model
	profIdx    int
}

func NewModel(client *api.Client, rt *realtime.Client, store *history.Store) Model {
	m := Model{
		client:       client,
		rt:           rt,
		store:        store,
		session:      state.NewSession(),
		directory:    state.NewDirectory(),
		conversation: state.NewConversation(),
		countdown:    state.NewCountdown("send code"),
		events:       make(chan tea.Msg, 64),
		view:         viewLogin,
	}

	m.loginUser = newInput("username")
	m.loginPass = newInput("password")
	m.loginPass.EchoMode = textinput.EchoPassword
	m.loginUser.Focus()

	m.regUser = newInput("username")
	m.regEmail = newInput("email")
	m.regCode = newInput("verification code")
	m.regPass = newInput("password")
	m.regPass.EchoMode = textinput.EchoPassword
	m.regConfirm = newInput("confirm password")
	m.regConfirm.EchoMode = textinput.EchoPassword

	m.input = newInput("message (or /image <path> [caption])")
	m.search = newInput("search public channels")

	m.chName = newInput("channel name")
	m.chDesc = newInput("description")

	m.profNick = newInput("nickname")
	m.profAvatar = newInput("avatar image path")
	m.profBio = newInput("bio")

	m.messages = viewport.New(0, 0)
	m.wirePush()
	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	return ti
}

// wirePush registers the realtime handlers. They run on the realtime read
// goroutine and only forward into the events channel; all state mutation
// happens in Update.
func (m *Model) wirePush() {
	m.rt.OnMessage(func(msg api.Message) {
		m.events <- pushMessageMsg{message: msg}
	})
	m.rt.OnNotification(func(note realtime.Notification) {
		m.events <- pushNotificationMsg{note: note}
	})
	m.rt.OnChannelCreated(func(ch api.Channel) {
		m.events <- pushChannelCreatedMsg{channel: ch}
	})
	m.rt.OnError(func(msg string) {
		m.events <- pushErrorMsg{message: msg}
	})
	m.rt.OnDisconnect(func(err error) {
		m.events <- disconnectedMsg{err: err}
	})
}

// waitForPush hands the next queued push event to the program. Re-issued
// after every delivery so the pump never stalls.
func (m Model) waitForPush() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkSession(), m.waitForPush(), textinput.Blink)
}

// visibleChannels returns what the channel pane currently lists.
func (m Model) visibleChannels() []api.Channel {
	if m.tab == tabJoined {
		return m.directory.Joined()
	}
	return m.directory.RenderedPublic()
}

func (m *Model) clampSelection() {
	n := len(m.visibleChannels())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}
