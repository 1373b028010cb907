package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	channelStyle         = lipgloss.NewStyle().PaddingLeft(1)
	channelSelectedStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("205")).Bold(true)

	ownMessageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	otherMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	systemStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	timeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))

	paneBorder = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
