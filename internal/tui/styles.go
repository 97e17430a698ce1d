package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105")).MarginBottom(1)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	inactiveTabStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("250")).Background(lipgloss.Color("238"))

	humanStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105"))
	aiStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
