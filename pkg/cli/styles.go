package cli

import "github.com/charmbracelet/lipgloss"

var (
	// SectionStyle renders the "<title> from <source>" help headers
	SectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// ErrorStyle renders error output of failed commands
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// CmdStyle renders command names in help listings
	CmdStyle = lipgloss.NewStyle().Bold(true)
)
