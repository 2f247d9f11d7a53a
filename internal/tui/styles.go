package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("#FF6B35")
	secondary = lipgloss.Color("#1E88E5")
	success   = lipgloss.Color("#4CAF50")
	failure   = lipgloss.Color("#F44336")
	text      = lipgloss.Color("#E0E0E0")
	muted     = lipgloss.Color("#90A4AE")
	border    = lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#30363D"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Foreground(text).
			Padding(0, 1)

	rateStyle = lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1)

	activeRateStyle = lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(failure).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted)
)
