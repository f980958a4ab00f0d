package tui

import (
	"github.com/andyrewlee/g3console/data"
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	text      = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#FAFAFA"}
	muted     = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	green     = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#73F59F"}
	yellow    = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F2D86B"}
	red       = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"}
	blue      = lipgloss.AdaptiveColor{Light: "#1F6FB2", Dark: "#6CB6FF"}
)

// Panel styles
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(subtle)

	panelStyle = borderStyle.
			Padding(0, 1)

	selectedPanelStyle = panelStyle.
				BorderForeground(highlight)

	statsPanelStyle = borderStyle.
			Padding(0, 2)

	headerBarStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1)

	bodyStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Text styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(blue).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(red)

	okStyle = lipgloss.NewStyle().
		Foreground(green)

	agentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(yellow)
)

// Help overlay text styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(text)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlight)
)

// statusColor returns the badge color for an instance status.
func statusColor(s data.Status) lipgloss.TerminalColor {
	switch s {
	case data.StatusRunning:
		return green
	case data.StatusIdle:
		return yellow
	case data.StatusFailed:
		return red
	case data.StatusCompleted:
		return blue
	}
	return muted
}

// statusBadge renders a status as a bracketed, colored label.
func statusBadge(s data.Status) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(statusColor(s)).
		Render("[" + string(s) + "]")
}
