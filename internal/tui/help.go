package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders a help screen with all keybindings
type HelpOverlay struct {
	keyMap KeyMap
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(km KeyMap) *HelpOverlay {
	return &HelpOverlay{keyMap: km}
}

// Render generates the help overlay content
func (h *HelpOverlay) Render(width, height int) string {
	content := h.buildContent()

	boxWidth := 50
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	if boxWidth < 10 {
		boxWidth = 10
	}

	box := helpBoxStyle.
		Width(boxWidth).
		Render(content)

	return centerOverlay(box, width, height)
}

// buildContent creates the formatted help text
func (h *HelpOverlay) buildContent() string {
	var sb strings.Builder

	sb.WriteString(helpTitleStyle.Render("Keyboard Shortcuts"))
	sb.WriteString("\n\n")

	sb.WriteString(helpSectionStyle.Render("Instances"))
	sb.WriteString("\n")
	sb.WriteString(h.formatBinding(h.keyMap.Up))
	sb.WriteString(h.formatBinding(h.keyMap.Down))
	sb.WriteString(h.formatBinding(h.keyMap.Select))
	sb.WriteString(h.formatBinding(h.keyMap.Copy))
	sb.WriteString("\n")

	sb.WriteString(helpSectionStyle.Render("Navigation"))
	sb.WriteString("\n")
	sb.WriteString(h.formatBinding(h.keyMap.Back))
	sb.WriteString(h.formatBinding(h.keyMap.Forward))
	sb.WriteString(h.formatBinding(h.keyMap.Home))
	sb.WriteString(h.formatBinding(h.keyMap.Goto))
	sb.WriteString(h.formatBinding(h.keyMap.Reload))
	sb.WriteString("\n")

	sb.WriteString(helpSectionStyle.Render("General"))
	sb.WriteString("\n")
	sb.WriteString(h.formatBinding(h.keyMap.Help))
	sb.WriteString(h.formatBinding(h.keyMap.Quit))

	sb.WriteString("\n\n")
	sb.WriteString(helpFooterStyle.Render("Press ? or Esc to close"))

	return sb.String()
}

// formatBinding formats a single keybinding line
func (h *HelpOverlay) formatBinding(b key.Binding) string {
	help := b.Help()
	keyStr := helpKeyStyle.Render(padRight(help.Key, 12))
	descStr := helpDescStyle.Render(help.Desc)
	return keyStr + descStr + "\n"
}

// centerOverlay centers content within the given dimensions
func centerOverlay(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	contentWidth := maxLineWidth(lines)

	topPad := (height - len(lines)) / 2
	if topPad < 0 {
		topPad = 0
	}
	leftPad := (width - contentWidth) / 2
	if leftPad < 0 {
		leftPad = 0
	}

	var sb strings.Builder
	for i := 0; i < topPad; i++ {
		sb.WriteString("\n")
	}
	for _, line := range lines {
		sb.WriteString(strings.Repeat(" ", leftPad))
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// maxLineWidth returns the width of the longest line
func maxLineWidth(lines []string) int {
	max := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > max {
			max = w
		}
	}
	return max
}

// padRight pads a string to the specified width
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Help overlay styles (styles shared with styles.go are defined there)
var (
	helpBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(highlight).
			Padding(1, 2)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(muted)

	helpFooterStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)
)
