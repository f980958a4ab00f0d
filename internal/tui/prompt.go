package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// openPrompt shows the goto-path input in the footer.
func (m Model) openPrompt() (Model, tea.Cmd) {
	m.prompting = true
	m.prompt.SetValue("")
	return m, m.prompt.Focus()
}

func (m Model) closePrompt() Model {
	m.prompting = false
	m.prompt.Blur()
	m.prompt.SetValue("")
	return m
}

// updatePrompt routes keys to the goto input. Enter navigates, esc cancels.
func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.closePrompt(), nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		path := normalizePath(m.prompt.Value())
		m = m.closePrompt()
		if path == "" {
			return m, nil
		}
		return m.Navigate(path)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// normalizePath turns prompt input into a path. A bare id opens that instance.
func normalizePath(in string) string {
	in = strings.TrimSpace(in)
	switch {
	case in == "":
		return ""
	case strings.HasPrefix(in, "/"):
		return in
	case strings.HasPrefix(in, "instance/"):
		return "/" + in
	}
	return InstancePath(in)
}
