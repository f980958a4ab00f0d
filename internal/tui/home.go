package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andyrewlee/g3console/data"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// homeLoadedMsg carries the result of one home fetch.
type homeLoadedMsg struct {
	epoch     uint64
	seq       uint64
	instances []data.Instance
	err       error
}

// renderHome starts a home render cycle. An invocation made while another
// home fetch is outstanding is dropped.
func (m Model) renderHome() (Model, tea.Cmd) {
	if m.homeInFlight != 0 {
		m.log.Debug("home render already in progress, dropping refresh", "seq", m.homeInFlight)
		return m, nil
	}
	m.seq++
	m.homeInFlight = m.seq
	m.showLoading()
	return m, tea.Batch(m.fetchHome(m.epoch, m.seq), m.spinner.Tick)
}

func (m Model) fetchHome(epoch, seq uint64) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		instances, err := api.ListInstances(context.Background())
		return homeLoadedMsg{epoch: epoch, seq: seq, instances: instances, err: err}
	}
}

func (m Model) handleHomeLoaded(msg homeLoadedMsg) (Model, tea.Cmd) {
	if m.homeInFlight == msg.seq {
		m.homeInFlight = 0
	}
	if !m.owns(msg.epoch, Route{Kind: RouteHome}) {
		m.log.Debug("discarding stale home result", "epoch", msg.epoch, "current", m.epoch)
		return m, nil
	}
	if msg.err != nil {
		m.log.Warn("home render failed", "error", msg.err)
		m.setMount(mount{screen: screenError, path: m.path, err: msg.err})
		return m, nil
	}

	m.lastRefresh = now()
	m.selected = clampSelection(m.selected, len(msg.instances))
	m.setMount(mount{screen: screenHome, path: m.path, instances: msg.instances})
	return m, m.scheduleRefresh()
}

func clampSelection(sel, n int) int {
	if sel >= n {
		sel = n - 1
	}
	if sel < 0 {
		sel = 0
	}
	return sel
}

func (m *Model) moveSelection(delta int) {
	n := len(m.mount.instances)
	if n == 0 {
		return
	}
	m.selected = clampSelection(m.selected+delta, n)
	m.syncViewport()
}

// ensureSelectionVisible scrolls the viewport so the selected panel is on screen.
func (m *Model) ensureSelectionVisible() {
	if m.selected < 0 || m.selected >= len(m.offsets) {
		return
	}
	top := m.offsets[m.selected]
	bottom := m.viewport.TotalLineCount()
	if m.selected+1 < len(m.offsets) {
		bottom = m.offsets[m.selected+1]
	}
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

// renderInstanceList renders one panel per instance in the given order and
// returns the first line of each panel.
func renderInstanceList(instances []data.Instance, selected, width int) (string, []int) {
	if len(instances) == 0 {
		return mutedStyle.Render("No instances running"), nil
	}

	var sb strings.Builder
	offsets := make([]int, 0, len(instances))
	line := 0
	for i, inst := range instances {
		panel := renderInstancePanel(inst, i == selected, width)
		offsets = append(offsets, line)
		sb.WriteString(panel)
		sb.WriteString("\n")
		line += lipgloss.Height(panel)
	}
	return strings.TrimSuffix(sb.String(), "\n"), offsets
}

func renderInstancePanel(inst data.Instance, selected bool, width int) string {
	style := panelStyle
	if selected {
		style = selectedPanelStyle
	}
	inner := width - style.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	title := headerStyle.Render(truncate(inst.Workspace, inner-14)) + " " + statusBadge(inst.Status)
	stats := fmt.Sprintf("%s tokens · %s tool calls · %s errors · %d min",
		formatCount(inst.Stats.TotalTokens),
		formatCount(inst.Stats.ToolCalls),
		formatCount(inst.Stats.Errors),
		durationMinutes(inst.Stats.DurationSecs))

	lines := []string{
		title,
		mutedStyle.Render(truncate(inst.ID, inner)),
		truncate(stats, inner),
	}
	if msg := firstLine(inst.LatestMessage); msg != "" {
		lines = append(lines, mutedStyle.Render(truncate(msg, inner)))
	}
	return style.Width(inner + style.GetHorizontalPadding()).Render(strings.Join(lines, "\n"))
}
