package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andyrewlee/g3console/data"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// detailLoadedMsg carries the combined result of one detail fetch.
type detailLoadedMsg struct {
	epoch  uint64
	id     string
	detail *data.InstanceDetail
	logs   *data.LogBundle
	err    error
}

// renderDetail starts a detail render cycle for id. A stale cycle is
// superseded by the route check when its result arrives.
func (m Model) renderDetail(id string) (Model, tea.Cmd) {
	m.detailEpoch = m.epoch
	m.showLoading()
	return m, tea.Batch(m.fetchDetail(m.epoch, id), m.spinner.Tick)
}

// fetchDetail reads the instance and its logs concurrently. Either failing
// fails the whole view.
func (m Model) fetchDetail(epoch uint64, id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		msg := detailLoadedMsg{epoch: epoch, id: id}
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			d, err := api.GetInstance(ctx, id)
			msg.detail = d
			return err
		})
		g.Go(func() error {
			l, err := api.GetInstanceLogs(ctx, id)
			msg.logs = l
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m Model) handleDetailLoaded(msg detailLoadedMsg) (Model, tea.Cmd) {
	if !m.owns(msg.epoch, Route{Kind: RouteDetail, ID: msg.id}) {
		m.log.Debug("discarding stale detail result", "id", msg.id, "epoch", msg.epoch, "current", m.epoch)
		return m, nil
	}
	m.detailEpoch = 0
	if msg.err != nil {
		m.log.Warn("detail render failed", "id", msg.id, "error", msg.err)
		m.setMount(mount{screen: screenError, path: m.path, err: msg.err})
		return m, nil
	}

	m.lastRefresh = now()
	m.setMount(mount{screen: screenDetail, path: m.path, detail: msg.detail, logs: msg.logs})
	return m, m.scheduleRefresh()
}

// renderDetailBody renders one instance with its history.
func renderDetailBody(detail *data.InstanceDetail, logs *data.LogBundle, width int) string {
	if detail == nil {
		return ""
	}
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(detail.Workspace))
	sb.WriteString(" ")
	sb.WriteString(statusBadge(detail.Status))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(detail.ID))
	if detail.PID > 0 {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  pid %d", detail.PID)))
	}
	if detail.StartedAt != nil {
		sb.WriteString(mutedStyle.Render("  started " + detail.StartedAt.Local().Format("2006-01-02 15:04:05")))
	}
	sb.WriteString("\n")

	sb.WriteString(renderStatsPanel(detail.Stats))
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Git Status"))
	sb.WriteString("\n")
	if gs := strings.TrimSpace(detail.GitStatus); gs != "" {
		sb.WriteString(gs)
	} else {
		sb.WriteString(mutedStyle.Render("clean"))
	}
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Project Files"))
	sb.WriteString("\n")
	if len(detail.ProjectFiles) == 0 {
		sb.WriteString(mutedStyle.Render("none"))
		sb.WriteString("\n")
	}
	for _, f := range detail.ProjectFiles {
		sb.WriteString("  " + f + "\n")
	}

	var toolCalls []data.ToolCall
	var messages []data.ChatMessage
	if logs != nil {
		toolCalls = logs.ToolCalls
		messages = logs.ChatMessages
	}

	sb.WriteString(sectionStyle.Render(fmt.Sprintf("Tool Calls (%d)", len(toolCalls))))
	sb.WriteString("\n")
	if len(toolCalls) == 0 {
		sb.WriteString(mutedStyle.Render("No tool calls yet"))
		sb.WriteString("\n")
	}
	for _, tc := range toolCalls {
		sb.WriteString(renderToolCall(tc, width))
		sb.WriteString("\n")
	}

	sb.WriteString(sectionStyle.Render(fmt.Sprintf("Messages (%d)", len(messages))))
	sb.WriteString("\n")
	if len(messages) == 0 {
		sb.WriteString(mutedStyle.Render("No messages yet"))
		sb.WriteString("\n")
	}
	for _, msg := range messages {
		sb.WriteString(renderChatMessage(msg))
		sb.WriteString("\n")
	}

	return clipLines(strings.TrimSuffix(sb.String(), "\n"), width)
}

func renderStatsPanel(s data.Stats) string {
	cells := []string{
		"Tokens " + headerStyle.Render(formatCount(s.TotalTokens)),
		"Tool calls " + headerStyle.Render(formatCount(s.ToolCalls)),
		"Errors " + headerStyle.Render(formatCount(s.Errors)),
		"Duration " + headerStyle.Render(fmt.Sprintf("%d min", durationMinutes(s.DurationSecs))),
	}
	return statsPanelStyle.Render(strings.Join(cells, "   "))
}

func renderToolCall(tc data.ToolCall, width int) string {
	mark := okStyle.Render("✓")
	if !tc.Success {
		mark = errorStyle.Render("✗")
	}
	line := fmt.Sprintf("%s %s %s", mutedStyle.Render(tc.Timestamp.Local().Format("15:04:05")), mark, headerStyle.Render(tc.Tool))
	if args := compactJSON(tc.Args); args != "" {
		line += " " + mutedStyle.Render(truncate(args, width/2))
	}
	if res := firstLine(strings.TrimSpace(tc.Result)); res != "" {
		line += "\n    " + truncate(res, width-4)
	}
	return line
}

func renderChatMessage(msg data.ChatMessage) string {
	tag := msg.Agent
	if tag == "" {
		tag = msg.Role
	}
	head := agentStyle.Render("["+tag+"]") + " " + mutedStyle.Render(msg.Timestamp.Local().Format("15:04:05"))
	return head + "\n" + strings.TrimRight(msg.Content, "\n")
}
