package tui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/andyrewlee/g3console/data"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Default refresh cadence per view.
const (
	DefaultHomeInterval   = 5 * time.Second
	DefaultDetailInterval = 3 * time.Second
	DefaultStartDelay     = 100 * time.Millisecond
)

// Options configures a Model.
type Options struct {
	// InitialPath is resolved once the program starts. Defaults to HomePath.
	InitialPath string

	// HomeInterval and DetailInterval are the delays between a successful
	// render and the next refresh of that view.
	HomeInterval   time.Duration
	DetailInterval time.Duration

	// StartDelay postpones the first route resolution.
	StartDelay time.Duration

	// Logger receives engine events. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.InitialPath == "" {
		o.InitialPath = HomePath
	}
	if o.HomeInterval <= 0 {
		o.HomeInterval = DefaultHomeInterval
	}
	if o.DetailInterval <= 0 {
		o.DetailInterval = DefaultDetailInterval
	}
	if o.StartDelay <= 0 {
		o.StartDelay = DefaultStartDelay
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// screen is what the mount point currently shows.
type screen int

const (
	screenBlank screen = iota
	screenLoading
	screenHome
	screenDetail
	screenError
	screenNotFound
)

// mount is the display surface. Only a render procedure that passed its
// route check writes to it.
type mount struct {
	screen    screen
	path      string
	instances []data.Instance
	detail    *data.InstanceDetail
	logs      *data.LogBundle
	err       error
}

// showsContent reports whether the mount holds rendered data for path.
func (mt mount) showsContent(path string) bool {
	return mt.path == path && (mt.screen == screenHome || mt.screen == screenDetail)
}

// Messages
type (
	startMsg struct{}

	// NavigateMsg asks the model to navigate to Path, as a link would.
	NavigateMsg struct{ Path string }

	flashMsg struct{ text string }
)

// Model is the navigation and refresh engine. It owns the current route,
// the refresh timers and the mount point.
type Model struct {
	api  API
	opts Options
	log  *slog.Logger
	keys KeyMap

	width  int
	height int

	// Ready indicates the terminal size is known
	ready bool

	// Routing
	started bool
	route   Route
	path    string
	epoch   uint64 // bumped on every navigation
	history []string
	histPos int

	// Refresh
	timers       timerSet
	seq          uint64
	homeInFlight uint64 // seq of the outstanding home fetch, 0 if none
	detailEpoch  uint64 // epoch of the outstanding detail fetch, 0 if none
	lastRefresh  time.Time

	// Display
	mount     mount
	selected  int
	offsets   []int // first line of each instance panel in the viewport
	spinner   spinner.Model
	viewport  viewport.Model
	help      help.Model
	prompt    textinput.Model
	prompting bool
	showHelp  bool
	flash     string
}

// New creates a Model reading from api.
func New(api API, opts Options) Model {
	opts = opts.withDefaults()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	ti := textinput.New()
	ti.Prompt = "go to: "
	ti.Placeholder = "/instance/<id>"
	ti.CharLimit = 256

	return Model{
		api:      api,
		opts:     opts,
		log:      opts.Logger,
		keys:     DefaultKeyMap(),
		histPos:  -1,
		spinner:  sp,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		prompt:   ti,
	}
}

// Init implements tea.Model. The first route is resolved after StartDelay.
func (m Model) Init() tea.Cmd {
	return tea.Tick(m.opts.StartDelay, func(time.Time) tea.Msg {
		return startMsg{}
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.syncViewport()
		return m, nil

	case startMsg:
		if m.started {
			return m, nil
		}
		m.started = true
		return m.Navigate(m.opts.InitialPath)

	case NavigateMsg:
		return m.Navigate(msg.Path)

	case homeLoadedMsg:
		return m.handleHomeLoaded(msg)

	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case refreshTickMsg:
		return m.handleRefreshTick(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case flashMsg:
		m.flash = msg.text
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Navigate cancels all refresh timers, records path in history and resolves it.
func (m Model) Navigate(path string) (Model, tea.Cmd) {
	m.timers.clearAll()
	m.history = append(slices.Clone(m.history[:m.histPos+1]), path)
	m.histPos = len(m.history) - 1
	return m.resolve(path)
}

// Back resolves the previous history entry, if any.
func (m Model) Back() (Model, tea.Cmd) {
	if m.histPos <= 0 {
		return m, nil
	}
	m.timers.clearAll()
	m.histPos--
	return m.resolve(m.history[m.histPos])
}

// Forward resolves the next history entry, if any.
func (m Model) Forward() (Model, tea.Cmd) {
	if m.histPos < 0 || m.histPos >= len(m.history)-1 {
		return m, nil
	}
	m.timers.clearAll()
	m.histPos++
	return m.resolve(m.history[m.histPos])
}

// Reload resolves the current path again without touching history.
func (m Model) Reload() (Model, tea.Cmd) {
	if !m.started {
		return m, nil
	}
	m.timers.clearAll()
	return m.resolve(m.path)
}

// resolve makes path the current route and starts its render procedure.
// Any fetch issued for an earlier route is superseded.
func (m Model) resolve(path string) (Model, tea.Cmd) {
	m.epoch++
	m.homeInFlight = 0
	m.detailEpoch = 0
	m.route = ParseRoute(path)
	m.path = path
	m.flash = ""
	m.log.Debug("route resolved", "path", path, "route", m.route.String(), "epoch", m.epoch)

	switch m.route.Kind {
	case RouteHome:
		return m.renderHome()
	case RouteDetail:
		return m.renderDetail(m.route.ID)
	}

	m.setMount(mount{screen: screenNotFound, path: path})
	return m, nil
}

// owns reports whether a result issued at epoch for route may still be displayed.
func (m Model) owns(epoch uint64, route Route) bool {
	return epoch == m.epoch && m.route == route
}

// scheduleRefresh arms the refresh timer for the current route.
func (m *Model) scheduleRefresh() tea.Cmd {
	switch m.route.Kind {
	case RouteHome:
		return m.timers.arm(timerHome, m.opts.HomeInterval, "")
	case RouteDetail:
		return m.timers.arm(timerDetail, m.opts.DetailInterval, m.route.ID)
	}
	return nil
}

func (m Model) handleRefreshTick(msg refreshTickMsg) (Model, tea.Cmd) {
	if !m.timers.fire(msg.kind, msg.handle) {
		m.log.Debug("ignoring cancelled refresh timer", "kind", msg.kind.String(), "handle", msg.handle)
		return m, nil
	}
	switch {
	case msg.kind == timerHome && m.route.Kind == RouteHome:
		return m.renderHome()
	case msg.kind == timerDetail && m.route == (Route{Kind: RouteDetail, ID: msg.id}):
		return m.renderDetail(msg.id)
	}
	return m, nil
}

// showLoading puts the loading indicator on the mount unless it already
// shows content for the current path, in which case the header spinner
// signals the refresh.
func (m *Model) showLoading() {
	if m.mount.showsContent(m.path) {
		return
	}
	m.setMount(mount{screen: screenLoading, path: m.path})
}

func (m *Model) setMount(mt mount) {
	m.mount = mt
	m.syncViewport()
}

// busy reports whether any fetch for the current route is outstanding.
func (m Model) busy() bool {
	return m.homeInFlight != 0 || m.detailEpoch != 0
}

// CurrentPath returns the path of the current route.
func (m Model) CurrentPath() string {
	return m.path
}

// currentInstanceID returns the instance the user is looking at, if any.
func (m Model) currentInstanceID() string {
	switch m.mount.screen {
	case screenDetail:
		return m.route.ID
	case screenHome:
		if m.selected >= 0 && m.selected < len(m.mount.instances) {
			return m.mount.instances[m.selected].ID
		}
	}
	return ""
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.prompting {
		return m.updatePrompt(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Goto):
		return m.openPrompt()

	case key.Matches(msg, m.keys.Back):
		return m.Back()

	case key.Matches(msg, m.keys.Forward):
		return m.Forward()

	case key.Matches(msg, m.keys.Home):
		return m.Navigate(HomePath)

	case key.Matches(msg, m.keys.Reload):
		return m.Reload()

	case key.Matches(msg, m.keys.Copy):
		if id := m.currentInstanceID(); id != "" {
			return m, copyID(id)
		}
		return m, nil
	}

	if m.mount.screen == screenHome {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.moveSelection(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.moveSelection(1)
			return m, nil
		case key.Matches(msg, m.keys.Select):
			if id := m.currentInstanceID(); id != "" {
				return m.Navigate(InstancePath(id))
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// copyID copies an instance id to the system clipboard.
func copyID(id string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(id); err != nil {
			return flashMsg{text: "copy failed: " + err.Error()}
		}
		return flashMsg{text: "copied " + id}
	}
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return NewHelpOverlay(m.keys).Render(m.width, m.height)
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	body := bodyStyle.Render(m.renderBody())

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// bodySize returns the width and height available to the mount point.
func (m Model) bodySize() (int, int) {
	w := m.width - bodyStyle.GetHorizontalFrameSize()
	h := m.height - 2 // header + footer
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (m Model) renderHeader() string {
	parts := []string{titleStyle.Render("g3 console"), mutedStyle.Render(m.path)}
	if m.busy() {
		parts = append(parts, m.spinner.View())
	}
	if !m.lastRefresh.IsZero() {
		parts = append(parts, mutedStyle.Render("updated "+formatAge(since(m.lastRefresh))))
	}
	if m.flash != "" {
		parts = append(parts, okStyle.Render(m.flash))
	}
	return headerBarStyle.Render(clipLines(strings.Join(parts, "  "), m.width-headerBarStyle.GetHorizontalFrameSize()))
}

func (m Model) renderFooter() string {
	if m.prompting {
		return footerStyle.Render(m.prompt.View())
	}
	return footerStyle.Render(clipLines(m.help.View(m.keys), m.width-footerStyle.GetHorizontalFrameSize()))
}

// renderBody renders the mount point.
func (m Model) renderBody() string {
	switch m.mount.screen {
	case screenLoading:
		return m.spinner.View() + " Loading…"
	case screenError:
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.mount.err))
	case screenNotFound:
		return errorStyle.Render("Page not found: ") + m.mount.path
	case screenHome, screenDetail:
		return m.viewport.View()
	}
	return ""
}

// syncViewport re-renders mount content into the viewport at the current size.
func (m *Model) syncViewport() {
	w, h := m.bodySize()
	m.viewport.Width = w
	m.viewport.Height = h

	switch m.mount.screen {
	case screenHome:
		content, offsets := renderInstanceList(m.mount.instances, m.selected, w)
		m.offsets = offsets
		m.viewport.SetContent(content)
		m.ensureSelectionVisible()
	case screenDetail:
		m.offsets = nil
		m.viewport.SetContent(renderDetailBody(m.mount.detail, m.mount.logs, w))
	default:
		m.offsets = nil
		m.viewport.SetContent("")
	}
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}
