package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andyrewlee/g3console/data"
	tea "github.com/charmbracelet/bubbletea"
)

func TestNewAppliesDefaults(t *testing.T) {
	m := New(newStubAPI(), Options{})
	if m.opts.InitialPath != HomePath {
		t.Errorf("InitialPath = %q, want %q", m.opts.InitialPath, HomePath)
	}
	if m.opts.HomeInterval != DefaultHomeInterval {
		t.Errorf("HomeInterval = %v, want %v", m.opts.HomeInterval, DefaultHomeInterval)
	}
	if m.opts.DetailInterval != DefaultDetailInterval {
		t.Errorf("DetailInterval = %v, want %v", m.opts.DetailInterval, DefaultDetailInterval)
	}
	if m.opts.StartDelay != DefaultStartDelay {
		t.Errorf("StartDelay = %v, want %v", m.opts.StartDelay, DefaultStartDelay)
	}
	if m.route.Kind != RouteNone {
		t.Errorf("route = %v, want none before start", m.route)
	}
	if m.Init() == nil {
		t.Error("Init should schedule the start")
	}
}

func TestStartResolvesInitialPathOnce(t *testing.T) {
	api := newStubAPI()
	m := New(api, Options{InitialPath: "/instance/alpha", Logger: discardLogger()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m, cmd := update(t, m, startMsg{})
	if cmd == nil {
		t.Fatal("start should issue the detail fetch")
	}
	if m.route != (Route{Kind: RouteDetail, ID: "alpha"}) {
		t.Errorf("route = %v, want detail(alpha)", m.route)
	}
	if len(m.history) != 1 {
		t.Errorf("history = %v, want one entry", m.history)
	}

	epoch := m.epoch
	m, cmd = update(t, m, startMsg{})
	if cmd != nil || m.epoch != epoch {
		t.Error("a second start must not resolve again")
	}
}

func TestHomeRenderShowsPanelsInServerOrder(t *testing.T) {
	api := newStubAPI()
	api.instances = []data.Instance{testInstances()[1], testInstances()[0]}
	m := showHome(t, newTestModel(t, api))

	if m.mount.screen != screenHome {
		t.Fatalf("screen = %v, want home", m.mount.screen)
	}
	view := plainView(m)
	bravo := strings.Index(view, "/work/bravo")
	alpha := strings.Index(view, "/work/alpha")
	if bravo < 0 || alpha < 0 || bravo > alpha {
		t.Errorf("panels not in server order:\n%s", view)
	}
	if !strings.Contains(view, "1,234,567 tokens") {
		t.Errorf("view missing formatted token count:\n%s", view)
	}
	if !strings.Contains(view, "2 min") {
		t.Errorf("view missing rounded duration:\n%s", view)
	}
	if m.timers.handle(timerHome) == 0 {
		t.Error("home timer should be armed after a successful render")
	}
}

func TestHomeEmptyListShowsEmptyStateAndArmsTimer(t *testing.T) {
	api := newStubAPI()
	api.instances = nil
	m := showHome(t, newTestModel(t, api))

	view := plainView(m)
	if !strings.Contains(view, "No instances running") {
		t.Errorf("expected empty state, got:\n%s", view)
	}
	if len(m.offsets) != 0 {
		t.Errorf("expected no panels, got %d", len(m.offsets))
	}
	if m.timers.handle(timerHome) == 0 {
		t.Error("home timer should be armed for an empty list")
	}
}

func TestHomeFailureShowsErrorAndStopsPolling(t *testing.T) {
	api := newStubAPI()
	api.listErr = &data.RequestError{Op: "listing instances", StatusCode: 500}
	m := showHome(t, newTestModel(t, api))

	view := plainView(m)
	if !strings.Contains(view, "Error: listing instances: server returned status 500") {
		t.Errorf("expected error message, got:\n%s", view)
	}
	if m.timers.live() != 0 {
		t.Errorf("no timer should be armed after a failure, got %d", m.timers.live())
	}
	if m.homeInFlight != 0 {
		t.Error("in-flight flag must be cleared on the error path")
	}
}

func TestHomeRefreshWhileInFlightIsDropped(t *testing.T) {
	api := newStubAPI()
	m := showHome(t, newTestModel(t, api))

	m, cmd := update(t, m, refreshTickMsg{kind: timerHome, handle: m.timers.handle(timerHome)})
	if cmd == nil {
		t.Fatal("first refresh should start a fetch")
	}
	seq := m.homeInFlight

	m, cmd = m.renderHome()
	if cmd != nil {
		t.Error("second refresh should be dropped while the first is in flight")
	}
	if m.homeInFlight != seq || m.seq != seq {
		t.Errorf("in-flight seq changed: %d -> %d", seq, m.homeInFlight)
	}

	m, _ = update(t, m, pendingHome(t, m))
	if list, _, _ := api.counts(); list != 2 {
		t.Errorf("ListInstances called %d times, want 2", list)
	}
	if m.homeInFlight != 0 {
		t.Error("in-flight flag should clear once the fetch resolves")
	}
}

func TestRefreshKeepsContentOnScreen(t *testing.T) {
	m := showHome(t, newTestModel(t, newStubAPI()))

	m, _ = update(t, m, refreshTickMsg{kind: timerHome, handle: m.timers.handle(timerHome)})
	if m.mount.screen != screenHome {
		t.Errorf("screen = %v, want home content kept during refresh", m.mount.screen)
	}
	if !m.busy() {
		t.Error("model should report busy during refresh")
	}
}

func TestStaleHomeResultIsDiscarded(t *testing.T) {
	api := newStubAPI()
	m := newTestModel(t, api)

	m, _ = m.Navigate(HomePath)
	stale := homeLoadedMsg{epoch: m.epoch, seq: m.homeInFlight, instances: []data.Instance{
		{ID: "stale", Workspace: "/work/stale", Status: data.StatusIdle},
	}}

	m, _ = m.Navigate("/instance/alpha")
	m, _ = m.Navigate(HomePath)
	fresh := pendingHome(t, m)

	m, cmd := update(t, m, stale)
	if cmd != nil {
		t.Error("stale result must not arm a timer")
	}
	if m.mount.screen != screenLoading {
		t.Errorf("stale result touched the mount: screen = %v", m.mount.screen)
	}
	if m.homeInFlight == 0 {
		t.Error("stale result must not clear the fresh cycle's flag")
	}

	m, _ = update(t, m, fresh)
	view := plainView(m)
	if strings.Contains(view, "/work/stale") || !strings.Contains(view, "/work/alpha") {
		t.Errorf("expected fresh render, got:\n%s", view)
	}
}

func TestAtMostOneTimerPerKind(t *testing.T) {
	m := newTestModel(t, newStubAPI())

	check := func(step string) {
		t.Helper()
		if m.timers.live() > 1 {
			t.Errorf("%s: %d timers live", step, m.timers.live())
		}
	}

	m = showHome(t, m)
	check("home")

	m, _ = m.Navigate("/instance/alpha")
	check("navigate detail")
	if m.timers.handle(timerHome) != 0 {
		t.Error("navigation must cancel the home timer")
	}

	m, _ = update(t, m, pendingDetail(t, m))
	check("detail loaded")
	if m.timers.handle(timerDetail) == 0 {
		t.Error("detail timer should be armed")
	}

	m, _ = m.Navigate("/instance/bravo")
	check("navigate other detail")
	m, _ = update(t, m, pendingDetail(t, m))
	check("other detail loaded")

	m, _ = m.Back()
	check("back")
	m, _ = m.Navigate("/missing")
	if m.timers.live() != 0 {
		t.Errorf("not-found must leave no timer, got %d", m.timers.live())
	}
}

func TestCancelledTickIsIgnored(t *testing.T) {
	api := newStubAPI()
	m := showHome(t, newTestModel(t, api))
	old := m.timers.handle(timerHome)

	m, _ = m.Navigate("/instance/alpha")
	epoch := m.epoch
	m, cmd := update(t, m, refreshTickMsg{kind: timerHome, handle: old})
	if cmd != nil || m.epoch != epoch || m.homeInFlight != 0 {
		t.Error("a tick with a cancelled handle must do nothing")
	}
}

func TestDetailRefreshTickRerendersSameID(t *testing.T) {
	api := newStubAPI()
	m := newTestModel(t, api)
	m, _ = m.Navigate("/instance/alpha")
	m, _ = update(t, m, pendingDetail(t, m))

	m, cmd := update(t, m, refreshTickMsg{kind: timerDetail, handle: m.timers.handle(timerDetail), id: "alpha"})
	if cmd == nil {
		t.Fatal("detail tick should start a fetch")
	}
	if m.mount.screen != screenDetail {
		t.Errorf("screen = %v, want detail kept during refresh", m.mount.screen)
	}
	m, _ = update(t, m, pendingDetail(t, m))
	if _, get, logs := api.counts(); get != 2 || logs != 2 {
		t.Errorf("calls = %d/%d, want 2/2", get, logs)
	}
}

func TestDetailFailureShowsErrorThenFreshCycle(t *testing.T) {
	api := newStubAPI()
	api.getErr = &data.RequestError{Op: "loading instance alpha", StatusCode: 404, Message: "instance alpha not found"}
	m := newTestModel(t, api)

	m, _ = m.Navigate("/instance/alpha")
	m, cmd := update(t, m, pendingDetail(t, m))
	if cmd != nil {
		t.Error("failure must not arm a timer")
	}
	if m.timers.live() != 0 {
		t.Errorf("timers live = %d, want 0", m.timers.live())
	}
	view := plainView(m)
	if !strings.Contains(view, "Error: loading instance alpha: instance alpha not found") {
		t.Errorf("expected error message, got:\n%s", view)
	}

	api.mu.Lock()
	api.getErr = nil
	api.mu.Unlock()

	m, cmd = m.Navigate("/instance/alpha")
	if cmd == nil {
		t.Fatal("re-navigation should start a new cycle")
	}
	if m.mount.screen != screenLoading {
		t.Errorf("screen = %v, want loading", m.mount.screen)
	}
	m, _ = update(t, m, pendingDetail(t, m))
	if m.mount.screen != screenDetail {
		t.Errorf("screen = %v, want detail", m.mount.screen)
	}
	if m.timers.handle(timerDetail) == 0 {
		t.Error("detail timer should be armed after the fresh render")
	}
}

func TestDetailLogsFailureFailsWholeView(t *testing.T) {
	api := newStubAPI()
	api.logsErr = errors.New("boom")
	m := newTestModel(t, api)

	m, _ = m.Navigate("/instance/alpha")
	m, _ = update(t, m, pendingDetail(t, m))
	if m.mount.screen != screenError {
		t.Errorf("screen = %v, want error", m.mount.screen)
	}
}

func TestStaleDetailResultIsDiscarded(t *testing.T) {
	m := newTestModel(t, newStubAPI())
	m, _ = m.Navigate("/instance/alpha")
	stale := pendingDetail(t, m)

	m, _ = m.Navigate("/instance/bravo")
	m, cmd := update(t, m, stale)
	if cmd != nil {
		t.Error("stale detail must not arm a timer")
	}
	if m.mount.screen != screenLoading {
		t.Errorf("stale detail touched the mount: screen = %v", m.mount.screen)
	}
}

func TestNotFoundRoute(t *testing.T) {
	m := newTestModel(t, newStubAPI())
	m, cmd := m.Navigate("/settings")
	if cmd != nil {
		t.Error("not-found should issue no commands")
	}
	if !strings.Contains(plainView(m), "Page not found: /settings") {
		t.Errorf("expected not-found message, got:\n%s", plainView(m))
	}
}

func TestHistoryBackForward(t *testing.T) {
	m := newTestModel(t, newStubAPI())
	m, _ = m.Navigate(HomePath)
	m, _ = m.Navigate("/instance/alpha")

	m, _ = m.Back()
	if m.CurrentPath() != HomePath || len(m.history) != 2 {
		t.Errorf("after back: path %q history %v", m.CurrentPath(), m.history)
	}
	m, _ = m.Back()
	if m.CurrentPath() != HomePath {
		t.Errorf("back at start moved to %q", m.CurrentPath())
	}

	m, _ = m.Forward()
	if m.CurrentPath() != "/instance/alpha" || len(m.history) != 2 {
		t.Errorf("after forward: path %q history %v", m.CurrentPath(), m.history)
	}
	m, _ = m.Forward()
	if m.CurrentPath() != "/instance/alpha" {
		t.Errorf("forward at end moved to %q", m.CurrentPath())
	}

	m, _ = m.Back()
	m, _ = m.Navigate("/instance/bravo")
	want := []string{HomePath, "/instance/bravo"}
	if strings.Join(m.history, ",") != strings.Join(want, ",") {
		t.Errorf("history = %v, want %v", m.history, want)
	}
}

func TestNavigationEpochIncrements(t *testing.T) {
	m := newTestModel(t, newStubAPI())
	m, _ = m.Navigate(HomePath)
	e1 := m.epoch
	m, _ = m.Reload()
	if m.epoch != e1+1 {
		t.Errorf("reload epoch = %d, want %d", m.epoch, e1+1)
	}
	if len(m.history) != 1 {
		t.Errorf("reload grew history: %v", m.history)
	}
}

func TestReloadAfterFailureResumesPolling(t *testing.T) {
	api := newStubAPI()
	api.listErr = errors.New("down")
	m := showHome(t, newTestModel(t, api))

	api.mu.Lock()
	api.listErr = nil
	api.mu.Unlock()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m, _ = update(t, m, pendingHome(t, m))
	if m.mount.screen != screenHome || m.timers.handle(timerHome) == 0 {
		t.Error("reload should render home and arm the timer")
	}
}

func TestHeaderShowsLastRefreshAge(t *testing.T) {
	ts := pinTime(t)
	m := showHome(t, newTestModel(t, newStubAPI()))
	if !m.lastRefresh.Equal(ts) {
		t.Errorf("lastRefresh = %v, want %v", m.lastRefresh, ts)
	}
	if !strings.Contains(plainView(m), "updated just now") {
		t.Errorf("header missing refresh age:\n%s", plainView(m))
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "just now"},
		{5, "5s ago"},
		{125, "2m ago"},
		{7200, "2h ago"},
	}
	for _, tt := range tests {
		if got := formatAge(time.Duration(tt.secs) * time.Second); got != tt.want {
			t.Errorf("formatAge(%ds) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
