package tui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/andyrewlee/g3console/data"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// stubAPI is an in-memory API with call counters.
type stubAPI struct {
	mu sync.Mutex

	instances []data.Instance
	listErr   error
	detail    map[string]*data.InstanceDetail
	getErr    error
	logs      map[string]*data.LogBundle
	logsErr   error
	state     json.RawMessage
	stateErr  error

	listCalls int
	getCalls  int
	logsCalls int
	saves     int
}

func newStubAPI() *stubAPI {
	return &stubAPI{
		instances: testInstances(),
		detail:    map[string]*data.InstanceDetail{},
		logs:      map[string]*data.LogBundle{},
	}
}

func (s *stubAPI) ListInstances(ctx context.Context) ([]data.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]data.Instance{}, s.instances...), nil
}

func (s *stubAPI) GetInstance(ctx context.Context, id string) (*data.InstanceDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	if d, ok := s.detail[id]; ok {
		return d, nil
	}
	return &data.InstanceDetail{
		Instance: data.Instance{ID: id, Workspace: "/work/" + id, Status: data.StatusRunning},
	}, nil
}

func (s *stubAPI) GetInstanceLogs(ctx context.Context, id string) (*data.LogBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logsCalls++
	if s.logsErr != nil {
		return nil, s.logsErr
	}
	if l, ok := s.logs[id]; ok {
		return l, nil
	}
	return &data.LogBundle{InstanceID: id}, nil
}

func (s *stubAPI) LaunchInstance(ctx context.Context, req data.LaunchRequest) (*data.Instance, error) {
	return nil, errors.New("not supported")
}

func (s *stubAPI) KillInstance(ctx context.Context, id string) (*data.Ack, error) {
	return &data.Ack{Success: true}, nil
}

func (s *stubAPI) RestartInstance(ctx context.Context, id string) (*data.Ack, error) {
	return &data.Ack{Success: true}, nil
}

func (s *stubAPI) GetState(ctx context.Context) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	if s.state == nil {
		return json.RawMessage("null"), nil
	}
	return append(json.RawMessage{}, s.state...), nil
}

func (s *stubAPI) SaveState(ctx context.Context, state json.RawMessage) (*data.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.stateErr != nil {
		return nil, s.stateErr
	}
	s.state = append(json.RawMessage{}, state...)
	return &data.Ack{Success: true}, nil
}

func (s *stubAPI) counts() (list, get, logs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.getCalls, s.logsCalls
}

func testInstances() []data.Instance {
	return []data.Instance{
		{
			ID:            "alpha",
			Workspace:     "/work/alpha",
			Status:        data.StatusRunning,
			Stats:         data.Stats{TotalTokens: 1234567, ToolCalls: 42, Errors: 1, DurationSecs: 125},
			LatestMessage: "Running cargo test",
		},
		{
			ID:        "bravo",
			Workspace: "/work/bravo",
			Status:    data.StatusCompleted,
			Stats:     data.Stats{TotalTokens: 5000, ToolCalls: 3, DurationSecs: 30},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestModel creates a sized Model over api that has not resolved any route yet.
func newTestModel(t *testing.T, api API) Model {
	t.Helper()
	m := New(api, Options{Logger: discardLogger()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	m.started = true
	return m
}

// update feeds msg to m and returns the resulting Model.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// pendingHome runs the outstanding home fetch synchronously.
func pendingHome(t *testing.T, m Model) homeLoadedMsg {
	t.Helper()
	if m.homeInFlight == 0 {
		t.Fatal("no home fetch in flight")
	}
	return m.fetchHome(m.epoch, m.homeInFlight)().(homeLoadedMsg)
}

// pendingDetail runs the outstanding detail fetch synchronously.
func pendingDetail(t *testing.T, m Model) detailLoadedMsg {
	t.Helper()
	if m.detailEpoch == 0 || m.route.Kind != RouteDetail {
		t.Fatal("no detail fetch in flight")
	}
	return m.fetchDetail(m.detailEpoch, m.route.ID)().(detailLoadedMsg)
}

// showHome navigates to the home view and completes its first render.
func showHome(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = m.Navigate(HomePath)
	m, _ = update(t, m, pendingHome(t, m))
	return m
}

func plainView(m Model) string {
	return ansi.Strip(m.View())
}

func pinTime(t *testing.T) time.Time {
	t.Helper()
	ts := time.Date(2026, 1, 2, 7, 9, 3, 0, time.UTC)
	t.Cleanup(setNow(ts))
	return ts
}
