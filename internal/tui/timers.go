package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timerKind is the view a refresh timer belongs to.
type timerKind int

const (
	timerHome timerKind = iota
	timerDetail
	numTimerKinds
)

func (k timerKind) String() string {
	if k == timerHome {
		return "home"
	}
	return "detail"
}

// refreshTickMsg is delivered when a refresh timer fires.
type refreshTickMsg struct {
	kind   timerKind
	handle uint64
	id     string // instance id for detail timers
}

// timerSet tracks the live refresh timer of each view kind.
// tea.Tick cannot be stopped, so a timer is cancelled by forgetting its
// handle; a tick whose handle is no longer live is ignored.
// At most one handle per kind is live at any time.
type timerSet struct {
	next    uint64
	handles [numTimerKinds]uint64
}

// arm issues a new handle for kind, replacing any live one, and returns
// the tick command that will deliver it after d.
func (t *timerSet) arm(kind timerKind, d time.Duration, id string) tea.Cmd {
	t.next++
	handle := t.next
	t.handles[kind] = handle
	return tea.Tick(d, func(time.Time) tea.Msg {
		return refreshTickMsg{kind: kind, handle: handle, id: id}
	})
}

func (t *timerSet) clear(kind timerKind) {
	t.handles[kind] = 0
}

func (t *timerSet) clearAll() {
	for k := range t.handles {
		t.handles[k] = 0
	}
}

// fire consumes the handle if it is still live and reports whether it was.
func (t *timerSet) fire(kind timerKind, handle uint64) bool {
	if handle == 0 || t.handles[kind] != handle {
		return false
	}
	t.handles[kind] = 0
	return true
}

// handle returns the live handle for kind, or 0.
func (t timerSet) handle(kind timerKind) uint64 {
	return t.handles[kind]
}

// live returns the number of armed timers across all kinds.
func (t timerSet) live() int {
	n := 0
	for _, h := range t.handles {
		if h != 0 {
			n++
		}
	}
	return n
}
