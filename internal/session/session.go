package session

import (
	"errors"
	"sort"

	"github.com/texelation/muxd/internal/layout"
	"github.com/texelation/muxd/internal/pane"
	"github.com/texelation/muxd/internal/term"
)

var (
	ErrWindowNotFound = errors.New("session: window not found")
	ErrNoWindows      = errors.New("session: session has no windows")
)

// PaneFactory builds the Terminal+Pty pair for a freshly-created shell
// pane; the reactor supplies the real internal/term and internal/ptyio
// implementations, tests supply term.Stub and a nil/fake Pty.
type PaneFactory func(cols, rows uint16) (term.Terminal, pane.Pty)

// Session owns a set of windows, the active window, and a reference to
// the process-wide pane registry (spec.md §4.5).
type Session struct {
	ID uint16

	windows      map[uint16]*Window
	nextWindowID uint16
	activeID     uint16

	Panes   *pane.Registry
	NewPane PaneFactory
}

// New creates an empty session bound to the given registry and pane
// factory.
func New(id uint16, panes *pane.Registry, factory PaneFactory) *Session {
	return &Session{
		ID:      id,
		windows: make(map[uint16]*Window),
		Panes:   panes,
		NewPane: factory,
	}
}

func (s *Session) allocWindowID() uint16 {
	s.nextWindowID++
	return s.nextWindowID
}

// CreateWindow builds a window populated with shell panes according to
// tmpl (spec.md §4.5: "creates windows ... populated with the right
// number of shell panes") and makes it active.
func (s *Session) CreateWindow(templateID string, tmpl *layout.Node) *Window {
	id := s.allocWindowID()
	need := layout.CountPanes(tmpl)
	paneIDs := make([]uint16, 0, need)
	for i := 0; i < need; i++ {
		paneIDs = append(paneIDs, s.spawnPane())
	}
	w := NewWindow(id, paneIDs)
	w.SetLayoutFromTemplate(templateID, tmpl, s.spawnPane)
	s.windows[id] = w
	s.activeID = id
	return w
}

func (s *Session) spawnPane() uint16 {
	cols, rows := uint16(80), uint16(24)
	t, p := s.NewPane(cols, rows)
	return s.Panes.Create(cols, rows, t, p)
}

// SpawnPane creates a new shell pane via the session's factory, for
// callers outside the package that need to grow a window after
// creation (e.g. a set_layout handler growing to a larger template).
func (s *Session) SpawnPane() uint16 { return s.spawnPane() }

// CloseWindow destroys every pane the window owns and removes it; if
// it was active, the lowest-id remaining window becomes active
// (spec.md §4.5).
func (s *Session) CloseWindow(id uint16) error {
	w, ok := s.windows[id]
	if !ok {
		return ErrWindowNotFound
	}
	for _, pid := range w.PaneIDs() {
		_ = s.Panes.Destroy(pid)
	}
	delete(s.windows, id)
	if s.activeID == id {
		s.activeID = s.lowestWindowID()
	}
	return nil
}

func (s *Session) lowestWindowID() uint16 {
	ids := s.WindowIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

// WindowIDs returns window ids in ascending order.
func (s *Session) WindowIDs() []uint16 {
	ids := make([]uint16, 0, len(s.windows))
	for id := range s.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Session) Window(id uint16) (*Window, error) {
	w, ok := s.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}
	return w, nil
}

func (s *Session) ActiveWindowID() uint16 { return s.activeID }

// SetActiveWindow switches the active window, failing if id is unknown
// (spec.md §4.5).
func (s *Session) SetActiveWindow(id uint16) error {
	if _, ok := s.windows[id]; !ok {
		return ErrWindowNotFound
	}
	s.activeID = id
	return nil
}

// ActivePaneID resolves the active window's active pane, or ok=false
// if the session has no windows.
func (s *Session) ActivePaneID() (uint16, bool) {
	w, ok := s.windows[s.activeID]
	if !ok {
		return 0, false
	}
	return w.ActivePaneID(), true
}
