package session

import (
	"testing"

	"github.com/texelation/muxd/internal/layout"
	"github.com/texelation/muxd/internal/pane"
	"github.com/texelation/muxd/internal/term"
)

func stubFactory(cols, rows uint16) (term.Terminal, pane.Pty) {
	return term.NewStub(int(cols), int(rows)), nil
}

func TestCreateWindowSpawnsExpectedPaneCount(t *testing.T) {
	reg := pane.NewRegistry()
	s := New(1, reg, stubFactory)
	tmpl, _ := layout.Default().Get("2x2")

	w := s.CreateWindow("2x2", tmpl)
	if got := len(w.PaneIDs()); got != 4 {
		t.Fatalf("pane count = %d, want 4", got)
	}
	if reg.Count() != 4 {
		t.Fatalf("registry count = %d, want 4", reg.Count())
	}
	if s.ActiveWindowID() != w.ID {
		t.Fatalf("new window should become active")
	}
}

func TestCloseWindowDestroysPanesAndReassignsActive(t *testing.T) {
	reg := pane.NewRegistry()
	s := New(1, reg, stubFactory)
	tmpl, _ := layout.Default().Get("single")

	w1 := s.CreateWindow("single", tmpl)
	w2 := s.CreateWindow("single", tmpl)
	if s.ActiveWindowID() != w2.ID {
		t.Fatalf("expected w2 active")
	}

	if err := s.CloseWindow(w2.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if reg.Count() != 1 {
		t.Fatalf("registry count after close = %d, want 1", reg.Count())
	}
	if s.ActiveWindowID() != w1.ID {
		t.Fatalf("active window should fall back to remaining window")
	}
}

func TestWindowRemovePaneReassignsActive(t *testing.T) {
	w := NewWindow(1, []uint16{5, 6, 7})
	w.SetActivePane(5)
	w.RemovePane(5)
	if w.ActivePaneID() != 6 {
		t.Fatalf("active pane = %d, want 6", w.ActivePaneID())
	}
	if len(w.PaneIDs()) != 2 {
		t.Fatalf("pane count = %d, want 2", len(w.PaneIDs()))
	}
}

func TestWindowSwapPanePositions(t *testing.T) {
	w := NewWindow(1, []uint16{1, 2, 3})
	if !w.SwapPanePositions(1, 3) {
		t.Fatalf("swap failed")
	}
	ids := w.PaneIDs()
	if ids[0] != 3 || ids[2] != 1 {
		t.Fatalf("unexpected order after swap: %v", ids)
	}
	if w.SwapPanePositions(1, 99) {
		t.Fatalf("expected swap with unknown id to fail")
	}
}

func TestSetLayoutFromTemplateGrowsPanes(t *testing.T) {
	reg := pane.NewRegistry()
	id := reg.Create(80, 24, term.NewStub(80, 24), nil)
	w := NewWindow(1, []uint16{id})

	tmpl, _ := layout.Default().Get("2-col")
	next := uint16(100)
	w.SetLayoutFromTemplate("2-col", tmpl, func() uint16 {
		next++
		return next
	})
	if got := len(w.PaneIDs()); got != 2 {
		t.Fatalf("pane count after growth = %d, want 2", got)
	}
	if w.LayoutTree() == nil {
		t.Fatalf("expected layout tree to be set")
	}
}

func TestActivePaneIDNoWindows(t *testing.T) {
	s := New(1, pane.NewRegistry(), stubFactory)
	if _, ok := s.ActivePaneID(); ok {
		t.Fatalf("expected ok=false for session with no windows")
	}
}
