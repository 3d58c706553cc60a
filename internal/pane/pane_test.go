package pane

import (
	"testing"
	"time"

	"github.com/texelation/muxd/internal/term"
)

func TestGenerationMonotonic(t *testing.T) {
	stub := term.NewStub(10, 5)
	p := New(1, 10, 5, stub, nil)

	g0 := p.Generation()
	p.Feed([]byte("hello"))
	g1 := p.Generation()
	if g1 <= g0 {
		t.Fatalf("generation did not advance: g0=%d g1=%d", g0, g1)
	}
	if err := p.Resize(20, 10); err != nil {
		t.Fatalf("resize: %v", err)
	}
	g2 := p.Generation()
	if g2 <= g1 {
		t.Fatalf("generation did not advance on resize: g1=%d g2=%d", g1, g2)
	}
}

func TestDeltaApplicability(t *testing.T) {
	stub := term.NewStub(10, 5)
	p := New(1, 10, 5, stub, nil)

	g0 := p.Generation()
	p.Feed([]byte("row0"))
	fromGen, rows, cells, ok := p.Delta(g0)
	if !ok {
		t.Fatalf("expected delta to be applicable")
	}
	if fromGen != g0 {
		t.Fatalf("fromGen = %d, want %d", fromGen, g0)
	}
	if len(rows) == 0 {
		t.Fatalf("expected at least one dirty row")
	}
	if len(cells) != len(rows) {
		t.Fatalf("cells = %d rows, want %d matching rows", len(cells), len(rows))
	}
	if len(cells[0]) == 0 || cells[0][0].Rune != 'r' {
		t.Fatalf("expected dirty row 0's content to be the fed text, got %+v", cells[0])
	}
}

func TestSyncOutputForcedFlush(t *testing.T) {
	stub := term.NewStub(10, 5)
	stub.SetModes(term.ModeSyncOutput)
	p := New(1, 10, 5, stub, nil)
	p.Feed([]byte("x"))
	if !p.SyncEnabled() {
		t.Fatalf("expected sync mode to be latched")
	}
	if p.ReconcileSync(time.Now()) {
		t.Fatalf("should not force flush before timeout")
	}
	if !p.ReconcileSync(time.Now().Add(SyncTimeout + time.Millisecond)) {
		t.Fatalf("expected forced flush after timeout")
	}
	if p.SyncEnabled() {
		t.Fatalf("sync mode should be cleared after forced flush")
	}
}

func TestSelectionFinalization(t *testing.T) {
	stub := term.NewStub(10, 2)
	p := New(1, 10, 2, stub, nil)
	p.Feed([]byte("abcdefghij"))
	p.StartSelection(0, 0)
	p.UpdateSelection(4, 0, false)
	p.EndSelection()
	if got := p.SelectionText(); got != "abcdefghij" {
		t.Fatalf("selection text = %q", got)
	}
}

func TestRegistryDestroyClosesPty(t *testing.T) {
	r := NewRegistry()
	closed := false
	id := r.Create(10, 5, term.NewStub(10, 5), fakePty{onClose: func() { closed = true }})
	if r.Count() != 1 {
		t.Fatalf("count = %d", r.Count())
	}
	if err := r.Destroy(id); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if !closed {
		t.Fatalf("expected pty to be closed on destroy")
	}
	if _, err := r.Get(id); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakePty struct {
	onClose func()
}

func (fakePty) Read([]byte) (int, error)  { return 0, nil }
func (fakePty) Write([]byte) (int, error) { return 0, nil }
func (fakePty) Resize(int, int) error     { return nil }
func (f fakePty) Close() error {
	if f.onClose != nil {
		f.onClose()
	}
	return nil
}
