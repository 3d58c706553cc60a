// Package pane implements the Pane and PaneRegistry components of
// spec.md §4.1–§4.2: a pane owns a Terminal and an optional Pty,
// advances a monotonic generation counter, and latches one-shot
// events for the reactor to drain.
package pane

import (
	"errors"
	"time"

	"github.com/texelation/muxd/internal/term"
)

// Pty is the capability a Pane needs from its pseudoterminal. The
// concrete adapter lives in internal/ptyio; pseudo-panes (spec.md §3:
// "such as the internal debug pane") have a nil Pty.
type Pty interface {
	Read([]byte) (int, error)
	Write([]byte) (int, error)
	Resize(cols, rows int) error
	Close() error
}

// SyncTimeout is the forced-flush deadline for synchronized-output
// mode (spec.md §4.1, §5).
const SyncTimeout = 1 * time.Second

// ClipboardGetTimeout is how long an OSC-52 GET stays pending before
// being dropped (spec.md §3, §5).
const ClipboardGetTimeout = 2 * time.Second

var (
	// ErrPtyHangup marks a fatal I/O condition on the pane's Pty
	// (spec.md §7: "PTY hangup: EIO/EPIPE -> mark pane non-alive").
	ErrPtyHangup = errors.New("pane: pty hangup")
	// ErrNoPty is returned by write/resize operations on a pseudo-pane.
	ErrNoPty = errors.New("pane: no pty attached")
)

// ClipboardGetPending tracks one outstanding OSC-52 GET forwarded to
// the master (spec.md §3).
type ClipboardGetPending struct {
	Kind     byte
	Deadline time.Time
}

// Pane is an independently mutable terminal surface backed by an
// optional PTY (glossary).
type Pane struct {
	ID   uint16
	Cols uint16
	Rows uint16

	Terminal term.Terminal
	Pty      Pty // nil for pseudo-panes

	alive bool

	syncEnabled   bool
	syncObserved  bool // Terminal's sync-output bit as of the last Feed
	syncStartedAt time.Time

	fg, bg    *[3]byte
	clipGet   *ClipboardGetPending
	selActive bool

	// pending one-shot flags not owned by the Terminal: a bell/title/etc
	// is drained from the Terminal itself via Take*, so Pane stores only
	// what the Terminal cannot: clipboard-get pendency and theme state.
}

// New creates a pane wrapping t (and optionally p) at the given size.
func New(id uint16, cols, rows uint16, t term.Terminal, p Pty) *Pane {
	return &Pane{ID: id, Cols: cols, Rows: rows, Terminal: t, Pty: p, alive: true}
}

func (pn *Pane) Alive() bool { return pn.alive }

// Feed applies raw PTY output to the Terminal, reconciling
// synchronized-output transitions (spec.md §4.1).
func (pn *Pane) Feed(data []byte) {
	pn.Terminal.Feed(data)
	after := pn.Terminal.Modes()&term.ModeSyncOutput != 0

	switch {
	case !pn.syncObserved && after:
		pn.syncEnabled = true
		pn.syncStartedAt = time.Now()
	case pn.syncObserved && !after:
		pn.syncEnabled = false
	}
	pn.syncObserved = after
}

// ReconcileSync forces synchronized-output off if SyncTimeout has
// elapsed since entry, per spec.md §4.1/§5. Returns true if a forced
// flush occurred (the reactor must then broadcast an update).
func (pn *Pane) ReconcileSync(now time.Time) bool {
	if !pn.syncEnabled {
		return false
	}
	if now.Sub(pn.syncStartedAt) < SyncTimeout {
		return false
	}
	pn.syncEnabled = false
	return true
}

// SyncEnabled reports whether broadcast should currently be withheld.
func (pn *Pane) SyncEnabled() bool { return pn.syncEnabled }

// WriteInput forwards bytes to the PTY, per spec.md §4.1.
func (pn *Pane) WriteInput(data []byte) error {
	if pn.Pty == nil {
		return ErrNoPty
	}
	_, err := pn.Pty.Write(data)
	if err != nil {
		pn.alive = false
		return ErrPtyHangup
	}
	return nil
}

// Resize resizes the PTY (if any) and the Terminal, per spec.md §4.1.
func (pn *Pane) Resize(cols, rows uint16) error {
	if cols == 0 || rows == 0 {
		return errors.New("pane: invalid dimensions")
	}
	if pn.Pty != nil {
		if err := pn.Pty.Resize(int(cols), int(rows)); err != nil {
			return err
		}
	}
	pn.Terminal.Resize(int(cols), int(rows))
	pn.Cols, pn.Rows = cols, rows
	return nil
}

// Close closes the PTY before dropping the Terminal, per spec.md §3.
func (pn *Pane) Close() {
	if pn.Pty != nil {
		_ = pn.Pty.Close()
	}
	pn.alive = false
}

// Generation returns the Terminal's current generation counter.
func (pn *Pane) Generation() uint64 { return pn.Terminal.Generation() }

// Delta computes a minimal encoding of dirty rows relative to
// clientGen (spec.md §4.1): the indices that changed plus their
// current content, so a client can overwrite exactly those rows in its
// cached grid and land on the same matrix generate_snapshot() would
// produce. ok is false when the retention window has been exceeded and
// the caller must fall back to a snapshot.
func (pn *Pane) Delta(clientGen uint64) (fromGen uint64, rows []int, cells [][]term.Cell, ok bool) {
	rows, ok = pn.Terminal.DirtyRows(clientGen)
	if !ok {
		return clientGen, nil, nil, false
	}
	full := pn.Terminal.Rows()
	cells = make([][]term.Cell, len(rows))
	for i, idx := range rows {
		if idx >= 0 && idx < len(full) {
			cells[i] = full[idx]
		}
	}
	return clientGen, rows, cells, true
}

// Snapshot is a full serialization of the pane's visible state
// (spec.md §4.1 generate_snapshot).
type Snapshot struct {
	PaneID   uint16
	Cols     uint16
	Rows     uint16
	Gen      uint64
	Grid     [][]term.Cell
	CursorX  int
	CursorY  int
	CursorOn bool
}

func (pn *Pane) GenerateSnapshot() Snapshot {
	x, y, visible := pn.Terminal.Cursor()
	return Snapshot{
		PaneID:   pn.ID,
		Cols:     pn.Cols,
		Rows:     pn.Rows,
		Gen:      pn.Terminal.Generation(),
		Grid:     pn.Terminal.Rows(),
		CursorX:  x,
		CursorY:  y,
		CursorOn: visible,
	}
}

// Scroll accepts a scrollback request and does nothing with it: the
// core has no scrollback buffer of its own, and the Terminal interface
// has no scroll method, so delta is not forwarded anywhere and the
// visible grid does not move.
func (pn *Pane) Scroll(delta int) {
	// The Terminal collaborator owns scrollback state; the core has
	// nothing to do beyond having accepted the request.
	_ = delta
}

// --- Selection API, spec.md §4.1 ---

func (pn *Pane) StartSelection(x, y int) {
	pn.Terminal.StartSelection(x, y)
	pn.selActive = true
}

func (pn *Pane) UpdateSelection(x, y int, rectangular bool) {
	pn.Terminal.UpdateSelection(x, y, rectangular)
}

func (pn *Pane) EndSelection() {
	pn.Terminal.EndSelection()
	pn.selActive = false
}

func (pn *Pane) ClearSelection() {
	pn.Terminal.ClearSelection()
	pn.selActive = false
}

func (pn *Pane) SelectAll() {
	pn.Terminal.SelectAll()
	pn.selActive = true
}

func (pn *Pane) SelectionText() string { return pn.Terminal.SelectionText() }

func (pn *Pane) HasSelection() bool { return pn.selActive }

// IsSelectionAtStart reports whether (x, y) is the selection's anchor
// cell (spec.md §4.1).
func (pn *Pane) IsSelectionAtStart(x, y int) bool { return pn.Terminal.IsSelectionAtStart(x, y) }

// --- Event accessors, spec.md §4.1 ---

func (pn *Pane) TakeBell() bool                           { return pn.Terminal.TakeBell() }
func (pn *Pane) TakeTitle() (string, bool)                { return pn.Terminal.TakeTitle() }
func (pn *Pane) TakeNotification() (string, string, bool) { return pn.Terminal.TakeNotification() }
func (pn *Pane) TakeProgress() (string, int, bool)        { return pn.Terminal.TakeProgress() }
func (pn *Pane) TakeShellEvent() (string, int, bool)      { return pn.Terminal.TakeShellEvent() }
func (pn *Pane) TakeClipboardSet() (string, string, bool) { return pn.Terminal.TakeClipboardSet() }

// SetThemeColors records master-theme overrides (spec.md §3) and
// forwards them to the Terminal, which applies them when the pane
// answers OSC 10/11 queries.
func (pn *Pane) SetThemeColors(fg, bg [3]byte) {
	pn.fg, pn.bg = &fg, &bg
	pn.Terminal.SetThemeColors(fg, bg)
}

// RequestClipboardGet latches a pending OSC-52 GET, per spec.md §3.
func (pn *Pane) RequestClipboardGet(kind byte, now time.Time) {
	pn.clipGet = &ClipboardGetPending{Kind: kind, Deadline: now.Add(ClipboardGetTimeout)}
}

// TakeClipboardGetPending returns and clears the pending GET if one
// exists and has not expired; expired returns ok=false, expired=true
// so the reactor can drop it per spec.md §4.8.
func (pn *Pane) TakeClipboardGetPending(now time.Time) (kind byte, ok bool, expired bool) {
	if pn.clipGet == nil {
		return 0, false, false
	}
	p := pn.clipGet
	pn.clipGet = nil
	if now.After(p.Deadline) {
		return 0, false, true
	}
	return p.Kind, true, false
}
