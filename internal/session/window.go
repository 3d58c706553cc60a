// Package session implements spec.md §4.3/§4.5: Window (an ordered
// set of panes plus a layout and an active pane) and Session (windows
// by id plus the active window), grounded on the teacher's
// _examples/framegrace-texelation/texel/tree.go active-leaf tracking
// and internal/runtime/server/session.go sequencing idiom, generalized
// from the teacher's GUI desktop-engine model to spec.md's windows.
package session

import (
	"errors"

	"github.com/texelation/muxd/internal/layout"
)

var (
	ErrPaneNotInWindow = errors.New("session: pane not a member of this window")
	ErrLayoutShape     = errors.New("session: layout shape does not match window")
)

// Window is an ordered sequence of pane-ids plus a layout tree and an
// active-pane-id (spec.md §3).
type Window struct {
	ID           uint16
	paneIDs      []uint16 // positional, stable order
	activePaneID uint16
	templateID   string
	layoutTree   *layout.Node
}

// NewWindow creates a window already populated with paneIDs, the first
// of which becomes active (spec.md §4.5: sessions create windows
// "populated with the right number of shell panes").
func NewWindow(id uint16, paneIDs []uint16) *Window {
	w := &Window{ID: id, paneIDs: append([]uint16(nil), paneIDs...)}
	if len(paneIDs) > 0 {
		w.activePaneID = paneIDs[0]
	}
	return w
}

// PaneIDs returns the window's panes in stable order.
func (w *Window) PaneIDs() []uint16 { return append([]uint16(nil), w.paneIDs...) }

func (w *Window) ActivePaneID() uint16 { return w.activePaneID }

func (w *Window) TemplateID() string { return w.templateID }

func (w *Window) LayoutTree() *layout.Node { return w.layoutTree }

func (w *Window) contains(id uint16) bool {
	for _, p := range w.paneIDs {
		if p == id {
			return true
		}
	}
	return false
}

// AddPane appends a pane id (spec.md §4.3).
func (w *Window) AddPane(id uint16) {
	w.paneIDs = append(w.paneIDs, id)
}

// RemovePane preserves order; if the removed pane was active, the
// first remaining pane becomes active (spec.md §4.3).
func (w *Window) RemovePane(id uint16) {
	for i, p := range w.paneIDs {
		if p == id {
			w.paneIDs = append(w.paneIDs[:i:i], w.paneIDs[i+1:]...)
			break
		}
	}
	if w.activePaneID == id {
		if len(w.paneIDs) > 0 {
			w.activePaneID = w.paneIDs[0]
		} else {
			w.activePaneID = 0
		}
	}
}

// SwapPanePositions swaps two panes' order positions; false if either
// is absent (spec.md §4.3).
func (w *Window) SwapPanePositions(a, b uint16) bool {
	ia, ib := -1, -1
	for i, p := range w.paneIDs {
		if p == a {
			ia = i
		}
		if p == b {
			ib = i
		}
	}
	if ia == -1 || ib == -1 {
		return false
	}
	w.paneIDs[ia], w.paneIDs[ib] = w.paneIDs[ib], w.paneIDs[ia]
	return true
}

// SetActivePane sets active if present (spec.md §4.3).
func (w *Window) SetActivePane(id uint16) bool {
	if !w.contains(id) {
		return false
	}
	w.activePaneID = id
	return true
}

// SetLayoutFromTemplate deep-clones tmpl and assigns this window's
// pane-ids to its pane-slots in order; template slots beyond the
// window's current pane count trigger newPanes (a caller-supplied
// shell-pane factory) to grow the window to template capacity; slots
// fewer than the window's pane count leave the extra panes resident
// but unrendered (hidden), per spec.md §4.8.
func (w *Window) SetLayoutFromTemplate(templateID string, tmpl *layout.Node, newPane func() uint16) {
	need := layout.CountPanes(tmpl)
	for len(w.paneIDs) < need {
		w.AddPane(newPane())
	}
	clone := layout.Clone(tmpl)
	layout.AssignPaneIDs(clone, w.paneIDs[:need])
	w.templateID = templateID
	w.layoutTree = clone
}

// ResizeLayout rewrites only dimensions in the existing tree
// (pane-ids preserved); fails if shapes differ or the percentage rule
// is violated (spec.md §4.8).
func (w *Window) ResizeLayout(nodes *layout.Node) error {
	if w.layoutTree == nil {
		return ErrLayoutShape
	}
	if err := layout.ValidatePercentages(nodes); err != nil {
		return err
	}
	if err := layout.CopyDimensions(w.layoutTree, nodes); err != nil {
		return err
	}
	return nil
}
