package pane

import (
	"errors"
	"sort"

	"github.com/texelation/muxd/internal/term"
)

// ErrNotFound is returned by Get/Destroy for an unknown pane id.
var ErrNotFound = errors.New("pane: not found")

// Registry is the process-wide mapping pane-id -> Pane (spec.md §4.2).
// Identifiers are densely allocated, monotonic, never reused within a
// process lifetime (spec.md §3).
type Registry struct {
	panes  map[uint16]*Pane
	nextID uint16
}

func NewRegistry() *Registry {
	return &Registry{panes: make(map[uint16]*Pane)}
}

func (r *Registry) allocID() uint16 {
	r.nextID++
	return r.nextID
}

// Create registers a new pane wrapping the given Terminal and optional
// Pty, returning its freshly allocated id. p may be nil for a
// pseudo-pane (spec.md §3).
func (r *Registry) Create(cols, rows uint16, t term.Terminal, p Pty) uint16 {
	id := r.allocID()
	r.panes[id] = New(id, cols, rows, t, p)
	return id
}

func (r *Registry) Get(id uint16) (*Pane, error) {
	p, ok := r.panes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Destroy closes and removes a pane. No iterator may outlive this call
// (spec.md §4.2) — callers must snapshot via Iter before destroying
// mid-traversal.
func (r *Registry) Destroy(id uint16) error {
	p, ok := r.panes[id]
	if !ok {
		return ErrNotFound
	}
	p.Close()
	delete(r.panes, id)
	return nil
}

// Iter returns pane ids in ascending order for deterministic
// iteration (registry iteration order, spec.md §6).
func (r *Registry) Iter() []uint16 {
	ids := make([]uint16, 0, len(r.panes))
	for id := range r.panes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Count() int { return len(r.panes) }

// ResizeAll resizes every registered pane to the given dimensions.
// Retained for the legacy resize-all semantics some callers (e.g. an
// admin "resize-all" verb) may still want, though spec.md §9 directs
// the per-pane resize message handler to use single-pane Resize
// instead.
func (r *Registry) ResizeAll(cols, rows uint16) {
	for _, id := range r.Iter() {
		_ = r.panes[id].Resize(cols, rows)
	}
}
