package reactor

import (
	"io"
	"log"
	"os"
)

// stdLog and debugLog follow the teacher's two-logger convention: a
// normal logger always writing to stderr, and a debug logger that
// defaults to io.Discard and is only redirected to stderr once
// SetVerboseLogging(true) is called (by -verbose on the muxd CLI).
var (
	stdLog   = log.New(os.Stderr, "", log.LstdFlags)
	debugLog = log.New(io.Discard, "[debug] ", log.LstdFlags)
)

// SetVerboseLogging toggles the reactor's per-dispatch debug trace.
func SetVerboseLogging(enabled bool) {
	if enabled {
		debugLog.SetOutput(os.Stderr)
	} else {
		debugLog.SetOutput(io.Discard)
	}
}

// Stats is the payload the admin control socket's "status" verb
// surfaces (spec.md §6 names status as an admin verb but leaves its
// payload unspecified); adapted from the richer
// SessionStats/FocusMetrics pair the teacher tracks, narrowed to the
// counters this spec's admin surface actually needs.
type Stats struct {
	Clients       int
	MasterID      string
	Windows       int
	Panes         int
	ActiveWindow  uint16
	ActivePane    uint16
	HasActivePane bool
}

// Stats snapshots the reactor's current counters. Safe to call only
// from within the reactor loop (admin connections are handled there).
func (r *Reactor) Stats() Stats {
	paneID, ok := r.Session.ActivePaneID()
	return Stats{
		Clients:       len(r.clients),
		MasterID:      r.masterID,
		Windows:       len(r.Session.WindowIDs()),
		Panes:         r.Session.Panes.Count(),
		ActiveWindow:  r.Session.ActiveWindowID(),
		ActivePane:    paneID,
		HasActivePane: ok,
	}
}
