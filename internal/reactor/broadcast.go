package reactor

import (
	"bytes"

	"github.com/texelation/muxd/internal/client"
	"github.com/texelation/muxd/internal/clipboard"
	"github.com/texelation/muxd/internal/layout"
	"github.com/texelation/muxd/internal/pane"
	"github.com/texelation/muxd/internal/term"
	"github.com/texelation/muxd/internal/wire"
)

// sendServerMessage frames v as the given discriminator and writes it
// to c's channel (spec.md §4.7: "Each begins with a discriminator
// byte and carries MessagePack-like payloads").
func (r *Reactor) sendServerMessage(c *client.State, t wire.MessageType, v any, compress bool) {
	payload, err := wire.EncodeServerMessageBinary(v, compress)
	if err != nil {
		return
	}
	var buf bytes.Buffer
	hdr := wire.Header{Version: wire.Version, Type: t, Flags: wire.FlagChecksum}
	if err := wire.WriteFrame(&buf, hdr, payload); err != nil {
		return
	}
	_ = c.Channel.Send(buf.Bytes())
}

func toCellWire(rows [][]term.Cell) [][]wire.CellWire {
	out := make([][]wire.CellWire, len(rows))
	for i, row := range rows {
		wrow := make([]wire.CellWire, len(row))
		for j, cell := range row {
			wrow[j] = wire.CellWire{Rune: cell.Rune, FG: cell.FG, BG: cell.BG, Attrs: cell.Attrs}
		}
		out[i] = wrow
	}
	return out
}

func snapshotMsg(s pane.Snapshot) wire.SnapshotMsg {
	return wire.SnapshotMsg{
		PaneID:   s.PaneID,
		Cols:     s.Cols,
		Rows:     s.Rows,
		Gen:      s.Gen,
		Grid:     toCellWire(s.Grid),
		CursorX:  s.CursorX,
		CursorY:  s.CursorY,
		CursorOn: s.CursorOn,
	}
}

func toLayoutWire(n *layout.Node) wire.LayoutNodeWire {
	if n == nil {
		return wire.LayoutNodeWire{}
	}
	w := wire.LayoutNodeWire{Width: n.Width, Height: n.Height}
	if n.Kind == layout.KindContainer {
		w.Kind = 1
		w.Children = make([]wire.LayoutNodeWire, len(n.Children))
		for i, c := range n.Children {
			w.Children[i] = toLayoutWire(c)
		}
		return w
	}
	if n.PaneID != nil {
		id := *n.PaneID
		w.PaneID = &id
	}
	return w
}

// latchedPaneEvents snapshots every one-shot event a pane's Terminal
// latches (spec.md §4.1's Take* family). It is taken ONCE per pane per
// broadcast round and then handed to every client, because Take*
// destructively drains the Terminal: calling it again per client would
// let only the first client in r.clients ever observe a title/bell/
// toast/progress/shell/clipboard event (spec.md §4.9's send_pane_update
// is defined per (client, pane) pair, not per pane).
type latchedPaneEvents struct {
	title         string
	hasTitle      bool
	bell          bool
	notifyTitle   string
	notifyBody    string
	hasNotify     bool
	progressState string
	progressValue int
	hasProgress   bool
	shellKind     string
	shellExitCode int
	hasShell      bool
	clipKind      string
	clipData      string
	hasClip       bool
}

func takeLatchedPaneEvents(pn *pane.Pane) latchedPaneEvents {
	var e latchedPaneEvents
	e.title, e.hasTitle = pn.TakeTitle()
	e.bell = pn.TakeBell()
	e.notifyTitle, e.notifyBody, e.hasNotify = pn.TakeNotification()
	e.progressState, e.progressValue, e.hasProgress = pn.TakeProgress()
	e.shellKind, e.shellExitCode, e.hasShell = pn.TakeShellEvent()
	e.clipKind, e.clipData, e.hasClip = pn.TakeClipboardSet()
	return e
}

// sendLatchedPaneEvents delivers one pane's already-taken latched
// events to a single client.
func (r *Reactor) sendLatchedPaneEvents(c *client.State, paneID uint16, e latchedPaneEvents, activeInWindow bool) {
	if e.hasTitle {
		r.sendServerMessage(c, wire.MsgTitle, wire.TitleMsg{PaneID: paneID, Title: e.title}, false)
	}
	if activeInWindow && e.bell {
		r.sendServerMessage(c, wire.MsgBell, wire.BellMsg{PaneID: paneID}, false)
	}
	if e.hasNotify {
		r.sendServerMessage(c, wire.MsgToast, wire.ToastMsg{PaneID: paneID, Title: e.notifyTitle, Body: e.notifyBody}, false)
	}
	if e.hasProgress {
		r.sendServerMessage(c, wire.MsgProgress, wire.ProgressMsg{PaneID: paneID, State: e.progressState, Value: e.progressValue}, false)
	}
	if e.hasShell {
		var ec *int
		if e.shellKind == "exit" {
			v := e.shellExitCode
			ec = &v
		}
		r.sendServerMessage(c, wire.MsgShellIntegration, wire.ShellIntegrationMsg{PaneID: paneID, Kind: e.shellKind, ExitCode: ec}, false)
	}
	if e.hasClip {
		r.sendServerMessage(c, wire.MsgClipboard, wire.ClipboardMsg{Clipboard: e.clipKind, Data: e.clipData}, false)
	}
}

// sendGenerationUpdate implements the generation-based half of
// send_pane_update: a delta if the client's last-acked generation is
// still inside the retention window, otherwise a full snapshot.
func (r *Reactor) sendGenerationUpdate(c *client.State, paneID uint16, pn *pane.Pane) {
	gen := pn.Generation()
	clientGen := c.GetGeneration(paneID)
	if clientGen == gen {
		return
	}
	fromGen, rows, cells, ok := pn.Delta(clientGen)
	if ok && fromGen == clientGen {
		r.sendServerMessage(c, wire.MsgDelta, wire.DeltaMsg{
			PaneID:  paneID,
			FromGen: fromGen,
			ToGen:   gen,
			Rows:    rows,
			Cells:   toCellWire(cells),
		}, true)
	} else {
		snap := pn.GenerateSnapshot()
		r.sendServerMessage(c, wire.MsgSnapshot, snapshotMsg(snap), true)
	}
	c.SetGeneration(paneID, gen)
}

// sendPaneUpdate implements spec.md §4.9's send_pane_update for a
// single client: latched events first, then generation-based choice of
// delta vs snapshot. Used by the sync path, where only one client is
// involved; broadcastPaneUpdate below takes the latch once and fans it
// out itself rather than calling this per client.
func (r *Reactor) sendPaneUpdate(c *client.State, paneID uint16) {
	pn, err := r.Session.Panes.Get(paneID)
	if err != nil {
		return
	}
	e := takeLatchedPaneEvents(pn)
	if e.hasClip {
		_ = r.Clipboard.SetBase64(registerFromName(e.clipKind), e.clipData)
	}
	r.sendLatchedPaneEvents(c, paneID, e, r.isPaneActiveInItsWindow(paneID))
	r.sendGenerationUpdate(c, paneID, pn)
}

func (r *Reactor) isPaneActiveInItsWindow(paneID uint16) bool {
	for _, id := range r.Session.WindowIDs() {
		w, err := r.Session.Window(id)
		if err != nil {
			continue
		}
		if w.ActivePaneID() == paneID {
			return true
		}
	}
	return false
}

// broadcastPaneUpdate fans a pane's update out to every client (spec.md
// §4.9: "Every path that alters pane state ends by invoking
// Broadcaster for each client"). The latch is taken exactly once for
// the whole round and shared across clients; sendPaneUpdate's own
// latch-draining is reserved for the single-client sync path.
func (r *Reactor) broadcastPaneUpdate(paneID uint16) {
	pn, err := r.Session.Panes.Get(paneID)
	if err != nil {
		return
	}
	e := takeLatchedPaneEvents(pn)
	if e.hasClip {
		_ = r.Clipboard.SetBase64(registerFromName(e.clipKind), e.clipData)
	}
	activeInWindow := r.isPaneActiveInItsWindow(paneID)
	for _, c := range r.clients {
		if !c.Authenticated {
			continue
		}
		r.sendLatchedPaneEvents(c, paneID, e, activeInWindow)
		r.sendGenerationUpdate(c, paneID, pn)
	}
}

func (r *Reactor) broadcastLayout(windowID uint16) {
	w, err := r.Session.Window(windowID)
	if err != nil || w.LayoutTree() == nil {
		return
	}
	nodes := toLayoutWire(w.LayoutTree())
	for _, c := range r.clients {
		if !c.Authenticated {
			continue
		}
		r.sendServerMessage(c, wire.MsgLayout, wire.LayoutMsg{WindowID: windowID, Nodes: nodes}, false)
	}
}

func (r *Reactor) broadcastMasterChanged() {
	for _, c := range r.clients {
		if !c.Authenticated {
			continue
		}
		r.sendServerMessage(c, wire.MsgMasterChanged, wire.MasterChangedMsg{NewMasterID: r.masterID}, false)
	}
}

// primeClient sends the initial snapshots, layout, master_changed, and
// clipboard registers a newly connected client needs (spec.md §4.9).
// Called on accept, before hello, and again by handleHello once the
// client authenticates. Every pane is sent as a full snapshot whatever
// generation the client last saw.
func (r *Reactor) primeClient(c *client.State) {
	for _, id := range r.Session.Panes.Iter() {
		pn, err := r.Session.Panes.Get(id)
		if err != nil {
			continue
		}
		r.sendServerMessage(c, wire.MsgSnapshot, snapshotMsg(pn.GenerateSnapshot()), true)
		c.SetGeneration(id, pn.Generation())
	}
	for _, wid := range r.Session.WindowIDs() {
		r.broadcastLayoutToOne(c, wid)
	}
	r.sendServerMessage(c, wire.MsgMasterChanged, wire.MasterChangedMsg{NewMasterID: r.masterID}, false)
	for _, reg := range []clipboard.Register{clipboard.RegisterSystem, clipboard.RegisterPrimary} {
		if data, ok := r.Clipboard.GetBase64(reg); ok {
			r.sendServerMessage(c, wire.MsgClipboard, wire.ClipboardMsg{Clipboard: registerName(reg), Data: data}, false)
		}
	}
}

func (r *Reactor) broadcastLayoutToOne(c *client.State, windowID uint16) {
	w, err := r.Session.Window(windowID)
	if err != nil || w.LayoutTree() == nil {
		return
	}
	r.sendServerMessage(c, wire.MsgLayout, wire.LayoutMsg{WindowID: windowID, Nodes: toLayoutWire(w.LayoutTree())}, false)
}

func registerName(r clipboard.Register) string {
	if r == clipboard.RegisterPrimary {
		return "primary"
	}
	return "system"
}

func registerFromName(name string) clipboard.Register {
	if name == "primary" {
		return clipboard.RegisterPrimary
	}
	return clipboard.RegisterSystem
}

// setMaster promotes c to master, demoting any previous master, and
// broadcasts master_changed to all clients (spec.md §4.8, §5: "broadcast
// happens inside set_master").
func (r *Reactor) setMaster(c *client.State) {
	for _, other := range r.clients {
		if other.Role == client.RoleMaster {
			other.Role = client.RoleView
		}
	}
	c.Role = client.RoleMaster
	r.masterID = c.ClientID
	r.broadcastMasterChanged()
}
