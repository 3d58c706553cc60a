// MessageHandlers (spec.md §4.8): one function per decoded client
// message kind, each enforcing the authorization policy before
// mutating session/pane state and broadcasting.
package reactor

import (
	"encoding/base64"

	"github.com/texelation/muxd/internal/auth"
	"github.com/texelation/muxd/internal/client"
	"github.com/texelation/muxd/internal/clipboard"
	"github.com/texelation/muxd/internal/layout"
	"github.com/texelation/muxd/internal/pane"
	"github.com/texelation/muxd/internal/term"
	"github.com/texelation/muxd/internal/wire"
)

var masterOnly = map[wire.ClientMessageKind]bool{
	wire.KindResize:       true,
	wire.KindNewWindow:    true,
	wire.KindCloseWindow:  true,
	wire.KindClosePane:    true,
	wire.KindSetLayout:    true,
	wire.KindSwapPanes:    true,
	wire.KindResizeLayout: true,
}

func (r *Reactor) dispatchFrame(c *client.State, data []byte, isText bool) {
	var (
		msg wire.ClientMessage
		err error
	)
	if isText {
		msg, err = wire.DecodeClientMessageJSON(data)
	} else {
		msg, err = wire.DecodeClientMessageBinary(data)
	}
	if err != nil {
		stdLog.Printf("reactor: decode client message: %v", err)
		return
	}

	debugLog.Printf("dispatch client=%s kind=%d", c.ShortID(), msg.Kind)

	// Only hello is accepted from an unauthenticated client (spec.md §4.8).
	if !c.Authenticated && msg.Kind != wire.KindHello {
		return
	}
	if c.Authenticated && r.masterID != c.ClientID && masterOnly[msg.Kind] {
		return
	}

	switch msg.Kind {
	case wire.KindHello:
		r.handleHello(c, msg)
	case wire.KindRequestMaster:
		r.setMaster(c)
	case wire.KindKey:
		r.handleKey(c, msg)
	case wire.KindText:
		r.handleText(c, msg)
	case wire.KindResize:
		r.handleResize(c, msg)
	case wire.KindScroll:
		r.handleScroll(c, msg)
	case wire.KindPing:
		r.handlePing(c, msg)
	case wire.KindSync:
		r.handleSync(c, msg)
	case wire.KindResync:
		r.handleResync(c, msg)
	case wire.KindFocus:
		r.handleFocus(c, msg)
	case wire.KindNewWindow:
		r.handleNewWindow(c, msg)
	case wire.KindCloseWindow:
		r.handleCloseWindow(c, msg)
	case wire.KindClosePane:
		r.handleClosePane(c, msg)
	case wire.KindSetLayout:
		r.handleSetLayout(c, msg)
	case wire.KindSwapPanes:
		r.handleSwapPanes(c, msg)
	case wire.KindResizeLayout:
		r.handleResizeLayout(c, msg)
	case wire.KindMouse:
		r.handleMouse(c, msg)
	case wire.KindSelectAll:
		r.handleSelectAll(c, msg)
	case wire.KindClearSelection:
		r.handleClearSelection(c, msg)
	case wire.KindClipboardResponse:
		r.handleClipboardResponse(c, msg)
	case wire.KindClipboardSet:
		r.handleClipboardSetMsg(c, msg)
	case wire.KindCopy:
		r.handleCopy(c, msg)
	case wire.KindClipboardPaste:
		r.handleClipboardPaste(c, msg)
	case wire.KindUnknown:
		// dropped, per spec.md §4.7's explicit unknown tag.
	}
}

func (r *Reactor) handleHello(c *client.State, msg wire.ClientMessage) {
	role := auth.RoleInvalid
	if r.Auth != nil {
		role = r.Auth.Validate(msg.Token)
	}
	if role == auth.RoleInvalid {
		r.removeClient(c)
		return
	}
	clientID := msg.ClientID
	if clientID == "" {
		clientID = client.NewClientID()
	}
	c.Authenticate(clientID, msg.Token)
	c.ThemeFG = msg.ThemeFG
	c.ThemeBG = msg.ThemeBG
	if role == auth.RoleMaster {
		r.setMaster(c)
	} else {
		c.Role = client.RoleView
	}
	r.primeClient(c)
}

func (r *Reactor) activePane() (uint16, bool) {
	return r.Session.ActivePaneID()
}

func (r *Reactor) handleKey(c *client.State, msg wire.ClientMessage) {
	paneID, ok := r.activePane()
	if !ok {
		return
	}
	if isModifierOnly(msg.KeyCode) && msg.Rune == 0 {
		return
	}
	pn, err := r.Session.Panes.Get(paneID)
	if err != nil {
		return
	}
	appCursor := pn.Terminal.Modes()&term.ModeApplicationCursorKeys != 0
	out := encodeKey(int(msg.KeyCode), msg.Rune, msg.Modifiers, appCursor)
	if len(out) == 0 {
		return
	}
	if pn.HasSelection() {
		pn.ClearSelection()
		r.broadcastPaneUpdate(paneID)
	}
	_ = pn.WriteInput(out)
}

func (r *Reactor) handleText(c *client.State, msg wire.ClientMessage) {
	paneID, ok := r.activePane()
	if !ok {
		return
	}
	pn, err := r.Session.Panes.Get(paneID)
	if err != nil {
		return
	}
	out := wrapBracketedPaste(pn.Terminal.Modes(), []byte(msg.Text))
	if pn.HasSelection() {
		pn.ClearSelection()
		r.broadcastPaneUpdate(paneID)
	}
	_ = pn.WriteInput(out)
}

func (r *Reactor) handleResize(c *client.State, msg wire.ClientMessage) {
	if msg.Cols == 0 || msg.Cols > 500 || msg.Rows == 0 || msg.Rows > 500 {
		return
	}
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	if err := pn.Resize(msg.Cols, msg.Rows); err != nil {
		return
	}
	r.broadcastPaneUpdate(msg.PaneID)
}

func (r *Reactor) handleScroll(c *client.State, msg wire.ClientMessage) {
	paneID, ok := r.activePane()
	if !ok {
		return
	}
	pn, err := r.Session.Panes.Get(paneID)
	if err != nil {
		return
	}
	pn.Scroll(msg.ScrollDelta)
}

func (r *Reactor) handlePing(c *client.State, msg wire.ClientMessage) {
	r.sendServerMessage(c, wire.MsgPong, wire.PongMsg{TimestampMs: msg.TimestampMs}, false)
}

// handleSync reconciles a client's acknowledged generation with the
// pane's current one, replying only if the client is actually stale
// (spec.md §4.9).
func (r *Reactor) handleSync(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	c.SetGeneration(msg.PaneID, msg.Gen)
	if msg.Gen != pn.Generation() {
		r.sendPaneUpdate(c, msg.PaneID)
	}
}

// handleResync forces a full snapshot regardless of generation
// (spec.md §4.9's explicit resync kind, used after a client suspects
// it has diverged).
func (r *Reactor) handleResync(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	r.sendServerMessage(c, wire.MsgSnapshot, snapshotMsg(pn.GenerateSnapshot()), true)
	c.SetGeneration(msg.PaneID, pn.Generation())
}

func (r *Reactor) handleFocus(c *client.State, msg wire.ClientMessage) {
	wid := r.Session.ActiveWindowID()
	w, err := r.Session.Window(wid)
	if err != nil {
		return
	}
	old := w.ActivePaneID()
	if !w.SetActivePane(msg.PaneID) {
		return
	}
	r.broadcastPaneUpdate(old)
	r.broadcastPaneUpdate(msg.PaneID)
}

func (r *Reactor) handleNewWindow(c *client.State, msg wire.ClientMessage) {
	templateID := msg.TemplateID
	if templateID == "" {
		templateID = "single"
	}
	tmpl, err := r.Layouts.Get(templateID)
	if err != nil {
		return
	}
	w := r.Session.CreateWindow(templateID, tmpl)
	for _, id := range w.PaneIDs() {
		r.SpawnPaneReader(id)
	}
	r.broadcastLayout(w.ID)
}

func (r *Reactor) handleCloseWindow(c *client.State, msg wire.ClientMessage) {
	if len(r.Session.WindowIDs()) <= 1 {
		return
	}
	_ = r.Session.CloseWindow(msg.WindowID)
}

func (r *Reactor) handleClosePane(c *client.State, msg wire.ClientMessage) {
	wid := r.Session.ActiveWindowID()
	w, err := r.Session.Window(wid)
	if err != nil {
		return
	}
	if len(r.Session.WindowIDs()) <= 1 && len(w.PaneIDs()) <= 1 {
		return
	}
	w.RemovePane(msg.PaneID)
	_ = r.Session.Panes.Destroy(msg.PaneID)
	r.broadcastLayout(wid)
}

func (r *Reactor) handleSetLayout(c *client.State, msg wire.ClientMessage) {
	w, err := r.Session.Window(msg.WindowID)
	if err != nil {
		return
	}
	tmpl, err := r.Layouts.Get(msg.TemplateID)
	if err != nil {
		return
	}
	w.SetLayoutFromTemplate(msg.TemplateID, tmpl, func() uint16 {
		id := r.Session.SpawnPane()
		r.SpawnPaneReader(id)
		return id
	})
	r.broadcastLayout(w.ID)
}

func (r *Reactor) handleSwapPanes(c *client.State, msg wire.ClientMessage) {
	w, err := r.Session.Window(msg.WindowID)
	if err != nil {
		return
	}
	if w.SwapPanePositions(msg.PaneID1, msg.PaneID2) {
		r.broadcastLayout(w.ID)
	}
}

func (r *Reactor) handleResizeLayout(c *client.State, msg wire.ClientMessage) {
	if msg.Nodes == nil {
		return
	}
	w, err := r.Session.Window(msg.WindowID)
	if err != nil {
		return
	}
	if err := w.ResizeLayout(fromLayoutWire(*msg.Nodes)); err != nil {
		return
	}
	r.broadcastLayout(w.ID)
}

func fromLayoutWire(w wire.LayoutNodeWire) *layout.Node {
	n := &layout.Node{Width: w.Width, Height: w.Height}
	if w.Kind == 1 {
		n.Kind = layout.KindContainer
		n.Children = make([]*layout.Node, len(w.Children))
		for i, ch := range w.Children {
			n.Children[i] = fromLayoutWire(ch)
		}
		return n
	}
	n.Kind = layout.KindPane
	if w.PaneID != nil {
		id := *w.PaneID
		n.PaneID = &id
	}
	return n
}

// Mouse state values carried in ClientMessage.MouseState (spec.md §4.8).
const (
	mouseDown  = 0
	mouseMove  = 1
	mouseUp    = 2
	mousePaste = 3
)

func (r *Reactor) handleMouse(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	modes := pn.Terminal.Modes()
	negotiated := modes&mouseModeBits != 0
	shiftOverride := msg.MouseMods&ModShift != 0
	if !negotiated || shiftOverride {
		r.handleLocalSelection(c, pn, msg)
		return
	}
	if msg.MouseState == mouseMove && modes&term.ModeMouseMotion == 0 {
		return
	}
	seq := encodeMouseEvent(modes, msg.Button, msg.X, msg.Y, msg.MouseMods, msg.MouseState)
	if seq == nil {
		return
	}
	_ = pn.WriteInput(seq)
}

func (r *Reactor) handleLocalSelection(c *client.State, pn *pane.Pane, msg wire.ClientMessage) {
	switch msg.MouseState {
	case mouseDown:
		pn.StartSelection(msg.X, msg.Y)
	case mouseMove:
		pn.UpdateSelection(msg.X, msg.Y, false)
	case mouseUp:
		pn.EndSelection()
		text := pn.SelectionText()
		if text != "" {
			_ = r.Clipboard.Set(clipboard.RegisterPrimary, []byte(text))
			r.broadcastClipboard(clipboard.RegisterPrimary)
		} else {
			pn.ClearSelection()
		}
		r.broadcastPaneUpdate(msg.PaneID)
	case mousePaste:
		if data, ok := r.Clipboard.Get(clipboard.RegisterPrimary); ok {
			_ = pn.WriteInput(wrapBracketedPaste(pn.Terminal.Modes(), data))
		}
	}
}

func (r *Reactor) handleSelectAll(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	pn.SelectAll()
	r.broadcastPaneUpdate(msg.PaneID)
}

func (r *Reactor) handleClearSelection(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	pn.ClearSelection()
	r.broadcastPaneUpdate(msg.PaneID)
}

// handleClipboardResponse delivers the master's answer to an OSC-52
// GET back into the requesting pane as an OSC 52 reply sequence
// (spec.md §4.8).
func (r *Reactor) handleClipboardResponse(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	if _, err := base64.StdEncoding.DecodeString(msg.Data); err != nil {
		return
	}
	_ = pn.WriteInput(oscClipboardReply(msg.Clipboard, msg.Data))
}

func (r *Reactor) handleClipboardSetMsg(c *client.State, msg wire.ClientMessage) {
	reg := registerFromName(msg.Clipboard)
	if err := r.Clipboard.SetBase64(reg, msg.Data); err != nil {
		return
	}
	r.broadcastClipboard(reg)
}

func (r *Reactor) handleCopy(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	text := pn.SelectionText()
	if text == "" {
		return
	}
	_ = r.Clipboard.Set(clipboard.RegisterSystem, []byte(text))
	r.broadcastClipboard(clipboard.RegisterSystem)
}

func (r *Reactor) handleClipboardPaste(c *client.State, msg wire.ClientMessage) {
	pn, err := r.Session.Panes.Get(msg.PaneID)
	if err != nil {
		return
	}
	reg := registerFromName(msg.Clipboard)
	data, ok := r.Clipboard.Get(reg)
	if !ok {
		return
	}
	_ = pn.WriteInput(wrapBracketedPaste(pn.Terminal.Modes(), data))
}

func (r *Reactor) broadcastClipboard(reg clipboard.Register) {
	b64, ok := r.Clipboard.GetBase64(reg)
	if !ok {
		return
	}
	msg := wire.ClipboardMsg{Clipboard: registerName(reg), Data: b64}
	for _, c := range r.clients {
		if c.Authenticated {
			r.sendServerMessage(c, wire.MsgClipboard, msg, false)
		}
	}
}

// oscClipboardReply builds an OSC 52 reply sequence carrying
// already-base64 data, the form a pane's application expects back on
// an OSC-52 GET (spec.md §4.8).
func oscClipboardReply(kind, b64Data string) []byte {
	out := []byte("\x1b]52;")
	out = append(out, kind...)
	out = append(out, ';')
	out = append(out, b64Data...)
	out = append(out, '\x07')
	return out
}
