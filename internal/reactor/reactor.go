// Package reactor implements spec.md §4.9's EventLoop and Broadcaster:
// the single-threaded dispatch loop that owns every client, the
// master/view roles, the clipboard registers, and the pane registry,
// feeding deterministic state transitions to MessageHandlers (handlers.go)
// and fanning updates out to clients (broadcast.go).
//
// Grounded on the teacher's lifecycle shape
// (_examples/framegrace-texelation/internal/runtime/server/server.go's
// Start/acceptLoop/Stop and connection.go's per-connection
// read-goroutine-feeds-a-channel idiom) but reshaped to spec.md §5's
// stricter rule: background goroutines exist only to perform blocking
// reads (a client's WebSocket, a pane's PTY, the admin socket's
// accept), and every one of them does nothing but hand a fully-formed
// value to a channel this package's single Run loop drains. All
// mutable state below is touched only from Run; there are no locks.
package reactor

import (
	"context"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/texelation/muxd/internal/auth"
	"github.com/texelation/muxd/internal/client"
	"github.com/texelation/muxd/internal/clipboard"
	"github.com/texelation/muxd/internal/layout"
	"github.com/texelation/muxd/internal/session"
	"github.com/texelation/muxd/internal/wire"
	"github.com/texelation/muxd/internal/wschannel"
)

// pollInterval is the readiness-poll ceiling spec.md §5 specifies.
const pollInterval = 100 * time.Millisecond

type clientFrame struct {
	c      *client.State
	data   []byte
	isText bool
}

type clientGone struct {
	c   *client.State
	err error
}

type paneFeed struct {
	paneID uint16
	data   []byte
}

type paneHungUp struct {
	paneID uint16
}

// Reactor is spec.md §3's EventLoop state plus the channels background
// readers use to hand it work.
type Reactor struct {
	Session   *session.Session
	Layouts   *layout.Database
	Auth      *auth.Store
	Clipboard *clipboard.Store

	clients  []*client.State
	masterID string
	masterFG *[3]byte
	masterBG *[3]byte

	newClients chan *client.State
	frames     chan clientFrame
	gone       chan clientGone
	paneFeeds  chan paneFeed
	paneHungs  chan paneHungUp
	adminConn  chan net.Conn

	readersStarted map[uint16]bool

	running bool
}

// New builds a Reactor bound to an already-populated session.
func New(sess *session.Session, layouts *layout.Database, authStore *auth.Store) *Reactor {
	return &Reactor{
		Session:        sess,
		Layouts:        layouts,
		Auth:           authStore,
		Clipboard:      clipboard.New(),
		newClients:     make(chan *client.State, 16),
		frames:         make(chan clientFrame, 256),
		gone:           make(chan clientGone, 16),
		paneFeeds:      make(chan paneFeed, 256),
		paneHungs:      make(chan paneHungUp, 16),
		adminConn:      make(chan net.Conn, 4),
		readersStarted: make(map[uint16]bool),
	}
}

// HandleWS upgrades an HTTP request to a WebSocket FrameChannel and
// registers a ClientState with the reactor (spec.md §1: "Any
// WebSocket-equivalent implementation suffices" for the FrameChannel;
// HTTP upgrade itself is the peripheral wrapper spec.md §1 excludes
// from the core, kept here only as the thinnest possible glue).
func (r *Reactor) HandleWS(w http.ResponseWriter, req *http.Request) {
	ch, err := wschannel.Upgrade(w, req)
	if err != nil {
		stdLog.Printf("reactor: websocket upgrade failed: %v", err)
		return
	}
	c := client.New(ch)
	r.newClients <- c
	go r.readClient(c, ch)
}

func (r *Reactor) readClient(c *client.State, ch *wschannel.Channel) {
	for {
		data, isText, err := ch.Recv()
		if err != nil {
			r.gone <- clientGone{c: c, err: err}
			return
		}
		r.frames <- clientFrame{c: c, data: data, isText: isText}
	}
}

// ServeAdmin accepts connections on the admin control socket listener
// (spec.md §1's "administrative control-socket command set") and
// hands each to the reactor loop.
func (r *Reactor) ServeAdmin(ctx context.Context, l net.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}
		r.adminConn <- conn
	}
}

func (r *Reactor) SpawnPaneReader(id uint16) {
	if r.readersStarted[id] {
		return
	}
	pn, err := r.Session.Panes.Get(id)
	if err != nil || pn.Pty == nil {
		r.readersStarted[id] = true
		return
	}
	r.readersStarted[id] = true
	go func() {
		buf := make([]byte, 64*1024)
		for {
			n, err := pn.Pty.Read(buf)
			if n > 0 {
				data := append([]byte(nil), buf[:n]...)
				r.paneFeeds <- paneFeed{paneID: id, data: data}
			}
			if err != nil {
				r.paneHungs <- paneHungUp{paneID: id}
				return
			}
		}
	}()
}

// Run drives the reactor until ctx is cancelled (spec.md §5: single
// cooperative loop, fixed dispatch order each tick: IPC, accept,
// clients, PTYs).
func (r *Reactor) Run(ctx context.Context) {
	r.running = true
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for r.running {
		select {
		case <-ctx.Done():
			r.running = false
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// Stop allows an admin "quit" command to end Run from within the loop.
func (r *Reactor) Stop() { r.running = false }

func (r *Reactor) tick() {
	r.drainAdmin()
	r.drainNewClients()
	r.drainClientFrames()
	r.drainPaneFeeds()
	r.reconcileSync()
}

func (r *Reactor) drainAdmin() {
	for {
		select {
		case conn := <-r.adminConn:
			r.handleAdminConn(conn)
		default:
			return
		}
	}
}

func (r *Reactor) drainNewClients() {
	for {
		select {
		case c := <-r.newClients:
			r.clients = append(r.clients, c)
			r.primeClient(c)
		default:
			return
		}
	}
}

// drainClientFrames dispatches at most one pending frame per client,
// visiting clients in reverse registration order (spec.md §5: "clients
// reverse-index") so a handler that removes a client from r.clients
// mid-iteration cannot skip its neighbor.
func (r *Reactor) drainClientFrames() {
	pending := map[*client.State][]byte{}
	pendingText := map[*client.State]bool{}
	draining := true
	for draining {
		select {
		case f := <-r.frames:
			pending[f.c] = f.data
			pendingText[f.c] = f.isText
		default:
			draining = false
		}
	}
	for i := len(r.clients) - 1; i >= 0; i-- {
		c := r.clients[i]
		data, ok := pending[c]
		if !ok {
			continue
		}
		r.dispatchFrame(c, data, pendingText[c])
	}
	for {
		select {
		case g := <-r.gone:
			r.removeClient(g.c)
		default:
			return
		}
	}
}

func (r *Reactor) removeClient(c *client.State) {
	for i, existing := range r.clients {
		if existing == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			break
		}
	}
	if r.masterID == c.ClientID {
		r.masterID = ""
	}
	c.Disconnect()
}

func (r *Reactor) drainPaneFeeds() {
	draining := true
	for draining {
		select {
		case f := <-r.paneFeeds:
			r.feedPane(f.paneID, f.data)
		default:
			draining = false
		}
	}
	for {
		select {
		case h := <-r.paneHungs:
			r.broadcastPaneGone(h.paneID)
		default:
			return
		}
	}
}

func (r *Reactor) feedPane(paneID uint16, data []byte) {
	pn, err := r.Session.Panes.Get(paneID)
	if err != nil {
		return
	}
	pn.Feed(data)
	if pn.SyncEnabled() {
		return
	}
	r.broadcastPaneUpdate(paneID)
}

func (r *Reactor) reconcileSync() {
	now := time.Now()
	for _, id := range r.Session.Panes.Iter() {
		pn, err := r.Session.Panes.Get(id)
		if err != nil {
			continue
		}
		if pn.ReconcileSync(now) {
			r.broadcastPaneUpdate(id)
		}
		if kind, ok, expired := pn.TakeClipboardGetPending(now); ok {
			r.forwardClipboardGet(id, kind)
		} else if expired {
			// dropped silently, per spec.md §4.8
		}
	}
}

func (r *Reactor) forwardClipboardGet(paneID uint16, kind byte) {
	master := r.findClient(r.masterID)
	if master == nil {
		return
	}
	r.sendServerMessage(master, wire.MsgClipboard, clipboardGetRequest{PaneID: paneID, Kind: kind}, false)
}

// clipboardGetRequest is forwarded to the master so it can answer an
// OSC-52 GET on the pane's behalf (spec.md §4.8).
type clipboardGetRequest struct {
	PaneID uint16
	Kind   byte
}

func (r *Reactor) findClient(id string) *client.State {
	if id == "" {
		return nil
	}
	for _, c := range r.clients {
		if c.ClientID == id {
			return c
		}
	}
	return nil
}

func (r *Reactor) broadcastPaneGone(paneID uint16) {
	for _, c := range r.clients {
		c.ForgetPane(paneID)
	}
}

// sortedClientIDs is used by the admin "status" verb.
func (r *Reactor) sortedClientIDs() []string {
	ids := make([]string, 0, len(r.clients))
	for _, c := range r.clients {
		ids = append(ids, c.ShortID())
	}
	sort.Strings(ids)
	return ids
}
