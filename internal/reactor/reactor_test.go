package reactor

import (
	"testing"

	"github.com/texelation/muxd/internal/auth"
	"github.com/texelation/muxd/internal/client"
	"github.com/texelation/muxd/internal/layout"
	"github.com/texelation/muxd/internal/pane"
	"github.com/texelation/muxd/internal/session"
	"github.com/texelation/muxd/internal/term"
	"github.com/texelation/muxd/internal/wire"
)

type fakePty struct {
	written [][]byte
	closed  bool
}

func (p *fakePty) Read([]byte) (int, error) { return 0, nil }
func (p *fakePty) Write(b []byte) (int, error) {
	p.written = append(p.written, append([]byte(nil), b...))
	return len(b), nil
}
func (p *fakePty) Resize(cols, rows int) error { return nil }
func (p *fakePty) Close() error                { p.closed = true; return nil }

type fakeChannel struct {
	sent   [][]byte
	closed bool
}

func (c *fakeChannel) Send(frame []byte) error { c.sent = append(c.sent, frame); return nil }
func (c *fakeChannel) Close() error            { c.closed = true; return nil }

func newTestReactor(t *testing.T) (*Reactor, *fakePty) {
	t.Helper()
	var pty *fakePty
	factory := func(cols, rows uint16) (term.Terminal, pane.Pty) {
		pty = &fakePty{}
		return term.NewStub(int(cols), int(rows)), pty
	}
	reg := pane.NewRegistry()
	sess := session.New(1, reg, factory)
	tmpl, err := layout.Default().Get("single")
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	sess.CreateWindow("single", tmpl)

	authStore, err := auth.New()
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}
	r := New(sess, layout.Default(), authStore)
	return r, pty
}

func helloMessage(token string) []byte {
	msg := wire.ClientMessage{Kind: wire.KindHello, ClientID: "11111111-1111-1111-1111-111111111111", Token: token}
	data, err := wire.EncodeClientMessageJSON(msg)
	if err != nil {
		panic(err)
	}
	return data
}

func TestDispatchFrameUnauthenticatedOnlyAcceptsHello(t *testing.T) {
	r, _ := newTestReactor(t)
	ch := &fakeChannel{}
	c := client.New(ch)

	keyMsg, _ := wire.EncodeClientMessageJSON(wire.ClientMessage{Kind: wire.KindKey, Rune: 'a'})
	r.dispatchFrame(c, keyMsg, true)
	if c.Authenticated {
		t.Fatalf("unauthenticated client should not be affected by non-hello frames")
	}

	r.dispatchFrame(c, helloMessage(r.Auth.ViewToken()), true)
	if !c.Authenticated {
		t.Fatalf("hello with a valid token should authenticate the client")
	}
	if c.Role != client.RoleView {
		t.Fatalf("view token should grant RoleView, got %v", c.Role)
	}
}

func TestHelloWithMasterTokenPromotesAndBroadcasts(t *testing.T) {
	r, _ := newTestReactor(t)
	ch := &fakeChannel{}
	c := client.New(ch)
	r.clients = append(r.clients, c)

	r.dispatchFrame(c, helloMessage(r.Auth.MasterToken()), true)

	if c.Role != client.RoleMaster {
		t.Fatalf("master token should grant RoleMaster, got %v", c.Role)
	}
	if r.masterID != c.ClientID {
		t.Fatalf("reactor masterID = %q, want %q", r.masterID, c.ClientID)
	}
	if len(ch.sent) == 0 {
		t.Fatalf("expected priming frames to have been sent")
	}
}

func TestHelloWithInvalidTokenDisconnects(t *testing.T) {
	r, _ := newTestReactor(t)
	ch := &fakeChannel{}
	c := client.New(ch)
	r.clients = append(r.clients, c)

	r.dispatchFrame(c, helloMessage("not-a-real-token"), true)

	if c.Authenticated {
		t.Fatalf("invalid token must not authenticate")
	}
	if !ch.closed {
		t.Fatalf("invalid token should disconnect the client's channel")
	}
}

func TestHandleKeyWritesEncodedBytesToActivePty(t *testing.T) {
	r, pty := newTestReactor(t)
	ch := &fakeChannel{}
	c := client.New(ch)
	c.Authenticate("client-1", r.Auth.MasterToken())
	c.Role = client.RoleMaster
	r.clients = append(r.clients, c)
	r.masterID = c.ClientID

	keyMsg, _ := wire.EncodeClientMessageJSON(wire.ClientMessage{Kind: wire.KindKey, KeyCode: uint32(KeyEnter)})
	r.dispatchFrame(c, keyMsg, true)

	if len(pty.written) != 1 || string(pty.written[0]) != "\r" {
		t.Fatalf("pty.written = %v, want one write of \\r", pty.written)
	}
}

func TestMasterOnlyKindRejectedFromViewClient(t *testing.T) {
	r, pty := newTestReactor(t)
	ch := &fakeChannel{}
	c := client.New(ch)
	c.Authenticate("client-1", r.Auth.ViewToken())
	c.Role = client.RoleView
	r.clients = append(r.clients, c)

	paneID, _ := r.Session.ActivePaneID()
	resizeMsg, _ := wire.EncodeClientMessageJSON(wire.ClientMessage{Kind: wire.KindResize, PaneID: paneID, Cols: 100, Rows: 40})
	r.dispatchFrame(c, resizeMsg, true)

	pn, err := r.Session.Panes.Get(paneID)
	if err != nil {
		t.Fatalf("get pane: %v", err)
	}
	if pn.Cols == 100 {
		t.Fatalf("view client's resize should have been rejected")
	}
	_ = pty
}

func TestSetMasterDemotesPreviousMaster(t *testing.T) {
	r, _ := newTestReactor(t)
	chA, chB := &fakeChannel{}, &fakeChannel{}
	a, b := client.New(chA), client.New(chB)
	a.Authenticate("a", "")
	b.Authenticate("b", "")
	r.clients = append(r.clients, a, b)

	r.setMaster(a)
	if a.Role != client.RoleMaster {
		t.Fatalf("a should be master")
	}
	r.setMaster(b)
	if b.Role != client.RoleMaster {
		t.Fatalf("b should be master")
	}
	if a.Role != client.RoleView {
		t.Fatalf("a should have been demoted")
	}
	if r.masterID != "b" {
		t.Fatalf("masterID = %q, want b", r.masterID)
	}
}
