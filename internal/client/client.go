// Package client implements spec.md §4.6's ClientState: one connected
// viewer — its channel, identity, authentication, and per-pane
// delivery cursor — grounded on the teacher's per-connection
// lastSent/lastAcked bookkeeping in
// _examples/framegrace-texelation/internal/runtime/server/connection.go,
// generalized from a single running sequence number to a per-pane
// generation map as spec.md §3 requires.
package client

import "github.com/google/uuid"

// Role distinguishes the one master client (full input authority) from
// view-only clients (spec.md §6).
type Role int

const (
	RoleView Role = iota
	RoleMaster
)

// FrameChannel is the duplex transport a client's messages travel over
// (spec.md §4.7's wire sits on top of this); the concrete adapter
// lives in internal/wschannel.
type FrameChannel interface {
	Send(frame []byte) error
	Close() error
}

// State is one connected client (spec.md §4.6).
type State struct {
	Channel FrameChannel

	Authenticated bool
	ClientID      string // empty until the first hello
	AuthToken     string // kept for later role upgrades
	Role          Role

	ThemeFG *[3]byte
	ThemeBG *[3]byte

	paneGenerations map[uint16]uint64
}

// New wraps ch in an unauthenticated ClientState awaiting hello.
func New(ch FrameChannel) *State {
	return &State{Channel: ch, paneGenerations: make(map[uint16]uint64)}
}

// Authenticate records the client's self-chosen id (a v4 UUID string
// per spec.md §3) and token on its first hello.
func (s *State) Authenticate(clientID, token string) {
	s.Authenticated = true
	s.ClientID = clientID
	s.AuthToken = token
}

// ShortID returns the first 8 characters of ClientID for logging
// (spec.md §4.6), or the full id if shorter.
func (s *State) ShortID() string {
	if len(s.ClientID) <= 8 {
		return s.ClientID
	}
	return s.ClientID[:8]
}

// GetGeneration returns the last generation successfully delivered for
// paneID, defaulting to 0 when unseen (spec.md §4.6).
func (s *State) GetGeneration(paneID uint16) uint64 {
	return s.paneGenerations[paneID]
}

// SetGeneration records the generation most recently delivered for
// paneID.
func (s *State) SetGeneration(paneID uint16, gen uint64) {
	s.paneGenerations[paneID] = gen
}

// ForgetPane drops delivery state for a destroyed pane.
func (s *State) ForgetPane(paneID uint16) {
	delete(s.paneGenerations, paneID)
}

// Disconnect releases the client's channel; its UUID and token are
// simply dropped with the struct (spec.md §4.6).
func (s *State) Disconnect() {
	if s.Channel != nil {
		_ = s.Channel.Close()
		s.Channel = nil
	}
}

// NewClientID mints a v4 UUID string, the client-identifier form
// spec.md §3 specifies.
func NewClientID() string {
	return uuid.NewString()
}
