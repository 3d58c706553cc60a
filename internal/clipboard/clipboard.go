// Package clipboard implements spec.md §4.8's clipboard core: two text
// registers ("system", "primary"), base64 in/out, and the OSC-52
// set/get plumbing that rides alongside pane updates. Grounded on
// _examples/framegrace-texelation/internal/runtime/server/connection.go's
// requestClipboardData/PopPendingClipboard plumbing, generalized from
// one ad hoc pending-request field into the two-register core spec.md
// §3/§4.8 describes.
package clipboard

import (
	"encoding/base64"
	"errors"
)

// Register names the two clipboard slots spec.md §4.8 names.
type Register int

const (
	RegisterSystem Register = iota
	RegisterPrimary
)

var ErrUnknownRegister = errors.New("clipboard: unknown register")

// Store holds the EventLoop's ipc_clipboard_{system,primary} state
// (spec.md §3's EventLoop state).
type Store struct {
	system  []byte
	primary []byte
	hasSys  bool
	hasPrim bool
}

func New() *Store { return &Store{} }

func (s *Store) slot(r Register) (*[]byte, *bool, error) {
	switch r {
	case RegisterSystem:
		return &s.system, &s.hasSys, nil
	case RegisterPrimary:
		return &s.primary, &s.hasPrim, nil
	default:
		return nil, nil, ErrUnknownRegister
	}
}

// Set stores raw bytes (already decoded) into the named register
// (spec.md §4.8: OSC-52 SET or client clipboard_set).
func (s *Store) Set(r Register, data []byte) error {
	slot, has, err := s.slot(r)
	if err != nil {
		return err
	}
	*slot = append([]byte(nil), data...)
	*has = true
	return nil
}

// SetBase64 decodes b64 and stores it, the form OSC-52 SET and the
// wire's clipboard_set message both carry (spec.md §4.7).
func (s *Store) SetBase64(r Register, b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	return s.Set(r, data)
}

// Get returns the raw bytes currently in the register and whether it
// has ever been set.
func (s *Store) Get(r Register) ([]byte, bool) {
	slot, has, err := s.slot(r)
	if err != nil {
		return nil, false
	}
	return *slot, *has
}

// GetBase64 returns the register's contents base64-encoded, the form
// replayed to newly connected clients (spec.md §4.9: "current clipboard
// registers" priming) and injected into an OSC-52 reply.
func (s *Store) GetBase64(r Register) (string, bool) {
	data, ok := s.Get(r)
	if !ok {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(data), true
}
