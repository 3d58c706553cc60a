package client

import "testing"

type fakeChannel struct{ closed bool }

func (f *fakeChannel) Send([]byte) error { return nil }
func (f *fakeChannel) Close() error      { f.closed = true; return nil }

func TestGetGenerationDefaultsToZero(t *testing.T) {
	s := New(&fakeChannel{})
	if g := s.GetGeneration(42); g != 0 {
		t.Fatalf("generation = %d, want 0", g)
	}
	s.SetGeneration(42, 7)
	if g := s.GetGeneration(42); g != 7 {
		t.Fatalf("generation = %d, want 7", g)
	}
}

func TestShortID(t *testing.T) {
	s := New(&fakeChannel{})
	s.Authenticate("12345678-abcd-0000-0000-000000000000", "tok")
	if got := s.ShortID(); got != "12345678" {
		t.Fatalf("short id = %q", got)
	}
}

func TestDisconnectClosesChannel(t *testing.T) {
	ch := &fakeChannel{}
	s := New(ch)
	s.Disconnect()
	if !ch.closed {
		t.Fatalf("expected channel to be closed")
	}
	if s.Channel != nil {
		t.Fatalf("expected channel reference cleared")
	}
}

func TestForgetPaneRemovesGeneration(t *testing.T) {
	s := New(&fakeChannel{})
	s.SetGeneration(3, 9)
	s.ForgetPane(3)
	if g := s.GetGeneration(3); g != 0 {
		t.Fatalf("generation after forget = %d, want 0", g)
	}
}
