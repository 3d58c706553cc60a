package config

import "testing"

func TestDefaultHasSaneTimeouts(t *testing.T) {
	c := Default()
	if c.SyncTimeout <= 0 {
		t.Fatalf("expected positive sync timeout")
	}
	if c.ClipboardGetTTL <= 0 {
		t.Fatalf("expected positive clipboard get ttl")
	}
	if c.ListenAddr == "" {
		t.Fatalf("expected a default listen address")
	}
}

func TestDefaultFallsBackWhenShellUnset(t *testing.T) {
	t.Setenv("SHELL", "")
	c := Default()
	if c.Shell == "" {
		t.Fatalf("expected a non-empty fallback shell")
	}
}
