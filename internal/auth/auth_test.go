package auth

import (
	"path/filepath"
	"testing"
)

func TestValidateDistinguishesRoles(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.Validate(s.MasterToken()); got != RoleMaster {
		t.Fatalf("master token role = %v, want RoleMaster", got)
	}
	if got := s.Validate(s.ViewToken()); got != RoleView {
		t.Fatalf("view token role = %v, want RoleView", got)
	}
	if got := s.Validate("not-a-real-token"); got != RoleInvalid {
		t.Fatalf("bogus token role = %v, want RoleInvalid", got)
	}
	if got := s.Validate(""); got != RoleInvalid {
		t.Fatalf("empty token role = %v, want RoleInvalid", got)
	}
}

func TestWriteFileThenLoadFileRoundTrips(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tokens")
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.MasterToken() != s.MasterToken() || loaded.ViewToken() != s.ViewToken() {
		t.Fatalf("round-tripped tokens mismatch")
	}
}

func TestTokensAreDistinct(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.MasterToken() == s.ViewToken() {
		t.Fatalf("expected master and view tokens to differ")
	}
}
