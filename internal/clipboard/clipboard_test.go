package clipboard

import "testing"

func TestSetAndGetRoundTrip(t *testing.T) {
	s := New()
	if err := s.Set(RegisterSystem, []byte("hello")); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok := s.Get(RegisterSystem)
	if !ok || string(data) != "hello" {
		t.Fatalf("get = %q, %v", data, ok)
	}
	if _, ok := s.Get(RegisterPrimary); ok {
		t.Fatalf("expected primary register unset")
	}
}

func TestSetBase64DecodesAndGetBase64Encodes(t *testing.T) {
	s := New()
	if err := s.SetBase64(RegisterPrimary, "aGVsbG8="); err != nil {
		t.Fatalf("set base64: %v", err)
	}
	data, _ := s.Get(RegisterPrimary)
	if string(data) != "hello" {
		t.Fatalf("decoded = %q", data)
	}
	b64, ok := s.GetBase64(RegisterPrimary)
	if !ok || b64 != "aGVsbG8=" {
		t.Fatalf("b64 = %q, %v", b64, ok)
	}
}

func TestSetBase64InvalidInputFails(t *testing.T) {
	s := New()
	if err := s.SetBase64(RegisterSystem, "not-valid-base64!!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}

func TestUnknownRegisterErrors(t *testing.T) {
	s := New()
	if err := s.Set(Register(99), []byte("x")); err != ErrUnknownRegister {
		t.Fatalf("expected ErrUnknownRegister, got %v", err)
	}
}
