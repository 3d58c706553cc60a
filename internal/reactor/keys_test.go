package reactor

import (
	"testing"

	"github.com/texelation/muxd/internal/term"
)

func TestEncodeKeyNamedKeys(t *testing.T) {
	cases := []struct {
		name string
		key  int
		want string
	}{
		{"enter", KeyEnter, "\r"},
		{"backspace", KeyBackspace, "\x7f"},
		{"tab", KeyTab, "\t"},
		{"escape", KeyEscape, "\x1b"},
		{"delete", KeyDelete, "\x1b[3~"},
		{"f5", KeyF5, "\x1b[15~"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := encodeKey(tc.key, 0, 0, false)
			if string(got) != tc.want {
				t.Fatalf("encodeKey(%d) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestEncodeKeyArrowsRespectApplicationCursorMode(t *testing.T) {
	if got := string(encodeKey(KeyUp, 0, 0, false)); got != "\x1b[A" {
		t.Fatalf("normal-mode up = %q, want CSI A", got)
	}
	if got := string(encodeKey(KeyUp, 0, 0, true)); got != "\x1bOA" {
		t.Fatalf("app-cursor up = %q, want SS3 A", got)
	}
}

func TestEncodeKeyArrowWithModifiersUsesCSI1Form(t *testing.T) {
	got := string(encodeKey(KeyRight, 0, ModCtrl, false))
	if got != "\x1b[1;5C" {
		t.Fatalf("ctrl+right = %q, want \\x1b[1;5C", got)
	}
}

func TestEncodeKeyCtrlLetterProducesC0(t *testing.T) {
	got := encodeKey(0, 'c', ModCtrl, false)
	if len(got) != 1 || got[0] != 0x03 {
		t.Fatalf("ctrl+c = %v, want [0x03]", got)
	}
}

func TestEncodeKeyAltPrefixesEscape(t *testing.T) {
	got := encodeKey(0, 'x', ModAlt, false)
	if string(got) != "\x1bx" {
		t.Fatalf("alt+x = %q, want ESC x", got)
	}
}

func TestWrapBracketedPasteOnlyWhenModeEnabled(t *testing.T) {
	text := []byte("hello")
	if got := wrapBracketedPaste(0, text); string(got) != "hello" {
		t.Fatalf("no bracketed-paste mode should pass text through unwrapped, got %q", got)
	}
	got := wrapBracketedPaste(term.ModeBracketedPaste, text)
	want := "\x1b[200~hello\x1b[201~"
	if string(got) != want {
		t.Fatalf("wrapped = %q, want %q", got, want)
	}
}

func TestEncodeMouseEventSGRForm(t *testing.T) {
	got := string(encodeMouseEvent(term.ModeMouseSGR, 0, 10, 5, 0, mouseDown))
	if got != "\x1b[<0;10;5M" {
		t.Fatalf("press = %q, want \\x1b[<0;10;5M", got)
	}
	got = string(encodeMouseEvent(term.ModeMouseSGR, 0, 10, 5, 0, mouseUp))
	if got != "\x1b[<0;10;5m" {
		t.Fatalf("release = %q, want \\x1b[<0;10;5m", got)
	}
}

func TestEncodeMouseEventX10PressOnly(t *testing.T) {
	got := encodeMouseEvent(term.ModeMouseX10, 0, 10, 5, 0, mouseDown)
	want := []byte{0x1b, '[', 'M', 32, 42, 37}
	if string(got) != string(want) {
		t.Fatalf("press = %v, want %v", got, want)
	}
	if got := encodeMouseEvent(term.ModeMouseX10, 0, 10, 5, 0, mouseUp); got != nil {
		t.Fatalf("expected no release event in X10 mode, got %v", got)
	}
}

func TestEncodeMouseEventURXVTReleaseUsesButton3(t *testing.T) {
	got := string(encodeMouseEvent(term.ModeMouseURXVT, 0, 10, 5, 0, mouseUp))
	if got != "\x1b[3;10;5M" {
		t.Fatalf("release = %q, want \\x1b[3;10;5M", got)
	}
}

func TestEncodeMouseEventSGRPixelsScalesCoordinates(t *testing.T) {
	got := string(encodeMouseEvent(term.ModeMouseSGRPixels, 0, 10, 5, 0, mouseDown))
	want := "\x1b[<0;80;80M"
	if got != want {
		t.Fatalf("press = %q, want %q", got, want)
	}
}

func TestEncodeMouseEventNoModeReturnsNil(t *testing.T) {
	if got := encodeMouseEvent(0, 0, 10, 5, 0, mouseDown); got != nil {
		t.Fatalf("expected nil with no mouse mode negotiated, got %v", got)
	}
}
