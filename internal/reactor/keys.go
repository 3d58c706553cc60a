package reactor

import (
	"fmt"

	"github.com/texelation/muxd/internal/term"
)

// Named key codes the wire's KeyCode field carries for keys that have
// no direct rune representation (spec.md §4.8's "fixed table").
const (
	KeyEnter = iota + 1
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyDelete
	KeyInsert
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifier bits carried in ClientMessage.Modifiers (spec.md §4.8).
const (
	ModShift uint8 = 1 << iota
	ModAlt
	ModCtrl
)

var arrowLetter = map[int]byte{KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D'}

var namedSequence = map[int]string{
	KeyDelete:   "\x1b[3~",
	KeyPageUp:   "\x1b[5~",
	KeyPageDown: "\x1b[6~",
	KeyInsert:   "\x1b[2~",
	KeyF1:       "\x1bOP",
	KeyF2:       "\x1bOQ",
	KeyF3:       "\x1bOR",
	KeyF4:       "\x1bOS",
	KeyF5:       "\x1b[15~",
	KeyF6:       "\x1b[17~",
	KeyF7:       "\x1b[18~",
	KeyF8:       "\x1b[19~",
	KeyF9:       "\x1b[20~",
	KeyF10:      "\x1b[21~",
	KeyF11:      "\x1b[23~",
	KeyF12:      "\x1b[24~",
}

// isModifierOnly reports keycodes with no VT encoding of their own
// (spec.md §4.8: "Modifier-only keycodes never clear selection nor
// produce output"). This server never receives bare modifier keys
// over the wire (clients filter them), but a defensive check keeps
// the invariant enforceable here too.
func isModifierOnly(keyCode uint32) bool { return keyCode == 0 }

// encodeKey maps a decoded key event to the bytes written to the PTY,
// per spec.md §4.8's fixed table. appCursor is the terminal's
// application-cursor-keys mode.
func encodeKey(keyCode int, r rune, mods uint8, appCursor bool) []byte {
	ctrl := mods&ModCtrl != 0
	alt := mods&ModAlt != 0

	var base []byte
	switch keyCode {
	case KeyEnter:
		base = []byte{'\r'}
	case KeyBackspace:
		base = []byte{0x7f}
	case KeyTab:
		base = []byte{'\t'}
	case KeyEscape:
		base = []byte{0x1b}
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		letter := arrowLetter[keyCode]
		if ctrl || alt || mods&ModShift != 0 {
			m := 1
			if mods&ModShift != 0 {
				m++
			}
			if alt {
				m += 2
			}
			if ctrl {
				m += 4
			}
			base = []byte(fmt.Sprintf("\x1b[1;%d%c", m, letter))
		} else if appCursor {
			base = []byte{0x1b, 'O', letter}
		} else {
			base = []byte{0x1b, '[', letter}
		}
	case KeyHome:
		if appCursor {
			base = []byte("\x1bOH")
		} else {
			base = []byte("\x1b[H")
		}
	case KeyEnd:
		if appCursor {
			base = []byte("\x1bOF")
		} else {
			base = []byte("\x1b[F")
		}
	default:
		if seq, ok := namedSequence[keyCode]; ok {
			base = []byte(seq)
		}
	}

	if base == nil && r != 0 {
		if ctrl && r >= 'a' && r <= 'z' {
			base = []byte{byte(r) & 0x1f}
		} else if ctrl && r >= 'A' && r <= 'Z' {
			base = []byte{byte(r) & 0x1f}
		} else {
			base = []byte(string(r))
		}
		if alt {
			base = append([]byte{0x1b}, base...)
		}
	}
	return base
}

// wrapBracketedPaste wraps text in CSI 200~...201~ when the pane's
// terminal has bracketed-paste enabled (spec.md §4.8).
func wrapBracketedPaste(modes term.Mode, text []byte) []byte {
	if modes&term.ModeBracketedPaste == 0 {
		return text
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, text...)
	out = append(out, "\x1b[201~"...)
	return out
}

// mouseModeBits is every Mode bit that signals the application wants
// raw mouse reporting rather than the server handling selection itself
// (spec.md §4.8: "mouse events are either consumed locally ... or
// encoded for the application").
const mouseModeBits = term.ModeMouseX10 | term.ModeMouseUTF8 | term.ModeMouseSGR |
	term.ModeMouseURXVT | term.ModeMouseSGRPixels | term.ModeMouseMotion

// pixelsPerCol/pixelsPerRow approximate a cell's footprint for
// SGR-pixels reporting (mode 1016), which carries pixel coordinates
// rather than cell coordinates; the reactor has no real font metrics,
// so it reports a fixed cell size, matching what terminals fall back
// to before a resize-in-pixels event has ever been sent.
const (
	pixelsPerCol = 8
	pixelsPerRow = 16
)

// encodeMouseEvent picks the wire encoding the pane's terminal actually
// negotiated (spec.md §4.8: mouse events are "encoded for the
// application" using whichever protocol DECSET turned on), from the
// most to least capable: SGR-pixels, SGR, URXVT, UTF-8, X10. state is
// one of the mouseDown/mouseMove/mouseUp constants; X/Y are already
// 1-based column/row. Returns nil when the event should not be sent at
// all (X10's release events are never reported).
func encodeMouseEvent(modes term.Mode, button uint8, x, y int, mods uint8, state int) []byte {
	cb := int(button)
	if mods&ModShift != 0 {
		cb |= 4
	}
	if mods&ModAlt != 0 {
		cb |= 8
	}
	if mods&ModCtrl != 0 {
		cb |= 16
	}
	release := state == mouseUp

	switch {
	case modes&term.ModeMouseSGRPixels != 0:
		return encodeMouseSGR(cb, x*pixelsPerCol, y*pixelsPerRow, release)
	case modes&term.ModeMouseSGR != 0:
		return encodeMouseSGR(cb, x, y, release)
	case modes&term.ModeMouseURXVT != 0:
		return encodeMouseURXVT(cb, x, y, release)
	case modes&term.ModeMouseUTF8 != 0:
		return encodeMouseUTF8(cb, x, y)
	case modes&term.ModeMouseX10 != 0:
		if release {
			return nil
		}
		return encodeMouseX10(cb, x, y)
	default:
		return nil
	}
}

// encodeMouseSGR is CSI < Cb ; Cx ; Cy M/m (DECSET 1006), the form
// every modern terminal negotiates once it also wants coordinates past
// column/row 223.
func encodeMouseSGR(cb, x, y int, release bool) []byte {
	suffix := byte('M')
	if release {
		suffix = 'm'
	}
	return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, x, y, suffix))
}

// encodeMouseURXVT is CSI Cb ; Cx ; Cy M (DECSET 1015): decimal like
// SGR but with no release suffix, so a release is signalled the same
// way X10 does it, by reusing button code 3.
func encodeMouseURXVT(cb, x, y int, release bool) []byte {
	if release {
		cb = 3
	}
	return []byte(fmt.Sprintf("\x1b[%d;%d;%dM", cb, x, y))
}

// encodeMouseUTF8 is X10's legacy CSI M Cb Cx Cy framing (DECSET 1005)
// with coordinates encoded as UTF-8 runes instead of raw bytes, so it
// doesn't saturate past column/row 223 the way plain X10 does.
func encodeMouseUTF8(cb, x, y int) []byte {
	out := []byte{0x1b, '[', 'M', byte(cb + 32)}
	out = append(out, string(rune(x+32))...)
	out = append(out, string(rune(y+32))...)
	return out
}

// encodeMouseX10 is the original X10 mouse protocol (DECSET 9): three
// raw bytes after CSI M, each button/x/y offset by 32 and clamped to a
// single byte, and press-only by convention (no release is ever sent).
func encodeMouseX10(cb, x, y int) []byte {
	clamp := func(v int) byte {
		v += 32
		switch {
		case v > 255:
			return 255
		case v < 32:
			return 32
		default:
			return byte(v)
		}
	}
	return []byte{0x1b, '[', 'M', clamp(cb), clamp(x), clamp(y)}
}
