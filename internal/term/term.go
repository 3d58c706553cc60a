// Package term defines the Terminal collaborator the core consumes.
//
// The VT/terminal emulator itself (cell grid, parser, SGR, modes) is
// deliberately out of scope for this module; Terminal is the narrow
// interface the core needs from one. A minimal Stub implementation is
// provided so the rest of the module is testable without a real
// emulator wired in.
package term

// Cell is the server's own minimal cell encoding, used by Stub and by
// delta/snapshot tests. A production Terminal is free to use a richer
// encoding; the wire layer only requires Rows() to return something
// msgpack-serializable.
type Cell struct {
	Rune  rune
	FG    uint32
	BG    uint32
	Attrs uint8
}

// Mode bits a Terminal may expose to the core for key/mouse encoding
// decisions (spec.md §4.8).
type Mode uint32

const (
	ModeApplicationCursorKeys Mode = 1 << iota
	ModeBracketedPaste
	ModeMouseX10
	ModeMouseUTF8
	ModeMouseSGR
	ModeMouseURXVT
	ModeMouseSGRPixels
	ModeMouseMotion
	ModeSyncOutput
)

// Terminal is the opaque VT emulator the core drives. Implementations
// are expected to be synchronous and single-threaded: the core never
// calls a Terminal method concurrently with another call on the same
// instance.
type Terminal interface {
	// Feed applies raw PTY output, advancing Generation() and latching
	// any side-effect events the bytes imply (OSC 8/9/52/133, DECSET
	// 1000/1002/1003/1006/1015/1016/2004/2026, cursor-keys mode, title).
	Feed(data []byte)

	// Generation returns the current monotonic state counter.
	Generation() uint64

	// Resize changes the emulator's dimensions. Returns true if the
	// dimensions actually changed (and therefore Generation advanced).
	Resize(cols, rows int) bool

	Dimensions() (cols, rows int)

	// Modes returns the currently active mode bitset.
	Modes() Mode

	// DirtyRows returns the set of row indices that changed since
	// baseGen, and whether baseGen is still within the retention
	// window (false means the caller must fall back to a snapshot).
	DirtyRows(baseGen uint64) (rows []int, ok bool)

	// Rows returns the full visible grid, row-major.
	Rows() [][]Cell

	Cursor() (x, y int, visible bool)

	// Title/Bell/Notification/Progress/ShellEvent/ClipboardSet report
	// and clear latched one-shot events, per spec.md §4.1.
	TakeTitle() (string, bool)
	TakeBell() bool
	TakeNotification() (title, body string, ok bool)
	TakeProgress() (state string, value int, ok bool)
	TakeShellEvent() (kind string, exitCode int, ok bool)
	TakeClipboardSet() (kind, base64Data string, ok bool)

	// Selection API, per spec.md §4.1.
	StartSelection(x, y int)
	UpdateSelection(x, y int, rectangular bool)
	EndSelection()
	ClearSelection()
	SelectAll()
	SelectionText() string

	// IsSelectionAtStart reports whether (x, y) is the anchor cell of
	// the current selection, active or already ended, per spec.md §4.1.
	IsSelectionAtStart(x, y int) bool

	SetThemeColors(fg, bg [3]byte)
}
