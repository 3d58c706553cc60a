package wire

// MessageType enumerates server->client binary message discriminators
// (spec.md §4.7: "Each begins with a discriminator byte").
type MessageType uint8

const (
	MsgSnapshot MessageType = iota
	MsgDelta
	MsgTitle
	MsgBell
	MsgToast
	MsgProgress
	MsgLayout
	MsgMasterChanged
	MsgClipboard
	MsgShellIntegration
	MsgPing
	MsgPong
)

// --- Client -> server message kinds (spec.md §4.7) ---

// ClientMessageKind discriminates the decoded client message union.
type ClientMessageKind string

const (
	KindKey               ClientMessageKind = "key"
	KindText              ClientMessageKind = "text"
	KindResize            ClientMessageKind = "resize"
	KindScroll            ClientMessageKind = "scroll"
	KindPing              ClientMessageKind = "ping"
	KindSync              ClientMessageKind = "sync"
	KindResync            ClientMessageKind = "resync"
	KindFocus             ClientMessageKind = "focus"
	KindHello             ClientMessageKind = "hello"
	KindRequestMaster     ClientMessageKind = "request_master"
	KindNewWindow         ClientMessageKind = "new_window"
	KindCloseWindow       ClientMessageKind = "close_window"
	KindClosePane         ClientMessageKind = "close_pane"
	KindSetLayout         ClientMessageKind = "set_layout"
	KindSwapPanes         ClientMessageKind = "swap_panes"
	KindResizeLayout      ClientMessageKind = "resize_layout"
	KindMouse             ClientMessageKind = "mouse"
	KindSelectAll         ClientMessageKind = "select_all"
	KindClearSelection    ClientMessageKind = "clear_selection"
	KindClipboardResponse ClientMessageKind = "clipboard_response"
	KindClipboardSet      ClientMessageKind = "clipboard_set"
	KindCopy              ClientMessageKind = "copy"
	KindClipboardPaste    ClientMessageKind = "clipboard_paste"
	KindUnknown           ClientMessageKind = "unknown"
)

// LayoutNodeWire is the wire-transmissible mirror of internal/layout.Node
// (spec.md §4.7's resize_layout "nodes" field).
type LayoutNodeWire struct {
	Kind     uint8 // 0 = pane, 1 = container
	Width    float32
	Height   float32
	PaneID   *uint16          `msgpack:",omitempty"`
	Children []LayoutNodeWire `msgpack:",omitempty"`
}

// ClientMessage is the tagged union DecodeClientMessageJSON and
// DecodeClientMessageBinary return
// (spec.md §4.7). Only the fields relevant to Kind are populated;
// zero values elsewhere.
type ClientMessage struct {
	Kind ClientMessageKind `json:"-" msgpack:"kind"`

	// key
	KeyCode   uint32 `json:"keyCode,omitempty" msgpack:",omitempty"`
	Rune      rune   `json:"rune,omitempty" msgpack:",omitempty"`
	Modifiers uint8  `json:"modifiers,omitempty" msgpack:",omitempty"`

	// text / paste
	Text   string `json:"text,omitempty" msgpack:",omitempty"`
	PaneID uint16 `json:"paneId,omitempty" msgpack:",omitempty"`

	// resize
	Cols uint16 `json:"cols,omitempty" msgpack:",omitempty"`
	Rows uint16 `json:"rows,omitempty" msgpack:",omitempty"`

	// scroll
	ScrollDelta int `json:"scrollDelta,omitempty" msgpack:",omitempty"`

	// sync
	Gen      uint64 `json:"gen,omitempty" msgpack:",omitempty"`
	MinRowID int    `json:"minRowId,omitempty" msgpack:",omitempty"`

	// resync
	ResyncReason string `json:"reason,omitempty" msgpack:",omitempty"`

	// hello
	ClientID string   `json:"clientId,omitempty" msgpack:",omitempty"`
	ThemeFG  *[3]byte `json:"themeFg,omitempty" msgpack:",omitempty"`
	ThemeBG  *[3]byte `json:"themeBg,omitempty" msgpack:",omitempty"`
	Token    string   `json:"token,omitempty" msgpack:",omitempty"`

	// new_window / set_layout
	TemplateID string `json:"templateId,omitempty" msgpack:",omitempty"`

	// close_window / set_layout / swap_panes / resize_layout
	WindowID uint16          `json:"windowId,omitempty" msgpack:",omitempty"`
	PaneID1  uint16          `json:"paneId1,omitempty" msgpack:",omitempty"`
	PaneID2  uint16          `json:"paneId2,omitempty" msgpack:",omitempty"`
	Nodes    *LayoutNodeWire `json:"nodes,omitempty" msgpack:",omitempty"`

	// mouse
	Button      uint8 `json:"button,omitempty" msgpack:",omitempty"`
	X           int   `json:"x,omitempty" msgpack:",omitempty"`
	Y           int   `json:"y,omitempty" msgpack:",omitempty"`
	PixelXY     bool  `json:"pxPy,omitempty" msgpack:",omitempty"`
	MouseState  uint8 `json:"state,omitempty" msgpack:",omitempty"`
	MouseMods   uint8 `json:"mouseModifiers,omitempty" msgpack:",omitempty"`
	TimestampMs int64 `json:"timestamp,omitempty" msgpack:",omitempty"`

	// clipboard_response / clipboard_set / clipboard_paste
	Clipboard string `json:"clipboard,omitempty" msgpack:",omitempty"`
	Data      string `json:"data,omitempty" msgpack:",omitempty"` // base64

	RawType string `json:"-" msgpack:",omitempty"` // populated for KindUnknown
}

// --- Server -> client message payloads (spec.md §4.7) ---

// SnapshotMsg carries a full pane serialization.
type SnapshotMsg struct {
	PaneID   uint16
	Cols     uint16
	Rows     uint16
	Gen      uint64
	Grid     [][]CellWire
	CursorX  int
	CursorY  int
	CursorOn bool
}

// CellWire mirrors internal/term.Cell for wire transport (spec.md §9's
// Open Question on delta/snapshot byte layout: the core owns one
// concrete encoding since the real Terminal is an external collaborator).
type CellWire struct {
	Rune  rune
	FG    uint32
	BG    uint32
	Attrs uint8
}

// DeltaMsg carries dirty-row updates relative to FromGen.
type DeltaMsg struct {
	PaneID  uint16
	FromGen uint64
	ToGen   uint64
	Rows    []int
	Cells   [][]CellWire
}

type TitleMsg struct {
	PaneID uint16
	Title  string
}

type BellMsg struct {
	PaneID uint16
}

type ToastMsg struct {
	PaneID uint16
	Title  string
	Body   string
}

type ProgressMsg struct {
	PaneID uint16
	State  string
	Value  int
}

type LayoutMsg struct {
	WindowID uint16
	Nodes    LayoutNodeWire
}

type MasterChangedMsg struct {
	NewMasterID string
}

type ClipboardMsg struct {
	Clipboard string
	Data      string // base64
}

type ShellIntegrationMsg struct {
	PaneID   uint16
	Kind     string
	ExitCode *int
}

type PongMsg struct {
	TimestampMs int64
}
