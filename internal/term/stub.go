package term

// Stub is a minimal Terminal used by tests and by pseudo-panes that
// have no real PTY/emulator behind them. It treats every Feed call as
// replacing row 0 with the fed bytes (one rune per cell, default
// style) and keeps a short history of generations so DirtyRows can
// answer truthfully for recently-seen base generations.
type Stub struct {
	cols, rows int
	gen        uint64
	grid       [][]Cell
	modes      Mode

	dirtyHistory map[uint64][]int // generation -> rows touched to reach it
	retain       int

	title        string
	titleSet     bool
	bell         bool
	notifyTitle  string
	notifyBody   string
	notifySet    bool
	progState    string
	progValue    int
	progSet      bool
	shellKind    string
	shellCode    int
	shellSet     bool
	clipKind     string
	clipData     string
	clipSet      bool

	selStartX, selStartY int
	selEndX, selEndY     int
	selActive            bool
	selRect              bool
	selText              string

	fg, bg [3]byte
}

// NewStub creates a stub terminal of the given dimensions.
func NewStub(cols, rows int) *Stub {
	s := &Stub{cols: cols, rows: rows, retain: 64, dirtyHistory: make(map[uint64][]int)}
	s.grid = make([][]Cell, rows)
	for i := range s.grid {
		s.grid[i] = make([]Cell, cols)
	}
	return s
}

func (s *Stub) bumpGeneration(dirty []int) {
	s.gen++
	s.dirtyHistory[s.gen] = dirty
	if len(s.dirtyHistory) > s.retain {
		// Drop the oldest entries; callers requesting a base generation
		// older than the retention window must fall back to a snapshot.
		oldest := s.gen - uint64(s.retain)
		delete(s.dirtyHistory, oldest)
	}
}

func (s *Stub) Feed(data []byte) {
	if len(data) == 0 || s.rows == 0 || s.cols == 0 {
		return
	}
	row := make([]Cell, s.cols)
	for i := 0; i < s.cols; i++ {
		if i < len(data) {
			row[i] = Cell{Rune: rune(data[i])}
		}
	}
	s.grid[0] = row
	s.bumpGeneration([]int{0})
}

func (s *Stub) Generation() uint64 { return s.gen }

func (s *Stub) Resize(cols, rows int) bool {
	if cols == s.cols && rows == s.rows {
		return false
	}
	grid := make([][]Cell, rows)
	for i := range grid {
		grid[i] = make([]Cell, cols)
		if i < len(s.grid) {
			n := cols
			if len(s.grid[i]) < n {
				n = len(s.grid[i])
			}
			copy(grid[i], s.grid[i][:n])
		}
	}
	s.grid = grid
	s.cols, s.rows = cols, rows
	all := make([]int, rows)
	for i := range all {
		all[i] = i
	}
	s.bumpGeneration(all)
	return true
}

func (s *Stub) Dimensions() (int, int) { return s.cols, s.rows }

func (s *Stub) Modes() Mode { return s.modes }

// SetModes lets tests/adapters flip mode bits directly.
func (s *Stub) SetModes(m Mode) { s.modes = m }

func (s *Stub) DirtyRows(baseGen uint64) ([]int, bool) {
	if baseGen == s.gen {
		return nil, true
	}
	seen := make(map[int]struct{})
	for g := baseGen + 1; g <= s.gen; g++ {
		rows, ok := s.dirtyHistory[g]
		if !ok {
			return nil, false
		}
		for _, r := range rows {
			seen[r] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	return out, true
}

func (s *Stub) Rows() [][]Cell {
	out := make([][]Cell, len(s.grid))
	for i, row := range s.grid {
		cp := make([]Cell, len(row))
		copy(cp, row)
		out[i] = cp
	}
	return out
}

func (s *Stub) Cursor() (int, int, bool) { return 0, 0, true }

func (s *Stub) TakeTitle() (string, bool) {
	if !s.titleSet {
		return "", false
	}
	s.titleSet = false
	return s.title, true
}

// SetTitle is a test/adapter hook latching a title_changed event.
func (s *Stub) SetTitle(title string) { s.title = title; s.titleSet = true }

func (s *Stub) TakeBell() bool {
	v := s.bell
	s.bell = false
	return v
}

// Ring latches a bell event.
func (s *Stub) Ring() { s.bell = true }

func (s *Stub) TakeNotification() (string, string, bool) {
	if !s.notifySet {
		return "", "", false
	}
	s.notifySet = false
	return s.notifyTitle, s.notifyBody, true
}

func (s *Stub) Notify(title, body string) { s.notifyTitle, s.notifyBody, s.notifySet = title, body, true }

func (s *Stub) TakeProgress() (string, int, bool) {
	if !s.progSet {
		return "", 0, false
	}
	s.progSet = false
	return s.progState, s.progValue, true
}

func (s *Stub) SetProgress(state string, value int) { s.progState, s.progValue, s.progSet = state, value, true }

func (s *Stub) TakeShellEvent() (string, int, bool) {
	if !s.shellSet {
		return "", 0, false
	}
	s.shellSet = false
	return s.shellKind, s.shellCode, true
}

func (s *Stub) EmitShellEvent(kind string, code int) { s.shellKind, s.shellCode, s.shellSet = kind, code, true }

func (s *Stub) TakeClipboardSet() (string, string, bool) {
	if !s.clipSet {
		return "", "", false
	}
	s.clipSet = false
	return s.clipKind, s.clipData, true
}

func (s *Stub) EmitClipboardSet(kind, base64Data string) { s.clipKind, s.clipData, s.clipSet = kind, base64Data, true }

func (s *Stub) StartSelection(x, y int) {
	s.selStartX, s.selStartY = x, y
	s.selEndX, s.selEndY = x, y
	s.selActive = true
}

func (s *Stub) UpdateSelection(x, y int, rectangular bool) {
	s.selEndX, s.selEndY = x, y
	s.selRect = rectangular
}

func (s *Stub) EndSelection() {
	s.selActive = false
	s.selText = s.SelectionText()
}

func (s *Stub) ClearSelection() {
	s.selActive = false
	s.selText = ""
}

func (s *Stub) SelectAll() {
	s.selStartX, s.selStartY = 0, 0
	s.selEndX, s.selEndY = s.cols-1, s.rows-1
	s.selActive = true
	s.selText = s.SelectionText()
}

// IsSelectionAtStart reports whether (x, y) is the selection's anchor
// cell, per spec.md §4.1. The anchor survives EndSelection (a
// completed selection still has a start), so this checks the stored
// coordinates rather than selActive.
func (s *Stub) IsSelectionAtStart(x, y int) bool {
	if s.selText == "" && !s.selActive {
		return false
	}
	return x == s.selStartX && y == s.selStartY
}

func (s *Stub) SelectionText() string {
	if s.selStartY < 0 || s.selStartY >= len(s.grid) {
		return ""
	}
	var out []rune
	for y := s.selStartY; y <= s.selEndY && y < len(s.grid); y++ {
		row := s.grid[y]
		for x := 0; x < len(row); x++ {
			if row[x].Rune != 0 {
				out = append(out, row[x].Rune)
			}
		}
	}
	return string(out)
}

func (s *Stub) SetThemeColors(fg, bg [3]byte) { s.fg, s.bg = fg, bg }
