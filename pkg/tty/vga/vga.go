// Package vga implements an in-memory text-mode display. Cells hold a code
// page 437 byte and an attribute, as in PC video memory.
package vga

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/ui"
)

// Keyboard is the key source of a Screen.
type Keyboard interface {
	ReadKey() (ui.Key, error)
	// Pending reports whether ReadKey would return without blocking.
	Pending() bool
}

// Cell is one character position.
type Cell struct {
	Char byte
	Attr ui.Attr
}

// Screen is a text-mode display with a hardware-style cursor.
type Screen struct {
	name        string
	cols, lines int
	cells       []Cell
	x, y        int
	palette     ui.Palette
	attr        ui.Attr
	cursor      bool
	kbd         Keyboard
}

var (
	_ tty.Device       = (*Screen)(nil)
	_ tty.Positioner   = (*Screen)(nil)
	_ tty.ColorStater  = (*Screen)(nil)
	_ tty.Colorer      = (*Screen)(nil)
	_ tty.CursorShower = (*Screen)(nil)
)

// New creates a blank Screen. A nil kbd behaves as an empty Queue.
func New(name string, cols, lines int, kbd Keyboard) *Screen {
	if kbd == nil {
		kbd = &Queue{}
	}
	s := &Screen{
		name: name, cols: cols, lines: lines,
		cells:   make([]Cell, cols*lines),
		palette: ui.DefaultPalette, attr: ui.DefaultPalette.Normal,
		cursor: true, kbd: kbd,
	}
	s.Cls()
	return s
}

func (s *Screen) Name() string            { return s.name }
func (s *Screen) Flags() tty.Flag         { return 0 }
func (s *Screen) Size() (cols, lines int) { return s.cols, s.lines }
func (s *Screen) CheckKey() bool          { return s.kbd.Pending() }

func (s *Screen) ReadKey() (ui.Key, error) { return s.kbd.ReadKey() }

// PutChar writes a character at the cursor. Carriage return, line feed, tab,
// backspace and bell are interpreted; output past the last column wraps and
// output past the last line scrolls.
func (s *Screen) PutChar(c byte) {
	switch c {
	case '\r':
		s.x = 0
	case '\n':
		s.lineFeed()
	case '\b':
		if s.x > 0 {
			s.x--
		}
	case '\a':
	case '\t':
		for n := 8 - s.x%8; n > 0 && s.x < s.cols; n-- {
			s.cells[s.y*s.cols+s.x] = Cell{' ', s.attr}
			s.x++
		}
		if s.x >= s.cols {
			s.x = 0
			s.lineFeed()
		}
	default:
		s.cells[s.y*s.cols+s.x] = Cell{c, s.attr}
		s.x++
		if s.x >= s.cols {
			s.x = 0
			s.lineFeed()
		}
	}
}

func (s *Screen) lineFeed() {
	if s.y < s.lines-1 {
		s.y++
		return
	}
	copy(s.cells, s.cells[s.cols:])
	s.blank(s.cells[(s.lines-1)*s.cols:])
}

func (s *Screen) blank(cells []Cell) {
	for i := range cells {
		cells[i] = Cell{' ', s.attr}
	}
}

func (s *Screen) Cls() {
	s.blank(s.cells)
	s.x, s.y = 0, 0
}

func (s *Screen) Pos() (x, y int) { return s.x, s.y }

func (s *Screen) MoveTo(x, y int) {
	s.x = clamp(x, 0, s.cols-1)
	s.y = clamp(y, 0, s.lines-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Screen) SetColorState(st ui.ColorState) { s.attr = s.palette.Attr(st) }

func (s *Screen) SetPalette(p ui.Palette) {
	s.palette = p
	s.attr = p.Normal
}

func (s *Screen) ShowCursor(on bool) bool {
	old := s.cursor
	s.cursor = on
	return old
}

// CursorVisible reports whether the cursor is shown.
func (s *Screen) CursorVisible() bool { return s.cursor }

// Cell returns the cell at the given position.
func (s *Screen) Cell(x, y int) Cell { return s.cells[y*s.cols+x] }

// Row returns the text of line y with trailing spaces removed.
func (s *Screen) Row(y int) string {
	var b strings.Builder
	for _, c := range s.cells[y*s.cols : (y+1)*s.cols] {
		b.WriteRune(charmap.CodePage437.DecodeByte(c.Char))
	}
	return strings.TrimRight(b.String(), " ")
}

// Lines returns the text of all lines, trailing blank lines removed.
func (s *Screen) Lines() []string {
	rows := make([]string, s.lines)
	n := 0
	for y := range rows {
		rows[y] = s.Row(y)
		if rows[y] != "" {
			n = y + 1
		}
	}
	return rows[:n]
}

// Dump writes the text of the screen to w, one line per row.
func (s *Screen) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, row := range s.Lines() {
		bw.WriteString(row)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Queue is a Keyboard fed from memory. ReadKey returns io.EOF once the queue
// is drained.
type Queue struct {
	keys []ui.Key
}

// Feed appends keys to the queue.
func (q *Queue) Feed(keys ...ui.Key) { q.keys = append(q.keys, keys...) }

// FeedString appends one key per byte of s.
func (q *Queue) FeedString(s string) {
	for i := 0; i < len(s); i++ {
		q.keys = append(q.keys, ui.K(rune(s[i])))
	}
}

func (q *Queue) Pending() bool { return len(q.keys) > 0 }

func (q *Queue) ReadKey() (ui.Key, error) {
	if len(q.keys) == 0 {
		return ui.Key{}, io.EOF
	}
	k := q.keys[0]
	q.keys = q.keys[1:]
	return k, nil
}
