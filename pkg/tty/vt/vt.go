// Package vt implements a console device on an ANSI (VT100-compatible)
// terminal, such as the one the program is started from.
package vt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	cliterm "src.bootcon.sh/pkg/cli/term"
	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/sys"
	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/ui"
)

var logger = logutil.GetLogger("[vt] ")

const (
	defaultCols  = 80
	defaultLines = 24
)

// Terminal is an ANSI terminal. Output is buffered and flushed whenever the
// device waits for a key.
type Terminal struct {
	name string
	in   *os.File
	out  *bufio.Writer
	// Set when the output is a file, for querying its size.
	outFile *os.File

	cols, lines int
	x, y        int
	palette     ui.Palette
	cursor      bool

	keys    *cliterm.Reader
	restore *term.State
}

var (
	_ tty.Device       = (*Terminal)(nil)
	_ tty.Positioner   = (*Terminal)(nil)
	_ tty.ColorStater  = (*Terminal)(nil)
	_ tty.Colorer      = (*Terminal)(nil)
	_ tty.CursorShower = (*Terminal)(nil)
	_ tty.Initializer  = (*Terminal)(nil)
	_ tty.Shutdowner   = (*Terminal)(nil)
)

// New creates a Terminal reading keys from in and writing to out. The input
// may be nil, in which case ReadKey always reports io.EOF.
func New(name string, in *os.File, out io.Writer) *Terminal {
	t := &Terminal{
		name: name, in: in, out: bufio.NewWriter(out),
		cols: defaultCols, lines: defaultLines,
		palette: ui.DefaultPalette, cursor: true,
	}
	if f, ok := out.(*os.File); ok {
		t.outFile = f
	}
	t.updateSize()
	return t
}

func (t *Terminal) updateSize() {
	if t.outFile == nil || !sys.IsATTY(t.outFile.Fd()) {
		return
	}
	if lines, cols := sys.WinSize(t.outFile); lines > 0 && cols > 0 {
		t.cols, t.lines = cols, lines
	}
}

func (t *Terminal) Name() string            { return t.name }
func (t *Terminal) Flags() tty.Flag         { return tty.NeedInit }
func (t *Terminal) Size() (cols, lines int) { return t.cols, t.lines }

// Init puts the input terminal into raw mode and starts reading keys from
// it.
func (t *Terminal) Init() error {
	t.updateSize()
	if t.in == nil {
		return nil
	}
	if sys.IsATTY(t.in.Fd()) && t.restore == nil {
		st, err := term.MakeRaw(int(t.in.Fd()))
		if err != nil {
			return fmt.Errorf("can't set up terminal: %w", err)
		}
		t.restore = st
	}
	return t.startReader()
}

func (t *Terminal) startReader() error {
	if t.keys != nil || t.in == nil {
		return nil
	}
	rd, err := cliterm.NewReader(t.in)
	if err != nil {
		return fmt.Errorf("can't read keys: %w", err)
	}
	t.keys = rd
	return nil
}

// Shutdown resets colors and cursor visibility, and restores the terminal
// mode saved by Init.
func (t *Terminal) Shutdown() error {
	if t.keys != nil {
		t.keys.Close()
		t.keys = nil
	}
	t.out.WriteString("\033[0m\033[?25h")
	t.cursor = true
	errFlush := t.out.Flush()
	var errRestore error
	if t.restore != nil {
		errRestore = term.Restore(int(t.in.Fd()), t.restore)
		t.restore = nil
	}
	return errors.Join(errFlush, errRestore)
}

// Flush writes buffered output to the terminal.
func (t *Terminal) Flush() error { return t.out.Flush() }

func (t *Terminal) CheckKey() bool {
	t.Flush()
	if t.keys == nil {
		return false
	}
	return t.keys.Pending()
}

func (t *Terminal) ReadKey() (ui.Key, error) {
	if err := t.Flush(); err != nil {
		logger.Println("flushing output:", err)
	}
	if err := t.startReader(); err != nil {
		return ui.Key{}, err
	}
	if t.keys == nil {
		return ui.Key{}, io.EOF
	}
	return t.keys.ReadKey()
}

// PutChar writes c and tracks where the terminal puts the cursor, assuming
// it wraps at the last column.
func (t *Terminal) PutChar(c byte) {
	t.out.WriteByte(c)
	switch c {
	case '\r':
		t.x = 0
	case '\n':
		if t.y < t.lines-1 {
			t.y++
		}
	case '\b':
		if t.x > 0 {
			t.x--
		}
	case '\a':
	case '\t':
		t.x = min(t.x+8-t.x%8, t.cols-1)
	default:
		t.x++
		if t.x >= t.cols {
			t.x = 0
			if t.y < t.lines-1 {
				t.y++
			}
		}
	}
}

func (t *Terminal) Cls() {
	t.out.WriteString("\033[H\033[2J")
	t.x, t.y = 0, 0
}

func (t *Terminal) Pos() (x, y int) { return t.x, t.y }

func (t *Terminal) MoveTo(x, y int) {
	t.x = max(0, min(x, t.cols-1))
	t.y = max(0, min(y, t.lines-1))
	fmt.Fprintf(t.out, "\033[%d;%dH", t.y+1, t.x+1)
}

func (t *Terminal) SetColorState(s ui.ColorState) {
	if s == ui.ColorStandard {
		t.out.WriteString("\033[0m")
		return
	}
	a := t.palette.Attr(s)
	fmt.Fprintf(t.out, "\033[0;%s;%sm", a.Fg().SGR(false), a.Bg().SGR(true))
}

func (t *Terminal) SetPalette(p ui.Palette) { t.palette = p }

func (t *Terminal) ShowCursor(on bool) bool {
	old := t.cursor
	if on {
		t.out.WriteString("\033[?25h")
	} else {
		t.out.WriteString("\033[?25l")
	}
	t.cursor = on
	return old
}
