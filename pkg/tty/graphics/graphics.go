// Package graphics implements a full-screen console device on a tcell screen.
// Text is kept in a cell buffer the size of the screen and repainted when the
// buffer scrolls.
package graphics

import (
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/encoding/charmap"

	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/ui"
)

var logger = logutil.GetLogger("[graphics] ")

type cell struct {
	ch    byte
	style tcell.Style
}

// Display is a tcell-backed device. It must be initialized before use.
type Display struct {
	name string
	open func() (tcell.Screen, error)
	scr  tcell.Screen

	cols, lines int
	cells       []cell
	x, y        int
	palette     ui.Palette
	style       tcell.Style
	cursor      bool
}

var (
	_ tty.Device       = (*Display)(nil)
	_ tty.Positioner   = (*Display)(nil)
	_ tty.ColorStater  = (*Display)(nil)
	_ tty.Colorer      = (*Display)(nil)
	_ tty.CursorShower = (*Display)(nil)
	_ tty.Initializer  = (*Display)(nil)
	_ tty.Shutdowner   = (*Display)(nil)
)

// New creates a Display that calls open on initialization to obtain its
// screen. A nil open uses tcell.NewScreen.
func New(name string, open func() (tcell.Screen, error)) *Display {
	if open == nil {
		open = tcell.NewScreen
	}
	return &Display{
		name: name, open: open,
		cols: 80, lines: 25,
		palette: ui.DefaultPalette, cursor: true,
	}
}

func (d *Display) Name() string            { return d.name }
func (d *Display) Flags() tty.Flag         { return tty.NeedInit }
func (d *Display) Size() (cols, lines int) { return d.cols, d.lines }

// Init opens and initializes the screen.
func (d *Display) Init() error {
	if d.scr != nil {
		return nil
	}
	scr, err := d.open()
	if err != nil {
		return fmt.Errorf("can't open screen: %w", err)
	}
	if err := scr.Init(); err != nil {
		return fmt.Errorf("can't initialize screen: %w", err)
	}
	d.scr = scr
	d.style = d.styleFor(ui.ColorStandard)
	d.resize()
	d.Cls()
	return nil
}

// Shutdown releases the screen.
func (d *Display) Shutdown() error {
	if d.scr != nil {
		d.scr.Fini()
		d.scr = nil
	}
	return nil
}

func (d *Display) resize() {
	cols, lines := d.scr.Size()
	if cols <= 0 || lines <= 0 {
		return
	}
	d.cols, d.lines = cols, lines
	d.cells = make([]cell, cols*lines)
	for i := range d.cells {
		d.cells[i] = cell{' ', d.style}
	}
	d.x, d.y = min(d.x, cols-1), min(d.y, lines-1)
}

func (d *Display) styleFor(s ui.ColorState) tcell.Style {
	a := d.palette.Attr(s)
	return tcell.StyleDefault.
		Foreground(tcell.PaletteColor(a.Fg().ANSI())).
		Background(tcell.PaletteColor(a.Bg().ANSI()))
}

func (d *Display) set(x, y int, c cell) {
	d.cells[y*d.cols+x] = c
	d.scr.SetContent(x, y, charmap.CodePage437.DecodeByte(c.ch), nil, c.style)
}

func (d *Display) repaint() {
	for y := 0; y < d.lines; y++ {
		for x := 0; x < d.cols; x++ {
			d.set(x, y, d.cells[y*d.cols+x])
		}
	}
}

func (d *Display) PutChar(c byte) {
	if d.scr == nil {
		return
	}
	switch c {
	case '\r':
		d.x = 0
	case '\n':
		d.lineFeed()
	case '\b':
		if d.x > 0 {
			d.x--
		}
	case '\a':
	default:
		d.set(d.x, d.y, cell{c, d.style})
		d.x++
		if d.x >= d.cols {
			d.x = 0
			d.lineFeed()
		}
	}
	d.placeCursor()
}

func (d *Display) lineFeed() {
	if d.y < d.lines-1 {
		d.y++
		return
	}
	copy(d.cells, d.cells[d.cols:])
	for i := (d.lines - 1) * d.cols; i < len(d.cells); i++ {
		d.cells[i] = cell{' ', d.style}
	}
	d.repaint()
}

func (d *Display) placeCursor() {
	if d.cursor {
		d.scr.ShowCursor(d.x, d.y)
	} else {
		d.scr.HideCursor()
	}
}

func (d *Display) Cls() {
	if d.scr == nil {
		return
	}
	for i := range d.cells {
		d.cells[i] = cell{' ', d.style}
	}
	d.repaint()
	d.x, d.y = 0, 0
	d.placeCursor()
}

func (d *Display) Pos() (x, y int) { return d.x, d.y }

func (d *Display) MoveTo(x, y int) {
	d.x = max(0, min(x, d.cols-1))
	d.y = max(0, min(y, d.lines-1))
	if d.scr != nil {
		d.placeCursor()
	}
}

func (d *Display) SetColorState(s ui.ColorState) { d.style = d.styleFor(s) }

func (d *Display) SetPalette(p ui.Palette) {
	d.palette = p
	d.style = d.styleFor(ui.ColorStandard)
}

func (d *Display) ShowCursor(on bool) bool {
	old := d.cursor
	d.cursor = on
	if d.scr != nil {
		d.placeCursor()
	}
	return old
}

// Show flushes pending changes to the screen.
func (d *Display) Show() {
	if d.scr != nil {
		d.scr.Show()
	}
}

func (d *Display) CheckKey() bool {
	if d.scr == nil {
		return false
	}
	d.scr.Show()
	return d.scr.HasPendingEvent()
}

// ReadKey waits for a key event. Resize events resize and clear the cell
// buffer; other events are ignored. It returns io.EOF once the screen has
// been finalized.
func (d *Display) ReadKey() (ui.Key, error) {
	if d.scr == nil {
		return ui.Key{}, io.EOF
	}
	for {
		d.scr.Show()
		switch ev := d.scr.PollEvent().(type) {
		case nil:
			return ui.Key{}, io.EOF
		case *tcell.EventKey:
			if k, ok := convertKey(ev); ok {
				return k, nil
			}
			logger.Printf("ignoring key %s", ev.Name())
		case *tcell.EventResize:
			if cols, lines := ev.Size(); cols != d.cols || lines != d.lines {
				d.resize()
				d.repaint()
				d.scr.Sync()
			}
		}
	}
}

var keyMap = map[tcell.Key]rune{
	tcell.KeyEnter:     ui.Enter,
	tcell.KeyTab:       ui.Tab,
	tcell.KeyEsc:       ui.Escape,
	tcell.KeyBackspace: ui.Backspace,
	tcell.KeyDelete:    ui.Delete,
	tcell.KeyInsert:    ui.Insert,
	tcell.KeyUp:        ui.Up,
	tcell.KeyDown:      ui.Down,
	tcell.KeyLeft:      ui.Left,
	tcell.KeyRight:     ui.Right,
	tcell.KeyHome:      ui.Home,
	tcell.KeyEnd:       ui.End,
	tcell.KeyPgUp:      ui.PageUp,
	tcell.KeyPgDn:      ui.PageDown,
}

func convertMod(m tcell.ModMask) ui.Mod {
	var mod ui.Mod
	if m&tcell.ModShift != 0 {
		mod |= ui.Shift
	}
	if m&tcell.ModAlt != 0 {
		mod |= ui.Alt
	}
	if m&tcell.ModCtrl != 0 {
		mod |= ui.Ctrl
	}
	return mod
}

func convertKey(ev *tcell.EventKey) (ui.Key, bool) {
	mod := convertMod(ev.Modifiers())
	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		return ui.Key{Rune: ev.Rune(), Mod: mod}, true
	case keyMap[k] != 0:
		// Backspace, Tab, Enter and Escape double as Ctrl keys in tcell.
		return ui.Key{Rune: keyMap[k], Mod: mod &^ ui.Ctrl}, true
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return ui.Key{Rune: ui.F1 - rune(k-tcell.KeyF1), Mod: mod}, true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return ui.Key{Rune: 'A' + rune(k-tcell.KeyCtrlA), Mod: mod | ui.Ctrl}, true
	}
	return ui.Key{}, false
}
