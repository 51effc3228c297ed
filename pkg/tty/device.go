package tty

import "src.bootcon.sh/pkg/ui"

// Flag describes properties of a Device.
type Flag uint8

// Possible Flag bits.
const (
	// NeedInit marks a device that must be initialized before use.
	NeedInit Flag = 1 << iota
	// NoEcho marks a device whose input must not be echoed back.
	NoEcho
	// NoEdit marks a device that cannot support in-place line editing.
	NoEdit
	// Dumb marks a device with no cursor addressing. Output flows like a
	// teletype.
	Dumb
)

// Device is a display plus keyboard pair that the console can print to and
// read keys from. Optional capabilities are expressed with the Positioner,
// ColorStater, Colorer, CursorShower, Initializer and Shutdowner interfaces;
// the console treats a missing capability as a no-op.
type Device interface {
	// Name is the name under which the device is registered.
	Name() string
	Flags() Flag
	// Size returns the number of columns and lines of the display.
	Size() (cols, lines int)
	// PutChar writes a single byte. Line feeds move down without returning
	// to the first column.
	PutChar(c byte)
	// CheckKey reports whether a key is available without blocking.
	CheckKey() bool
	// ReadKey blocks until a key is available.
	ReadKey() (ui.Key, error)
	// Cls clears the display and homes the cursor.
	Cls()
}

// Positioner is implemented by devices with cursor addressing.
type Positioner interface {
	Pos() (x, y int)
	MoveTo(x, y int)
}

// ColorStater is implemented by devices that can switch between the logical
// color states.
type ColorStater interface {
	SetColorState(ui.ColorState)
}

// Colorer is implemented by devices whose palette can be changed.
type Colorer interface {
	SetPalette(ui.Palette)
}

// CursorShower is implemented by devices that can hide the cursor. ShowCursor
// returns the previous visibility.
type CursorShower interface {
	ShowCursor(on bool) bool
}

// Initializer is implemented by devices that need setup before use.
type Initializer interface {
	Init() error
}

// Shutdowner is implemented by devices that need teardown when another device
// takes over.
type Shutdowner interface {
	Shutdown() error
}
