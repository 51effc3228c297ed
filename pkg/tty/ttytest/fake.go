// Package ttytest provides a recording device for testing code that drives a
// tty.Console.
package ttytest

import (
	"io"

	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/ui"
)

// Fake is a tty.Device that records everything written to it and reads keys
// from a queue. It has no cursor addressing; pair it with the Dumb flag to
// model a teletype.
type Fake struct {
	DevName     string
	DevFlags    tty.Flag
	Cols, Lines int

	// Out accumulates all bytes passed to PutChar.
	Out []byte
	// Keys is the queue of pending keys. ReadKey returns io.EOF when it is
	// empty.
	Keys []ui.Key
	// States records color state switches.
	States []ui.ColorState
	// KeyReads counts calls to ReadKey.
	KeyReads int
	// Clears counts calls to Cls.
	Clears int

	InitErr   error
	Inits     int
	Shutdowns int
	CursorOn  bool
}

var _ tty.Device = (*Fake)(nil)

// NewFake returns a Fake with the given name and flags and an 80x25 geometry.
func NewFake(name string, flags tty.Flag) *Fake {
	return &Fake{DevName: name, DevFlags: flags, Cols: 80, Lines: 25}
}

// Feed appends keys to the queue.
func (f *Fake) Feed(keys ...ui.Key) { f.Keys = append(f.Keys, keys...) }

// FeedString appends one key per byte of s.
func (f *Fake) FeedString(s string) {
	for i := 0; i < len(s); i++ {
		f.Keys = append(f.Keys, ui.K(rune(s[i])))
	}
}

// Output returns everything written so far and clears the record.
func (f *Fake) Output() string {
	s := string(f.Out)
	f.Out = f.Out[:0]
	return s
}

func (f *Fake) Name() string            { return f.DevName }
func (f *Fake) Flags() tty.Flag         { return f.DevFlags }
func (f *Fake) Size() (cols, lines int) { return f.Cols, f.Lines }
func (f *Fake) PutChar(c byte)          { f.Out = append(f.Out, c) }
func (f *Fake) CheckKey() bool          { return len(f.Keys) > 0 }
func (f *Fake) Cls()                    { f.Clears++ }

func (f *Fake) ReadKey() (ui.Key, error) {
	f.KeyReads++
	if len(f.Keys) == 0 {
		return ui.Key{}, io.EOF
	}
	k := f.Keys[0]
	f.Keys = f.Keys[1:]
	return k, nil
}

func (f *Fake) SetColorState(s ui.ColorState) { f.States = append(f.States, s) }

func (f *Fake) Init() error {
	f.Inits++
	return f.InitErr
}

func (f *Fake) Shutdown() error {
	f.Shutdowns++
	return nil
}

func (f *Fake) ShowCursor(on bool) bool {
	old := f.CursorOn
	f.CursorOn = on
	return old
}
