// Package tty implements the console layer: a registry of display devices,
// a paging character output engine and a small printf.
//
// All state lives in a Console value. A Console is not safe for concurrent
// use; it is driven by a single reader of keys.
package tty

import (
	"errors"
	"fmt"

	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/ui"
)

var logger = logutil.GetLogger("[tty] ")

// ErrNoSuchDevice is returned by Activate when no device has the given name.
var ErrNoSuchDevice = errors.New("no such device")

// Console multiplexes output and input over a set of devices, one of which is
// current at any time.
type Console struct {
	devs []Device
	cur  Device

	palette ui.Palette

	// Pager state.
	pager      bool
	pageHeight int
	lines      int
	suspended  bool
	quit       bool
	quitKey    rune
}

// NewConsole creates a Console with the given devices registered. The first
// device, if any, becomes current. Devices flagged NeedInit are not
// initialized; use Activate for that.
func NewConsole(devs ...Device) *Console {
	c := &Console{palette: ui.DefaultPalette, quitKey: 'q'}
	for _, d := range devs {
		c.Register(d)
	}
	if len(devs) > 0 {
		c.Select(devs[0])
	}
	return c
}

// Register adds a device to the registry. A device registered under a name
// already in use replaces the old entry.
func (c *Console) Register(d Device) {
	for i, old := range c.devs {
		if old.Name() == d.Name() {
			c.devs[i] = d
			return
		}
	}
	c.devs = append(c.devs, d)
}

// Lookup finds a registered device by name.
func (c *Console) Lookup(name string) (Device, bool) {
	for _, d := range c.devs {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Devices returns the registered devices in registration order.
func (c *Console) Devices() []Device {
	return append([]Device(nil), c.devs...)
}

// Current returns the current device.
func (c *Console) Current() Device { return c.cur }

// Select makes d the current device and rearms the pager. It never fails;
// a device not yet in the registry is added to it.
func (c *Console) Select(d Device) {
	if _, ok := c.Lookup(d.Name()); !ok {
		c.devs = append(c.devs, d)
	}
	c.cur = d
	if cl, ok := d.(Colorer); ok {
		cl.SetPalette(c.palette)
	}
	c.ResetPager()
}

// Activate switches to the named device. A device flagged NeedInit is
// initialized first; on failure the current device stays in place. The
// previous device is shut down if it supports that.
func (c *Console) Activate(name string) error {
	d, ok := c.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchDevice, name)
	}
	if d == c.cur {
		return nil
	}
	if in, ok := d.(Initializer); ok && d.Flags()&NeedInit != 0 {
		if err := in.Init(); err != nil {
			return fmt.Errorf("init %s: %w", name, err)
		}
	}
	if sd, ok := c.cur.(Shutdowner); ok {
		if err := sd.Shutdown(); err != nil {
			logger.Printf("shutdown %s: %v", c.cur.Name(), err)
		}
	}
	logger.Printf("switching to %s", name)
	c.Select(d)
	return nil
}

// Shutdown shuts down the current device if it supports that.
func (c *Console) Shutdown() error {
	if sd, ok := c.cur.(Shutdowner); ok {
		return sd.Shutdown()
	}
	return nil
}

// Size returns the geometry of the current device.
func (c *Console) Size() (cols, lines int) { return c.cur.Size() }

// Flags returns the flags of the current device.
func (c *Console) Flags() Flag { return c.cur.Flags() }

// Pos returns the cursor position of the current device. The last return
// value is false if the device has no cursor addressing.
func (c *Console) Pos() (x, y int, ok bool) {
	if p, ok := c.cur.(Positioner); ok {
		x, y := p.Pos()
		return x, y, true
	}
	return 0, 0, false
}

// MoveTo moves the cursor of the current device, if it has cursor
// addressing.
func (c *Console) MoveTo(x, y int) {
	if p, ok := c.cur.(Positioner); ok {
		p.MoveTo(x, y)
	}
}

// SetColorState switches the current device to a color state, if supported.
func (c *Console) SetColorState(s ui.ColorState) {
	if cs, ok := c.cur.(ColorStater); ok {
		cs.SetColorState(s)
	}
}

// SetPalette sets the palette used for color states, both for the current
// device and for devices selected later.
func (c *Console) SetPalette(p ui.Palette) {
	c.palette = p
	if cl, ok := c.cur.(Colorer); ok {
		cl.SetPalette(p)
	}
}

// Palette returns the palette in use.
func (c *Console) Palette() ui.Palette { return c.palette }

// SetCursorVisible shows or hides the cursor of the current device and
// returns its previous visibility. A device that cannot hide its cursor
// reports it as visible.
func (c *Console) SetCursorVisible(on bool) bool {
	if cs, ok := c.cur.(CursorShower); ok {
		return cs.ShowCursor(on)
	}
	return true
}

// CheckKey reports whether the current device has a key waiting.
func (c *Console) CheckKey() bool { return c.cur.CheckKey() }

// ReadKey reads a key from the current device.
func (c *Console) ReadKey() (ui.Key, error) { return c.cur.ReadKey() }
