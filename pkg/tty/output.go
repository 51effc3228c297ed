package tty

import (
	"strings"
	"unicode"

	"src.bootcon.sh/pkg/ui"
)

const morePrompt = "[Hit Q to quit, any other key to continue]"

var moreErase = "\r" + strings.Repeat(" ", len(morePrompt)) + "\r"

// SetPager enables or disables paging of output.
func (c *Console) SetPager(on bool) {
	c.pager = on
	c.ResetPager()
}

// Pager reports whether paging is enabled.
func (c *Console) Pager() bool { return c.pager }

// SetPageHeight sets the number of lines of a page. A value of 0 uses the
// line count of the current device.
func (c *Console) SetPageHeight(n int) {
	c.pageHeight = n
}

// PageHeight returns the effective page height.
func (c *Console) PageHeight() int {
	if c.pageHeight > 0 {
		return c.pageHeight
	}
	_, lines := c.cur.Size()
	return lines
}

// SetQuitKey sets the key that answers the pager prompt with a quit request.
// Letters match in either case.
func (c *Console) SetQuitKey(r rune) { c.quitKey = unicode.ToLower(r) }

// ResetPager restarts the line count and clears any quit request.
func (c *Console) ResetPager() {
	c.lines = 0
	c.suspended = false
	c.quit = false
}

// Quit reports whether the user answered a pager prompt with the quit key.
// Long-running output loops should stop when it returns true.
func (c *Console) Quit() bool { return c.quit }

// PutChar writes one character to the current device. Tabs expand to the next
// multiple of 8 on devices with cursor addressing. A line feed is preceded by
// a carriage return and, with the pager on, counted; when a page is full the
// user is asked whether to continue before the count restarts.
func (c *Console) PutChar(ch byte) {
	d := c.cur
	switch ch {
	case '\t':
		if p, ok := d.(Positioner); ok {
			x, _ := p.Pos()
			for n := 8 - x%8; n > 0; n-- {
				d.PutChar(' ')
			}
			return
		}
	case '\n':
		d.PutChar('\r')
		if c.pager && !c.suspended {
			c.lines++
			if c.lines >= c.pageLimit() {
				c.more()
				return
			}
		}
	}
	d.PutChar(ch)
}

func (c *Console) pageLimit() int {
	if n := c.PageHeight() - 2; n > 0 {
		return n
	}
	return 1
}

// more finishes the line that filled the page and, except on dumb devices,
// prompts for a key.
func (c *Console) more() {
	c.suspended = true
	d := c.cur
	d.PutChar('\n')
	if d.Flags()&Dumb == 0 {
		c.SetColorState(ui.ColorHighlight)
		c.Puts(morePrompt)
		k, err := d.ReadKey()
		if err != nil {
			logger.Printf("reading pager key: %v", err)
			c.quit = true
		} else if k.Mod == 0 && unicode.ToLower(k.Rune) == c.quitKey {
			c.quit = true
		}
		c.SetColorState(ui.ColorStandard)
		c.Puts(moreErase)
	}
	c.lines = 0
	c.suspended = false
}

// Puts writes a string with PutChar.
func (c *Console) Puts(s string) {
	for i := 0; i < len(s); i++ {
		c.PutChar(s[i])
	}
}

// Write implements io.Writer with PutChar.
func (c *Console) Write(p []byte) (int, error) {
	for _, b := range p {
		c.PutChar(b)
	}
	return len(p), nil
}

// Cls clears the current device and rearms the pager. A dumb device gets a
// line feed instead.
func (c *Console) Cls() {
	if c.cur.Flags()&Dumb != 0 {
		c.PutChar('\n')
	} else {
		c.cur.Cls()
	}
	c.ResetPager()
}

// InitPage clears the screen and prints a heading line.
func (c *Console) InitPage(heading string) {
	c.Cls()
	cols, _ := c.Size()
	width := cols - 1
	if len(heading) > width {
		heading = heading[:width]
	}
	c.SetColorState(ui.ColorHeading)
	c.Puts(heading)
	if c.cur.Flags()&Dumb == 0 {
		for n := len(heading); n < width; n++ {
			c.PutChar(' ')
		}
	}
	c.SetColorState(ui.ColorStandard)
	c.Puts("\n\n")
}

// PrintError prints an error message on a line of its own.
func (c *Console) PrintError(err error) {
	if err == nil {
		return
	}
	c.Printf("\nError: %s\n", err.Error())
}
