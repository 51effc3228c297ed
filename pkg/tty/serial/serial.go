// Package serial implements a teletype-style console device on a serial line
// or any other byte stream.
package serial

import (
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

var logger = logutil.GetLogger("[serial] ")

// Port is a serial console. It has no cursor addressing, so it always
// carries tty.Dumb; extra flags such as tty.NoEcho are given to New.
type Port struct {
	name  string
	rw    io.ReadWriter
	file  *os.File
	flags tty.Flag

	keys    *cliterm.Reader
	restore *term.State
	closer  io.Closer
}

var (
	_ tty.Device      = (*Port)(nil)
	_ tty.Initializer = (*Port)(nil)
	_ tty.Shutdowner  = (*Port)(nil)
)

// New creates a Port on rw.
func New(name string, rw io.ReadWriter, flags tty.Flag) *Port {
	p := &Port{name: name, rw: rw, flags: flags | tty.Dumb | tty.NeedInit}
	if f, ok := rw.(*os.File); ok {
		p.file = f
	}
	return p
}

// Open opens the serial device at path and creates a Port on it. The file is
// closed when the Port is shut down.
func Open(name, path string, flags tty.Flag) (*Port, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	p := New(name, f, flags)
	p.closer = f
	return p, nil
}

func (p *Port) Name() string            { return p.name }
func (p *Port) Flags() tty.Flag         { return p.flags }
func (p *Port) Size() (cols, lines int) { return 80, 24 }

// Init puts the line into raw mode if it is a terminal and starts reading
// keys.
func (p *Port) Init() error {
	if p.keys != nil {
		return nil
	}
	if p.file != nil && sys.IsATTY(p.file.Fd()) {
		st, err := term.MakeRaw(int(p.file.Fd()))
		if err != nil {
			return fmt.Errorf("can't set up serial line: %w", err)
		}
		p.restore = st
	}
	if p.file != nil {
		rd, err := cliterm.NewReader(p.file)
		if err != nil {
			return err
		}
		p.keys = rd
	} else {
		p.keys = cliterm.NewStreamReader(p.rw)
	}
	logger.Printf("%s ready", p.name)
	return nil
}

// Shutdown stops reading keys and restores the line mode.
func (p *Port) Shutdown() error {
	if p.keys != nil {
		p.keys.Close()
		p.keys = nil
	}
	var errRestore, errClose error
	if p.restore != nil {
		errRestore = term.Restore(int(p.file.Fd()), p.restore)
		p.restore = nil
	}
	if p.closer != nil {
		errClose = p.closer.Close()
		p.closer = nil
	}
	return errors.Join(errRestore, errClose)
}

func (p *Port) PutChar(c byte) {
	if _, err := p.rw.Write([]byte{c}); err != nil {
		logger.Println("write:", err)
	}
}

func (p *Port) Cls() { p.rw.Write([]byte("\r\n")) }

func (p *Port) CheckKey() bool {
	return p.keys != nil && p.keys.Pending()
}

func (p *Port) ReadKey() (ui.Key, error) {
	if p.keys == nil {
		if err := p.Init(); err != nil {
			return ui.Key{}, err
		}
	}
	return p.keys.ReadKey()
}
