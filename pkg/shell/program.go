package shell

import (
	"errors"
	"fmt"
	"os"

	cliterm "src.bootcon.sh/pkg/cli/term"
	"src.bootcon.sh/pkg/conf"
	"src.bootcon.sh/pkg/prog"
	"src.bootcon.sh/pkg/store"
	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/tty/graphics"
	"src.bootcon.sh/pkg/tty/serial"
	"src.bootcon.sh/pkg/tty/vga"
	"src.bootcon.sh/pkg/tty/vt"
)

// Program is the console subprogram.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) > 0 {
		return prog.BadUsage("arguments are not supported")
	}
	cfg, err := conf.Load(f.Config)
	if err != nil {
		return err
	}
	if f.DB != "" {
		cfg.History.DB = f.DB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var st store.Store
	if cfg.History.DB != "" {
		st, err = store.NewStore(cfg.History.DB)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
			fmt.Fprintln(fds[2], "History will not be saved.")
		} else {
			defer st.Close()
		}
	}

	con, screen, err := buildConsole(fds, cfg, f.Headless)
	if err != nil {
		return err
	}
	device := startDevice(con, cfg, f, st)
	if err := con.Activate(device); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	sh := New(con, cfg, os.DirFS(wd), st)
	err = sh.Interact()
	err = errors.Join(err, sh.Save(), con.Shutdown())
	if screen != nil {
		err = errors.Join(err, screen.Dump(fds[1]))
	}
	return err
}

// startDevice returns the device to activate first: the one named on the
// command line, the one last selected with the terminal builtin, or the one
// in the configuration. A saved device that is no longer registered is
// ignored.
func startDevice(con *tty.Console, cfg conf.Config, f *prog.Flags, st store.Store) string {
	switch {
	case f.Headless:
		return "vga"
	case f.Device != "":
		return f.Device
	}
	if st != nil {
		name, err := st.SharedVar(terminalVar)
		if _, ok := con.Lookup(name); err == nil && ok {
			return name
		} else if err != nil && !errors.Is(err, store.ErrNoSharedVar) {
			logger.Println("reading terminal:", err)
		}
	}
	return cfg.Device
}

// buildConsole registers the devices. In headless mode, the only device is a
// vga screen taking keys from the standard input; it is returned so that it
// can be printed at the end.
func buildConsole(fds [3]*os.File, cfg conf.Config, headless bool) (*tty.Console, *vga.Screen, error) {
	con := tty.NewConsole()
	if headless {
		screen := vga.New("vga", 80, 25, cliterm.NewStreamReader(fds[0]))
		con.Register(screen)
		return con, screen, nil
	}
	con.Register(vt.New("console", fds[0], fds[1]))
	con.Register(graphics.New("graphics", nil))
	if cfg.Serial.Path != "" {
		var flags tty.Flag
		if cfg.Serial.NoEcho {
			flags |= tty.NoEcho
		}
		port, err := serial.Open("serial", cfg.Serial.Path, flags)
		if err != nil {
			return nil, nil, fmt.Errorf("opening serial port: %w", err)
		}
		con.Register(port)
	}
	return con, nil, nil
}
