package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"src.bootcon.sh/pkg/cli"
	"src.bootcon.sh/pkg/numparse"
	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/ui"
)

// ErrUsage is returned by a builtin called with the wrong arguments.
var ErrUsage = errors.New("usage")

// The shared variable holding the name of the last device selected with the
// terminal builtin.
const terminalVar = "terminal"

type builtin struct {
	usage string
	help  string
	fn    func(sh *Shell, args []string) error
}

// Initialized in init, since help refers to the table.
var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"help":     {"[COMMAND]", "show help for commands", help},
		"clear":    {"", "clear the screen", clearScreen},
		"echo":     {"[WORD...]", "print words", echo},
		"printf":   {"FORMAT [ARG...]", "print formatted words and numbers", printf},
		"pager":    {"[on|off]", "show or set the pager", pager},
		"lines":    {"N", "set the page height, 0 for the screen height", lines},
		"color":    {"NORMAL [HIGHLIGHT [HEADING]]", "set the colors as fg/bg pairs", color},
		"terminal": {"[NAME]", "list devices or switch to one", terminal},
		"history":  {"", "list the command history", history},
		"cat":      {"FILE", "print a file", cat},
		"password": {"", "read a password without echoing it", password},
		"exit":     {"[STATUS]", "leave the console", exitShell},
	}
}

func usageError(name string) error {
	return fmt.Errorf("%w: %s %s", ErrUsage, name, builtins[name].usage)
}

func help(sh *Shell, args []string) error {
	names := args
	if len(names) == 0 {
		names = builtinNames()
		sh.con.InitPage(" Commands")
	}
	for _, name := range names {
		b, ok := builtins[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		if sh.con.Quit() {
			break
		}
		sh.con.Printf("%s %s\n    %s\n", name, b.usage, b.help)
	}
	return nil
}

func clearScreen(sh *Shell, args []string) error {
	if len(args) != 0 {
		return usageError("clear")
	}
	sh.con.Cls()
	return nil
}

func echo(sh *Shell, args []string) error {
	sh.con.Puts(strings.Join(args, " "))
	sh.con.PutChar('\n')
	return nil
}

// word is a printf argument. It formats as a string with %s and as a number
// with the integer conversions.
type word string

var _ tty.Worder = word("")

func (w word) String() string { return string(w) }

func (w word) Word() (uint64, bool) {
	v, err := numparse.Atoi(string(w))
	return uint64(v), err == nil
}

var formatEscaper = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`)

func printf(sh *Shell, args []string) error {
	if len(args) == 0 {
		return usageError("printf")
	}
	words := make([]interface{}, len(args)-1)
	for i, arg := range args[1:] {
		words[i] = word(arg)
	}
	sh.con.Printf(formatEscaper.Replace(args[0]), words...)
	return nil
}

func pager(sh *Shell, args []string) error {
	switch {
	case len(args) == 0:
		state := "off"
		if sh.con.Pager() {
			state = "on"
		}
		sh.con.Printf("pager is %s, %d lines per page\n", state, sh.con.PageHeight())
	case len(args) == 1 && args[0] == "on":
		sh.con.SetPager(true)
	case len(args) == 1 && args[0] == "off":
		sh.con.SetPager(false)
	default:
		return usageError("pager")
	}
	return nil
}

func lines(sh *Shell, args []string) error {
	if len(args) != 1 {
		return usageError("lines")
	}
	n, err := numparse.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("lines: %w", err)
	}
	if n < 0 || n > 1<<16 {
		return fmt.Errorf("lines: %d out of range", n)
	}
	sh.con.SetPageHeight(int(n))
	return nil
}

func color(sh *Shell, args []string) error {
	if len(args) == 0 || len(args) > 3 {
		return usageError("color")
	}
	p := sh.con.Palette()
	fields := []*ui.Attr{&p.Normal, &p.Highlight, &p.Heading}
	for i, arg := range args {
		if err := fields[i].UnmarshalText([]byte(arg)); err != nil {
			return fmt.Errorf("color: %w", err)
		}
	}
	sh.con.SetPalette(p)
	sh.con.SetColorState(ui.ColorNormal)
	return nil
}

func terminal(sh *Shell, args []string) error {
	switch len(args) {
	case 0:
		cur := sh.con.Current()
		for _, d := range sh.con.Devices() {
			mark := ' '
			if d == cur {
				mark = '*'
			}
			sh.con.Printf("%c %s\n", mark, d.Name())
		}
		return nil
	case 1:
		if err := sh.con.Activate(args[0]); err != nil {
			return err
		}
		if sh.store != nil {
			if err := sh.store.SetSharedVar(terminalVar, args[0]); err != nil {
				logger.Println("saving terminal:", err)
			}
		}
		return nil
	}
	return usageError("terminal")
}

func history(sh *Shell, args []string) error {
	if len(args) != 0 {
		return usageError("history")
	}
	entries := sh.hist.Entries()
	for i := len(entries) - 1; i >= 0 && !sh.con.Quit(); i-- {
		sh.con.Printf("%3d  %s\n", len(entries)-i, entries[i])
	}
	return nil
}

func cat(sh *Shell, args []string) error {
	if len(args) != 1 {
		return usageError("cat")
	}
	if sh.files == nil {
		return errors.New("cat: no files available")
	}
	f, err := sh.files.Open(path.Clean(strings.TrimPrefix(args[0], "/")))
	if err != nil {
		return err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	for !sh.con.Quit() {
		c, err := r.ReadByte()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("cat: %w", err)
		}
		sh.con.PutChar(c)
	}
	return nil
}

func password(sh *Shell, args []string) error {
	if len(args) != 0 {
		return usageError("password")
	}
	pw, err := sh.ed.ReadLine(cli.Config{Prompt: "Password: ", EchoChar: '*', MaxLen: sh.cfg.MaxLine}, "")
	if err != nil {
		return err
	}
	sh.con.Printf("%d characters read\n", len(pw))
	return nil
}

func exitShell(sh *Shell, args []string) error {
	switch len(args) {
	case 0:
		return exitRequest{0}
	case 1:
		n, err := numparse.Atoi(args[0])
		if err != nil || n < 0 || n > 255 {
			return fmt.Errorf("exit: bad status %s", args[0])
		}
		return exitRequest{int(n)}
	}
	return usageError("exit")
}
