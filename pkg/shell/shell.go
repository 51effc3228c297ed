// Package shell is the interactive boot console: a command loop over the line
// editor with a small set of builtin commands.
package shell

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"src.bootcon.sh/pkg/cli"
	"src.bootcon.sh/pkg/cli/histutil"
	"src.bootcon.sh/pkg/complete"
	"src.bootcon.sh/pkg/conf"
	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/prog"
	"src.bootcon.sh/pkg/store"
	"src.bootcon.sh/pkg/tty"
)

var logger = logutil.GetLogger("[shell] ")

// ErrUnknownCommand is returned by Eval for a command that is not a builtin.
var ErrUnknownCommand = errors.New("unknown command")

// Returned by the exit builtin to end Interact.
type exitRequest struct{ status int }

func (e exitRequest) Error() string { return fmt.Sprintf("exit %d", e.status) }

// Shell holds the state of an interactive session.
type Shell struct {
	con   *tty.Console
	ed    *cli.Editor
	hist  *histutil.Region
	store store.Store
	files fs.FS
	cfg   conf.Config
}

// New creates a Shell on a console, applying the console settings of cfg.
// Files are read by cat and completed from files, which may be nil. If st is
// not nil, history saved in it is restored.
func New(con *tty.Console, cfg conf.Config, files fs.FS, st store.Store) *Shell {
	con.SetPalette(cfg.Palette())
	con.SetPager(cfg.Pager)
	con.SetPageHeight(cfg.PageHeight)
	con.SetQuitKey(cfg.QuitRune())

	hist := histutil.NewRegion(cfg.MaxLine, cfg.History.Entries)
	if st != nil {
		restoreHistory(hist, st)
	}
	comp := complete.New(builtinNames(), files)
	return &Shell{
		con: con, ed: cli.NewEditor(con, hist, comp), hist: hist,
		store: st, files: files, cfg: cfg,
	}
}

func restoreHistory(hist *histutil.Region, st store.Store) {
	data, n, err := st.History()
	if err != nil {
		if !errors.Is(err, store.ErrNoHistory) {
			logger.Println("reading history:", err)
		}
		return
	}
	if err := hist.Restore(data, n); err != nil {
		logger.Println("restoring history:", err)
	}
}

// Save writes the history to the store, if there is one.
func (sh *Shell) Save() error {
	if sh.store == nil {
		return nil
	}
	data, n := sh.hist.Snapshot()
	if err := sh.store.SetHistory(data, n); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// History returns the history entries, most recent first.
func (sh *Shell) History() []string { return sh.hist.Entries() }

// Interact reads and runs commands until the input ends or the exit builtin
// is run. Errors from commands are printed and do not end the loop. A non-zero
// status given to exit is returned as a prog.Exit error.
func (sh *Shell) Interact() error {
	lineCfg := cli.Config{Prompt: sh.cfg.Prompt, MaxLen: sh.cfg.MaxLine, Readline: true}
	for {
		sh.con.ResetPager()
		line, err := sh.ed.ReadLine(lineCfg, "")
		if errors.Is(err, cli.ErrCancelled) {
			continue
		} else if errors.Is(err, io.EOF) {
			sh.con.PutChar('\n')
			return nil
		} else if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}
		err = sh.Eval(line)
		var exit exitRequest
		if errors.As(err, &exit) {
			return prog.Exit(exit.status)
		}
		sh.con.PrintError(err)
	}
}

// Eval runs one command line.
func (sh *Shell) Eval(line string) error {
	args := splitArgs(line)
	if len(args) == 0 {
		return nil
	}
	b, ok := builtins[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	logger.Printf("running %q", line)
	sh.con.ResetPager()
	return b.fn(sh, args[1:])
}

// splitArgs splits a command line at unescaped spaces and tabs. A backslash
// takes the next character literally.
func splitArgs(line string) []string {
	var (
		args []string
		sb   strings.Builder
		in   bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			sb.WriteByte(line[i])
			in = true
		case c == ' ' || c == '\t':
			if in {
				args = append(args, sb.String())
				sb.Reset()
				in = false
			}
		default:
			sb.WriteByte(c)
			in = true
		}
	}
	if in {
		args = append(args, sb.String())
	}
	return args
}

func builtinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
