// Package cli implements the console line editor.
//
// A line longer than the display is shown in horizontal sections. The first
// section starts with the prompt; later sections start with a '<' marker, and
// a '>' marker in the last column shows that more text follows. Adjacent
// sections overlap by a margin so that small cursor movements around a
// section boundary do not cause the display to jump.
//
// Devices flagged tty.NoEcho or tty.NoEdit get a raw line mode instead: the
// prompt is printed and printable characters are collected until Enter, with
// no cursor movement, history or completion.
package cli

import (
	"errors"

	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/ui"
)

var logger = logutil.GetLogger("[cli] ")

// ErrCancelled is returned by ReadLine when the user presses Escape.
var ErrCancelled = errors.New("cancelled")

// MaxCmdline is the largest line the editor accepts, including room for a
// terminator.
const MaxCmdline = 1600

// Config configures one ReadLine call.
type Config struct {
	Prompt string
	// MaxLen bounds the line to MaxLen-1 characters. Values outside
	// (0, MaxCmdline] mean MaxCmdline.
	MaxLen int
	// EchoChar, if not zero, is displayed in place of every typed character.
	EchoChar byte
	// Readline enables cursor movement keys, history and completion.
	Readline bool
}

// History is the history store used by the editor. Entry 0 is the most
// recent.
type History interface {
	Get(i int) (string, bool)
	Add(text string, i int) bool
}

// Completer generates completions for the word before the cursor.
type Completer interface {
	// Complete returns the number of candidates for word and, if there are
	// any, the longest text all of them start with. When filename is false,
	// word is the command name.
	Complete(word string, filename bool) (text string, n int)
	// PrintCandidates lists the candidates for word.
	PrintCandidates(c *tty.Console, word string, filename bool)
}

// Editor reads lines from the current device of a console. Its buffers are
// allocated once and reused by every call.
type Editor struct {
	console   *tty.Console
	history   History
	completer Completer

	buf   [MaxCmdline]byte
	saved [MaxCmdline]byte
	s     session
}

// NewEditor creates an Editor. The history and completer may be nil, which
// disables the corresponding readline keys.
func NewEditor(c *tty.Console, h History, comp Completer) *Editor {
	return &Editor{console: c, history: h, completer: comp}
}

// ReadLine reads a line, starting with initial as the editable text. It
// returns ErrCancelled if the user pressed Escape, or the error from the
// device if reading a key failed.
func (ed *Editor) ReadLine(cfg Config, initial string) (string, error) {
	old := ed.console.SetCursorVisible(true)
	defer ed.console.SetCursorVisible(old)

	if ed.console.Flags()&(tty.NoEcho|tty.NoEdit) != 0 {
		return ed.readRaw(cfg)
	}
	s := &ed.s
	s.reset(ed, cfg, initial)
	return s.run()
}

func clampMaxLen(n int) int {
	if n <= 0 || n > MaxCmdline {
		return MaxCmdline
	}
	return n
}

func isEnter(k ui.Key) bool {
	return k.Mod == 0 && (k.Rune == '\r' || k.Rune == '\n')
}

// readRaw collects a line without editing support.
func (ed *Editor) readRaw(cfg Config) (string, error) {
	c := ed.console
	maxlen := clampMaxLen(cfg.MaxLen)
	echo := c.Flags()&tty.NoEcho == 0
	c.Puts(cfg.Prompt)

	buf := ed.buf[:0]
	for {
		k, err := c.ReadKey()
		if err != nil {
			return "", err
		}
		if isEnter(k) {
			break
		}
		if k == ui.K(ui.Escape) {
			return "", ErrCancelled
		}
		if !k.IsPrintable() {
			continue
		}
		ch := byte(k.Rune)
		if echo {
			c.PutChar(ch)
		}
		// Leading spaces are dropped.
		if (ch != ' ' || len(buf) > 0) && len(buf) < maxlen-1 {
			buf = append(buf, ch)
		}
	}
	if echo {
		c.PutChar('\n')
	}
	return string(buf), nil
}
