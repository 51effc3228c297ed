// Package complete generates completions of command names and file names for
// the line editor.
package complete

import (
	"io/fs"
	"sort"
	"strings"

	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/tty"
)

var logger = logutil.GetLogger("[complete] ")

// Completer completes command names from a fixed list and file names from a
// file system. Spaces in file names are escaped with a backslash.
type Completer struct {
	commands []string
	files    fs.FS
}

// New creates a Completer. A nil files disables file name completion.
func New(commands []string, files fs.FS) *Completer {
	cmds := append([]string(nil), commands...)
	sort.Strings(cmds)
	return &Completer{cmds, files}
}

// Complete returns the number of candidates for word and the longest text
// they all start with. A unique candidate is followed by a space, unless it
// is a directory.
func (c *Completer) Complete(word string, filename bool) (string, int) {
	var (
		prefix string
		cands  []string
	)
	if filename {
		prefix, cands = c.fileCandidates(word)
	} else {
		cands = c.commandCandidates(word)
	}
	switch len(cands) {
	case 0:
		return "", 0
	case 1:
		text := escape(prefix + cands[0])
		if !strings.HasSuffix(text, "/") {
			text += " "
		}
		return text, 1
	}
	return escape(prefix + commonPrefix(cands)), len(cands)
}

// PrintCandidates lists the candidates for word on the current line.
func (c *Completer) PrintCandidates(con *tty.Console, word string, filename bool) {
	var cands []string
	if filename {
		con.Puts(" Possible files are:")
		_, cands = c.fileCandidates(word)
	} else {
		con.Puts(" Possible commands are:")
		cands = c.commandCandidates(word)
	}
	for _, s := range cands {
		if con.Quit() {
			break
		}
		con.PutChar(' ')
		con.Puts(escape(s))
	}
}

func (c *Completer) commandCandidates(word string) []string {
	var cands []string
	for _, name := range c.commands {
		if strings.HasPrefix(name, word) {
			cands = append(cands, name)
		}
	}
	return cands
}

// fileCandidates returns the directory part of word and the entries in that
// directory that start with the rest of word. Directories carry a trailing
// slash.
func (c *Completer) fileCandidates(word string) (dir string, cands []string) {
	if c.files == nil {
		return "", nil
	}
	raw := unescape(word)
	base := raw
	if i := strings.LastIndexByte(raw, '/'); i >= 0 {
		dir, base = raw[:i+1], raw[i+1:]
	}
	fsDir := strings.Trim(dir, "/")
	if fsDir == "" {
		fsDir = "."
	}
	entries, err := fs.ReadDir(c.files, fsDir)
	if err != nil {
		logger.Printf("reading %s: %v", fsDir, err)
		return dir, nil
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		cands = append(cands, name)
	}
	return dir, cands
}

func commonPrefix(ss []string) string {
	p := ss[0]
	for _, s := range ss[1:] {
		n := 0
		for n < len(p) && n < len(s) && p[n] == s[n] {
			n++
		}
		p = p[:n]
	}
	return p
}

var escaper = strings.NewReplacer(`\`, `\\`, " ", `\ `)

func escape(s string) string { return escaper.Replace(s) }

func unescape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
