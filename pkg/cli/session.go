package cli

import (
	"strings"

	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/ui"
)

const defaultMargin = 10

// session is the state of one full-mode ReadLine call.
type session struct {
	c    *tty.Console
	hist History
	comp Completer

	prompt   string
	plen     int
	maxlen   int
	echo     byte
	readline bool
	// Devices without cursor addressing are driven with backspaces and
	// carriage returns.
	dumb bool

	// Geometry: usable width of the line, overlap between sections, and the
	// distance between the starts of consecutive sections.
	width  int
	margin int
	stride int

	buf  []byte
	llen int
	// Logical cursor, as an index into buf.
	lpos int
	// Screen column of the cursor.
	xpos    int
	section int

	histIdx  int
	saved    []byte
	savedLen int
}

func (s *session) reset(ed *Editor, cfg Config, initial string) {
	c := ed.console
	cols, _ := c.Size()
	_, _, positioned := c.Pos()
	*s = session{
		c: c, hist: ed.history, comp: ed.completer,
		maxlen: clampMaxLen(cfg.MaxLen), echo: cfg.EchoChar, readline: cfg.Readline,
		dumb:  c.Flags()&tty.Dumb != 0 || !positioned,
		buf:   ed.buf[:], saved: ed.saved[:],
		histIdx: -1,
	}

	s.width = cols - 2
	if s.width < 4 {
		s.width = 4
	}
	s.margin = defaultMargin
	if m := (s.width - 2) / 2; m < s.margin {
		s.margin = m
	}
	s.stride = s.width - 1 - s.margin

	// A prompt wider than a section stride would leave no room for text.
	s.prompt = cfg.Prompt
	if len(s.prompt) > s.stride {
		s.prompt = s.prompt[:s.stride]
	}
	s.plen = len(s.prompt)

	if len(initial) > s.maxlen-1 {
		initial = initial[:s.maxlen-1]
	}
	s.llen = copy(s.buf, initial)
	s.lpos = s.llen
}

func (s *session) run() (string, error) {
	s.init()
	for {
		k, err := s.c.ReadKey()
		if err != nil {
			logger.Printf("reading key: %v", err)
			return "", err
		}
		if isEnter(k) {
			break
		}
		if s.readline {
			s.handleReadlineKey(k)
		}
		switch {
		case k == ui.K(ui.Escape):
			return "", ErrCancelled
		case k == ui.K(ui.Delete):
			if s.lpos != s.llen {
				s.delete(1)
			}
		case k == ui.K(ui.Backspace) || k == ui.K(ui.Rubout):
			if s.lpos > 0 {
				s.backward(1)
				s.delete(1)
			}
		case k.IsPrintable():
			s.insert(string(rune(k.Rune)))
		}
	}

	s.c.PutChar('\n')
	text := s.buf[:s.llen]
	if s.echo == 0 {
		for len(text) > 0 && text[0] == ' ' {
			text = text[1:]
		}
	}
	line := string(text)
	if s.readline && line != "" && s.hist != nil {
		s.hist.Add(line, 0)
	}
	return line, nil
}

func (s *session) handleReadlineKey(k ui.Key) {
	switch k {
	case ui.K(ui.Tab):
		s.complete()
	case ui.K(ui.Home):
		s.backward(s.lpos)
	case ui.K(ui.End):
		s.forward(s.llen - s.lpos)
	case ui.K(ui.Right):
		if s.lpos < s.llen {
			s.forward(1)
		}
	case ui.K(ui.Left):
		if s.lpos > 0 {
			s.backward(1)
		}
	case ui.K(ui.Up):
		s.historyUp()
	case ui.K(ui.Down):
		s.historyDown()
	}
}

// init starts the line on a fresh row.
func (s *session) init() {
	s.c.PutChar('\n')
	s.refresh(true, 0)
}

func (s *session) row() int {
	_, y, _ := s.c.Pos()
	return y
}

func (s *session) putEcho(ch byte) {
	if s.echo != 0 {
		ch = s.echo
	}
	s.c.PutChar(ch)
}

// backward moves the cursor count characters to the left.
func (s *session) backward(count int) {
	s.lpos -= count
	// The overlap with the first section belongs to the first section.
	if s.section == 1 && s.plen+s.lpos <= s.width {
		s.refresh(true, 0)
	} else if s.xpos-count < 1 {
		s.refresh(true, 0)
	} else {
		s.xpos -= count
		if s.dumb {
			for i := 0; i < count; i++ {
				s.c.PutChar('\b')
			}
		} else {
			s.c.MoveTo(s.xpos, s.row())
		}
	}
}

// forward moves the cursor count characters to the right.
func (s *session) forward(count int) {
	s.lpos += count
	// The marker column is still part of the current section.
	if s.xpos+count > s.width {
		s.refresh(true, 0)
	} else {
		s.xpos += count
		if s.dumb {
			for i := s.lpos - count; i < s.lpos; i++ {
				s.putEcho(s.buf[i])
			}
		} else {
			s.c.MoveTo(s.xpos, s.row())
		}
	}
}

// refresh repaints the line. A full refresh recomputes the section and draws
// it from the first column; otherwise n characters are drawn from the cursor.
func (s *session) refresh(full bool, n int) {
	pos := s.xpos
	if full {
		if s.lpos+s.plen <= s.width {
			s.section = 0
		} else {
			s.section = (s.lpos+s.plen-s.width-1)/s.stride + 1
		}
		n = s.width
		pos = 0
		if s.dumb {
			s.c.PutChar('\r')
		} else {
			s.c.MoveTo(0, s.row())
		}
		if s.section == 0 {
			s.c.Puts(s.prompt)
			n -= s.plen
			pos += s.plen
		} else {
			s.c.PutChar('<')
			n--
			pos++
		}
	}

	var start int
	if s.section == 0 {
		offset := 0
		if !full {
			offset = s.xpos - s.plen
		}
		s.xpos = s.lpos + s.plen
		start = offset
	} else {
		offset := 0
		if !full {
			offset = s.xpos - 1
		}
		start = (s.section-1)*s.stride + s.width - s.plen - s.margin
		s.xpos = s.lpos + 1 - start
		start += offset
	}

	i := start
	for ; i < start+n && i < s.llen; i++ {
		s.putEcho(s.buf[i])
		pos++
	}
	for ; i < start+n; i++ {
		s.c.PutChar(' ')
		pos++
	}

	if pos == s.width {
		if start+n < s.llen {
			s.c.PutChar('>')
		} else {
			s.c.PutChar(' ')
		}
		pos++
	}

	if s.dumb {
		for i := 0; i < pos-s.xpos; i++ {
			s.c.PutChar('\b')
		}
	} else {
		s.c.MoveTo(s.xpos, s.row())
	}
}

// insert splices text in at the cursor. It does nothing if the line would
// reach the maximum length.
func (s *session) insert(text string) bool {
	l := len(text)
	if s.llen+l >= s.maxlen {
		return false
	}
	copy(s.buf[s.lpos+l:s.llen+l], s.buf[s.lpos:s.llen])
	copy(s.buf[s.lpos:], text)
	s.llen += l
	s.lpos += l
	switch {
	case s.xpos+l > s.width:
		s.refresh(true, 0)
	case s.xpos+l+s.llen-s.lpos > s.width:
		s.refresh(false, s.width-s.xpos)
	default:
		s.refresh(false, l+s.llen-s.lpos)
	}
	return true
}

// delete removes count characters at the cursor.
func (s *session) delete(count int) bool {
	if count <= 0 || s.lpos+count > s.llen {
		return false
	}
	copy(s.buf[s.lpos:], s.buf[s.lpos+count:s.llen])
	s.llen -= count
	if s.xpos+s.llen+count-s.lpos > s.width {
		s.refresh(false, s.width-s.xpos)
	} else {
		s.refresh(false, s.llen+count-s.lpos)
	}
	return true
}

// load replaces the line with text and redraws it with the cursor at the end.
func (s *session) load(text string) {
	if len(text) > s.maxlen-1 {
		text = text[:s.maxlen-1]
	}
	s.llen = copy(s.buf, text)
	s.lpos = s.llen
	s.refresh(true, 0)
}

func (s *session) historyUp() {
	if s.hist == nil {
		return
	}
	if s.histIdx < 0 {
		s.savedLen = copy(s.saved, s.buf[:s.llen])
	} else if h, ok := s.hist.Get(s.histIdx); !ok || h != string(s.buf[:s.llen]) {
		// The recalled entry was edited; keep the edit.
		s.hist.Add(string(s.buf[:s.llen]), s.histIdx)
	}
	s.histIdx++
	h, ok := s.hist.Get(s.histIdx)
	if !ok {
		s.histIdx--
		return
	}
	s.load(h)
}

func (s *session) historyDown() {
	if s.hist == nil || s.histIdx < 0 {
		return
	}
	if h, ok := s.hist.Get(s.histIdx); !ok || h != string(s.buf[:s.llen]) {
		s.hist.Add(string(s.buf[:s.llen]), s.histIdx)
	}
	s.histIdx--
	h, ok := s.hist.Get(s.histIdx)
	if !ok {
		h = string(s.saved[:s.savedLen])
	}
	s.load(h)
}

// complete completes the word before the cursor.
func (s *session) complete() {
	if s.comp == nil {
		return
	}
	buf := s.buf[:s.llen]

	// The command is the first word; anything after it is a file name.
	pos := 0
	for pos < len(buf) && buf[pos] == ' ' {
		pos++
	}
	for pos < len(buf) && buf[pos] != '=' && buf[pos] != ' ' {
		pos++
	}
	filename := s.lpos > pos

	// The word starts after the nearest space or '=' that is not escaped by
	// an odd number of backslashes.
	i := s.lpos
	for ; i > 0; i-- {
		if buf[i-1] != ' ' && buf[i-1] != '=' {
			continue
		}
		j := i - 2
		for j >= 0 && buf[j] == '\\' {
			j--
		}
		if (i-j)&1 == 0 {
			break
		}
	}
	word := string(buf[i:s.lpos])

	text, n := s.comp.Complete(word, filename)
	if !filename && n == 0 {
		filename = true
		text, n = s.comp.Complete(word, true)
	}
	if n == 0 {
		return
	}
	if strings.HasPrefix(text, word) {
		if len(text) > len(word) {
			s.insert(text[len(word):])
		}
	} else if s.llen-len(word)+len(text) < s.maxlen {
		// The word is escaped differently from the completion; replace it.
		s.backward(len(word))
		s.delete(len(word))
		s.insert(text)
	}
	if n > 1 {
		s.c.PutChar('\n')
		s.comp.PrintCandidates(s.c, word, filename)
		s.init()
	}
}
