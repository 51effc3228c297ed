// Package term decodes keyboard input from terminals and serial lines into
// ui.Key values.
package term

import (
	"errors"
	"fmt"
	"io"
	"time"

	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/ui"
)

var logger = logutil.GetLogger("[term] ")

// ErrStopped is returned by Reader when Close is called during a ReadKey
// call.
var ErrStopped = errors.New("stopped")

var errTimeout = errors.New("timed out")

type seqError struct {
	msg string
	seq string
}

func (err seqError) Error() string {
	return fmt.Sprintf("%s: %q", err.msg, err.seq)
}

// IsReadErrorRecoverable returns whether an error returned by readKey is
// recoverable.
func IsReadErrorRecoverable(err error) bool {
	if _, ok := err.(seqError); ok {
		return true
	}
	return err == errTimeout
}

type byteReaderWithTimeout interface {
	// ReadByteWithTimeout reads a single byte. A negative timeout means no
	// timeout.
	ReadByteWithTimeout(timeout time.Duration) (byte, error)
}

type byteSource interface {
	byteReaderWithTimeout
	// Pending reports whether a byte can be read without blocking.
	Pending() bool
	// Stop aborts any outstanding read and releases resources. It does not
	// close the underlying file or stream.
	Stop()
}

// Reader reads keys from a byte source.
type Reader struct {
	src byteSource
}

// NewStreamReader creates a Reader on an arbitrary stream, such as a serial
// line or a network connection. Reading happens on a separate goroutine that
// lives until the stream returns an error.
func NewStreamReader(r io.Reader) *Reader {
	return &Reader{newStreamSource(r)}
}

// ReadKey blocks until a key is decoded. Malformed escape sequences are
// logged and skipped.
func (rd *Reader) ReadKey() (ui.Key, error) {
	for {
		k, err := readKey(rd.src)
		if err != nil && IsReadErrorRecoverable(err) {
			logger.Println("skipping:", err)
			continue
		}
		return k, err
	}
}

// Pending reports whether input is waiting.
func (rd *Reader) Pending() bool { return rd.src.Pending() }

// Close aborts an outstanding ReadKey and releases resources.
func (rd *Reader) Close() { rd.src.Stop() }

type streamByte struct {
	b   byte
	err error
}

type streamSource struct {
	ch   chan streamByte
	stop chan struct{}
	err  error
}

func newStreamSource(r io.Reader) *streamSource {
	s := &streamSource{ch: make(chan streamByte, 256), stop: make(chan struct{})}
	go func() {
		var buf [64]byte
		for {
			n, err := r.Read(buf[:])
			for _, b := range buf[:n] {
				s.ch <- streamByte{b: b}
			}
			if err != nil {
				s.ch <- streamByte{err: err}
				return
			}
		}
	}()
	return s
}

func (s *streamSource) ReadByteWithTimeout(timeout time.Duration) (byte, error) {
	if s.err != nil {
		return 0, s.err
	}
	var timer <-chan time.Time
	if timeout >= 0 {
		timer = time.After(timeout)
	}
	select {
	case sb := <-s.ch:
		if sb.err != nil {
			s.err = sb.err
		}
		return sb.b, sb.err
	case <-timer:
		return 0, errTimeout
	case <-s.stop:
		return 0, ErrStopped
	}
}

func (s *streamSource) Pending() bool { return s.err != nil || len(s.ch) > 0 }

func (s *streamSource) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Timeout for bytes in escape sequences. Modern terminal emulators send escape
// sequences very fast, so 10ms is more than sufficient. Serial lines at low
// baud rates may need more.
var keySeqTimeout = 10 * time.Millisecond

// Used by readByte in readKey to signal end of current sequence.
const runeEndOfSeq rune = -1

func readKey(rd byteReaderWithTimeout) (key ui.Key, err error) {
	b, err := rd.ReadByteWithTimeout(-1)
	if err != nil {
		return ui.Key{}, err
	}
	r := rune(b)

	currentSeq := string(r)
	// Attempts to read a byte within a timeout of keySeqTimeout. It returns
	// runeEndOfSeq if there is any error; the caller should terminate the
	// current sequence when it sees that value.
	readByte := func() rune {
		b, e := rd.ReadByteWithTimeout(keySeqTimeout)
		if e != nil {
			return runeEndOfSeq
		}
		currentSeq += string(rune(b))
		return rune(b)
	}
	badSeq := func(msg string) {
		err = seqError{msg, currentSeq}
	}

	if r != ui.Escape {
		return ctrlModify(r), nil
	}

	r2 := readByte()
	// rxvt and derivatives prepend another ESC to a CSI-style or G3-style
	// sequence to signal Alt.
	hasTwoLeadingESC := false
	if r2 == ui.Escape {
		hasTwoLeadingESC = true
		r2 = readByte()
	}
	switch r2 {
	case runeEndOfSeq:
		// Nothing follows. Taken as a lone Escape.
		key = ui.K(ui.Escape)
	case '[':
		// CSI style function key sequence.
		r = readByte()
		if r == runeEndOfSeq {
			key = ui.K('[', ui.Alt)
			return
		}
		nums := make([]int, 0, 2)
	CSISeq:
		for {
			switch {
			case r == ';':
				nums = append(nums, 0)
			case '0' <= r && r <= '9':
				if len(nums) == 0 {
					nums = append(nums, 0)
				}
				cur := len(nums) - 1
				nums[cur] = nums[cur]*10 + int(r-'0')
			case r == runeEndOfSeq:
				badSeq("incomplete CSI")
				return
			default: // Treat as a terminator.
				break CSISeq
			}
			r = readByte()
		}
		k := parseCSI(nums, r)
		if k == (ui.Key{}) {
			badSeq("bad CSI")
			return
		}
		if hasTwoLeadingESC {
			k.Mod |= ui.Alt
		}
		key = k
	case 'O':
		// G3 style function key sequence: read one byte.
		r = readByte()
		if r == runeEndOfSeq {
			key = ui.K('O', ui.Alt)
			return
		}
		k, ok := g3Seq[r]
		if !ok {
			badSeq("bad G3")
			return
		}
		if hasTwoLeadingESC {
			k.Mod |= ui.Alt
		}
		key = k
	default:
		// Something other than '[' or 'O' follows. Taken as an Alt-modified
		// key, possibly also modified by Ctrl.
		k := ctrlModify(r2)
		k.Mod |= ui.Alt
		key = k
	}
	return
}

// Determines whether a byte corresponds to a Ctrl-modified key and returns
// the ui.Key it represents. Line endings and both backspace codes map to their
// named keys.
func ctrlModify(r rune) ui.Key {
	switch r {
	case '\r', '\n':
		return ui.K(ui.Enter)
	case ui.Backspace, ui.Rubout:
		return ui.K(ui.Backspace)
	case ui.Tab:
		return ui.K(ui.Tab)
	case 0x0:
		return ui.K('`', ui.Ctrl) // ^@
	case 0x1e:
		return ui.K('6', ui.Ctrl) // ^^
	case 0x1f:
		return ui.K('/', ui.Ctrl) // ^_
	default:
		if 0x1 <= r && r <= 0x1d && r != ui.Escape {
			return ui.K(r+0x40, ui.Ctrl)
		}
	}
	return ui.K(r)
}

// G3-style key sequences: \eO followed by exactly one character. For instance,
// \eOP is F1.
var g3Seq = map[rune]ui.Key{
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End), 'M': ui.K(ui.Enter),
	'P': ui.K(ui.F1), 'Q': ui.K(ui.F2), 'R': ui.K(ui.F3), 'S': ui.K(ui.F4),
}

// CSI-style key sequences identified by the last rune. For instance, \e[A is
// Up. When modified, two numerical arguments are added, the first always being
// 1 and the second identifying the modifier. For instance, \e[1;5A is Ctrl-Up.
var csiSeqByLast = map[rune]ui.Key{
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End),
	'Z': ui.K(ui.Tab, ui.Shift),
}

// CSI-style key sequences ending with '~' with one or two numerical
// arguments. The first argument identifies the key, and the optional second
// argument identifies the modifier. For instance, \e[3~ is Delete, and \e[3;5~
// is Ctrl-Delete.
var csiSeqTilde = map[int]rune{
	1: ui.Home, 2: ui.Insert, 3: ui.Delete, 4: ui.End,
	5: ui.PageUp, 6: ui.PageDown,
	7: ui.Home, 8: ui.End,
	11: ui.F1, 12: ui.F2, 13: ui.F3, 14: ui.F4,
	15: ui.F5, 17: ui.F6, 18: ui.F7, 19: ui.F8,
	20: ui.F9, 21: ui.F10, 23: ui.F11, 24: ui.F12,
}

func parseCSI(nums []int, last rune) ui.Key {
	if k, ok := csiSeqByLast[last]; ok {
		if len(nums) == 0 {
			// Unmodified: \e[A (Up)
			return k
		} else if len(nums) == 2 && nums[0] == 1 {
			// Modified: \e[1;5A (Ctrl-Up)
			return xtermModify(k, nums[1])
		}
		return ui.Key{}
	}

	if last == '~' && (len(nums) == 1 || len(nums) == 2) {
		if r, ok := csiSeqTilde[nums[0]]; ok {
			k := ui.K(r)
			if len(nums) == 1 {
				return k
			}
			return xtermModify(k, nums[1])
		}
	}
	return ui.Key{}
}

func xtermModify(k ui.Key, mod int) ui.Key {
	if mod < 0 || mod > 16 {
		return ui.Key{}
	}
	if mod == 0 {
		return k
	}
	modFlags := mod - 1
	if modFlags&0x1 != 0 {
		k.Mod |= ui.Shift
	}
	if modFlags&0x2 != 0 {
		k.Mod |= ui.Alt
	}
	if modFlags&0x4 != 0 {
		k.Mod |= ui.Ctrl
	}
	if modFlags&0x8 != 0 {
		// Meta is conflated with Alt.
		k.Mod |= ui.Alt
	}
	return k
}
