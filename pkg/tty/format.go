package tty

// The formatter understands %d, %u, %x, %X, %c and %s, an optional field
// width whose leading 0 selects zero padding, and an l modifier that makes
// integer conversions use all 64 bits instead of the low 32. Any other
// conversion character, including %, produces nothing.

import "fmt"

// Worder is implemented by arguments that can stand in for an integer. Word
// returns false if the value is not a valid integer.
type Worder interface {
	Word() (uint64, bool)
}

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
)

// Printf formats according to a format specifier and writes the result to the
// current device with PutChar. It returns the number of characters produced.
func (c *Console) Printf(format string, args ...interface{}) int {
	return doFormat(c.PutChar, format, args)
}

// Sprintf formats into buf and terminates the result with a NUL byte. Output
// that does not fit is dropped, but the terminator is always written when buf
// is not empty. It returns the number of characters the format produced,
// which may exceed the number stored.
func Sprintf(buf []byte, format string, args ...interface{}) int {
	n := 0
	limit := len(buf) - 1
	count := doFormat(func(b byte) {
		if n < limit {
			buf[n] = b
			n++
		}
	}, format, args)
	if len(buf) > 0 {
		buf[n] = 0
	}
	return count
}

// SprintfString is like Sprintf but returns the formatted text.
func SprintfString(format string, args ...interface{}) string {
	var out []byte
	doFormat(func(b byte) { out = append(out, b) }, format, args)
	return string(out)
}

func doFormat(put func(byte), format string, args []interface{}) int {
	count := 0
	emit := func(b byte) {
		put(b)
		count++
	}
	emitAll := func(p []byte) {
		for _, b := range p {
			emit(b)
		}
	}
	repeat := func(b byte, n int) {
		for ; n > 0; n-- {
			emit(b)
		}
	}
	nextArg := 0
	takeArg := func() (interface{}, bool) {
		if nextArg >= len(args) {
			return nil, false
		}
		nextArg++
		return args[nextArg-1], true
	}

	var digits [24]byte
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			emit(format[i])
			continue
		}

		pad := byte(' ')
		width := 0
		long := false
	conv:
		for i++; i < len(format); i++ {
			ch := format[i]
			switch {
			case ch == 'l':
				if long {
					break conv
				}
				long = true
			case '0' <= ch && ch <= '9':
				// l must come right before the conversion character.
				if long {
					break conv
				}
				if ch == '0' {
					pad = '0'
				}
				width = 0
				for ; i < len(format) && '0' <= format[i] && format[i] <= '9'; i++ {
					width = width*10 + int(format[i]-'0')
				}
				i--
			case ch == 'd' || ch == 'u' || ch == 'x' || ch == 'X':
				arg, ok := takeArg()
				if !ok {
					emitAll(errMissingArg)
					break conv
				}
				v, ok := toWord(arg)
				if !ok {
					emitAll(errWrongArgType)
					break conv
				}
				if !long {
					v = uint64(uint32(v))
					if ch == 'd' {
						v = uint64(int64(int32(uint32(v))))
					}
				}
				s := convertToASCII(digits[:], v, ch)
				if pad == '0' && len(s) > 0 && s[0] == '-' {
					emit('-')
					repeat('0', width-len(s))
					emitAll(s[1:])
				} else {
					repeat(pad, width-len(s))
					emitAll(s)
				}
				break conv
			case ch == 'c':
				if long {
					break conv
				}
				arg, ok := takeArg()
				if !ok {
					emitAll(errMissingArg)
					break conv
				}
				v, ok := toWord(arg)
				if !ok {
					emitAll(errWrongArgType)
					break conv
				}
				repeat(pad, width-1)
				emit(byte(v))
				break conv
			case ch == 's':
				if long {
					break conv
				}
				arg, ok := takeArg()
				if !ok {
					emitAll(errMissingArg)
					break conv
				}
				switch s := arg.(type) {
				case string:
					repeat(pad, width-len(s))
					for j := 0; j < len(s); j++ {
						emit(s[j])
					}
				case []byte:
					repeat(pad, width-len(s))
					emitAll(s)
				case fmt.Stringer:
					str := s.String()
					repeat(pad, width-len(str))
					for j := 0; j < len(str); j++ {
						emit(str[j])
					}
				default:
					emitAll(errWrongArgType)
				}
				break conv
			default:
				break conv
			}
		}
	}
	return count
}

// toWord returns the bits of an integer argument, sign-extended to 64 bits
// for signed types.
func toWord(arg interface{}) (uint64, bool) {
	switch v := arg.(type) {
	case int:
		return uint64(v), true
	case int8:
		return uint64(v), true
	case int16:
		return uint64(v), true
	case int32:
		return uint64(v), true
	case int64:
		return uint64(v), true
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case uintptr:
		return uint64(v), true
	case Worder:
		return v.Word()
	}
	return 0, false
}

// convertToASCII renders v into the tail of buf and returns the used part.
// For 'd' v is taken as signed; for 'x' and 'X' hex digits follow the case of
// the conversion letter.
func convertToASCII(buf []byte, v uint64, conv byte) []byte {
	i := len(buf)
	neg := false
	base := uint64(10)
	switch conv {
	case 'd':
		if int64(v) < 0 {
			neg = true
			v = -v
		}
	case 'x', 'X':
		base = 16
	}
	for {
		i--
		dig := byte(v % base)
		switch {
		case dig < 10:
			buf[i] = '0' + dig
		case conv == 'X':
			buf[i] = 'A' + dig - 10
		default:
			buf[i] = 'a' + dig - 10
		}
		v /= base
		if v == 0 {
			break
		}
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}
