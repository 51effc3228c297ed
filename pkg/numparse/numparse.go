// Package numparse parses the integers accepted by console commands: decimal
// or 0x-prefixed hexadecimal, optionally negative, with an optional K, M, G
// or T size suffix.
package numparse

import (
	"errors"
	"math"
)

var (
	// ErrParse is returned when the input does not start with a number.
	ErrParse = errors.New("unrecognized number")
	// ErrOverflow is returned when the number does not fit in 64 bits.
	ErrOverflow = errors.New("number overflow")
)

// ParseInt parses an integer at the start of s and returns it together with
// the unparsed rest of s.
//
// Decimal numbers must fit in a signed 64-bit integer. Hexadecimal numbers
// may use all 64 bits; values above math.MaxInt64 wrap to negative. A size
// suffix multiplies the value by 2 to the power 10, 20, 30 or 40, reduced by
// unitShift; a value that loses bits in the process is an overflow.
func ParseInt(s string, unitShift uint) (int64, string, error) {
	p := s
	neg := false
	if len(p) > 0 && p[0] == '-' {
		neg = true
		p = p[1:]
	}

	var v uint64
	base := 0
	if len(p) >= 2 && p[0] == '0' && p[1]|32 == 'x' {
		p = p[2:]
		for len(p) > 0 {
			d, ok := hexDigit(p[0])
			if !ok {
				break
			}
			base = 16
			if v>>60 != 0 {
				return 0, s, ErrOverflow
			}
			v = v<<4 | d
			p = p[1:]
		}
	} else {
		for len(p) > 0 && '0' <= p[0] && p[0] <= '9' {
			base = 10
			if v > (math.MaxUint64>>1)/10 {
				return 0, s, ErrOverflow
			}
			v = v*10 + uint64(p[0]-'0')
			// 1<<63 is only valid as the magnitude of math.MinInt64.
			if int64(v) < 0 && (v != 1<<63 || !neg) {
				return 0, s, ErrOverflow
			}
			p = p[1:]
		}
	}
	if base == 0 {
		return 0, s, ErrParse
	}

	shift := 0
	if len(p) > 0 {
		if n, ok := suffixShift[p[0]|32]; ok {
			shift = n - int(unitShift)
			p = p[1:]
		}
	}
	var scaled, back uint64
	if shift >= 0 {
		scaled = v << shift
		back = scaled >> shift
	} else {
		scaled = v >> -shift
		back = scaled << -shift
	}
	if back != v || (base == 10 && int64(scaled^v) < 0) {
		return 0, s, ErrOverflow
	}
	if neg {
		scaled = -scaled
	}
	return int64(scaled), p, nil
}

var suffixShift = map[byte]int{'k': 10, 'm': 20, 'g': 30, 't': 40}

func hexDigit(c byte) (uint64, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint64(c - '0'), true
	case 'a' <= c|32 && c|32 <= 'f':
		return uint64(c|32-'a') + 10, true
	}
	return 0, false
}

// Atoi parses s as a whole with ParseInt and no unit shift.
func Atoi(s string) (int64, error) {
	v, rest, err := ParseInt(s, 0)
	if err != nil {
		return 0, err
	}
	if rest != "" {
		return 0, ErrParse
	}
	return v, nil
}
