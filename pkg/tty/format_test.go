package tty_test

import (
	"bytes"
	"math"
	"testing"

	"src.bootcon.sh/pkg/tt"
	. "src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/tty/ttytest"
)

var (
	Args = tt.Args
)

// sprintf formats into a roomy buffer and returns the text before the NUL
// along with the count Sprintf reported.
func sprintf(format string, args ...any) (string, int) {
	var buf [128]byte
	n := Sprintf(buf[:], format, args...)
	return string(buf[:bytes.IndexByte(buf[:], 0)]), n
}

func TestSprintf(t *testing.T) {
	tt.Test(t, tt.Fn("Sprintf", sprintf), tt.Table{
		// Width and padding.
		Args("%5d", 42).Rets("   42", 5),
		Args("%05d", -7).Rets("-0007", 5),
		Args("%5d", -7).Rets("   -7", 5),
		Args("%010x", 255).Rets("00000000ff", 10),
		Args("%2d", 12345).Rets("12345", 5),
		Args("%4s", "hi").Rets("  hi", 4),
		Args("%3c", 'A').Rets("  A", 3),
		Args("%03c", 'A').Rets("00A", 3),

		// Conversions.
		Args("%d", 0).Rets("0", 1),
		Args("%x", 255).Rets("ff", 2),
		Args("%X", 255).Rets("FF", 2),
		Args("%u", 42).Rets("42", 2),
		Args("%c%c", 'o', byte('k')).Rets("ok", 2),
		Args("%s", "hi").Rets("hi", 2),
		Args("%s", []byte("hi")).Rets("hi", 2),
		Args("a=%d b=%s", 1, "x").Rets("a=1 b=x", 7),

		// Without the l modifier integers are 32-bit words.
		Args("%d", -1).Rets("-1", 2),
		Args("%u", -1).Rets("4294967295", 10),
		Args("%x", -1).Rets("ffffffff", 8),
		Args("%x", int64(0x123456789)).Rets("23456789", 8),
		Args("%d", uint32(0x80000000)).Rets("-2147483648", 11),

		// With it they are 64-bit.
		Args("%lx", int64(0x123456789)).Rets("123456789", 9),
		Args("%lu", -1).Rets("18446744073709551615", 20),
		Args("%ld", int64(math.MinInt64)).Rets("-9223372036854775808", 20),
		Args("%ld", int64(math.MaxInt64)).Rets("9223372036854775807", 19),
		Args("%lX", uint64(math.MaxUint64)).Rets("FFFFFFFFFFFFFFFF", 16),
		Args("%8lx", 255).Rets("      ff", 8),

		// Invalid and unknown conversions produce nothing.
		Args("100%%").Rets("100", 3),
		Args("%q%d", 5).Rets("5", 1),
		Args("%ls%s", "x").Rets("x", 1),
		Args("%lc%c", 'y').Rets("y", 1),
		Args("%l5d", 9).Rets("d", 1),
		Args("abc%").Rets("abc", 3),
		Args("%5").Rets("", 0),

		// Argument errors.
		Args("%d").Rets("(MISSING)", 9),
		Args("%s", 5).Rets("%!(WRONGTYPE)", 13),
		Args("%d", "x").Rets("%!(WRONGTYPE)", 13),
		Args("%c", "x").Rets("%!(WRONGTYPE)", 13),
	})
}

func TestSprintf_Truncates(t *testing.T) {
	buf := []byte("xxxxxxxx")
	n := Sprintf(buf[:4], "%s", "hello")
	if n != 5 {
		t.Errorf("Sprintf returned %d, want 5", n)
	}
	if got := string(buf); got != "hel\x00xxxx" {
		t.Errorf("buffer is %q", got)
	}

	// An empty buffer receives nothing.
	if n := Sprintf(nil, "%d", 12); n != 2 {
		t.Errorf("Sprintf(nil) returned %d, want 2", n)
	}
}

func TestSprintfString(t *testing.T) {
	if got := SprintfString("%-5d|%s", "a"); got != "5d|a" {
		t.Errorf("got %q", got)
	}
}

func TestPrintf(t *testing.T) {
	f := ttytest.NewFake("a", 0)
	c := NewConsole(f)
	n := c.Printf("%d items\n", 3)
	if got := f.Output(); got != "3 items\r\n" {
		t.Errorf("Printf wrote %q", got)
	}
	// The device receives an extra carriage return, but the count is of
	// formatted characters.
	if n != 8 {
		t.Errorf("Printf returned %d, want 8", n)
	}
}

type hexWord string

func (w hexWord) String() string { return "<" + string(w) + ">" }

func (w hexWord) Word() (uint64, bool) {
	if w == "ff" {
		return 255, true
	}
	return 0, false
}

func TestSprintfString_StringerAndWorder(t *testing.T) {
	if got := SprintfString("%s=%d %5s", hexWord("ff"), hexWord("ff"), hexWord("z")); got != "<ff>=255   <z>" {
		t.Errorf("got %q", got)
	}
	if got := SprintfString("%d", hexWord("zz")); got != "%!(WRONGTYPE)" {
		t.Errorf("got %q", got)
	}
}
