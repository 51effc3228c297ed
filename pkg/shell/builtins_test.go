package shell

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"src.bootcon.sh/pkg/conf"
	"src.bootcon.sh/pkg/numparse"
	"src.bootcon.sh/pkg/store"
	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/tty/ttytest"
	"src.bootcon.sh/pkg/ui"
)

var testFiles = fstest.MapFS{
	"menu.lst":  {Data: []byte("default 0\ntimeout 5\n")},
	"long.txt":  {Data: []byte("1\n2\n3\n4\n5\n6\n7\n8\n")},
	"boot/grub": {Data: []byte("stage2")},
}

type fakeFixture struct {
	dev *ttytest.Fake
	con *tty.Console
	sh  *Shell
	st  store.Store
}

func setupFake(t *testing.T) *fakeFixture {
	t.Helper()
	dev := ttytest.NewFake("console", 0)
	con := tty.NewConsole(dev, ttytest.NewFake("serial", tty.Dumb))
	st := store.MustTempStore(t)
	return &fakeFixture{dev, con, New(con, conf.Default(), testFiles, st), st}
}

func (f *fakeFixture) eval(t *testing.T, line string) string {
	t.Helper()
	if err := f.sh.Eval(line); err != nil {
		t.Fatalf("Eval(%q) -> %v", line, err)
	}
	return f.dev.Output()
}

var outputTests = []struct {
	line string
	want string
}{
	{"echo", "\r\n"},
	{"echo a  b", "a b\r\n"},
	{`echo a\ \ b`, "a  b\r\n"},
	{`printf %d-%x-%s\\n 0x10 255 abc`, "16-ff-abc\n"},
	{`printf [%5d] 1k`, "[ 1024]"},
	{`printf %d x`, "%!(WRONGTYPE)"},
	{`printf %s`, "(MISSING)"},
	{"pager", "pager is on, 25 lines per page\r\n"},
	{"help echo", "echo [WORD...]\r\n    print words\r\n"},
	{"terminal", "* console\r\n  serial\r\n"},
	{"cat menu.lst", "default 0\r\ntimeout 5\r\n"},
	{"clear", ""},
}

func TestBuiltins_Output(t *testing.T) {
	for _, test := range outputTests {
		t.Run(test.line, func(t *testing.T) {
			f := setupFake(t)
			got := f.eval(t, test.line)
			// Carriage returns added by the console are ignored for printf.
			if strings.HasPrefix(test.line, "printf") {
				got = strings.ReplaceAll(got, "\r", "")
			}
			if got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

var errorTests = []struct {
	line string
	want error
}{
	{"clear x", ErrUsage},
	{"printf", ErrUsage},
	{"pager maybe", ErrUsage},
	{"lines", ErrUsage},
	{"lines ten", numparse.ErrParse},
	{"color", ErrUsage},
	{"color a b c d", ErrUsage},
	{"terminal a b", ErrUsage},
	{"terminal nope", tty.ErrNoSuchDevice},
	{"history x", ErrUsage},
	{"cat", ErrUsage},
	{"help frob", ErrUnknownCommand},
	{"exit 1 2", ErrUsage},
}

func TestBuiltins_Errors(t *testing.T) {
	for _, test := range errorTests {
		t.Run(test.line, func(t *testing.T) {
			f := setupFake(t)
			if err := f.sh.Eval(test.line); !errors.Is(err, test.want) {
				t.Errorf("got error %v, want %v", err, test.want)
			}
		})
	}
}

func TestBuiltins_OtherErrors(t *testing.T) {
	for _, line := range []string{"lines -1", "color plaid", "cat nowhere", "cat boot", "exit 300"} {
		f := setupFake(t)
		if err := f.sh.Eval(line); err == nil {
			t.Errorf("Eval(%q) succeeded", line)
		}
	}
}

func TestPager(t *testing.T) {
	f := setupFake(t)
	f.eval(t, "pager off")
	if f.con.Pager() {
		t.Errorf("pager still on")
	}
	f.eval(t, "pager on")
	if !f.con.Pager() {
		t.Errorf("pager still off")
	}
	f.eval(t, "lines 0x10")
	if got := f.con.PageHeight(); got != 16 {
		t.Errorf("PageHeight() -> %d, want 16", got)
	}
}

func TestColor(t *testing.T) {
	f := setupFake(t)
	f.eval(t, "color yellow/red white")
	want := ui.Palette{
		Normal:    ui.MakeAttr(ui.Yellow, ui.Red),
		Highlight: ui.MakeAttr(ui.White, ui.Black),
		Heading:   ui.DefaultPalette.Heading,
	}
	if got := f.con.Palette(); got != want {
		t.Errorf("Palette() -> %v, want %v", got, want)
	}
	if n := len(f.dev.States); n == 0 || f.dev.States[n-1] != ui.ColorNormal {
		t.Errorf("color state not switched to normal: %v", f.dev.States)
	}
}

func TestTerminal_SwitchesAndSaves(t *testing.T) {
	f := setupFake(t)
	f.eval(t, "terminal serial")
	if got := f.con.Current().Name(); got != "serial" {
		t.Errorf("current device is %s", got)
	}
	if got, err := f.st.SharedVar(terminalVar); got != "serial" || err != nil {
		t.Errorf("saved terminal is (%q, %v)", got, err)
	}
}

func TestHistory(t *testing.T) {
	f := setupFake(t)
	f.sh.hist.Add("echo one", 0)
	f.sh.hist.Add("echo two", 0)
	if got := f.eval(t, "history"); got != "  1  echo one\r\n  2  echo two\r\n" {
		t.Errorf("got %q", got)
	}
}

func TestCat_StopsOnQuit(t *testing.T) {
	f := setupFake(t)
	f.eval(t, "lines 5")
	f.dev.FeedString("q")
	got := f.eval(t, "cat long.txt")
	if !strings.HasPrefix(got, "1\r\n2\r\n3\r\n[Hit Q") {
		t.Errorf("output does not start with a page: %q", got)
	}
	if strings.Contains(got, "4") {
		t.Errorf("output continued after quit: %q", got)
	}
}

func TestPassword(t *testing.T) {
	f := setupFake(t)
	f.dev.FeedString("secret\r")
	got := f.eval(t, "password")
	if !strings.Contains(got, "Password: ") || !strings.Contains(got, "******\r\n") {
		t.Errorf("password not masked: %q", got)
	}
	if strings.Contains(got, "secret") {
		t.Errorf("password echoed: %q", got)
	}
	if !strings.HasSuffix(got, "6 characters read\r\n") {
		t.Errorf("got %q", got)
	}
	if len(f.sh.History()) != 0 {
		t.Errorf("password entered history")
	}
}
