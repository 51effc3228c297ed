package prog_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "src.bootcon.sh/pkg/prog"
	"src.bootcon.sh/pkg/logutil"
	"src.bootcon.sh/pkg/prog/progtest"
)

var (
	Test        = progtest.Test
	ThatBootcon = progtest.ThatBootcon
)

func TestCommonFlagHandling(t *testing.T) {
	Test(t, testProgram{},
		ThatBootcon("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatBootcon("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatBootcon("-help").
			WritesStdoutContaining("Usage: bootcon [flags]"),
		ThatBootcon("-help").
			WritesStdoutContaining("-headless"),
	)
}

func TestLogFlag(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "log")
	t.Cleanup(func() { logutil.SetOutput(io.Discard) })
	Test(t, testProgram{},
		ThatBootcon("-log", logPath).DoesNothing(),
		ThatBootcon("-log", "/a/bad/path/log").
			WritesStderrContaining("no such file or directory"),
	)
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestFlagsPassedToProgram(t *testing.T) {
	var got Flags
	p := testProgram{flags: &got}
	Test(t, p,
		ThatBootcon("-config", "c.yaml", "-device", "vga", "-db", "h.db", "-headless"))
	want := Flags{Config: "c.yaml", Device: "vga", DB: "h.db", Headless: true}
	if got != want {
		t.Errorf("got flags %+v, want %+v", got, want)
	}
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatBootcon().ExitsWith(2).WritesStderrContaining("lorem ipsum\nUsage:"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatBootcon().ExitsWith(3),
	)
}

func TestExitError_Joined(t *testing.T) {
	Test(t, testProgram{returnErr: errors.Join(Exit(4), nil)},
		ThatBootcon().ExitsWith(4),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatBootcon().ExitsWith(0),
	)
}

func TestOtherError(t *testing.T) {
	Test(t, testProgram{returnErr: errors.New("device on fire")},
		ThatBootcon().ExitsWith(2).WritesStderr("device on fire\n"),
	)
}

func TestArgsPassedToProgram(t *testing.T) {
	Test(t, testProgram{writeArgs: true},
		ThatBootcon("-headless", "a", "b").WritesStdout("a b"),
	)
}

type testProgram struct {
	writeArgs bool
	flags     *Flags
	returnErr error
}

func (p testProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	if p.flags != nil {
		*p.flags = *f
	}
	if p.writeArgs {
		fds[1].WriteString(strings.Join(args, " "))
	}
	return p.returnErr
}
