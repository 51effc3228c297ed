// Package progtest provides a framework for testing subprograms.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T, a Program implementation under test, and any number of test
// cases. Test cases are constructed using the ThatBootcon function, followed
// by method calls that add additional information to it.
//
// Example:
//
//	Test(t, someProgram,
//		ThatBootcon("-help").WritesStdoutContaining("Usage:"),
//		ThatBootcon("-headless").WithStdin("echo hi\n").WritesStdoutContaining("hi"))
package progtest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"src.bootcon.sh/pkg/prog"
)

// Case is a test case that can be used in Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exitCode int
	out, err output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + quote(o.content)
	}
	return quote(o.content)
}

func quote(s string) string { return "\"" + strings.ReplaceAll(s, "\n", `\n`) + "\"" }

// ThatBootcon returns a new Case with the specified CLI arguments.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "bootcon -bad-flag" exits with 2 reads
// like:
//
//	ThatBootcon("-bad-flag").ExitsWith(2)
func ThatBootcon(args ...string) Case {
	return Case{args: append([]string{"bootcon"}, args...)}
}

// WithStdin returns an altered Case that feeds the given text to the program
// as its standard input.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatBootcon("-log", "log").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program run to return
// with the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exitCode = code
	return c
}

// WritesStdout returns an altered Case that requires the program run to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.out = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program run
// to write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.out = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program run to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.err = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program run
// to write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.err = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			exit, out, err := Run(t, p, c.stdin, c.args...)
			if exit != c.want.exitCode {
				t.Errorf("got exit code %v, want %v", exit, c.want.exitCode)
			}
			if !matchOutput(out, c.want.out) {
				t.Errorf("got stdout %v, want %v", quote(out), c.want.out)
			}
			if !matchOutput(err, c.want.err) {
				t.Errorf("got stderr %v, want %v", quote(err), c.want.err)
			}
		})
	}
}

// Run runs a program with the given standard input and arguments, the first
// of which is the program name. It returns the exit status and what the
// program wrote to stdout and stderr.
func Run(t testing.TB, p prog.Program, stdin string, args ...string) (exit int, stdout, stderr string) {
	t.Helper()
	dir := t.TempDir()
	inName := filepath.Join(dir, "stdin")
	if err := os.WriteFile(inName, []byte(stdin), 0600); err != nil {
		t.Fatal(err)
	}
	in := openFile(t, inName, os.O_RDONLY)
	out := openFile(t, filepath.Join(dir, "stdout"), os.O_RDWR|os.O_CREATE)
	errOut := openFile(t, filepath.Join(dir, "stderr"), os.O_RDWR|os.O_CREATE)

	exit = prog.Run([3]*os.File{in, out, errOut}, args, p)
	return exit, readFile(t, out.Name()), readFile(t, errOut.Name())
}

func openFile(t testing.TB, name string, flag int) *os.File {
	f, err := os.OpenFile(name, flag, 0600)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func readFile(t testing.TB, name string) string {
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}
