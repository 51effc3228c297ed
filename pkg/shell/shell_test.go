package shell

import (
	"errors"
	"testing"
	"testing/fstest"

	"src.bootcon.sh/pkg/conf"
	"src.bootcon.sh/pkg/prog"
	"src.bootcon.sh/pkg/store"
	"src.bootcon.sh/pkg/tt"
	"src.bootcon.sh/pkg/tty"
	"src.bootcon.sh/pkg/tty/vga"
	"src.bootcon.sh/pkg/ui"
)

func TestSplitArgs(t *testing.T) {
	tt.Test(t, tt.Fn("splitArgs", splitArgs), tt.Table{
		tt.Args("").Rets([]string(nil)),
		tt.Args("  \t ").Rets([]string(nil)),
		tt.Args("echo").Rets([]string{"echo"}),
		tt.Args("  echo  a\tb ").Rets([]string{"echo", "a", "b"}),
		tt.Args(`cat my\ file`).Rets([]string{"cat", "my file"}),
		tt.Args(`echo a\\b`).Rets([]string{"echo", `a\b`}),
		tt.Args(`echo \ `).Rets([]string{"echo", " "}),
		tt.Args(`echo a\`).Rets([]string{"echo", `a\`}),
	})
}

type screenFixture struct {
	screen *vga.Screen
	keys   *vga.Queue
	con    *tty.Console
	sh     *Shell
}

func setupScreen(t *testing.T, st store.Store) *screenFixture {
	t.Helper()
	keys := &vga.Queue{}
	screen := vga.New("vga", 80, 25, keys)
	con := tty.NewConsole(screen)
	cfg := conf.Default()
	cfg.Prompt = "> "
	return &screenFixture{screen, keys, con, New(con, cfg, nil, st)}
}

func TestInteract_RunsCommands(t *testing.T) {
	f := setupScreen(t, nil)
	f.keys.FeedString("echo hello   world\r")

	if err := f.sh.Interact(); err != nil {
		t.Fatalf("Interact -> %v", err)
	}
	want := []string{"", "> echo hello   world", "hello world", "", ">"}
	tt.Test(t, tt.Fn("Lines", f.screen.Lines), tt.Table{
		tt.Args().Rets(want),
	})
	if got := f.sh.History(); len(got) != 1 || got[0] != "echo hello   world" {
		t.Errorf("History() -> %q", got)
	}
}

func TestInteract_PrintsErrors(t *testing.T) {
	f := setupScreen(t, nil)
	f.keys.FeedString("frob\r")

	if err := f.sh.Interact(); err != nil {
		t.Fatalf("Interact -> %v", err)
	}
	if got := f.screen.Row(3); got != "Error: unknown command: frob" {
		t.Errorf("row 3 is %q", got)
	}
	if got := f.screen.Row(5); got != ">" {
		t.Errorf("row 5 is %q, want a new prompt", got)
	}
}

func TestInteract_EscapeReprompts(t *testing.T) {
	f := setupScreen(t, nil)
	f.keys.FeedString("ab")
	f.keys.Feed(ui.K(ui.Escape))
	f.keys.FeedString("echo x\r")

	if err := f.sh.Interact(); err != nil {
		t.Fatalf("Interact -> %v", err)
	}
	if got := f.screen.Row(1); got != "> ab" {
		t.Errorf("row 1 is %q", got)
	}
	if got := f.screen.Row(2); got != "> echo x" {
		t.Errorf("row 2 is %q", got)
	}
	if got := f.screen.Row(3); got != "x" {
		t.Errorf("row 3 is %q", got)
	}
	if got := f.sh.History(); len(got) != 1 {
		t.Errorf("cancelled line entered history: %q", got)
	}
}

func TestInteract_Exit(t *testing.T) {
	f := setupScreen(t, nil)
	f.keys.FeedString("exit\recho not run\r")

	if err := f.sh.Interact(); err != nil {
		t.Errorf("Interact -> %v", err)
	}
	if !f.keys.Pending() {
		t.Errorf("commands after exit were read")
	}
}

func TestInteract_ExitStatus(t *testing.T) {
	f := setupScreen(t, nil)
	f.keys.FeedString("exit 3\r")

	if err := f.sh.Interact(); err != prog.Exit(3) {
		t.Errorf("Interact -> %v, want prog.Exit(3)", err)
	}
}

func TestInteract_HistoryRecall(t *testing.T) {
	f := setupScreen(t, nil)
	f.keys.FeedString("echo one\r")
	f.keys.Feed(ui.K(ui.Up), ui.K('\r'))

	if err := f.sh.Interact(); err != nil {
		t.Fatalf("Interact -> %v", err)
	}
	if got := f.screen.Row(5); got != "one" {
		t.Errorf("row 5 is %q, want the recalled command's output", got)
	}
}

func TestNew_RestoresAndSave(t *testing.T) {
	st := store.MustTempStore(t)
	f := setupScreen(t, st)
	f.keys.FeedString("echo a\recho b\r")
	if err := f.sh.Interact(); err != nil {
		t.Fatal(err)
	}
	if err := f.sh.Save(); err != nil {
		t.Fatalf("Save -> %v", err)
	}

	f2 := setupScreen(t, st)
	tt.Test(t, tt.Fn("History", f2.sh.History), tt.Table{
		tt.Args().Rets([]string{"echo b", "echo a"}),
	})
}

func TestNew_IgnoresMismatchedHistory(t *testing.T) {
	st := store.MustTempStore(t)
	if err := st.SetHistory([]byte{1, 2, 3}, 1); err != nil {
		t.Fatal(err)
	}
	f := setupScreen(t, st)
	if got := f.sh.History(); len(got) != 0 {
		t.Errorf("History() -> %q, want empty", got)
	}
}

func TestSave_NoStore(t *testing.T) {
	f := setupScreen(t, nil)
	if err := f.sh.Save(); err != nil {
		t.Errorf("Save -> %v", err)
	}
}

func TestEval_UnknownCommand(t *testing.T) {
	f := setupScreen(t, nil)
	if err := f.sh.Eval("frob x"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Eval -> %v", err)
	}
	if err := f.sh.Eval("   "); err != nil {
		t.Errorf("Eval of blank line -> %v", err)
	}
}

func TestEval_Cat_FromFiles(t *testing.T) {
	keys := &vga.Queue{}
	screen := vga.New("vga", 80, 25, keys)
	con := tty.NewConsole(screen)
	files := fstest.MapFS{"boot/menu.lst": {Data: []byte("title Linux\nkernel /vmlinuz\n")}}
	sh := New(con, conf.Default(), files, nil)

	if err := sh.Eval("cat /boot/menu.lst"); err != nil {
		t.Fatalf("cat -> %v", err)
	}
	if got := screen.Row(0); got != "title Linux" {
		t.Errorf("row 0 is %q", got)
	}
	if got := screen.Row(1); got != "kernel /vmlinuz" {
		t.Errorf("row 1 is %q", got)
	}
}

func TestBuiltinNames(t *testing.T) {
	names := builtinNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q", names)
			break
		}
	}
	if len(names) != len(builtins) {
		t.Errorf("got %d names, want %d", len(names), len(builtins))
	}
}

func TestEval_HelpListsAll(t *testing.T) {
	f := setupScreen(t, nil)
	if err := f.sh.Eval("help"); err != nil {
		t.Fatalf("help -> %v", err)
	}
	if got := f.screen.Row(0); got != " Commands" {
		t.Errorf("row 0 is %q", got)
	}
	if got := f.screen.Cell(1, 0).Attr; got != ui.DefaultPalette.Heading {
		t.Errorf("heading attribute is %v", got)
	}
	if got := f.screen.Row(2); got != "cat FILE" {
		t.Errorf("row 2 is %q", got)
	}
	if got := f.screen.Row(3); got != "    print a file" {
		t.Errorf("row 3 is %q", got)
	}
}
