package ui

import (
	"testing"
)

var kTests = []struct {
	k1 Key
	k2 Key
}{
	{K('a'), Key{'a', 0}},
	{K('a', Alt), Key{'a', Alt}},
	{K('a', Alt, Ctrl), Key{'a', Alt | Ctrl}},
}

func TestK(t *testing.T) {
	for _, test := range kTests {
		if test.k1 != test.k2 {
			t.Errorf("%v != %v", test.k1, test.k2)
		}
	}
}

var keyStringTests = []struct {
	k    Key
	want string
}{
	{K('a'), "a"},
	{K('a', Alt), "Alt-a"},
	{K('a', Ctrl, Alt, Shift), "Ctrl-Alt-Shift-a"},
	{K(Tab), "Tab"},
	{K(Enter), "Enter"},
	{K(F1), "F1"},
	{K(PageDown), "PageDown"},
	{K(-1000), "(bad function key 1000)"},
}

func TestKeyString(t *testing.T) {
	for _, test := range keyStringTests {
		if s := test.k.String(); s != test.want {
			t.Errorf("%#v.String() -> %q, want %q", test.k, s, test.want)
		}
	}
}

var parseKeyTests = []struct {
	s       string
	wantKey Key
	wantErr string
}{
	{s: "x", wantKey: K('x')},
	{s: "-", wantKey: K('-')},
	{s: "Tab", wantKey: K(Tab)},
	{s: "F1", wantKey: K(F1)},
	{s: "Home", wantKey: K(Home)},

	// Alt- keys are case-sensitive.
	{s: "a-x", wantKey: Key{'x', Alt}},
	{s: "a-X", wantKey: Key{'X', Alt}},

	// Ctrl- keys are case-insensitive.
	{s: "C-x", wantKey: Key{'X', Ctrl}},
	{s: "C-X", wantKey: Key{'X', Ctrl}},

	// + is the same as -.
	{s: "C+X", wantKey: Key{'X', Ctrl}},

	// Multiple modifiers can appear in any order.
	{s: "Alt-Ctrl-Delete", wantKey: Key{Delete, Alt | Ctrl}},
	{s: "Ctrl-Alt-Delete", wantKey: Key{Delete, Alt | Ctrl}},

	// Control codes are normalized to their named keys.
	{s: "Ctrl-H", wantKey: K(Backspace)},
	{s: "Ctrl-I", wantKey: K(Tab)},
	{s: "Ctrl-M", wantKey: K(Enter)},
	{s: "Ctrl-[", wantKey: K(Escape)},

	// Errors.
	{s: "F123", wantErr: "bad key: F123"},
	{s: "Super-X", wantErr: "bad modifier: super"},
}

func TestParseKey(t *testing.T) {
	for _, test := range parseKeyTests {
		key, err := ParseKey(test.s)
		if key != test.wantKey {
			t.Errorf("ParseKey(%q) -> key %v, want %v", test.s, key, test.wantKey)
		}
		if test.wantErr != "" {
			if err == nil || err.Error() != test.wantErr {
				t.Errorf("ParseKey(%q) -> error %v, want %q", test.s, err, test.wantErr)
			}
		} else if err != nil {
			t.Errorf("ParseKey(%q) -> error %v, want nil", test.s, err)
		}
	}
}

func TestIsPrintable(t *testing.T) {
	for _, k := range []Key{K('a'), K(' '), K('~')} {
		if !k.IsPrintable() {
			t.Errorf("%v.IsPrintable() -> false, want true", k)
		}
	}
	for _, k := range []Key{K(Tab), K(Rubout), K(Left), K('a', Alt)} {
		if k.IsPrintable() {
			t.Errorf("%v.IsPrintable() -> true, want false", k)
		}
	}
}
