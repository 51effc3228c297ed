package vga

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.bootcon.sh/pkg/ui"
)

func TestPutChar(t *testing.T) {
	s := New("vga", 10, 3, nil)
	for _, c := range []byte("abc\bd\r\nxy\tz") {
		s.PutChar(c)
	}
	want := []string{"abd", "xy      z"}
	if diff := cmp.Diff(want, s.Lines()); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if x, y := s.Pos(); x != 9 || y != 1 {
		t.Errorf("cursor at (%d, %d), want (9, 1)", x, y)
	}
}

func TestPutChar_WrapsAndScrolls(t *testing.T) {
	s := New("vga", 4, 2, nil)
	for _, c := range []byte("abcdefghij") {
		s.PutChar(c)
	}
	want := []string{"efgh", "ij"}
	if diff := cmp.Diff(want, s.Lines()); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
}

func TestCP437(t *testing.T) {
	s := New("vga", 4, 1, nil)
	s.PutChar(0xdb)
	s.PutChar(0xc4)
	if got := s.Row(0); got != "█─" {
		t.Errorf("Row(0) = %q", got)
	}
}

func TestMoveToClamps(t *testing.T) {
	s := New("vga", 10, 5, nil)
	s.MoveTo(20, -1)
	if x, y := s.Pos(); x != 9 || y != 0 {
		t.Errorf("cursor at (%d, %d)", x, y)
	}
}

func TestColors(t *testing.T) {
	s := New("vga", 10, 2, nil)
	p := ui.Palette{
		Normal:    ui.MakeAttr(ui.Green, ui.Black),
		Highlight: ui.MakeAttr(ui.Yellow, ui.Red),
		Heading:   ui.MakeAttr(ui.White, ui.Blue),
	}
	s.SetPalette(p)
	s.PutChar('a')
	s.SetColorState(ui.ColorHighlight)
	s.PutChar('b')
	s.SetColorState(ui.ColorStandard)
	s.PutChar('c')
	got := []ui.Attr{s.Cell(0, 0).Attr, s.Cell(1, 0).Attr, s.Cell(2, 0).Attr}
	want := []ui.Attr{p.Normal, p.Highlight, p.Normal}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("attrs (-want +got):\n%s", diff)
	}
}

func TestShowCursor(t *testing.T) {
	s := New("vga", 10, 2, nil)
	if !s.ShowCursor(false) || s.CursorVisible() {
		t.Errorf("ShowCursor(false) did not report a visible cursor or did not hide it")
	}
}

func TestDump(t *testing.T) {
	s := New("vga", 10, 4, nil)
	for _, c := range []byte("one\r\n\r\nthree") {
		s.PutChar(c)
	}
	var sb strings.Builder
	if err := s.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != "one\n\nthree\n" {
		t.Errorf("Dump wrote %q", got)
	}
}

func TestQueue(t *testing.T) {
	q := &Queue{}
	s := New("vga", 10, 2, q)
	if s.CheckKey() {
		t.Errorf("CheckKey -> true on empty queue")
	}
	q.FeedString("a")
	q.Feed(ui.K(ui.Enter))
	if !s.CheckKey() {
		t.Errorf("CheckKey -> false on fed queue")
	}
	for _, want := range []ui.Key{ui.K('a'), ui.K(ui.Enter)} {
		if k, err := s.ReadKey(); k != want || err != nil {
			t.Errorf("ReadKey -> (%v, %v), want %v", k, err, want)
		}
	}
	if _, err := s.ReadKey(); err != io.EOF {
		t.Errorf("ReadKey on drained queue -> %v, want io.EOF", err)
	}
}
