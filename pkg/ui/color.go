package ui

import (
	"fmt"
	"strings"
)

// Color is one of the 16 colors of a PC text-mode palette.
type Color uint8

// Built-in colors, in palette order.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

var colorNames = [...]string{
	"black", "blue", "green", "cyan", "red", "magenta", "brown", "light-gray",
	"dark-gray", "light-blue", "light-green", "light-cyan", "light-red",
	"light-magenta", "yellow", "white",
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color%d", int(c))
}

// ansiIndex maps palette order to the order used by ANSI SGR codes.
var ansiIndex = [8]int{0, 4, 2, 6, 1, 5, 3, 7}

// ANSI returns the index of c in the ANSI 16-color palette.
func (c Color) ANSI() int {
	i := ansiIndex[c&7]
	if c >= 8 {
		i += 8
	}
	return i
}

// SGR returns the SGR parameters selecting c as the foreground, or the
// background when bg is true.
func (c Color) SGR(bg bool) string {
	base := 30
	if bg {
		base = 40
	}
	i := c.ANSI()
	if i >= 8 {
		base += 60 - 8
	}
	return fmt.Sprint(base + i)
}

// ParseColor parses a color name.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(s)
	for i, name := range colorNames {
		if s == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("bad color: %s", s)
}

// Attr is a text-mode attribute byte: foreground in the low nibble and
// background in the high nibble.
type Attr uint8

// MakeAttr builds an Attr from a foreground and background color.
func MakeAttr(fg, bg Color) Attr { return Attr(fg&0xf) | Attr(bg&0xf)<<4 }

// Fg returns the foreground color.
func (a Attr) Fg() Color { return Color(a & 0xf) }

// Bg returns the background color.
func (a Attr) Bg() Color { return Color(a >> 4) }

func (a Attr) String() string { return a.Fg().String() + "/" + a.Bg().String() }

// ParseAttr parses a color pair written as "fg/bg". The background defaults
// to black when omitted.
func ParseAttr(s string) (Attr, error) {
	fgName, bgName, hasBg := strings.Cut(s, "/")
	fg, err := ParseColor(fgName)
	if err != nil {
		return 0, err
	}
	bg := Black
	if hasBg {
		bg, err = ParseColor(bgName)
		if err != nil {
			return 0, err
		}
	}
	return MakeAttr(fg, bg), nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Attr) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Attr) UnmarshalText(p []byte) error {
	v, err := ParseAttr(string(p))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ColorState is a logical color role selected by the console.
type ColorState int

// Color states.
const (
	ColorStandard ColorState = iota
	ColorNormal
	ColorHighlight
	ColorHeading
)

// Palette maps color states to attributes.
type Palette struct {
	Normal    Attr
	Highlight Attr
	Heading   Attr
}

// DefaultPalette is the palette used when nothing is configured.
var DefaultPalette = Palette{
	Normal:    MakeAttr(LightGray, Black),
	Highlight: MakeAttr(Black, LightGray),
	Heading:   MakeAttr(White, Blue),
}

// Attr returns the attribute for a color state. ColorStandard and ColorNormal
// share the normal attribute.
func (p Palette) Attr(s ColorState) Attr {
	switch s {
	case ColorHighlight:
		return p.Highlight
	case ColorHeading:
		return p.Heading
	default:
		return p.Normal
	}
}
