// Package conf loads the console configuration from a YAML file.
package conf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"src.bootcon.sh/pkg/cli"
	"src.bootcon.sh/pkg/ui"
)

// ErrInvalid is wrapped by errors from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the console configuration.
type Config struct {
	// Device is the name of the device to activate at startup.
	Device     string  `yaml:"device"`
	Prompt     string  `yaml:"prompt"`
	MaxLine    int     `yaml:"max_line"`
	Pager      bool    `yaml:"pager"`
	PageHeight int     `yaml:"page_height"`
	QuitKey    string  `yaml:"quit_key"`
	Colors     Colors  `yaml:"colors"`
	History    History `yaml:"history"`
	Serial     Serial  `yaml:"serial"`
}

// Colors holds the attributes of the color states, written as "fg/bg".
type Colors struct {
	Normal    ui.Attr `yaml:"normal"`
	Highlight ui.Attr `yaml:"highlight"`
	Heading   ui.Attr `yaml:"heading"`
}

// History configures the history store.
type History struct {
	Entries int `yaml:"entries"`
	// DB is the path of the database that keeps history between runs. Empty
	// means history is not kept.
	DB string `yaml:"db"`
}

// Serial configures the serial device. It is only registered when Path is
// set.
type Serial struct {
	Path   string `yaml:"path"`
	NoEcho bool   `yaml:"no_echo"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := ui.DefaultPalette
	return Config{
		Device:  "console",
		Prompt:  "bootcon> ",
		MaxLine: cli.MaxCmdline,
		Pager:   true,
		QuitKey: "q",
		Colors:  Colors{p.Normal, p.Highlight, p.Heading},
		History: History{Entries: 16},
	}
}

// Load reads the configuration file at path on top of the defaults. An empty
// path yields the defaults. Unknown keys are errors.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses YAML configuration on top of the defaults and validates the
// result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Device == "":
		return fmt.Errorf("%w: device is empty", ErrInvalid)
	case c.MaxLine < 2 || c.MaxLine > cli.MaxCmdline:
		return fmt.Errorf("%w: max_line must be between 2 and %d", ErrInvalid, cli.MaxCmdline)
	case c.PageHeight < 0:
		return fmt.Errorf("%w: page_height is negative", ErrInvalid)
	case utf8.RuneCountInString(c.QuitKey) != 1:
		return fmt.Errorf("%w: quit_key must be a single character", ErrInvalid)
	case c.History.Entries < 0:
		return fmt.Errorf("%w: history.entries is negative", ErrInvalid)
	}
	return nil
}

// Palette returns the configured colors.
func (c *Config) Palette() ui.Palette {
	return ui.Palette{Normal: c.Colors.Normal, Highlight: c.Colors.Highlight, Heading: c.Colors.Heading}
}

// QuitRune returns the pager quit key.
func (c *Config) QuitRune() rune {
	r, _ := utf8.DecodeRuneInString(c.QuitKey)
	return r
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) { return yaml.Marshal(c) }
