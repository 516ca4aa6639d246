package theme

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
)

// Color is an RGB color read from and written as "#rrggbb".
type Color struct {
	colorful.Color
}

// MustColor parses a hex color and panics on error. It is meant for
// constants.
func MustColor(hex string) Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	return Color{c}
}

// Darker returns the color scaled by 0.7 per channel, truncated to whole
// 8-bit steps.
func (c Color) Darker() Color {
	scale := func(v float64) float64 {
		return math.Floor(math.Round(v*255)*0.7) / 255
	}
	return Color{colorful.Color{R: scale(c.R), G: scale(c.G), B: scale(c.B)}}
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := colorful.Hex(string(text))
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	c.Color = parsed
	return nil
}

// Theme is the set of colors and fonts used to draw a popup.
type Theme struct {
	Name string
	Path string // Empty for bundled themes

	PanelBG      Color
	TitleFG      Color
	TextFG       Color
	CloseFG      Color
	CloseHoverFG Color
	ProgressFG   Color

	TitleFont FontSpec
	TextFont  FontSpec

	ModTime time.Time
	Builtin bool
}

// themeFile is the on-disk TOML layout of a theme.
type themeFile struct {
	Name   string `toml:"name"`
	Colors struct {
		Panel      Color `toml:"panel"`
		Title      Color `toml:"title"`
		Text       Color `toml:"text"`
		Close      Color `toml:"close"`
		CloseHover Color `toml:"close_hover"`
		Progress   Color `toml:"progress"`
	} `toml:"colors"`
	Fonts struct {
		Title FontSpec `toml:"title"`
		Text  FontSpec `toml:"text"`
	} `toml:"fonts"`
}

func (f *themeFile) theme() *Theme {
	return &Theme{
		Name:         f.Name,
		PanelBG:      f.Colors.Panel,
		TitleFG:      f.Colors.Title,
		TextFG:       f.Colors.Text,
		CloseFG:      f.Colors.Close,
		CloseHoverFG: f.Colors.CloseHover,
		ProgressFG:   f.Colors.Progress,
		TitleFont:    f.Fonts.Title,
		TextFont:     f.Fonts.Text,
	}
}

func (t *Theme) file() *themeFile {
	f := &themeFile{Name: t.Name}
	f.Colors.Panel = t.PanelBG
	f.Colors.Title = t.TitleFG
	f.Colors.Text = t.TextFG
	f.Colors.Close = t.CloseFG
	f.Colors.CloseHover = t.CloseHoverFG
	f.Colors.Progress = t.ProgressFG
	f.Fonts.Title = t.TitleFont
	f.Fonts.Text = t.TextFont
	return f
}

var (
	builtinOnce  sync.Once
	builtinLight *Theme
	builtinDark  *Theme
)

func loadBuiltins() {
	builtinOnce.Do(func() {
		builtinLight = mustParseEmbedded(LightThemeName, &themeFile{})
		builtinDark = mustParseEmbedded(DarkThemeName, builtinLight.file())
	})
}

func mustParseEmbedded(name string, base *themeFile) *Theme {
	data, ok := GetEmbeddedTheme(name)
	if !ok {
		panic("theme: missing embedded theme " + name)
	}
	t, err := parse(name, data, base)
	if err != nil {
		panic(fmt.Sprintf("theme: embedded theme %s: %v", name, err))
	}
	t.Builtin = true
	return t
}

// Light returns the bundled light theme.
func Light() *Theme {
	loadBuiltins()
	return builtinLight.Clone()
}

// Dark returns the bundled dark theme.
func Dark() *Theme {
	loadBuiltins()
	return builtinDark.Clone()
}

// Default returns the bundled dark or light theme.
func Default(dark bool) *Theme {
	if dark {
		return Dark()
	}
	return Light()
}

// Parse decodes a TOML theme named name. Keys missing from data are taken
// from base, or from the light theme when base is nil.
func Parse(name string, data []byte, base *Theme) (*Theme, error) {
	if base == nil {
		base = Light()
	}
	return parse(name, data, base.file())
}

func parse(name string, data []byte, f *themeFile) (*Theme, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("parsing theme %s: %w", name, err)
	}
	f.Name = name

	t := f.theme()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return t, nil
}

// NewTheme loads a theme from a TOML file.
func NewTheme(name, path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	t, err := Parse(name, data, nil)
	if err != nil {
		return nil, err
	}
	t.Path = path
	t.ModTime = info.ModTime()
	return t, nil
}

// Validate checks that both fonts are usable.
func (t *Theme) Validate() error {
	if t.TitleFont.Family == "" || t.TitleFont.Size <= 0 {
		return fmt.Errorf("%w: title font %q", ErrInvalidFont, t.TitleFont.String())
	}
	if t.TextFont.Family == "" || t.TextFont.Size <= 0 {
		return fmt.Errorf("%w: text font %q", ErrInvalidFont, t.TextFont.String())
	}
	return nil
}

// Clone returns a copy of the theme.
func (t *Theme) Clone() *Theme {
	c := *t
	return &c
}

// Reload re-reads the theme file when its modification time changed.
// It reports whether any value changed.
func (t *Theme) Reload() (bool, error) {
	if t.Builtin || t.Path == "" {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	fresh, err := NewTheme(t.Name, t.Path)
	if err != nil {
		return false, err
	}

	old := *t
	old.ModTime = fresh.ModTime
	changed := old != *fresh
	*t = *fresh
	return changed, nil
}

// Encode writes the theme as TOML.
func (t *Theme) Encode() ([]byte, error) {
	return toml.Marshal(t.file())
}
