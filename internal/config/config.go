// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/stack"
)

// Default configuration values.
const (
	DefaultPosition       = "bottom-right"
	DefaultMoveEasing     = "linear"
	DefaultShakeDuration  = 500 * time.Millisecond
	DefaultShakeAmplitude = 8
	DefaultThemeName      = "light"
	DefaultScreenWidth    = 1920
	DefaultScreenHeight   = 1080
)

// Config is the toaststack configuration.
// Loaded from ~/.config/toaststack/config.toml
type Config struct {
	Geometry  GeometryConfig    `toml:"geometry"`
	Animation AnimationConfig   `toml:"animation"`
	Defaults  DefaultsConfig    `toml:"defaults"`
	Shake     ShakeConfig       `toml:"shake"`
	Theme     ThemeConfig       `toml:"theme"`
	Icons     map[string]string `toml:"icons"` // Icon name -> image path
	Simulator SimulatorConfig   `toml:"simulator"`
}

// GeometryConfig holds popup size and spacing in pixels.
type GeometryConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Spacer int `toml:"spacer"` // Gap between stacked popups
	Margin int `toml:"margin"` // Gap between the first popup and the edge
}

// AnimationConfig holds animation settings.
type AnimationConfig struct {
	MoveDuration Duration `toml:"move_duration"` // Reflow after a popup closes
	MoveEasing   string   `toml:"move_easing"`   // linear, quad-out, ...
	FrameRate    int      `toml:"frame_rate"`
}

// DefaultsConfig holds defaults applied to new notifications.
type DefaultsConfig struct {
	Position        string   `toml:"position"`
	HideAfter       Duration `toml:"hide_after"` // "0" shows until closed
	Screen          int      `toml:"screen"`     // -1 = first screen
	Dark            bool     `toml:"dark"`
	HideCloseButton bool     `toml:"hide_close_button"`
}

// ShakeConfig holds the default shake used when none is given.
type ShakeConfig struct {
	Duration  Duration `toml:"duration"`
	Amplitude int      `toml:"amplitude"` // 4 is a little, 10 is a lot
}

// ThemeConfig holds theme settings.
type ThemeConfig struct {
	Name string `toml:"name"` // Bundled theme or file name without .toml
}

// SimulatorConfig describes the virtual desktop of the simulator and the
// layout command.
type SimulatorConfig struct {
	Screens []ScreenConfig `toml:"screens"`

	// ClipboardCommand receives copied layouts on stdin. Empty picks the first
	// clipboard tool found on PATH.
	ClipboardCommand string `toml:"clipboard_command,omitempty"`
}

// ScreenConfig is one virtual screen.
type ScreenConfig struct {
	Width  int          `toml:"width"`
	Height int          `toml:"height"`
	Insets model.Insets `toml:"insets"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Geometry: GeometryConfig{
			Width:  stack.DefaultWidth,
			Height: stack.DefaultHeight,
			Spacer: stack.DefaultSpacer,
			Margin: stack.DefaultMargin,
		},
		Animation: AnimationConfig{
			MoveDuration: Duration(stack.DefaultMoveDuration),
			MoveEasing:   DefaultMoveEasing,
			FrameRate:    animation.DefaultFrameRate,
		},
		Defaults: DefaultsConfig{
			Position:  DefaultPosition,
			HideAfter: Duration(0),
			Screen:    model.ScreenAuto,
		},
		Shake: ShakeConfig{
			Duration:  Duration(DefaultShakeDuration),
			Amplitude: DefaultShakeAmplitude,
		},
		Theme: ThemeConfig{
			Name: DefaultThemeName,
		},
		Icons: make(map[string]string),
		Simulator: SimulatorConfig{
			Screens: []ScreenConfig{
				{Width: DefaultScreenWidth, Height: DefaultScreenHeight},
			},
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toaststack", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path atomically, creating parent
// directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Encode()
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Encode returns the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	g := c.Geometry
	if g.Width < 50 || g.Width > 2000 {
		return fmt.Errorf("geometry.width must be between 50 and 2000, got %d", g.Width)
	}
	if g.Height < 20 || g.Height > 1000 {
		return fmt.Errorf("geometry.height must be between 20 and 1000, got %d", g.Height)
	}
	if g.Spacer < 0 {
		return fmt.Errorf("geometry.spacer must not be negative, got %d", g.Spacer)
	}
	if g.Margin < 0 {
		return fmt.Errorf("geometry.margin must not be negative, got %d", g.Margin)
	}

	if c.Animation.MoveDuration < 0 {
		return fmt.Errorf("animation.move_duration must not be negative, got %s", c.Animation.MoveDuration.Duration())
	}
	if _, err := animation.ParseEasing(c.Animation.MoveEasing); err != nil {
		return fmt.Errorf("animation.move_easing: %w", err)
	}
	if c.Animation.FrameRate < 1 || c.Animation.FrameRate > 240 {
		return fmt.Errorf("animation.frame_rate must be between 1 and 240, got %d", c.Animation.FrameRate)
	}

	if _, err := model.ParsePosition(c.Defaults.Position); err != nil {
		return fmt.Errorf("defaults.position: %w", err)
	}
	if c.Defaults.HideAfter < 0 {
		return fmt.Errorf("defaults.hide_after must not be negative, got %s", c.Defaults.HideAfter.Duration())
	}
	if c.Defaults.Screen < model.ScreenAuto {
		return fmt.Errorf("defaults.screen must be %d (auto) or a screen number, got %d", model.ScreenAuto, c.Defaults.Screen)
	}

	if c.Shake.Duration < 0 || c.Shake.Amplitude < 0 {
		return errors.New("shake duration and amplitude must not be negative")
	}

	if len(c.Simulator.Screens) == 0 {
		return errors.New("simulator needs at least one screen")
	}
	for i, s := range c.Simulator.Screens {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("simulator.screens[%d]: size must be positive, got %dx%d", i, s.Width, s.Height)
		}
	}

	return nil
}

// StackGeometry converts the geometry and animation sections.
func (c *Config) StackGeometry() stack.Geometry {
	easing, err := animation.ParseEasing(c.Animation.MoveEasing)
	if err != nil {
		easing = animation.Linear
	}
	return stack.Geometry{
		Width:        c.Geometry.Width,
		Height:       c.Geometry.Height,
		Spacer:       c.Geometry.Spacer,
		Margin:       c.Geometry.Margin,
		MoveDuration: c.Animation.MoveDuration.Duration(),
		MoveEasing:   easing,
	}
}

// DefaultPositionValue returns the parsed default position.
func (c *Config) DefaultPositionValue() model.Position {
	pos, err := model.ParsePosition(c.Defaults.Position)
	if err != nil {
		return model.PositionBottomRight
	}
	return pos
}

// DefaultShake returns the configured shake, or nil when disabled.
func (c *Config) DefaultShake() *model.ShakeRequest {
	if c.Shake.Duration <= 0 || c.Shake.Amplitude <= 0 {
		return nil
	}
	return &model.ShakeRequest{
		Duration:  c.Shake.Duration.Duration(),
		Amplitude: c.Shake.Amplitude,
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
