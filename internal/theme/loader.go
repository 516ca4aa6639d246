package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrThemeNotFound is returned when no bundled or user theme has the name.
var ErrThemeNotFound = errors.New("theme not found")

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "toaststack", "themes"), nil
}

// Loader resolves theme names and keeps the configured theme hot-reloaded.
type Loader struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	themesDir string
	current   *Theme
	watcher   *Watcher
	onChange  func(*Theme)
}

// NewLoader creates a loader reading user themes from themesDir. An empty
// themesDir uses ThemesDir().
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if themesDir == "" {
		dir, err := ThemesDir()
		if err != nil {
			logger.Warn("failed to get themes directory", "error", err)
		}
		themesDir = dir
	}

	return &Loader{
		logger:    logger,
		themesDir: themesDir,
	}
}

// Find loads a theme by name without changing the current theme.
// Resolution order:
//  1. User themes directory (~/.config/toaststack/themes/<name>.toml)
//  2. Bundled themes
func (l *Loader) Find(name string) (*Theme, error) {
	if l.themesDir != "" {
		path := filepath.Join(l.themesDir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			t, err := NewTheme(name, path)
			if err == nil {
				return t, nil
			}
			l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	switch name {
	case LightThemeName:
		return Light(), nil
	case DarkThemeName:
		return Dark(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
}

// Load makes name the current theme. Unknown names fall back to the
// light theme with a warning.
func (l *Loader) Load(name string) *Theme {
	if name == "" {
		name = LightThemeName
	}

	t, err := l.Find(name)
	if err != nil {
		l.logger.Warn("theme not found, using default", "theme", name)
		t = Light()
	}

	l.mu.Lock()
	l.current = t
	l.mu.Unlock()

	if t.Builtin {
		l.logger.Debug("loaded bundled theme", "name", t.Name)
	} else {
		l.logger.Info("loaded user theme", "name", t.Name, "path", t.Path)
	}
	return t.Clone()
}

// Current returns a copy of the current theme, or nil before Load.
func (l *Loader) Current() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return nil
	}
	return l.current.Clone()
}

// Resolve picks the theme for one popup: the current theme when one was
// loaded, otherwise the bundled dark or light theme.
func (l *Loader) Resolve(dark bool) *Theme {
	if t := l.Current(); t != nil {
		return t
	}
	return Default(dark)
}

// SetChangeCallback sets the callback run after the current theme was
// hot-reloaded.
func (l *Loader) SetChangeCallback(fn func(*Theme)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// StartHotReload watches the current theme file, if it has one.
func (l *Loader) StartHotReload(ctx context.Context) {
	// The watcher callback takes l.mu, so stop any old watcher unlocked.
	l.StopHotReload()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil || l.current.Builtin {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return
	}

	l.watcher = NewWatcher(l.current.Clone(), l.logger)
	l.watcher.SetChangeCallback(func(t *Theme) {
		l.mu.Lock()
		l.current = t
		fn := l.onChange
		l.mu.Unlock()

		l.logger.Info("hot-reloaded theme", "name", t.Name)
		if fn != nil {
			fn(t.Clone())
		}
	})

	if err := l.watcher.Start(ctx); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
	}
}

// StopHotReload stops watching the theme file.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// ThemeInfo describes an available theme.
type ThemeInfo struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Bundled bool   `json:"bundled" yaml:"bundled"`
}

// List returns bundled themes followed by user themes. A user theme with
// a bundled name overrides it.
func (l *Loader) List() []ThemeInfo {
	byName := make(map[string]ThemeInfo)
	for _, name := range ListEmbeddedThemes() {
		byName[name] = ThemeInfo{Name: name, Bundled: true}
	}

	if l.themesDir != "" {
		entries, err := os.ReadDir(l.themesDir)
		if err != nil && !os.IsNotExist(err) {
			l.logger.Debug("failed to read themes directory", "error", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".toml" {
				continue
			}
			themeName := strings.TrimSuffix(name, ".toml")
			byName[themeName] = ThemeInfo{Name: themeName, Path: filepath.Join(l.themesDir, name)}
		}
	}

	themes := make([]ThemeInfo, 0, len(byName))
	for _, info := range byName {
		themes = append(themes, info)
	}
	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Bundled != themes[j].Bundled {
			return themes[i].Bundled
		}
		return themes[i].Name < themes[j].Name
	})
	return themes
}
