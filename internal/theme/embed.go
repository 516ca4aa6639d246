package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// EmbeddedThemes contains the bundled theme files.
//
//go:embed themes/*.toml
var EmbeddedThemes embed.FS

// Names of the bundled themes.
const (
	LightThemeName = "light"
	DarkThemeName  = "dark"
)

// GetEmbeddedTheme returns the raw TOML of a bundled theme.
func GetEmbeddedTheme(name string) ([]byte, bool) {
	data, err := EmbeddedThemes.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedThemes returns the names of all bundled themes.
func ListEmbeddedThemes() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return []string{DarkThemeName, LightThemeName}
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".toml"))
	}
	sort.Strings(names)
	return names
}

// IsEmbeddedTheme reports whether name is a bundled theme.
func IsEmbeddedTheme(name string) bool {
	_, ok := GetEmbeddedTheme(name)
	return ok
}
