package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FontStyle is the weight/slant of a font.
type FontStyle int

const (
	FontPlain FontStyle = iota
	FontBold
	FontItalic
	FontBoldItalic
)

var fontStyleNames = map[FontStyle]string{
	FontPlain:      "PLAIN",
	FontBold:       "BOLD",
	FontItalic:     "ITALIC",
	FontBoldItalic: "BOLDITALIC",
}

// String returns the upper-case style name used in font specs.
func (s FontStyle) String() string {
	if name, ok := fontStyleNames[s]; ok {
		return name
	}
	return "PLAIN"
}

func parseFontStyle(s string) (FontStyle, bool) {
	switch strings.ToUpper(s) {
	case "PLAIN", "REGULAR", "NORMAL":
		return FontPlain, true
	case "BOLD":
		return FontBold, true
	case "ITALIC":
		return FontItalic, true
	case "BOLDITALIC", "BOLD_ITALIC":
		return FontBoldItalic, true
	}
	return FontPlain, false
}

// ErrInvalidFont is returned for font specs that cannot be parsed.
var ErrInvalidFont = errors.New("invalid font")

// FontSpec describes a font as "<family> [STYLE] <size>".
type FontSpec struct {
	Family string
	Style  FontStyle
	Size   int
}

// ParseFont parses a spec such as "Source Code Pro BOLD 16". The size may
// carry a "pt" suffix. The style is optional and defaults to PLAIN.
func ParseFont(spec string) (FontSpec, error) {
	fields := strings.Fields(spec)
	if len(fields) < 2 {
		return FontSpec{}, fmt.Errorf("%w: %q: expected family and size", ErrInvalidFont, spec)
	}

	sizeField := strings.TrimSuffix(strings.ToLower(fields[len(fields)-1]), "pt")
	size, err := strconv.Atoi(sizeField)
	if err != nil || size <= 0 {
		return FontSpec{}, fmt.Errorf("%w: %q: bad size %q", ErrInvalidFont, spec, fields[len(fields)-1])
	}
	fields = fields[:len(fields)-1]

	style := FontPlain
	if len(fields) > 1 {
		if s, ok := parseFontStyle(fields[len(fields)-1]); ok {
			style = s
			fields = fields[:len(fields)-1]
		}
	}

	return FontSpec{
		Family: strings.Join(fields, " "),
		Style:  style,
		Size:   size,
	}, nil
}

// String formats the spec so that ParseFont(f.String()) == f.
func (f FontSpec) String() string {
	return fmt.Sprintf("%s %s %d", f.Family, f.Style, f.Size)
}

// Bold reports whether the style includes bold.
func (f FontSpec) Bold() bool {
	return f.Style == FontBold || f.Style == FontBoldItalic
}

// Italic reports whether the style includes italic.
func (f FontSpec) Italic() bool {
	return f.Style == FontItalic || f.Style == FontBoldItalic
}

// MarshalText implements encoding.TextMarshaler.
func (f FontSpec) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FontSpec) UnmarshalText(text []byte) error {
	parsed, err := ParseFont(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
