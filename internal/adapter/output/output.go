// Package output provides output formatters for stack layouts.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmylchreest/toaststack/internal/stack"
)

// Formatter formats stack snapshots for output.
type Formatter interface {
	// Format writes formatted stacks to the writer.
	Format(w io.Writer, stacks []stack.StackSnapshot) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// FormatTypes returns the supported format names.
func FormatTypes() []FormatType {
	return []FormatType{FormatTable, FormatPlain, FormatJSON, FormatYAML, FormatIDs}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FormatTypes() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		return NewPlainFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string           // Custom template for plain format
	ShowTime   bool             // Show how long ago each popup was shown
	ShowText   bool             // Show the body text
	TextMaxLen int              // Maximum body length (0 = unlimited)
	Now        func() time.Time // Clock for relative times (nil = time.Now)
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowTime:   true,
		TextMaxLen: 40,
	}
}

func (o FormatterOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
