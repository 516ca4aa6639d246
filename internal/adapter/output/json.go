package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toaststack/internal/stack"
)

// JSONFormatter formats stacks as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes stacks as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, stacks []stack.StackSnapshot) error {
	if stacks == nil {
		stacks = []stack.StackSnapshot{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stacks)
}

// FormatPopup writes a single popup as JSON.
func (f *JSONFormatter) FormatPopup(w io.Writer, p stack.PopupSnapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(p)
}
