package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toaststack/internal/stack"
)

// YAMLFormatter formats stacks as a YAML sequence.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes stacks as YAML.
func (f *YAMLFormatter) Format(w io.Writer, stacks []stack.StackSnapshot) error {
	if stacks == nil {
		stacks = []stack.StackSnapshot{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(stacks); err != nil {
		return err
	}
	return encoder.Close()
}
