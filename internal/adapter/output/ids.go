package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/toaststack/internal/stack"
)

// IDsFormatter outputs just the popup IDs, one per line, in stack order.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes popup IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, stacks []stack.StackSnapshot) error {
	for _, s := range stacks {
		for _, p := range s.Popups {
			if _, err := fmt.Fprintln(w, p.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
