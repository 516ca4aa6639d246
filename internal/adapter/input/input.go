// Package input reads batches of notification requests for the CLI and the
// simulator.
package input

import (
	"context"
)

// InputAdapter fetches notification requests from a source.
type InputAdapter interface {
	// Name returns the adapter identifier (e.g., "stdin", "file").
	Name() string

	// Import reads the requests from the source in order.
	Import(ctx context.Context) ([]Request, error)
}

// NewAdapter creates an InputAdapter for the specified source. "-" and
// "stdin" read standard input; anything else is a file path.
func NewAdapter(source string) (InputAdapter, error) {
	switch source {
	case "":
		return nil, &AdapterError{
			Source:  source,
			Message: "no input source given",
		}
	case "-", "stdin":
		return NewStdinAdapter(), nil
	default:
		return NewFileAdapter(source), nil
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
