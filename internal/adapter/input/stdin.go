package input

import (
	"context"
	"errors"
	"io"
	"os"
)

// maxInputSize bounds how much is read from a single source.
const maxInputSize = 10 * 1024 * 1024

// StdinAdapter reads notification requests from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads requests from standard input. See Parse for the accepted
// formats.
func (a *StdinAdapter) Import(ctx context.Context) ([]Request, error) {
	data, err := io.ReadAll(io.LimitReader(a.reader, maxInputSize))
	if err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to read stdin",
			Err:     err,
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requests, err := Parse(data)
	if err != nil {
		return nil, &AdapterError{
			Source:  "stdin",
			Message: "failed to parse input",
			Err:     err,
		}
	}
	return requests, nil
}

// FileAdapter reads notification requests from a file.
type FileAdapter struct {
	path string
}

// NewFileAdapter creates a new FileAdapter for path.
func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

// Name returns the adapter identifier.
func (a *FileAdapter) Name() string {
	return "file"
}

// Import reads requests from the file.
func (a *FileAdapter) Import(ctx context.Context) ([]Request, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, &AdapterError{
			Source:  a.path,
			Message: "failed to open input",
			Err:     err,
		}
	}
	defer func() { _ = f.Close() }()

	requests, err := NewStdinAdapterWithReader(f).Import(ctx)
	if err != nil {
		var adapterErr *AdapterError
		if errors.As(err, &adapterErr) {
			adapterErr.Source = a.path
		}
		return nil, err
	}
	return requests, nil
}
