package notify

import "errors"

// ErrInvalidDescriptor is returned by Show for requests that cannot be
// laid out. It is a configuration error and nothing is shown.
var ErrInvalidDescriptor = errors.New("invalid notification")

// DisplayError represents a failure to create or draw a popup.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
