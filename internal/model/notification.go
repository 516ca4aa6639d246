// Package model defines the core data structures for toaststack.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ScreenAuto selects the first available screen (or the configured default).
const ScreenAuto = -1

// Default content for a notification created without a title.
const DefaultTitle = "Notification"

// Built-in icon names.
const (
	IconConfirm     = "dialog-confirm"
	IconInformation = "dialog-information"
	IconWarning     = "dialog-warning"
	IconError       = "dialog-error"
)

// ShakeRequest asks for an attention "shake" right after the popup is shown.
type ShakeRequest struct {
	Duration  time.Duration `json:"duration"`
	Amplitude int           `json:"amplitude"` // 4 is a little, 10 is a lot
}

// Notification is the content and placement request for one popup.
type Notification struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Text            string        `json:"text"`
	Icon            string        `json:"icon,omitempty"`
	Position        Position      `json:"position"`
	Screen          int           `json:"screen"`
	HideAfter       time.Duration `json:"hide_after"` // 0 shows forever
	HideCloseButton bool          `json:"hide_close_button,omitempty"`
	Dark            bool          `json:"dark,omitempty"`
	Shake           *ShakeRequest `json:"shake,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("notification id cannot be empty")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrNegativeDuration = errors.New("hide_after cannot be negative")
	ErrInvalidShake     = errors.New("shake duration and amplitude must be positive")
)

// NewID returns a new ULID string.
func NewID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

// NewNotification creates a Notification with a generated ULID and defaults.
func NewNotification() (*Notification, error) {
	id, err := NewID()
	if err != nil {
		return nil, err
	}

	return &Notification{
		ID:        id,
		Title:     DefaultTitle,
		Position:  PositionBottomRight,
		Screen:    ScreenAuto,
		CreatedAt: time.Now(),
	}, nil
}

// Validate checks that the notification can be laid out.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if !n.Position.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, int(n.Position))
	}
	if n.HideAfter < 0 {
		return ErrNegativeDuration
	}
	if n.Shake != nil && (n.Shake.Duration <= 0 || n.Shake.Amplitude <= 0) {
		return ErrInvalidShake
	}
	return nil
}

// TextTruncated returns the body collapsed to single spaces and truncated to
// maxLen characters, with "..." appended when anything was cut.
func (n *Notification) TextTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	text := []rune(strings.Join(strings.Fields(n.Text), " "))
	if len(text) <= maxLen {
		return string(text)
	}
	return string(text[:maxLen]) + "..."
}

// Clone creates a deep copy of the notification.
func (n *Notification) Clone() *Notification {
	clone := *n
	if n.Shake != nil {
		shake := *n.Shake
		clone.Shake = &shake
	}
	return &clone
}
