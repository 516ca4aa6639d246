package input

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/notify"
)

// Request is one notification to show. Unset fields keep the manager's
// configured defaults.
type Request struct {
	Title           string           `json:"title" yaml:"title"`
	Text            string           `json:"text,omitempty" yaml:"text,omitempty"`
	Icon            string           `json:"icon,omitempty" yaml:"icon,omitempty"`
	Position        string           `json:"position,omitempty" yaml:"position,omitempty"`
	Screen          *int             `json:"screen,omitempty" yaml:"screen,omitempty"`
	HideAfter       *config.Duration `json:"hide_after,omitempty" yaml:"hide_after,omitempty"`
	Dark            bool             `json:"dark,omitempty" yaml:"dark,omitempty"`
	HideCloseButton bool             `json:"hide_close_button,omitempty" yaml:"hide_close_button,omitempty"`
	Shake           *ShakeEntry      `json:"shake,omitempty" yaml:"shake,omitempty"`

	// After delays the request relative to the previous one when replayed
	// by the simulator.
	After config.Duration `json:"after,omitempty" yaml:"after,omitempty"`
}

// ShakeEntry requests a shake. Zero fields use the configured shake.
type ShakeEntry struct {
	Duration  config.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	Amplitude int             `json:"amplitude,omitempty" yaml:"amplitude,omitempty"`
}

// Apply copies the request onto b. fallback supplies shake settings the
// request leaves out and may be nil.
func (r Request) Apply(b *notify.Builder, fallback *model.ShakeRequest) (*notify.Builder, error) {
	if r.Title != "" {
		b.Title(r.Title)
	}
	if r.Text != "" {
		b.Text(r.Text)
	}
	if r.Icon != "" {
		b.Icon(r.Icon)
	}
	if r.Position != "" {
		pos, err := model.ParsePosition(r.Position)
		if err != nil {
			return b, err
		}
		b.Position(pos)
	}
	if r.Screen != nil {
		b.Screen(*r.Screen)
	}
	if r.HideAfter != nil {
		b.HideAfter(r.HideAfter.Duration())
	}
	if r.Dark {
		b.DarkStyle()
	}
	if r.HideCloseButton {
		b.HideCloseButton()
	}
	if r.Shake != nil {
		shake := model.ShakeRequest{
			Duration:  r.Shake.Duration.Duration(),
			Amplitude: r.Shake.Amplitude,
		}
		if fallback != nil {
			if shake.Duration <= 0 {
				shake.Duration = fallback.Duration
			}
			if shake.Amplitude <= 0 {
				shake.Amplitude = fallback.Amplitude
			}
		}
		if shake.Duration <= 0 || shake.Amplitude <= 0 {
			return b, model.ErrInvalidShake
		}
		b.Shake(shake.Duration, shake.Amplitude)
	}
	return b, nil
}

// Parse decodes a batch of requests. Accepted formats:
//  1. JSON array of requests
//  2. JSON lines, one request object per line
//  3. YAML sequence of requests
func Parse(data []byte) ([]Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var requests []Request
		if err := json.Unmarshal(trimmed, &requests); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		return checked(requests)
	case '{':
		return parseJSONLines(trimmed)
	default:
		var requests []Request
		if err := yaml.Unmarshal(trimmed, &requests); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return checked(requests)
	}
}

func parseJSONLines(data []byte) ([]Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var requests []Request
	for line := 1; ; line++ {
		var r Request
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid JSON object %d: %w", line, err)
		}
		requests = append(requests, r)
	}
	return checked(requests)
}

func checked(requests []Request) ([]Request, error) {
	if err := validate(requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func validate(requests []Request) error {
	var errs []error
	for i, r := range requests {
		if r.Position != "" {
			if _, err := model.ParsePosition(r.Position); err != nil {
				errs = append(errs, fmt.Errorf("request %d: %w", i+1, err))
			}
		}
		if r.HideAfter != nil && r.HideAfter.Duration() < 0 {
			errs = append(errs, fmt.Errorf("request %d: %w", i+1, model.ErrNegativeDuration))
		}
		if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Text) == "" {
			errs = append(errs, fmt.Errorf("request %d: title or text is required", i+1))
		}
	}
	return errors.Join(errs...)
}
