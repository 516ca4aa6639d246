package animation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the default easing of every tween.
var Linear Easing = ease.Linear

var easings = map[string]Easing{
	"linear":       ease.Linear,
	"quad-in":      ease.InQuad,
	"quad-out":     ease.OutQuad,
	"quad-in-out":  ease.InOutQuad,
	"cubic-in":     ease.InCubic,
	"cubic-out":    ease.OutCubic,
	"cubic-in-out": ease.InOutCubic,
	"sine-in":      ease.InSine,
	"sine-out":     ease.OutSine,
	"sine-in-out":  ease.InOutSine,
	"bounce-out":   ease.OutBounce,
}

// EasingNames returns the names accepted by ParseEasing, sorted.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseEasing looks up an easing equation by name. An empty name is linear.
func ParseEasing(name string) (Easing, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Linear, nil
	}
	e, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q, must be one of: %v", name, EasingNames())
	}
	return e, nil
}
