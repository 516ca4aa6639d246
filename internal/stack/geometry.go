package stack

import (
	"time"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/model"
)

// Default geometry values.
const (
	DefaultWidth        = 300
	DefaultHeight       = 87
	DefaultSpacer       = 10
	DefaultMargin       = 20
	DefaultMoveDuration = time.Second
)

// Geometry holds the popup size, spacing and reflow animation settings.
type Geometry struct {
	Width        int
	Height       int
	Spacer       int // Gap between stacked popups
	Margin       int // Gap between the first popup and the surface edge
	MoveDuration time.Duration
	MoveEasing   animation.Easing
}

// DefaultGeometry returns the default popup geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Spacer:       DefaultSpacer,
		Margin:       DefaultMargin,
		MoveDuration: DefaultMoveDuration,
		MoveEasing:   animation.Linear,
	}
}

// Pitch is the vertical distance between two consecutive popups.
func (g Geometry) Pitch() int {
	return g.Height + g.Spacer
}

// Anchor returns the coordinates of the first popup of a stack at pos.
// Desktop popups use absolute screen coordinates; attached popups are
// relative to their window.
func Anchor(pos model.Position, bounds model.Rect, desktop bool, g Geometry) (int, int) {
	startX, startY := 0, 0
	if desktop {
		startX, startY = bounds.X, bounds.Y
	}

	var x, y int
	switch pos {
	case model.PositionTopLeft, model.PositionBottomLeft:
		x = startX + g.Margin
	case model.PositionTopRight, model.PositionBottomRight:
		x = startX + bounds.Width - g.Width - g.Margin
	default: // top, center, bottom
		x = startX + bounds.Width/2 - g.Width/2 - g.Margin/2
	}

	switch pos {
	case model.PositionTopLeft, model.PositionTopRight, model.PositionTop:
		y = startY + g.Margin
	case model.PositionCenter:
		y = startY + bounds.Height/2 - g.Height/2 - g.Margin/2 - g.Spacer
	default: // bottom variants
		if desktop {
			y = startY + bounds.Height - g.Height - g.Margin
		} else {
			y = bounds.Height - g.Height - g.Margin - g.Spacer*2
		}
	}
	return x, y
}

// TargetY returns the Y coordinate of the popup at index in a stack whose
// first popup sits at anchorY. extra is the cached chrome offset of the
// stack; it does not apply to the first popup.
func TargetY(pos model.Position, anchorY, index, extra int, g Geometry) int {
	if index == 0 {
		return anchorY
	}
	step := index*g.Pitch() + extra
	if pos.GrowsDown() {
		return anchorY + step
	}
	return anchorY - step
}

// ExtraOffset returns the offset applied to a stack once it holds more than
// one popup, so that popups pushed away by a panel or taskbar do not overlap.
func ExtraOffset(growsDown bool, insets model.Insets, margin int) int {
	if growsDown {
		if insets.Top > 0 {
			return insets.Top - margin
		}
		return 0
	}
	if insets.Bottom > 0 {
		return insets.Bottom + margin
	}
	return 0
}
