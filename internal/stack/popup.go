package stack

import (
	"sync"
	"time"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/surface"
)

// Key identifies a stack: one surface and one position on it.
type Key struct {
	Surface  string
	Position model.Position
}

// String returns "surface:position", e.g. "screen:0:bottom-right".
func (k Key) String() string {
	return k.Surface + ":" + k.Position.String()
}

// Sink receives the animated location and progress of a popup. It is
// implemented by whatever draws the popup.
type Sink interface {
	Move(x, y int)
	SetProgress(progress int)
}

// Popup is the handle of one visible notification. It is owned by the
// Registry between Add and Remove.
type Popup struct {
	ID           string
	Notification *model.Notification
	Surface      surface.Surface

	mu          sync.Mutex
	key         Key
	index       int
	anchorX     int
	anchorY     int
	x, y        int
	dx, dy      int
	progress    int
	width       int
	height      int
	hideAfter   time.Duration
	hideStarted bool
	stacked     bool
	removed     bool
	shownAt     time.Time
	sink        Sink
}

// NewPopup creates a popup for n on surf, anchored using g.
func NewPopup(n *model.Notification, surf surface.Surface, g Geometry) *Popup {
	ax, ay := Anchor(n.Position, surf.Bounds(), surf.Desktop(), g)
	return &Popup{
		ID:           n.ID,
		Notification: n,
		Surface:      surf,
		key:          Key{Surface: surf.ID(), Position: n.Position},
		anchorX:      ax,
		anchorY:      ay,
		x:            ax,
		y:            ay,
		width:        g.Width,
		height:       g.Height,
		hideAfter:    n.HideAfter,
	}
}

// SetSink attaches the drawing backend. It is called with every change
// of location or progress.
func (p *Popup) SetSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = s
}

// Key returns the stack key of the popup.
func (p *Popup) Key() Key {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Index returns the position of the popup in its stack.
func (p *Popup) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Location returns the current (possibly animating) coordinates, shake
// offset included.
func (p *Popup) Location() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x + p.dx, p.y + p.dy
}

// Anchor returns the coordinates of the first popup of this popup's stack.
func (p *Popup) Anchor() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.anchorX, p.anchorY
}

// Progress returns the auto-hide progress bar value in [0, width].
func (p *Popup) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// Size returns the popup width and height.
func (p *Popup) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// ShownAt returns when the popup was added to the registry.
func (p *Popup) ShownAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shownAt
}

// Visible reports whether the popup is currently stacked.
func (p *Popup) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stacked
}

// Closed reports whether the popup was removed from its stack. A closed
// popup cannot be added again.
func (p *Popup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removed
}

// Values implements animation.Target. The shake channel is an offset on
// top of the slot and always starts from rest.
func (p *Popup) Values(ch animation.Channel) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ch {
	case animation.ChannelMove:
		return []float64{float64(p.y)}
	case animation.ChannelShake:
		return []float64{0, 0}
	case animation.ChannelProgress:
		return []float64{float64(p.progress)}
	default:
		return nil
	}
}

// SetValues implements animation.Target. Coordinates are truncated to
// whole pixels and progress is clamped to [0, width].
func (p *Popup) SetValues(ch animation.Channel, values []float64) {
	p.mu.Lock()
	switch ch {
	case animation.ChannelMove:
		p.y = int(values[0])
	case animation.ChannelShake:
		p.dx, p.dy = int(values[0]), int(values[1])
	case animation.ChannelProgress:
		p.progress = min(max(int(values[0]), 0), p.width)
	}
	x, y, progress, sink := p.x+p.dx, p.y+p.dy, p.progress, p.sink
	p.mu.Unlock()

	if sink == nil {
		return
	}
	if ch == animation.ChannelProgress {
		sink.SetProgress(progress)
	} else {
		sink.Move(x, y)
	}
}

// snap moves the popup without animation.
func (p *Popup) snap(x, y int) {
	p.mu.Lock()
	p.x, p.y = x, y
	x, y = x+p.dx, y+p.dy
	sink := p.sink
	p.mu.Unlock()

	if sink != nil {
		sink.Move(x, y)
	}
}

func (p *Popup) setIndex(i int) {
	p.mu.Lock()
	p.index = i
	p.mu.Unlock()
}

func (p *Popup) setAnchor(x, y int) {
	p.mu.Lock()
	p.anchorX, p.anchorY = x, y
	p.mu.Unlock()
}

func (p *Popup) setSize(width, height int) {
	p.mu.Lock()
	p.width, p.height = width, height
	p.progress = min(p.progress, width)
	p.mu.Unlock()
}

func (p *Popup) snapshot() PopupSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PopupSnapshot{
		ID:        p.ID,
		Title:     p.Notification.Title,
		Text:      p.Notification.Text,
		Index:     p.index,
		X:         p.x + p.dx,
		Y:         p.y + p.dy,
		AnchorX:   p.anchorX,
		AnchorY:   p.anchorY,
		Width:     p.width,
		Height:    p.height,
		Progress:  p.progress,
		HideAfter: p.hideAfter,
		ShownAt:   p.shownAt,
	}
}
