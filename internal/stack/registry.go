package stack

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/model"
)

// Registry errors.
var (
	// ErrNotStacked is an internal error: the popup is not in any stack.
	ErrNotStacked = errors.New("popup is not in any stack")
	// ErrPopupClosed is returned when adding a popup that was already removed.
	ErrPopupClosed = errors.New("popup has been closed")
)

// ExpireHandler is called from the animation loop when a popup's auto-hide
// deadline passes.
type ExpireHandler func(p *Popup)

// stack is the ordered list of popups sharing a Key.
type stack struct {
	key    Key
	popups []*Popup

	// Extra offset for chrome insets, computed when the second popup arrives.
	offsetY        int
	offsetComputed bool
}

func (s *stack) indexOf(p *Popup) int {
	for i, q := range s.popups {
		if q == p {
			return i
		}
	}
	return -1
}

// PopupSnapshot is a copy of a popup's layout state.
type PopupSnapshot struct {
	ID        string        `json:"id" yaml:"id"`
	Title     string        `json:"title" yaml:"title"`
	Text      string        `json:"text,omitempty" yaml:"text,omitempty"`
	Index     int           `json:"index" yaml:"index"`
	X         int           `json:"x" yaml:"x"`
	Y         int           `json:"y" yaml:"y"`
	AnchorX   int           `json:"anchor_x" yaml:"anchor_x"`
	AnchorY   int           `json:"anchor_y" yaml:"anchor_y"`
	Width     int           `json:"width" yaml:"width"`
	Height    int           `json:"height" yaml:"height"`
	Progress  int           `json:"progress" yaml:"progress"`
	HideAfter time.Duration `json:"hide_after" yaml:"hide_after"`
	ShownAt   time.Time     `json:"shown_at" yaml:"shown_at"`
}

// StackSnapshot is a copy of one stack.
type StackSnapshot struct {
	Key      string          `json:"key" yaml:"key"`
	Surface  string          `json:"surface" yaml:"surface"`
	Position model.Position  `json:"position" yaml:"position"`
	OffsetY  int             `json:"offset_y" yaml:"offset_y"`
	Popups   []PopupSnapshot `json:"popups" yaml:"popups"`
}

// Registry maps stack keys to ordered popup lists. All mutations take one
// lock over the whole map so that a removal and the reflow that follows it
// are atomic with respect to concurrent additions.
type Registry struct {
	mu       sync.Mutex
	stacks   map[Key]*stack
	geometry Geometry
	animator *animation.Animator
	logger   *slog.Logger
	onExpire ExpireHandler
}

// NewRegistry creates an empty registry driving popups with animator.
func NewRegistry(animator *animation.Animator, geometry Geometry, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if geometry.MoveEasing == nil {
		geometry.MoveEasing = animation.Linear
	}

	return &Registry{
		stacks:   make(map[Key]*stack),
		geometry: geometry,
		animator: animator,
		logger:   logger,
	}
}

// SetExpireHandler sets the handler for auto-hide deadlines. Without one,
// expired popups are removed from the registry directly.
func (r *Registry) SetExpireHandler(fn ExpireHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Geometry returns the current geometry.
func (r *Registry) Geometry() Geometry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.geometry
}

// Add appends p to the stack for its key and snaps it to its slot. The
// auto-hide timer is started the first time the popup is added. Adding a
// popup that is already stacked does nothing.
func (r *Registry) Add(p *Popup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.mu.Lock()
	stacked, removed, key := p.stacked, p.removed, p.key
	p.mu.Unlock()

	if removed {
		return fmt.Errorf("%w: %s", ErrPopupClosed, p.ID)
	}
	if stacked {
		return nil
	}

	st, ok := r.stacks[key]
	if !ok {
		st = &stack{key: key}
		r.stacks[key] = st
	}

	index := len(st.popups)
	if index == 1 && !st.offsetComputed {
		st.offsetY = ExtraOffset(key.Position.GrowsDown(), p.Surface.Insets(), r.geometry.Margin)
		st.offsetComputed = true
	}

	p.mu.Lock()
	p.index = index
	p.stacked = true
	p.shownAt = time.Now()
	anchorX := p.anchorX
	startHide := p.hideAfter > 0 && !p.hideStarted
	p.hideStarted = p.hideStarted || startHide
	width, hideAfter := p.width, p.hideAfter
	p.mu.Unlock()

	st.popups = append(st.popups, p)
	p.snap(anchorX, r.targetYLocked(st, p))

	if startHide {
		r.animator.Schedule(p, animation.ChannelProgress, animation.Tween{
			To:       []float64{float64(width)},
			Duration: hideAfter,
			Easing:   animation.Linear,
		}, animation.OnComplete(func() { r.expired(p) }))
	}

	r.logger.Debug("popup added",
		"id", p.ID,
		"stack", key.String(),
		"index", index,
		"hide_after", hideAfter,
	)
	return nil
}

// expired runs on the animation loop once the progress bar is full.
func (r *Registry) expired(p *Popup) {
	r.mu.Lock()
	handler := r.onExpire
	r.mu.Unlock()

	if handler != nil {
		handler(p)
		return
	}
	if _, err := r.Remove(p); err != nil {
		r.logger.Debug("expired popup already removed", "id", p.ID, "error", err)
	}
}

// Remove takes p out of its stack, cancels its animations and animates
// every remaining popup of the stack to its new slot. It reports whether
// the registry is now completely empty. Removing a popup that is not
// stacked returns ErrNotStacked.
func (r *Registry) Remove(p *Popup) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.Key()
	st, ok := r.stacks[key]
	index := -1
	if ok {
		index = st.indexOf(p)
	}
	if index < 0 {
		return len(r.stacks) == 0, fmt.Errorf("%w: %s (%s)", ErrNotStacked, p.ID, key)
	}

	// All move tweens are cancelled before any new one is issued.
	for _, q := range st.popups {
		r.animator.Cancel(q, animation.ChannelMove)
	}
	r.animator.Cancel(p, animation.ChannelProgress)
	r.animator.Cancel(p, animation.ChannelShake)

	st.popups = append(st.popups[:index], st.popups[index+1:]...)
	for i := index; i < len(st.popups); i++ {
		st.popups[i].setIndex(i)
	}

	p.mu.Lock()
	p.stacked = false
	p.removed = true
	p.mu.Unlock()

	if len(st.popups) == 0 {
		delete(r.stacks, key)
	} else {
		for _, q := range st.popups {
			r.animator.Schedule(q, animation.ChannelMove, animation.Tween{
				To:       []float64{float64(r.targetYLocked(st, q))},
				Duration: r.geometry.MoveDuration,
				Easing:   r.geometry.MoveEasing,
			}, nil)
		}
	}

	r.logger.Debug("popup removed",
		"id", p.ID,
		"stack", key.String(),
		"index", index,
		"remaining", len(st.popups),
	)
	return len(r.stacks) == 0, nil
}

// Relayout re-anchors p after its surface moved or resized. Any move in
// flight is cancelled and the popup snaps to its slot without animation.
func (r *Registry) Relayout(p *Popup, bounds model.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.Key()
	ax, ay := Anchor(key.Position, bounds, p.Surface.Desktop(), r.geometry)
	p.setAnchor(ax, ay)

	r.animator.Cancel(p, animation.ChannelMove)

	y := ay
	if st, ok := r.stacks[key]; ok && st.indexOf(p) >= 0 {
		y = r.targetYLocked(st, p)
	}
	p.snap(ax, y)
}

// SetGeometry applies new geometry to the registry and snaps every
// visible popup to its recomputed slot. The cached extra offset of a
// stack depends on the margin, so it is recomputed as well.
func (r *Registry) SetGeometry(g Geometry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.MoveEasing == nil {
		g.MoveEasing = animation.Linear
	}
	r.geometry = g

	for _, st := range r.stacks {
		if st.offsetComputed {
			st.offsetY = ExtraOffset(st.key.Position.GrowsDown(), st.popups[0].Surface.Insets(), g.Margin)
		}
		for _, p := range st.popups {
			r.animator.Cancel(p, animation.ChannelMove)
			p.setSize(g.Width, g.Height)
			ax, ay := Anchor(st.key.Position, p.Surface.Bounds(), p.Surface.Desktop(), g)
			p.setAnchor(ax, ay)
			p.snap(ax, r.targetYLocked(st, p))
		}
	}
}

// targetYLocked returns the slot of p in st. Caller must hold the lock.
func (r *Registry) targetYLocked(st *stack, p *Popup) int {
	p.mu.Lock()
	anchorY, index := p.anchorY, p.index
	p.mu.Unlock()
	return TargetY(st.key.Position, anchorY, index, st.offsetY, r.geometry)
}

// Contains reports whether p is currently stacked.
func (r *Registry) Contains(p *Popup) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stacks[p.Key()]
	return ok && st.indexOf(p) >= 0
}

// Len returns the number of stacked popups.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, st := range r.stacks {
		n += len(st.popups)
	}
	return n
}

// Empty reports whether no stack holds any popup.
func (r *Registry) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stacks) == 0
}

// Stack returns the popups of key in visual order.
func (r *Registry) Stack(key Key) []*Popup {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stacks[key]
	if !ok {
		return nil
	}
	return append([]*Popup(nil), st.popups...)
}

// Popups returns every stacked popup, ordered by stack key then index.
func (r *Registry) Popups() []*Popup {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Popup
	for _, st := range r.sortedLocked() {
		out = append(out, st.popups...)
	}
	return out
}

// Snapshot returns a consistent copy of all stacks ordered by key.
func (r *Registry) Snapshot() []StackSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	stacks := r.sortedLocked()
	out := make([]StackSnapshot, 0, len(stacks))
	for _, st := range stacks {
		snap := StackSnapshot{
			Key:      st.key.String(),
			Surface:  st.key.Surface,
			Position: st.key.Position,
			OffsetY:  st.offsetY,
			Popups:   make([]PopupSnapshot, 0, len(st.popups)),
		}
		for _, p := range st.popups {
			snap.Popups = append(snap.Popups, p.snapshot())
		}
		out = append(out, snap)
	}
	return out
}

func (r *Registry) sortedLocked() []*stack {
	stacks := make([]*stack, 0, len(r.stacks))
	for _, st := range r.stacks {
		stacks = append(stacks, st)
	}
	sort.Slice(stacks, func(i, j int) bool {
		return stacks[i].key.String() < stacks[j].key.String()
	})
	return stacks
}
