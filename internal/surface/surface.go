// Package surface describes what a popup stack is anchored to: a whole
// screen (desktop popups) or an application window (attached popups).
package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jmylchreest/toaststack/internal/model"
)

// Listener is called with the new bounds when a surface moves or resizes.
type Listener func(bounds model.Rect)

// Surface is the target a popup is laid out against.
type Surface interface {
	// ID identifies the surface within a stack key, e.g. "screen:0".
	ID() string
	Bounds() model.Rect
	// Insets returns space reserved by panels/taskbars. Windows have none.
	Insets() model.Insets
	// Desktop reports whether popup coordinates are absolute screen
	// coordinates. Attached popups are positioned relative to their window.
	Desktop() bool
	AddListener(l Listener) int
	RemoveListener(id int)
}

// ErrNoScreens is returned when a screen set is created without screens.
var ErrNoScreens = errors.New("no screens available")

// listeners is a set of Listener callbacks keyed by registration token.
type listeners struct {
	mu   sync.Mutex
	next int
	byID map[int]Listener
}

func (l *listeners) add(fn Listener) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byID == nil {
		l.byID = make(map[int]Listener)
	}
	l.next++
	l.byID[l.next] = fn
	return l.next
}

func (l *listeners) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byID, id)
}

func (l *listeners) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}

// notify calls every listener outside the lock so listeners may unregister.
func (l *listeners) notify(bounds model.Rect) {
	l.mu.Lock()
	fns := make([]Listener, 0, len(l.byID))
	for _, fn := range l.byID {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(bounds)
	}
}

// Screen is a monitor. Popups on a screen use absolute coordinates.
type Screen struct {
	Number int

	mu        sync.RWMutex
	bounds    model.Rect
	insets    model.Insets
	listeners listeners
}

// NewScreen creates a screen with the given bounds and reserved insets.
func NewScreen(number int, bounds model.Rect, insets model.Insets) *Screen {
	return &Screen{Number: number, bounds: bounds, insets: insets}
}

// ID implements Surface.
func (s *Screen) ID() string {
	return fmt.Sprintf("screen:%d", s.Number)
}

// Bounds implements Surface.
func (s *Screen) Bounds() model.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bounds
}

// Insets implements Surface.
func (s *Screen) Insets() model.Insets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insets
}

// Desktop implements Surface.
func (s *Screen) Desktop() bool { return true }

// AddListener implements Surface.
func (s *Screen) AddListener(l Listener) int { return s.listeners.add(l) }

// RemoveListener implements Surface.
func (s *Screen) RemoveListener(id int) { s.listeners.remove(id) }

// ListenerCount returns the number of registered listeners.
func (s *Screen) ListenerCount() int { return s.listeners.count() }

// SetGeometry updates the screen after a monitor configuration change.
func (s *Screen) SetGeometry(bounds model.Rect, insets model.Insets) {
	s.mu.Lock()
	s.bounds = bounds
	s.insets = insets
	s.mu.Unlock()

	s.listeners.notify(bounds)
}

// Window is an application window that popups can be attached to.
type Window struct {
	Name string

	mu        sync.RWMutex
	bounds    model.Rect
	iconified bool
	listeners listeners
}

// NewWindow creates an application window surface.
func NewWindow(name string, bounds model.Rect) *Window {
	return &Window{Name: name, bounds: bounds}
}

// ID implements Surface.
func (w *Window) ID() string {
	return "window:" + w.Name
}

// Bounds implements Surface.
func (w *Window) Bounds() model.Rect {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bounds
}

// Insets implements Surface.
func (w *Window) Insets() model.Insets { return model.Insets{} }

// Desktop implements Surface.
func (w *Window) Desktop() bool { return false }

// AddListener implements Surface.
func (w *Window) AddListener(l Listener) int { return w.listeners.add(l) }

// RemoveListener implements Surface.
func (w *Window) RemoveListener(id int) { w.listeners.remove(id) }

// ListenerCount returns the number of registered listeners.
func (w *Window) ListenerCount() int { return w.listeners.count() }

// SetBounds moves and/or resizes the window. Listeners are not notified
// while the window is iconified.
func (w *Window) SetBounds(bounds model.Rect) {
	w.mu.Lock()
	w.bounds = bounds
	iconified := w.iconified
	w.mu.Unlock()

	if !iconified {
		w.listeners.notify(bounds)
	}
}

// SetIconified changes the minimized state. Restoring the window re-lays
// out attached popups.
func (w *Window) SetIconified(iconified bool) {
	w.mu.Lock()
	changed := w.iconified != iconified
	w.iconified = iconified
	bounds := w.bounds
	w.mu.Unlock()

	if changed && !iconified {
		w.listeners.notify(bounds)
	}
}

// ScreenSet is the list of screens known to the process.
type ScreenSet struct {
	mu      sync.RWMutex
	screens []*Screen
}

// NewScreenSet creates a set from the given screens, numbered in order.
func NewScreenSet(screens ...*Screen) (*ScreenSet, error) {
	if len(screens) == 0 {
		return nil, ErrNoScreens
	}
	return &ScreenSet{screens: screens}, nil
}

// Len returns the number of screens.
func (s *ScreenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.screens)
}

// Resolve returns the screen for a number. Numbers below zero select the
// first screen and numbers past the end select the last one.
func (s *ScreenSet) Resolve(number int) *Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case number < 0:
		number = 0
	case number > len(s.screens)-1:
		number = len(s.screens) - 1
	}
	return s.screens[number]
}

// At returns the screen containing the point, or the first screen.
func (s *ScreenSet) At(x, y int) *Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, screen := range s.screens {
		if screen.Bounds().Contains(x, y) {
			return screen
		}
	}
	return s.screens[0]
}
