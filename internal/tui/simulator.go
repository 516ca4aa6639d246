package tui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toaststack/internal/adapter/input"
	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/notify"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/surface"
	"github.com/jmylchreest/toaststack/internal/theme"
)

// maxEvents is how many log lines the simulator keeps.
const maxEvents = 50

// WindowName is the name of the simulated application window.
const WindowName = "editor"

// Event is one line of the simulator log.
type Event struct {
	At   time.Time
	Text string
}

// Options configures a Simulator.
type Options struct {
	Logger *slog.Logger
	Themes *theme.Loader
	Script []input.Request
	Now    func() time.Time
}

// Simulator drives a notification manager on a virtual desktop with a
// manually ticked animator, so it can be stepped by the TUI or by tests.
type Simulator struct {
	logger   *slog.Logger
	now      func() time.Time
	animator *animation.Animator
	screens  []*surface.Screen
	set      *surface.ScreenSet
	window   *surface.Window
	canvas   *Canvas
	manager  *notify.Manager

	mu              sync.Mutex
	desktop         model.Rect
	events          []Event
	script          []input.Request
	elapsed         time.Duration
	windowIconified bool
}

// NewSimulator builds the virtual screens from cfg, placed left to right,
// and an application window in the middle of the first screen.
func NewSimulator(cfg *config.Config, opts Options) (*Simulator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Simulator{
		logger:   logger,
		now:      now,
		animator: animation.NewAnimator(logger, animation.WithManualTicks()),
		canvas:   NewCanvas(1, 1),
		script:   append([]input.Request(nil), opts.Script...),
	}

	x := 0
	for i, sc := range cfg.Simulator.Screens {
		bounds := model.Rect{X: x, Width: sc.Width, Height: sc.Height}
		s.screens = append(s.screens, surface.NewScreen(i, bounds, sc.Insets))
		s.desktop = s.desktop.Union(bounds)
		x += sc.Width
	}
	var err error
	s.set, err = surface.NewScreenSet(s.screens...)
	if err != nil {
		return nil, err
	}

	first := s.screens[0].Bounds()
	s.window = surface.NewWindow(WindowName, model.Rect{
		X:      first.X + first.Width/4,
		Y:      first.Y + first.Height/4,
		Width:  first.Width / 2,
		Height: first.Height / 2,
	})

	s.manager, err = notify.NewManager(cfg, notify.Options{
		Animator: s.animator,
		Screens:  s.set,
		Themes:   opts.Themes,
		Shell:    s.canvas.NewShell,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	s.manager.SetCloseCallback(func(p *stack.Popup) {
		s.record("closed %q", p.Notification.Title)
	})
	return s, nil
}

// Manager returns the notification manager.
func (s *Simulator) Manager() *notify.Manager { return s.manager }

// Canvas returns the canvas the popups are drawn on.
func (s *Simulator) Canvas() *Canvas { return s.canvas }

// Window returns the simulated application window.
func (s *Simulator) Window() *surface.Window { return s.window }

// Screens returns the virtual screens.
func (s *Simulator) Screens() []*surface.Screen { return s.screens }

// Desktop returns the bounding box of all screens.
func (s *Simulator) Desktop() model.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desktop
}

// WindowScreen returns the screen under the center of the application
// window.
func (s *Simulator) WindowScreen() *surface.Screen {
	b := s.window.Bounds()
	return s.set.At(b.X+b.Width/2, b.Y+b.Height/2)
}

// RotateScreen swaps the width and height of screen n, like turning a
// monitor to portrait, and shifts the screens to its right so they stay
// side by side. Popups on every changed screen are laid out again.
func (s *Simulator) RotateScreen(n int) *surface.Screen {
	rotated := s.set.Resolve(n)

	var desktop model.Rect
	x := 0
	for _, screen := range s.screens {
		b := screen.Bounds()
		next := b
		next.X = x
		if screen == rotated {
			next.Width, next.Height = b.Height, b.Width
		}
		if next != b {
			screen.SetGeometry(next, screen.Insets())
		}
		desktop = desktop.Union(next)
		x += next.Width
	}

	s.mu.Lock()
	s.desktop = desktop
	s.mu.Unlock()
	s.MoveWindow(0, 0)

	b := rotated.Bounds()
	s.record("screen %d is now %dx%d", rotated.Number, b.Width, b.Height)
	return rotated
}

// Show shows r. When attach is set the popup is placed in the application
// window instead of on a screen.
func (s *Simulator) Show(r input.Request, attach bool) (*stack.Popup, error) {
	b, err := r.Apply(s.manager.Create(), s.manager.Config().DefaultShake())
	if err != nil {
		return nil, err
	}
	if attach {
		b.Attach(s.window)
	}
	b.OnAction(func(p *stack.Popup) {
		s.record("action on %q", p.Notification.Title)
	})

	p, err := b.Show()
	if err != nil {
		return nil, err
	}
	s.record("showed %q at %s", p.Notification.Title, p.Key())
	return p, nil
}

// Tick replays due script entries and advances the animations by delta.
func (s *Simulator) Tick(delta time.Duration) {
	for _, r := range s.dueRequests(delta) {
		if _, err := s.Show(r, false); err != nil {
			s.record("script entry failed: %v", err)
		}
	}
	s.animator.Update(delta)
}

func (s *Simulator) dueRequests(delta time.Duration) []input.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed += delta
	var due []input.Request
	for len(s.script) > 0 && s.elapsed >= s.script[0].After.Duration() {
		s.elapsed -= s.script[0].After.Duration()
		due = append(due, s.script[0])
		s.script = s.script[1:]
	}
	if len(s.script) == 0 {
		s.elapsed = 0
	}
	return due
}

// Pending returns the number of script entries not yet shown.
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.script)
}

// MoveWindow moves the application window by (dx, dy) pixels, keeping it
// on the desktop.
func (s *Simulator) MoveWindow(dx, dy int) {
	desktop := s.Desktop()
	b := s.window.Bounds()
	b.X = clamp(b.X+dx, desktop.X, desktop.X+desktop.Width-b.Width)
	b.Y = clamp(b.Y+dy, desktop.Y, desktop.Y+desktop.Height-b.Height)
	s.window.SetBounds(b)
}

// ToggleIconified minimizes or restores the application window.
func (s *Simulator) ToggleIconified() bool {
	s.mu.Lock()
	iconified := !s.windowIconified
	s.windowIconified = iconified
	s.mu.Unlock()

	s.window.SetIconified(iconified)
	if iconified {
		s.record("window minimized")
	} else {
		s.record("window restored")
	}
	return iconified
}

// WindowIconified reports whether the application window is minimized.
func (s *Simulator) WindowIconified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windowIconified
}

// Events returns the most recent log lines, oldest first.
func (s *Simulator) Events(n int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	return append([]Event(nil), s.events[len(s.events)-n:]...)
}

func (s *Simulator) record(format string, args ...any) {
	e := Event{At: s.now(), Text: fmt.Sprintf(format, args...)}
	s.logger.Debug("simulator", "event", e.Text)

	s.mu.Lock()
	s.events = append(s.events, e)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
	s.mu.Unlock()
}

// Close hides every popup.
func (s *Simulator) Close() {
	s.manager.Stop()
	s.animator.Stop()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
