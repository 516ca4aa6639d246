package notify

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/surface"
	"github.com/jmylchreest/toaststack/internal/theme"
)

// Descriptor is a request to show one notification.
type Descriptor struct {
	Notification *model.Notification

	// Window attaches the popup to an application window instead of a
	// screen. Popups follow their window or screen when it moves or
	// resizes.
	Window *surface.Window

	Theme *theme.Theme // nil selects the configured theme
	Image image.Image  // Overrides Notification.Icon

	// OnAction runs when the popup body is clicked, before it closes.
	OnAction func(p *stack.Popup)
	// OnClose runs once when the popup closes for any reason.
	OnClose func(p *stack.Popup)
}

// CloseCallback is called when any popup is closed.
type CloseCallback func(p *stack.Popup)

// entry is the manager's state for one visible popup.
type entry struct {
	popup    *stack.Popup
	shell    Shell
	surface  surface.Surface
	listener int
	onAction func(*stack.Popup)
	onClose  func(*stack.Popup)
}

// Manager shows and hides popups. It is safe for concurrent use; auto-hide
// and rendering run on the animator's frame loop.
type Manager struct {
	logger   *slog.Logger
	animator *animation.Animator
	registry *stack.Registry
	screens  *surface.ScreenSet
	themes   *theme.Loader
	icons    *theme.IconCache
	newShell ShellFactory

	mu      sync.RWMutex
	config  *config.Config
	entries map[*stack.Popup]*entry
	onClose CloseCallback
	frameID int
}

// Options holds the collaborators of a Manager. Screens is required; the
// rest default to fresh instances.
type Options struct {
	Animator *animation.Animator
	Screens  *surface.ScreenSet
	Themes   *theme.Loader
	Icons    *theme.IconCache
	Shell    ShellFactory
	Logger   *slog.Logger
}

// NewManager creates a manager using cfg. A nil cfg uses the defaults.
func NewManager(cfg *config.Config, opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Screens == nil {
		return nil, &DisplayError{Message: "no screens available", Cause: surface.ErrNoScreens}
	}

	anim := opts.Animator
	if anim == nil {
		anim = animation.NewAnimator(logger, animation.WithFrameRate(cfg.Animation.FrameRate))
	}
	themes := opts.Themes
	if themes == nil {
		themes = theme.NewLoader("", logger)
		themes.Load(cfg.Theme.Name)
	}
	icons := opts.Icons
	if icons == nil {
		icons = theme.NewIconCache(logger)
	}
	newShell := opts.Shell
	if newShell == nil {
		newShell = NewRecordingShell
	}

	m := &Manager{
		logger:   logger,
		animator: anim,
		registry: stack.NewRegistry(anim, cfg.StackGeometry(), logger),
		screens:  opts.Screens,
		themes:   themes,
		icons:    icons,
		newShell: newShell,
		config:   cfg,
		entries:  make(map[*stack.Popup]*entry),
	}
	m.registerIcons(cfg.Icons)

	m.registry.SetExpireHandler(m.expired)
	m.frameID = anim.AddFrameHandler(m.renderFrame)
	return m, nil
}

// Registry returns the stack registry.
func (m *Manager) Registry() *stack.Registry { return m.registry }

// Animator returns the animator driving the popups.
func (m *Manager) Animator() *animation.Animator { return m.animator }

// Icons returns the icon cache.
func (m *Manager) Icons() *theme.IconCache { return m.icons }

// Config returns the active configuration.
func (m *Manager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetCloseCallback sets the callback for popup close events.
func (m *Manager) SetCloseCallback(cb CloseCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClose = cb
}

// Show validates d, places the popup in its stack and draws it.
func (m *Manager) Show(d Descriptor) (*stack.Popup, error) {
	n := d.Notification
	if n == nil {
		return nil, fmt.Errorf("%w: notification is required", ErrInvalidDescriptor)
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	n = n.Clone()

	var surf surface.Surface
	if d.Window != nil {
		surf = d.Window
	} else {
		screen := n.Screen
		if screen == model.ScreenAuto {
			screen = m.Config().Defaults.Screen
		}
		surf = m.screens.Resolve(screen)
	}

	content := m.content(d, n)
	p := stack.NewPopup(n, surf, m.registry.Geometry())

	sh, err := m.newShell(p, content)
	if err != nil {
		return nil, &DisplayError{Message: "failed to create popup shell", Cause: err}
	}
	p.SetSink(sh)

	e := &entry{
		popup:    p,
		shell:    sh,
		surface:  surf,
		onAction: d.OnAction,
		onClose:  d.OnClose,
	}

	// The hide timer may fire as soon as the popup is stacked, so the
	// entry and surface listener are in place before the lock is released.
	m.mu.Lock()
	m.entries[p] = e
	if err := m.registry.Add(p); err != nil {
		delete(m.entries, p)
		m.mu.Unlock()
		sh.Close()
		return nil, fmt.Errorf("adding popup %s: %w", p.ID, err)
	}
	e.listener = surf.AddListener(func(bounds model.Rect) {
		if err := m.OnSurfaceMoved(p, bounds); err != nil {
			m.logger.Debug("relayout skipped", "id", p.ID, "error", err)
		}
	})
	m.mu.Unlock()

	paint(sh, p.ID, m.logger)

	if n.Shake != nil {
		if err := m.Shake(p, n.Shake.Duration, n.Shake.Amplitude); err != nil {
			m.logger.Debug("shake skipped", "id", p.ID, "error", err)
		}
	}

	m.logger.Debug("showed popup",
		"id", p.ID,
		"stack", p.Key().String(),
		"index", p.Index(),
		"hide_after", n.HideAfter,
	)
	return p, nil
}

// content resolves the theme, icon and text of a popup.
func (m *Manager) content(d Descriptor, n *model.Notification) Content {
	th := d.Theme
	if th == nil {
		th = m.themes.Resolve(n.Dark)
	}

	icon := d.Image
	if icon != nil {
		icon = theme.Normalize(icon)
	} else if n.Icon != "" {
		img, ok := m.icons.Get(n.Icon)
		if ok {
			icon = img
		} else {
			m.logger.Warn("unknown icon, showing without one", "icon", n.Icon)
		}
	}

	g := m.registry.Geometry()
	return Content{
		Title:     n.Title,
		Text:      theme.BodyText(n, icon != nil),
		Icon:      icon,
		Theme:     th,
		ShowClose: !n.HideCloseButton,
		Width:     g.Width,
		Height:    g.Height,
	}
}

// Hide closes p and animates the rest of its stack into place. Hiding a
// popup this manager already closed does nothing; a popup it never showed
// returns stack.ErrNotStacked.
func (m *Manager) Hide(p *stack.Popup) error {
	m.mu.Lock()
	e, ok := m.entries[p]
	if !ok {
		m.mu.Unlock()
		if p.Closed() {
			return nil
		}
		return fmt.Errorf("hide %s: %w", p.ID, stack.ErrNotStacked)
	}

	delete(m.entries, p)
	e.surface.RemoveListener(e.listener)
	empty, err := m.registry.Remove(p)
	onClose := m.onClose
	m.mu.Unlock()

	e.shell.Close()
	if e.onClose != nil {
		e.onClose(p)
	}
	if onClose != nil {
		onClose(p)
	}

	if err != nil {
		return fmt.Errorf("hide %s: %w", p.ID, err)
	}

	m.logger.Debug("closed popup", "id", p.ID, "registry_empty", empty)
	return nil
}

// expired runs on the frame loop when a popup's hide timer completes.
func (m *Manager) expired(p *stack.Popup) {
	if err := m.Hide(p); err != nil {
		m.logger.Warn("failed to hide expired popup", "id", p.ID, "error", err)
	}
}

// HideAll closes every visible popup.
func (m *Manager) HideAll() {
	for _, p := range m.Popups() {
		if err := m.Hide(p); err != nil {
			m.logger.Debug("hide all", "id", p.ID, "error", err)
		}
	}
}

// OnSurfaceMoved re-anchors p after its surface moved or resized.
func (m *Manager) OnSurfaceMoved(p *stack.Popup, bounds model.Rect) error {
	m.mu.RLock()
	_, ok := m.entries[p]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("relayout %s: %w", p.ID, stack.ErrNotStacked)
	}

	m.registry.Relayout(p, bounds)
	return nil
}

// Shake wiggles p for duration. amplitude 4 is a little, 10 is a lot.
func (m *Manager) Shake(p *stack.Popup, duration time.Duration, amplitude int) error {
	if duration <= 0 || amplitude <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, model.ErrInvalidShake)
	}

	m.mu.RLock()
	_, ok := m.entries[p]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("shake %s: %w", p.ID, stack.ErrNotStacked)
	}

	m.animator.Shake(p, amplitude, duration, nil)
	return nil
}

// Click handles a click at (x, y) relative to the popup. The close button
// only closes the popup; anywhere else runs the action and then closes it.
func (m *Manager) Click(p *stack.Popup, x, y int) error {
	m.mu.RLock()
	e, ok := m.entries[p]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("click %s: %w", p.ID, stack.ErrNotStacked)
	}

	width, _ := p.Size()
	if !p.Notification.HideCloseButton && inCloseButton(width, x, y) {
		m.logger.Debug("close button clicked", "id", p.ID)
	} else if e.onAction != nil {
		e.onAction(p)
	}
	return m.Hide(p)
}

// Popups returns the visible popups ordered by stack.
func (m *Manager) Popups() []*stack.Popup {
	return m.registry.Popups()
}

// Snapshot returns the current layout of every stack.
func (m *Manager) Snapshot() []stack.StackSnapshot {
	return m.registry.Snapshot()
}

// renderFrame paints every visible popup after an animation frame.
func (m *Manager) renderFrame(time.Duration) {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	for _, e := range entries {
		paint(e.shell, e.popup.ID, m.logger)
	}
}

// UpdateConfig applies a reloaded configuration. Geometry changes snap
// visible popups to their new slots; the theme applies to new popups.
func (m *Manager) UpdateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	m.mu.Lock()
	old := m.config
	m.config = cfg
	m.mu.Unlock()

	m.registry.SetGeometry(cfg.StackGeometry())
	m.animator.SetFrameRate(cfg.Animation.FrameRate)
	if cfg.Theme.Name != old.Theme.Name {
		m.themes.Load(cfg.Theme.Name)
	}
	m.registerIcons(cfg.Icons)

	m.logger.Info("configuration updated",
		"width", cfg.Geometry.Width,
		"height", cfg.Geometry.Height,
		"theme", cfg.Theme.Name,
	)
	return nil
}

func (m *Manager) registerIcons(icons map[string]string) {
	for name, path := range icons {
		err := m.icons.RegisterFile(name, config.ExpandPath(path))
		switch {
		case err == nil:
		case errors.Is(err, theme.ErrImageRegistered):
			m.logger.Debug("icon already registered", "name", name)
		default:
			m.logger.Warn("failed to register icon", "name", name, "path", path, "error", err)
		}
	}
}

// Stop closes every popup and detaches from the animator.
func (m *Manager) Stop() {
	m.animator.RemoveFrameHandler(m.frameID)
	m.HideAll()
	m.logger.Debug("notification manager stopped")
}
