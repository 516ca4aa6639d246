package notify

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/surface"
	"github.com/jmylchreest/toaststack/internal/theme"
)

// Builder assembles a notification fluently:
//
//	m.Create().
//		Title("Title Text").
//		Text("Hello World!").
//		DarkStyle().
//		ShowWarning()
//
// Errors are collected and returned by Show.
type Builder struct {
	m    *Manager
	d    Descriptor
	errs []error
}

// Create starts a notification with the manager's configured defaults.
func (m *Manager) Create() *Builder {
	b := &Builder{m: m}

	n, err := model.NewNotification()
	if err != nil {
		b.errs = append(b.errs, err)
		n = &model.Notification{Title: model.DefaultTitle}
	}

	cfg := m.Config()
	n.Position = cfg.DefaultPositionValue()
	n.HideAfter = cfg.Defaults.HideAfter.Duration()
	n.Screen = cfg.Defaults.Screen
	n.Dark = cfg.Defaults.Dark
	n.HideCloseButton = cfg.Defaults.HideCloseButton

	b.d.Notification = n
	return b
}

// Title sets the title.
func (b *Builder) Title(title string) *Builder {
	b.d.Notification.Title = title
	return b
}

// Text sets the body text.
func (b *Builder) Text(text string) *Builder {
	b.d.Notification.Text = text
	return b
}

// Position sets the corner or edge of the surface the popup stacks at.
func (b *Builder) Position(pos model.Position) *Builder {
	b.d.Notification.Position = pos
	return b
}

// HideAfter closes the popup after d. Zero or less shows it until closed.
func (b *Builder) HideAfter(d time.Duration) *Builder {
	b.d.Notification.HideAfter = max(d, 0)
	return b
}

// DarkStyle uses the dark theme instead of the light one.
func (b *Builder) DarkStyle() *Builder {
	b.d.Notification.Dark = true
	return b
}

// Theme sets a theme that takes precedence over the defaults.
func (b *Builder) Theme(t *theme.Theme) *Builder {
	b.d.Theme = t
	return b
}

// HideCloseButton removes the close button.
func (b *Builder) HideCloseButton() *Builder {
	b.d.Notification.HideCloseButton = true
	return b
}

// Screen selects the screen. Numbers below zero select the first screen
// and numbers past the last screen select the last one. Ignored when the
// popup is attached to a window.
func (b *Builder) Screen(number int) *Builder {
	b.d.Notification.Screen = number
	return b
}

// Attach shows the popup inside an application window.
func (b *Builder) Attach(w *surface.Window) *Builder {
	if w == nil {
		b.errs = append(b.errs, errors.New("attach: window is nil"))
		return b
	}
	b.d.Window = w
	return b
}

// Shake wiggles the popup for d once it is shown. amplitude 4 is a
// little, 10 is a lot.
func (b *Builder) Shake(d time.Duration, amplitude int) *Builder {
	b.d.Notification.Shake = &model.ShakeRequest{Duration: d, Amplitude: amplitude}
	return b
}

// Icon uses a named icon from the icon cache.
func (b *Builder) Icon(name string) *Builder {
	b.d.Notification.Icon = name
	return b
}

// Image uses img as the icon. It is scaled to the icon size.
func (b *Builder) Image(img image.Image) *Builder {
	if img == nil {
		b.errs = append(b.errs, errors.New("image is nil"))
		return b
	}
	b.d.Image = img
	return b
}

// OnAction runs fn when the popup body is clicked. The popup closes
// afterwards either way.
func (b *Builder) OnAction(fn func(p *stack.Popup)) *Builder {
	b.d.OnAction = fn
	return b
}

// OnClose runs fn once when the popup closes.
func (b *Builder) OnClose(fn func(p *stack.Popup)) *Builder {
	b.d.OnClose = fn
	return b
}

// Descriptor returns the request built so far.
func (b *Builder) Descriptor() (Descriptor, error) {
	if len(b.errs) > 0 {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, errors.Join(b.errs...))
	}
	return b.d, nil
}

// Show shows the notification.
func (b *Builder) Show() (*stack.Popup, error) {
	d, err := b.Descriptor()
	if err != nil {
		return nil, err
	}
	return b.m.Show(d)
}

// ShowWarning shows the notification with the built-in warning icon.
func (b *Builder) ShowWarning() (*stack.Popup, error) {
	return b.Icon(model.IconWarning).Show()
}

// ShowInformation shows the notification with the built-in information icon.
func (b *Builder) ShowInformation() (*stack.Popup, error) {
	return b.Icon(model.IconInformation).Show()
}

// ShowError shows the notification with the built-in error icon.
func (b *Builder) ShowError() (*stack.Popup, error) {
	return b.Icon(model.IconError).Show()
}

// ShowConfirm shows the notification with the built-in confirm icon.
func (b *Builder) ShowConfirm() (*stack.Popup, error) {
	return b.Icon(model.IconConfirm).Show()
}
