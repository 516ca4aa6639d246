package notify

import (
	"image"
	"log/slog"

	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/theme"
)

// Close button hit area, measured from the top-right corner of a popup.
const (
	CloseButtonWidth  = 20
	CloseButtonHeight = 20
)

// Content is everything a shell needs to draw the static part of a popup.
type Content struct {
	Title     string
	Text      string // Already truncated to fit
	Icon      image.Image
	Theme     *theme.Theme
	ShowClose bool
	Width     int
	Height    int
}

// Shell is the drawing backend of one popup. Move and SetProgress are
// called from the animation loop; Paint is called once per frame.
type Shell interface {
	stack.Sink

	// Paint draws the cached background, the close button and the
	// progress bar.
	Paint() error
	// Regenerate rebuilds the cached background from the content.
	Regenerate() error
	// Close releases the shell. It is called once.
	Close()
}

// ShellFactory creates the shell for a popup.
type ShellFactory func(p *stack.Popup, content Content) (Shell, error)

// paint draws sh, rebuilding its cache and retrying once on failure. A
// second failure drops the frame.
func paint(sh Shell, id string, logger *slog.Logger) {
	err := sh.Paint()
	if err == nil {
		return
	}

	logger.Debug("paint failed, regenerating", "id", id, "error", err)
	if rerr := sh.Regenerate(); rerr != nil {
		logger.Debug("regenerate failed, dropping frame", "id", id, "error", rerr)
		return
	}
	if err := sh.Paint(); err != nil {
		logger.Debug("paint retry failed, dropping frame", "id", id, "error", err)
	}
}

// inCloseButton reports whether (x, y), relative to the popup, is on the
// close button.
func inCloseButton(width, x, y int) bool {
	return x >= width-CloseButtonWidth && y <= CloseButtonHeight
}
