package tui

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toaststack/internal/notify"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/theme"
)

// ErrStaleBitmap is returned by Paint when the cell scale changed since the
// popup body was last rendered.
var ErrStaleBitmap = errors.New("popup body rendered at an old scale")

// ErrShellClosed is returned by Paint after Close.
var ErrShellClosed = errors.New("shell closed")

// Frame is what one popup looked like at its last successful paint, in
// terminal cells.
type Frame struct {
	ID       string
	Col, Row int
	Lines    []string
	Theme    *theme.Theme
}

// Canvas maps desktop pixels to terminal cells and collects the frames of
// every open shell.
type Canvas struct {
	mu     sync.RWMutex
	cellW  int
	cellH  int
	gen    int
	shells map[string]*Shell
}

// NewCanvas creates a canvas where one cell covers cellW x cellH pixels.
func NewCanvas(cellW, cellH int) *Canvas {
	return &Canvas{
		cellW:  max(cellW, 1),
		cellH:  max(cellH, 1),
		shells: make(map[string]*Shell),
	}
}

// SetScale changes the pixel size of a cell. Shells notice on their next
// paint and re-render.
func (c *Canvas) SetScale(cellW, cellH int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cellW, cellH = max(cellW, 1), max(cellH, 1)
	if cellW == c.cellW && cellH == c.cellH {
		return
	}
	c.cellW, c.cellH = cellW, cellH
	c.gen++
}

// Scale returns the pixel size of a cell.
func (c *Canvas) Scale() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cellW, c.cellH
}

func (c *Canvas) scale() (int, int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cellW, c.cellH, c.gen
}

// NewShell is a notify.ShellFactory drawing into the canvas.
func (c *Canvas) NewShell(p *stack.Popup, content notify.Content) (notify.Shell, error) {
	sh := &Shell{id: p.ID, canvas: c, content: content, gen: -1}

	c.mu.Lock()
	c.shells[p.ID] = sh
	c.mu.Unlock()
	return sh, nil
}

// Frames returns the painted frames ordered by row, then column.
func (c *Canvas) Frames() []Frame {
	c.mu.RLock()
	shells := make([]*Shell, 0, len(c.shells))
	for _, sh := range c.shells {
		shells = append(shells, sh)
	}
	c.mu.RUnlock()

	frames := make([]Frame, 0, len(shells))
	for _, sh := range shells {
		if f, ok := sh.Frame(); ok {
			frames = append(frames, f)
		}
	}
	sort.Slice(frames, func(i, j int) bool {
		if frames[i].Row != frames[j].Row {
			return frames[i].Row < frames[j].Row
		}
		if frames[i].Col != frames[j].Col {
			return frames[i].Col < frames[j].Col
		}
		return frames[i].ID < frames[j].ID
	})
	return frames
}

// Shell returns the open shell of a popup.
func (c *Canvas) Shell(id string) (*Shell, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sh, ok := c.shells[id]
	return sh, ok
}

// Len returns the number of open shells.
func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shells)
}

func (c *Canvas) remove(id string) {
	c.mu.Lock()
	delete(c.shells, id)
	c.mu.Unlock()
}

// Shell draws one popup as a box of terminal cells.
type Shell struct {
	id      string
	canvas  *Canvas
	content notify.Content

	mu       sync.Mutex
	x, y     int
	progress int
	gen      int
	body     []string // cached box without the bottom border
	cols     int
	frame    *Frame
	closed   bool
}

// Move implements stack.Sink.
func (s *Shell) Move(x, y int) {
	s.mu.Lock()
	s.x, s.y = x, y
	s.mu.Unlock()
}

// SetProgress implements stack.Sink.
func (s *Shell) SetProgress(progress int) {
	s.mu.Lock()
	s.progress = progress
	s.mu.Unlock()
}

// Regenerate renders the title, close button and wrapped text at the
// current scale.
func (s *Shell) Regenerate() error {
	cellW, cellH, gen := s.canvas.scale()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShellClosed
	}

	cols := max(s.content.Width/cellW, 6)
	rows := max(s.content.Height/cellH, 3)
	inner := cols - 2

	closeMark := ""
	if s.content.ShowClose {
		closeMark = "x"
	}
	title := fit(s.content.Title, inner-len(closeMark)-1)
	top := "╭" + title + strings.Repeat("─", inner-runeLen(title)-len(closeMark)) + closeMark + "╮"

	body := []string{top}
	if rows > 2 {
		wrapped := strings.Split(lipgloss.NewStyle().Width(inner).Render(s.content.Text), "\n")
		for i := 0; i < rows-2; i++ {
			line := ""
			if i < len(wrapped) {
				line = wrapped[i]
			}
			body = append(body, "│"+pad(fit(line, inner), inner)+"│")
		}
	}

	s.body = body
	s.cols = cols
	s.gen = gen
	return nil
}

// Paint composes the cached body with the progress bar.
func (s *Shell) Paint() error {
	cellW, cellH, gen := s.canvas.scale()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShellClosed
	}
	if s.gen != gen || s.body == nil {
		return ErrStaleBitmap
	}

	inner := s.cols - 2
	filled := 0
	if s.content.Width > 0 {
		filled = min(max(s.progress, 0)*inner/s.content.Width, inner)
	}
	bottom := "╰" + strings.Repeat("━", filled) + strings.Repeat("─", inner-filled) + "╯"

	lines := make([]string, 0, len(s.body)+1)
	lines = append(lines, s.body...)
	lines = append(lines, bottom)

	s.frame = &Frame{
		ID:    s.id,
		Col:   floorDiv(s.x, cellW),
		Row:   floorDiv(s.y, cellH),
		Lines: lines,
		Theme: s.content.Theme,
	}
	return nil
}

// Close implements notify.Shell.
func (s *Shell) Close() {
	s.mu.Lock()
	s.closed = true
	s.frame = nil
	s.mu.Unlock()
	s.canvas.remove(s.id)
}

// Frame returns the last painted frame.
func (s *Shell) Frame() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return Frame{}, false
	}
	return *s.frame, true
}

// Content returns what the shell was created with.
func (s *Shell) Content() notify.Content {
	return s.content
}

func fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(strings.TrimRight(s, " "))
	if len(r) <= n {
		return string(r)
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	if l := runeLen(s); l < n {
		return s + strings.Repeat(" ", n-l)
	}
	return s
}

func runeLen(s string) int {
	return len([]rune(s))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
