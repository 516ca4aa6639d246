package notify

import (
	"errors"
	"sync"

	"github.com/jmylchreest/toaststack/internal/stack"
)

// ErrPaintFailed is returned by a RecordingShell told to fail.
var ErrPaintFailed = errors.New("paint failed")

// Point is a recorded popup location.
type Point struct {
	X, Y int
}

// RecordingShell is a Shell that records every call instead of drawing.
// It is used by headless callers and tests.
type RecordingShell struct {
	mu          sync.Mutex
	content     Content
	moves       []Point
	progress    []int
	paints      int
	regenerates int
	closed      int
	failPaints  int
}

// NewRecordingShell is a ShellFactory producing RecordingShells.
func NewRecordingShell(_ *stack.Popup, content Content) (Shell, error) {
	return &RecordingShell{content: content}, nil
}

// FailNextPaints makes the next n Paint calls fail.
func (s *RecordingShell) FailNextPaints(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPaints = n
}

// Move implements stack.Sink.
func (s *RecordingShell) Move(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves = append(s.moves, Point{x, y})
}

// SetProgress implements stack.Sink.
func (s *RecordingShell) SetProgress(progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, progress)
}

// Paint implements Shell.
func (s *RecordingShell) Paint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPaints > 0 {
		s.failPaints--
		return ErrPaintFailed
	}
	s.paints++
	return nil
}

// Regenerate implements Shell.
func (s *RecordingShell) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regenerates++
	return nil
}

// Close implements Shell.
func (s *RecordingShell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

// Content returns the content the shell was created with.
func (s *RecordingShell) Content() Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Moves returns every recorded location.
func (s *RecordingShell) Moves() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Point(nil), s.moves...)
}

// LastMove returns the most recent location.
func (s *RecordingShell) LastMove() (Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.moves) == 0 {
		return Point{}, false
	}
	return s.moves[len(s.moves)-1], true
}

// Progress returns every recorded progress value.
func (s *RecordingShell) Progress() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.progress...)
}

// Paints returns the number of successful paints.
func (s *RecordingShell) Paints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paints
}

// Regenerates returns the number of cache rebuilds.
func (s *RecordingShell) Regenerates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regenerates
}

// Closed returns how many times Close was called.
func (s *RecordingShell) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
