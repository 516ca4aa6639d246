package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/model"
)

func TestScreen(t *testing.T) {
	s := NewScreen(1, model.Rect{X: 1920, Width: 1280, Height: 1024}, model.Insets{Bottom: 40})

	assert.Equal(t, "screen:1", s.ID())
	assert.True(t, s.Desktop())
	assert.Equal(t, 40, s.Insets().Bottom)

	var got model.Rect
	s.AddListener(func(b model.Rect) { got = b })
	s.SetGeometry(model.Rect{Width: 800, Height: 600}, model.Insets{})
	assert.Equal(t, 800, got.Width)
}

func TestWindow_Listeners(t *testing.T) {
	w := NewWindow("editor", model.Rect{Width: 800, Height: 600})
	assert.Equal(t, "window:editor", w.ID())
	assert.False(t, w.Desktop())
	assert.Equal(t, model.Insets{}, w.Insets())

	calls := 0
	id := w.AddListener(func(model.Rect) { calls++ })
	assert.Equal(t, 1, w.ListenerCount())

	w.SetBounds(model.Rect{Width: 1024, Height: 768})
	assert.Equal(t, 1, calls)

	w.RemoveListener(id)
	w.SetBounds(model.Rect{Width: 640, Height: 480})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, w.ListenerCount())
}

func TestWindow_Iconified(t *testing.T) {
	w := NewWindow("editor", model.Rect{Width: 800, Height: 600})

	calls := 0
	w.AddListener(func(model.Rect) { calls++ })

	w.SetIconified(true)
	w.SetBounds(model.Rect{Width: 1024, Height: 768})
	assert.Equal(t, 0, calls, "no relayout while minimized")

	w.SetIconified(false)
	assert.Equal(t, 1, calls, "restoring triggers relayout")

	w.SetIconified(false)
	assert.Equal(t, 1, calls)
}

func TestListenerCanUnregisterItself(t *testing.T) {
	w := NewWindow("editor", model.Rect{Width: 800, Height: 600})

	var id int
	id = w.AddListener(func(model.Rect) { w.RemoveListener(id) })
	w.SetBounds(model.Rect{Width: 10, Height: 10})
	assert.Equal(t, 0, w.ListenerCount())
}

func TestScreenSet(t *testing.T) {
	_, err := NewScreenSet()
	assert.ErrorIs(t, err, ErrNoScreens)

	left := NewScreen(0, model.Rect{Width: 1920, Height: 1080}, model.Insets{})
	right := NewScreen(1, model.Rect{X: 1920, Width: 1920, Height: 1080}, model.Insets{})
	set, err := NewScreenSet(left, right)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Same(t, left, set.Resolve(model.ScreenAuto))
	assert.Same(t, left, set.Resolve(0))
	assert.Same(t, right, set.Resolve(1))
	assert.Same(t, right, set.Resolve(7))

	assert.Same(t, right, set.At(2000, 10))
	assert.Same(t, left, set.At(-5, -5))
}
