package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/notify"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/surface"
)

func newTestShell(t *testing.T, c *Canvas, content notify.Content) *Shell {
	t.Helper()

	n, err := model.NewNotification()
	require.NoError(t, err)
	screen := surface.NewScreen(0, model.Rect{Width: 1920, Height: 1080}, model.Insets{})
	p := stack.NewPopup(n, screen, stack.DefaultGeometry())

	sh, err := c.NewShell(p, content)
	require.NoError(t, err)
	return sh.(*Shell)
}

func TestShell_PaintNeedsRegenerate(t *testing.T) {
	c := NewCanvas(20, 30)
	sh := newTestShell(t, c, notify.Content{Title: "Hello", Text: "World", ShowClose: true, Width: 300, Height: 87})

	assert.ErrorIs(t, sh.Paint(), ErrStaleBitmap)
	_, ok := sh.Frame()
	assert.False(t, ok)

	require.NoError(t, sh.Regenerate())
	require.NoError(t, sh.Paint())

	f, ok := sh.Frame()
	require.True(t, ok)
	assert.Equal(t, []string{
		"╭Hello───────x╮",
		"│World        │",
		"╰─────────────╯",
	}, f.Lines)
}

func TestShell_MoveAndProgress(t *testing.T) {
	c := NewCanvas(20, 30)
	sh := newTestShell(t, c, notify.Content{Title: "Hello", Width: 300, Height: 87})
	require.NoError(t, sh.Regenerate())

	sh.Move(1600, 973)
	sh.SetProgress(150)
	require.NoError(t, sh.Paint())

	f, ok := sh.Frame()
	require.True(t, ok)
	assert.Equal(t, 80, f.Col)
	assert.Equal(t, 32, f.Row)
	assert.Equal(t, "╭Hello────────╮", f.Lines[0])
	assert.Equal(t, "╰━━━━━━───────╯", f.Lines[2])

	sh.SetProgress(1000)
	require.NoError(t, sh.Paint())
	f, _ = sh.Frame()
	assert.Equal(t, "╰━━━━━━━━━━━━━╯", f.Lines[2])
}

func TestShell_NegativeCoordinates(t *testing.T) {
	c := NewCanvas(20, 30)
	sh := newTestShell(t, c, notify.Content{Title: "x", Width: 300, Height: 87})
	require.NoError(t, sh.Regenerate())

	sh.Move(-10, -31)
	require.NoError(t, sh.Paint())
	f, _ := sh.Frame()
	assert.Equal(t, -1, f.Col)
	assert.Equal(t, -2, f.Row)
}

func TestShell_ScaleChangeNeedsRegenerate(t *testing.T) {
	c := NewCanvas(20, 30)
	sh := newTestShell(t, c, notify.Content{Title: "Hello", Width: 300, Height: 87})
	require.NoError(t, sh.Regenerate())
	require.NoError(t, sh.Paint())

	c.SetScale(20, 30)
	assert.NoError(t, sh.Paint(), "same scale keeps the cache")

	c.SetScale(10, 10)
	assert.ErrorIs(t, sh.Paint(), ErrStaleBitmap)

	require.NoError(t, sh.Regenerate())
	require.NoError(t, sh.Paint())
	f, _ := sh.Frame()
	assert.Len(t, f.Lines, 8)
	assert.Len(t, []rune(f.Lines[0]), 30)
}

func TestShell_LongTitleTruncated(t *testing.T) {
	c := NewCanvas(20, 30)
	sh := newTestShell(t, c, notify.Content{Title: "A very long title indeed", ShowClose: true, Width: 300, Height: 87})
	require.NoError(t, sh.Regenerate())
	require.NoError(t, sh.Paint())

	f, _ := sh.Frame()
	assert.Equal(t, "╭A very lon…─x╮", f.Lines[0])
}

func TestShell_Close(t *testing.T) {
	c := NewCanvas(20, 30)
	sh := newTestShell(t, c, notify.Content{Title: "Hello", Width: 300, Height: 87})
	require.NoError(t, sh.Regenerate())
	require.NoError(t, sh.Paint())
	assert.Equal(t, 1, c.Len())
	assert.Len(t, c.Frames(), 1)

	sh.Close()
	assert.Equal(t, 0, c.Len())
	assert.ErrorIs(t, sh.Paint(), ErrShellClosed)
	assert.ErrorIs(t, sh.Regenerate(), ErrShellClosed)
	assert.Empty(t, c.Frames())
}

func TestCanvas_FramesOrdered(t *testing.T) {
	c := NewCanvas(10, 10)
	content := notify.Content{Title: "t", Width: 100, Height: 50}

	a := newTestShell(t, c, content)
	b := newTestShell(t, c, content)
	for _, sh := range []*Shell{a, b} {
		require.NoError(t, sh.Regenerate())
	}
	a.Move(500, 300)
	b.Move(100, 100)
	require.NoError(t, a.Paint())
	require.NoError(t, b.Paint())

	frames := c.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, b.id, frames[0].ID)
	assert.Equal(t, a.id, frames[1].ID)
}

func TestGrid(t *testing.T) {
	g := newGrid(12, 4)
	g.box(cellRect{0, 0, 11, 3}, singleBox, "screen:0")
	g.text(10, 1, []rune("clipped"))

	assert.Equal(t,
		"┌─screen:0─┐\n"+
			"│         cl\n"+
			"│          │\n"+
			"└──────────┘",
		g.String())
}
