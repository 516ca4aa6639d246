package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/adapter/input"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/theme"
)

var simNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSimulator(t *testing.T, cfg *config.Config, script ...input.Request) *Simulator {
	t.Helper()

	sim, err := NewSimulator(cfg, Options{
		Themes: theme.NewLoader(t.TempDir(), nil),
		Script: script,
		Now:    func() time.Time { return simNow },
	})
	require.NoError(t, err)
	sim.Canvas().SetScale(16, 30)
	t.Cleanup(sim.Close)
	return sim
}

func duration(d time.Duration) *config.Duration {
	cd := config.Duration(d)
	return &cd
}

func eventTexts(sim *Simulator) []string {
	var out []string
	for _, e := range sim.Events(0) {
		out = append(out, e.Text)
	}
	return out
}

func TestSimulator_Layout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Simulator.Screens = []config.ScreenConfig{
		{Width: 1920, Height: 1080},
		{Width: 1280, Height: 720},
	}
	sim := newTestSimulator(t, cfg)

	require.Len(t, sim.Screens(), 2)
	assert.Equal(t, model.Rect{X: 1920, Width: 1280, Height: 720}, sim.Screens()[1].Bounds())
	assert.Equal(t, model.Rect{Width: 3200, Height: 1080}, sim.Desktop())
	assert.Equal(t, model.Rect{X: 480, Y: 270, Width: 960, Height: 540}, sim.Window().Bounds())
}

func TestSimulator_ShowPaintsFrame(t *testing.T) {
	sim := newTestSimulator(t, nil)

	p, err := sim.Show(input.Request{Title: "Hello"}, false)
	require.NoError(t, err)
	assert.Equal(t, "screen:0:bottom-right", p.Key().String())

	sim.Tick(16 * time.Millisecond)
	frames := sim.Canvas().Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, p.ID, frames[0].ID)
	assert.Equal(t, 1600/16, frames[0].Col)
	assert.Equal(t, 973/30, frames[0].Row)

	assert.Equal(t, []string{`showed "Hello" at screen:0:bottom-right`}, eventTexts(sim))
}

func TestSimulator_ShowRejectsBadRequest(t *testing.T) {
	sim := newTestSimulator(t, nil)

	_, err := sim.Show(input.Request{Title: "x", Position: "middle"}, false)
	assert.ErrorIs(t, err, model.ErrInvalidPosition)
	assert.Empty(t, sim.Manager().Popups())
}

func TestSimulator_Script(t *testing.T) {
	sim := newTestSimulator(t, nil,
		input.Request{Title: "first"},
		input.Request{Title: "second", After: config.Duration(time.Second)},
	)
	assert.Equal(t, 2, sim.Pending())

	sim.Tick(0)
	assert.Equal(t, 1, sim.Pending())
	assert.Len(t, sim.Manager().Popups(), 1)

	sim.Tick(999 * time.Millisecond)
	assert.Equal(t, 1, sim.Pending())

	sim.Tick(time.Millisecond)
	assert.Equal(t, 0, sim.Pending())
	assert.Len(t, sim.Manager().Popups(), 2)
}

func TestSimulator_ScriptErrorIsLogged(t *testing.T) {
	sim := newTestSimulator(t, nil, input.Request{Title: "x", Shake: &input.ShakeEntry{}})
	cfg := config.DefaultConfig()
	cfg.Shake.Amplitude = 0
	require.NoError(t, sim.Manager().UpdateConfig(cfg))

	sim.Tick(0)
	assert.Empty(t, sim.Manager().Popups())
	events := eventTexts(sim)
	require.Len(t, events, 1)
	assert.True(t, strings.HasPrefix(events[0], "script entry failed"))
}

func TestSimulator_AttachedFollowsWindow(t *testing.T) {
	sim := newTestSimulator(t, nil)

	p, err := sim.Show(input.Request{Title: "attached", Position: "top-left"}, true)
	require.NoError(t, err)
	assert.Equal(t, "window:editor:top-left", p.Key().String())

	x0, y0 := p.Location()
	sim.MoveWindow(40, -40)
	x1, y1 := p.Location()
	assert.Equal(t, x0+40, x1)
	assert.Equal(t, y0-40, y1)

	// Clamped to the desktop
	sim.MoveWindow(10000, 0)
	assert.Equal(t, 1920-960, sim.Window().Bounds().X)
}

func TestSimulator_IconifiedWindowFreezesLayout(t *testing.T) {
	sim := newTestSimulator(t, nil)

	p, err := sim.Show(input.Request{Title: "attached"}, true)
	require.NoError(t, err)
	x0, _ := p.Location()

	assert.True(t, sim.ToggleIconified())
	assert.True(t, sim.WindowIconified())
	sim.MoveWindow(-80, 0)
	x1, _ := p.Location()
	assert.Equal(t, x0, x1)

	assert.False(t, sim.ToggleIconified())
	x2, _ := p.Location()
	assert.Equal(t, x0-80, x2)

	events := eventTexts(sim)
	assert.Contains(t, events, "window minimized")
	assert.Contains(t, events, "window restored")
}

func TestSimulator_RotateScreen(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Simulator.Screens = []config.ScreenConfig{
		{Width: 1920, Height: 1080},
		{Width: 1280, Height: 720},
	}
	sim := newTestSimulator(t, cfg)
	assert.Equal(t, 0, sim.WindowScreen().Number)

	left, err := sim.Show(input.Request{Title: "left", Position: "bottom-right"}, false)
	require.NoError(t, err)
	second := 1
	right, err := sim.Show(input.Request{Title: "right", Screen: &second, Position: "top-left"}, false)
	require.NoError(t, err)

	rotated := sim.RotateScreen(0)
	assert.Equal(t, 0, rotated.Number)
	assert.Equal(t, model.Rect{Width: 1080, Height: 1920}, sim.Screens()[0].Bounds())
	assert.Equal(t, model.Rect{X: 1080, Width: 1280, Height: 720}, sim.Screens()[1].Bounds())
	assert.Equal(t, model.Rect{Width: 2360, Height: 1920}, sim.Desktop())

	// Desktop popups follow their screen without animating.
	x, y := left.Location()
	assert.Equal(t, 1080-300-20, x)
	assert.Equal(t, 1920-87-20, y)
	x, y = right.Location()
	assert.Equal(t, 1080+20, x)
	assert.Equal(t, 20, y)

	// The window stays on screen 0; moving it right lands on screen 1.
	assert.Equal(t, 0, sim.WindowScreen().Number)
	sim.MoveWindow(10000, 0)
	assert.Equal(t, 2360-960, sim.Window().Bounds().X)
	assert.Equal(t, 1, sim.WindowScreen().Number)

	assert.Contains(t, eventTexts(sim), "screen 0 is now 1080x1920")
}

func TestSimulator_AutoHide(t *testing.T) {
	sim := newTestSimulator(t, nil)

	_, err := sim.Show(input.Request{Title: "brief", HideAfter: duration(time.Second)}, false)
	require.NoError(t, err)
	sim.Tick(500 * time.Millisecond)
	assert.Equal(t, 1, sim.Canvas().Len())

	sim.Tick(500 * time.Millisecond)
	assert.Empty(t, sim.Manager().Popups())
	assert.Equal(t, 0, sim.Canvas().Len())
	assert.Contains(t, eventTexts(sim), `closed "brief"`)
}

func TestSimulator_EventsCapped(t *testing.T) {
	sim := newTestSimulator(t, nil)

	for i := 0; i < maxEvents+5; i++ {
		sim.record("event %d", i)
	}
	events := sim.Events(0)
	require.Len(t, events, maxEvents)
	assert.Equal(t, "event 5", events[0].Text)
	assert.Equal(t, fmt.Sprintf("event %d", maxEvents+4), sim.Events(1)[0].Text)
	assert.Equal(t, simNow, events[0].At)
}
