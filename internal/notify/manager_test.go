package notify

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/surface"
	"github.com/jmylchreest/toaststack/internal/theme"
)

type testEnv struct {
	m        *Manager
	animator *animation.Animator
	screens  []*surface.Screen

	mu     sync.Mutex
	shells map[string]*RecordingShell
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	env := &testEnv{
		animator: animation.NewAnimator(nil, animation.WithManualTicks()),
		screens: []*surface.Screen{
			surface.NewScreen(0, model.Rect{Width: 1920, Height: 1080}, model.Insets{}),
			surface.NewScreen(1, model.Rect{X: 1920, Width: 1280, Height: 720}, model.Insets{}),
		},
		shells: make(map[string]*RecordingShell),
	}
	set, err := surface.NewScreenSet(env.screens...)
	require.NoError(t, err)

	m, err := NewManager(cfg, Options{
		Animator: env.animator,
		Screens:  set,
		Themes:   theme.NewLoader(t.TempDir(), nil),
		Shell: func(p *stack.Popup, c Content) (Shell, error) {
			sh := &RecordingShell{content: c}
			env.mu.Lock()
			env.shells[p.ID] = sh
			env.mu.Unlock()
			return sh, nil
		},
	})
	require.NoError(t, err)
	env.m = m
	return env
}

func (e *testEnv) shell(p *stack.Popup) *RecordingShell {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shells[p.ID]
}

func y(p *stack.Popup) int {
	_, py := p.Location()
	return py
}

func TestManager_StackAndReflow(t *testing.T) {
	env := newTestEnv(t, nil)

	var popups []*stack.Popup
	for _, title := range []string{"one", "two", "three"} {
		p, err := env.m.Create().Title(title).Position(model.PositionBottomRight).Screen(0).Show()
		require.NoError(t, err)
		popups = append(popups, p)
	}

	assert.Equal(t, 973, y(popups[0]))
	assert.Equal(t, 876, y(popups[1]))
	assert.Equal(t, 779, y(popups[2]))

	var closed []string
	env.m.SetCloseCallback(func(p *stack.Popup) { closed = append(closed, p.ID) })

	require.NoError(t, env.m.Hide(popups[1]))
	assert.Equal(t, []string{popups[1].ID}, closed)
	assert.Equal(t, 1, env.shell(popups[1]).Closed())
	assert.Equal(t, 1, popups[2].Index())

	env.animator.Update(time.Second)
	assert.Equal(t, 876, y(popups[2]))
	assert.Equal(t, 973, y(popups[0]))

	last, ok := env.shell(popups[2]).LastMove()
	require.True(t, ok)
	assert.Equal(t, Point{1600, 876}, last)
	for _, mv := range env.shell(popups[0]).Moves() {
		assert.Equal(t, Point{1600, 973}, mv, "first popup never moves")
	}
}

func TestManager_HideIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)

	closes := 0
	p, err := env.m.Create().OnClose(func(*stack.Popup) { closes++ }).Show()
	require.NoError(t, err)

	require.NoError(t, env.m.Hide(p))
	require.NoError(t, env.m.Hide(p))
	assert.Equal(t, 1, closes)
	assert.Equal(t, 1, env.shell(p).Closed())
	assert.True(t, env.m.Registry().Empty())
}

func TestManager_HideUnknown(t *testing.T) {
	env := newTestEnv(t, nil)

	n, err := model.NewNotification()
	require.NoError(t, err)
	stranger := stack.NewPopup(n, env.screens[0], stack.DefaultGeometry())

	assert.ErrorIs(t, env.m.Hide(stranger), stack.ErrNotStacked)
	assert.ErrorIs(t, env.m.OnSurfaceMoved(stranger, model.Rect{}), stack.ErrNotStacked)
	assert.ErrorIs(t, env.m.Click(stranger, 0, 0), stack.ErrNotStacked)
	assert.ErrorIs(t, env.m.Shake(stranger, time.Second, 4), stack.ErrNotStacked)
}

func TestManager_AutoHide(t *testing.T) {
	env := newTestEnv(t, nil)

	closes := 0
	p, err := env.m.Create().
		HideAfter(2 * time.Second).
		OnClose(func(*stack.Popup) { closes++ }).
		Show()
	require.NoError(t, err)

	env.animator.Update(time.Second)
	assert.Equal(t, 150, p.Progress())
	assert.True(t, p.Visible())

	env.animator.Update(time.Second)
	assert.False(t, p.Visible())
	assert.Equal(t, 1, closes)
	assert.True(t, env.m.Registry().Empty())
	assert.Contains(t, env.shell(p).Progress(), 300)

	env.animator.Update(time.Second)
	assert.Equal(t, 1, closes)
}

func TestManager_ScreenClamping(t *testing.T) {
	env := newTestEnv(t, nil)

	high, err := env.m.Create().Screen(7).Show()
	require.NoError(t, err)
	assert.Equal(t, "screen:1", high.Key().Surface)
	x, _ := high.Location()
	assert.Equal(t, 1920+1280-300-20, x)

	low, err := env.m.Create().Screen(-5).Show()
	require.NoError(t, err)
	assert.Equal(t, "screen:0", low.Key().Surface)

	auto, err := env.m.Create().Screen(model.ScreenAuto).Show()
	require.NoError(t, err)
	assert.Equal(t, "screen:0", auto.Key().Surface)
}

func TestManager_DefaultScreenFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Defaults.Screen = 1
	env := newTestEnv(t, cfg)

	p, err := env.m.Create().Show()
	require.NoError(t, err)
	assert.Equal(t, "screen:1", p.Key().Surface)
}

func TestManager_AttachedWindow(t *testing.T) {
	env := newTestEnv(t, nil)
	win := surface.NewWindow("editor", model.Rect{X: 50, Y: 50, Width: 800, Height: 600})

	first, err := env.m.Create().Attach(win).Position(model.PositionTopLeft).Show()
	require.NoError(t, err)
	second, err := env.m.Create().Attach(win).Position(model.PositionTopLeft).Show()
	require.NoError(t, err)

	assert.Equal(t, "window:editor", first.Key().Surface)
	assert.Equal(t, 2, win.ListenerCount())

	// Attached popups use window-relative coordinates.
	x, py := first.Location()
	assert.Equal(t, 20, x)
	assert.Equal(t, 20, py)
	assert.Equal(t, 20+97, y(second))

	win.SetBounds(model.Rect{X: 0, Y: 0, Width: 1000, Height: 700})
	x, _ = second.Location()
	assert.Equal(t, 20, x)

	// Bottom anchored popups follow a resize without animating.
	bottom, err := env.m.Create().Attach(win).Position(model.PositionBottomRight).Show()
	require.NoError(t, err)
	win.SetBounds(model.Rect{Width: 900, Height: 500})
	bx, by := bottom.Location()
	assert.Equal(t, 900-300-20, bx)
	assert.Equal(t, 500-87-20-20, by)
	assert.False(t, env.animator.Active(bottom, animation.ChannelMove))

	require.NoError(t, env.m.Hide(first))
	require.NoError(t, env.m.Hide(second))
	require.NoError(t, env.m.Hide(bottom))
	assert.Equal(t, 0, win.ListenerCount())
}

func TestManager_ScreenGeometryChange(t *testing.T) {
	env := newTestEnv(t, nil)
	screen := env.screens[0]

	first, err := env.m.Create().Position(model.PositionBottomRight).Show()
	require.NoError(t, err)
	second, err := env.m.Create().Position(model.PositionBottomRight).Show()
	require.NoError(t, err)
	assert.Equal(t, 2, screen.ListenerCount())

	// Rotated to portrait.
	screen.SetGeometry(model.Rect{Width: 1080, Height: 1920}, model.Insets{})

	x, y0 := first.Location()
	assert.Equal(t, 1080-300-20, x)
	assert.Equal(t, 1920-87-20, y0)
	assert.Equal(t, 1920-87-20-97, y(second))
	assert.False(t, env.animator.Active(second, animation.ChannelMove))

	env.m.HideAll()
	assert.Equal(t, 0, screen.ListenerCount())
}

func TestManager_InvalidDescriptor(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.m.Show(Descriptor{})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = env.m.Create().Position(model.Position(99)).Show()
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	assert.ErrorIs(t, err, model.ErrInvalidPosition)

	_, err = env.m.Create().Attach(nil).Show()
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	_, err = env.m.Create().Shake(time.Second, 0).Show()
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	assert.True(t, env.m.Registry().Empty())
}

func TestManager_ShellFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	set, err := surface.NewScreenSet(env.screens...)
	require.NoError(t, err)

	boom := errors.New("no window")
	m, err := NewManager(nil, Options{
		Animator: env.animator,
		Screens:  set,
		Themes:   theme.NewLoader(t.TempDir(), nil),
		Shell: func(*stack.Popup, Content) (Shell, error) {
			return nil, boom
		},
	})
	require.NoError(t, err)

	_, err = m.Create().Show()
	var de *DisplayError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, boom)
	assert.True(t, m.Registry().Empty())
}

func TestManager_NewManagerNeedsScreens(t *testing.T) {
	_, err := NewManager(nil, Options{})
	assert.ErrorIs(t, err, surface.ErrNoScreens)
}

func TestManager_Click(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("close button only closes", func(t *testing.T) {
		actions := 0
		p, err := env.m.Create().OnAction(func(*stack.Popup) { actions++ }).Show()
		require.NoError(t, err)

		require.NoError(t, env.m.Click(p, 290, 5))
		assert.Zero(t, actions)
		assert.False(t, p.Visible())
	})

	t.Run("body runs action then closes", func(t *testing.T) {
		var order []string
		p, err := env.m.Create().
			OnAction(func(*stack.Popup) { order = append(order, "action") }).
			OnClose(func(*stack.Popup) { order = append(order, "close") }).
			Show()
		require.NoError(t, err)

		require.NoError(t, env.m.Click(p, 100, 50))
		assert.Equal(t, []string{"action", "close"}, order)
	})

	t.Run("no close button", func(t *testing.T) {
		actions := 0
		p, err := env.m.Create().HideCloseButton().OnAction(func(*stack.Popup) { actions++ }).Show()
		require.NoError(t, err)

		require.NoError(t, env.m.Click(p, 290, 5))
		assert.Equal(t, 1, actions)
		assert.False(t, env.shell(p).Content().ShowClose)
	})
}

func TestManager_RenderRetry(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.m.Create().HideAfter(time.Minute).Show()
	require.NoError(t, err)
	sh := env.shell(p)
	assert.Equal(t, 1, sh.Paints(), "painted when shown")

	sh.FailNextPaints(1)
	env.animator.Update(16 * time.Millisecond)
	assert.Equal(t, 1, sh.Regenerates())
	assert.Equal(t, 2, sh.Paints())

	// A second consecutive failure drops the frame.
	sh.FailNextPaints(2)
	env.animator.Update(16 * time.Millisecond)
	assert.Equal(t, 2, sh.Regenerates())
	assert.Equal(t, 2, sh.Paints())
	assert.True(t, p.Visible())

	env.animator.Update(16 * time.Millisecond)
	assert.Equal(t, 3, sh.Paints())
}

func TestManager_Shake(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.m.Create().Shake(500*time.Millisecond, 8).Show()
	require.NoError(t, err)
	assert.True(t, env.animator.Active(p, animation.ChannelShake))

	x0, y0 := 1600, 973
	env.animator.Update(50 * time.Millisecond)
	x1, y1 := p.Location()
	assert.NotEqual(t, [2]int{x0, y0}, [2]int{x1, y1})

	env.animator.Update(time.Second)
	x2, y2 := p.Location()
	assert.Equal(t, x0, x2)
	assert.Equal(t, y0, y2)

	assert.Error(t, env.m.Shake(p, 0, 4))
	require.NoError(t, env.m.Shake(p, time.Second, 4))
	require.NoError(t, env.m.Hide(p))
	assert.False(t, env.animator.Active(p, animation.ChannelShake))
}

func TestManager_ContentAndIcons(t *testing.T) {
	env := newTestEnv(t, nil)
	long := strings.Repeat("x", 200)

	withIcon, err := env.m.Create().Text(long).ShowWarning()
	require.NoError(t, err)
	c := env.shell(withIcon).Content()
	require.NotNil(t, c.Icon)
	assert.Equal(t, theme.IconSize, c.Icon.Bounds().Dx())
	assert.Len(t, c.Text, theme.TextLimitWithIcon+3)
	assert.Equal(t, theme.LightThemeName, c.Theme.Name)

	plain, err := env.m.Create().Text(long).DarkStyle().Show()
	require.NoError(t, err)
	c = env.shell(plain).Content()
	assert.Nil(t, c.Icon)
	assert.Len(t, c.Text, theme.TextLimit+3)
	assert.Equal(t, theme.DarkThemeName, c.Theme.Name)

	img := image.NewRGBA(image.Rect(0, 0, 96, 32))
	img.Set(1, 1, color.White)
	custom, err := env.m.Create().Image(img).Icon("missing").Show()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 48, 48), env.shell(custom).Content().Icon.Bounds())

	unknown, err := env.m.Create().Icon("missing").Show()
	require.NoError(t, err)
	assert.Nil(t, env.shell(unknown).Content().Icon)

	custom2 := theme.Dark()
	custom2.Name = "mine"
	themed, err := env.m.Create().Theme(custom2).Show()
	require.NoError(t, err)
	assert.Equal(t, "mine", env.shell(themed).Content().Theme.Name)
}

func TestManager_UpdateConfig(t *testing.T) {
	env := newTestEnv(t, nil)

	p, err := env.m.Create().Position(model.PositionTopRight).Show()
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Geometry.Width = 400
	cfg.Animation.FrameRate = 30
	require.NoError(t, env.m.UpdateConfig(cfg))

	x, _ := p.Location()
	assert.Equal(t, 1920-400-20, x)
	assert.Equal(t, 30, env.animator.FrameRate())
	assert.Same(t, cfg, env.m.Config())

	bad := config.DefaultConfig()
	bad.Geometry.Width = 1
	assert.Error(t, env.m.UpdateConfig(bad))
	assert.Same(t, cfg, env.m.Config())
}

func TestManager_ConcurrentShowHide(t *testing.T) {
	env := newTestEnv(t, nil)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				env.animator.Update(5 * time.Millisecond)
			}
		}
	}()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pos := model.ValidPositions()[w%len(model.ValidPositions())]
			for range 20 {
				p, err := env.m.Create().Position(pos).HideAfter(20 * time.Millisecond).Show()
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, env.m.Hide(p))
			}
		}()
	}
	wg.Wait()
	close(done)

	assert.True(t, env.m.Registry().Empty())
}

func TestManager_IndexInvariantUnderChurn(t *testing.T) {
	env := newTestEnv(t, nil)

	var popups []*stack.Popup
	for range 10 {
		p, err := env.m.Create().Position(model.PositionCenter).Show()
		require.NoError(t, err)
		popups = append(popups, p)
	}
	for _, i := range []int{9, 0, 4, 5} {
		require.NoError(t, env.m.Hide(popups[i]))
	}

	snap := env.m.Snapshot()
	require.Len(t, snap, 1)
	for i, ps := range snap[0].Popups {
		assert.Equal(t, i, ps.Index)
	}
	assert.Len(t, snap[0].Popups, 6)
}

func TestManager_Stop(t *testing.T) {
	env := newTestEnv(t, nil)
	for range 3 {
		_, err := env.m.Create().Show()
		require.NoError(t, err)
	}

	env.m.Stop()
	assert.True(t, env.m.Registry().Empty())
	assert.Empty(t, env.m.Popups())
}
