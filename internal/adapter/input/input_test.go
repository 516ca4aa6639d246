package input

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/notify"
	"github.com/jmylchreest/toaststack/internal/surface"
	"github.com/jmylchreest/toaststack/internal/theme"
)

const jsonArray = `[
  {"title": "Build finished", "text": "all green", "position": "top-left", "hide_after": "5s"},
  {"title": "Deploy", "screen": 1, "dark": true, "shake": {"amplitude": 4}, "after": "250ms"}
]`

const jsonLines = `{"title": "one"}
{"title": "two", "position": "BOTTOM_LEFT"}
`

const yamlDoc = `
- title: Disk almost full
  icon: dialog-warning
  hide_after: 2s
- title: Backup done
  position: center
  hide_close_button: true
`

func TestParse_Formats(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		requests, err := Parse([]byte(jsonArray))
		require.NoError(t, err)
		require.Len(t, requests, 2)

		assert.Equal(t, "Build finished", requests[0].Title)
		require.NotNil(t, requests[0].HideAfter)
		assert.Equal(t, 5*time.Second, requests[0].HideAfter.Duration())
		require.NotNil(t, requests[1].Screen)
		assert.Equal(t, 1, *requests[1].Screen)
		assert.Equal(t, 250*time.Millisecond, requests[1].After.Duration())
		require.NotNil(t, requests[1].Shake)
		assert.Equal(t, 4, requests[1].Shake.Amplitude)
	})

	t.Run("json lines", func(t *testing.T) {
		requests, err := Parse([]byte(jsonLines))
		require.NoError(t, err)
		require.Len(t, requests, 2)
		assert.Equal(t, "two", requests[1].Title)
		assert.Equal(t, "BOTTOM_LEFT", requests[1].Position)
	})

	t.Run("yaml", func(t *testing.T) {
		requests, err := Parse([]byte(yamlDoc))
		require.NoError(t, err)
		require.Len(t, requests, 2)
		assert.Equal(t, model.IconWarning, requests[0].Icon)
		require.NotNil(t, requests[0].HideAfter)
		assert.Equal(t, 2*time.Second, requests[0].HideAfter.Duration())
		assert.True(t, requests[1].HideCloseButton)
	})

	t.Run("empty", func(t *testing.T) {
		requests, err := Parse([]byte("  \n"))
		require.NoError(t, err)
		assert.Nil(t, requests)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"broken json", `[{"title": }]`},
		{"unknown json line field", `{"title": "x", "colour": "red"}`},
		{"bad position", `[{"title": "x", "position": "middle"}]`},
		{"negative hide", `[{"title": "x", "hide_after": "-1s"}]`},
		{"no content", `[{"icon": "dialog-error"}]`},
		{"bad duration", "- title: x\n  hide_after: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests, err := Parse([]byte(tt.input))
			assert.Error(t, err)
			assert.Nil(t, requests)
		})
	}
}

func TestParse_ReportsAllInvalidRequests(t *testing.T) {
	_, err := Parse([]byte(`[{"title": "a", "position": "nowhere"}, {"title": "b"}, {"text": ""}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request 1")
	assert.Contains(t, err.Error(), "request 3")
	assert.NotContains(t, err.Error(), "request 2")
	assert.True(t, errors.Is(err, model.ErrInvalidPosition))
}

func newTestManager(t *testing.T) *notify.Manager {
	t.Helper()

	set, err := surface.NewScreenSet(
		surface.NewScreen(0, model.Rect{Width: 1920, Height: 1080}, model.Insets{}),
	)
	require.NoError(t, err)

	m, err := notify.NewManager(nil, notify.Options{
		Animator: animation.NewAnimator(nil, animation.WithManualTicks()),
		Screens:  set,
		Themes:   theme.NewLoader(t.TempDir(), nil),
	})
	require.NoError(t, err)
	t.Cleanup(m.Stop)
	return m
}

func TestRequest_Apply(t *testing.T) {
	m := newTestManager(t)
	requests, err := Parse([]byte(jsonArray))
	require.NoError(t, err)

	fallback := &model.ShakeRequest{Duration: 500 * time.Millisecond, Amplitude: 8}

	b, err := requests[0].Apply(m.Create(), fallback)
	require.NoError(t, err)
	d, err := b.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, "Build finished", d.Notification.Title)
	assert.Equal(t, "all green", d.Notification.Text)
	assert.Equal(t, model.PositionTopLeft, d.Notification.Position)
	assert.Equal(t, 5*time.Second, d.Notification.HideAfter)
	assert.Nil(t, d.Notification.Shake)

	b, err = requests[1].Apply(m.Create(), fallback)
	require.NoError(t, err)
	d, err = b.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, 1, d.Notification.Screen)
	assert.True(t, d.Notification.Dark)
	require.NotNil(t, d.Notification.Shake)
	assert.Equal(t, 500*time.Millisecond, d.Notification.Shake.Duration)
	assert.Equal(t, 4, d.Notification.Shake.Amplitude)
}

func TestRequest_ApplyShakeWithoutFallback(t *testing.T) {
	m := newTestManager(t)

	r := Request{Title: "x", Shake: &ShakeEntry{Amplitude: 4}}
	_, err := r.Apply(m.Create(), nil)
	assert.ErrorIs(t, err, model.ErrInvalidShake)
}

func TestRequest_ApplyAndShow(t *testing.T) {
	m := newTestManager(t)
	requests, err := Parse([]byte(yamlDoc))
	require.NoError(t, err)

	for _, r := range requests {
		b, err := r.Apply(m.Create(), nil)
		require.NoError(t, err)
		_, err = b.Show()
		require.NoError(t, err)
	}

	snap := m.Snapshot()
	require.Len(t, snap, 2)
	titles := []string{snap[0].Popups[0].Title, snap[1].Popups[0].Title}
	assert.ElementsMatch(t, []string{"Disk almost full", "Backup done"}, titles)
}

func TestStdinAdapter_Import(t *testing.T) {
	a := NewStdinAdapterWithReader(strings.NewReader(jsonLines))
	assert.Equal(t, "stdin", a.Name())

	requests, err := a.Import(context.Background())
	require.NoError(t, err)
	assert.Len(t, requests, 2)
}

func TestStdinAdapter_ParseError(t *testing.T) {
	a := NewStdinAdapterWithReader(strings.NewReader(`[{"title": 1}]`))

	_, err := a.Import(context.Background())
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "stdin", adapterErr.Source)
}

func TestFileAdapter_Import(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burst.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	requests, err := NewFileAdapter(path).Import(context.Background())
	require.NoError(t, err)
	assert.Len(t, requests, 2)
}

func TestFileAdapter_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileAdapter(filepath.Join(dir, "missing.json")).Import(context.Background())
	var adapterErr *AdapterError
	require.ErrorAs(t, err, &adapterErr)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"title": "x", "position": "up"}]`), 0644))
	_, err = NewFileAdapter(bad).Import(context.Background())
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, bad, adapterErr.Source)
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter("-")
	require.NoError(t, err)
	assert.Equal(t, "stdin", a.Name())

	a, err = NewAdapter("burst.json")
	require.NoError(t, err)
	assert.Equal(t, "file", a.Name())

	_, err = NewAdapter("")
	assert.Error(t, err)
}
