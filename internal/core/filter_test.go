package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/stack"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testStacks() []stack.StackSnapshot {
	return []stack.StackSnapshot{
		{
			Key:      "screen:0:bottom-right",
			Surface:  "screen:0",
			Position: model.PositionBottomRight,
			Popups: []stack.PopupSnapshot{
				{ID: "a", Title: "Build finished", Text: "all green", Index: 0, X: 1600, Y: 973, Progress: 0, ShownAt: testNow.Add(-10 * time.Second)},
				{ID: "b", Title: "Disk almost full", Text: "92% used", Index: 1, X: 1600, Y: 876, Progress: 150, ShownAt: testNow.Add(-2 * time.Minute)},
			},
		},
		{
			Key:      "window:editor:top",
			Surface:  "window:editor",
			Position: model.PositionTop,
			Popups: []stack.PopupSnapshot{
				{ID: "c", Title: "Saved", Index: 0, X: 330, Y: 20, ShownAt: testNow.Add(-time.Hour)},
			},
		},
	}
}

func ids(stacks []stack.StackSnapshot) []string {
	var out []string
	for _, st := range stacks {
		for _, p := range st.Popups {
			out = append(out, p.ID)
		}
	}
	return out
}

func filterIDs(t *testing.T, expr string) []string {
	t.Helper()
	f, err := ParseFilter(expr)
	require.NoError(t, err)
	return ids(FilterStacks(testStacks(), f.WithClock(func() time.Time { return testNow })))
}

func TestFilterStacks(t *testing.T) {
	tests := []struct {
		expr     string
		expected []string
	}{
		{"", []string{"a", "b", "c"}},
		{"position=top", []string{"c"}},
		{"position!=top", []string{"a", "b"}},
		{"pos=bottom_right", []string{"a", "b"}},
		{"surface~window", []string{"c"}},
		{"stack=screen:0:bottom-right", []string{"a", "b"}},
		{"title~BUILD", []string{"a"}},
		{"title~=^(Saved|Disk)", []string{"b", "c"}},
		{"text~green", []string{"a"}},
		{"index>=1", []string{"b"}},
		{"index=0,position=bottom-right", []string{"a"}},
		{"y<900", []string{"b", "c"}},
		{"x>1000,y>=973", []string{"a"}},
		{"progress>0", []string{"b"}},
		{"age<1m", []string{"a"}},
		{"age>=2m", []string{"b", "c"}},
		{"title=nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, filterIDs(t, tt.expr))
		})
	}
}

func TestFilterStacks_DropsEmptyStacks(t *testing.T) {
	f, err := ParseFilter("surface=screen:0")
	require.NoError(t, err)

	result := FilterStacks(testStacks(), f)
	require.Len(t, result, 1)
	assert.Equal(t, "screen:0:bottom-right", result[0].Key)
}

func TestFilterStacks_NilExpr(t *testing.T) {
	stacks := testStacks()
	assert.Equal(t, stacks, FilterStacks(stacks, nil))
}

func TestParseFilter_Errors(t *testing.T) {
	for _, expr := range []string{
		"title",
		"colour=red",
		"index=first",
		"position=middle",
		"position~top",
		"title~=[",
		"age<soon",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseFilter(expr)
			assert.Error(t, err)
		})
	}
}

func TestParseFilter_NormalizesFields(t *testing.T) {
	f, err := ParseFilter("Summary~x, body~y, idx>1, key=z, screen=s")
	require.NoError(t, err)
	require.Len(t, f.Conditions, 5)

	var fields []string
	for _, c := range f.Conditions {
		fields = append(fields, c.Field)
	}
	assert.Equal(t, []string{"title", "text", "index", "stack", "surface"}, fields)
}

func TestFilterCondition_Match(t *testing.T) {
	f, err := ParseFilter("title~disk")
	require.NoError(t, err)

	st := testStacks()[0]
	assert.False(t, f.Conditions[0].Match(st, st.Popups[0]))
	assert.True(t, f.Conditions[0].Match(st, st.Popups[1]))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		hasError bool
	}{
		{"0", 0, false},
		{"", 0, false},
		{"90s", 90 * time.Second, false},
		{"30m", 30 * time.Minute, false},
		{"48h", 48 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"invalid", 0, true},
		{"xd", 0, true},
		{"xw", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseDuration(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
