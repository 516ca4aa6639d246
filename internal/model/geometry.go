package model

import "fmt"

// Rect is an integer rectangle in screen pixels.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// String returns the rectangle as "WxH+X+Y".
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Union returns the smallest rectangle containing both r and o. An empty
// rectangle contributes nothing.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1 := max(r.X+r.Width, o.X+o.Width)
	y1 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Insets is the space reserved by window-manager chrome (panels, taskbars)
// along each edge of a screen.
type Insets struct {
	Top    int `json:"top" yaml:"top" toml:"top"`
	Bottom int `json:"bottom" yaml:"bottom" toml:"bottom"`
	Left   int `json:"left" yaml:"left" toml:"left"`
	Right  int `json:"right" yaml:"right" toml:"right"`
}
