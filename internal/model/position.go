package model

import (
	"fmt"
	"strings"
)

// Position is the corner (or center) of a surface a popup stack is anchored to.
type Position int

const (
	PositionTopLeft Position = iota
	PositionTopRight
	PositionTop
	PositionCenter
	PositionBottom
	PositionBottomLeft
	PositionBottomRight
)

var positionNames = map[Position]string{
	PositionTopLeft:     "top-left",
	PositionTopRight:    "top-right",
	PositionTop:         "top",
	PositionCenter:      "center",
	PositionBottom:      "bottom",
	PositionBottomLeft:  "bottom-left",
	PositionBottomRight: "bottom-right",
}

// ValidPositions returns all positions in declaration order.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTop,
		PositionCenter,
		PositionBottom,
		PositionBottomLeft,
		PositionBottomRight,
	}
}

// String returns the config name of the position, e.g. "bottom-right".
func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("position(%d)", int(p))
}

// Valid reports whether p is one of the seven known positions.
func (p Position) Valid() bool {
	_, ok := positionNames[p]
	return ok
}

// GrowsDown reports whether later popups in a stack are placed below the
// first one. Stacks anchored at the bottom grow up.
func (p Position) GrowsDown() bool {
	switch p {
	case PositionTopLeft, PositionTopRight, PositionTop, PositionCenter:
		return true
	default:
		return false
	}
}

// ParsePosition parses a position name. Both "bottom-right" and
// "BOTTOM_RIGHT" spellings are accepted.
func ParsePosition(s string) (Position, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")
	for p, n := range positionNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(text []byte) error {
	parsed, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
