package tui

import "strings"

// cellRect is an inclusive rectangle of terminal cells.
type cellRect struct {
	col0, row0, col1, row1 int
}

type boxChars struct {
	tl, tr, bl, br, h, v rune
}

var (
	singleBox = boxChars{'┌', '┐', '└', '┘', '─', '│'}
	doubleBox = boxChars{'╔', '╗', '╚', '╝', '═', '║'}
)

// grid is a fixed-size rune canvas. Writes outside it are clipped.
type grid struct {
	cols, rows int
	cells      [][]rune
}

func newGrid(cols, rows int) *grid {
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return &grid{cols: cols, rows: rows, cells: cells}
}

func (g *grid) set(col, row int, r rune) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return
	}
	g.cells[row][col] = r
}

// box draws the outline of r with label written into the top edge.
func (g *grid) box(r cellRect, c boxChars, label string) {
	if r.col1 <= r.col0 || r.row1 <= r.row0 {
		return
	}
	for col := r.col0 + 1; col < r.col1; col++ {
		g.set(col, r.row0, c.h)
		g.set(col, r.row1, c.h)
	}
	for row := r.row0 + 1; row < r.row1; row++ {
		g.set(r.col0, row, c.v)
		g.set(r.col1, row, c.v)
	}
	g.set(r.col0, r.row0, c.tl)
	g.set(r.col1, r.row0, c.tr)
	g.set(r.col0, r.row1, c.bl)
	g.set(r.col1, r.row1, c.br)

	room := r.col1 - r.col0 - 3
	if label != "" && room > 0 {
		g.text(r.col0+2, r.row0, []rune(fit(label, room)))
	}
}

func (g *grid) text(col, row int, runes []rune) {
	for i, r := range runes {
		g.set(col+i, row, r)
	}
}

func (g *grid) String() string {
	lines := make([]string, g.rows)
	for i, row := range g.cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}
