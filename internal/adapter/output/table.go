package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jmylchreest/toaststack/internal/stack"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// TableFormatter renders one table row per popup.
type TableFormatter struct {
	opts FormatterOptions
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(opts FormatterOptions) *TableFormatter {
	return &TableFormatter{opts: opts}
}

// Format writes stacks as a table. Nothing is written when there are no
// popups.
func (f *TableFormatter) Format(w io.Writer, stacks []stack.StackSnapshot) error {
	headers := []string{"STACK", "#", "ID", "X", "Y", "ANCHOR", "PROGRESS", "TITLE"}
	if f.opts.ShowTime {
		headers = append(headers, "SHOWN")
	}
	if f.opts.ShowText {
		headers = append(headers, "TEXT")
	}

	now := f.opts.now()
	var rows [][]string
	for _, s := range stacks {
		for _, p := range s.Popups {
			row := []string{
				s.Key,
				strconv.Itoa(p.Index),
				p.ID,
				strconv.Itoa(p.X),
				strconv.Itoa(p.Y),
				fmt.Sprintf("%d,%d", p.AnchorX, p.AnchorY),
				fmt.Sprintf("%d/%d", p.Progress, p.Width),
				p.Title,
			}
			if f.opts.ShowTime {
				row = append(row, relativeTime(p.ShownAt, now))
			}
			if f.opts.ShowText {
				row = append(row, sanitizeText(p.Text, f.opts.TextMaxLen))
			}
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
