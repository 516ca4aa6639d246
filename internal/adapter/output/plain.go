package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toaststack/internal/stack"
)

// PlainFormatter formats popups as plain text, one line per popup.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs(opts.now)).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes popups as plain text.
func (f *PlainFormatter) Format(w io.Writer, stacks []stack.StackSnapshot) error {
	now := f.opts.now()
	for i := range stacks {
		for j := range stacks[i].Popups {
			if err := f.formatPopup(w, &stacks[i], &stacks[i].Popups[j], now); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *PlainFormatter) formatPopup(w io.Writer, s *stack.StackSnapshot, p *stack.PopupSnapshot, now time.Time) error {
	if f.template != nil {
		data := templateData{
			Stack:        s,
			Popup:        p,
			RelativeTime: relativeTime(p.ShownAt, now),
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	// Default format: key [index] x,y title (shown)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%d] %d,%d", s.Key, p.Index, p.X, p.Y)
	if p.Title != "" {
		sb.WriteString(" " + p.Title)
	}
	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s)", relativeTime(p.ShownAt, now))
	}
	sb.WriteString("\n")

	if f.opts.ShowText && p.Text != "" {
		text := sanitizeText(p.Text, f.opts.TextMaxLen)
		if text != "" {
			sb.WriteString("    " + text + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// templateData provides data for custom templates.
type templateData struct {
	Stack        *stack.StackSnapshot
	Popup        *stack.PopupSnapshot
	RelativeTime string
}

// templateFuncs returns template helper functions.
func templateFuncs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"reltime": func(t time.Time) string {
			return relativeTime(t, now())
		},
		"percent": func(p stack.PopupSnapshot) int {
			if p.Width <= 0 {
				return 0
			}
			return p.Progress * 100 / p.Width
		},
	}
}

// relativeTime returns a human-readable time relative to now.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// sanitizeText cleans up body text for single-line display.
func sanitizeText(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.Join(strings.Fields(text), " ")
	return truncate(text, maxLen)
}
