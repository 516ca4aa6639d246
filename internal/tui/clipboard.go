package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/jmylchreest/toaststack/internal/adapter/input"
	"github.com/jmylchreest/toaststack/internal/adapter/output"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/stack"
)

// clipboardMethod is how exported layouts reach the clipboard.
type clipboardMethod string

const (
	clipboardCommand clipboardMethod = "command" // simulator.clipboard_command
	clipboardSystem  clipboardMethod = "system"  // wl-copy, xclip, pbcopy, ...
	clipboardOSC52   clipboardMethod = "osc52"   // terminal escape, works over ssh
)

// clipboardMethodFor picks the configured command, then a system clipboard
// tool, then OSC 52.
func clipboardMethodFor(cfg *config.Config) clipboardMethod {
	if cfg != nil && strings.TrimSpace(cfg.Simulator.ClipboardCommand) != "" {
		return clipboardCommand
	}
	if !clipboard.Unsupported {
		return clipboardSystem
	}
	return clipboardOSC52
}

// copyText copies text with method. A failing system clipboard falls back
// to OSC 52 written to term. It returns the method that succeeded.
func copyText(text string, cfg *config.Config, method clipboardMethod, term io.Writer) (clipboardMethod, error) {
	switch method {
	case clipboardCommand:
		return method, runClipboardCommand(cfg.Simulator.ClipboardCommand, text)
	case clipboardSystem:
		if err := clipboard.WriteAll(text); err == nil {
			return method, nil
		}
	}
	return clipboardOSC52, writeOSC52(term, text)
}

func runClipboardCommand(command, text string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("invalid clipboard command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	if out, err := c.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", parts[0], err, bytes.TrimSpace(out))
	}
	return nil
}

func writeOSC52(term io.Writer, text string) error {
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if strings.HasPrefix(os.Getenv("TERM"), "screen") {
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(term)
	return err
}

// formatLayout renders stacks in the given output format.
func formatLayout(stacks []stack.StackSnapshot, format output.FormatType) (string, error) {
	var buf bytes.Buffer
	if err := output.NewFormatter(format, output.DefaultFormatterOptions()).Format(&buf, stacks); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// loadScript reads the requests the simulator replays on start.
func loadScript(ctx context.Context, adapter input.InputAdapter) ([]input.Request, error) {
	if adapter == nil {
		return nil, nil
	}
	return adapter.Import(ctx)
}
