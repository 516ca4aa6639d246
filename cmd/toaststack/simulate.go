package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toaststack/internal/adapter/input"
	"github.com/jmylchreest/toaststack/internal/tui"
)

var simulateOpts struct {
	script  string
	noWatch bool
}

var simulateCmd = &cobra.Command{
	Use:     "simulate",
	Aliases: []string{"sim", "tui"},
	Short:   "Run the interactive popup simulator",
	Long: `Run an interactive terminal simulator of a virtual desktop.

Screens come from the [simulator] section of the config. Popups are drawn
as boxes on the scaled desktop and animate exactly as a real display would
see them: stacking, reflow after a close, shake and auto-hide progress.

A script of notifications can be replayed on start. Scripts are a JSON
array, JSON lines or a YAML list; the "after" field delays each entry
relative to the previous one.

The config file and the custom theme are watched and hot-applied.

Keybindings:
  n/w/e/o     Show info/warning/error/confirm popup
  j/k         Select popup
  enter       Click the selected popup
  x/X         Close selected/all popups
  s           Shake the selected popup
  p/P         Cycle position
  a           Toggle attaching popups to the window
  H/J/K/L     Move the window
  i           Minimize/restore the window
  y/Y         Copy the layout as JSON/YAML
  ?           Toggle full help
  q           Quit

Examples:
  toaststack simulate
  toaststack simulate --script demo.yaml
  printf '{"title":"Build","text":"done"}\n' | toaststack simulate --script -`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateOpts.script, "script", "",
		"Notifications to replay on start (file path, or - for stdin)")
	simulateCmd.Flags().BoolVar(&simulateOpts.noWatch, "no-watch", false,
		"Do not watch the config file for changes")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	opts := tui.RunOptions{
		Config: cfg,
		Logger: logger,
		Themes: newThemeLoader(),
	}
	if !simulateOpts.noWatch {
		opts.ConfigPath = configPath()
	}
	if simulateOpts.script != "" {
		adapter, err := input.NewAdapter(simulateOpts.script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		opts.Adapter = adapter
	}

	return tui.Run(opts)
}
