package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toaststack/internal/adapter/input"
	"github.com/jmylchreest/toaststack/internal/adapter/output"
	"github.com/jmylchreest/toaststack/internal/animation"
	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/core"
	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/notify"
	"github.com/jmylchreest/toaststack/internal/stack"
	"github.com/jmylchreest/toaststack/internal/surface"
)

var layoutOpts struct {
	position string
	count    int
	screen   string
	insets   string
	remove   int
	elapsed  time.Duration
	format   string
	template string
	showText bool
	input    string
	filter   string
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the computed layout of a popup stack",
	Long: `Show popups on a virtual screen and print where they end up.

By default N generated popups are stacked at one position. With --input
the popups are read from a file (or stdin with -) instead.

--remove closes the k-th shown popup (0-based) and advances the animation
by the move duration so the printed positions are the reflowed targets.
Use --elapsed to print an intermediate frame instead.

Output formats:
  table   Aligned table (default)
  plain   One line per popup, supports --template
  json    JSON array of stacks
  yaml    YAML list of stacks
  ids     Popup ids, one per line

--filter keeps only matching popups, e.g. "index>=1" or
"position=top-left,title~build". Fields: stack, surface, position, title,
text, index, x, y, progress, age.

Template fields: .Stack.Key, .Popup.Index, .Popup.X, .Popup.Y, .Popup.Title,
.Popup.Progress, .RelativeTime and the functions truncate, reltime, percent.

Examples:
  toaststack layout --count 3
  toaststack layout --position top-left --count 4 --screen 1280x720 --insets 32,0
  toaststack layout --count 3 --remove 0 -o json
  toaststack layout --count 3 --remove 0 --elapsed 500ms
  toaststack layout --input popups.yaml -o yaml
  toaststack layout --input popups.yaml --filter "surface~screen,index>0"`,
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().StringVar(&layoutOpts.position, "position", "",
		"Stack position: "+positionNames()+" (default from config)")
	layoutCmd.Flags().IntVarP(&layoutOpts.count, "count", "n", 3,
		"Number of popups to show")
	layoutCmd.Flags().StringVar(&layoutOpts.screen, "screen", "",
		"Screen size as WIDTHxHEIGHT (default: first configured screen)")
	layoutCmd.Flags().StringVar(&layoutOpts.insets, "insets", "",
		"Screen insets as top,bottom or top,bottom,left,right")
	layoutCmd.Flags().IntVar(&layoutOpts.remove, "remove", -1,
		"Close the popup shown at this position (0-based) before printing")
	layoutCmd.Flags().DurationVar(&layoutOpts.elapsed, "elapsed", 0,
		"Animation time to advance before printing (default: move duration after --remove)")
	layoutCmd.Flags().StringVarP(&layoutOpts.format, "format", "o", "table",
		"Output format: table, plain, json, yaml, ids")
	layoutCmd.Flags().StringVar(&layoutOpts.template, "template", "",
		"Go template for plain format")
	layoutCmd.Flags().BoolVar(&layoutOpts.showText, "show-text", false,
		"Include popup text in table and plain output")
	layoutCmd.Flags().StringVarP(&layoutOpts.input, "input", "i", "",
		"Read popups from a file (or - for stdin) instead of generating them")
	layoutCmd.Flags().StringVar(&layoutOpts.filter, "filter", "",
		"Only print popups matching this expression")
}

// layoutRequest describes one layout run.
type layoutRequest struct {
	Screen   model.Rect
	Insets   model.Insets
	Position model.Position
	Count    int
	Requests []input.Request // Replaces the generated popups when set
	Remove   int             // Shown index to close, -1 for none
	Elapsed  time.Duration
}

func runLayout(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(layoutOpts.format)
	if err != nil {
		return err
	}

	filter, err := core.ParseFilter(layoutOpts.filter)
	if err != nil {
		return err
	}

	req, err := layoutRequestFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	if layoutOpts.input != "" {
		adapter, err := input.NewAdapter(layoutOpts.input)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		req.Requests, err = adapter.Import(ctx)
		if err != nil {
			return fmt.Errorf("failed to read popups: %w", err)
		}
	}

	stacks, err := computeLayout(cfg, req, logger)
	if err != nil {
		return err
	}

	return printLayout(cmd.OutOrStdout(), core.FilterStacks(stacks, filter), format)
}

func layoutRequestFromFlags(cmd *cobra.Command, cfg *config.Config) (layoutRequest, error) {
	req := layoutRequest{
		Position: cfg.DefaultPositionValue(),
		Count:    layoutOpts.count,
		Remove:   layoutOpts.remove,
		Elapsed:  layoutOpts.elapsed,
	}

	if screens := cfg.Simulator.Screens; len(screens) > 0 {
		req.Screen = model.Rect{Width: screens[0].Width, Height: screens[0].Height}
		req.Insets = screens[0].Insets
	}

	if layoutOpts.position != "" {
		pos, err := model.ParsePosition(layoutOpts.position)
		if err != nil {
			return req, err
		}
		req.Position = pos
	}
	if layoutOpts.screen != "" {
		w, h, err := parseSize(layoutOpts.screen)
		if err != nil {
			return req, err
		}
		req.Screen = model.Rect{Width: w, Height: h}
	}
	if layoutOpts.insets != "" {
		insets, err := parseInsets(layoutOpts.insets)
		if err != nil {
			return req, err
		}
		req.Insets = insets
	}
	if req.Count < 0 {
		return req, fmt.Errorf("count must be non-negative, got %d", req.Count)
	}
	if !cmd.Flags().Changed("elapsed") && req.Remove >= 0 {
		req.Elapsed = cfg.Animation.MoveDuration.Duration()
	}
	return req, nil
}

// computeLayout shows the requested popups on a single virtual screen with a
// manually ticked animator and returns the resulting stacks.
func computeLayout(cfg *config.Config, req layoutRequest, logger *slog.Logger) ([]stack.StackSnapshot, error) {
	if req.Screen.Empty() {
		return nil, fmt.Errorf("invalid screen size %dx%d", req.Screen.Width, req.Screen.Height)
	}

	screens, err := surface.NewScreenSet(surface.NewScreen(0, req.Screen, req.Insets))
	if err != nil {
		return nil, err
	}
	anim := animation.NewAnimator(logger, animation.WithManualTicks())
	manager, err := notify.NewManager(cfg, notify.Options{
		Animator: anim,
		Screens:  screens,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	defer manager.Stop()

	var shown []*stack.Popup
	if len(req.Requests) > 0 {
		for i, r := range req.Requests {
			b, err := r.Apply(manager.Create(), cfg.DefaultShake())
			if err != nil {
				return nil, fmt.Errorf("popup %d: %w", i+1, err)
			}
			p, err := b.Show()
			if err != nil {
				return nil, fmt.Errorf("popup %d: %w", i+1, err)
			}
			shown = append(shown, p)
		}
	} else {
		for i := range req.Count {
			p, err := manager.Create().
				Title(fmt.Sprintf("Popup %d", i+1)).
				Text(fmt.Sprintf("Stacked at %s", req.Position)).
				Position(req.Position).
				Show()
			if err != nil {
				return nil, err
			}
			shown = append(shown, p)
		}
	}

	if req.Remove >= 0 {
		if req.Remove >= len(shown) {
			return nil, fmt.Errorf("cannot remove popup %d: only %d shown", req.Remove, len(shown))
		}
		if err := manager.Hide(shown[req.Remove]); err != nil {
			return nil, err
		}
	}

	if req.Elapsed > 0 {
		anim.Update(req.Elapsed)
	}

	return manager.Snapshot(), nil
}

func printLayout(w io.Writer, stacks []stack.StackSnapshot, format output.FormatType) error {
	opts := output.DefaultFormatterOptions()
	opts.Template = layoutOpts.template
	opts.ShowText = layoutOpts.showText

	return output.NewFormatter(format, opts).Format(w, stacks)
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

// parseInsets parses "top,bottom" or "top,bottom,left,right".
func parseInsets(s string) (model.Insets, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 4 {
		return model.Insets{}, fmt.Errorf("invalid insets %q: expected top,bottom or top,bottom,left,right", s)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return model.Insets{}, fmt.Errorf("invalid inset %q in %q", part, s)
		}
		values[i] = v
	}

	insets := model.Insets{Top: values[0], Bottom: values[1]}
	if len(values) == 4 {
		insets.Left = values[2]
		insets.Right = values[3]
	}
	return insets, nil
}

func positionNames() string {
	names := make([]string, 0, len(model.ValidPositions()))
	for _, p := range model.ValidPositions() {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}
