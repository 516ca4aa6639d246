package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/theme"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		themesDir  string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toaststack",
	Short: "Toast popup stacking and animation engine",
	Long: `toaststack lays out and animates stacks of transient "toast" popups
anchored to screen corners or application windows.

It can print the computed layout of a stack, manage its configuration and
run an interactive terminal simulator of a virtual desktop.

Running toaststack without a subcommand launches the simulator.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(configPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	// Default to the simulator when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate(cmd, args)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(rootCmd.Version)); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/toaststack/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.themesDir, "themes-dir", "",
		"Directory of custom themes (default: ~/.config/toaststack/themes)")
}

// setupLogger installs a tint handler on stderr so stdout stays clean for
// output.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}))
	slog.SetDefault(logger)
}

func configPath() string {
	if globalOpts.configPath != "" {
		return config.ExpandPath(globalOpts.configPath)
	}
	return config.ConfigPath()
}

// newThemeLoader creates a loader for the configured theme directory and
// loads the configured theme.
func newThemeLoader() *theme.Loader {
	dir := globalOpts.themesDir
	if dir != "" {
		dir = config.ExpandPath(dir)
	}
	loader := theme.NewLoader(dir, logger)
	loader.Load(cfg.Theme.Name)
	return loader
}
