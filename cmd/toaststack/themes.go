package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Long: `List bundled themes and the custom themes found in the themes directory.

A custom theme with the same name as a bundled one replaces it. The
configured theme is marked with *.`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, args []string) error {
	loader := newThemeLoader()
	out := cmd.OutOrStdout()

	for _, info := range loader.List() {
		mark := " "
		if info.Name == cfg.Theme.Name {
			mark = "*"
		}
		source := "bundled"
		if !info.Bundled {
			source = info.Path
		}
		if _, err := fmt.Fprintf(out, "%s %-16s %s\n", mark, info.Name, source); err != nil {
			return err
		}
	}
	return nil
}
