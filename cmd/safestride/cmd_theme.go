package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/session"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the stored theme preference",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(session.ThemeLight), string(session.ThemeDark), "toggle"},
	RunE:      runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		ctx := cmd.Context()
		switch {
		case len(args) == 0:
		case args[0] == "toggle":
			if _, err := a.session.ToggleTheme(ctx); err != nil {
				return err
			}
		default:
			if err := a.session.SetTheme(ctx, session.ParseTheme(args[0])); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.session.Theme())
		return nil
	})
}
