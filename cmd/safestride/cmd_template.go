package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/formfile"
)

var templateFlags struct {
	out string
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a form prefilled with the backend's default values",
	Long: "template fetches the feature template from the prediction API and writes\n" +
		"it as YAML, ready to edit and pass to 'safestride predict -f'.",
	Args: cobra.NoArgs,
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().StringVarP(&templateFlags.out, "out", "o", "", "output path (default stdout)")
}

func runTemplate(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		form, err := a.client.FeatureTemplate(cmd.Context())
		if err != nil {
			return err
		}
		data, err := formfile.Marshal(form)
		if err != nil {
			return err
		}
		if templateFlags.out == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(templateFlags.out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", templateFlags.out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Template written to %s\n", templateFlags.out)
		return nil
	})
}
