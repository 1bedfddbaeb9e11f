package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/formfile"
)

var batchFlags struct {
	file string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Submit every form in a file in one batch request",
	Long: "batch sends all forms in one request and records each result in order,\n" +
		"so the last form's assessment ends up newest in history.",
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFlags.file, "file", "f", "", "forms file, YAML or JSON (required)")
	_ = batchCmd.MarkFlagRequired("file")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	forms, err := formfile.LoadFromPath(batchFlags.file)
	if err != nil {
		return err
	}

	return withApp(cmd.Context(), func(a *app) error {
		results, err := a.pipeline.SubmitBatch(cmd.Context(), forms)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), results, func(m export.Mode) string { return export.HistoryTable(results, m) })
	})
}
