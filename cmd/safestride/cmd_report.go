package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
)

var reportFlags struct {
	out string
}

var reportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Write the PDF report of a stored assessment",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.out, "out", "", "output path (default SafeStride_Risk_Report_<date>.pdf)")
}

func runReport(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		assessment, err := a.session.History().Get(args[0])
		if err != nil {
			return err
		}
		path := reportFlags.out
		if path == "" {
			path = export.ReportFilename(domain.Now())
		}
		if err := writeFile(path, func(w io.Writer) error { return a.exporter.AssessmentPDF(w, assessment) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	})
}
