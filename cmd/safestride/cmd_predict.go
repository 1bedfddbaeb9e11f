package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/formfile"
)

var predictFlags struct {
	file string
	pdf  string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Submit one form and record the assessment",
	Args:  cobra.NoArgs,
	RunE:  runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVarP(&predictFlags.file, "file", "f", "", "form file, YAML or JSON (required)")
	f.StringVar(&predictFlags.pdf, "pdf", "", "also write the assessment report to this path")

	_ = predictCmd.MarkFlagRequired("file")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	forms, err := formfile.LoadFromPath(predictFlags.file)
	if err != nil {
		return err
	}
	if len(forms) > 1 {
		return fmt.Errorf("%s holds %d forms; use 'safestride batch' for more than one", predictFlags.file, len(forms))
	}

	return withApp(cmd.Context(), func(a *app) error {
		assessment, err := a.pipeline.Submit(cmd.Context(), forms[0])
		if err != nil {
			return err
		}
		if err := printAssessment(cmd.OutOrStdout(), assessment); err != nil {
			return err
		}
		if predictFlags.pdf == "" {
			return nil
		}
		if err := writeFile(predictFlags.pdf, func(w io.Writer) error { return a.exporter.AssessmentPDF(w, assessment) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", predictFlags.pdf)
		return nil
	})
}

func printAssessment(w io.Writer, a domain.RiskAssessment) error {
	return render(w, a, func(m export.Mode) string { return export.AssessmentTable(a, m) })
}
