package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
)

var compareFlags struct {
	pdf string
}

var compareCmd = &cobra.Command{
	Use:   "compare <id> <id>",
	Short: "Compare two stored assessments",
	Long: "compare takes exactly two assessment ids from history. The older one is\n" +
		"the baseline, so deltas read forward in time.",
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareFlags.pdf, "pdf", "", "also write the comparison report to this path")
}

type comparison struct {
	Older      domain.RiskAssessment   `json:"older"`
	Newer      domain.RiskAssessment   `json:"newer"`
	Comparison domain.ComparisonResult `json:"comparison"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		older, newer, err := a.session.History().ComparisonPair(args)
		if err != nil {
			return err
		}

		c := comparison{Older: older, Newer: newer, Comparison: domain.Compare(older, newer)}
		if err := render(cmd.OutOrStdout(), c, func(m export.Mode) string { return export.ComparisonTable(older, newer, m) }); err != nil {
			return err
		}
		if compareFlags.pdf == "" {
			return nil
		}
		if err := writeFile(compareFlags.pdf, func(w io.Writer) error { return a.exporter.ComparisonPDF(w, older, newer) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Comparison written to %s\n", compareFlags.pdf)
		return nil
	})
}
