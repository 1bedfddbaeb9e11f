package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/domain"
	"github.com/couchcryptid/safestride-client/internal/export"
	"github.com/couchcryptid/safestride-client/internal/history"
)

var historyFlags struct {
	query string
	level string
	out   string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, export, summarize or clear the stored assessments",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored assessment",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored assessments to a CSV file",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored assessments",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd, historyStatsCmd} {
		c.Flags().StringVarP(&historyFlags.query, "query", "q", "", "case-insensitive match on risk level or timestamp")
		c.Flags().StringVar(&historyFlags.level, "level", history.LevelAll, "risk level filter: low, medium, high or all")
	}
	historyExportCmd.Flags().StringVar(&historyFlags.out, "out", "", "output path (default safestride-history-<timestamp>.csv)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyStatsCmd)
}

func searchHistory(a *app) []domain.RiskAssessment {
	return a.session.History().Search(historyFlags.query, historyFlags.level)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	_, isTable, err := tableMode()
	if err != nil {
		return err
	}
	return withApp(cmd.Context(), func(a *app) error {
		entries := searchHistory(a)
		if len(entries) == 0 && isTable {
			fmt.Fprintln(cmd.OutOrStdout(), "No predictions yet.")
			return nil
		}
		return render(cmd.OutOrStdout(), entries, func(m export.Mode) string { return export.HistoryTable(entries, m) })
	})
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		n := a.session.History().Len()
		if err := a.session.History().Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d predictions.\n", n)
		return nil
	})
}

func runHistoryExport(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		entries := searchHistory(a)
		path := historyFlags.out
		if path == "" {
			path = export.HistoryCSVFilename(domain.Now())
		}
		if err := writeFile(path, func(w io.Writer) error { return a.exporter.HistoryCSV(w, entries) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d predictions to %s\n", len(entries), path)
		return nil
	})
}

func runHistoryStats(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		s := history.Summarize(searchHistory(a))
		return render(cmd.OutOrStdout(), s, func(m export.Mode) string { return export.SummaryTable(s, m) })
	})
}
