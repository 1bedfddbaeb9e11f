package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/safestride-client/internal/adapter/predictapi"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health and model metrics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

type status struct {
	API    string                 `json:"api"`
	Health predictapi.HealthStatus `json:"health"`
	Model  *predictapi.ModelInfo  `json:"model,omitempty"`
	Theme  string                 `json:"theme"`
	Stored int                    `json:"stored"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		ctx := cmd.Context()
		st := status{
			API:    a.client.BaseURL(),
			Theme:  string(a.session.Theme()),
			Stored: a.session.History().Len(),
		}

		health, err := a.client.Health(ctx)
		if err != nil {
			st.Health = predictapi.HealthStatus{Status: predictapi.StatusUnhealthy, Error: err.Error()}
		} else {
			st.Health = health
			if model, err := a.client.ModelMetrics(ctx); err != nil {
				a.logger.Warn("model metrics unavailable", "error", err)
			} else {
				st.Model = &model
			}
		}

		if rootFlags.format == formatJSON {
			return render(cmd.OutOrStdout(), st, nil)
		}
		if _, _, err := tableMode(); err != nil {
			return err
		}
		printStatus(cmd, st)
		return nil
	})
}

func printStatus(cmd *cobra.Command, st status) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "API:      %s\n", st.API)
	fmt.Fprintf(w, "Status:   %s\n", st.Health.Status)
	if st.Health.APIVersion != "" {
		fmt.Fprintf(w, "Version:  %s\n", st.Health.APIVersion)
	}
	if msg := firstNonEmpty(st.Health.Error, st.Health.Message); msg != "" {
		fmt.Fprintf(w, "Message:  %s\n", msg)
	}
	if st.Model != nil {
		fmt.Fprintf(w, "Model:    %s %s\n", st.Model.ModelName, st.Model.ModelVersion)
		if len(st.Model.Classes) > 0 {
			fmt.Fprintf(w, "Classes:  %s\n", strings.Join(st.Model.Classes, ", "))
		}
		for _, k := range slices.Sorted(maps.Keys(st.Model.Metrics)) {
			fmt.Fprintf(w, "  %-20s %v\n", k, st.Model.Metrics[k])
		}
	}
	fmt.Fprintf(w, "Theme:    %s\n", st.Theme)
	fmt.Fprintf(w, "History:  %d stored\n", st.Stored)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
