package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calder-ops/impactcheck/internal/history"
	"github.com/calder-ops/impactcheck/internal/storage"
)

// createHistoryCommand creates the run-history listing command.
func createHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded check runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			dbPath, err := storage.New(afero.NewOsFs()).GetHistoryPath()
			if err != nil {
				return err
			}
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s...%s  impact=%s findings=%d\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					shortSHA(e.BaseSHA), shortSHA(e.HeadSHA),
					e.ImpactLevel, e.FindingCount)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
