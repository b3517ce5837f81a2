package main

import (
	"github.com/spf13/cobra"

	"github.com/calder-ops/impactcheck/internal/config"
)

// createRootCommand creates the main root command that shows help by default.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "impactcheck",
		Short:         "Classify pull-request impact on a protected environment",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to rule config file")

	rootCmd.AddCommand(
		createCheckCommand(),
		createRulesCommand(),
		createValidateCommand(),
		createHistoryCommand(),
	)

	return rootCmd
}
