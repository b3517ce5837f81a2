package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calder-ops/impactcheck/internal/config"
	"github.com/calder-ops/impactcheck/internal/matcher"
)

// createValidateCommand creates the validate command.
func createValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the rule configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("config flag error: %w", err)
			}

			cfg, err := config.Load(afero.NewOsFs(), configPath)
			if err != nil {
				return err
			}
			// Compiling catches what shape validation alone cannot.
			if _, err := matcher.NewRuleMatcher(cfg.Rules); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[✓] %s is valid (%d rules)\n",
				configPath, len(cfg.Rules))
			return nil
		},
	}
}
