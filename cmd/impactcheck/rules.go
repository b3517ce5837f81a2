package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calder-ops/impactcheck/internal/config"
	"github.com/calder-ops/impactcheck/internal/impact"
	"github.com/calder-ops/impactcheck/internal/prompt"
)

// createRulesCommand creates the rules management command with subcommands.
func createRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage impact rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}

			output, err := listRules(afero.NewOsFs(), configPath)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.AddCommand(
		createRulesAddCommand(),
		createRulesTestCommand(),
	)

	return cmd
}

func listRules(fs afero.Fs, configPath string) (string, error) {
	if _, err := fs.Stat(configPath); os.IsNotExist(err) {
		return fmt.Sprintf("No rules found - %s does not exist\n", configPath), nil
	}

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	for _, rule := range cfg.Rules {
		_, _ = fmt.Fprintf(&output, "%s (%s)\n", rule.Name, rule.ImpactLevel)
		if rule.Description != "" {
			_, _ = fmt.Fprintf(&output, "    %s\n", rule.Description)
		}
		if len(rule.Paths) > 0 {
			_, _ = fmt.Fprintf(&output, "    Paths: %s\n", strings.Join(rule.Paths, ", "))
		}
		if len(rule.ContentPatterns) > 0 {
			_, _ = fmt.Fprintf(&output, "    Patterns: %s\n", strings.Join(rule.ContentPatterns, ", "))
		}
		_, _ = fmt.Fprintln(&output)
	}
	return output.String(), nil
}

// createRulesAddCommand creates the rule addition subcommand.
func createRulesAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}

			interactive, _ := cmd.Flags().GetBool("interactive")
			if interactive {
				p := prompt.NewLinerPrompter()
				return runInteractiveRuleAdd(afero.NewOsFs(), p, configPath, cmd)
			}

			name, _ := cmd.Flags().GetString("name")
			paths, _ := cmd.Flags().GetStringSlice("path")
			patterns, _ := cmd.Flags().GetStringSlice("pattern")
			levelName, _ := cmd.Flags().GetString("level")
			description, _ := cmd.Flags().GetString("description")
			recommendation, _ := cmd.Flags().GetString("recommendation")

			rule, err := buildRule(name, paths, patterns, levelName, description, recommendation)
			if err != nil {
				return err
			}
			if err := saveRule(afero.NewOsFs(), rule, configPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[✓] Rule %q added to %s\n", rule.Name, configPath)
			return nil
		},
	}

	cmd.Flags().BoolP("interactive", "i", false, "Interactive rule creation")
	cmd.Flags().StringP("name", "n", "", "Rule name")
	cmd.Flags().StringSliceP("path", "p", nil, "Path glob (repeatable)")
	cmd.Flags().StringSliceP("pattern", "P", nil, "Content regex (repeatable)")
	cmd.Flags().StringP("level", "l", "medium", "Impact level")
	cmd.Flags().StringP("description", "d", "", "Rule description")
	cmd.Flags().StringP("recommendation", "r", "", "Recommendation shown with findings")

	return cmd
}

func buildRule(name string, paths, patterns []string, levelName, description, recommendation string) (config.Rule, error) {
	if name == "" {
		return config.Rule{}, fmt.Errorf("rule name is required")
	}
	level, err := impact.ParseLevel(levelName)
	if err != nil {
		return config.Rule{}, err
	}
	rule := config.Rule{
		Name:            name,
		Paths:           paths,
		ContentPatterns: patterns,
		ImpactLevel:     level,
		Description:     description,
		Recommendation:  recommendation,
	}
	if err := rule.Validate(); err != nil {
		return config.Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	return rule, nil
}

func saveRule(fs afero.Fs, rule config.Rule, configPath string) error {
	var cfg *config.Config
	if _, err := fs.Stat(configPath); os.IsNotExist(err) {
		cfg = &config.Config{}
	} else {
		var loadErr error
		cfg, loadErr = config.Load(fs, configPath)
		if loadErr != nil {
			return fmt.Errorf("failed to load existing config: %w", loadErr)
		}
	}
	cfg.AddRule(rule)
	return cfg.Save(fs, configPath)
}

// runInteractiveRuleAdd walks through rule creation one prompt at a time.
func runInteractiveRuleAdd(fs afero.Fs, prompter prompt.Prompter, configPath string, cmd *cobra.Command) error {
	defer func() { _ = prompter.Close() }()

	name, err := prompt.TextInput(prompter, "Rule name:")
	if err != nil {
		return err
	}
	pathsInput, err := prompt.TextInput(prompter, "Path globs (comma separated, blank for none):")
	if err != nil {
		return err
	}
	patternsInput, err := prompt.TextInput(prompter, "Content regexes (comma separated, blank for none):")
	if err != nil {
		return err
	}
	levelName, err := prompt.TextInput(prompter, "Impact level (none/low/medium/high/critical):")
	if err != nil {
		return err
	}
	description, err := prompt.TextInput(prompter, "Description:")
	if err != nil {
		return err
	}
	recommendation, err := prompt.TextInput(prompter, "Recommendation:")
	if err != nil {
		return err
	}

	rule, err := buildRule(name, splitAndTrim(pathsInput), splitAndTrim(patternsInput),
		levelName, description, recommendation)
	if err != nil {
		return err
	}
	if err := saveRule(fs, rule, configPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[✓] Rule %q added to %s\n", rule.Name, configPath)
	return nil
}

func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// createRulesTestCommand creates the pattern testing subcommand.
func createRulesTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <pattern> <sample>",
		Short: "Test a glob against a path or a regex against sample text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, sample := args[0], args[1]

			globMatch := false
			if doublestar.ValidatePattern(pattern) {
				globMatch, _ = doublestar.Match(pattern, sample)
			}

			regexMatch := false
			if re, err := regexp.Compile(pattern); err == nil {
				regexMatch = re.MatchString(sample)
			}

			if globMatch || regexMatch {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "[✓] Pattern matches!")
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "[✗] Pattern does not match")
			}
			return nil
		},
	}
}
