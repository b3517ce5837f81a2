package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calder-ops/impactcheck/internal/config"
	"github.com/calder-ops/impactcheck/internal/gate"
	"github.com/calder-ops/impactcheck/internal/gitdiff"
	"github.com/calder-ops/impactcheck/internal/history"
	"github.com/calder-ops/impactcheck/internal/impact"
	"github.com/calder-ops/impactcheck/internal/logging"
	"github.com/calder-ops/impactcheck/internal/matcher"
	"github.com/calder-ops/impactcheck/internal/report"
	"github.com/calder-ops/impactcheck/internal/storage"
)

// createCheckCommand creates the check command, the main classification
// pipeline: enumerate changes, match rules, render, gate.
func createCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Classify the impact of changes between two revisions",
		RunE:  runCheck,
	}

	cmd.Flags().String("base", "", "Base revision (e.g. the merge target)")
	cmd.Flags().String("head", "HEAD", "Head revision")
	cmd.Flags().StringP("format", "f", "text", "Output format (json, markdown, github, text)")
	cmd.Flags().String("fail-on", "", "Fail when aggregate impact meets this level (report-only if unset)")
	cmd.Flags().String("repo", ".", "Path to the git repository")
	cmd.Flags().Bool("debug", false, "Enable debug logging")
	cmd.Flags().Bool("no-history", false, "Skip recording this run in the local history")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	base, _ := cmd.Flags().GetString("base")
	head, _ := cmd.Flags().GetString("head")
	repoDir, _ := cmd.Flags().GetString("repo")
	debug, _ := cmd.Flags().GetBool("debug")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	formatName, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var threshold *impact.Level
	if failOn, _ := cmd.Flags().GetString("fail-on"); failOn != "" {
		level, parseErr := impact.ParseLevel(failOn)
		if parseErr != nil {
			return parseErr
		}
		threshold = &level
	}

	fs := afero.NewOsFs()
	ctx := setupLogging(cmd.Context(), fs, repoDir, debug)
	log := logging.Get(ctx)

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return err
	}

	ruleMatcher, err := matcher.NewRuleMatcher(cfg.Rules)
	if err != nil {
		return err
	}

	repo := gitdiff.NewRepo(repoDir)
	baseSHA, err := repo.Resolve(ctx, base)
	if err != nil {
		return err
	}
	headSHA, err := repo.Resolve(ctx, head)
	if err != nil {
		return err
	}

	files, warnings, err := repo.ChangedFiles(ctx, base, head)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		log.Warn().Str("base", base).Str("head", head).Msg(warning)
	}

	rep := report.New(ruleMatcher.Match(files), warnings)
	log.Info().
		Str("base_sha", baseSHA).
		Str("head_sha", headSHA).
		Int("changed_files", len(files)).
		Int("findings", len(rep.Findings)).
		Stringer("impact_level", rep.ImpactLevel).
		Msg("check complete")

	out, err := rep.Render(format)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), out)

	if !noHistory {
		recordRun(ctx, fs, history.Entry{
			Base:         base,
			Head:         head,
			BaseSHA:      baseSHA,
			HeadSHA:      headSHA,
			ImpactLevel:  rep.ImpactLevel,
			FindingCount: len(rep.Findings),
			CreatedAt:    time.Now(),
		})
	}

	if gate.ShouldFail(rep.ImpactLevel, threshold) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "impact level %s meets fail threshold %s\n",
			rep.ImpactLevel, *threshold)
		return &ExitError{Code: exitThreshold}
	}
	return nil
}

// setupLogging attaches a file-backed logger to the context, degrading to a
// discard logger when the data directory is unavailable (e.g. locked-down CI
// runners).
func setupLogging(ctx context.Context, fs afero.Fs, repoDir string, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logCtx, err := logging.New(ctx, fs, logging.Config{Repo: repoDir, Level: level})
	if err != nil {
		logCtx, _ = logging.New(ctx, nil, logging.Config{Writer: io.Discard, Repo: repoDir, Level: level})
	}
	return logCtx
}

// recordRun stores the run in local history. Best effort: a history failure
// must never change the check outcome.
func recordRun(ctx context.Context, fs afero.Fs, entry history.Entry) {
	log := logging.Get(ctx)
	dbPath, err := storage.New(fs).GetHistoryPath()
	if err != nil {
		log.Warn().Err(err).Msg("skipping history record")
		return
	}
	store, err := history.Open(dbPath)
	if err != nil {
		log.Warn().Err(err).Msg("skipping history record")
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Msg("failed to record run history")
	}
}
