// Package gitdiff enumerates changed files and their diff text between two
// revisions of a git repository.
package gitdiff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sourcegraph/go-diff/diff"
)

const defaultTimeout = 30 * time.Second

// ExcludedPaths lists the tool's own artifacts. Changes to these never produce
// findings, so a rule-set or workflow update cannot gate itself. The legacy
// Python script path stays on the list for branches created before the
// migration.
var ExcludedPaths = []string{
	".github/scripts/sc_environment_impact_check.py",
	".github/impact-rules.yml",
	".github/workflows/impact-check.yml",
	"docs/impact-check.md",
}

// ChangedFile is one file path with the diff hunk text for the comparison
// range. Immutable once enumerated.
type ChangedFile struct {
	Path string
	Diff string
}

// RevisionError reports a base or head reference that cannot be resolved.
type RevisionError struct {
	Ref string
	Err error
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("cannot resolve revision %q: %v", e.Ref, e.Err)
}

func (e *RevisionError) Unwrap() error { return e.Err }

// DiffRetrievalError reports a single file whose diff could not be read. The
// run continues without that file.
type DiffRetrievalError struct {
	Path string
	Err  error
}

func (e *DiffRetrievalError) Error() string {
	return fmt.Sprintf("cannot retrieve diff for %s: %v", e.Path, e.Err)
}

func (e *DiffRetrievalError) Unwrap() error { return e.Err }

// Repo wraps read-only git access to a working directory.
type Repo struct {
	dir     string
	timeout time.Duration
}

func NewRepo(dir string) *Repo {
	return &Repo{dir: dir, timeout: defaultTimeout}
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	ctx2, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx2, "git", args...)
	if r.dir != "" {
		cmd.Dir = r.dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), msg, err)
	}
	return stdout.String(), nil
}

// Resolve verifies ref exists and returns its commit SHA.
func (r *Repo) Resolve(ctx context.Context, ref string) (string, error) {
	out, err := r.git(ctx, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", &RevisionError{Ref: ref, Err: err}
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles enumerates files changed between base and head using merge-base
// (three-dot) semantics, with the self-exclusion list applied. Files whose
// diff cannot be read are skipped and reported in the returned warnings.
func (r *Repo) ChangedFiles(ctx context.Context, base, head string) ([]ChangedFile, []string, error) {
	if _, err := r.Resolve(ctx, base); err != nil {
		return nil, nil, err
	}
	if _, err := r.Resolve(ctx, head); err != nil {
		return nil, nil, err
	}

	rangeSpec := base + "..." + head
	out, err := r.git(ctx, "diff", "--name-only", rangeSpec)
	if err != nil {
		return nil, nil, fmt.Errorf("listing changed files: %w", err)
	}

	var files []ChangedFile
	var warnings []string
	for _, path := range strings.Split(strings.TrimSpace(out), "\n") {
		if path == "" || isExcluded(path) {
			continue
		}
		text, diffErr := r.fileDiff(ctx, rangeSpec, path)
		if diffErr != nil {
			warnings = append(warnings, diffErr.Error())
			continue
		}
		files = append(files, ChangedFile{Path: path, Diff: text})
	}
	return files, warnings, nil
}

// fileDiff fetches one file's diff and reduces it to hunk text, so content
// patterns only ever see changed lines.
func (r *Repo) fileDiff(ctx context.Context, rangeSpec, path string) (string, error) {
	out, err := r.git(ctx, "diff", rangeSpec, "--", path)
	if err != nil {
		return "", &DiffRetrievalError{Path: path, Err: err}
	}
	text, err := HunkText([]byte(out))
	if err != nil {
		return "", &DiffRetrievalError{Path: path, Err: err}
	}
	return text, nil
}

// HunkText extracts the concatenated hunk bodies from a single-file unified
// diff. An empty diff (e.g. a pure mode change) yields an empty string.
func HunkText(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}
	fd, err := diff.ParseFileDiff(trimmed)
	if err != nil {
		return "", fmt.Errorf("parsing unified diff: %w", err)
	}
	var b strings.Builder
	for _, hunk := range fd.Hunks {
		b.Write(hunk.Body)
	}
	return b.String(), nil
}

func isExcluded(path string) bool {
	for _, excluded := range ExcludedPaths {
		if path == excluded {
			return true
		}
	}
	return false
}
