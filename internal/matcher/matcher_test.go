package matcher

import (
	"errors"
	"testing"

	"github.com/calder-ops/impactcheck/internal/config"
	"github.com/calder-ops/impactcheck/internal/gitdiff"
	"github.com/calder-ops/impactcheck/internal/impact"
)

func TestPathOnlyRuleMatchesEmptyDiff(t *testing.T) {
	t.Parallel()

	rule := config.Rule{
		Name:        "db_migration",
		Paths:       []string{"migrations/**/*.py"},
		ImpactLevel: impact.High,
		Description: "Database migration",
	}
	m, err := NewRuleMatcher([]config.Rule{rule})
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	findings := m.Match([]gitdiff.ChangedFile{
		{Path: "migrations/0001_init.py", Diff: ""},
	})
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Rule != "db_migration" {
		t.Errorf("Expected rule db_migration, got %s", findings[0].Rule)
	}
	if findings[0].ImpactLevel != impact.High {
		t.Errorf("Expected high impact, got %v", findings[0].ImpactLevel)
	}
	if findings[0].MatchedBy != "path:migrations/**/*.py" {
		t.Errorf("Unexpected matched-by %q", findings[0].MatchedBy)
	}
}

func TestContentOnlyRuleIgnoresPath(t *testing.T) {
	t.Parallel()

	rule := config.Rule{
		Name:            "schema_ddl",
		ContentPatterns: []string{`CREATE TABLE`},
		ImpactLevel:     impact.High,
	}
	m, err := NewRuleMatcher([]config.Rule{rule})
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	findings := m.Match([]gitdiff.ChangedFile{
		{Path: "scripts/setup.sh", Diff: "+psql -c 'CREATE TABLE users (id int)'\n"},
	})
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Path != "scripts/setup.sh" {
		t.Errorf("Expected finding for scripts/setup.sh, got %s", findings[0].Path)
	}
}

func TestPathAndContentAreIndependentTriggers(t *testing.T) {
	t.Parallel()

	rule := config.Rule{
		Name:            "env_config",
		Paths:           []string{"deploy/**"},
		ContentPatterns: []string{`ENV_NAME`},
		ImpactLevel:     impact.Medium,
	}
	m, err := NewRuleMatcher([]config.Rule{rule})
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	tests := []struct {
		name    string
		file    gitdiff.ChangedFile
		matches bool
	}{
		{"path only", gitdiff.ChangedFile{Path: "deploy/prod.yaml", Diff: "+replicas: 3\n"}, true},
		{"content only", gitdiff.ChangedFile{Path: "app/main.go", Diff: "+os.Getenv(\"ENV_NAME\")\n"}, true},
		{"both", gitdiff.ChangedFile{Path: "deploy/prod.yaml", Diff: "+ENV_NAME: prod\n"}, true},
		{"neither", gitdiff.ChangedFile{Path: "README.md", Diff: "+docs\n"}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			findings := m.Match([]gitdiff.ChangedFile{tt.file})
			if tt.matches && len(findings) != 1 {
				t.Errorf("Expected 1 finding, got %d", len(findings))
			}
			if !tt.matches && len(findings) != 0 {
				t.Errorf("Expected no findings, got %d", len(findings))
			}
		})
	}
}

func TestOneFindingPerRuleFilePair(t *testing.T) {
	t.Parallel()

	rule := config.Rule{
		Name:            "ddl",
		Paths:           []string{"migrations/**", "db/**"},
		ContentPatterns: []string{`CREATE TABLE`, `DROP TABLE`},
		ImpactLevel:     impact.Critical,
	}
	m, err := NewRuleMatcher([]config.Rule{rule})
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	// Path glob, and both content patterns, all hit the same file.
	findings := m.Match([]gitdiff.ChangedFile{
		{Path: "migrations/0002.sql", Diff: "+CREATE TABLE a;\n+DROP TABLE b;\n"},
	})
	if len(findings) != 1 {
		t.Fatalf("Expected exactly 1 finding per (rule, file) pair, got %d", len(findings))
	}
	if findings[0].MatchedBy == "" {
		t.Error("Expected matched-by justification to be recorded")
	}
}

func TestMultipleRulesSameFile(t *testing.T) {
	t.Parallel()

	rules := []config.Rule{
		{Name: "a_paths", Paths: []string{"**/*.sql"}, ImpactLevel: impact.Low},
		{Name: "b_content", ContentPatterns: []string{`DROP`}, ImpactLevel: impact.High},
	}
	m, err := NewRuleMatcher(rules)
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	findings := m.Match([]gitdiff.ChangedFile{
		{Path: "db/drop.sql", Diff: "+DROP TABLE x;\n"},
	})
	if len(findings) != 2 {
		t.Fatalf("Expected 2 findings (one per rule), got %d", len(findings))
	}
}

func TestRecursiveGlobSegments(t *testing.T) {
	t.Parallel()

	rule := config.Rule{
		Name:        "nested",
		Paths:       []string{"migrations/**/*.py"},
		ImpactLevel: impact.High,
	}
	m, err := NewRuleMatcher([]config.Rule{rule})
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	tests := []struct {
		path    string
		matches bool
	}{
		{"migrations/0001_init.py", true},
		{"migrations/app/deep/0002_more.py", true},
		{"migrations/0001_init.sql", false},
		{"src/migrations.py", false},
	}
	for _, tt := range tests {
		findings := m.Match([]gitdiff.ChangedFile{{Path: tt.path}})
		if got := len(findings) == 1; got != tt.matches {
			t.Errorf("path %s: match = %v, want %v", tt.path, got, tt.matches)
		}
	}
}

func TestBadRegexFailsCompile(t *testing.T) {
	t.Parallel()

	rule := config.Rule{
		Name:            "broken",
		ContentPatterns: []string{"(unclosed"},
		ImpactLevel:     impact.Low,
	}
	_, err := NewRuleMatcher([]config.Rule{rule})
	if err == nil {
		t.Fatal("Expected compile error, got nil")
	}
	if !errors.Is(err, config.ErrPatternCompile) {
		t.Errorf("Expected ErrPatternCompile, got %v", err)
	}
}

func TestNoFilesNoFindings(t *testing.T) {
	t.Parallel()

	m, err := NewRuleMatcher([]config.Rule{
		{Name: "any", Paths: []string{"**"}, ImpactLevel: impact.Critical},
	})
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}
	if findings := m.Match(nil); len(findings) != 0 {
		t.Errorf("Expected no findings for empty change set, got %d", len(findings))
	}
}
