package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-ops/impactcheck/internal/config"
	"github.com/calder-ops/impactcheck/internal/impact"
	"github.com/calder-ops/impactcheck/internal/prompt"
)

func TestListRulesMissingConfig(t *testing.T) {
	t.Parallel()

	out, err := listRules(afero.NewMemMapFs(), "absent.yml")
	require.NoError(t, err)
	assert.Contains(t, out, "No rules found")
}

func TestListRulesFormatsRules(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "rules.yml", []byte(`rules:
  db_migration:
    paths: ["migrations/**"]
    impact_level: high
    description: Database migration
`), 0o644))

	out, err := listRules(fs, "rules.yml")
	require.NoError(t, err)
	assert.Contains(t, out, "db_migration (high)")
	assert.Contains(t, out, "Paths: migrations/**")
}

func TestBuildRule(t *testing.T) {
	t.Parallel()

	rule, err := buildRule("secrets", nil, []string{`(?i)api_key`}, "critical", "creds", "rotate")
	require.NoError(t, err)
	assert.Equal(t, impact.Critical, rule.ImpactLevel)
	assert.Equal(t, "secrets", rule.Name)
}

func TestBuildRuleValidation(t *testing.T) {
	t.Parallel()

	_, err := buildRule("", []string{"a/**"}, nil, "low", "", "")
	assert.Error(t, err, "name required")

	_, err = buildRule("x", nil, nil, "low", "", "")
	assert.Error(t, err, "at least one condition required")

	_, err = buildRule("x", []string{"a/**"}, nil, "gigantic", "", "")
	assert.Error(t, err, "level must parse")

	_, err = buildRule("x", nil, []string{"(bad"}, "low", "", "")
	assert.Error(t, err, "regex must compile")
}

func TestSaveRuleCreatesAndUpdatesConfig(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	rule, err := buildRule("deploy", []string{"deploy/**"}, nil, "medium", "deploy change", "")
	require.NoError(t, err)

	require.NoError(t, saveRule(fs, rule, "rules.yml"))

	cfg, err := config.Load(fs, "rules.yml")
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)

	second, err := buildRule("secrets", nil, []string{"key"}, "critical", "", "")
	require.NoError(t, err)
	require.NoError(t, saveRule(fs, second, "rules.yml"))

	cfg, err = config.Load(fs, "rules.yml")
	require.NoError(t, err)
	assert.Len(t, cfg.Rules, 2)
}

type scriptedPrompter struct {
	responses []string
	calls     int
}

func (s *scriptedPrompter) Prompt(string) (string, error) {
	response := s.responses[s.calls]
	s.calls++
	return response, nil
}

func (s *scriptedPrompter) Close() error { return nil }

var _ prompt.Prompter = (*scriptedPrompter)(nil)

func TestInteractiveRuleAdd(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	p := &scriptedPrompter{responses: []string{
		"db_migration",
		"migrations/**, db/**",
		"",
		"high",
		"Database migration",
		"Coordinate the rollout.",
	}}

	cmd := createRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runInteractiveRuleAdd(fs, p, "rules.yml", cmd))

	cfg, err := config.Load(fs, "rules.yml")
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, []string{"migrations/**", "db/**"}, cfg.Rules[0].Paths)
	assert.Equal(t, impact.High, cfg.Rules[0].ImpactLevel)
}

func TestSplitAndTrim(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,"))
	assert.Nil(t, splitAndTrim("  "))
}

func TestRulesTestCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		sample  string
		matches bool
	}{
		{"glob match", "migrations/**/*.py", "migrations/app/0001.py", true},
		{"glob no match", "migrations/**/*.py", "src/main.go", false},
		{"regex match", `CREATE\s+TABLE`, "CREATE  TABLE users", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd := createRootCommand()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"rules", "test", tt.pattern, tt.sample})
			require.NoError(t, cmd.Execute())
			if tt.matches {
				assert.Contains(t, out.String(), "matches!")
			} else {
				assert.Contains(t, out.String(), "does not match")
			}
		})
	}
}
