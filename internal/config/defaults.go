package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/calder-ops/impactcheck/internal/impact"
)

// DefaultConfig returns a starter rule set covering the usual suspects for
// environment-affecting changes.
func DefaultConfig() *Config {
	cfg := &Config{
		Rules: []Rule{
			{
				Name:           "db_migration",
				Paths:          []string{"migrations/**/*.py", "migrations/**/*.sql"},
				ImpactLevel:    impact.High,
				Description:    "Database schema migration",
				Recommendation: "Coordinate the rollout with the environment owners before merging.",
			},
			{
				Name:            "schema_ddl",
				ContentPatterns: []string{`(?i)\b(CREATE|ALTER|DROP)\s+(TABLE|INDEX|VIEW)\b`},
				ImpactLevel:     impact.High,
				Description:     "DDL statement in diff",
				Recommendation:  "Verify the statement is backward compatible with the running release.",
			},
			{
				Name:           "deployment_config",
				Paths:          []string{"deploy/**", "helm/**/values*.yaml"},
				ImpactLevel:    impact.Medium,
				Description:    "Deployment configuration change",
				Recommendation: "Double-check environment overrides before promoting.",
			},
		},
	}
	return cfg
}

// DefaultConfigYAML returns the starter rule set as YAML bytes.
func DefaultConfigYAML() ([]byte, error) {
	raw := fileFormat{Rules: make(map[string]Rule, len(DefaultConfig().Rules))}
	for _, rule := range DefaultConfig().Rules {
		raw.Rules[rule.Name] = rule
	}
	data, err := yaml.Marshal(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}
	return data, nil
}
