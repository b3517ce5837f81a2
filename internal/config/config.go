// Package config loads and validates the impact rule set.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/calder-ops/impactcheck/internal/impact"
)

// DefaultPath is the conventional rule-set location inside a repository.
const DefaultPath = ".github/impact-rules.yml"

// ErrConfigParse wraps any failure to read or decode the rule file.
var ErrConfigParse = errors.New("config parse error")

// ErrPatternCompile marks a rule whose regex or glob does not compile. Broken
// rules refuse to load rather than silently matching nothing.
var ErrPatternCompile = errors.New("pattern compile error")

// Rule is one named classification rule. At least one of Paths or
// ContentPatterns must be present.
type Rule struct {
	Name            string       `yaml:"-"`
	Paths           []string     `yaml:"paths,omitempty"`
	ContentPatterns []string     `yaml:"content_patterns,omitempty"`
	ImpactLevel     impact.Level `yaml:"impact_level"`
	Description     string       `yaml:"description"`
	Recommendation  string       `yaml:"recommendation"`
}

// Config is the loaded rule set. Rules are kept name-sorted so a run visits
// them in a deterministic order regardless of YAML map iteration.
type Config struct {
	Rules []Rule
}

type fileFormat struct {
	Rules map[string]Rule `yaml:"rules"`
}

// Load reads and validates the rule set at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrConfigParse, path, err)
	}
	return LoadFromYAML(data)
}

// LoadFromYAML decodes and validates a rule set from YAML bytes.
func LoadFromYAML(data []byte) (*Config, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if len(raw.Rules) == 0 {
		return nil, fmt.Errorf("%w: config must define at least one rule", ErrConfigParse)
	}

	names := make([]string, 0, len(raw.Rules))
	for name := range raw.Rules {
		names = append(names, name)
	}
	sort.Strings(names)

	cfg := &Config{Rules: make([]Rule, 0, len(raw.Rules))}
	for _, name := range names {
		rule := raw.Rules[name]
		rule.Name = name
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		cfg.Rules = append(cfg.Rules, rule)
	}
	return cfg, nil
}

// Validate checks a single rule's shape and compiles its patterns.
func (r *Rule) Validate() error {
	if len(r.Paths) == 0 && len(r.ContentPatterns) == 0 {
		return fmt.Errorf("%w: rule must set paths or content_patterns", ErrConfigParse)
	}
	for _, glob := range r.Paths {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("%w: invalid glob %q", ErrPatternCompile, glob)
		}
	}
	for _, pattern := range r.ContentPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: invalid regex %q: %w", ErrPatternCompile, pattern, err)
		}
	}
	return nil
}

// AddRule appends a rule, replacing any existing rule with the same name.
func (c *Config) AddRule(rule Rule) {
	for i, existing := range c.Rules {
		if existing.Name == rule.Name {
			c.Rules[i] = rule
			return
		}
	}
	c.Rules = append(c.Rules, rule)
	sort.Slice(c.Rules, func(i, j int) bool { return c.Rules[i].Name < c.Rules[j].Name })
}

// Save writes the rule set back to path in the file format Load reads.
func (c *Config) Save(fs afero.Fs, path string) error {
	raw := fileFormat{Rules: make(map[string]Rule, len(c.Rules))}
	for _, rule := range c.Rules {
		raw.Rules[rule.Name] = rule
	}
	data, err := yaml.Marshal(&raw)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
