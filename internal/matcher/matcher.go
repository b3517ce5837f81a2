// Package matcher applies the configured rules to a set of changed files.
package matcher

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/calder-ops/impactcheck/internal/config"
	"github.com/calder-ops/impactcheck/internal/gitdiff"
	"github.com/calder-ops/impactcheck/internal/report"
)

// RuleMatcher holds rules with their patterns compiled once.
type RuleMatcher struct {
	rules []compiledRule
}

type compiledRule struct {
	rule    config.Rule
	content []*regexp.Regexp
}

// NewRuleMatcher compiles the rule set. A rule that fails to compile is a
// load-time error, never a silently dead rule.
func NewRuleMatcher(rules []config.Rule) (*RuleMatcher, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		cr := compiledRule{rule: rule}
		for _, pattern := range rule.ContentPatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w: %q: %w",
					rule.Name, config.ErrPatternCompile, pattern, err)
			}
			cr.content = append(cr.content, re)
		}
		for _, glob := range rule.Paths {
			if !doublestar.ValidatePattern(glob) {
				return nil, fmt.Errorf("rule %q: %w: invalid glob %q",
					rule.Name, config.ErrPatternCompile, glob)
			}
		}
		compiled = append(compiled, cr)
	}
	return &RuleMatcher{rules: compiled}, nil
}

// Match produces findings for every (rule, file) pair where either a path glob
// or a content regex hits. Path and content conditions are independent
// triggers; a pair yields at most one finding, recording the first pattern
// that matched it.
func (m *RuleMatcher) Match(files []gitdiff.ChangedFile) []report.Finding {
	var findings []report.Finding
	for _, file := range files {
		for _, cr := range m.rules {
			if matchedBy, ok := cr.matchFile(file); ok {
				findings = append(findings, report.Finding{
					Rule:           cr.rule.Name,
					Path:           file.Path,
					ImpactLevel:    cr.rule.ImpactLevel,
					Description:    cr.rule.Description,
					Recommendation: cr.rule.Recommendation,
					MatchedBy:      matchedBy,
				})
			}
		}
	}
	return findings
}

func (cr *compiledRule) matchFile(file gitdiff.ChangedFile) (string, bool) {
	for _, glob := range cr.rule.Paths {
		// Patterns were validated at compile time.
		if ok, _ := doublestar.Match(glob, file.Path); ok {
			return "path:" + glob, true
		}
	}
	for i, re := range cr.content {
		if re.MatchString(file.Diff) {
			return "content:" + cr.rule.ContentPatterns[i], true
		}
	}
	return "", false
}
