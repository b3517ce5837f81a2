// Package report holds the classification result and its output formats.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/calder-ops/impactcheck/internal/impact"
)

// Finding is one rule matched against one changed file.
type Finding struct {
	Rule           string       `json:"rule"`
	Path           string       `json:"path"`
	ImpactLevel    impact.Level `json:"impact_level"`
	Description    string       `json:"description"`
	Recommendation string       `json:"recommendation"`
	MatchedBy      string       `json:"matched_by,omitempty"`
}

// Report is the full finding list plus the aggregate impact level. Warnings
// carry non-fatal per-file errors and never influence the aggregate.
type Report struct {
	ImpactLevel impact.Level `json:"impact_level"`
	Findings    []Finding    `json:"findings"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// New builds a report, computing the aggregate as the maximum finding level,
// or none when there are no findings.
func New(findings []Finding, warnings []string) *Report {
	return &Report{
		ImpactLevel: Aggregate(findings),
		Findings:    findings,
		Warnings:    warnings,
	}
}

// Aggregate returns the maximum impact level across findings. Deterministic
// and independent of finding order.
func Aggregate(findings []Finding) impact.Level {
	level := impact.None
	for _, f := range findings {
		level = impact.Max(level, f.ImpactLevel)
	}
	return level
}

// ParseJSON decodes a report previously produced by the json format.
func ParseJSON(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report JSON: %w", err)
	}
	return &r, nil
}
