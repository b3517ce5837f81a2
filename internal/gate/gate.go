// Package gate decides whether a report's aggregate level fails the run.
package gate

import "github.com/calder-ops/impactcheck/internal/impact"

// ShouldFail reports whether the aggregate level meets or exceeds the
// threshold. A nil threshold means report-only mode: never fail.
func ShouldFail(aggregate impact.Level, threshold *impact.Level) bool {
	if threshold == nil {
		return false
	}
	return aggregate >= *threshold
}
