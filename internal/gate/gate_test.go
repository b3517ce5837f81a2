package gate

import (
	"testing"

	"github.com/calder-ops/impactcheck/internal/impact"
)

func TestShouldFail(t *testing.T) {
	t.Parallel()

	levelPtr := func(l impact.Level) *impact.Level { return &l }

	tests := []struct {
		name      string
		aggregate impact.Level
		threshold *impact.Level
		want      bool
	}{
		{"no threshold is report-only", impact.Critical, nil, false},
		{"aggregate equals threshold", impact.High, levelPtr(impact.High), true},
		{"aggregate below threshold", impact.Medium, levelPtr(impact.High), false},
		{"aggregate above threshold", impact.Critical, levelPtr(impact.Low), true},
		{"none below low", impact.None, levelPtr(impact.Low), false},
		{"none threshold always fails", impact.None, levelPtr(impact.None), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldFail(tt.aggregate, tt.threshold); got != tt.want {
				t.Errorf("ShouldFail(%v, %v) = %v, want %v", tt.aggregate, tt.threshold, got, tt.want)
			}
		})
	}
}
