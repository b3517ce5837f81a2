package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/calder-ops/impactcheck/internal/impact"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatGitHub   Format = "github"
	FormatText     Format = "text"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatGitHub:
		return FormatGitHub, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q: must be json, markdown, github or text", s)
	}
}

// Render serializes the report in the requested format. Rendering never
// reorders findings beyond the documented severity grouping.
func (r *Report) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		return r.renderJSON()
	case FormatMarkdown:
		return r.renderMarkdown(), nil
	case FormatGitHub:
		return r.renderGitHub(), nil
	case FormatText:
		return r.renderText(), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

func (r *Report) renderJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func (r *Report) renderMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Environment impact: `%s`\n\n", r.ImpactLevel)
	if len(r.Findings) == 0 {
		b.WriteString("No impacting changes detected.\n")
	}
	for level := impact.Critical; level >= impact.None; level-- {
		group := r.findingsAt(level)
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", strings.ToUpper(level.String()))
		for _, f := range group {
			fmt.Fprintf(&b, "- **%s** `%s`: %s\n", f.Rule, f.Path, f.Description)
			if f.Recommendation != "" {
				fmt.Fprintf(&b, "  - Recommendation: %s\n", f.Recommendation)
			}
		}
		b.WriteString("\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("### Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

// renderGitHub emits one workflow-command annotation per finding so results
// surface inline on the pull request.
func (r *Report) renderGitHub() string {
	var b strings.Builder
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "::%s file=%s::[%s] %s (impact: %s). %s\n",
			annotationKind(f.ImpactLevel), f.Path, f.Rule, f.Description, f.ImpactLevel, f.Recommendation)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "::warning::%s\n", w)
	}
	return b.String()
}

func annotationKind(level impact.Level) string {
	switch {
	case level >= impact.High:
		return "error"
	case level == impact.Medium:
		return "warning"
	default:
		return "notice"
	}
}

func (r *Report) renderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Environment impact: %s\n", colorize(r.ImpactLevel, strings.ToUpper(r.ImpactLevel.String())))
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  %s %s (%s): %s\n",
			colorize(f.ImpactLevel, "•"), f.Path, f.Rule, f.Description)
		if f.Recommendation != "" {
			fmt.Fprintf(&b, "      %s\n", f.Recommendation)
		}
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  %s %s\n", color.YellowString("warning:"), w)
	}
	return b.String()
}

func colorize(level impact.Level, s string) string {
	switch {
	case level >= impact.High:
		return color.RedString(s)
	case level == impact.Medium:
		return color.YellowString(s)
	case level == impact.Low:
		return color.CyanString(s)
	default:
		return color.GreenString(s)
	}
}

func (r *Report) findingsAt(level impact.Level) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.ImpactLevel == level {
			out = append(out, f)
		}
	}
	return out
}
