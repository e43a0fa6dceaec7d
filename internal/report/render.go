// Package report turns a finished scan run into output: severity-grouped
// text, the JSON schema consumed by CI, a minimal HTML page, or SARIF. It
// also owns the exit-code policy.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/djangoguard/djangoguard/internal/model"
)

// Output formats accepted by the --format flag.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatHTML  = "html"
	FormatSARIF = "sarif"
)

// ParseFormat validates a --format value, defaulting to text.
func ParseFormat(s string) (string, error) {
	switch s {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatHTML, FormatSARIF:
		return s, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, html or sarif)", s)
	}
}

// Sort orders findings by descending severity, keeping discovery order as
// the tiebreak. Every renderer consumes sorted findings, so output is
// deterministic no matter how file traversal interleaved.
func Sort(findings []model.Finding) []model.Finding {
	out := make([]model.Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity
	})
	return out
}

// Render writes the findings to w in the requested format.
func Render(w io.Writer, format string, findings []model.Finding) error {
	switch format {
	case FormatText, "":
		return renderText(w, findings)
	case FormatJSON:
		return renderJSON(w, findings)
	case FormatHTML:
		return renderHTML(w, findings)
	case FormatSARIF:
		return renderSARIF(w, findings)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// ExitCode derives the process exit code from findings alone: 1 when any
// finding sits at or above the threshold, 0 otherwise. Recoverable scanner
// errors never influence it.
func ExitCode(findings []model.Finding, threshold model.Severity) int {
	for _, f := range findings {
		if f.Severity >= threshold {
			return 1
		}
	}
	return 0
}

func countBySeverity(findings []model.Finding) map[model.Severity]int {
	counts := make(map[model.Severity]int, 5)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

func renderText(w io.Writer, findings []model.Finding) error {
	counts := countBySeverity(findings)
	rule := strings.Repeat("=", 80)
	dash := strings.Repeat("-", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SECURITY AUDIT REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Issues Found: %d\n", len(findings))
	for _, sev := range model.Severities() {
		if n := counts[sev]; n > 0 {
			fmt.Fprintf(w, "  %s: %d\n", sev, n)
		}
	}
	fmt.Fprintln(w)

	for _, sev := range model.Severities() {
		group := atSeverity(findings, sev)
		if len(group) == 0 {
			continue
		}
		fmt.Fprintln(w, dash)
		fmt.Fprintf(w, "%s SEVERITY (%d issues)\n", sev, len(group))
		fmt.Fprintln(w, dash)
		for _, f := range group {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "[%s] %s\n", f.Category, f.Title)
			fmt.Fprintf(w, "Description: %s\n", f.Description)
			if loc := f.Location(); loc != "" {
				fmt.Fprintf(w, "Location: %s\n", loc)
			}
			if f.CodeSnippet != nil {
				fmt.Fprintf(w, "Code: %s\n", *f.CodeSnippet)
			}
			if f.Recommendation != nil {
				fmt.Fprintf(w, "Recommendation: %s\n", *f.Recommendation)
			}
			if f.CVE != nil {
				fmt.Fprintf(w, "CVE: %s\n", *f.CVE)
			}
			if f.AutoFixable {
				fmt.Fprintln(w, "Auto-fixable")
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	if n := counts[model.SeverityCritical]; n > 0 {
		fmt.Fprintf(w, "CRITICAL: %d critical issues must be fixed immediately!\n", n)
	}
	if n := counts[model.SeverityHigh]; n > 0 {
		fmt.Fprintf(w, "HIGH: %d high severity issues should be addressed soon.\n", n)
	}
	return nil
}

func atSeverity(findings []model.Finding, sev model.Severity) []model.Finding {
	var out []model.Finding
	for _, f := range findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

type jsonReport struct {
	TotalIssues int             `json:"total_issues"`
	BySeverity  map[string]int  `json:"by_severity"`
	Issues      []model.Finding `json:"issues"`
}

func renderJSON(w io.Writer, findings []model.Finding) error {
	doc := jsonReport{
		TotalIssues: len(findings),
		BySeverity:  make(map[string]int, 5),
		Issues:      findings,
	}
	if doc.Issues == nil {
		doc.Issues = []model.Finding{}
	}
	// All five tokens always appear, zero counts included. encoding/json
	// sorts map keys, so the document is byte-stable run to run.
	for _, sev := range model.Severities() {
		doc.BySeverity[sev.String()] = 0
	}
	for _, f := range findings {
		doc.BySeverity[f.Severity.String()]++
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&doc)
}
