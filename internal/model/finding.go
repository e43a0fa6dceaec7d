package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity ranks a finding. Values are ordered so that a plain >= compares
// urgency: SeverityCritical > SeverityHigh > ... > SeverityInfo.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Severities lists all levels from most to least severe, the order reports
// render their sections in.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a token like "critical" or "HIGH" to its Severity.
// Unknown tokens are an error, not a default.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical, nil
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "INFO":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity: %q", s)
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var tok string
	if err := json.Unmarshal(b, &tok); err != nil {
		return err
	}
	sev, err := ParseSeverity(tok)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// SnippetLimit bounds the length of code snippets attached to findings so a
// report never reproduces long stretches of source.
const SnippetLimit = 100

// Finding is one detected issue. Values are built with NewFinding and the
// With* helpers, which copy; a Finding is never mutated after it reaches a Run.
type Finding struct {
	Severity       Severity `json:"severity"`
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	FilePath       *string  `json:"file_path"`
	LineNumber     *int     `json:"line_number"`
	CodeSnippet    *string  `json:"code_snippet"`
	Recommendation *string  `json:"recommendation"`
	CVE            *string  `json:"cve"`
	AutoFixable    bool     `json:"auto_fixable"`
}

func NewFinding(sev Severity, category, title, description string) Finding {
	return Finding{
		Severity:    sev,
		Category:    category,
		Title:       title,
		Description: description,
	}
}

// WithFile attaches the originating file without a line number, for findings
// about a file as a whole.
func (f Finding) WithFile(path string) Finding {
	f.FilePath = &path
	return f
}

// WithLocation attaches the originating file and 1-based line.
func (f Finding) WithLocation(path string, line int) Finding {
	f.FilePath = &path
	f.LineNumber = &line
	return f
}

// WithSnippet attaches the offending text, trimmed and truncated to
// SnippetLimit characters.
func (f Finding) WithSnippet(code string) Finding {
	code = strings.TrimSpace(code)
	if len(code) > SnippetLimit {
		code = code[:SnippetLimit]
	}
	f.CodeSnippet = &code
	return f
}

func (f Finding) WithRecommendation(text string) Finding {
	f.Recommendation = &text
	return f
}

// WithCVE attaches a vulnerability reference id (CVE, GHSA, PYSEC, ...).
func (f Finding) WithCVE(id string) Finding {
	f.CVE = &id
	return f
}

// MarkAutoFixable flags the remediation as mechanically applicable. The
// engine never applies fixes; this is classification only.
func (f Finding) MarkAutoFixable() Finding {
	f.AutoFixable = true
	return f
}

// Location renders "path" or "path:line" for human-readable output.
func (f Finding) Location() string {
	if f.FilePath == nil {
		return ""
	}
	if f.LineNumber == nil {
		return *f.FilePath
	}
	return fmt.Sprintf("%s:%d", *f.FilePath, *f.LineNumber)
}
