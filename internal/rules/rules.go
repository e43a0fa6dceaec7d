// Package rules loads the detection-rule table shared by the scanners.
// The table is data, not code: each scanner is a generic "apply my rule
// list to this input" loop, and the rule set stays unit-testable without
// touching the filesystem.
package rules

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/djangoguard/djangoguard/internal/model"
)

//go:embed rules.yaml
var defaultRules []byte

// Kind selects how a rule's matcher is interpreted.
type Kind string

const (
	// KindMatch fires when the pattern matches the input.
	KindMatch Kind = "match"
	// KindAbsent fires when the pattern matches nowhere in the input.
	KindAbsent Kind = "absent"
	// KindSecret fires when the pattern's first capture group holds a
	// literal that looks like a real secret (long enough, not a known
	// placeholder) and the unless pattern does not exempt the input.
	KindSecret Kind = "secret"
)

type document struct {
	Settings []ruleSpec `yaml:"settings"`
	Code     []ruleSpec `yaml:"code"`
	Tenancy  []ruleSpec `yaml:"tenancy"`
}

type ruleSpec struct {
	ID             string `yaml:"id"`
	Kind           string `yaml:"kind"`
	Pattern        string `yaml:"pattern"`
	Unless         string `yaml:"unless"`
	Severity       string `yaml:"severity"`
	Category       string `yaml:"category"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Recommendation string `yaml:"recommendation"`
	AutoFix        bool   `yaml:"auto_fix"`
}

// Rule is one compiled detection rule. Rules are immutable after Load and
// safe to share across concurrent scans.
type Rule struct {
	ID             string
	Kind           Kind
	Matcher        *regexp.Regexp
	Unless         *regexp.Regexp // optional exemption, nil when unset
	Severity       model.Severity
	Category       string
	Title          string
	Description    string
	Recommendation string
	AutoFix        bool
}

// Finding builds the finding shell this rule reports. Callers attach the
// location and snippet.
func (r Rule) Finding() model.Finding {
	f := model.NewFinding(r.Severity, r.Category, r.Title, r.Description)
	if r.Recommendation != "" {
		f = f.WithRecommendation(r.Recommendation)
	}
	if r.AutoFix {
		f = f.MarkAutoFixable()
	}
	return f
}

// Exempt reports whether the unless pattern suppresses a match on s.
func (r Rule) Exempt(s string) bool {
	return r.Unless != nil && r.Unless.MatchString(s)
}

// Table holds the ordered rule list for each scanner.
type Table struct {
	Settings []Rule
	Code     []Rule
	Tenancy  []Rule
}

// Load compiles the embedded rule table. An unknown severity token, unknown
// kind, or unparsable pattern is a load error: the auditor refuses to start
// with a partial table rather than silently skipping rules.
func Load() (*Table, error) {
	return Parse(defaultRules)
}

// Parse compiles a rule table from its YAML form.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}

	t := &Table{}
	var err error
	if t.Settings, err = compile("settings", doc.Settings); err != nil {
		return nil, err
	}
	if t.Code, err = compile("code", doc.Code); err != nil {
		return nil, err
	}
	if t.Tenancy, err = compile("tenancy", doc.Tenancy); err != nil {
		return nil, err
	}
	return t, nil
}

func compile(group string, specs []ruleSpec) ([]Rule, error) {
	out := make([]Rule, 0, len(specs))
	for i, s := range specs {
		if s.ID == "" {
			return nil, fmt.Errorf("rule table: %s[%d] has no id", group, i)
		}
		kind := Kind(s.Kind)
		switch kind {
		case KindMatch, KindAbsent, KindSecret:
		default:
			return nil, fmt.Errorf("rule %s: unknown kind %q", s.ID, s.Kind)
		}
		sev, err := model.ParseSeverity(s.Severity)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", s.ID, err)
		}
		matcher, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: bad pattern: %w", s.ID, err)
		}
		if kind == KindSecret && matcher.NumSubexp() < 1 {
			return nil, fmt.Errorf("rule %s: secret pattern needs a capture group for the literal", s.ID)
		}
		var unless *regexp.Regexp
		if s.Unless != "" {
			unless, err = regexp.Compile(s.Unless)
			if err != nil {
				return nil, fmt.Errorf("rule %s: bad unless pattern: %w", s.ID, err)
			}
		}
		if s.Category == "" || s.Title == "" {
			return nil, fmt.Errorf("rule %s: category and title are required", s.ID)
		}
		out = append(out, Rule{
			ID:             s.ID,
			Kind:           kind,
			Matcher:        matcher,
			Unless:         unless,
			Severity:       sev,
			Category:       s.Category,
			Title:          s.Title,
			Description:    s.Description,
			Recommendation: s.Recommendation,
			AutoFix:        s.AutoFix,
		})
	}
	return out, nil
}
