package scanner

import (
	"context"

	"github.com/djangoguard/djangoguard/internal/model"
	"github.com/djangoguard/djangoguard/internal/rules"
)

// A matched secret literal shorter than this is assumed to be an example
// value, not a real credential.
const secretMinLen = 10

// Well-known placeholder values that never count as hardcoded secrets.
var secretPlaceholders = map[string]bool{
	"your-secret-key": true,
	"changeme":        true,
	"dummy":           true,
}

// ScanCode walks every Python source under the root and applies the code
// rule set line by line: injection, unsafe rendering, hardcoded secrets,
// dangerous execution primitives, and path traversal.
func (a *Auditor) ScanCode(_ context.Context, run *model.Run) error {
	files, err := a.pythonFiles()
	if err != nil {
		return err
	}
	found := a.scanFiles(files, func(rel string, lines []string) []model.Finding {
		return applyLineRules(a.rules.Code, rel, lines)
	})
	run.Add(found...)
	return nil
}

// applyLineRules evaluates an ordered rule list against each line of one
// file. Line numbers are 1-based; snippets are truncated by the model.
func applyLineRules(rs []rules.Rule, rel string, lines []string) []model.Finding {
	var out []model.Finding
	for _, r := range rs {
		for i, line := range lines {
			switch r.Kind {
			case rules.KindSecret:
				m := r.Matcher.FindStringSubmatch(line)
				if m == nil || r.Exempt(line) {
					continue
				}
				if val := m[1]; len(val) <= secretMinLen || secretPlaceholders[val] {
					continue
				}
				out = append(out, r.Finding().WithLocation(rel, i+1).WithSnippet(line))
			case rules.KindMatch:
				if r.Matcher.MatchString(line) && !r.Exempt(line) {
					out = append(out, r.Finding().WithLocation(rel, i+1).WithSnippet(line))
				}
			}
		}
	}
	return out
}
