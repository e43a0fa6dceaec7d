package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/djangoguard/djangoguard/internal/model"
	"github.com/djangoguard/djangoguard/internal/rules"
)

// ScanSettings checks the project's Django settings file against the
// settings rule set. Every rule is evaluated; one hit never short-circuits
// another, so a single file can yield many findings.
func (a *Auditor) ScanSettings(_ context.Context, run *model.Run) error {
	rel, err := a.findSettings()
	if err != nil {
		return err
	}
	if rel == "" {
		a.log.Warn("could not find settings.py under project root")
		return nil
	}

	data, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(rel)))
	if err != nil {
		a.log.Warnf("cannot read %s: %v", rel, err)
		return nil
	}
	content := string(data)

	var found []model.Finding
	for _, r := range a.rules.Settings {
		if settingsRuleFires(r, content) {
			found = append(found, r.Finding().WithFile(rel))
		}
	}
	run.Add(found...)
	return nil
}

// settingsRuleFires evaluates one rule against the whole file content.
func settingsRuleFires(r rules.Rule, content string) bool {
	if r.Kind == rules.KindAbsent {
		return !r.Matcher.MatchString(content)
	}
	return r.Matcher.MatchString(content) && !r.Exempt(content)
}

// findSettings returns the first settings.py under the root in lexical walk
// order, or "" when the project has none.
func (a *Auditor) findSettings() (string, error) {
	var found string
	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == "settings.py" {
			rel, rerr := filepath.Rel(a.root, p)
			if rerr == nil {
				found = filepath.ToSlash(rel)
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return found, nil
}
