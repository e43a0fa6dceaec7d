package scanner

import (
	"context"
	"path"
	"strings"

	"github.com/djangoguard/djangoguard/internal/model"
)

// ScanTenancy flags data-access calls that lack a tenant-scoping predicate.
// The check is deliberately loose: it trades precision for recall, and each
// finding's description says so. Admin code is excluded here (and only
// here), since the admin layer is permitted to bypass tenant scoping.
func (a *Auditor) ScanTenancy(_ context.Context, run *model.Run) error {
	files, err := a.pythonFiles()
	if err != nil {
		return err
	}
	var scannable []string
	for _, rel := range files {
		if privileged(rel) {
			continue
		}
		scannable = append(scannable, rel)
	}
	found := a.scanFiles(scannable, func(rel string, lines []string) []model.Finding {
		return applyLineRules(a.rules.Tenancy, rel, lines)
	})
	run.Add(found...)
	return nil
}

// privileged reports whether rel belongs to the admin layer: admin.py
// modules and anything under an admin/ directory.
func privileged(rel string) bool {
	if path.Base(rel) == "admin.py" {
		return true
	}
	for _, part := range strings.Split(path.Dir(rel), "/") {
		if part == "admin" {
			return true
		}
	}
	return false
}
