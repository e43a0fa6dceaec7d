package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/djangoguard/djangoguard/internal/model"
)

// manifestNames are the dependency manifests we know how to hand to the
// external lookup tools, in preference order.
var manifestNames = []string{"requirements.txt", "pyproject.toml"}

// ScanDependencies checks the project's dependency manifest against a
// vulnerability database via pip-audit, falling back to safety. This is the
// one scanner allowed to fail soft: a missing tool yields a single Info
// finding, and a timeout or unparsable output yields a warning and zero
// findings, never an aborted run.
func (a *Auditor) ScanDependencies(ctx context.Context, run *model.Run) error {
	manifest := a.findManifest()
	if manifest == "" {
		a.log.Info("no requirements.txt or pyproject.toml found, skipping dependency scan")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.depsTimeout)
	defer cancel()

	if _, err := a.lookPath("pip-audit"); err == nil {
		out, err := runTool(ctx, "pip-audit", "--format", "json", "-r", manifest)
		if err != nil {
			a.log.Warnf("pip-audit failed: %v", err)
			return nil
		}
		findings, err := parsePipAudit(out)
		if err != nil {
			a.log.Warnf("unparsable pip-audit output: %v", err)
			return nil
		}
		run.Add(findings...)
		return nil
	}

	if _, err := a.lookPath("safety"); err == nil {
		out, err := runTool(ctx, "safety", "check", "--json", "--file", manifest)
		if err != nil {
			a.log.Warnf("safety failed: %v", err)
			return nil
		}
		findings, err := parseSafety(out)
		if err != nil {
			a.log.Warnf("unparsable safety output: %v", err)
			return nil
		}
		run.Add(findings...)
		return nil
	}

	run.Add(model.NewFinding(model.SeverityInfo, "Dependencies",
		"No dependency scanner available",
		"Install pip-audit or safety to scan dependencies").
		WithRecommendation("pip install pip-audit"))
	return nil
}

func (a *Auditor) findManifest() string {
	for _, name := range manifestNames {
		p := filepath.Join(a.root, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// runTool executes an external lookup tool and returns its stdout. Both
// pip-audit and safety exit nonzero when they find vulnerabilities, so a
// nonzero exit with JSON on stdout is still a usable result.
func runTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stdout.Len() > 0 {
			return stdout.Bytes(), nil
		}
		return nil, fmt.Errorf("run %s: %v: %s", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

type pipAuditReport struct {
	Dependencies []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Vulns   []struct {
			ID          string   `json:"id"`
			FixVersions []string `json:"fix_versions"`
		} `json:"vulns"`
	} `json:"dependencies"`
}

// parsePipAudit maps each vulnerable package in pip-audit JSON output to one
// High finding. Clean packages are listed by pip-audit too and are skipped.
func parsePipAudit(out []byte) ([]model.Finding, error) {
	var doc pipAuditReport
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, err
	}
	var fs []model.Finding
	for _, dep := range doc.Dependencies {
		if len(dep.Vulns) == 0 {
			continue
		}
		fix := "latest"
		if len(dep.Vulns[0].FixVersions) > 0 {
			fix = dep.Vulns[0].FixVersions[0]
		}
		f := model.NewFinding(model.SeverityHigh, "Dependencies",
			fmt.Sprintf("Vulnerable package: %s", dep.Name),
			fmt.Sprintf("Version %s has known vulnerabilities", dep.Version)).
			WithRecommendation(fmt.Sprintf("Update to version %s", fix))
		if dep.Vulns[0].ID != "" {
			f = f.WithCVE(dep.Vulns[0].ID)
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// parseSafety maps safety's legacy JSON output (a list of
// [package, spec, version, advisory, id] rows) into findings.
func parseSafety(out []byte) ([]model.Finding, error) {
	var rows [][]any
	if err := json.Unmarshal(out, &rows); err != nil {
		return nil, err
	}
	var fs []model.Finding
	for _, row := range rows {
		name := stringAt(row, 0)
		if name == "" {
			continue
		}
		version := stringAt(row, 2)
		desc := firstNonEmpty(stringAt(row, 3),
			fmt.Sprintf("Version %s has known vulnerabilities", version))
		f := model.NewFinding(model.SeverityHigh, "Dependencies",
			fmt.Sprintf("Vulnerable package: %s", name), desc).
			WithRecommendation("Update to a patched version")
		if id := stringAt(row, 4); id != "" {
			f = f.WithCVE(id)
		}
		fs = append(fs, f)
	}
	return fs, nil
}

func stringAt(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
