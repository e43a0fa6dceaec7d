package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/djangoguard/djangoguard/internal/model"
)

// Directories never worth scanning: dependency caches, VCS metadata, and
// generated migrations.
var skipDirs = map[string]bool{
	".git":         true,
	"venv":         true,
	".venv":        true,
	"node_modules": true,
	"__pycache__":  true,
	"migrations":   true,
	".tox":         true,
}

// pythonFiles walks the project root and returns slash-separated paths of
// Python sources relative to it, in lexical order. Lexical order keeps
// discovery order deterministic regardless of worker scheduling.
func (a *Auditor) pythonFiles() ([]string, error) {
	var out []string
	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			a.log.Debugf("skipping %s: %v", p, err)
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}
		rel, err := filepath.Rel(a.root, p)
		if err != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

// scanFiles reads and scans files concurrently, up to a.workers at a time.
// Per-file results are merged back in input order, so the run's discovery
// order does not depend on scheduling. Unreadable or binary files contribute
// nothing and are surfaced only as diagnostics.
func (a *Auditor) scanFiles(files []string, scan func(rel string, lines []string) []model.Finding) []model.Finding {
	workers := a.workers
	if workers <= 0 {
		workers = 1
	}
	results := make([][]model.Finding, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, rel := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rel string) {
			defer wg.Done()
			defer func() { <-sem }()
			data, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(rel)))
			if err != nil {
				a.log.Warnf("cannot read %s: %v", rel, err)
				return
			}
			if looksBinary(data) {
				return
			}
			results[i] = scan(rel, splitLines(data))
		}(i, rel)
	}
	wg.Wait()

	var out []model.Finding
	for _, group := range results {
		out = append(out, group...)
	}
	return out
}

func splitLines(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := len(b)
	if n > sniff {
		n = sniff
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}
