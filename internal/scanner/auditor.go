// Package scanner implements the analysis strategies: settings, code,
// tenancy, and dependencies. Each scanner applies its slice of the rule
// table to one artifact kind and appends findings to the shared run.
package scanner

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/djangoguard/djangoguard/internal/model"
	"github.com/djangoguard/djangoguard/internal/rules"
)

// Artifact kinds accepted by the --scan flag.
const (
	KindSettings     = "settings"
	KindCode         = "code"
	KindDependencies = "dependencies"
	KindTenancy      = "tenancy"
	KindAll          = "all"
)

// Kinds expands a --scan selection into the list of scanners to run.
func Kinds(selection string) ([]string, error) {
	switch selection {
	case KindAll, "":
		return []string{KindSettings, KindCode, KindDependencies, KindTenancy}, nil
	case KindSettings, KindCode, KindDependencies, KindTenancy:
		return []string{selection}, nil
	default:
		return nil, fmt.Errorf("unknown scan kind %q (want settings, code, dependencies, tenancy or all)", selection)
	}
}

// Auditor runs scanners against one project root with a shared rule table.
type Auditor struct {
	root        string
	rules       *rules.Table
	log         *zap.SugaredLogger
	workers     int
	depsTimeout time.Duration

	// lookPath resolves external tool binaries; swapped in tests.
	lookPath func(string) (string, error)
}

func New(root string, tbl *rules.Table, log *zap.SugaredLogger) *Auditor {
	return &Auditor{
		root:        root,
		rules:       tbl,
		log:         log,
		workers:     runtime.GOMAXPROCS(0),
		depsTimeout: 60 * time.Second,
		lookPath:    exec.LookPath,
	}
}

// Scan dispatches one artifact kind to its scanner and records it on the run.
func (a *Auditor) Scan(ctx context.Context, kind string, run *model.Run) error {
	fn, ok := a.registry()[kind]
	if !ok {
		return fmt.Errorf("scanner %q not supported", kind)
	}
	run.MarkScanner(kind)
	return fn(ctx, run)
}

func (a *Auditor) registry() map[string]func(context.Context, *model.Run) error {
	return map[string]func(context.Context, *model.Run) error{
		KindSettings:     a.ScanSettings,
		KindCode:         a.ScanCode,
		KindDependencies: a.ScanDependencies,
		KindTenancy:      a.ScanTenancy,
	}
}
