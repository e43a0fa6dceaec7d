package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/djangoguard/djangoguard/internal/logging"
	"github.com/djangoguard/djangoguard/internal/model"
	"github.com/djangoguard/djangoguard/internal/report"
	"github.com/djangoguard/djangoguard/internal/rules"
	"github.com/djangoguard/djangoguard/internal/scanner"
)

var (
	scanKind     string
	outputFormat string
	projectRoot  string
	failOn       string
	autoFix      bool
	reportOnly   bool
	debugMode    bool
)

var auditCmd = &cobra.Command{
	Use:          "audit",
	Short:        "Scan a Django project for security misconfigurations and vulnerable code",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&scanKind, "scan", scanner.KindAll, "Scanner to run (settings, code, dependencies, tenancy, all)")
	auditCmd.Flags().StringVarP(&outputFormat, "format", "f", report.FormatText, "Output format (text, json, html, sarif)")
	auditCmd.Flags().StringVar(&projectRoot, "project-root", ".", "Django project root directory")
	auditCmd.Flags().StringVar(&failOn, "fail-on", "", "Exit 1 when findings at this severity or higher exist (critical, high, medium, low)")
	auditCmd.Flags().BoolVar(&autoFix, "auto-fix", false, "Accepted for compatibility; fixes are only classified, never applied")
	auditCmd.Flags().BoolVar(&reportOnly, "report-only", false, "Report only, never modify files")
	auditCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	log, err := logging.New(debugMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	kinds, err := scanner.Kinds(scanKind)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	threshold := model.SeverityHigh
	if failOn != "" {
		if threshold, err = model.ParseSeverity(failOn); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}

	info, err := os.Stat(projectRoot)
	if err != nil {
		return fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory", projectRoot)
	}

	tbl, err := rules.Load()
	if err != nil {
		return err
	}

	if autoFix && !reportOnly {
		log.Warn("auto-fix requested: findings are classified as fixable but never rewritten")
	}

	run := model.NewRun()
	aud := scanner.New(projectRoot, tbl, log)
	for _, kind := range kinds {
		log.Infof("running %s scan", kind)
		if err := aud.Scan(cmd.Context(), kind, run); err != nil {
			return err
		}
	}

	findings := report.Sort(run.Findings())
	if err := report.Render(os.Stdout, format, findings); err != nil {
		return err
	}

	log.Sync()
	os.Exit(report.ExitCode(findings, threshold))
	return nil
}
