package rules

import (
	"strings"
	"testing"

	"github.com/djangoguard/djangoguard/internal/model"
)

func TestLoadEmbeddedTable(t *testing.T) {
	tbl, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Settings) == 0 || len(tbl.Code) == 0 || len(tbl.Tenancy) == 0 {
		t.Fatalf("empty rule group: settings=%d code=%d tenancy=%d",
			len(tbl.Settings), len(tbl.Code), len(tbl.Tenancy))
	}
	for _, r := range tbl.Code {
		if r.Kind == KindSecret && r.Unless == nil {
			t.Errorf("secret rule %s has no env exemption", r.ID)
		}
	}
}

func TestParseRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"unknown severity",
			`settings:
  - id: x
    kind: match
    pattern: DEBUG
    severity: URGENT
    category: Settings
    title: t
`,
		},
		{
			"unknown kind",
			`code:
  - id: x
    kind: fuzzy
    pattern: DEBUG
    severity: HIGH
    category: Settings
    title: t
`,
		},
		{
			"bad pattern",
			`code:
  - id: x
    kind: match
    pattern: "(["
    severity: HIGH
    category: Settings
    title: t
`,
		},
		{
			"secret without capture group",
			`code:
  - id: x
    kind: secret
    pattern: SECRET
    severity: CRITICAL
    category: Secrets
    title: t
`,
		},
		{
			"missing id",
			`code:
  - kind: match
    pattern: DEBUG
    severity: HIGH
    category: Settings
    title: t
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}

func TestRuleFinding(t *testing.T) {
	tbl, err := Parse([]byte(`settings:
  - id: x
    kind: match
    pattern: DEBUG
    severity: CRITICAL
    category: Settings
    title: DEBUG enabled
    description: bad
    recommendation: turn it off
    auto_fix: true
`))
	if err != nil {
		t.Fatal(err)
	}
	f := tbl.Settings[0].Finding()
	if f.Severity != model.SeverityCritical || f.Category != "Settings" {
		t.Errorf("unexpected shell: %+v", f)
	}
	if f.Recommendation == nil || !strings.Contains(*f.Recommendation, "turn it off") {
		t.Error("recommendation not carried over")
	}
	if !f.AutoFixable {
		t.Error("auto_fix not carried over")
	}
}

func TestExempt(t *testing.T) {
	tbl, err := Parse([]byte(`tenancy:
  - id: x
    kind: match
    pattern: \.objects\.all\(\)
    unless: unfiltered
    severity: MEDIUM
    category: Multi-Tenant
    title: t
`))
	if err != nil {
		t.Fatal(err)
	}
	r := tbl.Tenancy[0]
	if r.Exempt("Model.objects.all()") {
		t.Error("plain call should not be exempt")
	}
	if !r.Exempt("Model.unfiltered().objects.all()") {
		t.Error("unfiltered call should be exempt")
	}
}
