package scanner

import (
	"context"
	"testing"

	"github.com/djangoguard/djangoguard/internal/model"
)

func scanSettings(t *testing.T, content string) []model.Finding {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "config/settings.py", content)
	a := newTestAuditor(t, root)
	run := model.NewRun()
	if err := a.ScanSettings(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	return run.Findings()
}

func TestSettingsDebugEnabled(t *testing.T) {
	fs := scanSettings(t, "DEBUG = True\n")
	if n := countTitle(fs, "DEBUG enabled"); n != 1 {
		t.Errorf("DEBUG enabled findings = %d, want 1", n)
	}
	// the flag is present, so the absence rule must stay quiet
	if n := countTitle(fs, "DEBUG not configured"); n != 0 {
		t.Errorf("DEBUG not configured findings = %d, want 0", n)
	}
	for _, f := range fs {
		if f.Title == "DEBUG enabled" {
			if f.Severity != model.SeverityCritical {
				t.Errorf("severity = %s, want CRITICAL", f.Severity)
			}
			if f.FilePath == nil || *f.FilePath != "config/settings.py" {
				t.Errorf("file path = %v", f.FilePath)
			}
		}
	}
}

func TestSettingsDebugAbsent(t *testing.T) {
	fs := scanSettings(t, "ALLOWED_HOSTS = ['example.com']\n")
	if n := countTitle(fs, "DEBUG not configured"); n != 1 {
		t.Errorf("DEBUG not configured findings = %d, want 1", n)
	}
	if n := countTitle(fs, "DEBUG enabled"); n != 0 {
		t.Errorf("DEBUG enabled findings = %d, want 0", n)
	}
}

func TestSettingsWildcardHosts(t *testing.T) {
	fs := scanSettings(t, "DEBUG = False\nALLOWED_HOSTS = ['*']\n")
	if n := countTitle(fs, "ALLOWED_HOSTS wildcard"); n != 1 {
		t.Errorf("wildcard findings = %d, want 1", n)
	}
}

func TestSettingsSecretKey(t *testing.T) {
	hardcoded := scanSettings(t, "SECRET_KEY = 'k3ep-me-s3cret-please'\n")
	if n := countTitle(hardcoded, "Hardcoded SECRET_KEY"); n != 1 {
		t.Errorf("hardcoded findings = %d, want 1", n)
	}
	env := scanSettings(t, "import os\nSECRET_KEY = os.environ['DJANGO_SECRET_KEY']\n")
	if n := countTitle(env, "Hardcoded SECRET_KEY"); n != 0 {
		t.Errorf("env-sourced findings = %d, want 0", n)
	}
}

func TestSettingsTransportSecurity(t *testing.T) {
	fs := scanSettings(t, "DEBUG = False\nSECURE_SSL_REDIRECT = False\n")
	if n := countTitle(fs, "Insecure setting: SECURE_SSL_REDIRECT = False"); n != 1 {
		t.Errorf("disabled findings = %d, want 1", n)
	}
	// the name is present, so the missing-setting rule must not also fire
	if n := countTitle(fs, "Missing security setting: SECURE_SSL_REDIRECT"); n != 0 {
		t.Errorf("missing findings = %d, want 0", n)
	}
	if n := countTitle(fs, "Missing security setting: SESSION_COOKIE_SECURE"); n != 1 {
		t.Errorf("session cookie missing findings = %d, want 1", n)
	}
}

func TestSettingsMissingMiddleware(t *testing.T) {
	fs := scanSettings(t, `MIDDLEWARE = [
    'django.middleware.security.SecurityMiddleware',
]
`)
	if n := countTitle(fs, "Missing security middleware: SecurityMiddleware"); n != 0 {
		t.Errorf("present middleware flagged %d times", n)
	}
	if n := countTitle(fs, "Missing security middleware: CsrfViewMiddleware"); n != 1 {
		t.Errorf("csrf middleware findings = %d, want 1", n)
	}
	if n := countTitle(fs, "Missing security middleware: XFrameOptionsMiddleware"); n != 1 {
		t.Errorf("clickjacking middleware findings = %d, want 1", n)
	}
}

func TestSettingsFileMissing(t *testing.T) {
	root := t.TempDir()
	a := newTestAuditor(t, root)
	run := model.NewRun()
	if err := a.ScanSettings(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if run.Len() != 0 {
		t.Errorf("findings without a settings file: %d", run.Len())
	}
}
