package scanner

import (
	"context"
	"strings"
	"testing"

	"github.com/djangoguard/djangoguard/internal/model"
)

func scanCode(t *testing.T, files map[string]string) []model.Finding {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		writeFile(t, root, rel, content)
	}
	a := newTestAuditor(t, root)
	run := model.NewRun()
	if err := a.ScanCode(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	return run.Findings()
}

func TestCodeSQLInjectionLineNumber(t *testing.T) {
	fs := scanCode(t, map[string]string{
		"app/views.py": "from django.db import connection\n" +
			"cursor = connection.cursor()\n" +
			"cursor.execute(f\"SELECT * FROM users WHERE id = {uid}\")\n",
	})
	var hit *model.Finding
	for i, f := range fs {
		if f.Category == "SQL Injection" {
			hit = &fs[i]
		}
	}
	if hit == nil {
		t.Fatal("no injection finding")
	}
	if hit.Severity != model.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", hit.Severity)
	}
	if hit.LineNumber == nil || *hit.LineNumber != 3 {
		t.Errorf("line = %v, want 3", hit.LineNumber)
	}
	if hit.CodeSnippet == nil || !strings.Contains(*hit.CodeSnippet, "cursor.execute") {
		t.Errorf("snippet = %v", hit.CodeSnippet)
	}
}

func TestCodeHardcodedSecret(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"real secret", `SECRET = "aVeryLongActualSecretValue123"`, 1},
		{"env accessor", `SECRET = os.environ.get("SECRET")`, 0},
		{"placeholder", `SECRET_KEY = "your-secret-key"`, 0},
		{"too short", `SECRET_KEY = "short"`, 0},
		{"api key", `api_key = "sk-live-0123456789abcdef"`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := scanCode(t, map[string]string{"app/conf.py": tt.line + "\n"})
			n := 0
			for _, f := range fs {
				if f.Category == "Secrets" {
					n++
				}
			}
			if n != tt.want {
				t.Errorf("secret findings = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestCodeDangerousFunctions(t *testing.T) {
	fs := scanCode(t, map[string]string{
		"app/tasks.py": "import os\n" +
			"eval(payload)\n" +
			"os.system(cmd)\n" +
			"subprocess.run(cmd, shell=True)\n",
	})
	if n := countTitle(fs, "Dangerous function: eval() usage"); n != 1 {
		t.Errorf("eval findings = %d, want 1", n)
	}
	if n := countTitle(fs, "Dangerous function: os.system() usage"); n != 1 {
		t.Errorf("os.system findings = %d, want 1", n)
	}
	if n := countTitle(fs, "Dangerous function: shell=True in subprocess"); n != 1 {
		t.Errorf("shell=True findings = %d, want 1", n)
	}
}

func TestCodeUnsafeRender(t *testing.T) {
	fs := scanCode(t, map[string]string{
		"app/views.py": "return mark_safe(user_bio)\n",
	})
	if n := countTitle(fs, "Potential XSS: mark_safe usage"); n != 1 {
		t.Errorf("mark_safe findings = %d, want 1", n)
	}
	for _, f := range fs {
		if f.Title == "Potential XSS: mark_safe usage" && f.Severity != model.SeverityHigh {
			t.Errorf("severity = %s, want HIGH", f.Severity)
		}
	}
}

func TestCodeSkipsGeneratedAndUnreadable(t *testing.T) {
	fs := scanCode(t, map[string]string{
		"app/migrations/0001_initial.py": "eval(payload)\n",
		"venv/lib/site.py":               "eval(payload)\n",
		"app/blob.py":                    "eval(payload)\n\x00\x00binary junk",
	})
	if len(fs) != 0 {
		t.Errorf("expected skipped files to contribute nothing, got %d findings", len(fs))
	}
}

func TestCodeDeterministicOrder(t *testing.T) {
	files := map[string]string{
		"a/views.py": "eval(a)\n",
		"b/views.py": "eval(b)\n",
		"c/views.py": "eval(c)\n",
	}
	first := scanCode(t, files)
	second := scanCode(t, files)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("finding counts: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if *first[i].FilePath != *second[i].FilePath {
			t.Fatalf("order differs at %d: %s vs %s", i, *first[i].FilePath, *second[i].FilePath)
		}
	}
}
