package report

import (
	"html/template"
	"io"
	"strings"

	"github.com/djangoguard/djangoguard/internal/model"
)

var htmlTpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Security Audit Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.critical { color: #d32f2f; }
.high { color: #f57c00; }
.medium { color: #fbc02d; }
.low { color: #1976d2; }
.info { color: #0097a7; }
</style>
</head>
<body>
<h1>Security Audit Report</h1>
<p>Total Issues: {{.Total}}</p>
{{range .Issues}}<div class="{{.Class}}">
<h3>[{{.Severity}}] {{.Title}}</h3>
<p>{{.Description}}</p>
{{if .Location}}<p><strong>File:</strong> {{.Location}}</p>
{{end}}{{if .Recommendation}}<p><strong>Fix:</strong> {{.Recommendation}}</p>
{{end}}</div>
<hr>
{{end}}</body>
</html>
`))

type htmlIssue struct {
	Class          string
	Severity       string
	Title          string
	Description    string
	Location       string
	Recommendation string
}

type htmlReport struct {
	Total  int
	Issues []htmlIssue
}

func renderHTML(w io.Writer, findings []model.Finding) error {
	doc := htmlReport{Total: len(findings)}
	for _, f := range findings {
		issue := htmlIssue{
			Class:       strings.ToLower(f.Severity.String()),
			Severity:    f.Severity.String(),
			Title:       f.Title,
			Description: f.Description,
			Location:    f.Location(),
		}
		if f.Recommendation != nil {
			issue.Recommendation = *f.Recommendation
		}
		doc.Issues = append(doc.Issues, issue)
	}
	return htmlTpl.Execute(w, doc)
}
