package report

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/djangoguard/djangoguard/internal/model"
)

const (
	sarifToolName    = "djangoguard"
	sarifToolVersion = "0.1.0"
)

// SARIF 2.1.0 envelope, the subset GitHub code scanning and editors consume.
type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"` // error, warning, note
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func renderSARIF(w io.Writer, findings []model.Finding) error {
	results := make([]sarifResult, 0, len(findings))
	for _, f := range findings {
		uri := "UNKNOWN"
		if f.FilePath != nil && strings.TrimSpace(*f.FilePath) != "" {
			uri = toURI(*f.FilePath)
		}
		start := 1
		if f.LineNumber != nil && *f.LineNumber > 0 {
			start = *f.LineNumber
		}
		results = append(results, sarifResult{
			RuleID: f.Category + ": " + f.Title,
			Level:  sevToLevel(f.Severity),
			Message: sarifMessage{
				Text: strings.TrimSpace(f.Description),
			},
			Locations: []sarifLocation{
				{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: uri},
						Region:           sarifRegion{StartLine: start},
					},
				},
			},
		})
	}

	log := sarifLog{
		Version: "2.1.0",
		// schema RTM recognized by GitHub/VSCode
		Schema: "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    sarifToolName,
						Version: sarifToolVersion,
					},
				},
				Results: results,
			},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&log)
}

func sevToLevel(s model.Severity) string {
	switch s {
	case model.SeverityCritical, model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func toURI(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	return strings.TrimPrefix(p, "./")
}
