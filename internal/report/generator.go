// Package report renders a run verdict as a shareable HTML/PDF document.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
	"github.com/GurdipSCode/devops-mondoo-scanner/pkg/utils"
)

//go:embed report.html
var reportHTMLTemplate string

// ---------- Public API ----------

// LoadVerdict reads the verdict summary from a run directory.
func LoadVerdict(fromDir string) (schema.RunVerdict, error) {
	return utils.LoadVerdict(fromDir)
}

// GenerateHTML renders the verdict report into outDir and returns its path.
func GenerateHTML(v schema.RunVerdict, outDir string) (string, error) {
	vm := buildViewModel(v)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}

	tmpl, err := template.New("report").Parse(reportHTMLTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vm); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	htmlPath := filepath.Join(outDir, "report.html")
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write report.html: %w", err)
	}

	return htmlPath, nil
}

// ---------- View Model & helpers ----------

type viewModel struct {
	Tool           string
	Environment    string
	Modality       string
	Status         string
	StatusClass    string
	ScoreThreshold int
	TargetsTotal   int
	TargetsPassed  int
	TargetsFailed  int
	Targets        []targetRow
	RunID          string
	ScanTime       string
	Generator      string
	GeneratedAt    string
	Year           int
}

type targetRow struct {
	Target   string
	Status   string
	Class    string
	ExitCode int
	Error    string
	ScanTime string
}

func buildViewModel(v schema.RunVerdict) viewModel {
	now := time.Now().UTC()

	status := "PASS"
	statusClass := "pass"
	if !v.Passed {
		status = "FAIL"
		statusClass = "fail"
	}

	var rows []targetRow
	for _, r := range v.Results {
		class := "pass"
		if r.Status != schema.StatusSuccess {
			class = "fail"
		}
		rows = append(rows, targetRow{
			Target:   r.Target,
			Status:   string(r.Status),
			Class:    class,
			ExitCode: r.ExitCode,
			Error:    r.Error,
			ScanTime: r.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return viewModel{
		Tool:           v.Tool,
		Environment:    v.Environment,
		Modality:       string(v.Modality),
		Status:         status,
		StatusClass:    statusClass,
		ScoreThreshold: v.ScoreThreshold,
		TargetsTotal:   v.TargetsTotal,
		TargetsPassed:  v.TargetsPassed,
		TargetsFailed:  v.TargetsFailed,
		Targets:        rows,
		RunID:          v.RunID,
		ScanTime:       v.Timestamp.UTC().Format(time.RFC3339),
		Generator:      "fleetscan",
		GeneratedAt:    now.Format(time.RFC3339),
		Year:           now.Year(),
	}
}
