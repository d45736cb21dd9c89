package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

// SafeName replaces characters not safe for file paths, so target addresses
// like "10.0.0.1:22" or "ctx/ns" map to collision-free result file names.
func SafeName(s string) string {
	invalid := []rune{'/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '@'}
	rs := []rune(s)
	for i, r := range rs {
		for _, bad := range invalid {
			if r == bad {
				rs[i] = '_'
			}
		}
	}
	return string(rs)
}

// SummaryFileName is the per-run verdict summary inside a tool's workdir.
const SummaryFileName = "summary.json"

// SaveVerdict writes the run verdict into dir as indented JSON.
func SaveVerdict(v schema.RunVerdict, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	file := filepath.Join(dir, SummaryFileName)
	fh, err := os.Create(file)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", SummaryFileName, err)
	}
	defer fh.Close()

	enc := json.NewEncoder(fh)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode verdict: %w", err)
	}

	return file, nil
}

// LoadVerdict reads a run verdict back from dir.
func LoadVerdict(dir string) (schema.RunVerdict, error) {
	var v schema.RunVerdict
	data, err := os.ReadFile(filepath.Join(dir, SummaryFileName))
	if err != nil {
		return v, fmt.Errorf("read %s: %w", SummaryFileName, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parse %s: %w", SummaryFileName, err)
	}
	return v, nil
}
