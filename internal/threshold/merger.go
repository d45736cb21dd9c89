// Package threshold loads the base and environment-override threshold
// documents and merges them into one effective configuration.
package threshold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
)

const (
	// BasePath is the conventional location of the base threshold document.
	BasePath = "thresholds/base.yml"
	// MergedFileName is the artifact the engine invocation references.
	MergedFileName = "mondoo.yml"
)

// OverridePath returns the conventional location of an environment's
// override document.
func OverridePath(environment string) string {
	return "thresholds/" + environment + ".yml"
}

// ErrBaseMissing means the tool has no base threshold document. Unlike a
// missing override this is fatal: there is nothing to merge onto.
var ErrBaseMissing = errors.New("threshold: base document missing")

// Effective is the merged threshold configuration for one run.
type Effective struct {
	Values map[string]any
	// Path is where the merged document was persisted, empty until Write.
	Path string
}

// ScoreThreshold returns the merged documents' score_threshold when one is
// set, otherwise fallback (the environment's value, default 80).
func (e *Effective) ScoreThreshold(fallback int) int {
	switch v := e.Values["score_threshold"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// Merge combines base and override field by field. Every key present in
// override replaces the base key; base-only keys survive. Neither input is
// mutated.
func Merge(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// Load fetches tool's base and environment-override documents and merges
// them. A missing override document is not an error; a missing base is.
func Load(ctx context.Context, f fetcher.Fetcher, org, tool, ref, environment string) (*Effective, error) {
	repo := fetcher.RepoForTool(tool)

	rawBase, err := f.Fetch(ctx, org, repo, BasePath, ref)
	if err != nil {
		if errors.Is(err, fetcher.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", tool, ErrBaseMissing)
		}
		return nil, fmt.Errorf("fetch base thresholds for %s: %w", tool, err)
	}

	var base map[string]any
	if err := yaml.Unmarshal(rawBase, &base); err != nil {
		return nil, fmt.Errorf("parse base thresholds for %s: %w", tool, err)
	}

	override := map[string]any{}
	rawOverride, err := f.Fetch(ctx, org, repo, OverridePath(environment), ref)
	switch {
	case errors.Is(err, fetcher.ErrNotFound):
		// no override for this environment, base applies as-is
	case err != nil:
		return nil, fmt.Errorf("fetch %s thresholds for %s: %w", environment, tool, err)
	default:
		if err := yaml.Unmarshal(rawOverride, &override); err != nil {
			return nil, fmt.Errorf("parse %s threshold override for %s: %w", environment, tool, err)
		}
	}

	return &Effective{Values: Merge(base, override)}, nil
}

// Write persists the merged document into dir for the engine invocation to
// reference, and records the location on e.
func (e *Effective) Write(dir string) error {
	out, err := yaml.Marshal(e.Values)
	if err != nil {
		return fmt.Errorf("marshal merged thresholds: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create threshold dir: %w", err)
	}
	path := filepath.Join(dir, MergedFileName)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write merged thresholds: %w", err)
	}
	e.Path = path
	return nil
}
