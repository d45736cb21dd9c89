// Package policy materializes a tool's policy bundle into the run workdir.
package policy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
)

const (
	// BundleDir is the conventional policy subdirectory of a tool repo.
	BundleDir = "policies"
	// PolicySuffix identifies policy files when falling back to the
	// repository root (older repos keep their bundles there).
	PolicySuffix = ".mql.yaml"
)

// ErrNoPolicies means no policy files exist even after the root fallback.
// Fatal: a scan with zero policies is meaningless.
var ErrNoPolicies = errors.New("policy: no policy files found")

// Bundle is the set of policy files downloaded for one run, unique by file
// name, in listing order.
type Bundle struct {
	Dir   string
	Files []string
}

// Load lists tool's policy files at ref and downloads each into
// destDir. If the conventional subdirectory does not exist, the repository
// root is listed instead and filtered by the policy file suffix.
func Load(ctx context.Context, f fetcher.Fetcher, org, tool, ref, destDir string) (*Bundle, error) {
	repo := fetcher.RepoForTool(tool)

	entries, err := f.List(ctx, org, repo, BundleDir, ref)
	if err != nil {
		if !errors.Is(err, fetcher.ErrNotFound) {
			return nil, fmt.Errorf("list policies for %s: %w", tool, err)
		}
		// Fall back to the repository root, filtered by suffix.
		entries, err = f.List(ctx, org, repo, "", ref)
		if err != nil {
			return nil, fmt.Errorf("list repository root for %s: %w", tool, err)
		}
		filtered := entries[:0]
		for _, e := range entries {
			if strings.HasSuffix(e.Name, PolicySuffix) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create policy dir: %w", err)
	}

	bundle := &Bundle{Dir: destDir}
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Type != "file" || seen[e.Name] {
			continue
		}
		seen[e.Name] = true

		raw, err := f.Fetch(ctx, org, repo, e.Path, ref)
		if err != nil {
			return nil, fmt.Errorf("download policy %s for %s: %w", e.Path, tool, err)
		}
		local := filepath.Join(destDir, e.Name)
		if err := os.WriteFile(local, raw, 0644); err != nil {
			return nil, fmt.Errorf("write policy %s: %w", e.Name, err)
		}
		bundle.Files = append(bundle.Files, local)
	}

	if len(bundle.Files) == 0 {
		return nil, fmt.Errorf("%s@%s: %w", tool, ref, ErrNoPolicies)
	}
	return bundle, nil
}
