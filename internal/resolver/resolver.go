// Package resolver loads and validates a tool's scan descriptor.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

// DescriptorPath is the conventional location of a tool's scan descriptor
// inside its config repository.
const DescriptorPath = "mondoo/scan.yml"

var (
	// ErrConfigNotFound means the tool has no scan descriptor at that ref.
	ErrConfigNotFound = errors.New("resolver: scan descriptor not found")
	// ErrEnvironmentUndefined means the descriptor exists but does not
	// declare the requested environment.
	ErrEnvironmentUndefined = errors.New("resolver: environment not defined")
)

// Parse decodes and validates a raw scan descriptor. Defaults for
// score_threshold and queue are applied per environment here so every
// consumer sees the same effective values.
func Parse(raw []byte) (*schema.ScanConfig, error) {
	var cfg schema.ScanConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse scan descriptor: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan descriptor: %w", err)
	}

	for name, env := range cfg.Environments {
		if env.ScoreThreshold == 0 {
			env.ScoreThreshold = schema.DefaultScoreThreshold
		}
		if env.Queue == "" {
			env.Queue = schema.DefaultQueue
		}
		cfg.Environments[name] = env
	}
	return &cfg, nil
}

// Resolve fetches tool's descriptor at ref and looks up environment.
// Any error here is fatal to that tool's run: nothing downstream is valid
// without a resolved environment.
func Resolve(ctx context.Context, f fetcher.Fetcher, org, tool, ref, environment string) (*schema.ScanConfig, *schema.EnvironmentConfig, error) {
	raw, err := f.Fetch(ctx, org, fetcher.RepoForTool(tool), DescriptorPath, ref)
	if err != nil {
		if errors.Is(err, fetcher.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", tool, ErrConfigNotFound)
		}
		return nil, nil, fmt.Errorf("fetch scan descriptor for %s: %w", tool, err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", tool, err)
	}

	env, ok := cfg.Environments[environment]
	if !ok {
		return nil, nil, fmt.Errorf("%s has no environment %q: %w", tool, environment, ErrEnvironmentUndefined)
	}
	return cfg, &env, nil
}
