// Package runner wires one tool/environment run end to end: resolve the
// descriptor, load policies and thresholds, plan targets, dispatch scans
// and aggregate the verdict.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/dispatch"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/engine"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/planner"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/policy"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/resolver"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/threshold"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/verdict"
	"github.com/GurdipSCode/devops-mondoo-scanner/pkg/utils"
)

// Options configures one run.
type Options struct {
	Org         string
	Tool        string
	Ref         string
	Environment string
	// ManualTarget, when set, becomes the sole scan target.
	ManualTarget string
	// WorkDir is the root of the run-scoped working area; each run uses
	// the tool-namespaced subdirectory WorkDir/<tool>.
	WorkDir string

	Concurrency   int
	TargetTimeout time.Duration
}

// Runner executes per-tool scan runs. Fetcher and Engine are the injected
// external capabilities; Annotator and Uploader may be nil for local runs.
type Runner struct {
	Fetcher   fetcher.Fetcher
	Engine    engine.Engine
	Annotator verdict.Annotator
	Uploader  verdict.ArtifactUploader
	Logger    *slog.Logger
}

// ToolDir returns the run-scoped working area for one tool. Namespacing by
// tool name keeps concurrent runs for different tools on disjoint paths.
func ToolDir(workDir, tool string) string {
	return filepath.Join(workDir, tool)
}

// Run executes the full pipeline for one tool/environment and returns its
// verdict. Configuration-resolution failures abort before any target is
// scanned; per-target failures are folded into a FAIL verdict instead.
func (r *Runner) Run(ctx context.Context, opts Options) (schema.RunVerdict, error) {
	var none schema.RunVerdict

	cfg, env, err := resolver.Resolve(ctx, r.Fetcher, opts.Org, opts.Tool, opts.Ref, opts.Environment)
	if err != nil {
		return none, err
	}

	toolDir := ToolDir(opts.WorkDir, opts.Tool)
	if err := os.MkdirAll(toolDir, 0755); err != nil {
		return none, fmt.Errorf("create workdir: %w", err)
	}

	bundle, eff, err := r.loadConfig(ctx, opts, toolDir)
	if err != nil {
		return none, err
	}

	targets, err := planner.Plan(cfg.ScanType, env, opts.ManualTarget)
	if err != nil {
		return none, fmt.Errorf("%s/%s: %w", opts.Tool, opts.Environment, err)
	}

	resultsDir := filepath.Join(toolDir, "results")
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return none, fmt.Errorf("create results dir: %w", err)
	}

	d := &dispatch.Dispatcher{
		Engine:        r.Engine,
		ResultsDir:    resultsDir,
		Concurrency:   opts.Concurrency,
		TargetTimeout: opts.TargetTimeout,
		Logger:        r.Logger,
	}
	scoreThreshold := eff.ScoreThreshold(env.ScoreThreshold)
	results := d.Run(ctx, opts.Tool, cfg.ScanType, env, targets, bundle.Files, eff.Path, scoreThreshold)

	v := verdict.Aggregate(uuid.NewString(), opts.Tool, opts.Environment, cfg.ScanType, scoreThreshold, results)

	if _, err := utils.SaveVerdict(v, toolDir); err != nil {
		return none, err
	}

	r.report(ctx, v, resultsDir)
	return v, nil
}

// loadConfig fetches the policy bundle and the merged thresholds. The two
// are independent, so they run concurrently.
func (r *Runner) loadConfig(ctx context.Context, opts Options, toolDir string) (*policy.Bundle, *threshold.Effective, error) {
	var (
		bundle    *policy.Bundle
		eff       *threshold.Effective
		policyErr error
		threshErr error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		bundle, policyErr = policy.Load(ctx, r.Fetcher, opts.Org, opts.Tool, opts.Ref, filepath.Join(toolDir, "policies"))
	}()

	eff, threshErr = threshold.Load(ctx, r.Fetcher, opts.Org, opts.Tool, opts.Ref, opts.Environment)
	<-done

	if policyErr != nil {
		return nil, nil, policyErr
	}
	if threshErr != nil {
		return nil, nil, threshErr
	}
	if err := eff.Write(toolDir); err != nil {
		return nil, nil, err
	}
	return bundle, eff, nil
}

// report pushes the verdict to the configured sinks. Sink failures are
// logged, not propagated: the scan outcome is already decided.
func (r *Runner) report(ctx context.Context, v schema.RunVerdict, resultsDir string) {
	if r.Annotator != nil {
		if err := r.Annotator.Annotate(ctx, v); err != nil && r.Logger != nil {
			r.Logger.Error("annotation failed", "tool", v.Tool, "error", err)
		}
	}
	if r.Uploader != nil {
		glob := filepath.Join(resultsDir, "*.json")
		if err := r.Uploader.Upload(ctx, glob); err != nil && r.Logger != nil {
			r.Logger.Error("artifact upload failed", "tool", v.Tool, "error", err)
		}
	}
}
