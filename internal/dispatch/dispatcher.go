// Package dispatch drives the scanning engine across a run's targets.
package dispatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/engine"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
	"github.com/GurdipSCode/devops-mondoo-scanner/pkg/utils"
)

// DefaultConcurrency bounds parallel engine invocations within one run.
const DefaultConcurrency = 4

// DefaultTargetTimeout bounds one engine invocation.
const DefaultTargetTimeout = 20 * time.Minute

// Dispatcher invokes the engine once per target and records one result
// artifact per target under ResultsDir.
type Dispatcher struct {
	Engine        engine.Engine
	ResultsDir    string
	Concurrency   int
	TargetTimeout time.Duration
	Logger        *slog.Logger
}

// Run scans every target with the supplied policy bundle and merged
// thresholds. A failing target never aborts the rest: each failure is
// recorded in its own ScanResult and the remaining targets still run.
// Results come back in target order.
func (d *Dispatcher) Run(ctx context.Context, tool string, modality schema.ScanModality, env *schema.EnvironmentConfig, targets []string, policyFiles []string, thresholdPath string, scoreThreshold int) []schema.ScanResult {
	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	timeout := d.TargetTimeout
	if timeout <= 0 {
		timeout = DefaultTargetTimeout
	}

	results := make([]schema.ScanResult, len(targets))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = d.scanOne(ctx, tool, modality, env, target, policyFiles, thresholdPath, scoreThreshold, timeout)
		}(i, target)
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) scanOne(ctx context.Context, tool string, modality schema.ScanModality, env *schema.EnvironmentConfig, target string, policyFiles []string, thresholdPath string, scoreThreshold int, timeout time.Duration) schema.ScanResult {
	outputPath := filepath.Join(d.ResultsDir, utils.SafeName(target)+".json")

	inv := engine.Invocation{
		Modality:       string(modality),
		Target:         target,
		PolicyFiles:    policyFiles,
		ThresholdPath:  thresholdPath,
		ScoreThreshold: scoreThreshold,
		Namespace:      env.Namespace,
		Context:        env.Context,
		Org:            env.Org,
		OutputPath:     outputPath,
	}

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if d.Logger != nil {
		d.Logger.Info("scanning target", "tool", tool, "modality", modality, "target", target)
	}

	res := d.Engine.Scan(scanCtx, inv)

	result := schema.ScanResult{
		Target:     target,
		ExitCode:   res.ExitCode,
		OutputPath: outputPath,
		Timestamp:  time.Now().UTC(),
	}

	switch {
	case res.Err == nil && res.ExitCode == 0:
		result.Status = schema.StatusSuccess
	case res.Started:
		result.Status = schema.StatusFailure
		result.Error = res.Err.Error()
	default:
		result.Status = schema.StatusError
		result.OutputPath = ""
		if res.Err != nil {
			result.Error = res.Err.Error()
		}
	}

	if d.Logger != nil && result.Status != schema.StatusSuccess {
		d.Logger.Warn("target scan did not pass",
			"tool", tool, "target", target,
			"status", result.Status, "exit_code", result.ExitCode,
		)
	}
	return result
}
