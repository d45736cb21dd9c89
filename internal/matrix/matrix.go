// Package matrix turns the tool roster into a declarative execution plan
// for the CI scheduler: one scan step per tool that defines the requested
// environment, plus a trailing summary step.
package matrix

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/resolver"
)

// Roster is the static list of scanned products. Tools without a scan
// descriptor are skipped at generation time, so stale entries cost nothing.
var Roster = []string{
	"vault",
	"consul",
	"nomad",
	"terraform",
	"grafana",
	"prometheus",
	"jenkins",
	"harbor",
	"keycloak",
	"gitlab",
}

// PlanState is a tool's state during plan generation.
type PlanState string

const (
	StateUnchecked PlanState = "unchecked"
	StateSkipped   PlanState = "skipped"
	StatePlanned   PlanState = "planned"
)

// ToolStatus records what happened to one roster entry.
type ToolStatus struct {
	Tool   string
	State  PlanState
	Reason string
}

const (
	// StepTimeoutMinutes is the fixed upper bound for one scan step.
	StepTimeoutMinutes = 30
	// RetryLimit bounds automatic retries of infrastructure failures.
	// Policy failures (exit 1) are never retried.
	RetryLimit = 2
	// InfraExitStatus is the exit status the scheduler retries on.
	InfraExitStatus = 255
)

// Options configures plan generation.
type Options struct {
	Org         string
	Ref         string
	Environment string
	// Roster overrides the static roster when non-nil.
	Roster []string
}

// Generator builds execution plans by consulting each tool's descriptor.
type Generator struct {
	Fetcher fetcher.Fetcher
	Logger  *slog.Logger
}

// Generate resolves every roster tool's descriptor and emits the plan.
// A tool whose descriptor is absent, unparsable or missing the requested
// environment is skipped and logged; it must never block the rest of the
// fleet. Generation stops early only when ctx is cancelled.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Plan, []ToolStatus, error) {
	roster := opts.Roster
	if roster == nil {
		roster = Roster
	}

	plan := &Plan{}
	statuses := make([]ToolStatus, 0, len(roster))
	var scanKeys []string

	for _, tool := range roster {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("plan generation cancelled: %w", err)
		}

		status := ToolStatus{Tool: tool, State: StateUnchecked}

		cfg, env, err := resolver.Resolve(ctx, g.Fetcher, opts.Org, tool, opts.Ref, opts.Environment)
		if err != nil {
			status.State = StateSkipped
			status.Reason = err.Error()
			statuses = append(statuses, status)
			if g.Logger != nil {
				g.Logger.Warn("skipping tool", "tool", tool, "environment", opts.Environment, "reason", err)
			}
			continue
		}

		step := scanStep(tool, opts.Environment, cfg.ScanType.Emoji(), env.Queue)
		plan.Steps = append(plan.Steps, step)
		scanKeys = append(scanKeys, step.Key)

		status.State = StatePlanned
		statuses = append(statuses, status)
	}

	if len(scanKeys) > 0 {
		plan.Steps = append(plan.Steps, WaitStep{ContinueOnFailure: true})
		plan.Steps = append(plan.Steps, summaryStep(scanKeys))
	}
	return plan, statuses, nil
}

func scanStep(tool, environment, emoji, queue string) ScanStep {
	return ScanStep{
		Label:   fmt.Sprintf("%s Scan %s (%s)", emoji, tool, environment),
		Key:     "scan-" + tool,
		Command: fmt.Sprintf("fleetscan scan --tool %s --environment %s", tool, environment),
		Env: map[string]string{
			"SCAN_TOOL":        tool,
			"SCAN_ENVIRONMENT": environment,
		},
		Agents:           map[string]string{"queue": queue},
		TimeoutInMinutes: StepTimeoutMinutes,
		Retry: &Retry{
			Automatic: []AutomaticRetry{{ExitStatus: InfraExitStatus, Limit: RetryLimit}},
		},
		ArtifactPaths: fmt.Sprintf("work/%s/results/*.json", tool),
	}
}

func summaryStep(scanKeys []string) ScanStep {
	return ScanStep{
		Label:                  ":bar_chart: Scan summary",
		Key:                    "scan-summary",
		Command:                "fleetscan summary --workdir work",
		DependsOn:              scanKeys,
		AllowDependencyFailure: true,
	}
}
