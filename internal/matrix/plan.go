package matrix

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Plan is the scheduler-facing pipeline document.
type Plan struct {
	Steps []any `yaml:"steps"`
}

// ScanStep is one unit of work for the scheduler. Retry and timeout are
// data here; the scheduler owns their execution.
type ScanStep struct {
	Label                  string            `yaml:"label"`
	Key                    string            `yaml:"key"`
	Command                string            `yaml:"command"`
	Env                    map[string]string `yaml:"env,omitempty"`
	Agents                 map[string]string `yaml:"agents,omitempty"`
	TimeoutInMinutes       int               `yaml:"timeout_in_minutes,omitempty"`
	Retry                  *Retry            `yaml:"retry,omitempty"`
	ArtifactPaths          string            `yaml:"artifact_paths,omitempty"`
	DependsOn              []string          `yaml:"depends_on,omitempty"`
	AllowDependencyFailure bool              `yaml:"allow_dependency_failure,omitempty"`
}

// WaitStep separates the scan fan-out from the summary without failing the
// pipeline when individual scans failed.
type WaitStep struct {
	Wait              *string `yaml:"wait"`
	ContinueOnFailure bool    `yaml:"continue_on_failure,omitempty"`
}

// Retry carries the scheduler's automatic retry policy.
type Retry struct {
	Automatic []AutomaticRetry `yaml:"automatic"`
}

// AutomaticRetry retries a bounded number of times on one exit status.
type AutomaticRetry struct {
	ExitStatus int `yaml:"exit_status"`
	Limit      int `yaml:"limit"`
}

// Marshal renders the plan as pipeline YAML.
func (p *Plan) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return out, nil
}

// ScanSteps returns only the scan entries of the plan.
func (p *Plan) ScanSteps() []ScanStep {
	var steps []ScanStep
	for _, s := range p.Steps {
		if step, ok := s.(ScanStep); ok && step.Key != "scan-summary" {
			steps = append(steps, step)
		}
	}
	return steps
}
