package schema

import (
	"fmt"
	"time"
)

// ScanModality is the protocol/transport used against a target.
type ScanModality string

const (
	ModalitySSH    ScanModality = "ssh"
	ModalityWinRM  ScanModality = "winrm"
	ModalityDocker ScanModality = "docker"
	ModalityK8s    ScanModality = "k8s"
	ModalityGitHub ScanModality = "github"
	ModalityAPI    ScanModality = "api"
)

// Valid reports whether m is one of the known scan modalities.
func (m ScanModality) Valid() bool {
	switch m {
	case ModalitySSH, ModalityWinRM, ModalityDocker, ModalityK8s, ModalityGitHub, ModalityAPI:
		return true
	}
	return false
}

// Emoji returns the Buildkite emoji code used for plan labels.
func (m ScanModality) Emoji() string {
	switch m {
	case ModalitySSH:
		return ":lock:"
	case ModalityWinRM:
		return ":windows:"
	case ModalityDocker:
		return ":docker:"
	case ModalityK8s:
		return ":kubernetes:"
	case ModalityGitHub:
		return ":github:"
	case ModalityAPI:
		return ":cloud:"
	}
	return ":mag:"
}

// TargetSpec is one declared scan target. Host/Port are used by ssh and
// winrm, Container by docker. k8s/github/api environments carry their
// addressing on the EnvironmentConfig instead.
type TargetSpec struct {
	Host      string `yaml:"host,omitempty" json:"host,omitempty"`
	Port      int    `yaml:"port,omitempty" json:"port,omitempty"`
	Container string `yaml:"container,omitempty" json:"container,omitempty"`
}

const (
	// DefaultScoreThreshold applies when an environment omits score_threshold.
	DefaultScoreThreshold = 80
	// DefaultQueue is the agent queue used when an environment omits queue.
	DefaultQueue = "mondoo-scanners"
)

// EnvironmentConfig is the per-environment section of a scan descriptor.
type EnvironmentConfig struct {
	ScoreThreshold int          `yaml:"score_threshold" json:"score_threshold"`
	Queue          string       `yaml:"queue" json:"queue"`
	Targets        []TargetSpec `yaml:"targets" json:"targets"`

	// k8s only
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Context   string `yaml:"context,omitempty" json:"context,omitempty"`
	// github only
	Org string `yaml:"org,omitempty" json:"org,omitempty"`
}

// ScanConfig is a tool's parsed scan descriptor. Loaded once per run and
// never mutated after parse.
type ScanConfig struct {
	ScanType     ScanModality                 `yaml:"scan_type" json:"scan_type"`
	Environments map[string]EnvironmentConfig `yaml:"environments" json:"environments"`
}

// Validate checks the fields every descriptor must carry.
func (c *ScanConfig) Validate() error {
	if !c.ScanType.Valid() {
		return fmt.Errorf("unknown scan_type %q", c.ScanType)
	}
	if len(c.Environments) == 0 {
		return fmt.Errorf("descriptor declares no environments")
	}
	return nil
}

// ExitStatus classifies one engine invocation's outcome.
type ExitStatus string

const (
	StatusSuccess ExitStatus = "success"
	// StatusFailure means the engine ran and the target failed policy.
	StatusFailure ExitStatus = "failure"
	// StatusError means the invocation itself broke (timeout, missing
	// binary, unreachable target).
	StatusError ExitStatus = "error"
)

// ScanResult is the immutable per-target outcome of one engine invocation.
type ScanResult struct {
	Target     string     `json:"target"`
	Status     ExitStatus `json:"status"`
	ExitCode   int        `json:"exit_code"`
	OutputPath string     `json:"output_path,omitempty"`
	Error      string     `json:"error,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// RunVerdict aggregates every ScanResult of one (tool, environment) run.
type RunVerdict struct {
	RunID          string       `json:"run_id"`
	Tool           string       `json:"tool"`
	Environment    string       `json:"environment"`
	Modality       ScanModality `json:"modality"`
	Passed         bool         `json:"passed"`
	ScoreThreshold int          `json:"score_threshold"`
	TargetsTotal   int          `json:"targets_total"`
	TargetsPassed  int          `json:"targets_passed"`
	TargetsFailed  int          `json:"targets_failed"`
	Results        []ScanResult `json:"results"`
	Timestamp      time.Time    `json:"timestamp"`
}
