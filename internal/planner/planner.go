// Package planner expands an environment's declared targets into the
// concrete addresses the dispatcher will scan.
package planner

import (
	"errors"
	"fmt"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

// ErrNoTargets means expansion yielded zero targets; the scan cannot proceed.
var ErrNoTargets = errors.New("planner: no targets resolved")

// Plan expands env's declared targets for the given modality. A non-empty
// manualTarget becomes the sole target and bypasses the declared list
// entirely. k8s, github and api environments always resolve to exactly one
// singleton target; their addressing lives on the environment, not the
// target list.
func Plan(modality schema.ScanModality, env *schema.EnvironmentConfig, manualTarget string) ([]string, error) {
	if manualTarget != "" {
		return []string{manualTarget}, nil
	}

	var targets []string
	switch modality {
	case schema.ModalitySSH, schema.ModalityWinRM:
		for _, t := range env.Targets {
			if t.Host == "" {
				continue
			}
			targets = append(targets, fmt.Sprintf("%s:%d", t.Host, t.Port))
		}
	case schema.ModalityDocker:
		for _, t := range env.Targets {
			if t.Container == "" {
				continue
			}
			targets = append(targets, t.Container)
		}
	case schema.ModalityK8s:
		targets = []string{fmt.Sprintf("%s/%s", env.Context, env.Namespace)}
	case schema.ModalityGitHub:
		targets = []string{env.Org}
	case schema.ModalityAPI:
		targets = []string{"local"}
	default:
		return nil, fmt.Errorf("unknown modality %q: %w", modality, ErrNoTargets)
	}

	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	return targets, nil
}
