package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// AdminAccount is the fixed administrative account prepended to winrm hosts.
const AdminAccount = "Administrator"

// InfraExitCode is what cnspec reports for infrastructure-level failures
// (unreachable target, engine crash). The execution plan retries these;
// policy failures (exit 1) are never retried.
const InfraExitCode = 255

// Cnspec runs the Mondoo cnspec binary.
type Cnspec struct {
	// Binary defaults to "cnspec" on PATH.
	Binary string
}

// Args builds the exact command arguments for one invocation. Kept separate
// from Scan so the per-modality shapes are testable without executing
// anything.
func (c *Cnspec) Args(inv Invocation) ([]string, error) {
	var args []string

	switch inv.Modality {
	case "ssh":
		host, port, ok := strings.Cut(inv.Target, ":")
		if !ok {
			return nil, fmt.Errorf("ssh target %q is not host:port", inv.Target)
		}
		if _, err := strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("ssh target %q has bad port: %w", inv.Target, err)
		}
		args = []string{"scan", "ssh", host, "--port", port}
	case "winrm":
		host := inv.Target
		if h, _, ok := strings.Cut(inv.Target, ":"); ok {
			host = h
		}
		args = []string{"scan", "winrm", AdminAccount + "@" + host}
	case "docker":
		args = []string{"scan", "docker", "container", inv.Target}
	case "k8s":
		args = []string{"scan", "k8s", "--context", inv.Context, "--namespace", inv.Namespace}
	case "github":
		args = []string{"scan", "github", "org", inv.Org}
	case "api":
		args = []string{"scan", "local"}
	default:
		return nil, fmt.Errorf("unknown modality %q", inv.Modality)
	}

	for _, pf := range inv.PolicyFiles {
		args = append(args, "--policy-bundle", pf)
	}
	args = append(args,
		"--config", inv.ThresholdPath,
		"--score-threshold", strconv.Itoa(inv.ScoreThreshold),
		"--output", "json",
		"--output-file", inv.OutputPath,
	)
	return args, nil
}

// Scan executes cnspec for one target, bounded by ctx.
func (c *Cnspec) Scan(ctx context.Context, inv Invocation) Result {
	args, err := c.Args(inv)
	if err != nil {
		return Result{Err: err}
	}

	binary := c.Binary
	if binary == "" {
		binary = "cnspec"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Started: true, Err: err}
		}
		return Result{ExitCode: InfraExitCode, Err: fmt.Errorf("run %s: %w", binary, err)}
	}
	return Result{ExitCode: 0, Started: true}
}
