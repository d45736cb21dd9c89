package verdict

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

// Annotator posts a pass/fail notification for one tool's run.
type Annotator interface {
	Annotate(ctx context.Context, v schema.RunVerdict) error
}

// ArtifactUploader publishes a run's result artifacts.
type ArtifactUploader interface {
	Upload(ctx context.Context, glob string) error
}

// BuildkiteSink reports through the buildkite-agent binary. The annotation
// is keyed by a stable context ("scan-<tool>") so re-runs replace the
// previous annotation instead of stacking.
type BuildkiteSink struct {
	// Binary defaults to "buildkite-agent" on PATH.
	Binary string
}

func (s *BuildkiteSink) binary() string {
	if s.Binary == "" {
		return "buildkite-agent"
	}
	return s.Binary
}

func (s *BuildkiteSink) Annotate(ctx context.Context, v schema.RunVerdict) error {
	style := "success"
	if !v.Passed {
		style = "error"
	}
	body := fmt.Sprintf("**%s** (%s) — score threshold %d, %d/%d targets passed",
		v.Tool, v.Environment, v.ScoreThreshold, v.TargetsPassed, v.TargetsTotal)

	cmd := exec.CommandContext(ctx, s.binary(), "annotate", body,
		"--context", "scan-"+v.Tool,
		"--style", style,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("annotate scan-%s: %w", v.Tool, err)
	}
	return nil
}

func (s *BuildkiteSink) Upload(ctx context.Context, glob string) error {
	cmd := exec.CommandContext(ctx, s.binary(), "artifact", "upload", glob)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("upload artifacts %s: %w", glob, err)
	}
	return nil
}
