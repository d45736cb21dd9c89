package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/testutil"
)

const vaultDescriptor = `
scan_type: ssh
environments:
  production:
    score_threshold: 90
    targets:
      - host: v1
        port: 22
      - host: v2
        port: 2222
  staging:
    targets:
      - host: v-stg
        port: 22
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(vaultDescriptor))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	staging := cfg.Environments["staging"]
	if staging.ScoreThreshold != schema.DefaultScoreThreshold {
		t.Errorf("staging score threshold = %d, want %d", staging.ScoreThreshold, schema.DefaultScoreThreshold)
	}
	if staging.Queue != schema.DefaultQueue {
		t.Errorf("staging queue = %q, want %q", staging.Queue, schema.DefaultQueue)
	}

	production := cfg.Environments["production"]
	if production.ScoreThreshold != 90 {
		t.Errorf("production score threshold = %d, want 90", production.ScoreThreshold)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed yaml", "scan_type: [unterminated"},
		{"unknown modality", "scan_type: telnet\nenvironments:\n  production: {}"},
		{"no environments", "scan_type: ssh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Error("Parse() = nil error, want failure")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ff := &testutil.FakeFetcher{
		Files: map[string]string{
			"devops-vault/" + DescriptorPath: vaultDescriptor,
		},
	}
	ctx := context.Background()

	t.Run("resolves declared environment", func(t *testing.T) {
		cfg, env, err := Resolve(ctx, ff, "acme", "vault", "main", "production")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if cfg.ScanType != schema.ModalitySSH {
			t.Errorf("scan type = %q, want ssh", cfg.ScanType)
		}
		if len(env.Targets) != 2 || env.Targets[0].Host != "v1" {
			t.Errorf("unexpected targets: %+v", env.Targets)
		}
	})

	t.Run("missing descriptor", func(t *testing.T) {
		_, _, err := Resolve(ctx, ff, "acme", "ghost", "main", "production")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Resolve() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("undefined environment", func(t *testing.T) {
		_, _, err := Resolve(ctx, ff, "acme", "vault", "main", "qa")
		if !errors.Is(err, ErrEnvironmentUndefined) {
			t.Errorf("Resolve() error = %v, want ErrEnvironmentUndefined", err)
		}
	})
}
