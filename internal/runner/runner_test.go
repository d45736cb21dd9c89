package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/policy"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/resolver"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/testutil"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/threshold"
	"github.com/GurdipSCode/devops-mondoo-scanner/pkg/utils"
)

func vaultFetcher() *testutil.FakeFetcher {
	return &testutil.FakeFetcher{Files: map[string]string{
		"devops-vault/" + resolver.DescriptorPath: `
scan_type: ssh
environments:
  production:
    targets:
      - host: v1
        port: 22
`,
		"devops-vault/" + threshold.BasePath:                   "score_threshold: 70\nasset_filters: all\n",
		"devops-vault/" + threshold.OverridePath("production"): "score_threshold: 90\n",
		"devops-vault/policies/vault.mql.yaml":                 "policies: []",
	}}
}

func vaultOptions(workDir string) Options {
	return Options{
		Org:         "acme",
		Tool:        "vault",
		Ref:         "main",
		Environment: "production",
		WorkDir:     workDir,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	workDir := t.TempDir()
	eng := &testutil.FakeEngine{}
	r := &Runner{Fetcher: vaultFetcher(), Engine: eng}

	v, err := r.Run(context.Background(), vaultOptions(workDir))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !v.Passed {
		t.Error("verdict failed with a successful engine")
	}
	if v.TargetsTotal != 1 || v.Results[0].Target != "v1:22" {
		t.Errorf("results = %+v, want single v1:22", v.Results)
	}
	// The override document's threshold wins over base and default.
	if v.ScoreThreshold != 90 {
		t.Errorf("score threshold = %d, want 90", v.ScoreThreshold)
	}
	if v.RunID == "" {
		t.Error("verdict has no run ID")
	}

	inv, ok := eng.InvocationFor("v1:22")
	if !ok {
		t.Fatal("engine never invoked for v1:22")
	}
	if inv.ScoreThreshold != 90 {
		t.Errorf("engine score threshold = %d, want 90", inv.ScoreThreshold)
	}
	if len(inv.PolicyFiles) != 1 || filepath.Base(inv.PolicyFiles[0]) != "vault.mql.yaml" {
		t.Errorf("engine policy files = %v", inv.PolicyFiles)
	}

	// Run-scoped layout, namespaced by tool.
	toolDir := ToolDir(workDir, "vault")
	for _, p := range []string{
		filepath.Join(toolDir, threshold.MergedFileName),
		filepath.Join(toolDir, "policies", "vault.mql.yaml"),
		filepath.Join(toolDir, utils.SummaryFileName),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing run artifact %s: %v", p, err)
		}
	}

	saved, err := utils.LoadVerdict(toolDir)
	if err != nil {
		t.Fatalf("LoadVerdict() error = %v", err)
	}
	if saved.RunID != v.RunID {
		t.Errorf("persisted verdict run ID = %q, want %q", saved.RunID, v.RunID)
	}
}

func TestRun_TargetFailureIsNotFatal(t *testing.T) {
	eng := &testutil.FakeEngine{ExitCodes: map[string]int{"v1:22": 1}}
	r := &Runner{Fetcher: vaultFetcher(), Engine: eng}

	v, err := r.Run(context.Background(), vaultOptions(t.TempDir()))
	if err != nil {
		t.Fatalf("Run() error = %v, per-target failure must fold into the verdict", err)
	}
	if v.Passed {
		t.Error("verdict passed with a failing target")
	}
	if v.TargetsFailed != 1 || v.TargetsTotal != 1 {
		t.Errorf("counts = %d/%d, want 1/1", v.TargetsFailed, v.TargetsTotal)
	}
}

func TestRun_ManualTargetOverride(t *testing.T) {
	eng := &testutil.FakeEngine{}
	r := &Runner{Fetcher: vaultFetcher(), Engine: eng}

	opts := vaultOptions(t.TempDir())
	opts.ManualTarget = "10.9.8.7:22"

	v, err := r.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v.TargetsTotal != 1 || v.Results[0].Target != "10.9.8.7:22" {
		t.Errorf("results = %+v, want only the manual target", v.Results)
	}
}

func TestRun_ConfigErrorsAreFatal(t *testing.T) {
	tests := []struct {
		name    string
		breakFn func(*testutil.FakeFetcher)
		wantErr error
	}{
		{
			name: "missing descriptor",
			breakFn: func(ff *testutil.FakeFetcher) {
				delete(ff.Files, "devops-vault/"+resolver.DescriptorPath)
			},
			wantErr: resolver.ErrConfigNotFound,
		},
		{
			name: "missing base thresholds",
			breakFn: func(ff *testutil.FakeFetcher) {
				delete(ff.Files, "devops-vault/"+threshold.BasePath)
			},
			wantErr: threshold.ErrBaseMissing,
		},
		{
			name: "no policies",
			breakFn: func(ff *testutil.FakeFetcher) {
				delete(ff.Files, "devops-vault/policies/vault.mql.yaml")
			},
			wantErr: policy.ErrNoPolicies,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ff := vaultFetcher()
			tt.breakFn(ff)

			eng := &testutil.FakeEngine{}
			r := &Runner{Fetcher: ff, Engine: eng}

			_, err := r.Run(context.Background(), vaultOptions(t.TempDir()))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if len(eng.Invocations) != 0 {
				t.Error("engine was invoked despite a fatal configuration error")
			}
		})
	}
}
