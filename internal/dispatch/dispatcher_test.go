package dispatch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/testutil"
)

func TestDispatcher_ContinueOnFailure(t *testing.T) {
	eng := &testutil.FakeEngine{ExitCodes: map[string]int{
		"h2:22": 1,
	}}
	d := &Dispatcher{
		Engine:     eng,
		ResultsDir: t.TempDir(),
	}

	env := &schema.EnvironmentConfig{ScoreThreshold: 80}
	targets := []string{"h1:22", "h2:22", "h3:22"}

	results := d.Run(context.Background(), "vault", schema.ModalitySSH, env, targets,
		[]string{"p.mql.yaml"}, "mondoo.yml", 80)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (failing target must not stop the batch)", len(results))
	}

	wantStatus := []schema.ExitStatus{schema.StatusSuccess, schema.StatusFailure, schema.StatusSuccess}
	for i, r := range results {
		if r.Target != targets[i] {
			t.Errorf("result %d target = %q, want %q (order must be preserved)", i, r.Target, targets[i])
		}
		if r.Status != wantStatus[i] {
			t.Errorf("result %d status = %q, want %q", i, r.Status, wantStatus[i])
		}
	}

	if len(eng.Invocations) != 3 {
		t.Errorf("engine invoked %d times, want 3", len(eng.Invocations))
	}
}

func TestDispatcher_SanitizesResultPaths(t *testing.T) {
	eng := &testutil.FakeEngine{}
	dir := t.TempDir()
	d := &Dispatcher{Engine: eng, ResultsDir: dir}

	env := &schema.EnvironmentConfig{Context: "prod-cluster", Namespace: "vault"}
	results := d.Run(context.Background(), "vault", schema.ModalityK8s, env,
		[]string{"prod-cluster/vault"}, nil, "mondoo.yml", 80)

	want := filepath.Join(dir, "prod-cluster_vault.json")
	if results[0].OutputPath != want {
		t.Errorf("output path = %q, want %q", results[0].OutputPath, want)
	}
}

func TestDispatcher_PassesMergedConfig(t *testing.T) {
	eng := &testutil.FakeEngine{}
	d := &Dispatcher{Engine: eng, ResultsDir: t.TempDir()}

	env := &schema.EnvironmentConfig{Namespace: "vault", Context: "prod"}
	d.Run(context.Background(), "vault", schema.ModalityK8s, env,
		[]string{"prod/vault"}, []string{"a.mql.yaml"}, "work/vault/mondoo.yml", 90)

	inv, ok := eng.InvocationFor("prod/vault")
	if !ok {
		t.Fatal("engine never invoked")
	}
	if inv.ThresholdPath != "work/vault/mondoo.yml" {
		t.Errorf("threshold path = %q", inv.ThresholdPath)
	}
	if inv.ScoreThreshold != 90 {
		t.Errorf("score threshold = %d, want 90", inv.ScoreThreshold)
	}
	if inv.Namespace != "vault" || inv.Context != "prod" {
		t.Errorf("k8s addressing lost: %+v", inv)
	}
}
