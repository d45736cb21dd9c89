package utils

import (
	"testing"
	"time"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1:22", "v1_22"},
		{"prod-cluster/vault", "prod-cluster_vault"},
		{"Administrator@win1", "Administrator_win1"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveAndLoadVerdict(t *testing.T) {
	dir := t.TempDir()

	v := schema.RunVerdict{
		RunID:          "run-1",
		Tool:           "vault",
		Environment:    "production",
		Modality:       schema.ModalitySSH,
		Passed:         true,
		ScoreThreshold: 90,
		TargetsTotal:   1,
		TargetsPassed:  1,
		Results: []schema.ScanResult{
			{Target: "v1:22", Status: schema.StatusSuccess, Timestamp: time.Now().UTC()},
		},
		Timestamp: time.Now().UTC(),
	}

	if _, err := SaveVerdict(v, dir); err != nil {
		t.Fatalf("SaveVerdict() error = %v", err)
	}

	got, err := LoadVerdict(dir)
	if err != nil {
		t.Fatalf("LoadVerdict() error = %v", err)
	}
	if got.RunID != v.RunID || got.Tool != v.Tool || !got.Passed {
		t.Errorf("LoadVerdict() = %+v", got)
	}
	if len(got.Results) != 1 || got.Results[0].Target != "v1:22" {
		t.Errorf("results = %+v", got.Results)
	}
}

func TestLoadVerdict_Missing(t *testing.T) {
	if _, err := LoadVerdict(t.TempDir()); err == nil {
		t.Error("LoadVerdict() = nil error for empty dir")
	}
}
