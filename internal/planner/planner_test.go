package planner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

func TestPlan(t *testing.T) {
	sshEnv := &schema.EnvironmentConfig{
		Targets: []schema.TargetSpec{
			{Host: "h1", Port: 22},
			{Host: "h2", Port: 2222},
		},
	}

	tests := []struct {
		name     string
		modality schema.ScanModality
		env      *schema.EnvironmentConfig
		manual   string
		want     []string
		wantErr  error
	}{
		{
			name:     "ssh expands host:port in declaration order",
			modality: schema.ModalitySSH,
			env:      sshEnv,
			want:     []string{"h1:22", "h2:2222"},
		},
		{
			name:     "winrm uses the same addressing",
			modality: schema.ModalityWinRM,
			env:      sshEnv,
			want:     []string{"h1:22", "h2:2222"},
		},
		{
			name:     "manual override is the sole target",
			modality: schema.ModalitySSH,
			env:      sshEnv,
			manual:   "10.1.2.3:22",
			want:     []string{"10.1.2.3:22"},
		},
		{
			name:     "docker expands container names",
			modality: schema.ModalityDocker,
			env: &schema.EnvironmentConfig{Targets: []schema.TargetSpec{
				{Container: "registry"},
				{Container: "core"},
			}},
			want: []string{"registry", "core"},
		},
		{
			name:     "k8s is a singleton regardless of target list",
			modality: schema.ModalityK8s,
			env: &schema.EnvironmentConfig{
				Namespace: "vault",
				Context:   "prod-cluster",
				Targets:   sshEnv.Targets,
			},
			want: []string{"prod-cluster/vault"},
		},
		{
			name:     "github is a singleton org",
			modality: schema.ModalityGitHub,
			env:      &schema.EnvironmentConfig{Org: "acme"},
			want:     []string{"acme"},
		},
		{
			name:     "api scans local",
			modality: schema.ModalityAPI,
			env:      &schema.EnvironmentConfig{},
			want:     []string{"local"},
		},
		{
			name:     "empty target list fails",
			modality: schema.ModalitySSH,
			env:      &schema.EnvironmentConfig{},
			wantErr:  ErrNoTargets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.modality, tt.env, tt.manual)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Plan() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan() = %v, want %v", got, tt.want)
			}
		})
	}
}
