package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndRecent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	verdicts := []schema.RunVerdict{
		{
			RunID: "run-1", Tool: "vault", Environment: "production",
			Modality: schema.ModalitySSH, Passed: false, ScoreThreshold: 90,
			TargetsTotal: 2, TargetsPassed: 1, TargetsFailed: 1,
			Timestamp: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			RunID: "run-2", Tool: "vault", Environment: "production",
			Modality: schema.ModalitySSH, Passed: true, ScoreThreshold: 90,
			TargetsTotal: 2, TargetsPassed: 2,
			Timestamp: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			RunID: "run-3", Tool: "consul", Environment: "production",
			Modality: schema.ModalityDocker, Passed: true, ScoreThreshold: 80,
			TargetsTotal: 1, TargetsPassed: 1,
			Timestamp: time.Date(2026, 8, 2, 11, 0, 0, 0, time.UTC),
		},
	}
	for _, v := range verdicts {
		if err := db.Save(ctx, v); err != nil {
			t.Fatalf("Save(%s) error = %v", v.RunID, err)
		}
	}

	records, err := db.Recent(ctx, "vault", "production", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Recent() = %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].RunID != "run-2" || !records[0].Passed {
		t.Errorf("newest record = %+v, want passing run-2", records[0])
	}
	if records[1].RunID != "run-1" || records[1].TargetsFailed != 1 {
		t.Errorf("older record = %+v, want failing run-1", records[1])
	}
}

func TestSave_DuplicateRunID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	v := schema.RunVerdict{RunID: "run-1", Tool: "vault", Environment: "production", Timestamp: time.Now()}
	if err := db.Save(ctx, v); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := db.Save(ctx, v); err == nil {
		t.Error("Save() accepted a duplicate run ID")
	}
}
