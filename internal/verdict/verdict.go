// Package verdict folds per-target scan results into one run verdict and
// hands it to the reporting sinks.
package verdict

import (
	"fmt"
	"strings"
	"time"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

// Aggregate folds results into a RunVerdict. The verdict is PASS only when
// every result succeeded; a single failure or error forces FAIL. All N
// results are carried so operators can see partial failure.
func Aggregate(runID, tool, environment string, modality schema.ScanModality, scoreThreshold int, results []schema.ScanResult) schema.RunVerdict {
	v := schema.RunVerdict{
		RunID:          runID,
		Tool:           tool,
		Environment:    environment,
		Modality:       modality,
		ScoreThreshold: scoreThreshold,
		TargetsTotal:   len(results),
		Results:        results,
		Timestamp:      time.Now().UTC(),
	}

	for _, r := range results {
		if r.Status == schema.StatusSuccess {
			v.TargetsPassed++
		} else {
			v.TargetsFailed++
		}
	}
	v.Passed = v.TargetsTotal > 0 && v.TargetsFailed == 0
	return v
}

// Summary renders the human-readable run summary.
func Summary(v schema.RunVerdict) string {
	var b strings.Builder

	status := "PASS"
	if !v.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "%s: %s compliance scan (%s, %s)\n", status, v.Tool, v.Environment, v.Modality)
	fmt.Fprintf(&b, "score threshold %d | targets %d | passed %d | failed %d\n",
		v.ScoreThreshold, v.TargetsTotal, v.TargetsPassed, v.TargetsFailed)

	for _, r := range v.Results {
		mark := "✅"
		if r.Status != schema.StatusSuccess {
			mark = "❌"
		}
		fmt.Fprintf(&b, "  %s %s (%s, exit %d)\n", mark, r.Target, r.Status, r.ExitCode)
	}
	return b.String()
}
