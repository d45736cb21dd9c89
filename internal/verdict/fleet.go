package verdict

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
	"github.com/GurdipSCode/devops-mondoo-scanner/pkg/utils"
)

// LoadAll collects every per-tool verdict summary under workDir, sorted by
// tool name. Tool directories without a summary (skipped or crashed runs)
// are ignored.
func LoadAll(workDir string) ([]schema.RunVerdict, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("read workdir: %w", err)
	}

	var verdicts []schema.RunVerdict
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := utils.LoadVerdict(filepath.Join(workDir, e.Name()))
		if err != nil {
			continue
		}
		verdicts = append(verdicts, v)
	}

	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i].Tool < verdicts[j].Tool })
	return verdicts, nil
}

// FleetSummary renders a one-line-per-tool overview and reports whether
// every run passed.
func FleetSummary(verdicts []schema.RunVerdict) (string, bool) {
	var b strings.Builder
	allPassed := len(verdicts) > 0

	for _, v := range verdicts {
		mark := "✅ PASS"
		if !v.Passed {
			mark = "❌ FAIL"
			allPassed = false
		}
		fmt.Fprintf(&b, "%s  %-12s %-12s targets %d/%d (threshold %d)\n",
			mark, v.Tool, v.Environment, v.TargetsPassed, v.TargetsTotal, v.ScoreThreshold)
	}
	return b.String(), allPassed
}
