package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/engine"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/history"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/runner"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/verdict"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scan",
		Short:   "Run a compliance scan for one tool and environment",
		Example: "fleetscan scan --tool vault --environment production",
		RunE:    runScan,
	}

	cmd.Flags().String("tool", "", "Tool to scan (config repo is devops-<tool>)")
	cmd.Flags().String("environment", "", "Environment declared in the tool's scan descriptor")
	cmd.Flags().String("target", "", "Manual target override; bypasses the declared target list")
	cmd.Flags().Int("concurrency", 4, "Parallel engine invocations within the run")
	cmd.Flags().Duration("target-timeout", 20*time.Minute, "Per-target engine timeout")
	cmd.Flags().String("history-db", "", "SQLite file recording run verdicts (optional)")
	cmd.Flags().Bool("annotate", false, "Report pass/fail through buildkite-agent")

	_ = viper.BindPFlag("scan.tool", cmd.Flags().Lookup("tool"))
	_ = viper.BindPFlag("scan.environment", cmd.Flags().Lookup("environment"))
	_ = viper.BindPFlag("scan.target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("scan.concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("scan.target_timeout", cmd.Flags().Lookup("target-timeout"))
	_ = viper.BindPFlag("scan.history_db", cmd.Flags().Lookup("history-db"))
	_ = viper.BindPFlag("scan.annotate", cmd.Flags().Lookup("annotate"))

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	tool := viper.GetString("scan.tool")
	if tool == "" {
		return errors.New("please provide --tool")
	}
	environment := viper.GetString("scan.environment")
	if environment == "" {
		return errors.New("please provide --environment")
	}

	logger := newLogger()
	ctx := cmd.Context()

	r := &runner.Runner{
		Fetcher: fetcher.NewGitHub(viper.GetString("github.token")),
		Engine:  &engine.Cnspec{},
		Logger:  logger,
	}
	if viper.GetBool("scan.annotate") {
		sink := &verdict.BuildkiteSink{}
		r.Annotator = sink
		r.Uploader = sink
	}

	fmt.Printf("🚀 Scanning %s (%s)\n", tool, environment)

	v, err := r.Run(ctx, runner.Options{
		Org:           viper.GetString("org"),
		Tool:          tool,
		Ref:           viper.GetString("ref"),
		Environment:   environment,
		ManualTarget:  viper.GetString("scan.target"),
		WorkDir:       viper.GetString("workdir"),
		Concurrency:   viper.GetInt("scan.concurrency"),
		TargetTimeout: viper.GetDuration("scan.target_timeout"),
	})
	if err != nil {
		return err
	}

	if dbPath := viper.GetString("scan.history_db"); dbPath != "" {
		if err := saveHistory(ctx, dbPath, v); err != nil {
			logger.Error("failed to record run history", "error", err)
		}
	}

	fmt.Print(verdict.Summary(v))
	if !v.Passed {
		return fmt.Errorf("scan failed: %d of %d targets did not pass", v.TargetsFailed, v.TargetsTotal)
	}
	fmt.Printf("✅ Scan complete. %d target(s) passed.\n", v.TargetsPassed)
	return nil
}

func saveHistory(ctx context.Context, dbPath string, v schema.RunVerdict) error {
	db, err := history.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Save(ctx, v)
}
