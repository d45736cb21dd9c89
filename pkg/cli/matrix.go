package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/fetcher"
	"github.com/GurdipSCode/devops-mondoo-scanner/internal/matrix"
)

func newMatrixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "matrix",
		Short:   "Emit the fleet execution plan for the scheduler",
		Example: "fleetscan matrix --environment production | buildkite-agent pipeline upload",
		RunE:    runMatrix,
	}

	cmd.Flags().String("environment", "", "Environment to plan the fleet run for")
	cmd.Flags().StringP("output", "o", "-", "Plan output path, - for stdout")

	_ = viper.BindPFlag("matrix.environment", cmd.Flags().Lookup("environment"))
	_ = viper.BindPFlag("matrix.output", cmd.Flags().Lookup("output"))
	return cmd
}

func runMatrix(cmd *cobra.Command, _ []string) error {
	environment := viper.GetString("matrix.environment")
	if environment == "" {
		return errors.New("please provide --environment")
	}

	g := &matrix.Generator{
		Fetcher: fetcher.NewGitHub(viper.GetString("github.token")),
		Logger:  newLogger(),
	}

	plan, statuses, err := g.Generate(cmd.Context(), matrix.Options{
		Org:         viper.GetString("org"),
		Ref:         viper.GetString("ref"),
		Environment: environment,
	})
	if err != nil {
		return err
	}

	planned := 0
	for _, s := range statuses {
		if s.State == matrix.StatePlanned {
			planned++
			continue
		}
		fmt.Fprintf(os.Stderr, "⏭️  skipping %s: %s\n", s.Tool, s.Reason)
	}
	fmt.Fprintf(os.Stderr, "📋 Planned %d of %d tools for %s\n", planned, len(statuses), environment)

	out, err := plan.Marshal()
	if err != nil {
		return err
	}

	if path := viper.GetString("matrix.output"); path != "-" {
		if err := os.WriteFile(path, out, 0644); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✅ Plan written to %s\n", path)
		return nil
	}
	fmt.Print(string(out))
	return nil
}
