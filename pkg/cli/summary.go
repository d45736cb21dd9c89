package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/verdict"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "summary",
		Short:   "Summarize every run verdict under the working directory",
		Example: "fleetscan summary --workdir work",
		RunE: func(cmd *cobra.Command, _ []string) error {
			verdicts, err := verdict.LoadAll(viper.GetString("workdir"))
			if err != nil {
				return err
			}
			if len(verdicts) == 0 {
				return fmt.Errorf("no run summaries under %s", viper.GetString("workdir"))
			}

			text, allPassed := verdict.FleetSummary(verdicts)
			fmt.Print(text)
			if !allPassed {
				return fmt.Errorf("fleet run has failing tools")
			}
			fmt.Println("✅ All tools passed.")
			return nil
		},
	}
}
