package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fleetscan version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("fleetscan %s\n", Version)
		},
	}
}
