package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version = "0.1.0"
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "fleetscan",
		Short: "Fleet-wide compliance-scan orchestrator",
		Long:  "fleetscan resolves per-tool scan configuration from the config repos, drives cnspec against the declared targets, and reports pass/fail per tool and environment.",
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("workdir", "w", "./work", "Run-scoped working directory")
	rootCmd.PersistentFlags().String("org", "GurdipSCode", "GitHub organization holding the config repos")
	rootCmd.PersistentFlags().String("ref", "main", "Git ref to read configuration from")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text, json")
	_ = viper.BindPFlag("workdir", rootCmd.PersistentFlags().Lookup("workdir"))
	_ = viper.BindPFlag("org", rootCmd.PersistentFlags().Lookup("org"))
	_ = viper.BindPFlag("ref", rootCmd.PersistentFlags().Lookup("ref"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Environment variable support (FLEETSCAN_ORG, FLEETSCAN_GITHUB_TOKEN, etc.)
	viper.SetEnvPrefix("FLEETSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Subcommands
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newMatrixCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the global log flags.
func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{}
	switch viper.GetString("log.level") {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if viper.GetString("log.format") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
