// Package cmd holds the commands of the playbooks binary.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/output"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   constants.ProjectName,
	Short: "HTTP gateway for playbooks and their source repositories",
	Long: fmt.Sprintf(`%s exposes playbooks of the orchestration server over REST.
It creates, starts and deletes playbooks, browses their source repositories
and streams the live logs of their actors.`, constants.ProjectName),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger.Initialize(constants.Development, logLevel)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Errorf("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file (default: ./playbooks.yaml when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
}
