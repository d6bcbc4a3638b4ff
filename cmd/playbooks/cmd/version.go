package cmd

import (
	"github.com/spf13/cobra"

	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the service",
	Run: func(_ *cobra.Command, _ []string) {
		output.KeyValue("Version", *constants.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
