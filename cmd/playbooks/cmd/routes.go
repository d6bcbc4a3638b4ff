package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/amphitheatre-app/playbooks/internal/output"
	"github.com/amphitheatre-app/playbooks/internal/server"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the endpoints of the REST API",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		endpoints := server.Endpoints()
		sort.SliceStable(endpoints, func(i, j int) bool {
			return endpoints[i].Path < endpoints[j].Path
		})

		rows := make([][]string, 0, len(endpoints))
		for _, e := range endpoints {
			rows = append(rows, []string{output.MethodBadge(e.Method), e.Path, e.Summary})
		}
		output.Table([]string{"Method", "Path", "Summary"}, rows)
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
