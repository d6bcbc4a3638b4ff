package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amphitheatre-app/playbooks/internal/openapi"
	"github.com/amphitheatre-app/playbooks/internal/server"
)

var (
	openapiFormat string
	openapiOutput string
)

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print the OpenAPI document of the REST API",
	Args:  cobra.NoArgs,
	RunE:  runOpenAPI,
}

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringVar(&openapiFormat, "format", "yaml", "Output format (json or yaml)")
	openapiCmd.Flags().StringVarP(&openapiOutput, "output", "o", "", "Write to a file instead of stdout")
}

func runOpenAPI(cmd *cobra.Command, _ []string) error {
	data, err := renderDocument(server.Document(), openapiFormat)
	if err != nil {
		return err
	}

	if openapiOutput != "" {
		if err := os.WriteFile(openapiOutput, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", openapiOutput, err)
		}
		return nil
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func renderDocument(doc *openapi.Document, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		data, err := doc.JSON()
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return doc.YAML()
	default:
		return nil, fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}
}
