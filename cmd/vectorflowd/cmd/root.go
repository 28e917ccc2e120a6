// Package cmd provides the CLI commands for vectorflowd.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/vectorflow/pkg/version"
)

// NewRootCmd creates the root command for the vectorflowd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vectorflowd",
		Short: "In-memory vector database server",
		Long: `vectorflowd serves libraries of embedded text chunks over a REST
API, with pluggable nearest-neighbor indices (linear, k-d tree, LSH) for
k-NN search.

Run 'vectorflowd serve' to start the server.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("vectorflowd version {{.Version}}\n")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
