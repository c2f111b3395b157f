package cmd

import (
	"github.com/spf13/cobra"

	"github.com/flowsignal/flowcast/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Flowcast MCP server",
	Long:  `Launch an MCP server that allows AI agents to run forecasts and charts via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdio carries the protocol, so setup must not print to stdout.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, services.team, services.portfolio, services.forecasts, services.updates)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
