package cmd

import (
	"github.com/huangsam/cadence/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the Cadence MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents run the modularity
and session analyses as tools.

Tools:
  get_modularity  - ranked modularity scores
  detect_sessions - work sessions and their statistics
  get_report      - both analyses in one document

The repository given here is the default for every tool call.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed per request by the handlers, so stdio
		// only ever carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
