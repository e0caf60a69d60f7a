package cmd

import (
	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd runs both analyses and renders them as one document.
var reportCmd = &cobra.Command{
	Use:   "report [repo-path]",
	Short: "Run modularity scoring and session detection together.",
	Long: `Produce a combined report with the modularity ranking and the work
sessions of a repository.

Both analyses run concurrently and accept the same flags as their standalone
commands. A repository without commits still gets a modularity section.

Examples:
  # Full report as JSON
  cadence report --output json --output-file report.json

  # Report on one directory with a two hour gap
  cadence report ./internal --gap 2h`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run report", err)
		}
	},
}
