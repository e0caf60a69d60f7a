package cmd

import (
	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/spf13/cobra"
)

// modularityCmd scores every tracked file on structural modularity.
var modularityCmd = &cobra.Command{
	Use:   "modularity [repo-path]",
	Short: "Rank files by structural modularity score (0-10).",
	Long: `Classify every tracked file by its architectural role and score how
maintainable it is beyond raw size.

Each file is scored from 10 down, with penalties for:
- Size beyond the threshold of its pattern
- Heavy import coupling
- Too many exports or too many distinct responsibilities
- Generic utility grab-bags

Recognized patterns (controller, data store, route table, state machine) earn
a credit because they are expected to run larger. Test and generated files
are exempt and never scored.

Files are ranked worst first, so the top of the list is where refactoring pays off.

Examples:
  # Score the whole repository
  cadence modularity

  # Only look at one package, including small files
  cadence modularity --filter internal/ --all

  # Focus on utilities and unclassified files
  cadence modularity --patterns utility,none

  # Export the ranking for tracking
  cadence modularity --output csv --output-file modularity.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteModularity(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run modularity analysis", err)
		}
	},
}
