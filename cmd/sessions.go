package cmd

import (
	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/spf13/cobra"
)

// sessionsCmd splits the commit history into work sessions.
var sessionsCmd = &cobra.Command{
	Use:   "sessions [repo-path]",
	Short: "Group commits into work sessions separated by idle gaps.",
	Long: `Detect bursts of activity in the Git history.

Commits are ordered by time and a new session starts whenever the gap since
the previous commit exceeds the threshold. A gap exactly equal to the threshold
keeps the session going.

Per session you get its time span, commit count, authors and churn. The summary
reports average, median, maximum and minimum session duration.

Examples:
  # Sessions across the whole history with the default 120 minute gap
  cadence sessions

  # Tighter sessions over the last month
  cadence sessions --gap 45m --start "1 month ago"

  # Include the commits of each session
  cadence sessions --detail --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSessions(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run session detection", err)
		}
	},
}
