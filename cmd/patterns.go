package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// displaySetup loads only the output settings, so informational commands work outside a repository.
func displaySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	output := schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", output)
	}
	cfg.Output = output
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Width = viper.GetInt("width")
	return nil
}

// patternsCmd displays the classifier patterns and their scoring thresholds.
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Display the file patterns and the size thresholds used for scoring",
	Long: `Show every pattern the classifier can assign, in precedence order.

For each pattern this lists:
- The Yellow and Red line thresholds used by the size rule
- Whether the pattern earns the recognized-pattern credit
- Why the pattern is exempt from scoring, if it is

No Git analysis is performed - this is purely informational.

Examples:
  # Show the pattern catalog
  cadence patterns

  # Pipe it into other tools
  cadence patterns --output json`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return displaySetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePatterns(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display patterns", err)
		}
	},
}
