package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/iocache"
	"github.com/huangsam/cadence/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	rootCtx      = context.Background()
	cfg          = &contract.Config{}         // validated configuration used by every command
	input        = &contract.ConfigRawInput{} // raw values merged by viper from file, env and flags
	cacheManager contract.CacheManager
)

// configDefaults are the values used when neither a flag, CADENCE_* variable
// nor .cadence.yaml sets a key.
var configDefaults = map[string]any{
	"limit":               contract.DefaultResultLimit,
	"workers":             contract.DefaultWorkers,
	"precision":           contract.DefaultPrecision,
	"output":              schema.TextOut,
	"min-lines":           contract.DefaultMinLines,
	"gap":                 contract.DefaultGap,
	"cache-backend":       schema.SQLiteBackend,
	"cache-db-connect":    "",
	"analysis-backend":    "",
	"analysis-db-connect": "",
	"emoji":               "no",
	"color":               "yes",
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "cadence",
	Short:              "Measure how modular a Git repository is and how its history is paced.",
	Long:               `Cadence scores every file on structural modularity and splits the commit history into work sessions.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig wires CADENCE_* environment variables and defaults into viper.
func initConfig() {
	viper.SetEnvPrefix("CADENCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}
}

// loadConfigFile reads --config, or .cadence.yaml from the working directory or $HOME.
// A missing default file is not an error.
func loadConfigFile() error {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(".cadence")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// sharedSetup resolves the configuration of an analysis command and opens the stores.
// The optional positional argument is the repository path.
func sharedSetup(ctx context.Context, cmd *cobra.Command, args []string) error {
	if err := prof.start(viper.GetString("profile")); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	if err := bindCommandFlags(cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	input.RepoPathStr = "."
	if len(args) == 1 {
		input.RepoPathStr = args[0]
	}
	if err := contract.ProcessAndValidate(ctx, cfg, contract.NewLocalGitClient(), input); err != nil {
		return err
	}

	// Every fatih/color call honors --color from here on
	color.NoColor = color.NoColor || !cfg.UseColors

	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// sharedSetupWrapper adapts sharedSetup to cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}

// StopProfiling writes the heap profile and stops CPU profiling when --profile was set.
func StopProfiling() error {
	return prof.stop()
}
