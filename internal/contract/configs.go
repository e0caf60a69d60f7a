package contract

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/cadence/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultMinLines    = 100
	DefaultGap         = "120" // minutes between commits before a new session starts
)

// CacheGranularity is the alignment applied to relative window bounds, so that
// repeated "N ago" queries resolve to the same window and can share a snapshot.
const CacheGranularity = time.Hour

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultExcludes are skipped by the file scanner on top of user excludes.
var DefaultExcludes = []string{
	"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock",
	".min.css",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico", ".mp4", ".mov", ".webm", ".mp3", ".ogg", ".pdf", ".webp",
	".woff", ".woff2", ".ttf", ".zip", ".gz", ".jar", ".exe", ".so", ".dylib",
	".json", ".csv",
	".md", "LICENSE",
	".DS_Store", ".gitignore",
	"dist/", "build/", "out/", "target/", "bin/", "vendor/", "node_modules/",
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath    string
	StartTime   time.Time // zero means no lower bound on history
	EndTime     time.Time // zero means no upper bound on history
	PathFilter  string
	ResultLimit int
	Workers     int
	Excludes    []string
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	// Modularity options
	MinLines   int
	IncludeAll bool
	Patterns   []schema.Pattern
	ShowExempt bool

	// Session options
	GapMinutes float64
	Detail     bool // list commits under each session

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Filter            string `mapstructure:"filter"`
	OutputFile        string `mapstructure:"output-file"`
	Limit             int    `mapstructure:"limit"`
	Workers           int    `mapstructure:"workers"`
	Exclude           string `mapstructure:"exclude"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	Width             int    `mapstructure:"width"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`

	// --- Fields from modularityCmd.Flags() ---
	MinLines   int    `mapstructure:"min-lines"`
	All        bool   `mapstructure:"all"`
	Patterns   string `mapstructure:"patterns"`
	ShowExempt bool   `mapstructure:"show-exempt"`

	// --- Fields from sessionsCmd.Flags() ---
	Start  string `mapstructure:"start"`
	End    string `mapstructure:"end"`
	Gap    string `mapstructure:"gap"`
	Detail bool   `mapstructure:"detail"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Excludes = slices.Clone(c.Excludes)
	clone.Patterns = slices.Clone(c.Patterns)
	return &clone
}

// ModularityOptions returns the aggregator options derived from this config.
func (c *Config) ModularityOptions() schema.ModularityOptions {
	return schema.ModularityOptions{
		MinLines:   c.MinLines,
		IncludeAll: c.IncludeAll,
		Patterns:   slices.Clone(c.Patterns),
		Workers:    c.Workers,
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processModularityOptions(cfg, input); err != nil {
		return err
	}
	if err := processSessionOptions(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return err
	}
	return resolveGitPathAndFilter(ctx, cfg, client, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// Analysis tracking is opt-in, so an empty backend leaves it off.
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis-db-connect: %w", err)
	}

	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cmp.Or(cfg.CacheDBConnect, GetCacheDBFilePath())
		analysisDBPath := cmp.Or(cfg.AnalysisDBConnect, GetAnalysisDBFilePath())
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the shared, non-path fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.PathFilter = input.Filter
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := ParseBoolString(cmp.Or(input.Emoji, "no"))
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(cmp.Or(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	cfg.Excludes = slices.Clone(DefaultExcludes)
	for p := range strings.SplitSeq(input.Exclude, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.Excludes = append(cfg.Excludes, trimmed)
		}
	}
	return nil
}

// processModularityOptions handles the line floor and the pattern allow-list.
func processModularityOptions(cfg *Config, input *ConfigRawInput) error {
	if input.MinLines < 0 {
		return fmt.Errorf("min-lines cannot be negative (received %d)", input.MinLines)
	}
	cfg.MinLines = input.MinLines
	cfg.IncludeAll = input.All
	cfg.ShowExempt = input.ShowExempt

	patterns, err := ParsePatterns(input.Patterns)
	if err != nil {
		return err
	}
	cfg.Patterns = patterns
	return nil
}

// ParsePatterns parses a comma-separated pattern allow-list such as "controller,utility".
// Duplicates are dropped and an empty string yields no filter.
func ParsePatterns(s string) ([]schema.Pattern, error) {
	var patterns []schema.Pattern
	for part := range strings.SplitSeq(s, ",") {
		p := schema.Pattern(strings.ToLower(strings.TrimSpace(part)))
		if p == "" {
			continue
		}
		if _, ok := schema.ValidPatterns[p]; !ok {
			return nil, fmt.Errorf("invalid pattern '%s'. must be one of %s", part, patternNames())
		}
		if !slices.Contains(patterns, p) {
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

func patternNames() string {
	names := make([]string, len(schema.AllPatterns))
	for i, p := range schema.AllPatterns {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// processSessionOptions validates the session gap threshold at the boundary,
// so the detector never sees a non-positive value.
func processSessionOptions(cfg *Config, input *ConfigRawInput) error {
	gap, err := ParseGapThreshold(cmp.Or(input.Gap, DefaultGap))
	if err != nil {
		return err
	}
	cfg.GapMinutes = gap
	cfg.Detail = input.Detail
	return nil
}

// processTimeRange parses the optional history window. Both ends accept an
// absolute ISO8601 timestamp or "N [units] ago".
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	var err error
	if cfg.StartTime, err = ParseTimeBound("start", input.Start, now); err != nil {
		return err
	}
	if cfg.EndTime, err = ParseTimeBound("end", input.End, now); err != nil {
		return err
	}
	return ValidateTimeRange(cfg.StartTime, cfg.EndTime)
}

// ParseTimeBound parses one side of the history window. An empty string
// yields the zero time, which leaves that side open. Absolute bounds are kept
// exactly; relative bounds are aligned down to CacheGranularity.
func ParseTimeBound(label, s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date format for '%s'. Expected absolute ISO8601 or 'N [units] ago': %w", label, s, err)
	}
	return t.Truncate(CacheGranularity), nil
}

// ValidateTimeRange rejects a window whose start is after its end.
func ValidateTimeRange(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", start.Format(DateTimeFormat), end.Format(DateTimeFormat))
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

// resolveGitPathAndFilter resolves the Git repository path and sets the implicit path filter.
func resolveGitPathAndFilter(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	absSearchPath, err := filepath.Abs(cmp.Or(input.RepoPathStr, "."))
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, statErr := os.Stat(absSearchPath)
	gitContextPath := absSearchPath
	if statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot

	if cfg.PathFilter != "" { // User-provided --filter flag takes precedence
		return nil
	}
	if absSearchPath == gitRoot {
		return nil
	}

	relativePath, err := filepath.Rel(gitRoot, absSearchPath)
	if err != nil {
		return err
	}
	if relativePath != "." {
		filter := relativePath
		if statErr == nil && info.IsDir() {
			filter += "/"
		}
		cfg.PathFilter = filepath.ToSlash(filter)
	}
	return nil
}
