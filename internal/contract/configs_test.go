package contract

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input that passes validation; tests mutate one field at a time.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Limit:        10,
		Workers:      4,
		Precision:    1,
		Output:       "text",
		RepoPathStr:  ".",
		CacheBackend: string(schema.SQLiteBackend),
		MinLines:     DefaultMinLines,
		Gap:          "90",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid limit (zero)", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: true},
		{name: "invalid limit (too large)", mutate: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: true},
		{name: "invalid workers (zero)", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "invalid precision (too high)", mutate: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: true},
		{name: "invalid output format", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "json output", mutate: func(in *ConfigRawInput) { in.Output = "JSON" }},
		{name: "invalid emoji flag", mutate: func(in *ConfigRawInput) { in.Emoji = "maybe" }, expectError: true},
		{name: "negative min-lines", mutate: func(in *ConfigRawInput) { in.MinLines = -1 }, expectError: true},
		{name: "zero min-lines", mutate: func(in *ConfigRawInput) { in.MinLines = 0 }},
		{name: "known patterns", mutate: func(in *ConfigRawInput) { in.Patterns = "controller, none" }},
		{name: "unknown pattern", mutate: func(in *ConfigRawInput) { in.Patterns = "controller,service" }, expectError: true},
		{name: "zero gap", mutate: func(in *ConfigRawInput) { in.Gap = "0" }, expectError: true},
		{name: "negative gap", mutate: func(in *ConfigRawInput) { in.Gap = "-30" }, expectError: true},
		{name: "non-numeric gap", mutate: func(in *ConfigRawInput) { in.Gap = "later" }, expectError: true},
		{name: "gap as duration", mutate: func(in *ConfigRawInput) { in.Gap = "2h" }},
		{name: "empty gap uses default", mutate: func(in *ConfigRawInput) { in.Gap = "" }},
		{name: "relative start", mutate: func(in *ConfigRawInput) { in.Start = "3 months ago" }},
		{name: "invalid start", mutate: func(in *ConfigRawInput) { in.Start = "last tuesday" }, expectError: true},
		{
			name: "start after end",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2025-02-01T00:00:00Z"
				in.End = "2025-01-01T00:00:00Z"
			},
			expectError: true,
		},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "empty cache backend defaults to sqlite", mutate: func(in *ConfigRawInput) { in.CacheBackend = "" }},
		{name: "mysql without connection string", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: true},
		{name: "postgresql without connection string", mutate: func(in *ConfigRawInput) { in.CacheBackend = "postgresql" }, expectError: true},
		{
			name: "mysql with connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "mysql"
				in.CacheDBConnect = "user:pass@tcp(localhost:3306)/cadence"
			},
		},
		{name: "none backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "none" }},
		{
			name: "analysis backend sharing the default sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.AnalysisBackend = "sqlite"
				in.AnalysisDBConnect = GetCacheDBFilePath()
			},
			expectError: true,
		},
		{name: "analysis backend sqlite default", mutate: func(in *ConfigRawInput) { in.AnalysisBackend = "sqlite" }},
		{name: "invalid analysis backend", mutate: func(in *ConfigRawInput) { in.AnalysisBackend = "bogus" }, expectError: true},
	}

	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockClient := new(MockGitClient)
			mockClient.On("GetRepoRoot", ctx, workDir).Return("/mock/repo/root", nil).Maybe()

			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(ctx, cfg, mockClient, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, input.Limit, cfg.ResultLimit)
			assert.Equal(t, "/mock/repo/root", cfg.RepoPath)
			assert.Positive(t, cfg.GapMinutes)
			mockClient.AssertExpectations(t)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	ctx := context.Background()
	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	mockClient := new(MockGitClient)
	mockClient.On("GetRepoRoot", ctx, workDir).Return(workDir, nil)

	input := validInput()
	input.Gap = ""
	input.Exclude = "fixtures/, *.snap"
	input.Patterns = "utility,Controller,utility"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(ctx, cfg, mockClient, input))

	assert.InDelta(t, 120.0, cfg.GapMinutes, 1e-9)
	assert.True(t, cfg.StartTime.IsZero(), "history window is open by default")
	assert.True(t, cfg.EndTime.IsZero())
	assert.Equal(t, []schema.Pattern{schema.UtilityPattern, schema.ControllerPattern}, cfg.Patterns)
	assert.Contains(t, cfg.Excludes, "fixtures/")
	assert.Contains(t, cfg.Excludes, "*.snap")
	assert.Contains(t, cfg.Excludes, "go.sum")
	assert.Empty(t, cfg.PathFilter, "running at the root sets no implicit filter")
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
	assert.Empty(t, cfg.AnalysisBackend)
}

func TestProcessAndValidateImplicitFilter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg", "api")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	mockClient := new(MockGitClient)
	mockClient.On("GetRepoRoot", ctx, sub).Return(dir, nil)

	input := validInput()
	input.RepoPathStr = sub

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(ctx, cfg, mockClient, input))
	assert.Equal(t, dir, cfg.RepoPath)
	assert.Equal(t, "pkg/api/", cfg.PathFilter)
}

func TestProcessAndValidateGapError(t *testing.T) {
	input := validInput()
	input.Gap = "0"
	err := ProcessAndValidate(context.Background(), &Config{}, new(MockGitClient), input)
	assert.ErrorIs(t, err, ErrInvalidGapThreshold)
}

func TestProcessTimeRange(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{Start: "1 week ago", End: "2025-11-03T09:00:00Z"}
	require.NoError(t, processTimeRange(cfg, input, fixedNow))
	assert.Equal(t, fixedNow.Add(-7*24*time.Hour), cfg.StartTime)
	assert.Equal(t, time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC), cfg.EndTime)
}

func TestParseTimeBound(t *testing.T) {
	at1005 := time.Date(2025, 3, 4, 10, 5, 0, 0, time.UTC)
	at1055 := time.Date(2025, 3, 4, 10, 55, 0, 0, time.UTC)

	early, err := ParseTimeBound("start", "2 days ago", at1005)
	require.NoError(t, err)
	late, err := ParseTimeBound("start", "2 days ago", at1055)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), early)
	assert.Equal(t, early, late, "relative bounds align to the hour")

	exact, err := ParseTimeBound("start", "2025-03-01T10:05:00Z", at1055)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC), exact, "absolute bounds are kept exactly")

	open, err := ParseTimeBound("end", "", at1055)
	require.NoError(t, err)
	assert.True(t, open.IsZero())

	_, err = ParseTimeBound("end", "yesterday", at1055)
	assert.ErrorContains(t, err, "invalid end date format")
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Excludes: []string{"a/"}, Patterns: []schema.Pattern{schema.UtilityPattern}}
	clone := cfg.Clone()
	clone.Excludes[0] = "b/"
	clone.Patterns[0] = schema.ControllerPattern
	assert.Equal(t, "a/", cfg.Excludes[0])
	assert.Equal(t, schema.UtilityPattern, cfg.Patterns[0])
}

func TestModularityOptions(t *testing.T) {
	cfg := &Config{MinLines: 50, IncludeAll: true, Workers: 3, Patterns: []schema.Pattern{schema.NoPattern}}
	opts := cfg.ModularityOptions()
	assert.Equal(t, schema.ModularityOptions{
		MinLines:   50,
		IncludeAll: true,
		Patterns:   []schema.Pattern{schema.NoPattern},
		Workers:    3,
	}, opts)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=cadence"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}
