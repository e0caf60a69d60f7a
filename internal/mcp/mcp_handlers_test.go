package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		RepoPath:    "/repo",
		ResultLimit: 25,
		MinLines:    100,
		GapMinutes:  120,
	}
}

func callTool(t *testing.T, h *toolHandler, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := newServer(h).GetTool(name)
	require.NotNil(t, tool)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	return res.Content[0].(mcp.TextContent).Text
}

func sessionsFixture() *schema.SessionDetectionResult {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	return &schema.SessionDetectionResult{
		Sessions: []schema.Session{{
			ID: 1, Start: start, End: start.Add(40 * time.Minute), DurationMinutes: 40, CommitCount: 2,
			Commits: []schema.Commit{{Hash: "30b7d4c2aa"}, {Hash: "5a88e2f903"}},
		}},
		Stats: schema.SessionStats{TotalSessions: 1, TotalCommits: 2},
	}
}

func TestGetModularityAppliesParamsAndCaches(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoRoot", mock.Anything, "/work/app/src").Return("/work/app", nil)
	client.On("GetRepoHash", mock.Anything, "/work/app").Return("abc123", nil)
	client.On("IsWorkingTreeClean", mock.Anything, "/work/app").Return(true, nil)

	h := newToolHandler(baseConfig(), nil, client)
	calls := 0
	var seen *contract.Config
	h.modularityFn = func(_ context.Context, cfg *contract.Config, _ contract.CacheManager) (*schema.ModularityResult, time.Duration, error) {
		calls++
		seen = cfg
		return &schema.ModularityResult{Files: []schema.FileModularityResult{{Path: "src/store.ts", Score: 3}}}, time.Second, nil
	}

	args := map[string]any{
		"repo_path":   "/work/app/src",
		"filter":      "src/",
		"min_lines":   0.0,
		"include_all": true,
		"patterns":    "utility,none",
		"limit":       5.0,
	}
	first := callTool(t, h, "get_modularity", args)
	require.False(t, first.IsError, resultText(t, first))
	assert.Contains(t, resultText(t, first), "src/store.ts")

	require.NotNil(t, seen)
	assert.Equal(t, "/work/app", seen.RepoPath)
	assert.Equal(t, "src/", seen.PathFilter)
	assert.Equal(t, 0, seen.MinLines)
	assert.True(t, seen.IncludeAll)
	assert.Equal(t, []schema.Pattern{schema.UtilityPattern, schema.NoPattern}, seen.Patterns)
	assert.Equal(t, 5, seen.ResultLimit)

	second := callTool(t, h, "get_modularity", args)
	assert.Equal(t, resultText(t, first), resultText(t, second))
	assert.Equal(t, 1, calls, "second call should be served from the cache")

	// The base config is never mutated by a tool call.
	assert.Equal(t, "/repo", h.baseCfg.RepoPath)
	assert.Empty(t, h.baseCfg.Patterns)
}

func TestCacheInvalidatedByNewHead(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil).Once()
	client.On("GetRepoHash", mock.Anything, "/repo").Return("def456", nil).Once()

	h := newToolHandler(baseConfig(), nil, client)
	calls := 0
	h.sessionsFn = func(context.Context, *contract.Config, contract.CacheManager) (*schema.SessionDetectionResult, time.Duration, error) {
		calls++
		return sessionsFixture(), time.Second, nil
	}

	callTool(t, h, "detect_sessions", nil)
	callTool(t, h, "detect_sessions", nil)
	assert.Equal(t, 2, calls)
	client.AssertExpectations(t)
}

func TestNoCacheWithoutHead(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("", errors.New("unknown revision"))

	h := newToolHandler(baseConfig(), nil, client)
	calls := 0
	h.sessionsFn = func(context.Context, *contract.Config, contract.CacheManager) (*schema.SessionDetectionResult, time.Duration, error) {
		calls++
		return sessionsFixture(), time.Second, nil
	}

	callTool(t, h, "detect_sessions", nil)
	callTool(t, h, "detect_sessions", nil)
	assert.Equal(t, 2, calls)
	assert.Zero(t, h.cache.Len())
}

func TestDetectSessionsDetail(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)

	h := newToolHandler(baseConfig(), nil, client)
	var seen *contract.Config
	h.sessionsFn = func(_ context.Context, cfg *contract.Config, _ contract.CacheManager) (*schema.SessionDetectionResult, time.Duration, error) {
		seen = cfg
		return sessionsFixture(), time.Second, nil
	}

	res := callTool(t, h, "detect_sessions", map[string]any{"gap": "90m", "start": "2025-03-01T00:00:00Z"})
	require.False(t, res.IsError, resultText(t, res))
	assert.NotContains(t, resultText(t, res), "30b7d4c2aa")
	assert.InDelta(t, 90.0, seen.GapMinutes, 1e-9)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), seen.StartTime)

	res = callTool(t, h, "detect_sessions", map[string]any{"gap": "90m", "start": "2025-03-01T00:00:00Z", "detail": true})
	assert.Contains(t, resultText(t, res), "30b7d4c2aa")
}

func TestGetReportWithoutSessions(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("IsWorkingTreeClean", mock.Anything, "/repo").Return(true, nil)

	h := newToolHandler(baseConfig(), nil, client)
	h.reportFn = func(context.Context, *contract.Config, contract.CacheManager) (*schema.ReportResult, time.Duration, error) {
		return &schema.ReportResult{ReportID: "r-1", RepoPath: "/repo", Modularity: &schema.ModularityResult{}}, time.Second, nil
	}

	res := callTool(t, h, "get_report", nil)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `"sessions": null`)
}

func TestAnalysisFailureIsToolError(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("IsWorkingTreeClean", mock.Anything, "/repo").Return(true, nil)

	h := newToolHandler(baseConfig(), nil, client)
	h.modularityFn = func(context.Context, *contract.Config, contract.CacheManager) (*schema.ModularityResult, time.Duration, error) {
		return nil, 0, errors.New("failed to read src/gone.ts")
	}

	res := callTool(t, h, "get_modularity", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "modularity analysis failed: failed to read src/gone.ts")
	assert.Zero(t, h.cache.Len(), "failures are not cached")
}

func TestRepoPathOutsideGit(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoRoot", mock.Anything, "/tmp/nowhere").Return("", errors.New("not a git repository"))

	h := newToolHandler(baseConfig(), nil, client)
	res := callTool(t, h, "get_report", map[string]any{"repo_path": "/tmp/nowhere"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not a git repository")
}

func TestWorkingTreeEditsBypassCache(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)
	client.On("IsWorkingTreeClean", mock.Anything, "/repo").Return(true, nil).Once()
	client.On("IsWorkingTreeClean", mock.Anything, "/repo").Return(false, nil).Twice()
	client.On("IsWorkingTreeClean", mock.Anything, "/repo").Return(false, errors.New("index locked")).Once()

	h := newToolHandler(baseConfig(), nil, client)
	score := 9
	calls := 0
	h.modularityFn = func(context.Context, *contract.Config, contract.CacheManager) (*schema.ModularityResult, time.Duration, error) {
		calls++
		return &schema.ModularityResult{Files: []schema.FileModularityResult{{Path: "widget.go", Score: score}}}, time.Second, nil
	}

	clean := resultText(t, callTool(t, h, "get_modularity", nil))
	assert.Contains(t, clean, `"score": 9`)
	assert.Equal(t, 1, h.cache.Len())

	// widget.go is rewritten without committing
	score = 4
	edited := resultText(t, callTool(t, h, "get_modularity", nil))
	assert.Contains(t, edited, `"score": 4`)
	callTool(t, h, "get_modularity", nil)
	callTool(t, h, "get_modularity", nil)
	assert.Equal(t, 4, calls, "a dirty or unknown working tree is never served from the cache")
	client.AssertExpectations(t)
}

func TestDetectSessionsIgnoresWorkingTree(t *testing.T) {
	client := &contract.MockGitClient{}
	client.On("GetRepoHash", mock.Anything, "/repo").Return("abc123", nil)

	h := newToolHandler(baseConfig(), nil, client)
	calls := 0
	h.sessionsFn = func(context.Context, *contract.Config, contract.CacheManager) (*schema.SessionDetectionResult, time.Duration, error) {
		calls++
		return sessionsFixture(), time.Second, nil
	}

	callTool(t, h, "detect_sessions", nil)
	callTool(t, h, "detect_sessions", nil)
	assert.Equal(t, 1, calls)
	client.AssertNotCalled(t, "IsWorkingTreeClean", mock.Anything, mock.Anything)
}
