package mcp_test

import (
	"context"
	"testing"

	"github.com/huangsam/cadence/internal/contract"
	mcp_internal "github.com/huangsam/cadence/internal/mcp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServerTools(t *testing.T) {
	s := mcp_internal.NewMCPServer(&contract.Config{RepoPath: "."}, nil)
	for _, name := range []string{"get_modularity", "detect_sessions", "get_report"} {
		assert.NotNil(t, s.GetTool(name), "tool %s should exist", name)
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{
		RepoPath:    ".",
		ResultLimit: contract.DefaultResultLimit,
		MinLines:    contract.DefaultMinLines,
		GapMinutes:  120,
	}

	// Validation fails before any analysis runs, so no manager is needed.
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(baseCfg, mgr)

	ctx := context.Background()

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		expected string
	}{
		{"unknown pattern", "get_modularity", map[string]any{"patterns": "widget"}, "invalid pattern 'widget'"},
		{"negative min_lines", "get_modularity", map[string]any{"min_lines": -5.0}, "min_lines cannot be negative"},
		{"limit too large", "get_modularity", map[string]any{"limit": 5000.0}, "cannot exceed 1000"},
		{"bad gap", "detect_sessions", map[string]any{"gap": "soon"}, "invalid session parameters"},
		{"zero gap", "detect_sessions", map[string]any{"gap": "0"}, "invalid session parameters"},
		{"bad start", "detect_sessions", map[string]any{"start": "last tuesday"}, "invalid start date format"},
		{"inverted window", "get_report", map[string]any{
			"start": "2025-03-05T00:00:00Z",
			"end":   "2025-03-01T00:00:00Z",
		}, "cannot be after end time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := s.GetTool(tt.tool)
			require.NotNil(t, tool, "Tool %s should exist", tt.tool)

			req := mcp.CallToolRequest{
				Params: mcp.CallToolParams{Name: tt.tool, Arguments: tt.args},
			}

			res, err := tool.Handler(ctx, req)
			require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, res.Content[0].(mcp.TextContent).Text, tt.expected)
		})
	}
}
