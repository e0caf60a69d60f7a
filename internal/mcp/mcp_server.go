// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// resultCacheSize bounds the number of tool responses kept in memory.
const resultCacheSize = 64

// NewMCPServer initializes and configures the Cadence MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newServer(newToolHandler(baseCfg, mgr, contract.NewLocalGitClient()))
}

func newToolHandler(baseCfg *contract.Config, mgr contract.CacheManager, client contract.GitClient) *toolHandler {
	// lru.New only fails on a non-positive size
	cache, _ := lru.New[string, string](resultCacheSize)
	return &toolHandler{
		baseCfg:      baseCfg,
		mgr:          mgr,
		client:       client,
		cache:        cache,
		modularityFn: core.GetModularityResults,
		sessionsFn:   core.GetSessionResults,
		reportFn:     core.GetReportResults,
	}
}

func newServer(h *toolHandler) *server.MCPServer {
	s := server.NewMCPServer(
		"Cadence Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	// --- 1. Tool: get_modularity ---
	s.AddTool(mcp.NewTool("get_modularity",
		mcp.WithDescription("Score every file in a Git repository on structural modularity (0-10) and rank the worst first."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the server's repository).")),
		mcp.WithString("filter", mcp.Description("Only analyze files under this repository-relative path prefix.")),
		mcp.WithNumber("min_lines", mcp.Description("Skip scored files shorter than this many lines.")),
		mcp.WithBoolean("include_all", mcp.Description("Ignore min_lines and report every scored file.")),
		mcp.WithString("patterns", mcp.Description("Comma-separated pattern allow-list, e.g. 'controller,utility' or 'none'.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned.")),
	), h.handleGetModularity)

	// --- 2. Tool: detect_sessions ---
	s.AddTool(mcp.NewTool("detect_sessions",
		mcp.WithDescription("Group commits into work sessions separated by idle gaps and report session statistics."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("gap", mcp.Description("Idle gap that splits sessions, e.g. '120', '90m' or '2h'.")),
		mcp.WithString("start", mcp.Description("Window start as ISO8601 or 'N [units] ago'.")),
		mcp.WithString("end", mcp.Description("Window end as ISO8601 or 'N [units] ago'.")),
		mcp.WithBoolean("detail", mcp.Description("Include the commits of every session.")),
	), h.handleDetectSessions)

	// --- 3. Tool: get_report ---
	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Run the modularity and session analyses together and return a combined report."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("gap", mcp.Description("Idle gap that splits sessions.")),
		mcp.WithString("start", mcp.Description("Window start for session detection.")),
		mcp.WithString("end", mcp.Description("Window end for session detection.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned.")),
	), h.handleGetReport)

	return s
}

// StartMCPServer starts the Cadence MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
