package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/huangsam/cadence/core"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	client  contract.GitClient

	// cache maps a tool call plus repository HEAD to its JSON response.
	cache *lru.Cache[string, string]

	modularityFn func(context.Context, *contract.Config, contract.CacheManager) (*schema.ModularityResult, time.Duration, error)
	sessionsFn   func(context.Context, *contract.Config, contract.CacheManager) (*schema.SessionDetectionResult, time.Duration, error)
	reportFn     func(context.Context, *contract.Config, contract.CacheManager) (*schema.ReportResult, time.Duration, error)
}

func (h *toolHandler) handleGetModularity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = core.WithSuppressHeader(ctx)
	cfg := h.baseCfg.Clone()
	if err := h.applyCommon(ctx, cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if err := applyModularityParams(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid modularity parameters: %v", err)), nil
	}

	return h.cached(ctx, "get_modularity", cfg, true, func() (any, error) {
		result, _, err := h.modularityFn(ctx, cfg, h.mgr)
		if err != nil {
			return nil, fmt.Errorf("modularity analysis failed: %w", err)
		}
		return result, nil
	})
}

func (h *toolHandler) handleDetectSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = core.WithSuppressHeader(ctx)
	cfg := h.baseCfg.Clone()
	if err := h.applyCommon(ctx, cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if err := applySessionParams(cfg, request, time.Now()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid session parameters: %v", err)), nil
	}

	return h.cached(ctx, "detect_sessions", cfg, false, func() (any, error) {
		result, _, err := h.sessionsFn(ctx, cfg, h.mgr)
		if err != nil {
			return nil, fmt.Errorf("session detection failed: %w", err)
		}
		if !cfg.Detail {
			result = result.WithoutCommits()
		}
		return result, nil
	})
}

func (h *toolHandler) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = core.WithSuppressHeader(ctx)
	cfg := h.baseCfg.Clone()
	if err := h.applyCommon(ctx, cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if err := applySessionParams(cfg, request, time.Now()); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid session parameters: %v", err)), nil
	}

	return h.cached(ctx, "get_report", cfg, true, func() (any, error) {
		result, _, err := h.reportFn(ctx, cfg, h.mgr)
		if err != nil {
			return nil, fmt.Errorf("report failed: %w", err)
		}
		if !cfg.Detail {
			result.Sessions = result.Sessions.WithoutCommits()
		}
		return result, nil
	})
}

// applyCommon resolves the repository and result limit shared by every tool.
func (h *toolHandler) applyCommon(ctx context.Context, cfg *contract.Config, request mcp.CallToolRequest) error {
	if p := request.GetString("repo_path", ""); p != "" {
		root, err := h.client.GetRepoRoot(ctx, p)
		if err != nil {
			return err
		}
		cfg.RepoPath = root
	}
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxResultLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", contract.MaxResultLimit, l)
		}
		cfg.ResultLimit = l
	}
	return nil
}

func applyModularityParams(cfg *contract.Config, request mcp.CallToolRequest) error {
	cfg.PathFilter = request.GetString("filter", cfg.PathFilter)
	minLines := request.GetInt("min_lines", cfg.MinLines)
	if minLines < 0 {
		return fmt.Errorf("min_lines cannot be negative (received %d)", minLines)
	}
	cfg.MinLines = minLines
	cfg.IncludeAll = request.GetBool("include_all", cfg.IncludeAll)
	if p := request.GetString("patterns", ""); p != "" {
		patterns, err := contract.ParsePatterns(p)
		if err != nil {
			return err
		}
		cfg.Patterns = patterns
	}
	return nil
}

func applySessionParams(cfg *contract.Config, request mcp.CallToolRequest, now time.Time) error {
	if g := request.GetString("gap", ""); g != "" {
		gap, err := contract.ParseGapThreshold(g)
		if err != nil {
			return err
		}
		cfg.GapMinutes = gap
	}
	var err error
	if s := request.GetString("start", ""); s != "" {
		if cfg.StartTime, err = contract.ParseTimeBound("start", s, now); err != nil {
			return err
		}
	}
	if e := request.GetString("end", ""); e != "" {
		if cfg.EndTime, err = contract.ParseTimeBound("end", e, now); err != nil {
			return err
		}
	}
	cfg.Detail = request.GetBool("detail", cfg.Detail)
	return contract.ValidateTimeRange(cfg.StartTime, cfg.EndTime)
}

// cached serves a response from the LRU cache while the repository HEAD is unchanged.
// Calls are never cached when HEAD cannot be resolved. Tools that read file
// contents from the working tree are only cached while tracked files match HEAD.
func (h *toolHandler) cached(ctx context.Context, tool string, cfg *contract.Config, readsWorkingTree bool, run func() (any, error)) (*mcp.CallToolResult, error) {
	key, ok := h.cacheKey(ctx, tool, cfg)
	if ok && readsWorkingTree {
		clean, err := h.client.IsWorkingTreeClean(ctx, cfg.RepoPath)
		ok = err == nil && clean
	}
	if ok {
		if text, hit := h.cache.Get(key); hit {
			return mcp.NewToolResultText(text), nil
		}
	}

	result, err := run()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	text := string(jsonData)
	if ok {
		h.cache.Add(key, text)
	}
	return mcp.NewToolResultText(text), nil
}

func (h *toolHandler) cacheKey(ctx context.Context, tool string, cfg *contract.Config) (string, bool) {
	head, err := h.client.GetRepoHash(ctx, cfg.RepoPath)
	if err != nil || head == "" {
		return "", false
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%t|%s|%g|%d|%d|%t",
		tool, cfg.RepoPath, head, cfg.PathFilter, cfg.ResultLimit, cfg.MinLines, cfg.IncludeAll,
		contract.FormatPatterns(cfg.Patterns), cfg.GapMinutes, cfg.StartTime.Unix(), cfg.EndTime.Unix(), cfg.Detail,
	), true
}
