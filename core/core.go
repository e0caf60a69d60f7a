// Package core has core logic for orchestrating the modularity and session analyses.
package core

import (
	"context"
	"time"

	"github.com/huangsam/cadence/core/algo"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/outwriter"
	"github.com/huangsam/cadence/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteModularity runs the modularity analysis and writes the ranked files.
// It serves as the main entry point for the 'modularity' command.
func ExecuteModularity(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetModularityResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteModularity(result, cfg, duration)
}

// ExecuteSessions runs session detection and writes the sessions with their statistics.
// It serves as the main entry point for the 'sessions' command.
func ExecuteSessions(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetSessionResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSessions(result, cfg, duration)
}

// ExecuteReport runs both analyzers and writes the combined report.
// It serves as the main entry point for the 'report' command.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetReportResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(result, cfg, duration)
}

// GetModularityResults runs the modularity analysis and returns its result and elapsed time.
func GetModularityResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.ModularityResult, time.Duration, error) {
	start := time.Now()
	client := contract.NewLocalGitClient()
	scanner := contract.NewRepoScanner(client, cfg.PathFilter, cfg.Excludes)
	result, err := runModularity(ctx, cfg, scanner, mgr)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// GetSessionResults runs session detection and returns its result and elapsed time.
func GetSessionResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.SessionDetectionResult, time.Duration, error) {
	start := time.Now()
	client := contract.NewLocalGitClient()
	result, err := runSessions(ctx, cfg, client, mgr)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// GetReportResults runs both analyzers and returns the combined report and elapsed time.
func GetReportResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.ReportResult, time.Duration, error) {
	start := time.Now()
	client := contract.NewLocalGitClient()
	scanner := contract.NewRepoScanner(client, cfg.PathFilter, cfg.Excludes)
	result, err := runReport(ctx, cfg, client, scanner, mgr)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// ExecutePatterns writes the pattern catalog. No repository is read.
func ExecutePatterns(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.NewOutWriter().WritePatterns(algo.PatternCatalog(), cfg)
}
