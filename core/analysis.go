package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cadence/core/agg"
	"github.com/huangsam/cadence/core/algo"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/outwriter"
	"github.com/huangsam/cadence/schema"
	"golang.org/x/sync/errgroup"
)

// runModularity performs the header, tracking and limiting steps around a modularity scan.
func runModularity(ctx context.Context, cfg *contract.Config, scanner contract.FileScanner, mgr contract.CacheManager) (*schema.ModularityResult, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogHeader(cfg, schema.ModularityKind)
	}

	t := beginTracking(mgr, schema.ModularityKind, cfg)
	defer t.end()

	result, err := analyzeModularity(ctx, cfg, scanner)
	if err != nil {
		return nil, err
	}
	t.recordFiles(result.Files)

	result.Files = algo.LimitFiles(result.Files, cfg.ResultLimit)
	return result, nil
}

// runSessions performs the header and tracking steps around session detection.
func runSessions(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.SessionDetectionResult, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogHeader(cfg, schema.SessionsKind)
	}

	t := beginTracking(mgr, schema.SessionsKind, cfg)
	defer t.end()

	result, err := agg.CachedDetectSessions(ctx, cfg, client, mgr)
	if err != nil {
		return nil, err
	}
	t.recordSessions(result.Sessions)
	return result, nil
}

// runReport runs both analyzers concurrently and records them as a single run.
// The sessions section is nil when the window holds no commits.
func runReport(ctx context.Context, cfg *contract.Config, client contract.GitClient, scanner contract.FileScanner, mgr contract.CacheManager) (*schema.ReportResult, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogHeader(cfg, schema.ReportKind)
	}

	t := beginTracking(mgr, schema.ReportKind, cfg)
	defer t.end()

	var (
		modularity *schema.ModularityResult
		sessions   *schema.SessionDetectionResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		modularity, err = analyzeModularity(gctx, cfg, scanner)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = agg.CachedDetectSessions(gctx, cfg, client, mgr)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t.recordFiles(modularity.Files)
	t.recordSessions(sessions.Sessions)
	modularity.Files = algo.LimitFiles(modularity.Files, cfg.ResultLimit)

	report := &schema.ReportResult{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now(),
		RepoPath:    cfg.RepoPath,
		Modularity:  modularity,
	}
	if sessions.Stats.TotalCommits > 0 {
		report.Sessions = sessions
	}
	return report, nil
}

// analyzeModularity scans the configured path filter under the repository root.
func analyzeModularity(ctx context.Context, cfg *contract.Config, scanner contract.FileScanner) (*schema.ModularityResult, error) {
	return agg.AnalyzeModularity(ctx, scanner, cfg.RepoPath, cfg.ModularityOptions())
}
