package core

import (
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// tracker records one analysis run in the analysis store.
// A nil store or a failed BeginAnalysis leaves it inert, and every
// store failure is logged as a warning without failing the analysis.
type tracker struct {
	store contract.AnalysisStore
	id    int64
	items int
}

// beginTracking opens a run of the given kind when analysis tracking is enabled.
func beginTracking(mgr contract.CacheManager, kind schema.AnalysisKind, cfg *contract.Config) *tracker {
	t := &tracker{}
	if mgr == nil {
		return t
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return t
	}
	id, err := store.BeginAnalysis(kind, time.Now(), trackingParams(kind, cfg))
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return t
	}
	t.store, t.id = store, id
	return t
}

// trackingParams captures the options that shaped a run.
func trackingParams(kind schema.AnalysisKind, cfg *contract.Config) map[string]any {
	params := map[string]any{
		"repo_path":    cfg.RepoPath,
		"path_filter":  cfg.PathFilter,
		"result_limit": cfg.ResultLimit,
		"workers":      cfg.Workers,
	}
	if kind != schema.SessionsKind {
		params["min_lines"] = cfg.MinLines
		params["include_all"] = cfg.IncludeAll
		params["patterns"] = contract.FormatPatterns(cfg.Patterns)
	}
	if kind != schema.ModularityKind {
		params["gap_minutes"] = cfg.GapMinutes
		if !cfg.StartTime.IsZero() {
			params["start"] = cfg.StartTime.Format(contract.DateTimeFormat)
		}
		if !cfg.EndTime.IsZero() {
			params["end"] = cfg.EndTime.Format(contract.DateTimeFormat)
		}
	}
	return params
}

func (t *tracker) active() bool {
	return t.store != nil
}

// recordFiles stores every included file, before any result limit applies.
func (t *tracker) recordFiles(files []schema.FileModularityResult) {
	if !t.active() {
		return
	}
	for _, f := range files {
		if err := t.store.RecordFileModularity(t.id, f); err != nil {
			contract.LogWarn("Failed to record modularity for "+f.Path, err)
			continue
		}
		t.items++
	}
}

// recordSessions stores every detected session.
func (t *tracker) recordSessions(sessions []schema.Session) {
	if !t.active() {
		return
	}
	for _, s := range sessions {
		if err := t.store.RecordSession(t.id, s); err != nil {
			contract.LogWarn("Failed to record session", err)
			continue
		}
		t.items++
	}
}

// end closes the run with the number of items recorded so far.
func (t *tracker) end() {
	if !t.active() {
		return
	}
	if err := t.store.EndAnalysis(t.id, time.Now(), t.items); err != nil {
		contract.LogWarn("Failed to finalize analysis run", err)
	}
}
