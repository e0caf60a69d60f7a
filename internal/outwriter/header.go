package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// LogHeader prints a concise 2-line header for an analysis to stderr.
func LogHeader(cfg *contract.Config, kind schema.AnalysisKind) {
	writeHeader(os.Stderr, cfg, kind)
}

func writeHeader(w io.Writer, cfg *contract.Config, kind schema.AnalysisKind) {
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}

	repoIcon, rangeIcon := "", ""
	if cfg.UseEmojis {
		repoIcon, rangeIcon = "🔎 ", "📅 "
	}

	_, _ = fmt.Fprintf(w, "%sRepo: %s (Analysis: %s)\n", repoIcon, repoName, kind)
	switch kind {
	case schema.ModularityKind:
		_, _ = fmt.Fprintf(w, "%sScope: %s (min lines: %d)\n", rangeIcon, formatScope(cfg.PathFilter), cfg.MinLines)
	default:
		_, _ = fmt.Fprintf(w, "%sRange: %s → %s (gap: %g min)\n", rangeIcon,
			formatBound(cfg.StartTime, "beginning"), formatBound(cfg.EndTime, "now"), cfg.GapMinutes)
	}
}

func formatScope(filter string) string {
	if filter == "" {
		return "whole repository"
	}
	return filter
}
