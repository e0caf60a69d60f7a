package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// writeReportText renders both analyses one after the other.
func writeReportText(w io.Writer, result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "Report %s for %s (generated %s)\n\n",
		result.ReportID, result.RepoPath, result.GeneratedAt.Format(contract.DateTimeFormat)); err != nil {
		return err
	}

	if result.Modularity != nil {
		if _, err := fmt.Fprintln(w, "== Modularity =="); err != nil {
			return err
		}
		if err := writeModularityTable(w, result.Modularity, cfg, duration); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "\n== Sessions =="); err != nil {
		return err
	}
	if result.Sessions == nil {
		_, err := fmt.Fprintln(w, noCommitsMessage)
		return err
	}
	return writeSessionsTable(w, result.Sessions, cfg, duration)
}

// writeReportCSV writes the modularity rows, a blank line, then the session rows.
func writeReportCSV(w io.Writer, result *schema.ReportResult, cfg *contract.Config) error {
	cw := csv.NewWriter(w)

	if result.Modularity != nil {
		if err := cw.Write(modularityCSVHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		if err := writeModularityRows(cw, result.Modularity); err != nil {
			return err
		}
	}

	if result.Sessions != nil {
		cw.Flush()
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := cw.Write(sessionsCSVHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		if err := writeSessionRows(cw, result.Sessions, cfg); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// writeReportJSON drops session commit lists unless detail output is requested.
func writeReportJSON(w io.Writer, result *schema.ReportResult, cfg *contract.Config) error {
	if cfg.Detail || result.Sessions == nil {
		return writeJSON(w, result)
	}
	trimmed := *result
	trimmed.Sessions = result.Sessions.WithoutCommits()
	return writeJSON(w, trimmed)
}
