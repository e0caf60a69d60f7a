package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const (
	noCommitsMessage  = "No commits found in the analysis window."
	sessionTimeLayout = "2006-01-02 15:04"
	maxTableAuthors   = 3
	shortHashLen      = 8
)

// writeSessionsTable generates and writes the human-readable table.
func writeSessionsTable(w io.Writer, result *schema.SessionDetectionResult, cfg *contract.Config, duration time.Duration) error {
	if len(result.Sessions) == 0 {
		_, err := fmt.Fprintln(w, noCommitsMessage)
		return err
	}
	fmtFloat := createFormatters(cfg.Precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Start", "End", "Minutes", "Commits", "+/-", "Authors"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		data = append(data, []string{
			strconv.Itoa(s.ID),
			s.Start.Local().Format(sessionTimeLayout),
			s.End.Local().Format(sessionTimeLayout),
			fmtFloat(s.DurationMinutes),
			strconv.Itoa(s.CommitCount),
			fmt.Sprintf("+%d/-%d", s.Additions, s.Deletions),
			schema.FormatAuthors(s.Authors, maxTableAuthors),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Detail {
		if err := writeSessionCommits(w, result.Sessions); err != nil {
			return err
		}
	}
	return writeSessionsFooter(w, result, cfg, duration)
}

// writeSessionCommits lists every commit under its session.
func writeSessionCommits(w io.Writer, sessions []schema.Session) error {
	for _, s := range sessions {
		if _, err := fmt.Fprintf(w, "\nSession %d\n", s.ID); err != nil {
			return err
		}
		for _, c := range s.Commits {
			hash := c.Hash[:min(len(c.Hash), shortHashLen)]
			if _, err := fmt.Fprintf(w, "  %s %s %s: %s\n", hash, c.Timestamp.Local().Format(sessionTimeLayout), c.Author, c.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSessionsFooter(w io.Writer, result *schema.SessionDetectionResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)
	st := result.Stats

	lines := []string{
		fmt.Sprintf("Detected %d sessions from %d commits (gap threshold: %g min)",
			st.TotalSessions, st.TotalCommits, result.GapThresholdMinutes),
	}
	if st.TotalSessions > 0 {
		lines = append(lines,
			fmt.Sprintf("Duration (min): avg %s, median %s, max %s, min %s, total %s",
				fmtFloat(st.AvgDurationMinutes), fmtFloat(st.MedianDurationMinutes),
				fmtFloat(st.MaxDurationMinutes), fmtFloat(st.MinDurationMinutes), fmtFloat(st.TotalDurationMinutes)),
			fmt.Sprintf("Commits per session: %s | Range: %s → %s",
				fmtFloat(st.AvgCommitsPerSession),
				result.Range.Start.Format(contract.DateTimeFormat), result.Range.End.Format(contract.DateTimeFormat)),
		)
	}
	lines = append(lines, fmt.Sprintf("Analysis completed in %v. Cache backend: %s", duration, cfg.CacheBackend))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// sessionsCSVHeader is shared by the sessions and report CSV writers.
var sessionsCSVHeader = []string{
	"id", "start", "end", "duration_minutes", "commit_count", "authors", "additions", "deletions",
}

// writeSessionsCSV writes one row per session.
func writeSessionsCSV(w io.Writer, result *schema.SessionDetectionResult, cfg *contract.Config) error {
	return writeCSVWithHeader(w, sessionsCSVHeader, func(cw *csv.Writer) error {
		return writeSessionRows(cw, result, cfg)
	})
}

func writeSessionRows(cw *csv.Writer, result *schema.SessionDetectionResult, cfg *contract.Config) error {
	fmtFloat := createFormatters(cfg.Precision)
	for _, s := range result.Sessions {
		rec := []string{
			strconv.Itoa(s.ID),
			s.Start.Format(contract.DateTimeFormat),
			s.End.Format(contract.DateTimeFormat),
			fmtFloat(s.DurationMinutes),
			strconv.Itoa(s.CommitCount),
			strings.Join(s.Authors, "|"),
			strconv.Itoa(s.Additions),
			strconv.Itoa(s.Deletions),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// writeSessionsJSON writes the result, leaving commits out unless detail is on.
func writeSessionsJSON(w io.Writer, result *schema.SessionDetectionResult, cfg *contract.Config) error {
	if cfg.Detail {
		return writeJSON(w, result)
	}
	return writeJSON(w, result.WithoutCommits())
}
