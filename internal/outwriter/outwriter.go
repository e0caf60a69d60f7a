// Package outwriter renders analysis results as text tables, CSV or JSON.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteModularity prints modularity results using the configured output format.
func (ow *OutWriter) WriteModularity(result *schema.ModularityResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, "modularity",
		func(w io.Writer) error { return writeModularityJSON(w, result) },
		func(w io.Writer) error { return writeModularityCSV(w, result, cfg) },
		func(w io.Writer) error { return writeModularityTable(w, result, cfg, duration) },
	)
}

// WriteSessions prints session detection results using the configured output format.
func (ow *OutWriter) WriteSessions(result *schema.SessionDetectionResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, "sessions",
		func(w io.Writer) error { return writeSessionsJSON(w, result, cfg) },
		func(w io.Writer) error { return writeSessionsCSV(w, result, cfg) },
		func(w io.Writer) error { return writeSessionsTable(w, result, cfg, duration) },
	)
}

// WriteReport prints the combined report using the configured output format.
func (ow *OutWriter) WriteReport(result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	return dispatch(cfg, "report",
		func(w io.Writer) error { return writeReportJSON(w, result, cfg) },
		func(w io.Writer) error { return writeReportCSV(w, result, cfg) },
		func(w io.Writer) error { return writeReportText(w, result, cfg, duration) },
	)
}

// WritePatterns prints the pattern catalog using the configured output format.
func (ow *OutWriter) WritePatterns(catalog []schema.PatternInfo, cfg *contract.Config) error {
	return dispatch(cfg, "patterns",
		func(w io.Writer) error { return writeJSON(w, catalog) },
		func(w io.Writer) error { return writePatternsCSV(w, catalog) },
		func(w io.Writer) error { return writePatternsTable(w, catalog) },
	)
}

// dispatch routes to the writer for cfg.Output and sends it to the configured destination.
func dispatch(cfg *contract.Config, what string, jsonFn, csvFn, textFn func(io.Writer) error) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, jsonFn, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing %s JSON output: %w", what, err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, csvFn, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing %s CSV output: %w", what, err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, textFn, "Wrote table"); err != nil {
			return fmt.Errorf("error writing %s table: %w", what, err)
		}
	}
	return nil
}

// ratingLabel returns the colored or plain rating label for tables.
func ratingLabel(rating schema.Rating, cfg *contract.Config) string {
	if !cfg.UseColors {
		return string(rating)
	}
	return contract.GetColorRating(rating)
}

// formatBound formats one side of a time window, using open for zero times.
func formatBound(t time.Time, open string) string {
	if t.IsZero() {
		return open
	}
	return t.Format(contract.DateTimeFormat)
}
