package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/parquet"
)

// ExecuteAnalysisExport performs the actual export of analysis data to Parquet files.
func ExecuteAnalysisExport(outputFile string) error {
	return exportAnalysis(Manager.GetAnalysisStore(), outputFile, os.Stdout)
}

// exportAnalysis writes one Parquet file per tracking table, named after outputFile.
func exportAnalysis(store contract.AnalysisStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not enabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	files, err := store.GetAllFileModularity()
	if err != nil {
		return fmt.Errorf("failed to retrieve file modularity rows: %w", err)
	}
	sessions, err := store.GetAllSessions()
	if err != nil {
		return fmt.Errorf("failed to retrieve sessions: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	filesFile := outputFile + ".file_modularity.parquet"
	if err := parquet.WriteFileModularityParquet(parquet.ConvertFileModularityRecords(files), filesFile); err != nil {
		return fmt.Errorf("failed to write file modularity rows: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file modularity records to: %s\n", len(files), filesFile)

	sessionsFile := outputFile + ".sessions.parquet"
	if err := parquet.WriteSessionsParquet(parquet.ConvertSessionRecords(sessions), sessionsFile); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d session records to: %s\n", len(sessions), sessionsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")
	return nil
}
