// Package parquet provides row types and writers for exporting tracked
// analysis runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents one tracked analysis run.
// This struct maps to the cadence_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	RunUUID    string `parquet:"run_uuid,snappy"`

	// Kind is modularity, sessions or report
	Kind string `parquet:"kind,snappy,dict"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is null for runs that never finished
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalItems counts scored files or detected sessions
	TotalItems int32 `parquet:"total_items,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileModularity is one scored file in a tracked run.
// This struct maps to the cadence_file_modularity database table.
type FileModularity struct {
	AnalysisID   int64     `parquet:"analysis_id,snappy"`
	FilePath     string    `parquet:"file_path,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
	Lines        int32     `parquet:"lines,snappy"`
	Pattern      string    `parquet:"pattern,snappy,dict"`
	Score        int32     `parquet:"score,snappy"`
	Rating       string    `parquet:"rating,snappy,dict"`

	// Flags is a comma-separated list, empty when the file raised none
	Flags       string `parquet:"flags,snappy"`
	Fingerprint string `parquet:"fingerprint,snappy"`
}

// Session is one detected work session in a tracked run.
// This struct maps to the cadence_sessions database table.
type Session struct {
	AnalysisID      int64     `parquet:"analysis_id,snappy"`
	SessionID       int32     `parquet:"session_id,snappy"`
	StartTime       time.Time `parquet:"start_time,snappy"`
	EndTime         time.Time `parquet:"end_time,snappy"`
	DurationMinutes float64   `parquet:"duration_minutes,snappy"`
	CommitCount     int32     `parquet:"commit_count,snappy"`
	Authors         string    `parquet:"authors,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T's struct tags.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFileModularityParquet writes scored files to a Parquet file.
func WriteFileModularityParquet(data []FileModularity, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSessionsParquet writes sessions to a Parquet file.
func WriteSessionsParquet(data []Session, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:    record.AnalysisID,
			RunUUID:       record.RunUUID,
			Kind:          string(record.Kind),
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalItems:    record.TotalItems,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFileModularityRecords converts schema.FileModularityRecord to FileModularity for Parquet export.
func ConvertFileModularityRecords(records []schema.FileModularityRecord) []FileModularity {
	result := make([]FileModularity, len(records))
	for i, record := range records {
		result[i] = FileModularity{
			AnalysisID:   record.AnalysisID,
			FilePath:     record.FilePath,
			AnalysisTime: record.AnalysisTime,
			Lines:        record.Lines,
			Pattern:      record.Pattern,
			Score:        record.Score,
			Rating:       record.Rating,
			Flags:        record.Flags,
			Fingerprint:  record.Fingerprint,
		}
	}
	return result
}

// ConvertSessionRecords converts schema.SessionRecord to Session for Parquet export.
func ConvertSessionRecords(records []schema.SessionRecord) []Session {
	result := make([]Session, len(records))
	for i, record := range records {
		result[i] = Session(record)
	}
	return result
}
