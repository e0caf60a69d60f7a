package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file written by this package.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"analysis runs", new(AnalysisRun), []string{"analysis_id", "run_uuid", "kind", "start_time", "end_time", "run_duration_ms", "total_items", "config_params"}},
		{"file modularity", new(FileModularity), []string{"analysis_id", "file_path", "analysis_time", "lines", "pattern", "score", "rating", "flags", "fingerprint"}},
		{"sessions", new(Session), []string{"analysis_id", "session_id", "start_time", "end_time", "duration_minutes", "commit_count", "authors"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"gap":120}`

	records := []schema.AnalysisRunRecord{
		{AnalysisID: 1, RunUUID: "1f0c", Kind: schema.SessionsKind, StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalItems: 4, ConfigParams: &params},
		{AnalysisID: 2, RunUUID: "2a9d", Kind: schema.ModularityKind, StartTime: start.Add(time.Hour)},
	}

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteAnalysisRunsParquet(ConvertAnalysisRunRecords(records), path))

	rows := readAll[AnalysisRun](t, path)
	require.Len(t, rows, 2)

	assert.Equal(t, "sessions", rows[0].Kind)
	assert.Equal(t, int32(4), rows[0].TotalItems)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, end, *rows[0].EndTime, time.Microsecond)
	require.NotNil(t, rows[0].RunDurationMs)
	assert.Equal(t, duration, *rows[0].RunDurationMs)
	require.NotNil(t, rows[0].ConfigParams)
	assert.Equal(t, params, *rows[0].ConfigParams)

	assert.Equal(t, "modularity", rows[1].Kind)
	assert.Nil(t, rows[1].EndTime, "unfinished runs keep a null end time")
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteFileModularityParquet(t *testing.T) {
	records := []schema.FileModularityRecord{
		{AnalysisID: 7, FilePath: "src/store.ts", AnalysisTime: time.Now().UTC(), Lines: 1600, Pattern: "data-store", Score: 8, Rating: "good", Flags: "no-internal-structure", Fingerprint: "00ff00ff00ff00ff"},
		{AnalysisID: 7, FilePath: "pkg/app.go", AnalysisTime: time.Now().UTC(), Lines: 120, Pattern: "none", Score: 10, Rating: "elite"},
	}

	path := filepath.Join(t.TempDir(), "files.parquet")
	require.NoError(t, WriteFileModularityParquet(ConvertFileModularityRecords(records), path))

	rows := readAll[FileModularity](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "src/store.ts", rows[0].FilePath)
	assert.Equal(t, int32(8), rows[0].Score)
	assert.Equal(t, "no-internal-structure", rows[0].Flags)
	assert.Empty(t, rows[1].Flags)
	assert.Equal(t, "elite", rows[1].Rating)
}

func TestWriteSessionsParquet(t *testing.T) {
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	records := []schema.SessionRecord{
		{AnalysisID: 3, SessionID: 1, StartTime: start, EndTime: start.Add(40 * time.Minute), DurationMinutes: 40, CommitCount: 2, Authors: "Dana Park, Lee Okafor"},
	}

	path := filepath.Join(t.TempDir(), "sessions.parquet")
	require.NoError(t, WriteSessionsParquet(ConvertSessionRecords(records), path))

	rows := readAll[Session](t, path)
	require.Len(t, rows, 1)
	assert.InDelta(t, 40.0, rows[0].DurationMinutes, 1e-9)
	assert.Equal(t, "Dana Park, Lee Okafor", rows[0].Authors)
	assert.True(t, start.Equal(rows[0].StartTime))
}

func TestWriteParquetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteSessionsParquet([]Session{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "an empty export still carries the footer")
	assert.Empty(t, readAll[Session](t, path))
}

func TestWriteParquetBadPath(t *testing.T) {
	err := WriteAnalysisRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.Error(t, err)
}
