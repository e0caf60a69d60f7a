package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus represents the status of the analysis store.
type AnalysisStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalItems    int              `json:"total_items"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// AnalysisRunRecord represents a row from the cadence_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID    int64
	RunUUID       string
	Kind          AnalysisKind
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalItems    int32
	ConfigParams  *string
}

// FileModularityRecord represents a row from the cadence_file_modularity table.
type FileModularityRecord struct {
	AnalysisID   int64
	FilePath     string
	AnalysisTime time.Time
	Lines        int32
	Pattern      string
	Score        int32
	Rating       string
	Flags        string
	Fingerprint  string
}

// SessionRecord represents a row from the cadence_sessions table.
type SessionRecord struct {
	AnalysisID      int64
	SessionID       int32
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes float64
	CommitCount     int32
	Authors         string
}
