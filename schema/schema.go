// Package schema has models and constants for all parts of cadence.
package schema

import "time"

// Commit is a single commit fetched from the repository history.
// The stats fields are optional and zero when the log did not carry them.
type Commit struct {
	Hash         string    `json:"hash"`
	Author       string    `json:"author"`
	Timestamp    time.Time `json:"timestamp"`
	Message      string    `json:"message,omitempty"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"files_changed"`
}

// FileRecord is a repository file with its text already read.
type FileRecord struct {
	Path        string // Repository-relative path with forward slashes
	Content     string // Raw UTF-8 text
	Lines       int    // Number of segments after splitting on "\n"
	Fingerprint string // xxh3 hash of the content
}

// StructuralSignals are derived from file text for every analysis.
type StructuralSignals struct {
	HasSectionMarkers  bool `json:"has_section_markers"`
	SectionMarkerCount int  `json:"section_marker_count"`
	ExportCount        int  `json:"export_count"`
	ImportCount        int  `json:"import_count"`
	HasMultipleTypes   bool `json:"has_multiple_types"`
	MethodCount        int  `json:"method_count"`
}

// FileModularityResult is the scored outcome for a single non-exempt file.
type FileModularityResult struct {
	Path        string            `json:"path"`
	Lines       int               `json:"lines"`
	Pattern     Pattern           `json:"pattern,omitempty"` // Empty when the file is unclassified
	Score       int               `json:"score"`
	Rating      Rating            `json:"rating"`
	Flags       []Flag            `json:"flags"`
	Signals     StructuralSignals `json:"signals"`
	Fingerprint string            `json:"fingerprint,omitempty"`
}

// ExemptedFile is a file excluded from scoring by category.
type ExemptedFile struct {
	Path   string `json:"path"`
	Lines  int    `json:"lines"`
	Reason string `json:"reason"`
}

// LargestFile is an entry of the largest-files list in the summary.
type LargestFile struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
	Score int    `json:"score"`
}

// ModularitySummary holds repository-wide statistics derived from the results.
type ModularitySummary struct {
	TotalFiles   int            `json:"total_files"`
	TotalLines   int            `json:"total_lines"`
	AverageScore float64        `json:"average_score"`
	Distribution map[Rating]int `json:"distribution"`
	LargestFiles []LargestFile  `json:"largest_files"`
}

// ModularityResult is the full output of the repository modularity analysis.
type ModularityResult struct {
	Files    []FileModularityResult `json:"files"`
	Summary  ModularitySummary      `json:"summary"`
	Exempted []ExemptedFile         `json:"exempted"`
}

// ModularityOptions controls which scored files are reported.
type ModularityOptions struct {
	MinLines   int       // Files below this line count are skipped unless IncludeAll is set
	IncludeAll bool      // Ignore MinLines
	Patterns   []Pattern // Optional allow-list; NoPattern selects unclassified files
	Workers    int       // Concurrent read+score tasks
}

// Session is a contiguous run of commits with no idle gap above the threshold.
type Session struct {
	ID              int       `json:"id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes float64   `json:"duration_minutes"`
	Commits         []Commit  `json:"commits"`
	CommitCount     int       `json:"commit_count"`
	Authors         []string  `json:"authors"`
	Additions       int       `json:"additions"`
	Deletions       int       `json:"deletions"`
}

// SessionStats aggregates statistics over all detected sessions.
type SessionStats struct {
	TotalSessions         int     `json:"total_sessions"`
	TotalCommits          int     `json:"total_commits"`
	AvgCommitsPerSession  float64 `json:"avg_commits_per_session"`
	AvgDurationMinutes    float64 `json:"avg_duration_minutes"`
	MedianDurationMinutes float64 `json:"median_duration_minutes"`
	MaxDurationMinutes    float64 `json:"max_duration_minutes"`
	MinDurationMinutes    float64 `json:"min_duration_minutes"`
	TotalDurationMinutes  float64 `json:"total_duration_minutes"`
}

// TimeRange is an inclusive time range.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SessionDetectionResult is the full output of the session detector.
type SessionDetectionResult struct {
	Sessions            []Session    `json:"sessions"`
	Stats               SessionStats `json:"stats"`
	Range               TimeRange    `json:"range"`
	GapThresholdMinutes float64      `json:"gap_threshold_minutes"`
}

// ReportResult combines both analyzers for a single repository.
type ReportResult struct {
	ReportID    string                  `json:"report_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	RepoPath    string                  `json:"repo_path"`
	Modularity  *ModularityResult       `json:"modularity"`
	Sessions    *SessionDetectionResult `json:"sessions"`
}

// PatternInfo describes how files of one pattern are scored.
type PatternInfo struct {
	Pattern      Pattern `json:"pattern"`
	YellowLines  int     `json:"yellow_lines,omitempty"`
	RedLines     int     `json:"red_lines,omitempty"`
	Credit       bool    `json:"credit"`
	ExemptReason string  `json:"exempt_reason,omitempty"`
}
