// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/cadence/schema"
)

// GitClient defines the Git operations the analyzers depend on.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetCommitLog returns the raw commit log with numstat output for the time window.
	// Zero times leave that side of the window open.
	GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)

	// IsWorkingTreeClean reports whether tracked files match HEAD.
	// Untracked files are ignored.
	IsWorkingTreeClean(ctx context.Context, repoPath string) (bool, error)

	// ListFilesAtRef returns the regular files tracked at a specific reference.
	// Submodules and symlinks are left out.
	ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error)
}

// FileScanner enumerates and reads the files that the modularity analysis scores.
type FileScanner interface {
	// ListFiles returns repository-relative paths under root, after filters and excludes.
	ListFiles(ctx context.Context, root string) ([]string, error)

	// ReadFile reads one repository-relative path as UTF-8 text.
	ReadFile(root string, path string) (schema.FileRecord, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSessionStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their results.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(kind schema.AnalysisKind, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalItems int) error

	// RecordFileModularity stores the modularity result of a file
	RecordFileModularity(analysisID int64, result schema.FileModularityResult) error

	// RecordSession stores a detected work session
	RecordSession(analysisID int64, session schema.Session) error

	// GetAllAnalysisRuns returns every tracked run, oldest first
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllFileModularity returns every stored file modularity row
	GetAllFileModularity() ([]schema.FileModularityRecord, error)

	// GetAllSessions returns every stored session row
	GetAllSessions() ([]schema.SessionRecord, error)

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// Close closes the underlying connection
	Close() error
}
