package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable   = "cadence_analysis_runs"
	fileModularityTable = "cadence_file_modularity"
	sessionsTable       = "cadence_sessions"
	migrationsTable     = "cadence_schema_migrations"
)

// analysisTables lists the tracking tables in creation order.
func analysisTables() []string {
	return []string{analysisRunsTable, fileModularityTable, sessionsTable}
}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	now     func() time.Time
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend, now: time.Now}, nil
	}

	db, err := openDatabase(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend, now: time.Now}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range analysisTables() {
		if _, err := db.Exec(getCreateAnalysisTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// columnTypes holds the per-backend column types used by the tracking tables.
type columnTypes struct {
	id, bigint, integer, real, text, key, time string
}

func typesFor(backend schema.DatabaseBackend) columnTypes {
	switch backend {
	case schema.MySQLBackend:
		return columnTypes{
			id: "BIGINT AUTO_INCREMENT PRIMARY KEY", bigint: "BIGINT", integer: "INT",
			real: "DOUBLE", text: "TEXT", key: "VARCHAR(512)", time: "DATETIME(6)",
		}
	case schema.PostgreSQLBackend:
		return columnTypes{
			id: "BIGSERIAL PRIMARY KEY", bigint: "BIGINT", integer: "INT",
			real: "DOUBLE PRECISION", text: "TEXT", key: "TEXT", time: "TIMESTAMPTZ",
		}
	default: // SQLite
		return columnTypes{
			id: "INTEGER PRIMARY KEY AUTOINCREMENT", bigint: "INTEGER", integer: "INTEGER",
			real: "REAL", text: "TEXT", key: "TEXT", time: "TEXT",
		}
	}
}

// getCreateAnalysisTableQuery returns the CREATE TABLE query for one tracking table.
func getCreateAnalysisTableQuery(table string, backend schema.DatabaseBackend) string {
	t := typesFor(backend)
	quoted := quoteTableName(table, backend)

	switch table {
	case analysisRunsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s,
				run_uuid VARCHAR(36) NOT NULL,
				kind VARCHAR(32) NOT NULL,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms %s,
				total_items %s,
				config_params %s
			);
		`, quoted, t.id, t.time, t.time, t.integer, t.integer, t.text)

	case fileModularityTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s NOT NULL,
				file_path %s NOT NULL,
				analysis_time %s NOT NULL,
				line_count %s NOT NULL,
				pattern VARCHAR(32) NOT NULL,
				score %s NOT NULL,
				rating VARCHAR(32) NOT NULL,
				flags %s NOT NULL,
				fingerprint VARCHAR(32) NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quoted, t.bigint, t.key, t.time, t.integer, t.integer, t.text)

	default: // sessionsTable
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id %s NOT NULL,
				session_id %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s NOT NULL,
				duration_minutes %s NOT NULL,
				commit_count %s NOT NULL,
				authors %s NOT NULL,
				PRIMARY KEY (analysis_id, session_id)
			);
		`, quoted, t.bigint, t.integer, t.time, t.time, t.real, t.integer, t.text)
	}
}

// disabled reports whether the store is a no-op.
func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(kind schema.AnalysisKind, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	args := []any{uuid.NewString(), string(kind), formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, kind, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, kind, start_time, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		if result, err = as.db.Exec(query, args...); err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalItems int) error {
	if as.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var startTime time.Time
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholder(as.backend, 1))
	if err := as.db.QueryRow(query, analysisID).Scan(timeScanner{backend: as.backend, dest: &startTime}); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_items = %s WHERE analysis_id = %s`,
		quotedTableName,
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3), placeholder(as.backend, 4))
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalItems, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordFileModularity stores one scored file for a run.
func (as *AnalysisStoreImpl) RecordFileModularity(analysisID int64, result schema.FileModularityResult) error {
	if as.disabled() {
		return nil
	}

	pattern := result.Pattern
	if pattern == "" {
		pattern = schema.NoPattern
	}
	flags := make([]string, len(result.Flags))
	for i, f := range result.Flags {
		flags[i] = string(f)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, file_path, analysis_time, line_count, pattern, score, rating, flags, fingerprint)
		VALUES (%s)
	`, quoteTableName(fileModularityTable, as.backend), placeholderList(as.backend, 9))

	_, err := as.db.Exec(query,
		analysisID, result.Path, formatTime(as.now(), as.backend), result.Lines, string(pattern),
		result.Score, string(result.Rating), strings.Join(flags, ","), result.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file modularity for %s: %w", result.Path, err)
	}
	return nil
}

// RecordSession stores one detected session for a run.
func (as *AnalysisStoreImpl) RecordSession(analysisID int64, session schema.Session) error {
	if as.disabled() {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, session_id, start_time, end_time, duration_minutes, commit_count, authors)
		VALUES (%s)
	`, quoteTableName(sessionsTable, as.backend), placeholderList(as.backend, 7))

	_, err := as.db.Exec(query,
		analysisID, session.ID, formatTime(session.Start, as.backend), formatTime(session.End, as.backend),
		session.DurationMinutes, session.CommitCount, strings.Join(session.Authors, ", "),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session %d: %w", session.ID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.disabled() {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs)
		if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, timeScanner{backend: as.backend, dest: &status.LastRunTime}); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs)
		if err := as.db.QueryRow(oldestRunQuery).Scan(timeScanner{backend: as.backend, dest: &status.OldestRunTime}); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		itemsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_items), 0) FROM %s", runs)
		if err := as.db.QueryRow(itemsQuery).Scan(&status.TotalItems); err != nil {
			return status, fmt.Errorf("failed to get total items: %w", err)
		}
	}

	for _, table := range analysisTables() {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_uuid, kind, start_time, end_time, run_duration_ms, total_items, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var kind string
		var totalItems sql.NullInt32
		if err := rows.Scan(
			&record.AnalysisID, &record.RunUUID, &kind,
			timeScanner{backend: as.backend, dest: &record.StartTime},
			nullTimeScanner{backend: as.backend, dest: &record.EndTime},
			&record.RunDurationMs, &totalItems, &record.ConfigParams,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		record.Kind = schema.AnalysisKind(kind)
		record.TotalItems = totalItems.Int32
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllFileModularity retrieves all tracked file scores from the store.
func (as *AnalysisStoreImpl) GetAllFileModularity() ([]schema.FileModularityRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, file_path, analysis_time, line_count, pattern, score, rating, flags, fingerprint
		FROM %s ORDER BY analysis_id, file_path`, quoteTableName(fileModularityTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file modularity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileModularityRecord
	for rows.Next() {
		var r schema.FileModularityRecord
		if err := rows.Scan(
			&r.AnalysisID, &r.FilePath, timeScanner{backend: as.backend, dest: &r.AnalysisTime},
			&r.Lines, &r.Pattern, &r.Score, &r.Rating, &r.Flags, &r.Fingerprint,
		); err != nil {
			return nil, fmt.Errorf("failed to scan file modularity: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file modularity: %w", err)
	}
	return results, nil
}

// GetAllSessions retrieves all tracked sessions from the store.
func (as *AnalysisStoreImpl) GetAllSessions() ([]schema.SessionRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, session_id, start_time, end_time, duration_minutes, commit_count, authors
		FROM %s ORDER BY analysis_id, session_id`, quoteTableName(sessionsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SessionRecord
	for rows.Next() {
		var r schema.SessionRecord
		if err := rows.Scan(
			&r.AnalysisID, &r.SessionID,
			timeScanner{backend: as.backend, dest: &r.StartTime},
			timeScanner{backend: as.backend, dest: &r.EndTime},
			&r.DurationMinutes, &r.CommitCount, &r.Authors,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return results, nil
}
