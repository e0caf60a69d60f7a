package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(sessionTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestCacheStoreSetGet(t *testing.T) {
	store := newTestCacheStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("k1", []byte("first"), 1, 100))
	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	// Upsert replaces the existing row
	require.NoError(t, store.Set("k1", []byte("second"), 2, 200))
	value, version, ts, err = store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)
}

func TestCacheStoreStatus(t *testing.T) {
	store := newTestCacheStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	newer := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Unix()
	require.NoError(t, store.Set("a", []byte("x"), 1, older))
	require.NoError(t, store.Set("b", []byte("y"), 1, newer))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, newer, status.LastEntryTime.Unix())
	assert.Equal(t, older, status.OldestEntryTime.Unix())
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(sessionTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStoreInvalidTableName(t *testing.T) {
	_, err := NewCacheStore("sessions; DROP TABLE x", schema.SQLiteBackend, filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `INSERT OR REPLACE INTO "cadence_session_cache"`},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key)"},
	}
	for _, tt := range tests {
		store := &CacheStoreImpl{tableName: sessionTable, backend: tt.backend}
		assert.Contains(t, store.getUpsertQuery(), tt.want, "backend=%s", tt.backend)
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery(sessionTable, schema.MySQLBackend), "LONGBLOB")
	assert.Contains(t, getCreateTableQuery(sessionTable, schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateTableQuery(sessionTable, schema.SQLiteBackend), "BLOB")
}

func TestPersistUtils(t *testing.T) {
	assert.Equal(t, "`cadence_sessions`", quoteTableName(sessionsTable, schema.MySQLBackend))
	assert.Equal(t, `"cadence_sessions"`, quoteTableName(sessionsTable, schema.PostgreSQLBackend))

	assert.Equal(t, "?, ?, ?", placeholderList(schema.SQLiteBackend, 3))
	assert.Equal(t, "$1, $2, $3", placeholderList(schema.PostgreSQLBackend, 3))

	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := driverName(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverName(schema.NoneBackend)
	assert.Error(t, err)

	assert.Error(t, validateTableName("bad-name"))
	assert.NoError(t, validateTableName(sessionTable))
}

func TestNormalizeMySQLDSN(t *testing.T) {
	dsn, err := normalizeMySQLDSN("user:pass@tcp(localhost:3306)/cadence")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")

	_, err = normalizeMySQLDSN("not a dsn")
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 500, time.FixedZone("x", 3600))
	assert.Equal(t, "2025-03-01T08:00:00.0000005Z", formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
}

func TestTimeScanner(t *testing.T) {
	var got time.Time
	want := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, timeScanner{backend: schema.SQLiteBackend, dest: &got}.Scan("2025-03-01T08:00:00Z"))
	assert.True(t, want.Equal(got))

	require.NoError(t, timeScanner{backend: schema.SQLiteBackend, dest: &got}.Scan([]byte("2025-03-01T08:00:00Z")))
	assert.True(t, want.Equal(got))

	require.NoError(t, timeScanner{backend: schema.MySQLBackend, dest: &got}.Scan(want))
	assert.True(t, want.Equal(got))

	var end *time.Time
	require.NoError(t, nullTimeScanner{backend: schema.SQLiteBackend, dest: &end}.Scan(nil))
	assert.Nil(t, end)
}
