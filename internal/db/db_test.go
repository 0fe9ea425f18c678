package db_test

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhub/examdesk/internal/db"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestWALMode verifies that Open enables WAL journal mode for file stores.
func TestWALMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal_test.db")
	gdb, err := db.Open(path, "", quietLog())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) }) //nolint:errcheck

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	assert.Equal(t, "wal", mode)

	var fk int
	gdb.Raw("PRAGMA foreign_keys").Scan(&fk)
	assert.Equal(t, 1, fk)
}

// TestOpen_CreatesIndexes checks the composite indexes that GORM does not
// create from struct tags.
func TestOpen_CreatesIndexes(t *testing.T) {
	gdb, err := db.Open(filepath.Join(t.TempDir(), "idx.db"), "", quietLog())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) }) //nolint:errcheck

	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	cases := map[string]string{
		"exam_tickets":       "idx_ticket_session_room",
		"registration_forms": "idx_reg_customer_status",
		"extension_forms":    "idx_ext_ticket_status",
	}
	for table, want := range cases {
		found := indexNames(t, sqlDB, table)
		assert.True(t, found[want], "index %q missing from %s; found: %v", want, table, found)
	}

	// The single-result guard lives in the schema.
	found := indexNames(t, sqlDB, "exam_results")
	assert.True(t, found["idx_exam_results_candidate_number"], "found: %v", found)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", db.SQLiteDSN("a.db"))
	assert.Equal(t, "file::memory:?cache=shared", db.SQLiteDSN("file::memory:?cache=shared"))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, db.IsPostgres("postgres://u:p@h:5432/db"))
	assert.True(t, db.IsPostgres("postgresql://u@h/db?sslmode=require"))
	assert.False(t, db.IsPostgres("examdesk.db"))
}

func indexNames(t *testing.T, sqlDB *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	require.NoError(t, err)
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		require.NoError(t, rows.Scan(&seq, &name, &unique, &origin, &partial))
		out[name] = true
	}
	return out
}
