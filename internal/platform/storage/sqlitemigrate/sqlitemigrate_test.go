package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyRunsUpSectionOnce(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"0001_widgets.sql": {Data: []byte(`-- +migrate Up
CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
-- +migrate Down
DROP TABLE widgets;
`)},
	}
	sqlDB := openTempDB(t)

	if err := Apply(sqlDB, fsys); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := sqlDB.Exec("INSERT INTO widgets (name) VALUES ('a')"); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}

	// A second apply must skip the recorded migration, not re-run the DDL.
	if err := Apply(sqlDB, fsys); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var recorded int
	if err := sqlDB.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE name = '0001_widgets.sql'").Scan(&recorded); err != nil {
		t.Fatalf("count ledger rows: %v", err)
	}
	if recorded != 1 {
		t.Fatalf("ledger rows = %d, want 1", recorded)
	}
}

func TestApplyOrdersMigrationsLexically(t *testing.T) {
	t.Parallel()

	// 0002 depends on the table 0001 creates; out-of-order execution fails.
	fsys := fstest.MapFS{
		"0002_widgets_index.sql": {Data: []byte(`-- +migrate Up
CREATE INDEX idx_widgets_name ON widgets (name);
`)},
		"0001_widgets.sql": {Data: []byte(`-- +migrate Up
CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
`)},
	}
	sqlDB := openTempDB(t)

	if err := Apply(sqlDB, fsys); err != nil {
		t.Fatalf("apply: %v", err)
	}
}

func TestUpSectionWithoutMarkersIsWholeFile(t *testing.T) {
	t.Parallel()

	content := "CREATE TABLE plain (id INTEGER PRIMARY KEY);"
	if got := upSection(content); got != content {
		t.Fatalf("upSection = %q, want whole file", got)
	}
}
