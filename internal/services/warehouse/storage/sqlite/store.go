// Package sqlite provides the SQLite-backed star-schema warehouse store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	sqlitemigrate "github.com/trackforge/defectcast/internal/platform/storage/sqlitemigrate"
	"github.com/trackforge/defectcast/internal/services/warehouse/storage"
	"github.com/trackforge/defectcast/internal/services/warehouse/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists the dimensional warehouse in SQLite.
type Store struct {
	sqlDB *sql.DB
}

const dateLayout = "2006-01-02"

func toDate(value time.Time) string {
	return value.UTC().Format(dateLayout)
}

func fromDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return parsed, nil
}

func parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}

// Open opens a SQLite warehouse store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DB exposes the underlying handle for integration tests.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return apperrors.New(apperrors.CodeStorageUnavailable, "warehouse store is not open")
	}
	return nil
}

// purge order: facts first so dimension rows are never referenced while
// foreign keys come back on.
var purgeTables = []string{
	"fact_incident",
	"fact_defect",
	"fact_cost",
	"fact_time_worked",
	"fact_task",
	"fact_project",
	"dim_task",
	"dim_project",
	"dim_responsible",
	"dim_client",
	"dim_calendar",
}

// PurgeAll empties every fact and dimension table. The foreign_keys
// pragma is connection-scoped, so the whole purge runs on one pooled
// connection. The calendar sequence resets so surrogate keys repeat
// across reloads of the same snapshot.
func (s *Store) PurgeAll(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	conn, err := s.sqlDB.Conn(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "acquire connection", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=OFF"); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "disable foreign keys", err)
	}
	for _, table := range purgeTables {
		if _, err := conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			_, _ = conn.ExecContext(ctx, "PRAGMA foreign_keys=ON")
			return apperrors.Wrap(apperrors.CodeStorageUnavailable, "purge "+table, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'dim_calendar'"); err != nil {
		_, _ = conn.ExecContext(ctx, "PRAGMA foreign_keys=ON")
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "reset calendar sequence", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "enable foreign keys", err)
	}
	return nil
}

var countTables = func() map[string]bool {
	known := make(map[string]bool, len(purgeTables)+1)
	for _, table := range purgeTables {
		known[table] = true
	}
	known["model_history"] = true
	return known
}()

// Count reports the row count of one warehouse table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if !countTables[table] {
		return 0, fmt.Errorf("unknown warehouse table %q", table)
	}
	var n int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeStorageUnavailable, "count "+table, err)
	}
	return n, nil
}

var _ storage.Store = (*Store)(nil)
