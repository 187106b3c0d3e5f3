package sqlite

import (
	"context"
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/services/warehouse/storage"
)

// InsertCalendarDays stores calendar rows in a single transaction and
// returns them with their assigned surrogate keys, in input order.
func (s *Store) InsertCalendarDays(ctx context.Context, days []storage.CalendarDay) ([]storage.CalendarDay, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "begin calendar insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dim_calendar (full_date, day, month, quarter, year)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "prepare calendar insert", err)
	}
	defer stmt.Close()

	out := make([]storage.CalendarDay, 0, len(days))
	for _, d := range days {
		res, err := stmt.ExecContext(ctx, toDate(d.Date), d.Day, d.Month, d.Quarter, d.Year)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "insert calendar day", err)
		}
		key, err := res.LastInsertId()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "calendar surrogate key", err)
		}
		d.SurrogateKey = key
		out = append(out, d)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "commit calendar insert", err)
	}
	return out, nil
}

// CalendarKeys loads the full date-to-surrogate-key map.
func (s *Store) CalendarKeys(ctx context.Context) (map[time.Time]int64, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT time_key, full_date FROM dim_calendar")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "query calendar keys", err)
	}
	defer rows.Close()

	keys := make(map[time.Time]int64)
	for rows.Next() {
		var key int64
		var raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "scan calendar key", err)
		}
		date, err := fromDate(raw)
		if err != nil {
			return nil, err
		}
		keys[date] = key
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "iterate calendar keys", err)
	}
	return keys, nil
}

func (s *Store) insertBatch(ctx context.Context, query string, n int, bind func(i int) []any) error {
	if err := s.ready(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "begin batch insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "prepare batch insert", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, bind(i)...); err != nil {
			return apperrors.Wrap(apperrors.CodeStorageUnavailable, "exec batch insert", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "commit batch insert", err)
	}
	return nil
}

// InsertClientDims inserts client dimension rows.
func (s *Store) InsertClientDims(ctx context.Context, rows []storage.ClientDim) error {
	return s.insertBatch(ctx,
		`INSERT INTO dim_client (client_id, name, sector, country) VALUES (?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.ClientID, r.Name, r.Sector, r.Country}
		})
}

// InsertResponsibleDims inserts responsible dimension rows.
func (s *Store) InsertResponsibleDims(ctx context.Context, rows []storage.ResponsibleDim) error {
	return s.insertBatch(ctx,
		`INSERT INTO dim_responsible (responsible_id, name, role, team) VALUES (?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.ResponsibleID, r.Name, r.Role, r.Team}
		})
}

// InsertProjectDims inserts project dimension rows.
func (s *Store) InsertProjectDims(ctx context.Context, rows []storage.ProjectDim) error {
	return s.insertBatch(ctx,
		`INSERT INTO dim_project (project_id, name, methodology, stages, status) VALUES (?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.ProjectID, r.Name, r.Methodology, r.Stages, r.Status}
		})
}

// InsertTaskDims inserts task dimension rows.
func (s *Store) InsertTaskDims(ctx context.Context, rows []storage.TaskDim) error {
	return s.insertBatch(ctx,
		`INSERT INTO dim_task (task_id, project_id, title, priority, status) VALUES (?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.TaskID, r.ProjectID, r.Title, r.Priority, r.Status}
		})
}
