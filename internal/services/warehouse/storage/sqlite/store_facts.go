package sqlite

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/services/warehouse/storage"
)

// InsertProjectFacts inserts project fact rows.
func (s *Store) InsertProjectFacts(ctx context.Context, rows []storage.ProjectFact) error {
	return s.insertBatch(ctx,
		`INSERT INTO fact_project (project_id, client_id, responsible_id, time_key,
			budget, total_cost, profit, loss, progress, deliverable_count, hours_invested,
			budget_deviation, roi, schedule_deviation, defect_rate, client_satisfaction)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.ProjectID, r.ClientID, r.ResponsibleID, r.TimeKey,
				r.Budget, r.TotalCost, r.Profit, r.Loss, r.Progress, r.DeliverableCount,
				r.HoursInvested, r.BudgetDeviation, r.ROI, r.ScheduleDeviation,
				r.DefectRate, r.ClientSatisfaction}
		})
}

// InsertTaskFacts inserts task fact rows.
func (s *Store) InsertTaskFacts(ctx context.Context, rows []storage.TaskFact) error {
	return s.insertBatch(ctx,
		`INSERT INTO fact_task (task_id, project_id, responsible_id, time_key,
			estimated_hours, actual_hours, hours_deviation, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.TaskID, r.ProjectID, r.ResponsibleID, r.TimeKey,
				r.EstimatedHours, r.ActualHours, r.HoursDeviation, r.Status}
		})
}

// InsertTimeWorkedFacts inserts hours-worked fact rows.
func (s *Store) InsertTimeWorkedFacts(ctx context.Context, rows []storage.TimeWorkedFact) error {
	return s.insertBatch(ctx,
		`INSERT INTO fact_time_worked (responsible_id, task_id, time_key, hours_worked)
		 VALUES (?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.ResponsibleID, r.TaskID, r.TimeKey, r.HoursWorked}
		})
}

// InsertCostFacts inserts cost fact rows.
func (s *Store) InsertCostFacts(ctx context.Context, rows []storage.CostFact) error {
	return s.insertBatch(ctx,
		`INSERT INTO fact_cost (project_id, time_key, kind, supplier, amount, currency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.ProjectID, r.TimeKey, r.Kind, r.Supplier, r.Amount, r.Currency}
		})
}

// InsertDefectFacts inserts defect fact rows.
func (s *Store) InsertDefectFacts(ctx context.Context, rows []storage.DefectFact) error {
	return s.insertBatch(ctx,
		`INSERT INTO fact_defect (project_id, time_key, defect_type, severity, status,
			detection_stage, correction_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			return []any{r.ProjectID, r.TimeKey, r.Type, r.Severity, r.Status,
				r.DetectionStage, r.CorrectionDays}
		})
}

// InsertIncidentFacts inserts incident fact rows.
func (s *Store) InsertIncidentFacts(ctx context.Context, rows []storage.IncidentFact) error {
	return s.insertBatch(ctx,
		`INSERT INTO fact_incident (project_id, task_id, responsible_id, time_key,
			severity, status, resolution_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(rows), func(i int) []any {
			r := rows[i]
			var days any
			if r.ResolutionDays != nil {
				days = *r.ResolutionDays
			}
			return []any{r.ProjectID, r.TaskID, r.ResponsibleID, r.TimeKey,
				r.Severity, r.Status, days}
		})
}

// InsertModelRecord appends one trained-model history row.
func (s *Store) InsertModelRecord(ctx context.Context, rec storage.ModelRecord) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO model_history (sigma, n_samples, mean_sq, expected, p90, trained_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Sigma, rec.Samples, rec.MeanSq, rec.Expected, rec.P90,
		rec.TrainedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "insert model record", err)
	}
	return nil
}

// LatestModelRecord returns the most recently appended model row.
func (s *Store) LatestModelRecord(ctx context.Context) (storage.ModelRecord, error) {
	if err := s.ready(); err != nil {
		return storage.ModelRecord{}, err
	}
	var rec storage.ModelRecord
	var trainedAt string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, sigma, n_samples, mean_sq, expected, p90, trained_at
		 FROM model_history ORDER BY id DESC LIMIT 1`).
		Scan(&rec.ID, &rec.Sigma, &rec.Samples, &rec.MeanSq, &rec.Expected, &rec.P90, &trainedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ModelRecord{}, apperrors.New(apperrors.CodeModelNotTrained, "no trained model recorded")
	}
	if err != nil {
		return storage.ModelRecord{}, apperrors.Wrap(apperrors.CodeStorageUnavailable, "query model record", err)
	}
	parsed, err := parseTimestamp(trainedAt)
	if err != nil {
		return storage.ModelRecord{}, apperrors.Wrap(apperrors.CodeModelRecordCorrupt, "parse trained_at", err)
	}
	rec.TrainedAt = parsed
	return rec, nil
}
