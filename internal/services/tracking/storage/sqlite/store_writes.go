package sqlite

import (
	"context"
	"fmt"

	"github.com/trackforge/defectcast/internal/services/tracking/storage"
)

// InsertClient inserts one client row.
func (s *Store) InsertClient(ctx context.Context, c storage.Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO clients (id, name, sector, country, contact_name, contact_email)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Sector, c.Country, c.ContactName, c.ContactEmail)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// InsertResponsible inserts one responsible row.
func (s *Store) InsertResponsible(ctx context.Context, r storage.Responsible) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO responsibles (id, name, role, team, email, phone)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Role, r.Team, r.Email, r.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert responsible: %w", err)
	}
	return nil
}

// InsertProject inserts one project row.
func (s *Store) InsertProject(ctx context.Context, p storage.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO projects (
		   id, name, methodology, stages, start_date, end_date,
		   budget, total_cost, profit, loss, progress,
		   deliverable_count, hours_invested, defects_detected,
		   emerging_tech_count, status, client_id, responsible_id
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Methodology, p.Stages,
		toNullDate(p.StartDate), toNullDate(p.EndDate),
		p.Budget, p.TotalCost, p.Profit, p.Loss, p.Progress,
		p.DeliverableCount, p.HoursInvested, p.DefectsDetected,
		p.EmergingTech, p.Status, p.ClientID, p.ResponsibleID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// InsertTask inserts one task row.
func (s *Store) InsertTask(ctx context.Context, task storage.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tasks (
		   id, project_id, title, priority, description, status,
		   start_date, end_date, estimated_hours, actual_hours
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.ProjectID, task.Title, task.Priority, task.Description,
		task.Status, toNullDate(task.StartDate), toNullDate(task.EndDate),
		task.EstimatedHours, task.ActualHours)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// InsertTimeEntry inserts one time entry.
func (s *Store) InsertTimeEntry(ctx context.Context, e storage.TimeEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO time_entries (responsible_id, task_id, entry_date, hours_worked)
		 VALUES (?, ?, ?, ?)`,
		e.ResponsibleID, e.TaskID, toDate(e.EntryDate), e.HoursWorked)
	if err != nil {
		return fmt.Errorf("insert time entry: %w", err)
	}
	return nil
}

// InsertCost inserts one cost record.
func (s *Store) InsertCost(ctx context.Context, c storage.Cost) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO costs (project_id, cost_date, kind, supplier, amount, currency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ProjectID, toDate(c.CostDate), c.Kind, c.Supplier, c.Amount, c.Currency)
	if err != nil {
		return fmt.Errorf("insert cost: %w", err)
	}
	return nil
}

// InsertDefect inserts one defect row.
func (s *Store) InsertDefect(ctx context.Context, d storage.Defect) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO defects (
		   id, project_id, detected_at, corrected_at,
		   type, severity, status, detection_stage
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ProjectID, toNullDate(d.DetectedAt), toNullDate(d.CorrectedAt),
		d.Type, d.Severity, d.Status, d.DetectionStage)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert defect: %w", err)
	}
	return nil
}

// InsertIncident inserts one incident row.
func (s *Store) InsertIncident(ctx context.Context, i storage.Incident) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO incidents (
		   id, project_id, task_id, responsible_id,
		   reported_at, resolved_at, severity, status
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.ProjectID, i.TaskID, i.ResponsibleID,
		toDate(i.ReportedAt), toNullDate(i.ResolvedAt), i.Severity, i.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

// InsertEvaluation inserts one client evaluation.
func (s *Store) InsertEvaluation(ctx context.Context, e storage.Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO evaluations (project_id, rating, rated_at)
		 VALUES (?, ?, ?)`,
		e.ProjectID, e.Rating, toDate(e.RatedAt))
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}
