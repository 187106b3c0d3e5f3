package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/services/tracking/storage"
)

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func scanDate(value sql.NullString) (time.Time, error) {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return time.Time{}, nil
	}
	return fromDate(value.String)
}

// ListClients returns every client row.
func (s *Store) ListClients(ctx context.Context) ([]storage.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, sector, country, contact_name, contact_email
		   FROM clients
		  ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []storage.Client
	for rows.Next() {
		var c storage.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Sector, &c.Country, &c.ContactName, &c.ContactEmail); err != nil {
			return nil, fmt.Errorf("list clients: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

// ListResponsibles returns every responsible row.
func (s *Store) ListResponsibles(ctx context.Context) ([]storage.Responsible, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, role, team, email, phone
		   FROM responsibles
		  ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list responsibles: %w", err)
	}
	defer rows.Close()

	var out []storage.Responsible
	for rows.Next() {
		var r storage.Responsible
		if err := rows.Scan(&r.ID, &r.Name, &r.Role, &r.Team, &r.Email, &r.Phone); err != nil {
			return nil, fmt.Errorf("list responsibles: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list responsibles: %w", err)
	}
	return out, nil
}

// ListProjects returns every project row.
func (s *Store) ListProjects(ctx context.Context) ([]storage.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, methodology, stages, start_date, end_date,
		        budget, total_cost, profit, loss, progress,
		        deliverable_count, hours_invested, defects_detected,
		        emerging_tech_count, status, client_id, responsible_id
		   FROM projects
		  ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []storage.Project
	for rows.Next() {
		var p storage.Project
		var start, end sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Methodology, &p.Stages, &start, &end,
			&p.Budget, &p.TotalCost, &p.Profit, &p.Loss, &p.Progress,
			&p.DeliverableCount, &p.HoursInvested, &p.DefectsDetected,
			&p.EmergingTech, &p.Status, &p.ClientID, &p.ResponsibleID); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		if p.StartDate, err = scanDate(start); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		if p.EndDate, err = scanDate(end); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// ListTasks returns every task row.
func (s *Store) ListTasks(ctx context.Context) ([]storage.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, project_id, title, priority, description, status,
		        start_date, end_date, estimated_hours, actual_hours
		   FROM tasks
		  ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []storage.Task
	for rows.Next() {
		var t storage.Task
		var start, end sql.NullString
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Priority, &t.Description,
			&t.Status, &start, &end, &t.EstimatedHours, &t.ActualHours); err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		if t.StartDate, err = scanDate(start); err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		if t.EndDate, err = scanDate(end); err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// ProjectFactRows computes the project fact candidates with derived measures.
func (s *Store) ProjectFactRows(ctx context.Context) ([]storage.ProjectFactRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT p.id, p.client_id, p.responsible_id, p.start_date,
		        p.budget, p.total_cost, p.profit, p.loss, p.progress,
		        p.deliverable_count, p.hours_invested,
		        p.budget - p.total_cost,
		        CASE WHEN p.total_cost > 0
		             THEN ((p.profit - p.loss) / p.total_cost) * 100
		             ELSE 0 END,
		        CAST(COALESCE(julianday(p.end_date) - julianday(p.start_date), 0) AS INTEGER),
		        CASE WHEN p.deliverable_count > 0
		             THEN CAST(p.defects_detected AS REAL) / p.deliverable_count
		             ELSE 0 END,
		        COALESCE(AVG(e.rating), 0)
		   FROM projects p
		   LEFT JOIN evaluations e ON e.project_id = p.id
		  GROUP BY p.id
		  ORDER BY p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("project fact rows: %w", err)
	}
	defer rows.Close()

	var out []storage.ProjectFactRow
	for rows.Next() {
		var r storage.ProjectFactRow
		var start sql.NullString
		if err := rows.Scan(&r.ProjectID, &r.ClientID, &r.ResponsibleID, &start,
			&r.Budget, &r.TotalCost, &r.Profit, &r.Loss, &r.Progress,
			&r.DeliverableCount, &r.HoursInvested,
			&r.BudgetDeviation, &r.ROI, &r.ScheduleDeviation,
			&r.DefectRate, &r.ClientSatisfaction); err != nil {
			return nil, fmt.Errorf("project fact rows: %w", err)
		}
		if r.StartDate, err = scanDate(start); err != nil {
			return nil, fmt.Errorf("project fact rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project fact rows: %w", err)
	}
	return out, nil
}

// TaskFactRows computes the task fact candidates.
func (s *Store) TaskFactRows(ctx context.Context) ([]storage.TaskFactRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT t.id, t.project_id, p.responsible_id, t.start_date,
		        t.estimated_hours, t.actual_hours, t.status,
		        t.actual_hours - t.estimated_hours
		   FROM tasks t
		   JOIN projects p ON t.project_id = p.id
		  ORDER BY t.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("task fact rows: %w", err)
	}
	defer rows.Close()

	var out []storage.TaskFactRow
	for rows.Next() {
		var r storage.TaskFactRow
		var start sql.NullString
		if err := rows.Scan(&r.TaskID, &r.ProjectID, &r.ResponsibleID, &start,
			&r.EstimatedHours, &r.ActualHours, &r.Status, &r.HoursDeviation); err != nil {
			return nil, fmt.Errorf("task fact rows: %w", err)
		}
		if r.StartDate, err = scanDate(start); err != nil {
			return nil, fmt.Errorf("task fact rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task fact rows: %w", err)
	}
	return out, nil
}

// TimeWorkedFactRows returns the time-worked fact candidates.
func (s *Store) TimeWorkedFactRows(ctx context.Context) ([]storage.TimeWorkedFactRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT responsible_id, task_id, entry_date, hours_worked
		   FROM time_entries
		  ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("time worked fact rows: %w", err)
	}
	defer rows.Close()

	var out []storage.TimeWorkedFactRow
	for rows.Next() {
		var r storage.TimeWorkedFactRow
		var entry string
		if err := rows.Scan(&r.ResponsibleID, &r.TaskID, &entry, &r.HoursWorked); err != nil {
			return nil, fmt.Errorf("time worked fact rows: %w", err)
		}
		if r.EntryDate, err = fromDate(entry); err != nil {
			return nil, fmt.Errorf("time worked fact rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("time worked fact rows: %w", err)
	}
	return out, nil
}

// CostFactRows returns the cost fact candidates.
func (s *Store) CostFactRows(ctx context.Context) ([]storage.CostFactRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT project_id, cost_date, kind, supplier, amount, currency
		   FROM costs
		  ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("cost fact rows: %w", err)
	}
	defer rows.Close()

	var out []storage.CostFactRow
	for rows.Next() {
		var r storage.CostFactRow
		var costDate string
		if err := rows.Scan(&r.ProjectID, &costDate, &r.Kind, &r.Supplier, &r.Amount, &r.Currency); err != nil {
			return nil, fmt.Errorf("cost fact rows: %w", err)
		}
		if r.CostDate, err = fromDate(costDate); err != nil {
			return nil, fmt.Errorf("cost fact rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cost fact rows: %w", err)
	}
	return out, nil
}

// DefectFactRows returns the defect fact candidates. Open defects count
// correction days up to today.
func (s *Store) DefectFactRows(ctx context.Context) ([]storage.DefectFactRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT d.project_id, d.detected_at, d.type, d.severity, d.status,
		        d.detection_stage,
		        CAST(julianday(COALESCE(d.corrected_at, date('now'))) - julianday(d.detected_at) AS INTEGER)
		   FROM defects d
		  WHERE d.detected_at IS NOT NULL
		  ORDER BY d.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("defect fact rows: %w", err)
	}
	defer rows.Close()

	var out []storage.DefectFactRow
	for rows.Next() {
		var r storage.DefectFactRow
		var detected string
		if err := rows.Scan(&r.ProjectID, &detected, &r.Type, &r.Severity, &r.Status,
			&r.DetectionStage, &r.CorrectionDays); err != nil {
			return nil, fmt.Errorf("defect fact rows: %w", err)
		}
		if r.DetectedDate, err = fromDate(detected); err != nil {
			return nil, fmt.Errorf("defect fact rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("defect fact rows: %w", err)
	}
	return out, nil
}

// IncidentFactRows returns the incident fact candidates.
func (s *Store) IncidentFactRows(ctx context.Context) ([]storage.IncidentFactRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT i.project_id, i.task_id, i.responsible_id, i.reported_at,
		        i.severity, i.status,
		        CASE WHEN i.resolved_at IS NOT NULL
		             THEN CAST(julianday(i.resolved_at) - julianday(i.reported_at) AS INTEGER)
		             END
		   FROM incidents i
		  ORDER BY i.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("incident fact rows: %w", err)
	}
	defer rows.Close()

	var out []storage.IncidentFactRow
	for rows.Next() {
		var r storage.IncidentFactRow
		var reported string
		var resolution sql.NullInt64
		if err := rows.Scan(&r.ProjectID, &r.TaskID, &r.ResponsibleID, &reported,
			&r.Severity, &r.Status, &resolution); err != nil {
			return nil, fmt.Errorf("incident fact rows: %w", err)
		}
		if r.ReportedDate, err = fromDate(reported); err != nil {
			return nil, fmt.Errorf("incident fact rows: %w", err)
		}
		if resolution.Valid {
			days := resolution.Int64
			r.ResolutionDays = &days
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("incident fact rows: %w", err)
	}
	return out, nil
}

// DateBounds returns the earliest and latest date feeding the calendar
// dimension across every source table.
func (s *Store) DateBounds(ctx context.Context) (time.Time, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := s.ready(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT MIN(d), MAX(d) FROM (
		    SELECT start_date AS d FROM projects WHERE start_date IS NOT NULL
		    UNION SELECT end_date FROM projects WHERE end_date IS NOT NULL
		    UNION SELECT start_date FROM tasks WHERE start_date IS NOT NULL
		    UNION SELECT end_date FROM tasks WHERE end_date IS NOT NULL
		    UNION SELECT entry_date FROM time_entries
		    UNION SELECT cost_date FROM costs
		    UNION SELECT detected_at FROM defects WHERE detected_at IS NOT NULL
		    UNION SELECT corrected_at FROM defects WHERE corrected_at IS NOT NULL
		    UNION SELECT reported_at FROM incidents
		    UNION SELECT resolved_at FROM incidents WHERE resolved_at IS NOT NULL
		    UNION SELECT rated_at FROM evaluations
		 )`)
	var min, max sql.NullString
	if err := row.Scan(&min, &max); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date bounds: %w", err)
	}
	if !min.Valid || !max.Valid {
		return time.Time{}, time.Time{}, apperrors.New(apperrors.CodeNoData, "no dated rows in operational store")
	}
	lo, err := fromDate(min.String)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date bounds: %w", err)
	}
	hi, err := fromDate(max.String)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date bounds: %w", err)
	}
	return lo, hi, nil
}

// DefectWeekOffsets joins defects to filter-matching projects and computes
// each defect's elapsed-whole-weeks offset from the project start. The
// detected_at >= start_date predicate drops defects recorded before their
// project began, so offsets are always non-negative.
func (s *Store) DefectWeekOffsets(ctx context.Context, filter storage.DefectFilter) ([]storage.DefectWeekOffset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	clause, args := buildDefectFilter(filter)
	query := `SELECT d.project_id, p.methodology,
	                 CAST((julianday(d.detected_at) - julianday(p.start_date)) / 7 AS INTEGER) AS week
	            FROM defects d
	            JOIN projects p ON d.project_id = p.id
	           WHERE d.detected_at IS NOT NULL
	             AND p.start_date IS NOT NULL
	             AND d.detected_at >= p.start_date` + clause + `
	           ORDER BY d.project_id ASC, week ASC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("defect week offsets: %w", err)
	}
	defer rows.Close()

	var out []storage.DefectWeekOffset
	for rows.Next() {
		var o storage.DefectWeekOffset
		if err := rows.Scan(&o.ProjectID, &o.Methodology, &o.Week); err != nil {
			return nil, fmt.Errorf("defect week offsets: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("defect week offsets: %w", err)
	}
	return out, nil
}

// buildDefectFilter translates non-zero filter fields into AND clauses.
func buildDefectFilter(filter storage.DefectFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		clauses = append(clauses, clause)
		args = append(args, value)
	}

	if m := strings.TrimSpace(filter.Methodology); m != "" {
		add("p.methodology = ?", m)
	}
	if filter.HoursMin > 0 {
		add("p.hours_invested >= ?", filter.HoursMin)
	}
	if filter.HoursMax > 0 {
		add("p.hours_invested <= ?", filter.HoursMax)
	}
	if filter.BudgetMin > 0 {
		add("p.budget >= ?", filter.BudgetMin)
	}
	if filter.BudgetMax > 0 {
		add("p.budget <= ?", filter.BudgetMax)
	}
	if filter.DurationDaysMin > 0 {
		add("CAST(julianday(p.end_date) - julianday(p.start_date) AS INTEGER) >= ?", filter.DurationDaysMin)
	}
	if filter.DurationDaysMax > 0 {
		add("CAST(julianday(p.end_date) - julianday(p.start_date) AS INTEGER) <= ?", filter.DurationDaysMax)
	}
	if len(filter.Status) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Status))
		clauses = append(clauses, "p.status IN ("+placeholders[:len(placeholders)-1]+")")
		for _, status := range filter.Status {
			args = append(args, status)
		}
	}
	if filter.DeliverablesMin > 0 {
		add("p.deliverable_count >= ?", filter.DeliverablesMin)
	}
	if filter.DeliverablesMax > 0 {
		add("p.deliverable_count <= ?", filter.DeliverablesMax)
	}
	if filter.EmergingTechMin > 0 {
		add("p.emerging_tech_count >= ?", filter.EmergingTechMin)
	}
	if filter.EmergingTechMax > 0 {
		add("p.emerging_tech_count <= ?", filter.EmergingTechMax)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "\n	             AND " + strings.Join(clauses, "\n	             AND "), args
}
