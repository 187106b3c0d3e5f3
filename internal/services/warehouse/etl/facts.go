package etl

import (
	"context"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/platform/metrics"
	warehouse "github.com/trackforge/defectcast/internal/services/warehouse/storage"
)

func finishFactTable(report *Report, table string, rows, dropped int64) {
	metrics.RowsLoaded.WithLabelValues(table).Add(float64(rows))
	metrics.RowsDropped.WithLabelValues(table).Add(float64(dropped))
	report.record(table, rows, dropped)
}

func (p *Pipeline) loadProjectFacts(ctx context.Context, run *runContext, report *Report) error {
	source, err := p.Tracking.ProjectFactRows(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read project facts", err)
	}
	facts := make([]warehouse.ProjectFact, 0, len(source))
	var dropped int64
	for _, row := range source {
		key, ok := run.resolver.Key(row.StartDate)
		if !ok || !run.projects[row.ProjectID] || !run.clients[row.ClientID] || !run.responsibles[row.ResponsibleID] {
			dropped++
			continue
		}
		facts = append(facts, warehouse.ProjectFact{
			ProjectID:          row.ProjectID,
			ClientID:           row.ClientID,
			ResponsibleID:      row.ResponsibleID,
			TimeKey:            key,
			Budget:             row.Budget,
			TotalCost:          row.TotalCost,
			Profit:             row.Profit,
			Loss:               row.Loss,
			Progress:           row.Progress,
			DeliverableCount:   row.DeliverableCount,
			HoursInvested:      row.HoursInvested,
			BudgetDeviation:    row.BudgetDeviation,
			ROI:                row.ROI,
			ScheduleDeviation:  row.ScheduleDeviation,
			DefectRate:         row.DefectRate,
			ClientSatisfaction: row.ClientSatisfaction,
		})
	}
	if err := p.Warehouse.InsertProjectFacts(ctx, facts); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load fact_project", err)
	}
	finishFactTable(report, "fact_project", int64(len(facts)), dropped)
	return nil
}

func (p *Pipeline) loadTaskFacts(ctx context.Context, run *runContext, report *Report) error {
	source, err := p.Tracking.TaskFactRows(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read task facts", err)
	}
	facts := make([]warehouse.TaskFact, 0, len(source))
	var dropped int64
	for _, row := range source {
		key, ok := run.resolver.Key(row.StartDate)
		if !ok || !run.tasks[row.TaskID] || !run.projects[row.ProjectID] {
			dropped++
			continue
		}
		facts = append(facts, warehouse.TaskFact{
			TaskID:         row.TaskID,
			ProjectID:      row.ProjectID,
			ResponsibleID:  row.ResponsibleID,
			TimeKey:        key,
			EstimatedHours: row.EstimatedHours,
			ActualHours:    row.ActualHours,
			HoursDeviation: row.HoursDeviation,
			Status:         row.Status,
		})
	}
	if err := p.Warehouse.InsertTaskFacts(ctx, facts); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load fact_task", err)
	}
	finishFactTable(report, "fact_task", int64(len(facts)), dropped)
	return nil
}

func (p *Pipeline) loadTimeWorkedFacts(ctx context.Context, run *runContext, report *Report) error {
	source, err := p.Tracking.TimeWorkedFactRows(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read time worked facts", err)
	}
	facts := make([]warehouse.TimeWorkedFact, 0, len(source))
	var dropped int64
	for _, row := range source {
		key, ok := run.resolver.Key(row.EntryDate)
		if !ok || !run.tasks[row.TaskID] || !run.responsibles[row.ResponsibleID] {
			dropped++
			continue
		}
		facts = append(facts, warehouse.TimeWorkedFact{
			ResponsibleID: row.ResponsibleID,
			TaskID:        row.TaskID,
			TimeKey:       key,
			HoursWorked:   row.HoursWorked,
		})
	}
	if err := p.Warehouse.InsertTimeWorkedFacts(ctx, facts); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load fact_time_worked", err)
	}
	finishFactTable(report, "fact_time_worked", int64(len(facts)), dropped)
	return nil
}

func (p *Pipeline) loadCostFacts(ctx context.Context, run *runContext, report *Report) error {
	source, err := p.Tracking.CostFactRows(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read cost facts", err)
	}
	facts := make([]warehouse.CostFact, 0, len(source))
	var dropped int64
	for _, row := range source {
		key, ok := run.resolver.Key(row.CostDate)
		if !ok || !run.projects[row.ProjectID] {
			dropped++
			continue
		}
		facts = append(facts, warehouse.CostFact{
			ProjectID: row.ProjectID,
			TimeKey:   key,
			Kind:      row.Kind,
			Supplier:  row.Supplier,
			Amount:    row.Amount,
			Currency:  row.Currency,
		})
	}
	if err := p.Warehouse.InsertCostFacts(ctx, facts); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load fact_cost", err)
	}
	finishFactTable(report, "fact_cost", int64(len(facts)), dropped)
	return nil
}

func (p *Pipeline) loadDefectFacts(ctx context.Context, run *runContext, report *Report) error {
	source, err := p.Tracking.DefectFactRows(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read defect facts", err)
	}
	facts := make([]warehouse.DefectFact, 0, len(source))
	var dropped int64
	for _, row := range source {
		key, ok := run.resolver.Key(row.DetectedDate)
		if !ok || !run.projects[row.ProjectID] {
			dropped++
			continue
		}
		facts = append(facts, warehouse.DefectFact{
			ProjectID:      row.ProjectID,
			TimeKey:        key,
			Type:           row.Type,
			Severity:       row.Severity,
			Status:         row.Status,
			DetectionStage: row.DetectionStage,
			CorrectionDays: row.CorrectionDays,
		})
	}
	if err := p.Warehouse.InsertDefectFacts(ctx, facts); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load fact_defect", err)
	}
	finishFactTable(report, "fact_defect", int64(len(facts)), dropped)
	return nil
}

func (p *Pipeline) loadIncidentFacts(ctx context.Context, run *runContext, report *Report) error {
	source, err := p.Tracking.IncidentFactRows(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read incident facts", err)
	}
	facts := make([]warehouse.IncidentFact, 0, len(source))
	var dropped int64
	for _, row := range source {
		key, ok := run.resolver.Key(row.ReportedDate)
		if !ok || !run.projects[row.ProjectID] || !run.tasks[row.TaskID] || !run.responsibles[row.ResponsibleID] {
			dropped++
			continue
		}
		facts = append(facts, warehouse.IncidentFact{
			ProjectID:      row.ProjectID,
			TaskID:         row.TaskID,
			ResponsibleID:  row.ResponsibleID,
			TimeKey:        key,
			Severity:       row.Severity,
			Status:         row.Status,
			ResolutionDays: row.ResolutionDays,
		})
	}
	if err := p.Warehouse.InsertIncidentFacts(ctx, facts); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load fact_incident", err)
	}
	finishFactTable(report, "fact_incident", int64(len(facts)), dropped)
	return nil
}
