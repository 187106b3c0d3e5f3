package etl

import (
	"context"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/platform/metrics"
	warehouse "github.com/trackforge/defectcast/internal/services/warehouse/storage"
)

func (p *Pipeline) loadClientDim(ctx context.Context, run *runContext, report *Report) error {
	clients, err := p.Tracking.ListClients(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read clients", err)
	}
	rows := make([]warehouse.ClientDim, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, warehouse.ClientDim{
			ClientID: c.ID,
			Name:     c.Name,
			Sector:   c.Sector,
			Country:  c.Country,
		})
		run.clients[c.ID] = true
	}
	if err := p.Warehouse.InsertClientDims(ctx, rows); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load dim_client", err)
	}
	metrics.RowsLoaded.WithLabelValues("dim_client").Add(float64(len(rows)))
	report.record("dim_client", int64(len(rows)), 0)
	return nil
}

func (p *Pipeline) loadResponsibleDim(ctx context.Context, run *runContext, report *Report) error {
	responsibles, err := p.Tracking.ListResponsibles(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read responsibles", err)
	}
	rows := make([]warehouse.ResponsibleDim, 0, len(responsibles))
	for _, r := range responsibles {
		rows = append(rows, warehouse.ResponsibleDim{
			ResponsibleID: r.ID,
			Name:          r.Name,
			Role:          r.Role,
			Team:          r.Team,
		})
		run.responsibles[r.ID] = true
	}
	if err := p.Warehouse.InsertResponsibleDims(ctx, rows); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load dim_responsible", err)
	}
	metrics.RowsLoaded.WithLabelValues("dim_responsible").Add(float64(len(rows)))
	report.record("dim_responsible", int64(len(rows)), 0)
	return nil
}

func (p *Pipeline) loadProjectDim(ctx context.Context, run *runContext, report *Report) error {
	projects, err := p.Tracking.ListProjects(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read projects", err)
	}
	rows := make([]warehouse.ProjectDim, 0, len(projects))
	for _, proj := range projects {
		rows = append(rows, warehouse.ProjectDim{
			ProjectID:   proj.ID,
			Name:        proj.Name,
			Methodology: proj.Methodology,
			Stages:      proj.Stages,
			Status:      proj.Status,
		})
		run.projects[proj.ID] = true
	}
	if err := p.Warehouse.InsertProjectDims(ctx, rows); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load dim_project", err)
	}
	metrics.RowsLoaded.WithLabelValues("dim_project").Add(float64(len(rows)))
	report.record("dim_project", int64(len(rows)), 0)
	return nil
}

func (p *Pipeline) loadTaskDim(ctx context.Context, run *runContext, report *Report) error {
	tasks, err := p.Tracking.ListTasks(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "read tasks", err)
	}
	rows := make([]warehouse.TaskDim, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, warehouse.TaskDim{
			TaskID:    task.ID,
			ProjectID: task.ProjectID,
			Title:     task.Title,
			Priority:  task.Priority,
			Status:    task.Status,
		})
		run.tasks[task.ID] = true
	}
	if err := p.Warehouse.InsertTaskDims(ctx, rows); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load dim_task", err)
	}
	metrics.RowsLoaded.WithLabelValues("dim_task").Add(float64(len(rows)))
	report.record("dim_task", int64(len(rows)), 0)
	return nil
}
