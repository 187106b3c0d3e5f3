// Package etl rebuilds the dimensional warehouse from the operational
// tracking store with a truncate-and-reload strategy: purge everything,
// rebuild the calendar, reload dimensions, then reload facts resolving
// each row's date to a calendar surrogate key.
package etl

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/platform/metrics"
	tracking "github.com/trackforge/defectcast/internal/services/tracking/storage"
	"github.com/trackforge/defectcast/internal/services/warehouse/calendar"
	warehouse "github.com/trackforge/defectcast/internal/services/warehouse/storage"
)

// Horizon is the calendar interval to build. When either bound is zero
// the interval is derived from the tracking store's date bounds instead,
// which guarantees every source date resolves.
type Horizon struct {
	Start time.Time
	End   time.Time
}

func (h Horizon) explicit() bool {
	return !h.Start.IsZero() && !h.End.IsZero()
}

// Pipeline rebuilds the warehouse from a tracking snapshot. A Pipeline
// is not safe for concurrent reloads against the same warehouse; callers
// serialize runs.
type Pipeline struct {
	Tracking  tracking.Reader
	Warehouse warehouse.Store
	Horizon   Horizon
}

type phase struct {
	state State
	name  string
	run   func(ctx context.Context, run *runContext, report *Report) error
}

// Reload runs the full truncate-and-reload pipeline. The returned report
// is valid on both success and failure; on failure its State is
// StateFailed and its Tables cover only the steps that completed. Steps
// are not transactional with each other: a failed run leaves the
// warehouse as the failing step left it, and the next successful reload
// repairs it.
func (p *Pipeline) Reload(ctx context.Context) (Report, error) {
	tracer := otel.Tracer("defectcast/etl")
	ctx, span := tracer.Start(ctx, "warehouse.reload")
	defer span.End()

	report := Report{Started: time.Now(), State: StateIdle}
	run := newRunContext()

	phases := []phase{
		{StatePurging, "purge", func(ctx context.Context, _ *runContext, _ *Report) error {
			return p.Warehouse.PurgeAll(ctx)
		}},
		{StateRebuildingDimensions, "calendar", p.loadCalendar},
		{StateRebuildingDimensions, "dim_client", p.loadClientDim},
		{StateRebuildingDimensions, "dim_responsible", p.loadResponsibleDim},
		{StateRebuildingDimensions, "dim_project", p.loadProjectDim},
		{StateRebuildingDimensions, "dim_task", p.loadTaskDim},
		{StateRebuildingFacts, "fact_project", p.loadProjectFacts},
		{StateRebuildingFacts, "fact_task", p.loadTaskFacts},
		{StateRebuildingFacts, "fact_time_worked", p.loadTimeWorkedFacts},
		{StateRebuildingFacts, "fact_cost", p.loadCostFacts},
		{StateRebuildingFacts, "fact_defect", p.loadDefectFacts},
		{StateRebuildingFacts, "fact_incident", p.loadIncidentFacts},
	}
	for _, ph := range phases {
		report.State = ph.state
		stepCtx, stepSpan := tracer.Start(ctx, "warehouse.reload."+ph.name)
		err := ph.run(stepCtx, run, &report)
		stepSpan.End()
		if err != nil {
			report.State = StateFailed
			report.Duration = time.Since(report.Started)
			span.SetStatus(otelcodes.Error, ph.name)
			metrics.ReloadRuns.WithLabelValues("failure").Inc()
			return report, err
		}
	}

	report.State = StateDone
	report.Duration = time.Since(report.Started)
	metrics.ReloadRuns.WithLabelValues("success").Inc()
	metrics.ReloadDuration.Observe(report.Duration.Seconds())
	return report, nil
}

func (p *Pipeline) loadCalendar(ctx context.Context, run *runContext, report *Report) error {
	horizon := p.Horizon
	if !horizon.explicit() {
		min, max, err := p.Tracking.DateBounds(ctx)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeReloadFailed, "derive calendar horizon", err)
		}
		horizon = Horizon{Start: min, End: max}
	}
	days, err := calendar.Build(horizon.Start, horizon.End)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "build calendar", err)
	}
	rows := make([]warehouse.CalendarDay, 0, len(days))
	for _, d := range days {
		rows = append(rows, warehouse.CalendarDay{
			Date:    d.Date,
			Day:     d.Day,
			Month:   d.Month,
			Quarter: d.Quarter,
			Year:    d.Year,
		})
	}
	if _, err := p.Warehouse.InsertCalendarDays(ctx, rows); err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load dim_calendar", err)
	}
	keys, err := p.Warehouse.CalendarKeys(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeReloadFailed, "load calendar keys", err)
	}
	run.resolver = NewResolver(keys)
	metrics.RowsLoaded.WithLabelValues("dim_calendar").Add(float64(len(rows)))
	report.record("dim_calendar", int64(len(rows)), 0)
	return nil
}
