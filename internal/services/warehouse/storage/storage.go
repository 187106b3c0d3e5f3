// Package storage defines the star-schema warehouse contracts: dimension
// and fact row types plus the Store interface the ETL pipeline loads
// through and the forecast service reads model history from.
package storage

import (
	"context"
	"time"
)

// CalendarDay is one calendar dimension row. SurrogateKey is assigned by
// the store on insert and is what fact rows reference as TimeKey.
type CalendarDay struct {
	SurrogateKey int64
	Date         time.Time
	Day          int
	Month        int
	Quarter      int
	Year         int
}

// ClientDim is one client dimension row, keyed by its operational ID.
type ClientDim struct {
	ClientID int64
	Name     string
	Sector   string
	Country  string
}

// ResponsibleDim is one responsible dimension row.
type ResponsibleDim struct {
	ResponsibleID int64
	Name          string
	Role          string
	Team          string
}

// ProjectDim is one project dimension row.
type ProjectDim struct {
	ProjectID   int64
	Name        string
	Methodology string
	Stages      string
	Status      string
}

// TaskDim is one task dimension row.
type TaskDim struct {
	TaskID    int64
	ProjectID int64
	Title     string
	Priority  string
	Status    string
}

// ProjectFact is one project-grain fact row.
type ProjectFact struct {
	ProjectID          int64
	ClientID           int64
	ResponsibleID      int64
	TimeKey            int64
	Budget             float64
	TotalCost          float64
	Profit             float64
	Loss               float64
	Progress           float64
	DeliverableCount   int64
	HoursInvested      int64
	BudgetDeviation    float64
	ROI                float64
	ScheduleDeviation  int64
	DefectRate         float64
	ClientSatisfaction float64
}

// TaskFact is one task-grain fact row.
type TaskFact struct {
	TaskID         int64
	ProjectID      int64
	ResponsibleID  int64
	TimeKey        int64
	EstimatedHours float64
	ActualHours    float64
	HoursDeviation float64
	Status         string
}

// TimeWorkedFact is one hours-worked fact row.
type TimeWorkedFact struct {
	ResponsibleID int64
	TaskID        int64
	TimeKey       int64
	HoursWorked   float64
}

// CostFact is one expense fact row.
type CostFact struct {
	ProjectID int64
	TimeKey   int64
	Kind      string
	Supplier  string
	Amount    float64
	Currency  string
}

// DefectFact is one defect fact row keyed on detection date.
type DefectFact struct {
	ProjectID      int64
	TimeKey        int64
	Type           string
	Severity       string
	Status         string
	DetectionStage string
	CorrectionDays int64
}

// IncidentFact is one incident fact row keyed on report date.
// ResolutionDays is nil while the incident is unresolved.
type IncidentFact struct {
	ProjectID      int64
	TaskID         int64
	ResponsibleID  int64
	TimeKey        int64
	Severity       string
	Status         string
	ResolutionDays *int64
}

// ModelRecord is one trained-model history row. Rows are append-only;
// the latest row is the live model.
type ModelRecord struct {
	ID        int64
	Sigma     float64
	Samples   int64
	MeanSq    float64
	Expected  float64
	P90       float64
	TrainedAt time.Time
}

// Store is the warehouse persistence contract. Reloads are not safe to
// run concurrently against the same store; callers serialize.
type Store interface {
	// PurgeAll empties every fact table, then every dimension table,
	// with foreign key enforcement suspended for the duration.
	PurgeAll(ctx context.Context) error

	// InsertCalendarDays stores the rows and returns them with their
	// assigned surrogate keys, in input order.
	InsertCalendarDays(ctx context.Context, days []CalendarDay) ([]CalendarDay, error)

	InsertClientDims(ctx context.Context, rows []ClientDim) error
	InsertResponsibleDims(ctx context.Context, rows []ResponsibleDim) error
	InsertProjectDims(ctx context.Context, rows []ProjectDim) error
	InsertTaskDims(ctx context.Context, rows []TaskDim) error

	InsertProjectFacts(ctx context.Context, rows []ProjectFact) error
	InsertTaskFacts(ctx context.Context, rows []TaskFact) error
	InsertTimeWorkedFacts(ctx context.Context, rows []TimeWorkedFact) error
	InsertCostFacts(ctx context.Context, rows []CostFact) error
	InsertDefectFacts(ctx context.Context, rows []DefectFact) error
	InsertIncidentFacts(ctx context.Context, rows []IncidentFact) error

	// CalendarKeys returns the full date-to-surrogate-key map for the
	// currently loaded calendar dimension.
	CalendarKeys(ctx context.Context) (map[time.Time]int64, error)

	// Count reports how many rows a warehouse table holds.
	Count(ctx context.Context, table string) (int64, error)

	InsertModelRecord(ctx context.Context, rec ModelRecord) error

	// LatestModelRecord returns the most recently trained model, or an
	// error carrying CodeModelNotTrained when no model exists.
	LatestModelRecord(ctx context.Context) (ModelRecord, error)
}
