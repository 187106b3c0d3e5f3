// Package storage defines persistence contracts for the operational
// project-tracking store. The warehouse pipeline and the forecast sampler
// only ever read from this store; writes are reserved for the seed tool
// and tests.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested operational record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Client is a customer the projects are delivered for.
type Client struct {
	ID           int64
	Name         string
	Sector       string
	Country      string
	ContactName  string
	ContactEmail string
}

// Responsible is a party accountable for projects and tasks.
type Responsible struct {
	ID    int64
	Name  string
	Role  string
	Team  string
	Email string
	Phone string
}

// Project is one tracked project with its lifecycle attributes.
type Project struct {
	ID               int64
	Name             string
	Methodology      string
	Stages           string
	StartDate        time.Time
	EndDate          time.Time
	Budget           float64
	TotalCost        float64
	Profit           float64
	Loss             float64
	Progress         float64
	DeliverableCount int64
	HoursInvested    int64
	DefectsDetected  int64
	EmergingTech     int64
	Status           string
	ClientID         int64
	ResponsibleID    int64
}

// Task is one unit of project work.
type Task struct {
	ID             int64
	ProjectID      int64
	Title          string
	Priority       string
	Description    string
	Status         string
	StartDate      time.Time
	EndDate        time.Time
	EstimatedHours float64
	ActualHours    float64
}

// TimeEntry records hours worked by a responsible on a task for one day.
type TimeEntry struct {
	ID            int64
	ResponsibleID int64
	TaskID        int64
	EntryDate     time.Time
	HoursWorked   float64
}

// Cost records one project expense.
type Cost struct {
	ID        int64
	ProjectID int64
	CostDate  time.Time
	Kind      string
	Supplier  string
	Amount    float64
	Currency  string
}

// Defect records one detected defect on a project.
type Defect struct {
	ID             int64
	ProjectID      int64
	DetectedAt     time.Time
	CorrectedAt    time.Time // zero when still open
	Type           string
	Severity       string
	Status         string
	DetectionStage string
}

// Incident records one reported incident against a project task.
type Incident struct {
	ID            int64
	ProjectID     int64
	TaskID        int64
	ResponsibleID int64
	ReportedAt    time.Time
	ResolvedAt    time.Time // zero when unresolved
	Severity      string
	Status        string
}

// Evaluation records one client satisfaction rating for a project.
type Evaluation struct {
	ID        int64
	ProjectID int64
	Rating    float64
	RatedAt   time.Time
}

// ProjectFactRow is one project fact candidate with measures derived in SQL.
type ProjectFactRow struct {
	ProjectID          int64
	ClientID           int64
	ResponsibleID      int64
	StartDate          time.Time
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

// TaskFactRow is one task fact candidate.
type TaskFactRow struct {
	TaskID         int64
	ProjectID      int64
	ResponsibleID  int64
	StartDate      time.Time
	EstimatedHours float64
	ActualHours    float64
	Status         string
	HoursDeviation float64
}

// TimeWorkedFactRow is one time-worked fact candidate.
type TimeWorkedFactRow struct {
	ResponsibleID int64
	TaskID        int64
	EntryDate     time.Time
	HoursWorked   float64
}

// CostFactRow is one cost fact candidate.
type CostFactRow struct {
	ProjectID int64
	CostDate  time.Time
	Kind      string
	Supplier  string
	Amount    float64
	Currency  string
}

// DefectFactRow is one defect fact candidate. CorrectionDays counts from
// detection to correction, or to today while the defect is still open.
type DefectFactRow struct {
	ProjectID      int64
	DetectedDate   time.Time
	Type           string
	Severity       string
	Status         string
	DetectionStage string
	CorrectionDays int64
}

// IncidentFactRow is one incident fact candidate. ResolutionDays is nil
// while the incident is unresolved.
type IncidentFactRow struct {
	ProjectID      int64
	TaskID         int64
	ResponsibleID  int64
	ReportedDate   time.Time
	Severity       string
	Status         string
	ResolutionDays *int64
}

// DefectFilter restricts the defect-arrival sample to projects matching
// its non-zero fields. Zero values impose no constraint.
type DefectFilter struct {
	Methodology     string
	HoursMin        int64
	HoursMax        int64
	BudgetMin       float64
	BudgetMax       float64
	DurationDaysMin int64
	DurationDaysMax int64
	Status          []string
	DeliverablesMin int64
	DeliverablesMax int64
	EmergingTechMin int64
	EmergingTechMax int64
}

// DefectWeekOffset is one defect's elapsed-whole-weeks offset from its
// project's start date.
type DefectWeekOffset struct {
	ProjectID   int64
	Methodology string
	Week        int64
}

// Reader exposes the operational reads consumed by the warehouse pipeline
// and the forecast sampler.
type Reader interface {
	ListClients(ctx context.Context) ([]Client, error)
	ListResponsibles(ctx context.Context) ([]Responsible, error)
	ListProjects(ctx context.Context) ([]Project, error)
	ListTasks(ctx context.Context) ([]Task, error)

	ProjectFactRows(ctx context.Context) ([]ProjectFactRow, error)
	TaskFactRows(ctx context.Context) ([]TaskFactRow, error)
	TimeWorkedFactRows(ctx context.Context) ([]TimeWorkedFactRow, error)
	CostFactRows(ctx context.Context) ([]CostFactRow, error)
	DefectFactRows(ctx context.Context) ([]DefectFactRow, error)
	IncidentFactRows(ctx context.Context) ([]IncidentFactRow, error)

	// DateBounds returns the earliest and latest date appearing in any
	// column that feeds the warehouse calendar dimension.
	DateBounds(ctx context.Context) (min, max time.Time, err error)

	// DefectWeekOffsets joins defects to projects matching the filter.
	// Defects detected before their project's recorded start are excluded.
	// Results are ordered by project then week for determinism.
	DefectWeekOffsets(ctx context.Context, filter DefectFilter) ([]DefectWeekOffset, error)
}

// Writer exposes the inserts used by the seed tool and tests.
type Writer interface {
	InsertClient(ctx context.Context, c Client) error
	InsertResponsible(ctx context.Context, r Responsible) error
	InsertProject(ctx context.Context, p Project) error
	InsertTask(ctx context.Context, task Task) error
	InsertTimeEntry(ctx context.Context, e TimeEntry) error
	InsertCost(ctx context.Context, c Cost) error
	InsertDefect(ctx context.Context, d Defect) error
	InsertIncident(ctx context.Context, i Incident) error
	InsertEvaluation(ctx context.Context, e Evaluation) error
}

// Store is the full operational store contract.
type Store interface {
	Reader
	Writer
}
