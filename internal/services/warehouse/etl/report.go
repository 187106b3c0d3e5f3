package etl

import "time"

// State is the reload pipeline's lifecycle state.
type State string

const (
	StateIdle                  State = "idle"
	StatePurging               State = "purging"
	StateRebuildingDimensions  State = "rebuilding_dimensions"
	StateRebuildingFacts       State = "rebuilding_facts"
	StateDone                  State = "done"
	StateFailed                State = "failed"
)

// TableReport summarises one warehouse table after a reload. Dropped is
// nonzero only for fact tables whose source rows could not resolve a
// calendar key or a dimension reference.
type TableReport struct {
	Name    string
	Rows    int64
	Dropped int64
}

// Report describes one reload run.
type Report struct {
	Tables   []TableReport
	Started  time.Time
	Duration time.Duration
	State    State
}

func (r *Report) record(name string, rows, dropped int64) {
	r.Tables = append(r.Tables, TableReport{Name: name, Rows: rows, Dropped: dropped})
}

// TotalDropped sums dropped rows across all tables.
func (r *Report) TotalDropped() int64 {
	var total int64
	for _, t := range r.Tables {
		total += t.Dropped
	}
	return total
}
