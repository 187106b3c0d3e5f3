package etl

import "time"

// Resolver maps source dates to calendar surrogate keys. It wraps the
// full date-to-key map loaded once per reload, so fact loaders never go
// back to the database per row.
type Resolver struct {
	keys map[time.Time]int64
}

// NewResolver builds a resolver over a loaded calendar key map.
func NewResolver(keys map[time.Time]int64) *Resolver {
	return &Resolver{keys: keys}
}

// Key returns the surrogate key for a date, matching on the calendar day
// only. A zero date or a date outside the calendar yields (0, false);
// resolution never errors.
func (r *Resolver) Key(date time.Time) (int64, bool) {
	if r == nil || date.IsZero() {
		return 0, false
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	key, ok := r.keys[day]
	return key, ok
}
