// Package calendar builds the warehouse calendar dimension rows for a
// date interval. The builder is pure; assigning surrogate keys is the
// warehouse store's job.
package calendar

import (
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
)

// Row is one calendar day with its date parts broken out.
type Row struct {
	Date    time.Time
	Day     int
	Month   int
	Quarter int
	Year    int
}

// Build returns one Row per day from start through end inclusive.
// Both bounds are normalized to midnight UTC before iterating, so an
// interval of D days always yields exactly D rows.
func Build(start, end time.Time) ([]Row, error) {
	start = midnight(start)
	end = midnight(end)
	if end.Before(start) {
		return nil, apperrors.WithMetadata(apperrors.CodeCalendarInvalidHorizon,
			"calendar end precedes start", map[string]string{
				"start": start.Format("2006-01-02"),
				"end":   end.Format("2006-01-02"),
			})
	}

	days := int(end.Sub(start).Hours()/24) + 1
	rows := make([]Row, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows = append(rows, Row{
			Date:    d,
			Day:     d.Day(),
			Month:   int(d.Month()),
			Quarter: Quarter(d.Month()),
			Year:    d.Year(),
		})
	}
	return rows, nil
}

// Quarter maps a month to its calendar quarter.
func Quarter(m time.Month) int {
	return (int(m)-1)/3 + 1
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
