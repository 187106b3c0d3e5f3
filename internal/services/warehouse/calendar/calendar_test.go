package calendar

import (
	"testing"
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func TestBuildRowCountMatchesInterval(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		start, end string
		want       int
	}{
		{"single day", "2024-01-01", "2024-01-01", 1},
		{"one week", "2024-01-01", "2024-01-07", 7},
		{"leap february", "2024-02-01", "2024-02-29", 29},
		{"full year", "2023-01-01", "2023-12-31", 365},
		{"year boundary", "2023-12-30", "2024-01-02", 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rows, err := Build(day(t, tc.start), day(t, tc.end))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(rows) != tc.want {
				t.Fatalf("rows = %d, want %d", len(rows), tc.want)
			}
		})
	}
}

func TestBuildDatesUniqueAndOrdered(t *testing.T) {
	t.Parallel()

	rows, err := Build(day(t, "2024-06-01"), day(t, "2024-08-31"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	seen := make(map[time.Time]bool, len(rows))
	for i, row := range rows {
		if seen[row.Date] {
			t.Fatalf("duplicate date %v", row.Date)
		}
		seen[row.Date] = true
		if i > 0 && !rows[i-1].Date.Before(row.Date) {
			t.Fatalf("dates out of order at index %d: %v then %v", i, rows[i-1].Date, row.Date)
		}
	}
}

func TestBuildDateParts(t *testing.T) {
	t.Parallel()

	rows, err := Build(day(t, "2024-11-15"), day(t, "2024-11-15"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := rows[0]
	if got.Day != 15 || got.Month != 11 || got.Quarter != 4 || got.Year != 2024 {
		t.Fatalf("row = %+v, want day 15 month 11 quarter 4 year 2024", got)
	}
}

func TestQuarterLaw(t *testing.T) {
	t.Parallel()

	want := map[time.Month]int{
		time.January: 1, time.February: 1, time.March: 1,
		time.April: 2, time.May: 2, time.June: 2,
		time.July: 3, time.August: 3, time.September: 3,
		time.October: 4, time.November: 4, time.December: 4,
	}
	for m, q := range want {
		if got := Quarter(m); got != q {
			t.Fatalf("Quarter(%v) = %d, want %d", m, got, q)
		}
	}
}

func TestBuildInvertedIntervalFails(t *testing.T) {
	t.Parallel()

	_, err := Build(day(t, "2024-02-01"), day(t, "2024-01-01"))
	if apperrors.CodeOf(err) != apperrors.CodeCalendarInvalidHorizon {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeCalendarInvalidHorizon)
	}
}

func TestBuildIdempotent(t *testing.T) {
	t.Parallel()

	first, err := Build(day(t, "2024-01-01"), day(t, "2024-03-31"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := Build(day(t, "2024-01-01"), day(t, "2024-03-31"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
