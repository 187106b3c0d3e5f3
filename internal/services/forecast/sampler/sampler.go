// Package sampler extracts weekly defect-arrival samples from the
// operational tracking store for Rayleigh fitting. Defects from the
// projects matching a filter are bucketized by whole weeks elapsed since
// each project's own start date and merged across projects by relative
// offset.
package sampler

import (
	"context"
	"encoding/json"
	"sort"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	tracking "github.com/trackforge/defectcast/internal/services/tracking/storage"
)

// StatusSet decodes from either a single JSON string or an array of
// strings, since callers send both shapes.
type StatusSet []string

// UnmarshalJSON implements the scalar-or-list decode.
func (s *StatusSet) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = StatusSet{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = StatusSet(many)
	return nil
}

// Filter restricts the sampled projects. Zero values impose no
// constraint; unknown JSON keys are ignored on decode.
type Filter struct {
	Methodology     string    `json:"methodology"`
	HoursMin        int64     `json:"hours_min"`
	HoursMax        int64     `json:"hours_max"`
	BudgetMin       float64   `json:"budget_min"`
	BudgetMax       float64   `json:"budget_max"`
	DurationDaysMin int64     `json:"duration_days_min"`
	DurationDaysMax int64     `json:"duration_days_max"`
	Status          StatusSet `json:"status"`
	DeliverablesMin int64     `json:"deliverables_min"`
	DeliverablesMax int64     `json:"deliverables_max"`
	EmergingTechMin int64     `json:"emerging_tech_min"`
	EmergingTechMax int64     `json:"emerging_tech_max"`
}

func (f Filter) storageFilter() tracking.DefectFilter {
	return tracking.DefectFilter{
		Methodology:     f.Methodology,
		HoursMin:        f.HoursMin,
		HoursMax:        f.HoursMax,
		BudgetMin:       f.BudgetMin,
		BudgetMax:       f.BudgetMax,
		DurationDaysMin: f.DurationDaysMin,
		DurationDaysMax: f.DurationDaysMax,
		Status:          []string(f.Status),
		DeliverablesMin: f.DeliverablesMin,
		DeliverablesMax: f.DeliverablesMax,
		EmergingTechMin: f.EmergingTechMin,
		EmergingTechMax: f.EmergingTechMax,
	}
}

// Validate rejects filters whose ranges are inverted.
func (f Filter) Validate() error {
	type span struct {
		name     string
		min, max float64
	}
	spans := []span{
		{"hours", float64(f.HoursMin), float64(f.HoursMax)},
		{"budget", f.BudgetMin, f.BudgetMax},
		{"duration_days", float64(f.DurationDaysMin), float64(f.DurationDaysMax)},
		{"deliverables", float64(f.DeliverablesMin), float64(f.DeliverablesMax)},
		{"emerging_tech", float64(f.EmergingTechMin), float64(f.EmergingTechMax)},
	}
	for _, s := range spans {
		if s.min != 0 && s.max != 0 && s.min > s.max {
			return apperrors.WithMetadata(apperrors.CodeFilterInvalid,
				"filter range is inverted", map[string]string{"field": s.name})
		}
	}
	return nil
}

// Sample is the merged weekly defect histogram across matched projects.
type Sample struct {
	// Buckets is dense: index is the week offset, value the defect count,
	// zero-filled through the last nonempty week.
	Buckets []int
	// Projects counts distinct projects contributing defects.
	Projects int
	// Methodologies lists the distinct methodologies seen, sorted.
	Methodologies []string
}

// Counts returns the per-bucket defect counts as the float64 observation
// vector the Rayleigh fit consumes: one value per week bucket, zero weeks
// included.
func (s Sample) Counts() []float64 {
	out := make([]float64, len(s.Buckets))
	for i, count := range s.Buckets {
		out[i] = float64(count)
	}
	return out
}

// Extract queries defect week offsets for projects matching the filter
// and merges them into a dense histogram. The store's join excludes
// defects detected before their project's start, so every reported
// offset is non-negative. No matching defects at all is a NO_DATA error.
func Extract(ctx context.Context, store tracking.Reader, filter Filter) (Sample, error) {
	if err := filter.Validate(); err != nil {
		return Sample{}, err
	}
	offsets, err := store.DefectWeekOffsets(ctx, filter.storageFilter())
	if err != nil {
		return Sample{}, err
	}
	if len(offsets) == 0 {
		return Sample{}, apperrors.New(apperrors.CodeNoData, "no defects match the filter")
	}

	maxWeek := int64(0)
	for _, o := range offsets {
		if o.Week > maxWeek {
			maxWeek = o.Week
		}
	}
	buckets := make([]int, maxWeek+1)
	projects := make(map[int64]bool)
	methodologies := make(map[string]bool)
	for _, o := range offsets {
		buckets[o.Week]++
		projects[o.ProjectID] = true
		if o.Methodology != "" {
			methodologies[o.Methodology] = true
		}
	}

	names := make([]string, 0, len(methodologies))
	for name := range methodologies {
		names = append(names, name)
	}
	sort.Strings(names)

	return Sample{
		Buckets:       buckets,
		Projects:      len(projects),
		Methodologies: names,
	}, nil
}
