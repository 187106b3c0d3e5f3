package sampler

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	tracking "github.com/trackforge/defectcast/internal/services/tracking/storage"
	trackingsqlite "github.com/trackforge/defectcast/internal/services/tracking/storage/sqlite"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func openTempStore(t *testing.T) *trackingsqlite.Store {
	t.Helper()
	store, err := trackingsqlite.Open(filepath.Join(t.TempDir(), "tracking.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedTwoProjects inserts project A starting 2024-01-01 with defects in
// weeks 0, 0 and 2, and project B starting 2024-03-01 with defects in
// weeks 1 and 1. The merged histogram is [2, 2, 1].
func seedTwoProjects(t *testing.T, store *trackingsqlite.Store) {
	t.Helper()
	ctx := context.Background()
	fatal := func(what string, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", what, err)
		}
	}
	fatal("insert client", store.InsertClient(ctx, tracking.Client{ID: 1, Name: "Acme"}))
	fatal("insert responsible", store.InsertResponsible(ctx, tracking.Responsible{ID: 1, Name: "Dana"}))
	fatal("insert project A", store.InsertProject(ctx, tracking.Project{
		ID: 1, Name: "A", Methodology: "Scrum", Status: "done", Budget: 50000,
		ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-04-01"),
	}))
	fatal("insert project B", store.InsertProject(ctx, tracking.Project{
		ID: 2, Name: "B", Methodology: "Kanban", Status: "active", Budget: 9000,
		ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-03-01"), EndDate: date(t, "2024-05-01"),
	}))
	defects := []tracking.Defect{
		{ID: 1, ProjectID: 1, DetectedAt: date(t, "2024-01-02")}, // A week 0
		{ID: 2, ProjectID: 1, DetectedAt: date(t, "2024-01-05")}, // A week 0
		{ID: 3, ProjectID: 1, DetectedAt: date(t, "2024-01-16")}, // A week 2
		{ID: 4, ProjectID: 2, DetectedAt: date(t, "2024-03-09")}, // B week 1
		{ID: 5, ProjectID: 2, DetectedAt: date(t, "2024-03-12")}, // B week 1
	}
	for _, d := range defects {
		fatal("insert defect", store.InsertDefect(ctx, d))
	}
}

func TestExtractMergesProjectsByRelativeWeek(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedTwoProjects(t, store)

	sample, err := Extract(context.Background(), store, Filter{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := []int{2, 2, 1}
	if len(sample.Buckets) != len(want) {
		t.Fatalf("buckets = %v, want %v", sample.Buckets, want)
	}
	for i := range want {
		if sample.Buckets[i] != want[i] {
			t.Fatalf("buckets = %v, want %v", sample.Buckets, want)
		}
	}
	if sample.Projects != 2 {
		t.Fatalf("projects = %d, want 2", sample.Projects)
	}
	if len(sample.Methodologies) != 2 || sample.Methodologies[0] != "Kanban" || sample.Methodologies[1] != "Scrum" {
		t.Fatalf("methodologies = %v, want [Kanban Scrum]", sample.Methodologies)
	}
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedTwoProjects(t, store)
	ctx := context.Background()

	first, err := Extract(ctx, store, Filter{})
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	second, err := Extract(ctx, store, Filter{})
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if len(first.Buckets) != len(second.Buckets) {
		t.Fatalf("buckets differ: %v vs %v", first.Buckets, second.Buckets)
	}
	for i := range first.Buckets {
		if first.Buckets[i] != second.Buckets[i] {
			t.Fatalf("buckets differ: %v vs %v", first.Buckets, second.Buckets)
		}
	}
}

func TestExtractFilterNarrowsProjects(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedTwoProjects(t, store)

	sample, err := Extract(context.Background(), store, Filter{Methodology: "Scrum"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := []int{2, 0, 1}
	if len(sample.Buckets) != len(want) {
		t.Fatalf("buckets = %v, want %v", sample.Buckets, want)
	}
	for i := range want {
		if sample.Buckets[i] != want[i] {
			t.Fatalf("buckets = %v, want %v", sample.Buckets, want)
		}
	}
	if sample.Projects != 1 {
		t.Fatalf("projects = %d, want 1", sample.Projects)
	}
}

func TestExtractNoMatchIsNoData(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedTwoProjects(t, store)

	_, err := Extract(context.Background(), store, Filter{Methodology: "RUP"})
	if apperrors.CodeOf(err) != apperrors.CodeNoData {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeNoData)
	}
}

func TestExtractInvertedRangeRejected(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := Extract(context.Background(), store, Filter{BudgetMin: 100, BudgetMax: 10})
	if apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeFilterInvalid)
	}
}

func TestFilterDecodeStatusShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want []string
	}{
		{"scalar", `{"status": "done"}`, []string{"done"}},
		{"list", `{"status": ["done", "archived"]}`, []string{"done", "archived"}},
		{"empty scalar", `{"status": ""}`, nil},
		{"unknown keys ignored", `{"status": "done", "bogus": 1}`, []string{"done"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var filter Filter
			if err := json.Unmarshal([]byte(tc.body), &filter); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(filter.Status) != len(tc.want) {
				t.Fatalf("status = %v, want %v", filter.Status, tc.want)
			}
			for i := range tc.want {
				if filter.Status[i] != tc.want[i] {
					t.Fatalf("status = %v, want %v", filter.Status, tc.want)
				}
			}
		})
	}
}

// The fit observes one value per week bucket, including zero weeks, not
// one value per individual defect.
func TestCountsAreOnePerBucket(t *testing.T) {
	t.Parallel()

	sample := Sample{Buckets: []int{2, 0, 1}}
	got := sample.Counts()
	want := []float64{2, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("counts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("counts = %v, want %v", got, want)
		}
	}
}
