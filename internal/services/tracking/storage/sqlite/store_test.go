package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/services/tracking/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tracking.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func seedReferences(t *testing.T, store *Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.InsertClient(ctx, storage.Client{ID: 1, Name: "Acme", Sector: "Retail", Country: "MX"}); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	if err := store.InsertResponsible(ctx, storage.Responsible{ID: 1, Name: "Dana", Role: "Lead"}); err != nil {
		t.Fatalf("insert responsible: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestInsertProjectRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedReferences(t, store)
	ctx := context.Background()

	input := storage.Project{
		ID:               7,
		Name:             "Billing revamp",
		Methodology:      "Scrum",
		Stages:           "4",
		StartDate:        date(t, "2024-01-01"),
		EndDate:          date(t, "2024-06-30"),
		Budget:           120000,
		TotalCost:        90000,
		Profit:           40000,
		Loss:             5000,
		Progress:         0.8,
		DeliverableCount: 10,
		HoursInvested:    1400,
		DefectsDetected:  23,
		EmergingTech:     2,
		Status:           "active",
		ClientID:         1,
		ResponsibleID:    1,
	}
	if err := store.InsertProject(ctx, input); err != nil {
		t.Fatalf("insert project: %v", err)
	}

	projects, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(projects))
	}
	got := projects[0]
	if got.ID != input.ID || got.Methodology != input.Methodology || got.Status != input.Status {
		t.Fatalf("project = %+v, want %+v", got, input)
	}
	if !got.StartDate.Equal(input.StartDate) || !got.EndDate.Equal(input.EndDate) {
		t.Fatalf("dates = %v/%v, want %v/%v", got.StartDate, got.EndDate, input.StartDate, input.EndDate)
	}
}

func TestInsertProjectDuplicateReturnsAlreadyExists(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedReferences(t, store)
	ctx := context.Background()

	project := storage.Project{ID: 1, Name: "One", ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-02-01")}
	if err := store.InsertProject(ctx, project); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	if err := store.InsertProject(ctx, project); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate insert error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestProjectFactRowsDerivedMeasures(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedReferences(t, store)
	ctx := context.Background()

	if err := store.InsertProject(ctx, storage.Project{
		ID: 1, Name: "Funded", ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-31"),
		Budget: 1000, TotalCost: 400, Profit: 700, Loss: 100,
		DeliverableCount: 4, DefectsDetected: 6,
	}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	// Zero-cost project exercises the ROI and defect-rate guards.
	if err := store.InsertProject(ctx, storage.Project{
		ID: 2, Name: "Unfunded", ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-02-01"), EndDate: date(t, "2024-02-11"),
	}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	for _, rating := range []float64{4, 5} {
		if err := store.InsertEvaluation(ctx, storage.Evaluation{ProjectID: 1, Rating: rating, RatedAt: date(t, "2024-01-20")}); err != nil {
			t.Fatalf("insert evaluation: %v", err)
		}
	}

	rows, err := store.ProjectFactRows(ctx)
	if err != nil {
		t.Fatalf("project fact rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	funded := rows[0]
	if funded.BudgetDeviation != 600 {
		t.Fatalf("budget deviation = %v, want 600", funded.BudgetDeviation)
	}
	if funded.ROI != 150 {
		t.Fatalf("roi = %v, want 150", funded.ROI)
	}
	if funded.ScheduleDeviation != 30 {
		t.Fatalf("schedule deviation = %v, want 30", funded.ScheduleDeviation)
	}
	if funded.DefectRate != 1.5 {
		t.Fatalf("defect rate = %v, want 1.5", funded.DefectRate)
	}
	if funded.ClientSatisfaction != 4.5 {
		t.Fatalf("satisfaction = %v, want 4.5", funded.ClientSatisfaction)
	}

	unfunded := rows[1]
	if unfunded.ROI != 0 || unfunded.DefectRate != 0 || unfunded.ClientSatisfaction != 0 {
		t.Fatalf("zero guards = %+v, want zeroed measures", unfunded)
	}
}

func TestDateBoundsCoversAllSources(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedReferences(t, store)
	ctx := context.Background()

	if err := store.InsertProject(ctx, storage.Project{
		ID: 1, Name: "One", ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-03-01"), EndDate: date(t, "2024-04-01"),
	}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	if err := store.InsertCost(ctx, storage.Cost{ProjectID: 1, CostDate: date(t, "2024-06-15"), Amount: 10}); err != nil {
		t.Fatalf("insert cost: %v", err)
	}
	if err := store.InsertDefect(ctx, storage.Defect{ID: 1, ProjectID: 1, DetectedAt: date(t, "2024-01-05")}); err != nil {
		t.Fatalf("insert defect: %v", err)
	}

	lo, hi, err := store.DateBounds(ctx)
	if err != nil {
		t.Fatalf("date bounds: %v", err)
	}
	if !lo.Equal(date(t, "2024-01-05")) {
		t.Fatalf("min = %v, want 2024-01-05", lo)
	}
	if !hi.Equal(date(t, "2024-06-15")) {
		t.Fatalf("max = %v, want 2024-06-15", hi)
	}
}

func TestDateBoundsEmptyStoreReportsNoData(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, _, err := store.DateBounds(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeNoData {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeNoData)
	}
}

func TestDefectWeekOffsetsExcludesPreStartDetections(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedReferences(t, store)
	ctx := context.Background()

	if err := store.InsertProject(ctx, storage.Project{
		ID: 1, Name: "One", Methodology: "Scrum", ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-01-08"), EndDate: date(t, "2024-03-01"),
	}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	defects := []storage.Defect{
		{ID: 1, ProjectID: 1, DetectedAt: date(t, "2024-01-08")}, // week 0
		{ID: 2, ProjectID: 1, DetectedAt: date(t, "2024-01-14")}, // week 0 (day 6)
		{ID: 3, ProjectID: 1, DetectedAt: date(t, "2024-01-22")}, // week 2
		{ID: 4, ProjectID: 1, DetectedAt: date(t, "2024-01-01")}, // before start, excluded
	}
	for _, d := range defects {
		if err := store.InsertDefect(ctx, d); err != nil {
			t.Fatalf("insert defect %d: %v", d.ID, err)
		}
	}

	offsets, err := store.DefectWeekOffsets(ctx, storage.DefectFilter{})
	if err != nil {
		t.Fatalf("defect week offsets: %v", err)
	}
	weeks := make([]int64, 0, len(offsets))
	for _, o := range offsets {
		weeks = append(weeks, o.Week)
	}
	want := []int64{0, 0, 2}
	if len(weeks) != len(want) {
		t.Fatalf("weeks = %v, want %v", weeks, want)
	}
	for i := range want {
		if weeks[i] != want[i] {
			t.Fatalf("weeks = %v, want %v", weeks, want)
		}
	}
	if offsets[0].Methodology != "Scrum" {
		t.Fatalf("methodology = %q, want %q", offsets[0].Methodology, "Scrum")
	}
}

func TestDefectWeekOffsetsAppliesProjectFilters(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedReferences(t, store)
	ctx := context.Background()

	projects := []storage.Project{
		{ID: 1, Name: "Scrum big", Methodology: "Scrum", Status: "done", Budget: 50000,
			HoursInvested: 900, DeliverableCount: 8, EmergingTech: 3, ClientID: 1, ResponsibleID: 1,
			StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-04-10")},
		{ID: 2, Name: "Kanban small", Methodology: "Kanban", Status: "active", Budget: 8000,
			HoursInvested: 120, DeliverableCount: 2, EmergingTech: 0, ClientID: 1, ResponsibleID: 1,
			StartDate: date(t, "2024-02-01"), EndDate: date(t, "2024-02-20")},
	}
	for _, p := range projects {
		if err := store.InsertProject(ctx, p); err != nil {
			t.Fatalf("insert project %d: %v", p.ID, err)
		}
	}
	if err := store.InsertDefect(ctx, storage.Defect{ID: 1, ProjectID: 1, DetectedAt: date(t, "2024-01-10")}); err != nil {
		t.Fatalf("insert defect: %v", err)
	}
	if err := store.InsertDefect(ctx, storage.Defect{ID: 2, ProjectID: 2, DetectedAt: date(t, "2024-02-05")}); err != nil {
		t.Fatalf("insert defect: %v", err)
	}

	cases := []struct {
		name   string
		filter storage.DefectFilter
		want   int
	}{
		{"no constraints", storage.DefectFilter{}, 2},
		{"methodology", storage.DefectFilter{Methodology: "Scrum"}, 1},
		{"budget range", storage.DefectFilter{BudgetMin: 10000}, 1},
		{"hours range", storage.DefectFilter{HoursMin: 100, HoursMax: 200}, 1},
		{"duration", storage.DefectFilter{DurationDaysMin: 60}, 1},
		{"status set", storage.DefectFilter{Status: []string{"done", "archived"}}, 1},
		{"deliverables", storage.DefectFilter{DeliverablesMax: 4}, 1},
		{"emerging tech", storage.DefectFilter{EmergingTechMin: 1}, 1},
		{"no match", storage.DefectFilter{Methodology: "RUP"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offsets, err := store.DefectWeekOffsets(ctx, tc.filter)
			if err != nil {
				t.Fatalf("defect week offsets: %v", err)
			}
			if len(offsets) != tc.want {
				t.Fatalf("offsets = %d, want %d", len(offsets), tc.want)
			}
		})
	}
}

func TestIncidentFactRowsNullResolution(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedReferences(t, store)
	ctx := context.Background()

	if err := store.InsertProject(ctx, storage.Project{ID: 1, Name: "One", ClientID: 1, ResponsibleID: 1,
		StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-03-01")}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	if err := store.InsertTask(ctx, storage.Task{ID: 1, ProjectID: 1, Title: "Setup",
		StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-10")}); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	if err := store.InsertIncident(ctx, storage.Incident{ID: 1, ProjectID: 1, TaskID: 1, ResponsibleID: 1,
		ReportedAt: date(t, "2024-01-05"), ResolvedAt: date(t, "2024-01-09"), Severity: "high"}); err != nil {
		t.Fatalf("insert incident: %v", err)
	}
	if err := store.InsertIncident(ctx, storage.Incident{ID: 2, ProjectID: 1, TaskID: 1, ResponsibleID: 1,
		ReportedAt: date(t, "2024-01-06"), Severity: "low"}); err != nil {
		t.Fatalf("insert incident: %v", err)
	}

	rows, err := store.IncidentFactRows(ctx)
	if err != nil {
		t.Fatalf("incident fact rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ResolutionDays == nil || *rows[0].ResolutionDays != 4 {
		t.Fatalf("resolved incident days = %v, want 4", rows[0].ResolutionDays)
	}
	if rows[1].ResolutionDays != nil {
		t.Fatalf("unresolved incident days = %v, want nil", *rows[1].ResolutionDays)
	}
}
