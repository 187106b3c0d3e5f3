// Package seed generates synthetic operational tracking data for local
// development and demos. Defect detection dates rise then fall across
// each project's life so the Rayleigh fit has a realistic shape to find.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	tracking "github.com/trackforge/defectcast/internal/services/tracking/storage"
)

// Preset names a generation profile.
type Preset string

const (
	// PresetDemo is a handful of mixed projects with full activity.
	PresetDemo Preset = "demo"
	// PresetHistoryHeavy is many finished projects with dense defect
	// histories, useful for training.
	PresetHistoryHeavy Preset = "history-heavy"
	// PresetSparse is a few barely started projects with little data.
	PresetSparse Preset = "sparse"
)

// Presets lists the valid generation profiles.
func Presets() []Preset {
	return []Preset{PresetDemo, PresetHistoryHeavy, PresetSparse}
}

// Config controls one generation run.
type Config struct {
	Seed     int64
	Preset   Preset
	Projects int // 0 uses the preset default
	Verbose  bool
}

// NewSeededRNG creates a seeded random number generator. A zero seed
// uses the current time and prints the chosen seed for reproducibility.
func NewSeededRNG(seed int64, verbose bool) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
		if verbose {
			fmt.Fprintf(os.Stderr, "Using seed: %d\n", seed)
		}
	}
	return rand.New(rand.NewSource(seed))
}

var methodologies = []string{"Scrum", "Kanban", "XP", "Waterfall", "RUP"}
var projectStatuses = []string{"active", "done", "on-hold"}
var severities = []string{"low", "medium", "high", "critical"}
var defectTypes = []string{"functional", "performance", "ui", "security", "data"}
var detectionStages = []string{"development", "testing", "staging", "production"}
var sectors = []string{"Retail", "Banking", "Health", "Logistics", "Education"}
var countries = []string{"MX", "US", "BR", "ES", "AR"}
var taskStatuses = []string{"todo", "in-progress", "done"}

func (p Preset) defaults() (projects int, defectsPerProject int, finishedShare float64) {
	switch p {
	case PresetHistoryHeavy:
		return 20, 30, 0.9
	case PresetSparse:
		return 3, 2, 0.0
	default:
		return 6, 12, 0.5
	}
}

// Generator writes synthetic rows through the tracking writer.
type Generator struct {
	rng *rand.Rand
	cfg Config
}

// New creates a generator for the config.
func New(cfg Config) *Generator {
	if cfg.Preset == "" {
		cfg.Preset = PresetDemo
	}
	return &Generator{rng: NewSeededRNG(cfg.Seed, cfg.Verbose), cfg: cfg}
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

// Run populates the store. Counts per entity are reported on return.
func (g *Generator) Run(ctx context.Context, store tracking.Writer) (map[string]int, error) {
	projects, defectsPer, finishedShare := g.cfg.Preset.defaults()
	if g.cfg.Projects > 0 {
		projects = g.cfg.Projects
	}

	counts := make(map[string]int)
	clients := 2 + g.rng.Intn(3)
	for id := int64(1); id <= int64(clients); id++ {
		err := store.InsertClient(ctx, tracking.Client{
			ID:      id,
			Name:    fmt.Sprintf("Client %d", id),
			Sector:  g.pick(sectors),
			Country: g.pick(countries),
		})
		if err != nil {
			return counts, fmt.Errorf("seed client %d: %w", id, err)
		}
		counts["clients"]++
	}
	responsibles := 3 + g.rng.Intn(4)
	for id := int64(1); id <= int64(responsibles); id++ {
		err := store.InsertResponsible(ctx, tracking.Responsible{
			ID:   id,
			Name: fmt.Sprintf("Responsible %d", id),
			Role: "Lead",
			Team: fmt.Sprintf("Team %c", 'A'+byte(id%4)),
		})
		if err != nil {
			return counts, fmt.Errorf("seed responsible %d: %w", id, err)
		}
		counts["responsibles"]++
	}

	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	var taskID, entryID, costID, defectID, incidentID, evalID int64
	for id := int64(1); id <= int64(projects); id++ {
		start := base.AddDate(0, g.rng.Intn(18), g.rng.Intn(28))
		durationWeeks := 8 + g.rng.Intn(30)
		end := start.AddDate(0, 0, durationWeeks*7)
		status := projectStatuses[0]
		if g.rng.Float64() < finishedShare {
			status = "done"
		}
		budget := float64(10000 + g.rng.Intn(190000))
		cost := budget * (0.5 + g.rng.Float64()*0.7)
		project := tracking.Project{
			ID:               id,
			Name:             fmt.Sprintf("Project %d", id),
			Methodology:      g.pick(methodologies),
			Stages:           fmt.Sprintf("%d", 3+g.rng.Intn(4)),
			StartDate:        start,
			EndDate:          end,
			Budget:           budget,
			TotalCost:        cost,
			Profit:           budget * (0.8 + g.rng.Float64()*0.6),
			Loss:             budget * g.rng.Float64() * 0.2,
			Progress:         g.rng.Float64(),
			DeliverableCount: int64(2 + g.rng.Intn(12)),
			HoursInvested:    int64(200 + g.rng.Intn(2800)),
			EmergingTech:     int64(g.rng.Intn(5)),
			Status:           status,
			ClientID:         1 + g.rng.Int63n(int64(clients)),
			ResponsibleID:    1 + g.rng.Int63n(int64(responsibles)),
		}

		defects := g.defectDates(start, durationWeeks, defectsPer)
		project.DefectsDetected = int64(len(defects))
		if err := store.InsertProject(ctx, project); err != nil {
			return counts, fmt.Errorf("seed project %d: %w", id, err)
		}
		counts["projects"]++

		for _, detected := range defects {
			defectID++
			defect := tracking.Defect{
				ID:             defectID,
				ProjectID:      id,
				DetectedAt:     detected,
				Type:           g.pick(defectTypes),
				Severity:       g.pick(severities),
				Status:         "open",
				DetectionStage: g.pick(detectionStages),
			}
			if g.rng.Float64() < 0.8 {
				defect.CorrectedAt = detected.AddDate(0, 0, 1+g.rng.Intn(21))
				defect.Status = "closed"
			}
			if err := store.InsertDefect(ctx, defect); err != nil {
				return counts, fmt.Errorf("seed defect %d: %w", defectID, err)
			}
			counts["defects"]++
		}

		tasks := 2 + g.rng.Intn(5)
		for i := 0; i < tasks; i++ {
			taskID++
			taskStart := start.AddDate(0, 0, g.rng.Intn(durationWeeks*7/2))
			task := tracking.Task{
				ID:             taskID,
				ProjectID:      id,
				Title:          fmt.Sprintf("Task %d", taskID),
				Priority:       g.pick(severities),
				Status:         g.pick(taskStatuses),
				StartDate:      taskStart,
				EndDate:        taskStart.AddDate(0, 0, 7+g.rng.Intn(21)),
				EstimatedHours: float64(8 + g.rng.Intn(80)),
				ActualHours:    float64(8 + g.rng.Intn(100)),
			}
			if err := store.InsertTask(ctx, task); err != nil {
				return counts, fmt.Errorf("seed task %d: %w", taskID, err)
			}
			counts["tasks"]++

			entries := 1 + g.rng.Intn(4)
			for j := 0; j < entries; j++ {
				entryID++
				err := store.InsertTimeEntry(ctx, tracking.TimeEntry{
					ID:            entryID,
					ResponsibleID: 1 + g.rng.Int63n(int64(responsibles)),
					TaskID:        taskID,
					EntryDate:     taskStart.AddDate(0, 0, j),
					HoursWorked:   1 + g.rng.Float64()*7,
				})
				if err != nil {
					return counts, fmt.Errorf("seed time entry %d: %w", entryID, err)
				}
				counts["time_entries"]++
			}

			if g.rng.Float64() < 0.3 {
				incidentID++
				reported := taskStart.AddDate(0, 0, g.rng.Intn(10))
				incident := tracking.Incident{
					ID:            incidentID,
					ProjectID:     id,
					TaskID:        taskID,
					ResponsibleID: 1 + g.rng.Int63n(int64(responsibles)),
					ReportedAt:    reported,
					Severity:      g.pick(severities),
					Status:        "open",
				}
				if g.rng.Float64() < 0.7 {
					incident.ResolvedAt = reported.AddDate(0, 0, 1+g.rng.Intn(14))
					incident.Status = "resolved"
				}
				if err := store.InsertIncident(ctx, incident); err != nil {
					return counts, fmt.Errorf("seed incident %d: %w", incidentID, err)
				}
				counts["incidents"]++
			}
		}

		expenses := 1 + g.rng.Intn(6)
		for i := 0; i < expenses; i++ {
			costID++
			err := store.InsertCost(ctx, tracking.Cost{
				ID:        costID,
				ProjectID: id,
				CostDate:  start.AddDate(0, 0, g.rng.Intn(durationWeeks*7)),
				Kind:      "service",
				Supplier:  fmt.Sprintf("Supplier %d", 1+g.rng.Intn(8)),
				Amount:    float64(100 + g.rng.Intn(9900)),
				Currency:  "USD",
			})
			if err != nil {
				return counts, fmt.Errorf("seed cost %d: %w", costID, err)
			}
			counts["costs"]++
		}

		if status == "done" {
			ratings := 1 + g.rng.Intn(3)
			for i := 0; i < ratings; i++ {
				evalID++
				err := store.InsertEvaluation(ctx, tracking.Evaluation{
					ID:        evalID,
					ProjectID: id,
					Rating:    float64(1 + g.rng.Intn(5)),
					RatedAt:   end.AddDate(0, 0, g.rng.Intn(14)),
				})
				if err != nil {
					return counts, fmt.Errorf("seed evaluation %d: %w", evalID, err)
				}
				counts["evaluations"]++
			}
		}
	}
	return counts, nil
}

// defectDates spreads detections so the weekly counts rise to a peak
// around a third of the project's life and tail off after, the shape a
// Rayleigh fit expects.
func (g *Generator) defectDates(start time.Time, durationWeeks, target int) []time.Time {
	if target <= 0 {
		return nil
	}
	peak := float64(durationWeeks) / 3
	if peak < 1 {
		peak = 1
	}
	dates := make([]time.Time, 0, target)
	for len(dates) < target {
		// Rayleigh-distributed week offset via inverse transform.
		week := peak * math.Sqrt(-2*math.Log(1-g.rng.Float64()))
		if int(week) >= durationWeeks {
			continue
		}
		day := int(week*7) + g.rng.Intn(7)
		if day >= durationWeeks*7 {
			day = durationWeeks*7 - 1
		}
		dates = append(dates, start.AddDate(0, 0, day))
	}
	return dates
}
