// Command train fits the Rayleigh defect-emergence model on the full
// defect history, persists the model file, and archives the training in
// the warehouse model history.
package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/trackforge/defectcast/internal/platform/config"
	"github.com/trackforge/defectcast/internal/services/forecast/model"
	"github.com/trackforge/defectcast/internal/services/forecast/rayleigh"
	"github.com/trackforge/defectcast/internal/services/forecast/sampler"
	trackingsqlite "github.com/trackforge/defectcast/internal/services/tracking/storage/sqlite"
	warehousesqlite "github.com/trackforge/defectcast/internal/services/warehouse/storage/sqlite"
)

type trainEnv struct {
	TrackingDBPath  string `env:"DEFECTCAST_TRACKING_DB_PATH"`
	WarehouseDBPath string `env:"DEFECTCAST_WAREHOUSE_DB_PATH"`
	ModelFile       string `env:"DEFECTCAST_MODEL_FILE"`
}

func loadTrainEnv() trainEnv {
	var cfg trainEnv
	_ = config.ParseEnv(&cfg)
	cfg.TrackingDBPath = config.Default(cfg.TrackingDBPath, filepath.Join("data", "tracking.db"))
	cfg.WarehouseDBPath = config.Default(cfg.WarehouseDBPath, filepath.Join("data", "warehouse.db"))
	cfg.ModelFile = config.Default(cfg.ModelFile, filepath.Join("data", "rayleigh_model.json"))
	return cfg
}

func main() {
	skipArchive := flag.Bool("no-archive", false, "skip recording the training in the warehouse history")
	flag.Parse()

	env := loadTrainEnv()
	ctx := context.Background()

	src, err := trackingsqlite.Open(env.TrackingDBPath)
	if err != nil {
		config.Exitf("open tracking store: %v", err)
	}
	defer src.Close()

	sample, err := sampler.Extract(ctx, src, sampler.Filter{})
	if err != nil {
		config.Exitf("extract sample: %v", err)
	}
	summary, err := rayleigh.Summarize(sample.Counts())
	if err != nil {
		config.Exitf("fit model: %v", err)
	}

	rec := model.FromSummary(summary, time.Now())
	if err := model.Save(env.ModelFile, rec); err != nil {
		config.Exitf("save model file: %v", err)
	}

	if !*skipArchive {
		warehouse, err := warehousesqlite.Open(env.WarehouseDBPath)
		if err != nil {
			config.Exitf("open warehouse store: %v", err)
		}
		defer warehouse.Close()
		if err := model.Archive(ctx, warehouse, rec); err != nil {
			config.Exitf("archive model record: %v", err)
		}
	}

	defects := 0
	for _, count := range sample.Buckets {
		defects += count
	}
	fmt.Printf("trained on %d weekly buckets (%d defects across %d projects)\n",
		summary.N, defects, sample.Projects)
	fmt.Printf("sigma      %.4f\n", summary.Sigma)
	fmt.Printf("expected   %.4f weeks\n", summary.Expected)
	fmt.Printf("p90        %.4f weeks\n", summary.P90)
	fmt.Printf("p95        %.4f weeks\n", summary.P95)
	fmt.Printf("model file %s\n", env.ModelFile)
}
