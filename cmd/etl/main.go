// Command etl rebuilds the dimensional warehouse from the operational
// tracking store and prints the per-table reload report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trackforge/defectcast/internal/platform/config"
	"github.com/trackforge/defectcast/internal/platform/otel"
	trackingsqlite "github.com/trackforge/defectcast/internal/services/tracking/storage/sqlite"
	"github.com/trackforge/defectcast/internal/services/warehouse/etl"
	warehousesqlite "github.com/trackforge/defectcast/internal/services/warehouse/storage/sqlite"
)

type etlEnv struct {
	TrackingDBPath  string `env:"DEFECTCAST_TRACKING_DB_PATH"`
	WarehouseDBPath string `env:"DEFECTCAST_WAREHOUSE_DB_PATH"`
	CalendarStart   string `env:"DEFECTCAST_CALENDAR_START"`
	CalendarEnd     string `env:"DEFECTCAST_CALENDAR_END"`
	MetricsFile     string `env:"DEFECTCAST_METRICS_FILE"`
}

func loadEtlEnv() etlEnv {
	var cfg etlEnv
	_ = config.ParseEnv(&cfg)
	cfg.TrackingDBPath = config.Default(cfg.TrackingDBPath, filepath.Join("data", "tracking.db"))
	cfg.WarehouseDBPath = config.Default(cfg.WarehouseDBPath, filepath.Join("data", "warehouse.db"))
	return cfg
}

func parseHorizon(env etlEnv) (etl.Horizon, error) {
	if strings.TrimSpace(env.CalendarStart) == "" || strings.TrimSpace(env.CalendarEnd) == "" {
		return etl.Horizon{}, nil
	}
	start, err := time.Parse("2006-01-02", env.CalendarStart)
	if err != nil {
		return etl.Horizon{}, fmt.Errorf("parse DEFECTCAST_CALENDAR_START: %w", err)
	}
	end, err := time.Parse("2006-01-02", env.CalendarEnd)
	if err != nil {
		return etl.Horizon{}, fmt.Errorf("parse DEFECTCAST_CALENDAR_END: %w", err)
	}
	return etl.Horizon{Start: start, End: end}, nil
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	shutdown, err := otel.Setup(ctx, "defectcast-etl")
	if err != nil {
		log.Printf("otel setup: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	env := loadEtlEnv()
	horizon, err := parseHorizon(env)
	if err != nil {
		config.Exitf("invalid calendar horizon: %v", err)
	}

	src, err := trackingsqlite.Open(env.TrackingDBPath)
	if err != nil {
		config.Exitf("open tracking store: %v", err)
	}
	defer src.Close()
	dst, err := warehousesqlite.Open(env.WarehouseDBPath)
	if err != nil {
		config.Exitf("open warehouse store: %v", err)
	}
	defer dst.Close()

	pipeline := &etl.Pipeline{Tracking: src, Warehouse: dst, Horizon: horizon}
	report, reloadErr := pipeline.Reload(ctx)
	printReport(report)

	// A batch run has no scrape endpoint; dump the row and drop counters
	// in textfile-collector format for a node_exporter pickup.
	if path := strings.TrimSpace(env.MetricsFile); path != "" {
		if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
			log.Printf("write metrics file: %v", err)
		}
	}

	if reloadErr != nil {
		config.Exitf("reload failed: %v", reloadErr)
	}
}

func printReport(report etl.Report) {
	fmt.Printf("reload %s in %s\n", report.State, report.Duration.Round(time.Millisecond))
	fmt.Printf("%-18s %8s %8s\n", "table", "rows", "dropped")
	for _, table := range report.Tables {
		fmt.Printf("%-18s %8d %8d\n", table.Name, table.Rows, table.Dropped)
	}
	if dropped := report.TotalDropped(); dropped > 0 {
		fmt.Printf("warning: %d fact rows dropped for unresolved keys\n", dropped)
	}
}
