// Command seed populates the operational tracking store with synthetic
// projects, defects, and supporting rows for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/trackforge/defectcast/internal/platform/config"
	"github.com/trackforge/defectcast/internal/seed"
	trackingsqlite "github.com/trackforge/defectcast/internal/services/tracking/storage/sqlite"
)

func main() {
	dbPath := flag.String("db", filepath.Join("data", "tracking.db"), "tracking database path")
	seedVal := flag.Int64("seed", 0, "random seed for reproducibility (0 = random)")
	preset := flag.String("preset", string(seed.PresetDemo), "generation preset (demo, history-heavy, sparse)")
	projects := flag.Int("projects", 0, "number of projects to generate (0 = preset default)")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	valid := false
	for _, p := range seed.Presets() {
		if seed.Preset(*preset) == p {
			valid = true
			break
		}
	}
	if !valid {
		config.Exitf("unknown preset %q (valid: demo, history-heavy, sparse)", *preset)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	store, err := trackingsqlite.Open(*dbPath)
	if err != nil {
		config.Exitf("open tracking store: %v", err)
	}
	defer store.Close()

	generator := seed.New(seed.Config{
		Seed:     *seedVal,
		Preset:   seed.Preset(*preset),
		Projects: *projects,
		Verbose:  *verbose,
	})
	counts, err := generator.Run(ctx, store)
	if err != nil {
		config.Exitf("seed: %v", err)
	}

	entities := make([]string, 0, len(counts))
	for entity := range counts {
		entities = append(entities, entity)
	}
	sort.Strings(entities)
	for _, entity := range entities {
		fmt.Printf("%-14s %6d\n", entity, counts[entity])
	}
}
