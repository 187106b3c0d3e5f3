// Package model persists the trained Rayleigh model as a JSON file and
// records training runs in the warehouse model history.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/trackforge/defectcast/internal/platform/errors"
	"github.com/trackforge/defectcast/internal/services/forecast/rayleigh"
	warehouse "github.com/trackforge/defectcast/internal/services/warehouse/storage"
)

// Record is the on-disk model document. Saving fully replaces any prior
// record; there is exactly one live model per file.
type Record struct {
	Sigma     float64   `json:"sigma"`
	Samples   int       `json:"n_samples"`
	MeanSq    float64   `json:"mean_sq"`
	Expected  float64   `json:"expected"`
	P90       float64   `json:"p90"`
	TrainedAt time.Time `json:"trained_at"`
}

// FromSummary builds a record from a fit summary stamped at now.
func FromSummary(summary rayleigh.Summary, now time.Time) Record {
	return Record{
		Sigma:     summary.Sigma,
		Samples:   summary.N,
		MeanSq:    summary.MeanSq,
		Expected:  summary.Expected,
		P90:       summary.P90,
		TrainedAt: now.UTC(),
	}
}

// Save writes the record atomically: a temp file in the target directory
// is renamed over the destination, so readers never observe a partial
// document.
func Save(path string, rec Record) error {
	if path == "" {
		return fmt.Errorf("model file path is required")
	}
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model record: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write model record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp model file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace model file: %w", err)
	}
	return nil
}

// Load reads the current model record. A missing file means no model has
// been trained yet; a present but unreadable file is corrupt.
func Load(path string) (Record, error) {
	payload, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Record{}, apperrors.New(apperrors.CodeModelNotTrained, "no trained model file")
	}
	if err != nil {
		return Record{}, fmt.Errorf("read model file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeModelRecordCorrupt, "decode model record", err)
	}
	return rec, nil
}

// Archive appends the record to the warehouse model history so past
// trainings stay traceable after the file is overwritten.
func Archive(ctx context.Context, store warehouse.Store, rec Record) error {
	return store.InsertModelRecord(ctx, warehouse.ModelRecord{
		Sigma:     rec.Sigma,
		Samples:   int64(rec.Samples),
		MeanSq:    rec.MeanSq,
		Expected:  rec.Expected,
		P90:       rec.P90,
		TrainedAt: rec.TrainedAt,
	})
}
