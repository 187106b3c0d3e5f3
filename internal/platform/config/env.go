// Package config holds the configuration conventions shared by the
// defectcast binaries: optional DEFECTCAST_-prefixed environment
// variables parsed into per-command structs, with fallbacks supplied by
// each loader, and a common fatal-exit path for CLI entry points.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target's env-tagged fields from the process
// environment. Every DEFECTCAST_ variable is optional; loaders apply
// their own fallbacks to whatever remains zero.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Default returns value with surrounding space trimmed, or fallback
// when nothing remains.
func Default(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
