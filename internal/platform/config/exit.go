package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exitf prints a fatal message for a defectcast command and exits with
// code 1. The message carries the command name so failures from
// cron-driven runs identify their binary.
func Exitf(format string, args ...any) {
	prefix := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "%s: "+format+"\n", append([]any{prefix}, args...)...)
	os.Exit(1)
}
