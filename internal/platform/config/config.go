// Package config holds process-level configuration helpers shared by the
// service binaries: environment parsing and the fatal-exit path.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates target from environment variables using the struct's
// env tags. Fields with envDefault tags fall back to their defaults when the
// variable is unset.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf prints a formatted message to stderr and terminates the process with
// exit code 1. Intended for main functions only.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
