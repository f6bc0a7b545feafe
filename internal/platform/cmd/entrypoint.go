// Package cmd provides shared startup helpers for service entry points:
// layered env-then-flags configuration and a telemetry-wrapped run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/diariourbano/portaria/internal/platform/config"
	"github.com/diariourbano/portaria/internal/platform/otel"
	"github.com/diariourbano/portaria/internal/platform/timeouts"
)

// ServicePortaria names the ordinance service for startup telemetry and CLI consistency.
const ServicePortaria = "portaria"

// ParseConfig loads environment defaults into cfg. Flags registered
// afterwards see the env values as their defaults, so the precedence is
// flags over env over envDefault tags.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags into values registered on fs.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// ParseConfigFromArgs loads env defaults and then parses flags in one step.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string) error {
	if err := ParseConfig(cfg); err != nil {
		return err
	}
	return ParseArgs(fs, args)
}

// RunWithTelemetry wires tracing for the named service, executes run, and
// flushes pending spans on the way out.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()

	return run(ctx)
}
