// Package portaria parses portaria service flags and launches the service.
package portaria

import (
	"context"
	"flag"

	entrypoint "github.com/diariourbano/portaria/internal/platform/cmd"
	server "github.com/diariourbano/portaria/internal/services/portaria/server"
)

// Config holds portaria command configuration.
type Config struct {
	Port int `env:"PORTARIA_PORT" envDefault:"8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The portaria HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the portaria HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePortaria, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
