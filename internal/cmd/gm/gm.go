// Package gm parses GM command flags and starts the turn service runtime.
package gm

import (
	"context"
	"flag"

	entrypoint "github.com/sablewood/chronicle/internal/platform/cmd"
	"github.com/sablewood/chronicle/internal/services/gm/app"
)

// Config holds GM command configuration.
type Config struct {
	DBPath      string `env:"CHRONICLE_GM_DB_PATH"`
	OpenAIKey   string `env:"CHRONICLE_OPENAI_API_KEY"`
	OpenAIModel string `env:"CHRONICLE_OPENAI_MODEL"  envDefault:"gpt-4o-mini"`
	SyncChecks  bool   `env:"CHRONICLE_GM_SYNC_CHECKS" envDefault:"false"`
	Transport   string `env:"CHRONICLE_GM_TRANSPORT"  envDefault:"stdio"`
	HTTPAddr    string `env:"CHRONICLE_GM_HTTP_ADDR"  envDefault:"localhost:8081"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path (empty for in-memory)")
	fs.StringVar(&cfg.OpenAIModel, "model", cfg.OpenAIModel, "completion model name")
	fs.BoolVar(&cfg.SyncChecks, "sync-checks", cfg.SyncChecks, "resolve skill checks inline instead of deferring")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "MCP transport: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address (for http transport)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the GM turn service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGM, func(runCtx context.Context) error {
		return app.Run(runCtx, app.Config{
			DBPath:      cfg.DBPath,
			OpenAIKey:   cfg.OpenAIKey,
			OpenAIModel: cfg.OpenAIModel,
			SyncChecks:  cfg.SyncChecks,
			Transport:   cfg.Transport,
			HTTPAddr:    cfg.HTTPAddr,
		})
	})
}
