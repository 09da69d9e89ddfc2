// Package app bootstraps the game-master service: storage, model client,
// pipeline, and the MCP transport.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/sablewood/chronicle/internal/ai"
	"github.com/sablewood/chronicle/internal/checks"
	"github.com/sablewood/chronicle/internal/safety"
	"github.com/sablewood/chronicle/internal/services/gm/service"
	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/storage/memory"
	"github.com/sablewood/chronicle/internal/storage/sqlite"
	"github.com/sablewood/chronicle/internal/telemetry"
	"github.com/sablewood/chronicle/internal/turn/bus"
	"github.com/sablewood/chronicle/internal/turn/engine"
	"github.com/sablewood/chronicle/internal/turn/harness"
	turnservice "github.com/sablewood/chronicle/internal/turn/service"
)

// Config holds GM service configuration.
type Config struct {
	// DBPath is the sqlite database path. Empty selects the in-memory store.
	DBPath string
	// OpenAIKey authenticates model calls.
	OpenAIKey string
	// OpenAIModel selects the completion model.
	OpenAIModel string
	// SyncChecks resolves skill checks inline instead of deferring them to an
	// external engine.
	SyncChecks bool
	// Transport selects stdio or http MCP serving.
	Transport string
	// HTTPAddr is the listen address for the http transport.
	HTTPAddr string
}

// Run starts the GM service and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	sessions, audit, closeStores, err := openStores(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStores(); err != nil {
			log.Printf("close stores: %v", err)
		}
	}()

	llm, err := ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}

	turns, err := buildTurnEngine(sessions, audit, llm, cfg.SyncChecks)
	if err != nil {
		return err
	}

	return service.Run(ctx, service.Config{
		Turns:     turns,
		Sessions:  sessions,
		Audit:     audit,
		Transport: cfg.Transport,
		HTTPAddr:  cfg.HTTPAddr,
	})
}

// openStores selects sqlite or in-memory storage. The in-memory pair exists
// for local experimentation where transcripts need not survive restarts.
func openStores(dbPath string) (storage.SessionStore, storage.AuditEventStore, func() error, error) {
	if dbPath == "" {
		log.Printf("no db path configured, using in-memory stores")
		return memory.NewSessionStore(), memory.NewAuditEventStore(), func() error { return nil }, nil
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, store, store.Close, nil
}

func buildTurnEngine(sessions storage.SessionStore, audit storage.AuditEventStore, llm ai.Client, syncChecks bool) (*turnservice.Engine, error) {
	emitter := telemetry.NewEmitter(audit)

	planner := engine.CheckPlannerNode{}
	if syncChecks {
		planner.Resolver = checks.NewResolver()
	}

	orchestrator, err := engine.NewOrchestrator(
		engine.SceneFrameNode{},
		engine.IntentIntakeNode{},
		engine.SafetyGateNode{Policy: safety.NewPolicy()},
		planner,
		engine.NarrativeWeaverNode{},
	)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	h := harness.New(sessions, bus.LogDispatcher{}, bus.LogModerationQueue{}, emitter, nil)

	return turnservice.New(turnservice.Config{
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Harness:      h,
		LLM:          llm,
		Telemetry:    emitter,
	})
}
