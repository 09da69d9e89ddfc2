package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sablewood/chronicle/internal/platform/timeouts"
	"github.com/sablewood/chronicle/internal/services/gm/domain"
	"github.com/sablewood/chronicle/internal/storage"
)

const (
	serverName    = "Chronicle GM"
	serverVersion = "0.1.0"

	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP = "http"
)

// Config carries the dependencies and transport selection for the MCP server.
type Config struct {
	Turns     domain.TurnHandlerService
	Sessions  storage.SessionStore
	Audit     storage.AuditEventStore
	Transport string
	HTTPAddr  string
	Clock     func() time.Time
}

// newServer builds the MCP server with every GM tool registered.
func newServer(cfg Config) (*mcp.Server, error) {
	if cfg.Turns == nil {
		return nil, errors.New("turn service is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, domain.TurnSubmitTool(), domain.TurnSubmitHandler(cfg.Turns))
	mcp.AddTool(server, domain.SessionGetTool(), domain.SessionGetHandler(cfg.Sessions))
	mcp.AddTool(server, domain.TranscriptListTool(), domain.TranscriptListHandler(cfg.Sessions))
	mcp.AddTool(server, domain.CharacterSetTool(), domain.CharacterSetHandler(cfg.Sessions, cfg.Clock))
	if cfg.Audit != nil {
		mcp.AddTool(server, domain.AuditListTool(), domain.AuditListHandler(cfg.Audit))
	}

	return server, nil
}

// Run is the service entrypoint for the GM MCP surface and blocks until
// context cancellation. Stdio is the default transport for local clients;
// HTTP serves browser and remote integrations.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := newServer(cfg)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		return runStdio(ctx, server)
	case TransportHTTP:
		return runHTTP(ctx, server, cfg.HTTPAddr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

func runStdio(ctx context.Context, server *mcp.Server) error {
	err := server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

func runHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	if addr == "" {
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mcp http server listening addr=%s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP http: %w", err)
	}
}
