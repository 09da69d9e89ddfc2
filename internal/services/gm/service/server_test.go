package service

import (
	"context"
	"strings"
	"testing"

	"github.com/sablewood/chronicle/internal/storage/memory"
	turnservice "github.com/sablewood/chronicle/internal/turn/service"
)

type stubTurnService struct{}

func (stubTurnService) HandleTurn(_ context.Context, _ turnservice.Request) (turnservice.Result, error) {
	return turnservice.Result{}, nil
}

func TestNewServerRequiresDependencies(t *testing.T) {
	if _, err := newServer(Config{Sessions: memory.NewSessionStore()}); err == nil {
		t.Fatal("expected error without turn service")
	}
	if _, err := newServer(Config{Turns: stubTurnService{}}); err == nil {
		t.Fatal("expected error without session store")
	}
	if _, err := newServer(Config{Turns: stubTurnService{}, Sessions: memory.NewSessionStore()}); err != nil {
		t.Fatalf("expected server without audit store, got %v", err)
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	err := Run(context.Background(), Config{
		Turns:     stubTurnService{},
		Sessions:  memory.NewSessionStore(),
		Transport: "carrier-pigeon",
	})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected unsupported transport error, got %v", err)
	}
}
