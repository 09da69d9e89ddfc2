// Package service is the turn engine entry point. It validates the incoming
// player message, serializes turns per session, runs the node pipeline over
// a state snapshot, and commits the result through the harness.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/sablewood/chronicle/internal/ai"
	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/telemetry"
	"github.com/sablewood/chronicle/internal/turn/domain"
	"github.com/sablewood/chronicle/internal/turn/engine"
	"github.com/sablewood/chronicle/internal/turn/harness"
	"github.com/sablewood/chronicle/internal/turn/sessionlock"
	"github.com/sablewood/chronicle/internal/world"
)

// Validation errors returned before any state is touched.
var (
	ErrEmptySessionID = domain.ErrEmptySessionID
	ErrEmptyPlayerID  = apperrors.New(apperrors.CodeTurnEmptyPlayerID, "player id is required")
	ErrEmptyContent   = apperrors.New(apperrors.CodeTurnEmptyContent, "message content is required")
)

// Engine processes player turns end to end.
type Engine struct {
	sessions     storage.SessionStore
	orchestrator *engine.Orchestrator
	harness      *harness.Harness
	llm          ai.Client
	telemetry    *telemetry.Emitter
	world        world.Directory
	locks        *sessionlock.Keyed
	clock        func() time.Time
}

// Config carries the engine's dependencies. Sessions, Orchestrator, Harness
// and LLM are required; World, Telemetry and Clock are optional.
type Config struct {
	Sessions     storage.SessionStore
	Orchestrator *engine.Orchestrator
	Harness      *harness.Harness
	LLM          ai.Client
	Telemetry    *telemetry.Emitter
	World        world.Directory
	Clock        func() time.Time
}

// New creates a turn engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	if cfg.Harness == nil {
		return nil, errors.New("harness is required")
	}
	if cfg.LLM == nil {
		return nil, errors.New("model client is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		sessions:     cfg.Sessions,
		orchestrator: cfg.Orchestrator,
		harness:      cfg.Harness,
		llm:          cfg.LLM,
		telemetry:    cfg.Telemetry,
		world:        cfg.World,
		locks:        sessionlock.NewKeyed(),
		clock:        clock,
	}, nil
}

// Request is one incoming player message.
type Request struct {
	SessionID string
	PlayerID  string
	Content   string
	Metadata  map[string]string
}

// Result is the committed outcome of one turn.
type Result struct {
	Narrative    domain.NarrativeEvent
	CheckRequest *domain.CheckRequestEnvelope
	Safety       *domain.SafetyAssessment
	AuditTrail   []domain.AuditEntry
	Session      domain.SessionState
	Turn         domain.Turn
}

// HandleTurn runs one player message through the pipeline and commits the
// resulting turn. Processing is serialized per session. On any pipeline or
// commit failure the session transcript is left unchanged.
func (e *Engine) HandleTurn(ctx context.Context, req Request) (Result, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	req.Content = strings.TrimSpace(req.Content)

	if req.SessionID == "" {
		return Result{}, ErrEmptySessionID
	}
	if req.PlayerID == "" {
		return Result{}, ErrEmptyPlayerID
	}
	if req.Content == "" {
		return Result{}, ErrEmptyContent
	}

	unlock := e.locks.Lock(req.SessionID)
	defer unlock()

	state, err := e.sessions.EnsureSession(ctx, req.SessionID)
	if err != nil {
		return Result{}, err
	}

	state = e.refreshLocation(ctx, state)

	ec := engine.NewExecutionContext(engine.ContextParams{
		SessionID:    req.SessionID,
		PlayerID:     req.PlayerID,
		TurnSequence: state.TurnSequence + 1,
		Message: domain.Message{
			Role:      domain.RolePlayer,
			AuthorID:  req.PlayerID,
			Content:   req.Content,
			Metadata:  req.Metadata,
			CreatedAt: e.clock().UTC(),
		},
		Session:   state,
		LLM:       e.llm,
		Telemetry: e.telemetry,
		Clock:     e.clock,
	})

	if err := e.orchestrator.Run(ctx, ec); err != nil {
		e.emitFailure(ctx, req, ec, err)
		return Result{}, err
	}

	committed, turn, err := e.harness.CommitTurn(ctx, harness.CommitInput{
		SessionID:     req.SessionID,
		PlayerID:      req.PlayerID,
		TurnSequence:  ec.TurnSequence,
		PlayerMessage: ec.Message,
		Intent:        intentOf(ec),
		Narrative:     *ec.Narrative,
		Safety:        ec.Safety,
		CheckPlan:     ec.CheckPlan,
		CheckResult:   ec.CheckResult,
		CheckRequest:  ec.CheckRequest,
	})
	if err != nil {
		e.emitFailure(ctx, req, ec, err)
		return Result{}, err
	}

	return Result{
		Narrative:    *ec.Narrative,
		CheckRequest: ec.CheckRequest,
		Safety:       ec.Safety,
		AuditTrail:   ec.AuditTrail,
		Session:      committed,
		Turn:         turn,
	}, nil
}

// refreshLocation asks the world directory for the character's current
// location and records it before the snapshot is taken. A directory miss or
// failure keeps the last known location.
func (e *Engine) refreshLocation(ctx context.Context, state domain.SessionState) domain.SessionState {
	if e.world == nil || state.Character == nil {
		return state
	}
	location, err := e.world.LocationSummary(ctx, state.Character.CharacterID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("world location lookup failed session_id=%s character_id=%s err=%v", state.SessionID, state.Character.CharacterID, err)
		}
		return state
	}
	if err := e.sessions.SetLocation(ctx, state.SessionID, location); err != nil {
		log.Printf("session location update failed session_id=%s err=%v", state.SessionID, err)
		return state
	}
	state.Location = &location
	return state
}

func (e *Engine) emitFailure(ctx context.Context, req Request, ec *engine.ExecutionContext, cause error) {
	log.Printf("turn failed session_id=%s player_id=%s turn_sequence=%d err=%v", req.SessionID, req.PlayerID, ec.TurnSequence, cause)
	if e.telemetry == nil {
		return
	}
	_ = e.telemetry.Emit(ctx, storage.AuditEvent{
		EventName:    "turn.failed",
		Severity:     string(telemetry.SeverityError),
		SessionID:    req.SessionID,
		PlayerID:     req.PlayerID,
		TurnSequence: ec.TurnSequence,
		Attributes: map[string]any{
			"error":      cause.Error(),
			"error_code": string(apperrors.CodeOf(cause)),
		},
	})
}

func intentOf(ec *engine.ExecutionContext) domain.Intent {
	if ec.Intent == nil {
		return domain.Intent{}
	}
	return *ec.Intent
}
