package engine

import (
	"context"
	"fmt"

	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies pipeline spans in trace exports.
const tracerName = "github.com/sablewood/chronicle/internal/turn/engine"

// Node is one stage of the turn pipeline. Process reads from and extends the
// execution context, appends exactly one audit entry, and signals hard
// failure by returning an error.
type Node interface {
	Name() string
	Process(ctx context.Context, ec *ExecutionContext) error
}

// ErrMissingNarrative indicates the pipeline finished without narrative
// content. The weaver guarantees this never happens on a successful run.
var ErrMissingNarrative = apperrors.New(apperrors.CodePipelineMissingNarrative, "pipeline produced no narrative")

// Orchestrator invokes nodes in fixed order over a shared execution
// context.
type Orchestrator struct {
	nodes  []Node
	tracer trace.Tracer
}

// NewOrchestrator creates an orchestrator over the given node order.
func NewOrchestrator(nodes ...Node) (*Orchestrator, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("at least one node is required")
	}
	for i, node := range nodes {
		if node == nil {
			return nil, fmt.Errorf("node %d is nil", i)
		}
	}
	return &Orchestrator{
		nodes:  nodes,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Run executes every node in order. Node errors propagate unmodified; there
// is no node-level retry. On success the context carries a non-empty
// narrative and a complete audit trail.
func (o *Orchestrator) Run(ctx context.Context, ec *ExecutionContext) error {
	if ec == nil {
		return fmt.Errorf("execution context is required")
	}

	for _, node := range o.nodes {
		if err := o.runNode(ctx, node, ec); err != nil {
			return err
		}
	}

	if ec.Narrative == nil || ec.Narrative.Content == "" {
		return ErrMissingNarrative
	}
	return nil
}

func (o *Orchestrator) runNode(ctx context.Context, node Node, ec *ExecutionContext) error {
	nodeCtx, span := o.tracer.Start(ctx, "turn.node."+node.Name(),
		trace.WithAttributes(
			attribute.String("session.id", ec.SessionID),
			attribute.Int("turn.sequence", ec.TurnSequence),
		),
	)
	defer span.End()

	before := len(ec.AuditTrail)
	if err := node.Process(nodeCtx, ec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(ec.AuditTrail) != before+1 {
		err := apperrors.WithMetadata(apperrors.CodePipelineAuditContract,
			fmt.Sprintf("node %s appended %d audit entries, want 1", node.Name(), len(ec.AuditTrail)-before),
			map[string]string{"node": node.Name()},
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	entry := ec.AuditTrail[len(ec.AuditTrail)-1]
	if emitErr := ec.Telemetry.Emit(nodeCtx, storage.AuditEvent{
		EventName:    "turn.node." + node.Name(),
		Severity:     string(telemetry.SeverityInfo),
		SessionID:    ec.SessionID,
		PlayerID:     ec.PlayerID,
		TurnSequence: ec.TurnSequence,
		Node:         node.Name(),
		Ref:          entry.Ref,
		Attributes: map[string]any{
			"decision": entry.Decision,
			"reason":   entry.Reason,
		},
	}); emitErr != nil {
		// Audit persistence failures must not fail the turn; the in-context
		// trail still reaches the caller.
		span.RecordError(emitErr)
	}
	return nil
}
