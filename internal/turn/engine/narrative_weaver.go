package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sablewood/chronicle/internal/ai"
	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// NarrativeWeaverNode is the terminal node. It synthesizes the game-master
// prose from scene, intent, safety constraints, and check outcome, and
// guarantees non-empty narrative content on success.
type NarrativeWeaverNode struct{}

// Name implements Node.
func (NarrativeWeaverNode) Name() string { return "narrative_weaver" }

// narrationPayload is the JSON shape the weaver asks the model for.
type narrationPayload struct {
	Narration   string `json:"narration"`
	Summary     string `json:"summary"`
	WorldDeltas []struct {
		Kind   string `json:"kind"`
		Target string `json:"target"`
		Detail string `json:"detail"`
	} `json:"world_deltas"`
}

// Process calls the model and writes the narrative event.
func (NarrativeWeaverNode) Process(ctx context.Context, ec *ExecutionContext) error {
	system := narrationSystemPrompt
	if ec.Escalated() {
		system += degradedNarrationInstruction
	}

	completion, err := ec.LLM.Complete(ctx, ai.PromptPacket{
		System:   system,
		User:     buildNarrationPrompt(ec),
		WantJSON: true,
	})
	if err != nil {
		return fmt.Errorf("weave narrative: %w", err)
	}

	event := parseNarration(completion.Content)
	event.Degraded = ec.Escalated()
	if event.Content == "" {
		return apperrors.New(apperrors.CodeModelEmptyCompletion, "weaver returned empty narration")
	}

	ec.Narrative = &event
	decision := "narrated"
	if event.Degraded {
		decision = "narrated_degraded"
	}
	ec.AppendAudit("narrative_weaver", decision,
		fmt.Sprintf("content=%d chars deltas=%d", len(event.Content), len(event.WorldDeltas)), "")
	return nil
}

// parseNarration decodes the structured payload, falling back to treating
// the whole completion as prose when the model ignored the JSON contract.
// The non-empty guarantee matters more than the side annotations.
func parseNarration(content string) domain.NarrativeEvent {
	var payload narrationPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil || payload.Narration == "" {
		return domain.NarrativeEvent{Content: strings.TrimSpace(content)}
	}
	event := domain.NarrativeEvent{
		Content: strings.TrimSpace(payload.Narration),
		Summary: payload.Summary,
	}
	for _, delta := range payload.WorldDeltas {
		event.WorldDeltas = append(event.WorldDeltas, domain.WorldDelta{
			Kind:   delta.Kind,
			Target: delta.Target,
			Detail: delta.Detail,
		})
	}
	return event
}
