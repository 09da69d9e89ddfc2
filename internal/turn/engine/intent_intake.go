package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sablewood/chronicle/internal/ai"
	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// IntentIntakeNode classifies the raw player message into a structured
// intent with one model call. Model failure is fatal to the turn.
type IntentIntakeNode struct{}

// Name implements Node.
func (IntentIntakeNode) Name() string { return "intent_intake" }

// intentPayload is the JSON shape the classifier returns.
type intentPayload struct {
	IntentSummary   string `json:"intent_summary"`
	Tone            string `json:"tone"`
	Skill           string `json:"skill"`
	Attribute       string `json:"attribute"`
	ProposesNewBeat bool   `json:"proposes_new_beat"`
}

// Process calls the model with a classification packet and parses the
// structured intent.
func (IntentIntakeNode) Process(ctx context.Context, ec *ExecutionContext) error {
	completion, err := ec.LLM.Complete(ctx, ai.PromptPacket{
		System:   classificationSystemPrompt,
		User:     buildClassificationPrompt(ec.Scene, ec.Message),
		WantJSON: true,
	})
	if err != nil {
		return fmt.Errorf("classify intent: %w", err)
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(completion.Content), &payload); err != nil {
		return apperrors.Wrap(apperrors.CodeModelBadPayload, "intent payload is not valid JSON", err)
	}
	if payload.IntentSummary == "" {
		return apperrors.New(apperrors.CodeModelBadPayload, "intent payload has no summary")
	}

	intent := domain.Intent{
		IntentSummary:   payload.IntentSummary,
		Tone:            domain.Tone(payload.Tone),
		ProposesNewBeat: payload.ProposesNewBeat,
	}
	// An unrecognized skill or attribute downgrades to unspecified rather
	// than failing the turn: the planner simply plans no check.
	if skill := domain.Skill(payload.Skill); skill.IsValid() {
		intent.Skill = skill
	}
	if attribute := domain.Attribute(payload.Attribute); attribute.IsValid() {
		intent.Attribute = attribute
	}

	ec.Intent = &intent
	ec.AppendAudit("intent_intake", "classified",
		fmt.Sprintf("summary=%q skill=%s", intent.IntentSummary, intent.Skill), "")
	return nil
}
