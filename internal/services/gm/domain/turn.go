package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sablewood/chronicle/internal/platform/timeouts"
	turnservice "github.com/sablewood/chronicle/internal/turn/service"
)

// TurnHandlerService is the slice of the turn engine the MCP surface needs.
type TurnHandlerService interface {
	HandleTurn(ctx context.Context, req turnservice.Request) (turnservice.Result, error)
}

// TurnSubmitInput is the MCP tool input for submitting a player message.
type TurnSubmitInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	PlayerID  string `json:"player_id" jsonschema:"player identifier"`
	Message   string `json:"message" jsonschema:"the player's in-fiction message"`
}

// TurnSubmitResult is the MCP tool output for a processed turn.
type TurnSubmitResult struct {
	TurnSequence int          `json:"turn_sequence"`
	Narration    string       `json:"narration"`
	Summary      string       `json:"summary,omitempty"`
	Degraded     bool         `json:"degraded,omitempty"`
	Escalated    bool         `json:"escalated,omitempty"`
	Check        *CheckReport `json:"check,omitempty"`
	WorldDeltas  []WorldDelta `json:"world_deltas,omitempty"`
}

// CheckReport describes the skill check attached to a turn, resolved or
// pending.
type CheckReport struct {
	Skill      string `json:"skill"`
	Attribute  string `json:"attribute"`
	Advantage  string `json:"advantage"`
	Difficulty int    `json:"difficulty"`
	Pending    bool   `json:"pending"`
	CheckID    string `json:"check_id,omitempty"`
	Rolls      []int  `json:"rolls,omitempty"`
	Modifier   int    `json:"modifier,omitempty"`
	Total      int    `json:"total,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
}

// WorldDelta mirrors a structured world annotation for tool consumers.
type WorldDelta struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Detail string `json:"detail"`
}

// TurnSubmitTool defines the MCP tool schema for submitting a turn.
func TurnSubmitTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "turn_submit",
		Description: "Submits a player message and returns the game master's narration",
	}
}

// TurnSubmitHandler processes a player message through the turn engine.
func TurnSubmitHandler(turns TurnHandlerService) mcp.ToolHandlerFor[TurnSubmitInput, TurnSubmitResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TurnSubmitInput) (*mcp.CallToolResult, TurnSubmitResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		res, err := turns.HandleTurn(runCtx, turnservice.Request{
			SessionID: input.SessionID,
			PlayerID:  input.PlayerID,
			Content:   input.Message,
		})
		if err != nil {
			return nil, TurnSubmitResult{}, fmt.Errorf("handle turn: %w", err)
		}

		out := TurnSubmitResult{
			TurnSequence: res.Turn.TurnSequence,
			Narration:    res.Narrative.Content,
			Summary:      res.Narrative.Summary,
			Degraded:     res.Narrative.Degraded,
			Escalated:    res.Safety != nil && res.Safety.Escalate,
			Check:        checkReport(res),
		}
		for _, delta := range res.Narrative.WorldDeltas {
			out.WorldDeltas = append(out.WorldDeltas, WorldDelta{
				Kind:   delta.Kind,
				Target: delta.Target,
				Detail: delta.Detail,
			})
		}
		return nil, out, nil
	}
}

func checkReport(res turnservice.Result) *CheckReport {
	switch {
	case res.Turn.SkillCheckResult != nil:
		result := res.Turn.SkillCheckResult
		return &CheckReport{
			Skill:      string(result.Plan.Skill),
			Attribute:  string(result.Plan.Attribute),
			Advantage:  result.Plan.Advantage.String(),
			Difficulty: result.Plan.Difficulty,
			Rolls:      result.Rolls,
			Modifier:   result.Modifier,
			Total:      result.Total,
			Outcome:    string(result.OutcomeTier),
		}
	case res.CheckRequest != nil:
		req := res.CheckRequest
		return &CheckReport{
			Skill:      string(req.Skill),
			Attribute:  string(req.Attribute),
			Advantage:  req.Advantage.String(),
			Difficulty: req.Difficulty,
			Pending:    true,
			CheckID:    req.CheckID,
		}
	default:
		return nil
	}
}
