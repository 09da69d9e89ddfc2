package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sablewood/chronicle/internal/storage"
	turndomain "github.com/sablewood/chronicle/internal/turn/domain"
)

// SessionGetInput is the MCP tool input for reading session state.
type SessionGetInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// SessionGetResult is the MCP tool output describing current session state.
type SessionGetResult struct {
	SessionID     string `json:"session_id"`
	TurnSequence  int    `json:"turn_sequence"`
	CharacterID   string `json:"character_id,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
	LocationID    string `json:"location_id,omitempty"`
	LocationName  string `json:"location_name,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// SessionGetTool defines the MCP tool schema for reading session state.
func SessionGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_get",
		Description: "Returns current session state: sequence, character and location",
	}
}

// SessionGetHandler reads session state from the store.
func SessionGetHandler(sessions storage.SessionStore) mcp.ToolHandlerFor[SessionGetInput, SessionGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionGetInput) (*mcp.CallToolResult, SessionGetResult, error) {
		state, err := sessions.GetSessionState(ctx, input.SessionID)
		if err != nil {
			return nil, SessionGetResult{}, fmt.Errorf("get session state: %w", err)
		}
		out := SessionGetResult{
			SessionID:    state.SessionID,
			TurnSequence: state.TurnSequence,
			CreatedAt:    state.CreatedAt.Format(time.RFC3339),
			UpdatedAt:    state.UpdatedAt.Format(time.RFC3339),
		}
		if state.Character != nil {
			out.CharacterID = state.Character.CharacterID
			out.CharacterName = state.Character.Name
		}
		if state.Location != nil {
			out.LocationID = state.Location.LocationID
			out.LocationName = state.Location.Name
		}
		return nil, out, nil
	}
}

// CharacterSetInput is the MCP tool input for replacing the session's
// character snapshot.
type CharacterSetInput struct {
	SessionID   string         `json:"session_id" jsonschema:"session identifier"`
	CharacterID string         `json:"character_id" jsonschema:"character identifier"`
	Name        string         `json:"name" jsonschema:"character name"`
	Concept     string         `json:"concept,omitempty" jsonschema:"one-line character concept"`
	Attributes  map[string]int `json:"attributes,omitempty" jsonschema:"attribute ratings keyed by attribute name"`
	Skills      map[string]int `json:"skills,omitempty" jsonschema:"skill ratings keyed by skill name"`
	Conditions  []string       `json:"conditions,omitempty" jsonschema:"active character conditions"`
}

// CharacterSetResult is the MCP tool output after a character update.
type CharacterSetResult struct {
	SessionID   string `json:"session_id"`
	CharacterID string `json:"character_id"`
}

// CharacterSetTool defines the MCP tool schema for setting the character.
func CharacterSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "character_set",
		Description: "Replaces the session's character snapshot",
	}
}

// CharacterSetHandler stores the latest character snapshot for a session.
func CharacterSetHandler(sessions storage.SessionStore, clock func() time.Time) mcp.ToolHandlerFor[CharacterSetInput, CharacterSetResult] {
	if clock == nil {
		clock = time.Now
	}
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CharacterSetInput) (*mcp.CallToolResult, CharacterSetResult, error) {
		if _, err := sessions.EnsureSession(ctx, input.SessionID); err != nil {
			return nil, CharacterSetResult{}, fmt.Errorf("ensure session: %w", err)
		}
		sheet := turndomain.CharacterSheet{
			CharacterID: input.CharacterID,
			Name:        input.Name,
			Concept:     input.Concept,
			Attributes:  input.Attributes,
			Skills:      input.Skills,
			Conditions:  input.Conditions,
			UpdatedAt:   clock().UTC(),
		}
		if err := sessions.SetCharacter(ctx, input.SessionID, sheet); err != nil {
			return nil, CharacterSetResult{}, fmt.Errorf("set character: %w", err)
		}
		return nil, CharacterSetResult{SessionID: input.SessionID, CharacterID: input.CharacterID}, nil
	}
}
