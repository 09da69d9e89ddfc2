package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sablewood/chronicle/internal/storage"
)

const defaultTranscriptLimit = 20

// TranscriptListInput is the MCP tool input for reading the transcript.
type TranscriptListInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of most recent turns to return"`
}

// TranscriptEntry is one transcript line.
type TranscriptEntry struct {
	TurnSequence int    `json:"turn_sequence"`
	Role         string `json:"role"`
	Content      string `json:"content"`
	CreatedAt    string `json:"created_at"`
}

// TranscriptListResult is the MCP tool output listing transcript entries in
// turn order.
type TranscriptListResult struct {
	SessionID string            `json:"session_id"`
	Entries   []TranscriptEntry `json:"entries"`
}

// TranscriptListTool defines the MCP tool schema for reading the transcript.
func TranscriptListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "transcript_list",
		Description: "Lists the most recent turns of a session transcript",
	}
}

// TranscriptListHandler reads the most recent turns from the store.
func TranscriptListHandler(sessions storage.SessionStore) mcp.ToolHandlerFor[TranscriptListInput, TranscriptListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptListInput) (*mcp.CallToolResult, TranscriptListResult, error) {
		state, err := sessions.GetSessionState(ctx, input.SessionID)
		if err != nil {
			return nil, TranscriptListResult{}, fmt.Errorf("get session state: %w", err)
		}

		limit := input.Limit
		if limit <= 0 {
			limit = defaultTranscriptLimit
		}
		turns := state.Turns
		if len(turns) > limit {
			turns = turns[len(turns)-limit:]
		}

		out := TranscriptListResult{SessionID: state.SessionID}
		for _, turn := range turns {
			out.Entries = append(out.Entries, TranscriptEntry{
				TurnSequence: turn.TurnSequence,
				Role:         string(turn.PlayerMessage.Role),
				Content:      turn.PlayerMessage.Content,
				CreatedAt:    turn.PlayerMessage.CreatedAt.Format(time.RFC3339),
			})
			if turn.SystemMessage != nil {
				out.Entries = append(out.Entries, TranscriptEntry{
					TurnSequence: turn.TurnSequence,
					Role:         string(turn.SystemMessage.Role),
					Content:      turn.SystemMessage.Content,
					CreatedAt:    turn.SystemMessage.CreatedAt.Format(time.RFC3339),
				})
			}
			out.Entries = append(out.Entries, TranscriptEntry{
				TurnSequence: turn.TurnSequence,
				Role:         string(turn.GMMessage.Role),
				Content:      turn.GMMessage.Content,
				CreatedAt:    turn.GMMessage.CreatedAt.Format(time.RFC3339),
			})
		}
		return nil, out, nil
	}
}

// AuditListInput is the MCP tool input for reading audit events.
type AuditListInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of most recent events to return"`
}

// AuditEntry is one audit event.
type AuditEntry struct {
	Timestamp    string `json:"timestamp"`
	EventName    string `json:"event_name"`
	Severity     string `json:"severity"`
	TurnSequence int    `json:"turn_sequence,omitempty"`
	Node         string `json:"node,omitempty"`
	Ref          string `json:"ref,omitempty"`
}

// AuditListResult is the MCP tool output listing audit events newest first.
type AuditListResult struct {
	SessionID string       `json:"session_id"`
	Events    []AuditEntry `json:"events"`
}

// AuditListTool defines the MCP tool schema for reading audit events.
func AuditListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "audit_list",
		Description: "Lists recent audit events for a session, newest first",
	}
}

// AuditListHandler reads audit events from the audit store.
func AuditListHandler(audit storage.AuditEventStore) mcp.ToolHandlerFor[AuditListInput, AuditListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AuditListInput) (*mcp.CallToolResult, AuditListResult, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = defaultTranscriptLimit
		}
		events, err := audit.ListAuditEvents(ctx, input.SessionID, limit)
		if err != nil {
			return nil, AuditListResult{}, fmt.Errorf("list audit events: %w", err)
		}
		out := AuditListResult{SessionID: input.SessionID}
		for _, evt := range events {
			out.Events = append(out.Events, AuditEntry{
				Timestamp:    evt.Timestamp.Format(time.RFC3339),
				EventName:    evt.EventName,
				Severity:     evt.Severity,
				TurnSequence: evt.TurnSequence,
				Node:         evt.Node,
				Ref:          evt.Ref,
			})
		}
		return nil, out, nil
	}
}
