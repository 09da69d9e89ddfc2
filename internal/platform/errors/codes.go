// Package errors provides structured error handling for the turn core.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Turn errors
	CodeTurnEmptySessionID Code = "TURN_EMPTY_SESSION_ID"
	CodeTurnEmptyPlayerID  Code = "TURN_EMPTY_PLAYER_ID"
	CodeTurnEmptyContent   Code = "TURN_EMPTY_CONTENT"

	// Session errors
	CodeSessionMalformedState   Code = "SESSION_MALFORMED_STATE"
	CodeSessionSequenceConflict Code = "SESSION_SEQUENCE_CONFLICT"

	// Pipeline errors
	CodePipelineMissingNarrative Code = "PIPELINE_MISSING_NARRATIVE"
	CodePipelineAuditContract    Code = "PIPELINE_AUDIT_CONTRACT"

	// Model errors
	CodeModelCallFailed      Code = "MODEL_CALL_FAILED"
	CodeModelEmptyCompletion Code = "MODEL_EMPTY_COMPLETION"
	CodeModelBadPayload      Code = "MODEL_BAD_PAYLOAD"

	// Dispatch errors
	CodeDispatchFailed Code = "DISPATCH_FAILED"

	// Check errors
	CodeCheckUnknownSkill      Code = "CHECK_UNKNOWN_SKILL"
	CodeCheckInvalidDifficulty Code = "CHECK_INVALID_DIFFICULTY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)
