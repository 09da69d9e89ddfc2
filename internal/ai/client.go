// Package ai defines the model-inference boundary. The turn pipeline treats
// the model as an opaque call that returns a structured completion or fails;
// retries, if any, live behind the Client implementation.
package ai

import "context"

// PromptPacket is a structured prompt for one completion.
type PromptPacket struct {
	// System frames the model's role for this call.
	System string
	// User carries the turn-specific content.
	User string
	// WantJSON requests a JSON object completion for machine parsing.
	WantJSON bool
	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}

// Completion is the structured result of a model call.
type Completion struct {
	Content string
	Model   string
}

// Client turns a prompt packet into a completion.
type Client interface {
	Complete(ctx context.Context, packet PromptPacket) (Completion, error)
}
