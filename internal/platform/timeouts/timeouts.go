// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between component boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// ModelCall caps the time allowed for a single model-inference completion.
// An abandoned turn must not hold its session lock indefinitely.
const ModelCall = 45 * time.Second

// ToolCall caps the time allowed for one MCP tool invocation end to end,
// including every model call the pipeline makes.
const ToolCall = 3 * time.Minute

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
