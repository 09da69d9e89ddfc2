// Package domain defines the MCP tool surface for the game-master service:
// tool schemas, input/output payloads, and handlers that delegate to the turn
// engine and the session store.
package domain
