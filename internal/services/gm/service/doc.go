// Package service runs the game-master MCP server over stdio or HTTP. It is
// the transport adapter layer: protocol plumbing lives here, business meaning
// lives in the domain handlers.
package service
