// Package mcp exposes the game over the Model Context Protocol. It is a thin
// client that proxies every tool call to the REST API, so MCP and HTTP
// clients always observe the same sessions.
package mcp
