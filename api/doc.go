// Package api implements the REST server: session management, presses,
// undo/reset/replay, level listing and the WebSocket upgrade endpoint.
package api
