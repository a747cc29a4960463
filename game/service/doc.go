// Package service defines the game-facing operations shared by every
// transport: session management, presses, undo, reset, solution replay and
// level listing. The API and MCP surfaces are thin adapters over the
// GameService interface.
package service
