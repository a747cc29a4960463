package service

import (
	"context"
)

// GameService defines all game-related operations exposed to transports.
type GameService interface {
	// Session management
	CreateSession(ctx context.Context, levelName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	Undo(ctx context.Context, sessionID string) (*GameState, error)
	Reset(ctx context.Context, sessionID string) (*GameState, error)
	Replay(ctx context.Context, sessionID, solution string) (*ReplayResult, error)

	// Game state
	GetGameState(ctx context.Context, sessionID string) (*GameState, error)

	// Level library
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
}

// SessionManager defines session storage operations.
type SessionManager interface {
	Create(id, levelName, levelText string) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelManager provides access to the level library.
type LevelManager interface {
	LoadLevel(name string) (string, error)
	LoadSolution(name string) (string, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() string
}
