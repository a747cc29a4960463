package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/wricardo/parabox-puzzle-game/game/engine"
)

// gameServiceImpl implements GameService over a session manager and a level
// manager. The mutex serializes access to the shared sessions: REST, the
// WebSocket broadcasts and the MCP proxy all drive the same engines, and
// GameEngine itself is not safe for concurrent use.
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelManager
	mu       sync.RWMutex
}

// NewGameService creates the default GameService implementation.
func NewGameService(sessions SessionManager, levels LevelManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
	}
}

func (s *gameServiceImpl) CreateSession(ctx context.Context, levelName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var text string
	if levelName == "" {
		levelName = "default"
		text = s.levels.GetDefault()
	} else {
		loaded, err := s.levels.LoadLevel(levelName)
		if err != nil {
			return nil, fmt.Errorf("failed to load level %q: %w", levelName, err)
		}
		text = loaded
	}

	session, err := s.sessions.Create("", levelName, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("Created session %s (level: %s)", session.ID, levelName)
	return session.Info(), nil
}

func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Info(), nil
}

func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, session.Info())
	}
	return infos, nil
}

func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	moved := session.Engine.Press(dir)
	s.touch(sessionID)

	return &MoveResult{
		Moved: moved,
		Won:   session.Engine.Won(),
		State: NewGameState(session.Engine),
	}, nil
}

func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Engine.Undo() {
		return nil, fmt.Errorf("nothing to undo")
	}
	s.touch(sessionID)
	return NewGameState(session.Engine), nil
}

func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.Engine.Reset(); err != nil {
		return nil, err
	}
	s.touch(sessionID)
	return NewGameState(session.Engine), nil
}

func (s *gameServiceImpl) Replay(ctx context.Context, sessionID, solution string) (*ReplayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if solution == "" {
		loaded, err := s.levels.LoadSolution(session.LevelName)
		if err != nil {
			return nil, fmt.Errorf("no solution available for level %q: %w", session.LevelName, err)
		}
		solution = loaded
	}

	steps, err := session.Engine.Replay(solution)
	if err != nil {
		return nil, err
	}
	s.touch(sessionID)

	return &ReplayResult{
		Steps: steps,
		Won:   session.Engine.Won(),
		State: NewGameState(session.Engine),
	}, nil
}

func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return NewGameState(session.Engine), nil
}

func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// touch must be called with the write lock held.
func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Printf("Warning: failed to update session %s: %v", sessionID, err)
	}
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: failed to persist session %s: %v", sessionID, err)
	}
}
