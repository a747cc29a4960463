package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/parabox-puzzle-game/game/engine"
	"github.com/wricardo/parabox-puzzle-game/game/service"
)

// FilePersistence implements SessionPersistence using file system storage.
type FilePersistence struct {
	sessionsDir string
}

// NewFilePersistence creates a new file-based session persistence layer.
func NewFilePersistence(sessionsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{sessionsDir: sessionsDir}, nil
}

// Save persists a session to a JSON file.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	presses := make([]byte, 0, len(session.Engine.Presses()))
	for _, d := range session.Engine.Presses() {
		presses = append(presses, directionChar(d))
	}

	data := PersistedSessionData{
		ID:             session.ID,
		LevelName:      session.LevelName,
		LevelText:      session.Engine.Source(),
		Presses:        string(presses),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	if err := os.WriteFile(fp.sessionPath(session.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load retrieves a session from storage, rebuilding the world by replaying
// the persisted press sequence through a fresh engine.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	raw, err := os.ReadFile(fp.sessionPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	eng, err := engine.NewEngine(data.LevelText)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild engine: %w", err)
	}
	for _, c := range data.Presses {
		direction, err := engine.ParseDirection(string(c))
		if err != nil {
			return nil, fmt.Errorf("corrupt press history: %w", err)
		}
		eng.Press(direction)
	}

	return &service.Session{
		ID:             data.ID,
		LevelName:      data.LevelName,
		Engine:         eng,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a session file.
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.sessionPath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// ListAll returns all persisted session IDs.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// Exists checks whether a session file exists.
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.sessionPath(id))
	return err == nil
}

func (fp *FilePersistence) sessionPath(id string) string {
	return filepath.Join(fp.sessionsDir, strings.ToLower(id)+".json")
}

func directionChar(d engine.Direction) byte {
	switch d {
	case engine.Up:
		return 'U'
	case engine.Down:
		return 'D'
	case engine.Left:
		return 'L'
	default:
		return 'R'
	}
}
