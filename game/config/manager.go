package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/parabox-puzzle-game/game/engine"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// LevelInfo describes one entry of the level library.
type LevelInfo struct {
	Name        string `json:"name"`
	HasSolution bool   `json:"has_solution"`
	CellCount   int    `json:"cell_count"`
	GoalCount   int    `json:"goal_count"`
	PlayerCount int    `json:"player_count"`
}

// Manager loads and caches level files from a directory. Levels are .txt
// files in the puzzle text format; a sibling .solution file holds the press
// sequence that solves the level.
type Manager struct {
	levelDir string
	levels   map[string]string
	mu       sync.RWMutex
}

// NewManager creates a manager over the given level directory.
func NewManager(levelDir string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}
	return &Manager{
		levelDir: levelDir,
		levels:   make(map[string]string),
	}, nil
}

// LoadLevel returns the text of the named level, validating that it parses.
func (m *Manager) LoadLevel(name string) (string, error) {
	m.mu.RLock()
	if text, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return text, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if text, exists := m.levels[name]; exists {
		return text, nil
	}

	data, err := os.ReadFile(m.levelPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrLevelNotFound
		}
		return "", fmt.Errorf("failed to read level file: %w", err)
	}

	text := string(data)
	if _, err := engine.ParseLevel(text); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	m.levels[name] = text
	return text, nil
}

// LoadSolution returns the press sequence paired with the named level, or
// ErrLevelNotFound if no solution file exists.
func (m *Manager) LoadSolution(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(m.levelDir, name+".solution"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrLevelNotFound
		}
		return "", fmt.Errorf("failed to read solution file: %w", err)
	}
	return string(data), nil
}

// SaveLevel writes a level file after checking that it parses.
func (m *Manager) SaveLevel(name, text string) error {
	if _, err := engine.ParseLevel(text); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.WriteFile(m.levelPath(name), []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}
	m.levels[name] = text
	return nil
}

// ListLevels returns information about every level in the directory, sorted
// by name. Unparseable files are skipped.
func (m *Manager) ListLevels() ([]*LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var infos []*LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")

		text, err := m.LoadLevel(name)
		if err != nil {
			continue
		}
		game, err := engine.ParseLevel(text)
		if err != nil {
			continue
		}

		_, solErr := m.LoadSolution(name)
		infos = append(infos, &LevelInfo{
			Name:        name,
			HasSolution: solErr == nil,
			CellCount:   len(game.Cells()),
			GoalCount:   len(game.Goals()),
			PlayerCount: len(game.PlayerIDs()),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// GetDefault returns the built-in level used when no name is given.
func (m *Manager) GetDefault() string {
	return DefaultLevel
}

func (m *Manager) levelPath(name string) string {
	filename := name
	if !strings.HasSuffix(filename, ".txt") {
		filename += ".txt"
	}
	return filepath.Join(m.levelDir, filename)
}

// DefaultLevel is a small push puzzle available without any level directory.
const DefaultLevel = `version 4
#
Block 0 0 0 5 5 0.6 0.8 1 1 0 0 0 0 0 0 0
	Wall 0 0 0 0 0
	Wall 1 0 0 0 0
	Wall 2 0 0 0 0
	Wall 3 0 0 0 0
	Wall 4 0 0 0 0
	Wall 0 4 0 0 0
	Wall 1 4 0 0 0
	Wall 2 4 0 0 0
	Wall 3 4 0 0 0
	Wall 4 4 0 0 0
	Wall 0 1 0 0 0
	Wall 0 2 0 0 0
	Wall 0 3 0 0 0
	Wall 4 1 0 0 0
	Wall 4 2 0 0 0
	Wall 4 3 0 0 0
	Block 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0
	Block 2 1 2 1 1 0.3 0.8 1 1 1 0 0 0 0 0 0
	Floor 3 1 Button
`
