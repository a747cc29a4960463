package service

import (
	"time"

	"github.com/wricardo/parabox-puzzle-game/game/config"
	"github.com/wricardo/parabox-puzzle-game/game/engine"
)

// Session represents an active game session.
type Session struct {
	ID             string
	LevelName      string
	Engine         *engine.GameEngine
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SessionInfo is the transport-facing view of a session.
type SessionInfo struct {
	ID             string     `json:"id"`
	LevelName      string     `json:"level_name"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	State          *GameState `json:"state"`
}

// GameState is the observable world after a turn: every cell with its
// position and flip state, the goals, the players, plus the won flag and a
// compact board rendering.
type GameState struct {
	Cells   []CellState `json:"cells"`
	Goals   []GoalState `json:"goals"`
	Players []int       `json:"players"`
	Presses int         `json:"presses"`
	Won     bool        `json:"won"`
	Board   string      `json:"board"`
}

// CellState describes one cell of the world.
type CellState struct {
	ID          int              `json:"id"`
	Kind        string           `json:"kind"` // "wall", "block" or "ref"
	GPos        engine.GlobalPos `json:"gpos"`
	FlipH       bool             `json:"fliph,omitempty"`
	Possessable bool             `json:"possessable,omitempty"`
	Player      bool             `json:"player,omitempty"`

	// block attributes
	BlockNo int  `json:"block_no,omitempty"`
	Width   int  `json:"width,omitempty"`
	Height  int  `json:"height,omitempty"`
	Filled  bool `json:"filled,omitempty"`
	Space   bool `json:"space,omitempty"`
	Locked  bool `json:"locked,omitempty"`

	// reference attributes
	TargetNo int  `json:"target_no,omitempty"`
	Exit     bool `json:"exit,omitempty"`
}

// GoalState describes one goal of the world.
type GoalState struct {
	GPos      engine.GlobalPos `json:"gpos"`
	Player    bool             `json:"player"`
	Satisfied bool             `json:"satisfied"`
}

// MoveResult is the outcome of a single press.
type MoveResult struct {
	Moved bool       `json:"moved"`
	Won   bool       `json:"won"`
	State *GameState `json:"state"`
}

// ReplayResult is the outcome of applying a solution string.
type ReplayResult struct {
	Steps int        `json:"steps"`
	Won   bool       `json:"won"`
	State *GameState `json:"state"`
}

// NewGameState builds the observable state snapshot for a game.
func NewGameState(eng *engine.GameEngine) *GameState {
	game := eng.Game()

	state := &GameState{
		Players: append([]int(nil), game.PlayerIDs()...),
		Presses: len(eng.Presses()),
		Won:     game.Won(),
		Board:   game.BoardString(),
	}

	for _, cell := range game.Cells() {
		cs := CellState{
			ID:          cell.ID(),
			GPos:        cell.GPos(),
			FlipH:       cell.FlipH(),
			Possessable: cell.Possessable(),
			Player:      game.IsPlayer(cell.ID()),
		}
		switch {
		case cell.IsWall():
			cs.Kind = "wall"
		case cell.Block() != nil:
			b := cell.Block()
			cs.Kind = "block"
			cs.BlockNo = b.BlockNo
			cs.Width = b.Width
			cs.Height = b.Height
			cs.Filled = b.Filled
			cs.Space = b.Space
			cs.Locked = b.Locked
		default:
			r := cell.Reference()
			cs.Kind = "ref"
			cs.TargetNo = r.TargetNo
			cs.Exit = r.Exit
		}
		state.Cells = append(state.Cells, cs)
	}

	for _, goal := range game.Goals() {
		satisfied := false
		if cell := game.CellAt(goal.GPos); cell != nil {
			satisfied = game.IsPlayer(cell.ID()) == goal.Player
		}
		state.Goals = append(state.Goals, GoalState{
			GPos:      goal.GPos,
			Player:    goal.Player,
			Satisfied: satisfied,
		})
	}

	return state
}

// Info builds the transport-facing view of a session.
func (s *Session) Info() *SessionInfo {
	return &SessionInfo{
		ID:             s.ID,
		LevelName:      s.LevelName,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
		State:          NewGameState(s.Engine),
	}
}

// LevelInfo re-exports the level library entry type for transports.
type LevelInfo = config.LevelInfo
