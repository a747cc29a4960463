package engine

import "fmt"

// Engine provides the main interface for driving a loaded level.
type Engine interface {
	// Game state
	Game() *Game
	Won() bool
	Snapshot() *Game

	// Turns
	Press(direction Direction) bool
	Presses() []Direction
	Undo() bool
	Reset() error

	// Replay
	Replay(solution string) (int, error)
}

// GameEngine implements the Engine interface on top of the simulator. It
// keeps a snapshot of the world before every press so turns can be undone;
// the resolver itself stays history-free.
type GameEngine struct {
	source  string
	game    *Game
	presses []Direction
	history []*Game
}

// NewEngine parses the level text and returns an engine for it.
func NewEngine(levelText string) (*GameEngine, error) {
	game, err := ParseLevel(levelText)
	if err != nil {
		return nil, fmt.Errorf("failed to load level: %w", err)
	}
	return &GameEngine{source: levelText, game: game}, nil
}

// Game returns the live game state.
func (e *GameEngine) Game() *Game {
	return e.game
}

// Source returns the level text the engine was loaded from.
func (e *GameEngine) Source() string {
	return e.source
}

// Won reports whether the goal predicate holds for the current world.
func (e *GameEngine) Won() bool {
	return e.game.Won()
}

// Snapshot returns a deep copy of the current world.
func (e *GameEngine) Snapshot() *Game {
	return e.game.Clone()
}

// Press resolves one turn in the given direction and records it. It reports
// whether any player's resolution succeeded.
func (e *GameEngine) Press(direction Direction) bool {
	e.history = append(e.history, e.game.Clone())
	moved := e.game.Play(direction)
	e.presses = append(e.presses, direction)
	return moved
}

// Presses returns the directions pressed since load or reset.
func (e *GameEngine) Presses() []Direction {
	return append([]Direction(nil), e.presses...)
}

// Undo restores the world to the state before the last press.
func (e *GameEngine) Undo() bool {
	if len(e.history) == 0 {
		return false
	}
	e.game = e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.presses = e.presses[:len(e.presses)-1]
	return true
}

// Reset reloads the level from its source text.
func (e *GameEngine) Reset() error {
	game, err := ParseLevel(e.source)
	if err != nil {
		return fmt.Errorf("failed to reset level: %w", err)
	}
	e.game = game
	e.presses = nil
	e.history = nil
	return nil
}

// Replay applies a solution string (characters U/D/L/R, whitespace ignored)
// and returns the number of presses applied. It fails if the game is already
// won before the final press.
func (e *GameEngine) Replay(solution string) (int, error) {
	steps := 0
	for _, c := range solution {
		var direction Direction
		switch c {
		case 'U':
			direction = Up
		case 'D':
			direction = Down
		case 'L':
			direction = Left
		case 'R':
			direction = Right
		case ' ', '\n', '\r', '\t':
			continue
		default:
			return steps, fmt.Errorf("invalid solution character %q", c)
		}

		if e.game.Won() {
			return steps, fmt.Errorf("level already won after %d presses", steps)
		}
		e.Press(direction)
		steps++
	}
	return steps, nil
}
