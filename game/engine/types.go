package engine

import "fmt"

const (
	// RootID is the sentinel container id for cells that live at the top
	// level, outside every block.
	RootID = -1

	// SpaceSize is the half-extent of a synthesized space backdrop. A space
	// block is (2*SpaceSize+1) cells wide and tall.
	SpaceSize = 3

	// EpsBlockSize is the side length of a synthesized infinite-enter block.
	EpsBlockSize = 5
)

// Direction is one of the four movement directions. The y axis grows upward:
// Up is +y, Down is -y, Left is -x, Right is +x.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Horizontal reports whether the direction moves along the x axis.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Mirror reflects the direction on the horizontal axis: Left and Right swap,
// Up and Down are unchanged.
func (d Direction) Mirror() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection converts a direction name ("up", "down", "left", "right" or
// the single letters u/d/l/r in either case) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "u", "U":
		return Up, nil
	case "down", "d", "D":
		return Down, nil
	case "left", "l", "L":
		return Left, nil
	case "right", "r", "R":
		return Right, nil
	}
	return Up, fmt.Errorf("invalid direction %q", s)
}

// Pos is a coordinate pair inside a block's local grid.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Towards returns the position one step in the given direction.
func (p Pos) Towards(d Direction) Pos {
	switch d {
	case Up:
		p.Y++
	case Down:
		p.Y--
	case Left:
		p.X--
	case Right:
		p.X++
	}
	return p
}

// GlobalPos identifies where a cell lives: the id of its container block
// (RootID for top-level cells) and its coordinates within that block.
type GlobalPos struct {
	BlockID int `json:"block_id"`
	Pos     Pos `json:"pos"`
}

// Root reports whether the position is at the top level.
func (g GlobalPos) Root() bool {
	return g.BlockID == RootID
}

// HSV is a presentation-only color attached to blocks.
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// RGB converts the color to 8-bit RGB components.
func (c HSV) RGB() (r, g, b uint8) {
	h := c.H
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	chroma := c.V * c.S
	x := chroma * (1 - abs(mod2(h/60)-1))
	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = chroma, x, 0
	case h < 120:
		rf, gf, bf = x, chroma, 0
	case h < 180:
		rf, gf, bf = 0, chroma, x
	case h < 240:
		rf, gf, bf = 0, x, chroma
	case h < 300:
		rf, gf, bf = x, 0, chroma
	default:
		rf, gf, bf = chroma, 0, x
	}
	m := c.V - chroma
	return uint8((rf + m) * 255), uint8((gf + m) * 255), uint8((bf + m) * 255)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func mod2(f float64) float64 {
	for f >= 2 {
		f -= 2
	}
	return f
}

// Goal is a target position checked by the win predicate. Player goals
// require the occupier to be a player; plain goals require any non-player.
type Goal struct {
	GPos   GlobalPos `json:"gpos"`
	Player bool      `json:"player"`
}

// ActionType is one of the four ways a mover can interact with the cell
// occupying its destination.
type ActionType int

const (
	ActionPush ActionType = iota
	ActionEnter
	ActionEat
	ActionPossess
)

func (a ActionType) String() string {
	switch a {
	case ActionPush:
		return "push"
	case ActionEnter:
		return "enter"
	case ActionEat:
		return "eat"
	case ActionPossess:
		return "possess"
	}
	return fmt.Sprintf("ActionType(%d)", int(a))
}

// ParseActionType converts an attempt_order token to an ActionType.
func ParseActionType(s string) (ActionType, error) {
	switch s {
	case "push":
		return ActionPush, nil
	case "enter":
		return ActionEnter, nil
	case "eat":
		return ActionEat, nil
	case "possess":
		return ActionPossess, nil
	}
	return ActionPush, fmt.Errorf("unknown action %q", s)
}

// Config controls how the resolver arbitrates interactions.
type Config struct {
	// AttemptOrder is the order in which push/enter/eat/possess are tried.
	AttemptOrder []ActionType `json:"attempt_order"`
	// Shed lets a blocked traveler push its container out from under itself.
	Shed bool `json:"shed"`
	// InnerPush lets a push against a wall move the wall's parent block.
	InnerPush bool `json:"inner_push"`
}

// DefaultAttemptOrder returns the standard interaction order.
func DefaultAttemptOrder() []ActionType {
	return []ActionType{ActionPush, ActionEnter, ActionEat, ActionPossess}
}

// InfEnterTag marks a block as the synthesized epsilon block for a particular
// infinite-enter site, identified by the entered block's number and the
// recursion degree.
type InfEnterTag struct {
	BlockNo int `json:"block_no"`
	Degree  int `json:"degree"`
}

// Cell is the closed variant over the three cell kinds. All implementations
// live in this package; use the Block and Reference accessors for safe
// downcasts.
type Cell interface {
	ID() int
	GPos() GlobalPos
	Possessable() bool
	FlipH() bool
	IsWall() bool
	// Block returns the cell as a *Block, or nil if it is not a block.
	Block() *Block
	// Reference returns the cell as a *Reference, or nil otherwise.
	Reference() *Reference
}

type cellCore struct {
	id          int
	gpos        GlobalPos
	possessable bool
}

func (c *cellCore) ID() int               { return c.id }
func (c *cellCore) GPos() GlobalPos       { return c.gpos }
func (c *cellCore) Possessable() bool     { return c.possessable }
func (c *cellCore) IsWall() bool          { return false }
func (c *cellCore) Block() *Block         { return nil }
func (c *cellCore) Reference() *Reference { return nil }

// Wall is an immovable cell. It can still travel as part of a movement cycle
// or when its parent block is inner-pushed.
type Wall struct {
	cellCore
}

func (w *Wall) IsWall() bool { return true }
func (w *Wall) FlipH() bool  { return false }

// Block is a cell that is also a container with a Width x Height local grid.
type Block struct {
	cellCore
	BlockNo int
	Width   int
	Height  int
	Color   HSV
	// Filled blocks are treated as solid; they have no usable interior.
	Filled bool
	// Space marks a synthesized root-level backdrop. Spaces cannot be exited.
	Space bool
	// Locked blocks reject direct entry. Entry via a reference to a locked
	// block is still allowed.
	Locked bool
	fliph  bool
	// InfEnter is set on synthesized epsilon-enter blocks.
	InfEnter *InfEnterTag
}

func (b *Block) FlipH() bool   { return b.fliph }
func (b *Block) Block() *Block { return b }

// InBounds reports whether the local position lies inside the block's grid.
func (b *Block) InBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.Width && p.Y < b.Height
}

// CanExit reports whether movement may leave this block.
func (b *Block) CanExit() bool {
	return !b.Space
}

// Reference is a stand-in cell that represents another block by number.
type Reference struct {
	cellCore
	TargetNo int
	// Exit marks this reference as the canonical exit portal for its target.
	Exit bool
	// InfExit is the epsilon-exit degree; references carrying it cannot be
	// entered.
	InfExit *int
	fliph   bool
}

func (r *Reference) FlipH() bool           { return r.fliph }
func (r *Reference) Reference() *Reference { return r }

// CanEnter reports whether movement may enter through this reference.
func (r *Reference) CanEnter() bool {
	return r.InfExit == nil
}
