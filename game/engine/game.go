package engine

// Game is the flat pool of cells plus goals, the block-number lookup, the
// ordered player list and the resolver configuration. Cells are addressed by
// stable integer id (their index in the pool); the containment graph is
// traversed purely by id, so cyclic containment via references never creates
// cyclic ownership.
type Game struct {
	cells     []Cell
	goals     []Goal
	blockMap  map[int]int // block number -> cell id
	playerIDs []int
	config    Config
}

// NewGame returns an empty game with the default configuration.
func NewGame() *Game {
	return &Game{
		blockMap: make(map[int]int),
		config:   Config{AttemptOrder: DefaultAttemptOrder()},
	}
}

// Cells returns the cell pool. The slice is owned by the game.
func (g *Game) Cells() []Cell { return g.cells }

// Goals returns the goal list.
func (g *Game) Goals() []Goal { return g.goals }

// PlayerIDs returns the ordered player cell ids.
func (g *Game) PlayerIDs() []int { return g.playerIDs }

// Config returns the resolver configuration.
func (g *Game) Config() Config { return g.config }

// Cell returns the cell with the given id.
func (g *Game) Cell(id int) Cell { return g.cells[id] }

// IsPlayer reports whether the cell id is currently a player.
func (g *Game) IsPlayer(id int) bool {
	for _, pid := range g.playerIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// CellAt returns the cell occupying the given global position, or nil.
func (g *Game) CellAt(gpos GlobalPos) Cell {
	for _, cell := range g.cells {
		if cell.GPos() == gpos {
			return cell
		}
	}
	return nil
}

// BlockByNo resolves a block number through the canonical block lookup.
func (g *Game) BlockByNo(no int) *Block {
	id, ok := g.blockMap[no]
	if !ok {
		return nil
	}
	return g.cells[id].Block()
}

// ExitIDFor returns the id of the exit portal for the given block: the
// reference marked as its exit if one exists, otherwise the block cell
// itself. Spaces cannot be exited.
func (g *Game) ExitIDFor(block *Block) (int, bool) {
	if !block.CanExit() {
		return 0, false
	}
	for _, cell := range g.cells {
		if ref := cell.Reference(); ref != nil && ref.Exit && ref.TargetNo == block.BlockNo {
			return ref.ID(), true
		}
	}
	return block.ID(), true
}

// infExitIDFor finds the epsilon-exit reference for (blockNo, degree).
func (g *Game) infExitIDFor(blockNo, degree int) (int, bool) {
	for _, cell := range g.cells {
		ref := cell.Reference()
		if ref != nil && ref.TargetNo == blockNo && ref.InfExit != nil && *ref.InfExit == degree {
			return ref.ID(), true
		}
	}
	return 0, false
}

// infEnterFor finds the epsilon-enter block for (blockNo, degree).
func (g *Game) infEnterFor(blockNo, degree int) *Block {
	for _, cell := range g.cells {
		b := cell.Block()
		if b != nil && b.InfEnter != nil && b.InfEnter.BlockNo == blockNo && b.InfEnter.Degree == degree {
			return b
		}
	}
	return nil
}

// freshBlockNo allocates a block number below every existing one, so that
// synthesized blocks never collide with numbers loaded from the input.
func (g *Game) freshBlockNo() int {
	minNo := 0
	for _, cell := range g.cells {
		if b := cell.Block(); b != nil && b.BlockNo < minNo {
			minNo = b.BlockNo
		}
	}
	return minNo - 1
}

// addSpace fabricates a root-level space backdrop and returns its cell id.
func (g *Game) addSpace() int {
	id := len(g.cells)
	g.cells = append(g.cells, &Block{
		cellCore: cellCore{
			id:   id,
			gpos: GlobalPos{BlockID: RootID},
		},
		BlockNo: g.freshBlockNo(),
		Width:   2*SpaceSize + 1,
		Height:  2*SpaceSize + 1,
		Color:   HSV{H: 0, S: 0, V: 0.5},
		Space:   true,
	})
	return id
}

// spaceCenter is the middle position of a space backdrop.
func spaceCenter() Pos {
	return Pos{X: SpaceSize, Y: SpaceSize}
}

// addInfExitFor synthesizes the epsilon-exit reference for (blockNo, degree),
// placed at the center of a fresh space backdrop, and returns its cell id.
func (g *Game) addInfExitFor(blockNo, degree int) int {
	gpos := GlobalPos{BlockID: g.addSpace(), Pos: spaceCenter()}
	id := len(g.cells)
	deg := degree
	g.cells = append(g.cells, &Reference{
		cellCore: cellCore{id: id, gpos: gpos},
		TargetNo: blockNo,
		InfExit:  &deg,
	})
	return id
}

// addInfEnterFor synthesizes the epsilon-enter block for the given block and
// degree: a fresh 5x5 locked block with the target's color, floating in its
// own space backdrop.
func (g *Game) addInfEnterFor(target *Block, degree int) *Block {
	gpos := GlobalPos{BlockID: g.addSpace(), Pos: spaceCenter()}
	id := len(g.cells)
	block := &Block{
		cellCore: cellCore{id: id, gpos: gpos},
		BlockNo:  g.freshBlockNo(),
		Width:    EpsBlockSize,
		Height:   EpsBlockSize,
		Color:    target.Color,
		Locked:   true,
		InfEnter: &InfEnterTag{BlockNo: target.BlockNo, Degree: degree},
	}
	g.cells = append(g.cells, block)
	g.blockMap[block.BlockNo] = id
	return block
}

// IsBlockTrivial reports whether a block is trivial for rendering purposes:
// filled, or bordered entirely by non-possessable walls with an empty
// interior.
func (g *Game) IsBlockTrivial(block *Block) bool {
	if block.Filled {
		return true
	}
	for x := 0; x < block.Width; x++ {
		for y := 0; y < block.Height; y++ {
			cell := g.CellAt(GlobalPos{BlockID: block.ID(), Pos: Pos{X: x, Y: y}})
			if x == 0 || y == 0 || x == block.Width-1 || y == block.Height-1 {
				if cell == nil || !cell.IsWall() || cell.Possessable() {
					return false
				}
			} else if cell != nil {
				return false
			}
		}
	}
	return true
}

// Play resolves one press for every player in order, committing each
// successful resolution. It reports whether any player's resolution
// succeeded.
func (g *Game) Play(direction Direction) bool {
	return NewSimulator(g).Play(direction)
}

// Won reports whether every goal is occupied by a cell whose player-ness
// matches the goal's kind. A game with no goals is never won.
func (g *Game) Won() bool {
	for _, goal := range g.goals {
		cell := g.CellAt(goal.GPos)
		if cell == nil {
			return false
		}
		if g.IsPlayer(cell.ID()) != goal.Player {
			return false
		}
	}
	return len(g.goals) > 0
}

// Clone returns a deep copy of the game, suitable for undo snapshots.
func (g *Game) Clone() *Game {
	clone := &Game{
		cells:     make([]Cell, len(g.cells)),
		goals:     append([]Goal(nil), g.goals...),
		blockMap:  make(map[int]int, len(g.blockMap)),
		playerIDs: append([]int(nil), g.playerIDs...),
		config: Config{
			AttemptOrder: append([]ActionType(nil), g.config.AttemptOrder...),
			Shed:         g.config.Shed,
			InnerPush:    g.config.InnerPush,
		},
	}
	for no, id := range g.blockMap {
		clone.blockMap[no] = id
	}
	for i, cell := range g.cells {
		switch c := cell.(type) {
		case *Wall:
			w := *c
			clone.cells[i] = &w
		case *Block:
			b := *c
			if c.InfEnter != nil {
				tag := *c.InfEnter
				b.InfEnter = &tag
			}
			clone.cells[i] = &b
		case *Reference:
			r := *c
			if c.InfExit != nil {
				deg := *c.InfExit
				r.InfExit = &deg
			}
			clone.cells[i] = &r
		}
	}
	return clone
}

// Equal reports whether two games have identical observable state: the same
// goals and players, and cells with the same kind, position and flip state,
// plus the same number and size for blocks and the same target and exit flag
// for references. Other cell attributes and the configuration are not
// compared.
func (g *Game) Equal(other *Game) bool {
	if len(g.cells) != len(other.cells) ||
		len(g.goals) != len(other.goals) ||
		len(g.playerIDs) != len(other.playerIDs) {
		return false
	}
	for i := range g.goals {
		if g.goals[i] != other.goals[i] {
			return false
		}
	}
	for i := range g.playerIDs {
		if g.playerIDs[i] != other.playerIDs[i] {
			return false
		}
	}
	for i := range g.cells {
		a, b := g.cells[i], other.cells[i]
		if a.GPos() != b.GPos() || a.FlipH() != b.FlipH() {
			return false
		}
		switch ac := a.(type) {
		case *Wall:
			if !b.IsWall() {
				return false
			}
		case *Block:
			bc := b.Block()
			if bc == nil || ac.BlockNo != bc.BlockNo || ac.Width != bc.Width || ac.Height != bc.Height {
				return false
			}
		case *Reference:
			bc := b.Reference()
			if bc == nil || ac.TargetNo != bc.TargetNo || ac.Exit != bc.Exit {
				return false
			}
		}
	}
	return true
}
