package engine

// Simulator resolves one press into a globally consistent movement. It owns
// the game exclusively for the duration of a turn and keeps all tentative
// state in explicit stacks; the world is mutated only when a resolution
// succeeds, so a failed attempt leaves the game exactly as it was.
type Simulator struct {
	game        *Game
	playerIndex int

	// moveStack holds one tentative future state per cell touched by the
	// current resolution. Only records at or after moveIndex are committed;
	// records before it are locked in by an inner push or a closed cycle and
	// participate in cycle detection only.
	moveStack []moveState
	moveIndex int

	// cache fingerprints the transfers made by the cell currently being
	// resolved. cacheStack snapshots it around every move-stack push so that
	// recursion fingerprints stay isolated across independent movers.
	cache      transferCache
	cacheStack []transferCache
}

// moveState is a tentative future state for one cell: where it will be and
// whether it will be flipped, once the resolution commits.
type moveState struct {
	cellID int
	gpos   GlobalPos
	fliph  bool
	dir    Direction
}

func newMoveState(cell Cell, dir Direction) moveState {
	return moveState{
		cellID: cell.ID(),
		gpos:   cell.GPos(),
		fliph:  cell.FlipH(),
		dir:    dir,
	}
}

func (m moveState) apply(g *Game) {
	switch c := g.cells[m.cellID].(type) {
	case *Wall:
		c.gpos = m.gpos
	case *Block:
		c.gpos = m.gpos
		c.fliph = m.fliph
	case *Reference:
		c.gpos = m.gpos
		c.fliph = m.fliph
	}
}

// transferState is one recursion fingerprint: a block crossed in a given
// direction, the transfer point at the crossing, the infinite-recursion
// degree reached so far, and the mover's flip state when first recorded.
type transferState struct {
	blockNo int
	dir     Direction
	point   Point
	degree  int
	fliph   bool
}

// transferCache is the per-mover pair of fingerprint stacks. Exits are keyed
// by (block, direction); enters additionally by the transfer point.
type transferCache struct {
	exits  []transferState
	enters []transferState
}

func (c *transferCache) findExit(blockNo int, dir Direction) int {
	for i, s := range c.exits {
		if s.blockNo == blockNo && s.dir == dir {
			return i
		}
	}
	return -1
}

func (c *transferCache) findEnter(blockNo int, dir Direction, point Point) int {
	for i, s := range c.enters {
		if s.blockNo == blockNo && s.dir == dir && s.point == point {
			return i
		}
	}
	return -1
}

// NewSimulator creates a simulator borrowing the game for one turn.
func NewSimulator(game *Game) *Simulator {
	return &Simulator{game: game}
}

// Play drives one resolution attempt per player, in player order, committing
// each successful attempt before the next player acts. It reports whether
// any attempt succeeded.
func (s *Simulator) Play(direction Direction) bool {
	moved := false
	players := append([]int(nil), s.game.playerIDs...)
	for i, playerID := range players {
		s.playerIndex = i
		s.moveStack = s.moveStack[:0]
		s.moveIndex = 0
		s.cache = transferCache{}
		s.cacheStack = s.cacheStack[:0]

		if s.tryMove(playerID, direction) {
			for _, m := range s.moveStack[s.moveIndex:] {
				m.apply(s.game)
			}
			moved = true
		}
	}
	return moved
}

func (s *Simulator) pushMove(m moveState) {
	s.moveStack = append(s.moveStack, m)
	s.cacheStack = append(s.cacheStack, s.cache)
	s.cache = transferCache{}
}

func (s *Simulator) popMove() {
	s.moveStack = s.moveStack[:len(s.moveStack)-1]
	s.cache = s.cacheStack[len(s.cacheStack)-1]
	s.cacheStack = s.cacheStack[:len(s.cacheStack)-1]
}

// setTop refines the tentative state of the cell currently being resolved.
func (s *Simulator) setTop(m moveState) {
	s.moveStack[len(s.moveStack)-1] = m
}

// inMovingRange reports whether the cell already has a tentative move in the
// committing sub-range of the stack.
func (s *Simulator) inMovingRange(cellID int) bool {
	for _, m := range s.moveStack[s.moveIndex:] {
		if m.cellID == cellID {
			return true
		}
	}
	return false
}

// tryMove attempts to move a cell one step in the given direction.
//
// If the cell is already on the move stack the movement forms a cycle: when
// the earlier record sits in the committing range and shares the direction,
// the cycle closes and every cell in it moves together; otherwise the cycle
// cannot resolve.
func (s *Simulator) tryMove(cellID int, direction Direction) bool {
	for i, m := range s.moveStack {
		if m.cellID == cellID {
			if i >= s.moveIndex && m.dir == direction {
				s.moveIndex = i
				return true
			}
			return false
		}
	}

	current := newMoveState(s.game.cells[cellID], direction)
	s.pushMove(current)

	if current.gpos.Root() {
		// top-level cells have nowhere to move
		s.popMove()
		return false
	}

	if s.tryExit(current, Middle) {
		return true
	}
	s.popMove()
	return false
}

// tryExit advances the mover one step, crossing out of its container block
// as many times as needed. exitPoint is the fractional position along the
// crossed edge, refined at every boundary.
func (s *Simulator) tryExit(current moveState, exitPoint Point) bool {
	current.gpos.Pos = current.gpos.Pos.Towards(current.dir)

	if current.gpos.Root() {
		return false
	}
	container := s.game.cells[current.gpos.BlockID].Block()
	if container.InBounds(current.gpos.Pos) {
		return s.tryInteractPos(current, exitPoint)
	}

	// leaving the container: find its exit portal
	exitID, ok := s.game.ExitIDFor(container)
	if !ok {
		return false
	}
	portal := s.game.cells[exitID]

	// the coordinate along the crossed edge refines the transfer point
	if current.dir.Horizontal() {
		exitPoint = exitPoint.AddInt(current.gpos.Pos.Y).DivInt(container.Height)
	} else {
		exitPoint = exitPoint.AddInt(current.gpos.Pos.X).DivInt(container.Width)
	}

	var contextNo int
	if b := portal.Block(); b != nil {
		contextNo = b.BlockNo
	} else {
		contextNo = portal.Reference().TargetNo
	}

	if i := s.cache.findExit(contextNo, current.dir); i >= 0 {
		// infinite exit: tie the recursion off at the cached fingerprint and
		// redirect through the epsilon portal for this site
		s.cache.exits = s.cache.exits[:i+1]
		state := &s.cache.exits[i]
		infID, ok := s.game.infExitIDFor(contextNo, state.degree)
		if !ok {
			infID = s.game.addInfExitFor(contextNo, state.degree)
		}
		portal = s.game.cells[infID]
		exitPoint = state.point
		current.fliph = state.fliph
		state.degree++
	} else {
		s.cache.exits = append(s.cache.exits, transferState{
			blockNo: contextNo,
			dir:     current.dir,
			point:   exitPoint,
			degree:  0,
			fliph:   current.fliph,
		})
	}

	if portal.FlipH() {
		if current.dir.Horizontal() {
			current.dir = current.dir.Mirror()
		} else {
			exitPoint = exitPoint.Complement()
		}
		current.fliph = !current.fliph
	}

	current.gpos = portal.GPos()
	if s.tryExit(current, exitPoint) {
		return true
	}

	if s.game.config.Shed {
		// shed the container out from under the traveler
		s.setTop(current)
		return s.tryMove(portal.ID(), current.dir.Opposite())
	}
	return false
}

// tryInteractPos settles the mover on its destination slot: take it if
// empty, otherwise interact with the occupier.
func (s *Simulator) tryInteractPos(current moveState, point Point) bool {
	if target := s.game.CellAt(current.gpos); target != nil {
		return s.tryInteract(current, target.ID(), point)
	}
	s.setTop(current)
	return true
}

// tryInteract arbitrates between the four interaction types in the
// configured attempt order. Enter is skipped when the target is itself
// moving: a cell cannot be entered while it is part of the committing chain.
func (s *Simulator) tryInteract(current moveState, targetID int, point Point) bool {
	for _, action := range s.game.config.AttemptOrder {
		switch action {
		case ActionPush:
			if s.tryPush(current, targetID) {
				return true
			}
		case ActionEnter:
			if s.inMovingRange(targetID) {
				continue
			}
			if s.tryEnter(current, targetID, point) {
				return true
			}
		case ActionEat:
			if s.tryEat(current, targetID) {
				return true
			}
		case ActionPossess:
			if s.tryPossess(current.cellID, targetID) {
				return true
			}
		}
	}
	return false
}

// tryPush commits the pusher to its slot and moves the target ahead of it.
// Walls block ordinary pushes, but a wall already moving in the same
// direction closes a cycle, and with inner_push the wall's parent block can
// be pushed instead.
func (s *Simulator) tryPush(current moveState, targetID int) bool {
	s.setTop(current)

	target := s.game.cells[targetID]
	if target.IsWall() {
		for i := s.moveIndex; i < len(s.moveStack); i++ {
			if s.moveStack[i].cellID == targetID && s.moveStack[i].dir == current.dir {
				s.moveIndex = i
				return true
			}
		}

		if !s.game.config.InnerPush {
			return false
		}
		parentID := target.GPos().BlockID
		if parentID == RootID {
			return false
		}
		parent := s.game.cells[parentID].Block()
		exitID, ok := s.game.ExitIDFor(parent)
		if !ok {
			return false
		}
		direction := current.dir
		if s.game.cells[exitID].FlipH() {
			direction = direction.Mirror()
		}

		// the inner push cannot carry the earlier tentative moves with it
		savedIndex := s.moveIndex
		s.moveIndex = len(s.moveStack)
		if s.tryMove(exitID, direction) {
			return true
		}
		s.moveIndex = savedIndex
		return false
	}

	return s.tryMove(targetID, current.dir)
}

// tryEnter moves the mover into the target block (or the block its reference
// resolves to) through the edge opposite the movement direction.
func (s *Simulator) tryEnter(current moveState, targetID int, enterPoint Point) bool {
	target := s.game.cells[targetID]

	var block *Block
	switch {
	case target.IsWall():
		return false

	case target.Block() != nil:
		b := target.Block()
		if b.Space || b.Locked {
			return false
		}
		block = b

	default:
		ref := target.Reference()
		if !ref.CanEnter() {
			return false
		}
		if cid := ref.GPos().BlockID; cid != RootID {
			if cb := s.game.cells[cid].Block(); cb != nil && cb.Space {
				return false
			}
		}
		block = s.game.BlockByNo(ref.TargetNo)
		if block == nil {
			return false
		}
	}

	if block.Filled {
		return false
	}

	flipped := target.FlipH()
	if flipped {
		if current.dir.Horizontal() {
			current.dir = current.dir.Mirror()
		} else {
			enterPoint = enterPoint.Complement()
		}
		// the fliph toggle waits until the infinite-enter check resolves:
		// an infinite enter restores fliph from the cached fingerprint
	}

	if i := s.cache.findEnter(block.BlockNo, current.dir, enterPoint); i >= 0 {
		// infinite enter: land in the center of the epsilon block for this
		// site instead of descending forever
		s.cache.enters = s.cache.enters[:i+1]
		state := &s.cache.enters[i]
		eps := s.game.infEnterFor(block.BlockNo, state.degree)
		if eps == nil {
			eps = s.game.addInfEnterFor(block, state.degree)
		}
		current.fliph = state.fliph
		state.degree++
		current.gpos = GlobalPos{
			BlockID: eps.ID(),
			Pos:     Pos{X: eps.Width / 2, Y: eps.Height / 2},
		}
		return s.tryInteractPos(current, Middle)
	}

	s.cache.enters = append(s.cache.enters, transferState{
		blockNo: block.BlockNo,
		dir:     current.dir,
		point:   enterPoint,
		degree:  0,
		fliph:   current.fliph,
	})
	if flipped {
		current.fliph = !current.fliph
	}

	// enter through the edge opposite the movement arrow
	var pos Pos
	switch current.dir {
	case Up:
		x, rest := enterPoint.Scale(block.Width)
		pos, enterPoint = Pos{X: x, Y: 0}, rest
	case Down:
		x, rest := enterPoint.Scale(block.Width)
		pos, enterPoint = Pos{X: x, Y: block.Height - 1}, rest
	case Right:
		y, rest := enterPoint.Scale(block.Height)
		pos, enterPoint = Pos{X: 0, Y: y}, rest
	case Left:
		y, rest := enterPoint.Scale(block.Height)
		pos, enterPoint = Pos{X: block.Width - 1, Y: y}, rest
	}
	current.gpos = GlobalPos{BlockID: block.ID(), Pos: pos}
	return s.tryInteractPos(current, enterPoint)
}

// tryEat commits the eater to the target's slot and sends the target into
// the eater from the opposite side. Eating never closes cycles.
func (s *Simulator) tryEat(current moveState, targetID int) bool {
	target := s.game.cells[targetID]
	if target.IsWall() {
		return false
	}
	for _, m := range s.moveStack {
		if m.cellID == targetID {
			return false
		}
	}

	s.setTop(current)

	eaten := newMoveState(target, current.dir.Opposite())
	if current.fliph != s.game.cells[current.cellID].FlipH() {
		// the eater flipped mid-resolution; pre-flip the eaten so both sides
		// agree once it transfers through the flipping geometry
		eaten.dir = eaten.dir.Mirror()
		eaten.fliph = !eaten.fliph
	}

	s.pushMove(eaten)
	if s.tryEnter(eaten, current.cellID, Middle) {
		return true
	}
	s.popMove()
	return false
}

// tryPossess transfers the current player's control to a possessable,
// non-player target. Nothing moves on a possession turn.
func (s *Simulator) tryPossess(sourceID, targetID int) bool {
	if sourceID != s.game.playerIDs[s.playerIndex] {
		return false
	}
	target := s.game.cells[targetID]
	if !target.Possessable() || s.game.IsPlayer(targetID) {
		return false
	}
	s.game.playerIDs[s.playerIndex] = targetID
	s.moveIndex = len(s.moveStack)
	return true
}
