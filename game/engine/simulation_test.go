package engine

import (
	"fmt"
	"strings"
	"testing"
)

// mustParse is a test helper for levels that are expected to load.
func mustParse(t *testing.T, text string) *Game {
	t.Helper()
	game, err := ParseLevel(text)
	if err != nil {
		t.Fatalf("ParseLevel failed: %v", err)
	}
	return game
}

// borderWalls produces wall lines for the full border of a size x size block
// at the given tab depth.
func borderWalls(depth, size int) []string {
	indent := strings.Repeat("\t", depth)
	var lines []string
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if x == 0 || y == 0 || x == size-1 || y == size-1 {
				lines = append(lines, fmt.Sprintf("%sWall %d %d 0 0 0", indent, x, y))
			}
		}
	}
	return lines
}

func simplePushLevel() string {
	lines := []string{
		"version 4",
		"#",
		"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
	}
	lines = append(lines, borderWalls(1, 5)...)
	lines = append(lines,
		"\tBlock 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
		"\tBlock 2 1 2 1 1 0 0 1 1 1 0 0 0 0 0 0",
		"\tFloor 3 1 Button",
	)
	return lvl(lines...)
}

// Scenario: a player block pushes a free block one cell onto the button.
func TestSimplePush(t *testing.T) {
	game := mustParse(t, simplePushLevel())
	if game.Won() {
		t.Fatalf("level must not start won")
	}

	if !game.Play(Right) {
		t.Fatalf("press right should succeed")
	}

	outer := game.BlockByNo(0)
	player := game.BlockByNo(1)
	pushed := game.BlockByNo(2)

	if gpos := player.GPos(); gpos.BlockID != outer.ID() || gpos.Pos != (Pos{X: 2, Y: 1}) {
		t.Errorf("player at %+v, want (2,1)", gpos)
	}
	if gpos := pushed.GPos(); gpos.BlockID != outer.ID() || gpos.Pos != (Pos{X: 3, Y: 1}) {
		t.Errorf("pushed block at %+v, want (3,1)", gpos)
	}
	if !game.Won() {
		t.Errorf("pushing the block onto the button should win")
	}
}

// Boundary: a push chain that ends at a wall fails atomically.
func TestPushChainBlockedByWall(t *testing.T) {
	game := mustParse(t, simplePushLevel())

	// the first press moves the chain right to player(2,1) block2(3,1), next
	// to wall(4,1); the second press pushes block 2 into the wall and must
	// not move anything
	game.Play(Right)
	before := game.Clone()

	if game.Play(Right) {
		t.Errorf("push into the border wall should fail")
	}
	if !game.Equal(before) {
		t.Errorf("failed push must leave the world untouched")
	}
}

// Boundary: a player at a block edge with no exit portal cannot move.
func TestNoExitPortal(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 3 3 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 2 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
	))

	// block 0 sits at the root; exiting it leads nowhere
	before := game.Clone()
	if game.Play(Right) {
		t.Errorf("moving off the edge of a root block should fail")
	}
	if !game.Equal(before) {
		t.Errorf("failed move must leave the world untouched")
	}

	// replaying the same press stays a no-op
	if game.Play(Right) {
		t.Errorf("retrying the failed press should still fail")
	}
}

// Scenario: pushing against a self-reference closes a movement cycle and the
// whole row rotates through the block.
func TestSelfReferenceCycle(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 0 2 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
		"\tBlock 1 2 2 1 1 0 0 1 1 1 0 0 0 0 0 0",
		"\tBlock 2 2 3 1 1 0 0 1 1 1 0 0 0 0 0 0",
		"\tBlock 3 2 4 1 1 0 0 1 1 1 0 0 0 0 0 0",
		"\tRef 4 2 0 0 0 0 0 0 0 0 0 0 0 0 0",
	))
	outer := game.BlockByNo(0)

	if !game.Play(Right) {
		t.Fatalf("cycle press should succeed")
	}

	wantPos := map[int]Pos{
		1: {X: 1, Y: 2},
		2: {X: 2, Y: 2},
		3: {X: 3, Y: 2},
		4: {X: 0, Y: 2}, // wrapped around through the self-reference
	}
	for no, want := range wantPos {
		block := game.BlockByNo(no)
		if gpos := block.GPos(); gpos.BlockID != outer.ID() || gpos.Pos != want {
			t.Errorf("block %d at %+v, want %+v", no, gpos, want)
		}
	}
}

// Scenario: entering the same block twice with an identical fingerprint
// synthesizes an epsilon-enter block and lands the mover at its center.
func TestInfiniteEnter(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tRef 0 2 0 0 0 0 0 0 0 0 0 0 0 0 0",
		"\tBlock 1 2 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
		"\tWall 3 2 0 0 0",
		"\tRef 4 2 0 0 0 0 0 0 0 0 0 0 0 0 0",
	))
	player := game.BlockByNo(1)
	cellsBefore := len(game.Cells())

	if !game.Play(Left) {
		t.Fatalf("infinite enter press should succeed")
	}

	container := game.Cell(player.GPos().BlockID).Block()
	if container == nil || container.InfEnter == nil {
		t.Fatalf("player should land inside an epsilon-enter block, got %+v", container)
	}
	if container.InfEnter.BlockNo != 0 || container.InfEnter.Degree != 0 {
		t.Errorf("epsilon tag = %+v, want (0, 0)", container.InfEnter)
	}
	if container.Width != EpsBlockSize || container.Height != EpsBlockSize || !container.Locked {
		t.Errorf("epsilon block should be a locked 5x5, got %+v", container)
	}
	if player.GPos().Pos != (Pos{X: 2, Y: 2}) {
		t.Errorf("player at %+v, want the epsilon block center (2,2)", player.GPos().Pos)
	}
	if len(game.Cells()) <= cellsBefore {
		t.Errorf("epsilon synthesis should have added cells")
	}
}

// Scenario: exiting through a portal that leads back into the same block
// synthesizes an epsilon-exit reference.
func TestInfiniteExit(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 3 3 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tRef 2 0 0 1 0 0 0 0 0 0 0 0 0 0 0",
		"\tBlock 2 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
	))
	player := game.BlockByNo(1)

	if !game.Play(Right) {
		t.Fatalf("infinite exit press should succeed")
	}

	var eps *Reference
	for _, cell := range game.Cells() {
		if ref := cell.Reference(); ref != nil && ref.InfExit != nil {
			eps = ref
		}
	}
	if eps == nil {
		t.Fatalf("no epsilon-exit reference was synthesized")
	}
	if *eps.InfExit != 0 || eps.TargetNo != 0 {
		t.Errorf("epsilon-exit = target %d degree %d, want target 0 degree 0", eps.TargetNo, *eps.InfExit)
	}

	space := game.Cell(eps.GPos().BlockID).Block()
	if space == nil || !space.Space {
		t.Fatalf("epsilon-exit reference should live in a space backdrop")
	}
	if container := game.Cell(player.GPos().BlockID); container.ID() != space.ID() {
		t.Errorf("player should land in the epsilon space, got container %d", container.ID())
	}
	if player.GPos().Pos != (Pos{X: SpaceSize + 1, Y: SpaceSize}) {
		t.Errorf("player at %+v, want one step past the space center", player.GPos().Pos)
	}
}

// Scenario: entering through a flipping reference mirrors the direction and
// the landing coordinate exactly, and toggles the mover's flip state.
func TestFlipTraversal(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
		"\tRef 2 1 2 0 0 0 0 0 0 0 0 0 1 0 0",
		"\tWall 3 1 0 0 0",
		"\tBlock 1 3 2 3 3 0.3 1 1 1 0 0 0 0 0 0 0",
	))
	player := game.BlockByNo(1)
	inner := game.BlockByNo(2)

	if player.FlipH() {
		t.Fatalf("player must start unflipped")
	}
	if !game.Play(Right) {
		t.Fatalf("flip traversal press should succeed")
	}

	if !player.FlipH() {
		t.Errorf("traversing a flipping reference must toggle the player's fliph")
	}
	gpos := player.GPos()
	if gpos.BlockID != inner.ID() {
		t.Fatalf("player should be inside block 2, got container %d", gpos.BlockID)
	}
	// moving right through the mirror enters from the right edge instead of
	// the left one
	if gpos.Pos != (Pos{X: inner.Width - 1, Y: 1}) {
		t.Errorf("player at %+v, want (%d,1)", gpos.Pos, inner.Width-1)
	}
}

// Scenario: possession switches the acting player without moving anything.
func TestPossess(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 3 3 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
		"\tWall 2 1 0 1 0",
	))
	player := game.BlockByNo(1)
	var wall Cell
	for _, cell := range game.Cells() {
		if cell.IsWall() {
			wall = cell
		}
	}

	before := game.Clone()
	if !game.Play(Right) {
		t.Fatalf("possess press should succeed")
	}

	if got := game.PlayerIDs()[0]; got != wall.ID() {
		t.Errorf("player id = %d, want the possessed wall %d", got, wall.ID())
	}
	for i, cell := range game.Cells() {
		if cell.GPos() != before.Cells()[i].GPos() {
			t.Errorf("cell %d moved during possession: %+v", i, cell.GPos())
		}
	}
	if player.GPos().Pos != (Pos{X: 1, Y: 1}) {
		t.Errorf("former player moved to %+v", player.GPos().Pos)
	}
}

// Scenario: with eat ahead of push in the attempt order, the mover swallows
// the target and takes its slot atomically.
func TestEat(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"attempt_order eat,push,enter,possess",
		"#",
		"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 1 1 1 3 3 0 0 1 1 0 1 1 0 0 0 0",
		"\tBlock 2 1 2 1 1 0 0 1 1 1 0 0 0 0 0 0",
	))
	outer := game.BlockByNo(0)
	player := game.BlockByNo(1)
	eaten := game.BlockByNo(2)

	if !game.Play(Right) {
		t.Fatalf("eat press should succeed")
	}

	if gpos := player.GPos(); gpos.BlockID != outer.ID() || gpos.Pos != (Pos{X: 2, Y: 1}) {
		t.Errorf("eater at %+v, want the target's former slot (2,1)", gpos)
	}
	gpos := eaten.GPos()
	if gpos.BlockID != player.ID() {
		t.Fatalf("eaten block should be inside the eater, got container %d", gpos.BlockID)
	}
	// entering the eater from its right edge at the middle point
	if gpos.Pos != (Pos{X: 2, Y: 1}) {
		t.Errorf("eaten at %+v inside the eater, want (2,1)", gpos.Pos)
	}
}

// Boundary: enters into filled and locked blocks fail, but entering via a
// reference to a locked block is allowed.
func TestEnterRestrictions(t *testing.T) {
	t.Run("filled", func(t *testing.T) {
		game := mustParse(t, lvl(
			"version 4",
			"#",
			"Block 0 0 0 4 4 0 0 0.5 1 0 0 0 0 0 0 0",
			"\tBlock 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
			"\tBlock 2 1 2 3 3 0 0 1 1 1 0 0 0 0 0 0",
			"\tWall 3 1 0 0 0",
		))
		if game.Play(Right) {
			t.Errorf("entering a filled block should fail")
		}
	})

	t.Run("locked", func(t *testing.T) {
		game := mustParse(t, lvl(
			"version 4",
			"#",
			"Block 0 0 0 4 4 0 0 0.5 1 0 0 0 0 0 0 0",
			"\tBlock 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
			"\tBlock 2 1 2 3 3 0 0 1 1 0 0 0 0 0 0 0",
			"\tWall 3 1 0 0 0",
		))
		game.BlockByNo(2).Locked = true
		if game.Play(Right) {
			t.Errorf("entering a locked block directly should fail")
		}
	})

	t.Run("locked via reference", func(t *testing.T) {
		game := mustParse(t, lvl(
			"version 4",
			"#",
			"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
			"\tBlock 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
			"\tRef 2 1 2 0 0 0 0 0 0 0 0 0 0 0 0",
			"\tWall 3 1 0 0 0",
			"\tBlock 1 3 2 3 3 0 0 1 1 0 0 0 0 0 0 0",
		))
		target := game.BlockByNo(2)
		target.Locked = true
		if !game.Play(Right) {
			t.Fatalf("entering a locked block via a reference should succeed")
		}
		player := game.BlockByNo(1)
		if player.GPos().BlockID != target.ID() {
			t.Errorf("player should be inside the locked block, got container %d", player.GPos().BlockID)
		}
	})
}

// Inner push: pressing against a wall moves the wall's parent block instead,
// leaving the earlier tentative movers behind.
func TestInnerPush(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"inner_push",
		"#",
		"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 1 1 1 3 3 0 0 1 1 0 0 0 0 0 0 0",
		"\t\tBlock 0 1 2 1 1 0 0 1 1 1 1 1 0 0 0 0",
		"\t\tWall 1 1 0 0 0",
	))
	outer := game.BlockByNo(0)
	parent := game.BlockByNo(1)
	player := game.BlockByNo(2)

	if !game.Play(Right) {
		t.Fatalf("inner push press should succeed")
	}

	if gpos := parent.GPos(); gpos.BlockID != outer.ID() || gpos.Pos != (Pos{X: 2, Y: 1}) {
		t.Errorf("parent block at %+v, want (2,1)", gpos)
	}
	// the player keeps its slot inside the moved parent
	if gpos := player.GPos(); gpos.BlockID != parent.ID() || gpos.Pos != (Pos{X: 0, Y: 1}) {
		t.Errorf("player at %+v, want (0,1) inside the parent", gpos)
	}
}

// Shed: when the traveler cannot leave, the container is pushed out from
// under it and the traveler takes the container's place.
func TestShed(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"shed",
		"#",
		"Block 0 0 0 3 3 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 2 1 1 3 3 0 0 1 1 0 0 0 0 0 0 0",
		"\t\tBlock 2 1 2 1 1 0 0 1 1 1 1 1 0 0 0 0",
	))
	outer := game.BlockByNo(0)
	container := game.BlockByNo(1)
	player := game.BlockByNo(2)

	if !game.Play(Right) {
		t.Fatalf("shed press should succeed")
	}

	if gpos := player.GPos(); gpos.BlockID != outer.ID() || gpos.Pos != (Pos{X: 2, Y: 1}) {
		t.Errorf("traveler at %+v, want the container's old slot (2,1)", gpos)
	}
	if gpos := container.GPos(); gpos.BlockID != outer.ID() || gpos.Pos != (Pos{X: 1, Y: 1}) {
		t.Errorf("container at %+v, want shed to (1,1)", gpos)
	}
}

// Determinism: the same level and press sequence always produce the same
// world.
func TestDeterminism(t *testing.T) {
	presses := []Direction{Right, Up, Left, Down, Right, Right}

	run := func() *Game {
		game := mustParse(t, simplePushLevel())
		for _, d := range presses {
			game.Play(d)
		}
		return game
	}

	first := run()
	for i := 0; i < 3; i++ {
		if !run().Equal(first) {
			t.Fatalf("run %d diverged", i+2)
		}
	}
}

// A failed resolution leaves no trace: trying the same press twice fails
// twice, and the world stays identical.
func TestFailedMoveIsPure(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 3 3 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 1 1 1 1 1 0 0 1 1 1 1 1 0 0 0 0",
		"\tWall 2 1 0 0 0",
	))
	before := game.Clone()

	for i := 0; i < 2; i++ {
		if game.Play(Right) {
			t.Fatalf("press %d into the wall should fail", i+1)
		}
		if !game.Equal(before) {
			t.Fatalf("failed press %d mutated the world", i+1)
		}
	}
}

// Multiple players all act on one press, in player order.
func TestTwoPlayersMoveTogether(t *testing.T) {
	game := mustParse(t, lvl(
		"version 4",
		"#",
		"Block 0 0 0 5 5 0 0 0.5 1 0 0 0 0 0 0 0",
		"\tBlock 1 1 1 1 1 0 0 1 1 1 1 0 0 0 0 0",
		"\tBlock 1 3 2 1 1 0 0 1 1 1 1 1 1 0 0 0",
	))
	first := game.BlockByNo(1)
	second := game.BlockByNo(2)

	if !game.Play(Right) {
		t.Fatalf("press should succeed")
	}

	if first.GPos().Pos != (Pos{X: 2, Y: 1}) {
		t.Errorf("player 0 at %+v, want (2,1)", first.GPos().Pos)
	}
	if second.GPos().Pos != (Pos{X: 2, Y: 3}) {
		t.Errorf("player 1 at %+v, want (2,3)", second.GPos().Pos)
	}
}
