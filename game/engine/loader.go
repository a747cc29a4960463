package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Token counts for the object lines of the level format.
const (
	blockTokens = 17
	refTokens   = 16
	wallTokens  = 6
	floorTokens = 4
)

// parseState carries the mutable context threaded through a level parse.
type parseState struct {
	game          *Game
	readingHeader bool
	sawVersion    bool
	// containment stack of block cell ids; tab depth indexes into it
	stack []int
	// (player order, cell id) pairs collected during the body
	players []playerEntry
	// deferred inf-enter patches resolved after the whole body is read
	patches []infEnterPatch
}

type playerEntry struct {
	order int
	id    int
}

type infEnterPatch struct {
	targetNo int
	blockNo  int
	degree   int
}

// ParseLevel builds a game from the level text format.
//
// The header (everything before a line consisting of a single "#") must
// contain "version 4" and may set "attempt_order", "shed" and "inner_push";
// unknown header keys are ignored. Body lines use tab indentation to encode
// containment: Block, Ref, Wall and Floor objects with fixed token layouts.
// Every error caused by a line carries that line's number and text.
func ParseLevel(text string) (*Game, error) {
	p := &parseState{
		game:          NewGame(),
		readingHeader: true,
	}

	lines := strings.Split(text, "\n")
	// the line that created each cell and each inf-enter patch, for the
	// errors reported once the whole body is read
	cellLine := make(map[int]int)
	patchLine := make(map[int]int)
	for i, line := range lines {
		cells, patches := len(p.game.cells), len(p.patches)
		if err := p.processLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %w: %q", i+1, err, line)
		}
		for id := cells; id < len(p.game.cells); id++ {
			cellLine[id] = i
		}
		for k := patches; k < len(p.patches); k++ {
			patchLine[k] = i
		}
	}

	if p.readingHeader {
		return nil, fmt.Errorf("level has no body separator %q", "#")
	}

	// all reference targets must resolve
	for _, cell := range p.game.cells {
		if ref := cell.Reference(); ref != nil {
			if p.game.BlockByNo(ref.TargetNo) == nil {
				i := cellLine[ref.ID()]
				return nil, fmt.Errorf("line %d: reference target %d not found: %q", i+1, ref.TargetNo, lines[i])
			}
		}
	}

	// apply deferred inf-enter patches
	for k, patch := range p.patches {
		i := patchLine[k]
		target := p.game.BlockByNo(patch.targetNo)
		if target == nil {
			return nil, fmt.Errorf("line %d: inf enter target %d not found: %q", i+1, patch.targetNo, lines[i])
		}
		if p.game.BlockByNo(patch.blockNo) == nil {
			return nil, fmt.Errorf("line %d: inf enter block %d not found: %q", i+1, patch.blockNo, lines[i])
		}
		target.InfEnter = &InfEnterTag{BlockNo: patch.blockNo, Degree: patch.degree}
	}

	// players act in player_order
	sort.SliceStable(p.players, func(i, j int) bool {
		return p.players[i].order < p.players[j].order
	})
	for _, entry := range p.players {
		p.game.playerIDs = append(p.game.playerIDs, entry.id)
	}

	return p.game, nil
}

func (p *parseState) processLine(line string) error {
	if strings.TrimSpace(line) == "#" {
		if p.readingHeader && !p.sawVersion {
			return fmt.Errorf("missing version header")
		}
		p.readingHeader = false
		return nil
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	if p.readingHeader {
		return p.processHeader(parts)
	}

	depth := 0
	for depth < len(line) && line[depth] == '\t' {
		depth++
	}
	if depth > len(p.stack) {
		return fmt.Errorf("indentation deeper than enclosing blocks")
	}
	p.stack = p.stack[:depth]

	parentID := RootID
	if len(p.stack) > 0 {
		parentID = p.stack[len(p.stack)-1]
	}

	switch parts[0] {
	case "Block":
		return p.processBlock(parts, parentID)
	case "Ref":
		return p.processRef(parts, parentID)
	case "Wall":
		return p.processWall(parts, parentID)
	case "Floor":
		return p.processFloor(parts, parentID)
	}
	return fmt.Errorf("unknown object type %q", parts[0])
}

func (p *parseState) processHeader(parts []string) error {
	switch parts[0] {
	case "version":
		if len(parts) < 2 || parts[1] != "4" {
			return fmt.Errorf("unsupported version %q", strings.Join(parts[1:], " "))
		}
		p.sawVersion = true
	case "attempt_order":
		if len(parts) < 2 {
			return fmt.Errorf("attempt_order needs a value")
		}
		var order []ActionType
		for _, token := range strings.Split(parts[1], ",") {
			action, err := ParseActionType(token)
			if err != nil {
				return err
			}
			order = append(order, action)
		}
		p.game.config.AttemptOrder = order
	case "shed":
		p.game.config.Shed = true
	case "inner_push":
		p.game.config.InnerPush = true
	}
	// unknown header keys are ignored
	return nil
}

func (p *parseState) processBlock(parts []string, parentID int) error {
	if len(parts) < blockTokens {
		return fmt.Errorf("block line needs %d tokens, got %d", blockTokens, len(parts))
	}

	nums, err := atoiAll(parts[1:6])
	if err != nil {
		return err
	}
	x, y, blockNo, width, height := nums[0], nums[1], nums[2], nums[3], nums[4]

	hue, err1 := strconv.ParseFloat(parts[6], 64)
	sat, err2 := strconv.ParseFloat(parts[7], 64)
	val, err3 := strconv.ParseFloat(parts[8], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return fmt.Errorf("invalid block color")
	}

	filled := parts[10] == "1"
	possessable := parts[12] == "1"
	fliph := parts[14] == "1"
	floating := parts[15] == "1"

	if !filled && (width <= 0 || height <= 0) {
		return fmt.Errorf("invalid block size %dx%d", width, height)
	}
	if _, exists := p.game.blockMap[blockNo]; exists {
		return fmt.Errorf("duplicate block number %d", blockNo)
	}

	gpos, err := p.placement(floating, parentID, x, y)
	if err != nil {
		return err
	}

	id := len(p.game.cells)
	p.game.cells = append(p.game.cells, &Block{
		cellCore: cellCore{id: id, gpos: gpos, possessable: possessable},
		BlockNo:  blockNo,
		Width:    width,
		Height:   height,
		Color:    HSV{H: 360 * hue, S: sat, V: val},
		Filled:   filled,
		fliph:    fliph,
	})
	p.game.blockMap[blockNo] = id

	if err := p.registerPlayer(parts[11], parts[13], id); err != nil {
		return err
	}
	p.stack = append(p.stack, id)
	return nil
}

func (p *parseState) processRef(parts []string, parentID int) error {
	if len(parts) < refTokens {
		return fmt.Errorf("ref line needs %d tokens, got %d", refTokens, len(parts))
	}

	nums, err := atoiAll(parts[1:4])
	if err != nil {
		return err
	}
	x, y, targetNo := nums[0], nums[1], nums[2]

	exit := parts[4] == "1"
	var infExit *int
	if parts[5] == "1" {
		// inf exits never serve as the canonical exit
		exit = false
		degree, err := strconv.Atoi(parts[6])
		if err != nil {
			return fmt.Errorf("invalid inf exit degree %q", parts[6])
		}
		infExit = &degree
	} else if parts[7] == "1" {
		degree, err1 := strconv.Atoi(parts[8])
		blockNo, err2 := strconv.Atoi(parts[9])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("invalid inf enter link")
		}
		p.patches = append(p.patches, infEnterPatch{
			targetNo: targetNo,
			blockNo:  blockNo,
			degree:   degree,
		})
	}

	possessable := parts[11] == "1"
	fliph := parts[13] == "1"
	floating := parts[14] == "1"

	gpos, err := p.placement(floating, parentID, x, y)
	if err != nil {
		return err
	}

	id := len(p.game.cells)
	p.game.cells = append(p.game.cells, &Reference{
		cellCore: cellCore{id: id, gpos: gpos, possessable: possessable},
		TargetNo: targetNo,
		Exit:     exit,
		InfExit:  infExit,
		fliph:    fliph,
	})

	return p.registerPlayer(parts[10], parts[12], id)
}

func (p *parseState) processWall(parts []string, parentID int) error {
	if len(parts) < wallTokens {
		return fmt.Errorf("wall line needs %d tokens, got %d", wallTokens, len(parts))
	}

	nums, err := atoiAll(parts[1:3])
	if err != nil {
		return err
	}
	x, y := nums[0], nums[1]

	if parentID == RootID {
		return fmt.Errorf("wall outside of block")
	}

	gpos := GlobalPos{BlockID: parentID, Pos: Pos{X: x, Y: y}}
	if err := p.checkPos(gpos); err != nil {
		return err
	}

	id := len(p.game.cells)
	p.game.cells = append(p.game.cells, &Wall{
		cellCore: cellCore{id: id, gpos: gpos, possessable: parts[4] == "1"},
	})

	return p.registerPlayer(parts[3], parts[5], id)
}

func (p *parseState) processFloor(parts []string, parentID int) error {
	if len(parts) < floorTokens {
		return fmt.Errorf("floor line needs %d tokens, got %d", floorTokens, len(parts))
	}

	nums, err := atoiAll(parts[1:3])
	if err != nil {
		return err
	}

	var player bool
	switch parts[3] {
	case "Button":
		player = false
	case "PlayerButton":
		player = true
	default:
		return fmt.Errorf("unknown floor type %q", parts[3])
	}

	p.game.goals = append(p.game.goals, Goal{
		GPos:   GlobalPos{BlockID: parentID, Pos: Pos{X: nums[0], Y: nums[1]}},
		Player: player,
	})
	return nil
}

// placement computes where an object lands: the center of a fresh space
// backdrop when floating, otherwise the given parent-relative position.
func (p *parseState) placement(floating bool, parentID, x, y int) (GlobalPos, error) {
	var gpos GlobalPos
	if floating {
		gpos = GlobalPos{BlockID: p.game.addSpace(), Pos: spaceCenter()}
	} else {
		gpos = GlobalPos{BlockID: parentID, Pos: Pos{X: x, Y: y}}
	}
	if err := p.checkPos(gpos); err != nil {
		return GlobalPos{}, err
	}
	return gpos, nil
}

func (p *parseState) checkPos(gpos GlobalPos) error {
	if gpos.Root() {
		return nil
	}
	block := p.game.cells[gpos.BlockID].Block()
	if !block.InBounds(gpos.Pos) {
		return fmt.Errorf("position (%d,%d) out of bounds for block %d", gpos.Pos.X, gpos.Pos.Y, block.BlockNo)
	}
	if p.game.CellAt(gpos) != nil {
		return fmt.Errorf("cell already exists at (%d,%d)", gpos.Pos.X, gpos.Pos.Y)
	}
	return nil
}

func (p *parseState) registerPlayer(playerToken, orderToken string, id int) error {
	if playerToken != "1" {
		return nil
	}
	order, err := strconv.Atoi(orderToken)
	if err != nil {
		return fmt.Errorf("invalid player order %q", orderToken)
	}
	p.players = append(p.players, playerEntry{order: order, id: id})
	return nil
}

func atoiAll(tokens []string) ([]int, error) {
	nums := make([]int, len(tokens))
	for i, token := range tokens {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", token)
		}
		nums[i] = n
	}
	return nums, nil
}
