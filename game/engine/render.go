package engine

import (
	"fmt"
	"strings"
)

// glyph alphabets shared with the terminal renderer
const (
	blockDigits    = "0123456789ABCDEF"
	infExitDigits  = "IJKLMNOPQRST"
	infEnterDigits = "ijklmnopqrst"
)

// CellGlyph returns the single-character mark used for a cell on a board:
// '#' for walls, 'P' for players, 'B' for filled blocks, the block digit for
// blocks and references, and the inf-exit/inf-enter alphabets for epsilon
// portals.
func (g *Game) CellGlyph(cell Cell) rune {
	if cell.IsWall() {
		return '#'
	}
	if g.IsPlayer(cell.ID()) {
		return 'P'
	}
	if b := cell.Block(); b != nil {
		if b.Filled {
			return 'B'
		}
		if b.InfEnter != nil {
			return digit(infEnterDigits, b.InfEnter.Degree, 'u')
		}
		return digit(blockDigits, b.BlockNo, 'G')
	}
	ref := cell.Reference()
	if ref.InfExit != nil {
		return digit(infExitDigits, *ref.InfExit, 'U')
	}
	return digit(blockDigits, ref.TargetNo, 'G')
}

func digit(alphabet string, n int, overflow rune) rune {
	if n >= 0 && n < len(alphabet) {
		return rune(alphabet[n])
	}
	return overflow
}

// BoardString renders every non-filled block (space backdrops included) as a
// text grid, top row first, preceded by a "[no]" header. It is the compact
// world snapshot used by the service results and the tests.
func (g *Game) BoardString() string {
	var sb strings.Builder
	for _, cell := range g.cells {
		block := cell.Block()
		if block == nil || block.Filled {
			continue
		}

		fmt.Fprintf(&sb, "[%d]\n", block.BlockNo)
		for y := block.Height - 1; y >= 0; y-- {
			for x := 0; x < block.Width; x++ {
				gpos := GlobalPos{BlockID: block.ID(), Pos: Pos{X: x, Y: y}}
				if occupier := g.CellAt(gpos); occupier != nil {
					sb.WriteRune(g.CellGlyph(occupier))
					continue
				}
				sb.WriteRune(g.goalGlyph(gpos))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (g *Game) goalGlyph(gpos GlobalPos) rune {
	for _, goal := range g.goals {
		if goal.GPos == gpos {
			if goal.Player {
				return '='
			}
			return '_'
		}
	}
	return '.'
}
