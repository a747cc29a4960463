package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/parabox-puzzle-game/game/engine"
)

// Grid layout of the block panels on screen.
const (
	panelWidth  = 19
	panelHeight = 12
	columns     = 5
)

func colorFor(hsv engine.HSV) tcell.Color {
	r, g, b := hsv.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Render draws every non-filled block of the game as a panel on the screen.
func Render(screen tcell.Screen, game *engine.Game) {
	screen.Clear()

	counter := 0
	for _, cell := range game.Cells() {
		block := cell.Block()
		if block == nil || block.Filled {
			continue
		}

		areaX := panelWidth * (counter % columns)
		areaY := panelHeight * (counter / columns)
		counter++

		renderBlock(screen, game, block, areaX, areaY)
	}

	screen.Show()
}

func renderBlock(screen tcell.Screen, game *engine.Game, block *engine.Block, areaX, areaY int) {
	paddingX := (panelWidth - block.Width) / 2
	if paddingX < 0 {
		paddingX = 0
	}
	paddingY := (panelHeight - 1 - block.Height) / 2
	if paddingY < 0 {
		paddingY = 0
	}
	offsetX := areaX + paddingX
	offsetY := areaY + paddingY

	blockColor := colorFor(block.Color)
	title := fmt.Sprintf("[%d]", block.BlockNo)
	drawText(screen, areaX+(panelWidth-len(title))/2, offsetY, title,
		tcell.StyleDefault.Foreground(blockColor))

	// rows are drawn top-first: y counts down from the block's top edge
	for y := block.Height - 1; y >= 0; y-- {
		screenY := offsetY + block.Height - y
		for x := 0; x < block.Width; x++ {
			gpos := engine.GlobalPos{BlockID: block.ID(), Pos: engine.Pos{X: x, Y: y}}
			mark, style := cellAppearance(game, block, gpos)
			screen.SetContent(offsetX+x, screenY, mark, nil, style)
		}
	}
}

// cellAppearance picks the glyph and style for one grid slot.
func cellAppearance(game *engine.Game, block *engine.Block, gpos engine.GlobalPos) (rune, tcell.Style) {
	occupier := game.CellAt(gpos)
	if occupier == nil {
		for _, goal := range game.Goals() {
			if goal.GPos == gpos {
				if goal.Player {
					return '=', tcell.StyleDefault.Foreground(tcell.ColorWhite)
				}
				return '_', tcell.StyleDefault.Foreground(tcell.ColorWhite)
			}
		}
		return '.', tcell.StyleDefault.Foreground(tcell.ColorGray)
	}

	mark := game.CellGlyph(occupier)
	color := colorFor(block.Color)
	inverted := false

	if b := occupier.Block(); b != nil {
		color = colorFor(b.Color)
		if !b.Filled && !game.IsPlayer(b.ID()) {
			if exitID, ok := game.ExitIDFor(b); ok {
				inverted = exitID != b.ID()
			}
		}
	} else if r := occupier.Reference(); r != nil {
		if target := game.BlockByNo(r.TargetNo); target != nil {
			color = colorFor(target.Color)
		}
		inverted = r.InfExit == nil && !r.Exit
	}

	style := tcell.StyleDefault.Foreground(color)
	if inverted {
		style = style.Reverse(true)
	}
	return mark, style
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
