package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/parabox-puzzle-game/game/engine"
)

// Run drives the interactive loop until the player quits or solves the
// level. Keys: WASD or arrows move, u undoes, r restarts, q or Escape quits.
func Run(eng *engine.GameEngine) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault)
	Render(screen, eng.Game())

	for {
		event := screen.PollEvent()
		key, ok := event.(*tcell.EventKey)
		if !ok {
			if _, resized := event.(*tcell.EventResize); resized {
				screen.Sync()
				Render(screen, eng.Game())
			}
			continue
		}

		switch {
		case key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC || key.Rune() == 'q':
			return nil

		case key.Key() == tcell.KeyUp || key.Rune() == 'w':
			eng.Press(engine.Up)
		case key.Key() == tcell.KeyDown || key.Rune() == 's':
			eng.Press(engine.Down)
		case key.Key() == tcell.KeyLeft || key.Rune() == 'a':
			eng.Press(engine.Left)
		case key.Key() == tcell.KeyRight || key.Rune() == 'd':
			eng.Press(engine.Right)

		case key.Rune() == 'u':
			eng.Undo()
		case key.Rune() == 'r':
			if err := eng.Reset(); err != nil {
				return err
			}

		default:
			continue
		}

		Render(screen, eng.Game())

		if eng.Won() {
			drawText(screen, 0, 0, "You won! Press any key to exit.",
				tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
			screen.Show()
			screen.PollEvent()
			return nil
		}
	}
}
