// Package tui renders the game in a terminal and drives the interactive
// input loop: every non-filled block is drawn as its own grid with the block
// number above it, colored by the block's HSV color, and WASD or arrow keys
// press directions.
package tui
