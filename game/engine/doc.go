// Package engine implements the core movement simulator for a recursive
// block-pushing puzzle: a turn-based game on a nested grid where cells live
// inside blocks, blocks can live inside other blocks (including themselves),
// and one player press is resolved into a globally consistent movement of an
// arbitrary number of cells across block boundaries.
//
// The package contains the world model (cells, goals, block lookup), the
// exact-rational transfer geometry used when movement crosses a block edge,
// the level text-format loader, and the recursive backtracking move resolver
// with cycle detection, infinite-recursion handling and deferred commit.
package engine
