// Command validate provides a small CLI that validates the level files in a
// directory. It checks:
//   - the level parses (version header, token layouts, indentation, bounds)
//   - every level has at least one player and at least one goal
//   - reference targets and inf-enter links resolve
//   - paired .solution files actually solve their level, and not earlier
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/parabox-puzzle-game/game/engine"
)

// ValidationResult captures the outcome of validating a single level file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateLevel loads and validates a single level file, including its
// solution file when one exists.
func validateLevel(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}
	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fail("Failed to read file: %v", err)
		return result
	}

	game, err := engine.ParseLevel(string(data))
	if err != nil {
		fail("Parse error: %v", err)
		return result
	}

	if len(game.PlayerIDs()) == 0 {
		fail("Level has no players")
	}
	if len(game.Goals()) == 0 {
		fail("Level has no goals; it can never be won")
	}
	if game.Won() {
		fail("Level starts in a won state")
	}

	solutionPath := strings.TrimSuffix(path, ".txt") + ".solution"
	if solution, err := os.ReadFile(solutionPath); err == nil {
		checkSolution(string(data), string(solution), fail)
	}

	return result
}

// checkSolution replays a solution against a fresh copy of the level.
func checkSolution(levelText, solution string, fail func(string, ...interface{})) {
	eng, err := engine.NewEngine(levelText)
	if err != nil {
		fail("Failed to reload level for solution check: %v", err)
		return
	}

	steps, err := eng.Replay(solution)
	if err != nil {
		fail("Solution failed after %d presses: %v", steps, err)
		return
	}
	if !eng.Won() {
		fail("Solution does not solve the level (%d presses applied)", steps)
	}
}

// validateDir validates every .txt level under the directory.
func validateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var results []ValidationResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		results = append(results, validateLevel(filepath.Join(dir, entry.Name())))
	}
	return results, nil
}

func main() {
	dir := "levels"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	results, err := validateDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failures := 0
	for _, result := range results {
		if result.Valid {
			fmt.Printf("OK   %s\n", result.File)
			continue
		}
		failures++
		fmt.Printf("FAIL %s\n", result.File)
		for _, msg := range result.Errors {
			fmt.Printf("     - %s\n", msg)
		}
	}

	fmt.Printf("\n%d levels checked, %d failed\n", len(results), failures)
	if failures > 0 {
		os.Exit(1)
	}
}
