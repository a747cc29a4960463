package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/parabox-puzzle-game/game/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateLevelOK(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "good.txt", config.DefaultLevel)
	writeFile(t, dir, "good.solution", "R")

	result := validateLevel(path)
	if !result.Valid {
		t.Errorf("expected valid, got errors: %v", result.Errors)
	}
}

func TestValidateLevelParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.txt", "version 9\n#\n")

	result := validateLevel(path)
	if result.Valid || len(result.Errors) == 0 {
		t.Errorf("expected a parse failure, got %+v", result)
	}
}

func TestValidateLevelNoPlayers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt",
		"version 4\n#\nBlock 0 0 0 3 3 0 0 1 1 0 0 0 0 0 0 0\n\tFloor 1 1 Button\n")

	result := validateLevel(path)
	if result.Valid {
		t.Errorf("level without players should fail")
	}
}

func TestValidateLevelWrongSolution(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "unsolved.txt", config.DefaultLevel)
	writeFile(t, dir, "unsolved.solution", "L")

	result := validateLevel(path)
	if result.Valid {
		t.Errorf("a solution that does not win should fail validation")
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", config.DefaultLevel)
	writeFile(t, dir, "b.txt", "nonsense")
	writeFile(t, dir, "ignored.md", "not a level")

	results, err := validateDir(dir)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	if valid != 1 {
		t.Errorf("expected exactly one valid level, got %d", valid)
	}
}
