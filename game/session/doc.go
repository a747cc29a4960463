// Package session handles game session lifecycle: creation, lookup,
// expiration-free in-memory storage and optional JSON file persistence.
// Persisted sessions store only the level and its press history; the
// deterministic engine rebuilds the world by replaying the presses.
package session
