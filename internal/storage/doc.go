// Package storage persists saved course lines and run reports as JSON files.
//
// Files live under a data directory (default ~/.local/share/course-adder).
// Saved lines let a list be pasted once and replayed on every registration
// attempt; the last report records which lines were added.
package storage
