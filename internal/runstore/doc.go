// Package runstore persists per-tile acquisition results in SQLite so a
// batch can be inspected afterwards and interrupted runs can be told apart
// from never-attempted ones. One row per tile per batch invocation.
package runstore
