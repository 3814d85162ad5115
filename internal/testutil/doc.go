// Package testutil hands out deterministic timeline.Timestamp values
// for tests that need many of them without hand-writing each (time,
// offset, player_id) triple. It generalizes the teacher's
// DeterministicClock/FixedFlowGenerator idiom — a small, stateful,
// reset-able generator that produces the same sequence given the same
// starting state — from sequence numbers and flow tokens to this
// engine's own ordering key.
package testutil
