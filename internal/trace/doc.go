// Package trace provides a durable, queryable record of a core.Engine's
// call log and periodic memory-image hashes, for embedders that want to
// diff two runs after the fact or feed a golden test a recorded
// scenario. It plays the role internal/store plays for the teacher's
// invocation/completion log — a thin SQLite layer opened with the same
// pragmas, migrated the same way, embedding its schema with go:embed —
// generalized from event-sourcing an application's actions to
// event-sourcing a rollback engine's replay history.
//
// The engine itself never depends on this package: spec §5's
// single-writer model and §7's error taxonomy are unaffected by whether
// a trace store is attached. Recording is the embedder's choice, made
// by calling Write* after each core.Engine call succeeds.
package trace
