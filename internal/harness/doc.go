// Package harness runs a scenario's operations against a real Engine
// and exposes the resulting state and Call Log for two purposes:
// golden-file regression tests, and property checks over the six
// invariants named by spec §8 (Rollback identity, Order independence,
// Journal monotonicity, Transient purity, Compaction safety,
// Determinism).
//
// Unlike a scenario runner that manufactures its own results, this
// harness drives the actual core.Engine: every trace and state
// snapshot it produces comes from real CallAt/AdvanceTime/Reset/
// ForgetBefore execution against a wazero-instantiated guest, so a
// passing property check demonstrates the engine's real behavior
// rather than the harness's expectations of it.
package harness
