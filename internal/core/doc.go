// Package core implements the Timeline Scheduler and Recurring-Tick
// Driver (spec §4.5, §4.6): CallAt's rewind/insert/replay sweep,
// CallAndRevert's transient snapshot/rewind, AdvanceTime's synthesized
// ticks, Reset's join-point semantics, and ForgetBefore's history
// compaction. It wires internal/journal, internal/timeline,
// internal/vmhost, and internal/rewind into the single owning
// Engine described by spec §5.
package core
