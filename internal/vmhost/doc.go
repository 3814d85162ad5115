// Package vmhost wraps a wazero-instantiated guest module: the wasm
// substrate spec §1 treats as an external collaborator but §6 requires
// a concrete host-import ABI for (on_store/on_grow/on_global_set,
// external_log/external_error).
//
// A Guest owns exactly one live api.Module at a time. Rewind's
// MemoryGrow undo (spec §4.4) replaces that Module wholesale via
// Reinstantiate rather than mutating it in place, because wazero's
// linear memory has no shrink operation — the same limitation spec §4.4
// calls out in the source system.
package vmhost
