// Package rewind implements rewind_to (spec §4.4): popping journal
// records in reverse and applying their inverses to a vmhost.Guest,
// including the MemoryGrow suspension point where the VM is
// reinstantiated wholesale because wasm linear memory cannot shrink.
package rewind
