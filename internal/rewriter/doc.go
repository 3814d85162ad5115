// Package rewriter implements the Binary Rewriter's client-side calling
// convention (spec §6): reserve_space, prepare_wasm, get_output_ptr,
// get_output_len over a buffer shared with a wazero-instantiated
// rewriter module. Actually locating and instrumenting mutation sites
// inside the raw guest binary is the rewriter module's job, not this
// package's — spec §4.1 places that parsing work out of scope and
// treats it as an external collaborator reached through this ABI.
//
// This package also exposes the gzip and 128-bit hashing helper
// services spec §6 mentions "because they share the reserve-space ABI":
// GzipEncode/GzipDecode are implemented directly against the standard
// library rather than round-tripped through the rewriter module, and
// Hash128 delegates to internal/ir's own content-addressed hash so the
// engine and its embedders never disagree about what a given byte slice
// hashes to. See DESIGN.md for why these two are hosted in-process
// instead of dispatched through Client.
package rewriter
