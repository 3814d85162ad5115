// Package ir defines the canonical value representation shared by guest
// invocation arguments and diagnostic traces, plus
// the content-addressed hashing built on top of it.
//
// Values are represented as a small tagged union (Value) rather than
// bare `any` so canonical JSON encoding — used for hashing, not for the
// engine's hot path — and wasm-typed scalars (i32/i64/f32/f64, raw byte
// sequences) are both expressible without lossy round-tripping.
//
// This package imports nothing internal so every other package can
// depend on it without risking an import cycle.
package ir
