// Package scenario compiles CUE-authored operation scripts into the
// sequence of engine calls core.Engine expects: call_at, advance_time,
// reset, and forget_before. It is a thin, hand-written CUE-to-Go
// translation layer, not a schema-driven code generator: one Compile*
// function per operation kind, a shared CompileError carrying a CUE
// source position, and a Load entry point that compiles a directory of
// .cue files.
package scenario
