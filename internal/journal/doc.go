// Package journal implements the undo journal described in spec §3/§4.2:
// an append-only sequence of UndoRecords, truncatable from either end.
//
// The only mutations a Journal permits are append on the tail (during
// guest execution), truncation of the tail (by the rewinder, rolling
// back to a prior length), and truncation of the head (by history
// compaction). Every other operation is a read.
package journal
