package timeline

import "github.com/foldrun/timefold/internal/ir"

// Entry is a single Call Log record (spec §3 CallLogEntry): the
// invocation's name and arguments, the Journal length observed
// immediately before it executed, and its Timestamp.
type Entry struct {
	Name                string
	Args                ir.Value
	JournalLengthBefore int
	Timestamp           Timestamp
}
