package scenario

import (
	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/timeline"
)

// OperationKind identifies which of the four engine operations a
// compiled Operation carries.
type OperationKind string

const (
	OpCallAt       OperationKind = "call_at"
	OpAdvanceTime  OperationKind = "advance_time"
	OpReset        OperationKind = "reset"
	OpForgetBefore OperationKind = "forget_before"
)

// CallAtOp mirrors core.Engine.CallAt's arguments.
type CallAtOp struct {
	Timestamp timeline.Timestamp
	Name      string
	Args      ir.Array
}

// AdvanceTimeOp mirrors core.Engine.AdvanceTime's arguments.
type AdvanceTimeOp struct {
	Delta int64
}

// ResetOp mirrors core.Engine.Reset's arguments. MemoryImagePath is
// resolved relative to the scenario file's own directory; the loader
// does not read the file itself since the image may be large and the
// embedder may want to stream or cache it — MemoryImagePath is left for the
// caller to load when the operation actually executes.
type ResetOp struct {
	MemoryImagePath string
	CurrentTime     int64
	NextFireTime    int64
}

// ForgetBeforeOp mirrors core.Engine.ForgetBefore's arguments.
type ForgetBeforeOp struct {
	Timestamp timeline.Timestamp
}

// Operation is a tagged union over the four operation kinds a scenario
// script can name, in file order.
type Operation struct {
	Kind         OperationKind
	CallAt       *CallAtOp
	AdvanceTime  *AdvanceTimeOp
	Reset        *ResetOp
	ForgetBefore *ForgetBeforeOp
}
