package scenario

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/timeline"
)

// CompileOperation parses a single element of a scenario's top-level
// "operations" list into an Operation. Exactly one of call_at,
// advance_time, reset, or forget_before must be present.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`operations: [{call_at: {time: 1, name: "inc"}}]`)
//	op, err := CompileOperation(v.LookupPath(cue.ParsePath("operations[0]")))
func CompileOperation(v cue.Value) (*Operation, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	branches := map[OperationKind]cue.Value{
		OpCallAt:       v.LookupPath(cue.ParsePath("call_at")),
		OpAdvanceTime:  v.LookupPath(cue.ParsePath("advance_time")),
		OpReset:        v.LookupPath(cue.ParsePath("reset")),
		OpForgetBefore: v.LookupPath(cue.ParsePath("forget_before")),
	}

	var found OperationKind
	count := 0
	for kind, branch := range branches {
		if branch.Exists() {
			found = kind
			count++
		}
	}
	if count != 1 {
		return nil, &CompileError{
			Field:   "operation",
			Message: fmt.Sprintf("expected exactly one of call_at, advance_time, reset, forget_before, found %d", count),
			Pos:     v.Pos(),
		}
	}

	op := &Operation{Kind: found}
	branch := branches[found]

	switch found {
	case OpCallAt:
		callAt, err := compileCallAt(branch)
		if err != nil {
			return nil, err
		}
		op.CallAt = callAt
	case OpAdvanceTime:
		advance, err := compileAdvanceTime(branch)
		if err != nil {
			return nil, err
		}
		op.AdvanceTime = advance
	case OpReset:
		reset, err := compileReset(branch)
		if err != nil {
			return nil, err
		}
		op.Reset = reset
	case OpForgetBefore:
		forget, err := compileForgetBefore(branch)
		if err != nil {
			return nil, err
		}
		op.ForgetBefore = forget
	}

	return op, nil
}

func compileCallAt(v cue.Value) (*CallAtOp, error) {
	ts, err := parseTimestamp(v)
	if err != nil {
		return nil, err
	}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{Field: "call_at.name", Message: "name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	args, err := parseArgs(v)
	if err != nil {
		return nil, err
	}

	return &CallAtOp{Timestamp: ts, Name: name, Args: args}, nil
}

func compileAdvanceTime(v cue.Value) (*AdvanceTimeOp, error) {
	deltaVal := v.LookupPath(cue.ParsePath("delta"))
	if !deltaVal.Exists() {
		return nil, &CompileError{Field: "advance_time.delta", Message: "delta is required", Pos: v.Pos()}
	}
	delta, err := deltaVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if delta < 0 {
		return nil, &CompileError{Field: "advance_time.delta", Message: "delta must be non-negative", Pos: deltaVal.Pos()}
	}
	return &AdvanceTimeOp{Delta: delta}, nil
}

func compileReset(v cue.Value) (*ResetOp, error) {
	pathVal := v.LookupPath(cue.ParsePath("memory_image"))
	if !pathVal.Exists() {
		return nil, &CompileError{Field: "reset.memory_image", Message: "memory_image path is required", Pos: v.Pos()}
	}
	path, err := pathVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	currentTimeVal := v.LookupPath(cue.ParsePath("current_time"))
	if !currentTimeVal.Exists() {
		return nil, &CompileError{Field: "reset.current_time", Message: "current_time is required", Pos: v.Pos()}
	}
	currentTime, err := currentTimeVal.Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var nextFireTime int64
	nextFireVal := v.LookupPath(cue.ParsePath("next_fire_time"))
	if nextFireVal.Exists() {
		nextFireTime, err = nextFireVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	return &ResetOp{MemoryImagePath: path, CurrentTime: currentTime, NextFireTime: nextFireTime}, nil
}

func compileForgetBefore(v cue.Value) (*ForgetBeforeOp, error) {
	ts, err := parseTimestamp(v)
	if err != nil {
		return nil, err
	}
	return &ForgetBeforeOp{Timestamp: ts}, nil
}

// parseTimestamp reads time (required), offset and player_id (both
// optional, defaulting to 0) from v.
func parseTimestamp(v cue.Value) (timeline.Timestamp, error) {
	timeVal := v.LookupPath(cue.ParsePath("time"))
	if !timeVal.Exists() {
		return timeline.Timestamp{}, &CompileError{Field: "time", Message: "time is required", Pos: v.Pos()}
	}
	t, err := timeVal.Int64()
	if err != nil {
		return timeline.Timestamp{}, formatCUEError(err)
	}

	var offset, playerID int64
	if offsetVal := v.LookupPath(cue.ParsePath("offset")); offsetVal.Exists() {
		offset, err = offsetVal.Int64()
		if err != nil {
			return timeline.Timestamp{}, formatCUEError(err)
		}
	}
	if playerVal := v.LookupPath(cue.ParsePath("player_id")); playerVal.Exists() {
		playerID, err = playerVal.Int64()
		if err != nil {
			return timeline.Timestamp{}, formatCUEError(err)
		}
	}

	return timeline.Timestamp{Time: t, Offset: offset, PlayerID: playerID}, nil
}

// parseArgs reads the optional "args" list, defaulting to an empty
// array when absent.
func parseArgs(v cue.Value) (ir.Array, error) {
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return ir.Array{}, nil
	}

	decoded, err := decodeValue(argsVal)
	if err != nil {
		return nil, err
	}
	arr, ok := decoded.(ir.Array)
	if !ok {
		return nil, &CompileError{Field: "args", Message: "args must be a list", Pos: argsVal.Pos()}
	}
	return arr, nil
}
