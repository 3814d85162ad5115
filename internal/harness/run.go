package harness

import (
	"context"
	"fmt"

	"github.com/foldrun/timefold/internal/core"
	"github.com/foldrun/timefold/internal/scenario"
)

// Result is a snapshot of an Engine's observable state after running a
// sequence of operations: the full Call Log plus enough VM state to
// compare two runs for equality.
type Result struct {
	Trace      []TraceEntry
	Globals    []GlobalValue
	Memory     []byte
	JournalLen int
}

// TraceEntry is the harness's trace shape, decoupled from
// timeline.Entry so golden files don't break if that type grows
// fields unrelated to what a scenario cares about.
type TraceEntry struct {
	Name      string
	Args      string // canonical JSON, from ir.MarshalCanonical
	Time      int64
	Offset    int64
	PlayerID  int64
	JournalAt int
}

// GlobalValue is one guest global's value at the end of a run.
type GlobalValue struct {
	Index uint32
	Type  string
	Bits  uint64
}

// Run executes ops against a freshly Setup Engine and returns the
// resulting Result. The Engine is closed before Run returns.
func Run(ctx context.Context, cfg core.Config, ops []scenario.Operation) (*Result, error) {
	e, err := core.Setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("harness: setup: %w", err)
	}
	defer e.Close(ctx)

	if err := Apply(ctx, e, ops); err != nil {
		return nil, err
	}
	return Snapshot(e)
}

// Apply executes each operation against e in order, dispatching on its
// Kind. It stops and returns the first error encountered.
func Apply(ctx context.Context, e *core.Engine, ops []scenario.Operation) error {
	for i, op := range ops {
		var err error
		switch op.Kind {
		case scenario.OpCallAt:
			err = e.CallAt(ctx, op.CallAt.Timestamp, op.CallAt.Name, op.CallAt.Args)
		case scenario.OpAdvanceTime:
			err = e.AdvanceTime(ctx, op.AdvanceTime.Delta)
		case scenario.OpReset:
			image, readErr := readMemoryImage(op.Reset.MemoryImagePath)
			if readErr != nil {
				return fmt.Errorf("harness: operation %d (reset): %w", i, readErr)
			}
			err = e.Reset(ctx, image, op.Reset.CurrentTime, op.Reset.NextFireTime)
		case scenario.OpForgetBefore:
			err = e.ForgetBefore(op.ForgetBefore.Timestamp)
		default:
			return fmt.Errorf("harness: operation %d: unknown kind %q", i, op.Kind)
		}
		if err != nil {
			return fmt.Errorf("harness: operation %d (%s): %w", i, op.Kind, err)
		}
	}
	return nil
}

// Snapshot captures e's current Call Log, globals, and memory into a
// Result, without mutating e.
func Snapshot(e *core.Engine) (*Result, error) {
	entries := e.CallLog()
	trace := make([]TraceEntry, len(entries))
	for i, entry := range entries {
		argsJSON, err := marshalArgs(entry.Args)
		if err != nil {
			return nil, fmt.Errorf("harness: marshaling trace entry %d args: %w", i, err)
		}
		trace[i] = TraceEntry{
			Name:      entry.Name,
			Args:      argsJSON,
			Time:      entry.Timestamp.Time,
			Offset:    entry.Timestamp.Offset,
			PlayerID:  entry.Timestamp.PlayerID,
			JournalAt: entry.JournalLengthBefore,
		}
	}

	count := e.GlobalCount()
	globals := make([]GlobalValue, count)
	for i := uint32(0); i < count; i++ {
		g, err := e.Global(i)
		if err != nil {
			return nil, fmt.Errorf("harness: reading global %d: %w", i, err)
		}
		globals[i] = GlobalValue{Index: i, Type: g.Type.String(), Bits: g.Bits}
	}

	return &Result{
		Trace:      trace,
		Globals:    globals,
		Memory:     e.MemorySnapshot(),
		JournalLen: e.JournalLen(),
	}, nil
}
