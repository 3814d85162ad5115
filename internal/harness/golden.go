package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/foldrun/timefold/internal/core"
	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/scenario"
)

// snapshotToValue converts a Result into an ir.Value so it can go
// through the engine's own canonical JSON encoder — golden files
// compare byte-for-byte, so the encoding needs the same determinism
// guarantees (sorted object keys, fixed float formatting) the rest of
// the engine relies on.
func snapshotToValue(name string, r *Result) ir.Value {
	trace := make(ir.Array, len(r.Trace))
	for i, e := range r.Trace {
		trace[i] = ir.NewObject(
			ir.P("name", ir.String(e.Name)),
			ir.P("args", ir.String(e.Args)),
			ir.P("time", ir.Int(e.Time)),
			ir.P("offset", ir.Int(e.Offset)),
			ir.P("player_id", ir.Int(e.PlayerID)),
			ir.P("journal_at", ir.Int(int64(e.JournalAt))),
		)
	}

	globals := make(ir.Array, len(r.Globals))
	for i, g := range r.Globals {
		globals[i] = ir.NewObject(
			ir.P("index", ir.Int(int64(g.Index))),
			ir.P("type", ir.String(g.Type)),
			ir.P("bits", ir.Int(int64(g.Bits))),
		)
	}

	return ir.NewObject(
		ir.P("scenario", ir.String(name)),
		ir.P("trace", trace),
		ir.P("globals", globals),
		ir.P("memory", ir.Bytes(r.Memory)),
		ir.P("journal_len", ir.Int(int64(r.JournalLen))),
	)
}

// RunGolden runs ops against a fresh engine and compares the resulting
// Result against testdata/golden/<name>.golden, failing the test and
// (when run with `go test -update`, via goldie's own flag) rewriting
// the fixture on mismatch.
func RunGolden(t *testing.T, ctx context.Context, name string, cfg core.Config, ops []scenario.Operation) {
	t.Helper()

	result, err := Run(ctx, cfg, ops)
	if err != nil {
		t.Fatalf("running scenario %q: %v", name, err)
	}

	snapshotJSON, err := ir.MarshalCanonical(snapshotToValue(name, result))
	if err != nil {
		t.Fatalf("marshaling scenario %q snapshot: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshotJSON)
}
