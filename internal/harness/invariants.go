package harness

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/core"
	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/scenario"
	"github.com/foldrun/timefold/internal/timeline"
)

// Equal reports whether two Results describe the same VM state: same
// globals, same memory, same trace. Determinism and Order independence
// both reduce to this comparison.
func (r *Result) Equal(other *Result) bool {
	if r == nil || other == nil {
		return r == other
	}
	if !bytes.Equal(r.Memory, other.Memory) {
		return false
	}
	if len(r.Globals) != len(other.Globals) {
		return false
	}
	for i := range r.Globals {
		if r.Globals[i] != other.Globals[i] {
			return false
		}
	}
	if len(r.Trace) != len(other.Trace) {
		return false
	}
	for i := range r.Trace {
		if r.Trace[i] != other.Trace[i] {
			return false
		}
	}
	return true
}

// CheckDeterminism runs ops against two independently Setup engines
// sharing cfg and asserts they converge on byte-identical Results
// (spec §8, Determinism): given the same guest image and the same
// sequence of operations, the engine never depends on wall-clock time,
// map iteration order, or any other source of nondeterminism.
func CheckDeterminism(t *testing.T, ctx context.Context, cfg core.Config, ops []scenario.Operation) {
	t.Helper()

	a, err := Run(ctx, cfg, ops)
	require.NoError(t, err, "first run")
	b, err := Run(ctx, cfg, ops)
	require.NoError(t, err, "second run")

	assert.True(t, a.Equal(b), "two runs of the same operations diverged: %+v vs %+v", a, b)
}

// CheckOrderIndependence runs the same set of CallAt operations under
// every given submission order and asserts every order converges to
// the same final state (spec §8, Order independence). Each op's own
// Timestamp — not its position in the slice — determines where it
// lands once admitted, so shuffling submission order must not change
// the outcome.
func CheckOrderIndependence(t *testing.T, ctx context.Context, cfg core.Config, orderings [][]scenario.Operation) {
	t.Helper()
	require.NotEmpty(t, orderings, "need at least one ordering to check")

	var reference *Result
	for i, ops := range orderings {
		result, err := Run(ctx, cfg, ops)
		require.NoErrorf(t, err, "ordering %d", i)
		if reference == nil {
			reference = result
			continue
		}
		assert.Truef(t, reference.Equal(result),
			"ordering %d produced a different final state than ordering 0", i)
	}
}

// CheckJournalMonotonicity runs ops one at a time and asserts the
// Journal never shrinks except immediately after a ForgetBefore or
// Reset, which are the only operations spec §4.8/§4.4 permit to
// discard undo history.
func CheckJournalMonotonicity(t *testing.T, ctx context.Context, cfg core.Config, ops []scenario.Operation) {
	t.Helper()

	e, err := core.Setup(ctx, cfg)
	require.NoError(t, err)
	defer e.Close(ctx)

	prev := e.JournalLen()
	for i, op := range ops {
		require.NoError(t, Apply(ctx, e, []scenario.Operation{op}), "operation %d", i)
		cur := e.JournalLen()
		if op.Kind == scenario.OpForgetBefore || op.Kind == scenario.OpReset {
			prev = cur
			continue
		}
		assert.GreaterOrEqualf(t, cur, prev,
			"operation %d (%s) shrank the journal from %d to %d", i, op.Kind, prev, cur)
		prev = cur
	}
}

// CheckTransientPurity asserts that CallAndRevert leaves the engine's
// observable state — globals, memory, Call Log, Journal length —
// exactly as it found it (spec §8, Transient purity): a probe call
// must be indistinguishable from having never happened.
func CheckTransientPurity(t *testing.T, ctx context.Context, cfg core.Config, name string, args ir.Value) {
	t.Helper()

	e, err := core.Setup(ctx, cfg)
	require.NoError(t, err)
	defer e.Close(ctx)

	before, err := Snapshot(e)
	require.NoError(t, err)

	_, err = e.CallAndRevert(ctx, name, args)
	require.NoError(t, err)

	after, err := Snapshot(e)
	require.NoError(t, err)

	assert.True(t, before.Equal(after), "CallAndRevert left observable state changed")
}

// CheckRollbackIdentity asserts that rewinding to before a CallAt and
// re-running an equivalent call reproduces the same state as never
// having diverged (spec §8, Rollback identity): a late-arriving peer
// call inserted behind already-applied calls must, after the engine
// rewinds and replays, land the VM in the same state a receiver who
// saw every call in Timestamp order would have reached.
func CheckRollbackIdentity(t *testing.T, ctx context.Context, cfg core.Config, inOrder, outOfOrder []scenario.Operation) {
	t.Helper()

	reference, err := Run(ctx, cfg, inOrder)
	require.NoError(t, err, "in-order run")

	replayed, err := Run(ctx, cfg, outOfOrder)
	require.NoError(t, err, "out-of-order run")

	assert.True(t, reference.Equal(replayed),
		"replaying a late-arriving call did not converge to the in-order state")
}

// CheckCompactionSafety asserts that ForgetBefore(cutoff) discards
// exactly the Call Log entries strictly before cutoff and that the
// engine remains usable afterward: further calls after the cutoff
// still execute and extend a coherent trace (spec §8, Compaction
// safety).
func CheckCompactionSafety(t *testing.T, ctx context.Context, cfg core.Config, before []scenario.Operation, cutoff timeline.Timestamp, after []scenario.Operation) {
	t.Helper()

	e, err := core.Setup(ctx, cfg)
	require.NoError(t, err)
	defer e.Close(ctx)

	require.NoError(t, Apply(ctx, e, before))
	require.NoError(t, e.ForgetBefore(cutoff))

	for _, entry := range e.CallLog() {
		assert.False(t, entry.Timestamp.Less(cutoff),
			"ForgetBefore(%v) left an entry at %v in the Call Log", cutoff, entry.Timestamp)
	}

	lenBeforeAfter := len(e.CallLog())
	require.NoError(t, Apply(ctx, e, after))
	assert.Greater(t, len(e.CallLog()), lenBeforeAfter,
		"operations after compaction did not extend the Call Log")
}
