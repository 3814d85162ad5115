package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/journal"
	"github.com/foldrun/timefold/internal/timeline"
	"github.com/foldrun/timefold/internal/wasmtest"
)

func setupEngine(t *testing.T, cfg Config) (context.Context, *Engine) {
	t.Helper()
	ctx := context.Background()
	if cfg.Image == nil {
		cfg.Image = wasmtest.ScenarioModule()
	}
	e, err := Setup(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })
	return ctx, e
}

func global0(t *testing.T, e *Engine) int64 {
	t.Helper()
	v, err := e.Global(0)
	require.NoError(t, err)
	require.Equal(t, journal.I32, v.Type)
	return int64(int32(uint32(v.Bits)))
}

// Scenario 1: single call.
func TestEngine_SingleCall(t *testing.T) {
	ctx, e := setupEngine(t, Config{})

	err := e.CallAt(ctx, timeline.Timestamp{Time: 1, PlayerID: 0, Offset: 0}, "inc", ir.Array{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), global0(t, e))
}

// Scenario 2: late insert.
func TestEngine_LateInsert(t *testing.T) {
	ctx, e := setupEngine(t, Config{})

	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 3, PlayerID: 0, Offset: 0}, "inc", ir.Array{}))
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 3, PlayerID: 0, Offset: 1}, "inc", ir.Array{}))
	assert.Equal(t, int64(2), global0(t, e))

	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 2, PlayerID: 0, Offset: 0}, "inc", ir.Array{}))
	assert.Equal(t, int64(3), global0(t, e))

	log := e.CallLog()
	require.Len(t, log, 3)
	assert.Equal(t, timeline.Timestamp{Time: 2, PlayerID: 0, Offset: 0}, log[0].Timestamp)
	assert.Equal(t, timeline.Timestamp{Time: 3, PlayerID: 0, Offset: 0}, log[1].Timestamp)
	assert.Equal(t, timeline.Timestamp{Time: 3, PlayerID: 0, Offset: 1}, log[2].Timestamp)
}

// Scenario 4: recurring tick.
func TestEngine_RecurringTick(t *testing.T) {
	ctx, e := setupEngine(t, Config{Interval: 10, NextFireTime: 0, TickFunctionName: "tick"})

	require.NoError(t, e.AdvanceTime(ctx, 35))

	assert.Equal(t, int64(3), global0(t, e))
	log := e.CallLog()
	require.Len(t, log, 3)
	assert.Equal(t, int64(30), log[2].Timestamp.Time)
}

func TestEngine_AdvanceTime_NoIntervalIsNoOp(t *testing.T) {
	ctx, e := setupEngine(t, Config{})
	require.NoError(t, e.AdvanceTime(ctx, 100))
	assert.Empty(t, e.CallLog())
}

// Scenario 5: transient call leaves no trace.
func TestEngine_CallAndRevert_LeavesNoTrace(t *testing.T) {
	ctx, e := setupEngine(t, Config{})
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 1}, "inc", ir.Array{}))
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 2}, "inc", ir.Array{}))
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 3}, "inc", ir.Array{}))
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 4}, "inc", ir.Array{}))
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 5}, "inc", ir.Array{}))
	require.Equal(t, int64(5), global0(t, e))

	beforeJournal := e.JournalLen()
	beforeLog := len(e.CallLog())

	_, err := e.CallAndRevert(ctx, "inc", ir.Array{})
	require.NoError(t, err)

	assert.Equal(t, int64(5), global0(t, e))
	assert.Equal(t, beforeJournal, e.JournalLen())
	assert.Len(t, e.CallLog(), beforeLog)
}

// Scenario 6: compaction.
func TestEngine_ForgetBefore(t *testing.T) {
	ctx, e := setupEngine(t, Config{})
	for _, ts := range []int64{1, 2, 3, 4, 5} {
		require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: ts}, "inc", ir.Array{}))
	}

	require.NoError(t, e.ForgetBefore(timeline.Timestamp{Time: 3}))

	log := e.CallLog()
	require.Len(t, log, 3)
	assert.Equal(t, int64(3), log[0].Timestamp.Time)
	assert.Equal(t, 0, log[0].JournalLengthBefore)
}

func TestEngine_MissingExport(t *testing.T) {
	ctx, e := setupEngine(t, Config{})
	err := e.CallAt(ctx, timeline.Timestamp{Time: 1}, "does_not_exist", ir.Array{})
	require.Error(t, err)
	assert.True(t, IsMissingExport(err))
}

func TestEngine_CallAndRevert_MissingExport(t *testing.T) {
	ctx, e := setupEngine(t, Config{})
	_, err := e.CallAndRevert(ctx, "does_not_exist", ir.Array{})
	require.Error(t, err)
	assert.True(t, IsMissingExport(err))
}

func TestEngine_OutOfOrderInsertRejected(t *testing.T) {
	ctx, e := setupEngine(t, Config{PeerOrderMode: PeerOrderReject})
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 5}, "inc", ir.Array{}))

	err := e.CallAt(ctx, timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 2}, "inc", ir.Array{})
	require.Error(t, err)
	assert.True(t, IsOutOfOrder(err))
}

func TestEngine_OutOfOrderInsertIgnoredByDefault(t *testing.T) {
	ctx, e := setupEngine(t, Config{})
	require.NoError(t, e.CallAt(ctx, timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 5}, "inc", ir.Array{}))
	err := e.CallAt(ctx, timeline.Timestamp{Time: 1, PlayerID: 1, Offset: 2}, "inc", ir.Array{})
	assert.NoError(t, err)
}

func TestEngine_EnqueueAndRun(t *testing.T) {
	ctx, e := setupEngine(t, Config{})

	require.True(t, e.Enqueue(timeline.Timestamp{Time: 1}, "inc", ir.Array{}))
	require.True(t, e.Enqueue(timeline.Timestamp{Time: 2}, "inc", ir.Array{}))

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	// Stop closes the queue; Run drains whatever was already enqueued
	// before observing the close and returns nil, never touching engine
	// state after this goroutine has joined.
	e.Stop()
	require.NoError(t, <-done)

	assert.Equal(t, int64(2), global0(t, e))
}
