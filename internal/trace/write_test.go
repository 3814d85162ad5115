package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/timeline"
)

func openTestStore(t *testing.T) (context.Context, *Store) {
	t.Helper()
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return ctx, s
}

func sampleEntry(time int64) timeline.Entry {
	return timeline.Entry{
		Name:                "inc",
		Args:                ir.Array{ir.Int(1)},
		JournalLengthBefore: 0,
		Timestamp:           timeline.Timestamp{Time: time, Offset: 0, PlayerID: 1},
	}
}

func TestWriteCall_InsertsAndReturnsID(t *testing.T) {
	ctx, s := openTestStore(t)

	id, err := s.WriteCall(ctx, sampleEntry(1))
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestWriteCall_IdempotentOnSameTimestamp(t *testing.T) {
	ctx, s := openTestStore(t)

	first, err := s.WriteCall(ctx, sampleEntry(1))
	require.NoError(t, err)

	// A conflicting INSERT OR DO NOTHING leaves last_insert_rowid()
	// pointing at the previous successful insert, not at nothing — the
	// row count, not the returned ID, is what proves idempotency here.
	_, err = s.WriteCall(ctx, sampleEntry(1))
	require.NoError(t, err)

	records, err := s.ReadCallsSince(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, first, records[0].ID)
}

func TestWriteCall_DistinctTimestampsProduceDistinctRows(t *testing.T) {
	ctx, s := openTestStore(t)

	require.NoError(t, errIgnoreID(s.WriteCall(ctx, sampleEntry(1))))
	require.NoError(t, errIgnoreID(s.WriteCall(ctx, sampleEntry(2))))

	records, err := s.ReadCallsSince(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func errIgnoreID(_ int64, err error) error { return err }

func TestWriteSnapshot_WithAndWithoutCallID(t *testing.T) {
	ctx, s := openTestStore(t)

	callID, err := s.WriteCall(ctx, sampleEntry(1))
	require.NoError(t, err)

	attributedID, err := s.WriteSnapshot(ctx, callID, 1, "hash-a")
	require.NoError(t, err)
	assert.NotZero(t, attributedID)

	standaloneID, err := s.WriteSnapshot(ctx, 0, 0, "hash-b")
	require.NoError(t, err)
	assert.NotZero(t, standaloneID)

	snapshots, err := s.ReadSnapshotsSince(ctx, 0)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.True(t, snapshots[0].CallID.Valid)
	assert.False(t, snapshots[1].CallID.Valid)
}
