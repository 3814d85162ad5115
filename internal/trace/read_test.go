package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/ir"
)

func TestReadCallsSince_OrdersByTimeThenPlayerThenOffset(t *testing.T) {
	ctx, s := openTestStore(t)

	entries := []struct {
		time, offset, player int64
	}{
		{2, 0, 5},
		{1, 1, 0},
		{1, 0, 0},
		{2, 0, 1},
	}
	for _, e := range entries {
		entry := sampleEntry(e.time)
		entry.Timestamp.Offset = e.offset
		entry.Timestamp.PlayerID = e.player
		_, err := s.WriteCall(ctx, entry)
		require.NoError(t, err)
	}

	records, err := s.ReadCallsSince(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, int64(1), records[0].Time)
	assert.Equal(t, int64(0), records[0].PlayerID)
	assert.Equal(t, int64(1), records[1].Time)
	assert.Equal(t, int64(0), records[1].PlayerID)
	assert.Equal(t, int64(2), records[2].Time)
	assert.Equal(t, int64(1), records[2].PlayerID)
	assert.Equal(t, int64(2), records[3].Time)
	assert.Equal(t, int64(5), records[3].PlayerID)
}

func TestReadCallsSince_FiltersByTime(t *testing.T) {
	ctx, s := openTestStore(t)

	_, err := s.WriteCall(ctx, sampleEntry(1))
	require.NoError(t, err)
	_, err = s.WriteCall(ctx, sampleEntry(5))
	require.NoError(t, err)

	records, err := s.ReadCallsSince(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].Time)
}

func TestReadCallByTraceHash_FindsAndMisses(t *testing.T) {
	ctx, s := openTestStore(t)

	entry := sampleEntry(1)
	_, err := s.WriteCall(ctx, entry)
	require.NoError(t, err)

	hash, err := ir.CallTraceHash(entry.Name, entry.Args, entry.Timestamp.Time, entry.Timestamp.Offset, entry.Timestamp.PlayerID)
	require.NoError(t, err)

	found, err := s.ReadCallByTraceHash(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entry.Name, found.Name)

	missing, err := s.ReadCallByTraceHash(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadSnapshotsSince_FiltersByTime(t *testing.T) {
	ctx, s := openTestStore(t)

	_, err := s.WriteSnapshot(ctx, 0, 1, "hash-1")
	require.NoError(t, err)
	_, err = s.WriteSnapshot(ctx, 0, 9, "hash-2")
	require.NoError(t, err)

	snapshots, err := s.ReadSnapshotsSince(ctx, 5)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "hash-2", snapshots[0].MemoryHash)
}
