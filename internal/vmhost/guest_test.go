package vmhost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/journal"
	"github.com/foldrun/timefold/internal/wasmtest"
)

type nullRecorder struct{}

func (nullRecorder) RecordMemoryWrite(uint32, []byte)       {}
func (nullRecorder) RecordMemoryGrow(uint32)                {}
func (nullRecorder) RecordGlobalWrite(uint32, journal.Scalar) {}

func setupSimple(t *testing.T) (context.Context, *Guest) {
	t.Helper()
	ctx := context.Background()
	g, err := Setup(ctx, Config{Image: wasmtest.SimpleModule(), Recorder: nullRecorder{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close(ctx) })
	return ctx, g
}

func TestGuest_CallExportedFunction(t *testing.T) {
	ctx, g := setupSimple(t)
	res, err := g.Call(ctx, "add", 2, 40)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, uint64(42), res[0])
}

func TestGuest_CallMissingExport(t *testing.T) {
	ctx, g := setupSimple(t)
	_, err := g.Call(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNoSuchExport)
}

func TestGuest_CallTrapIsNotMissingExport(t *testing.T) {
	ctx, g := setupSimple(t)
	_, err := g.Call(ctx, "trap")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSuchExport)
}

func TestGuest_GlobalGetInitialValue(t *testing.T) {
	_, g := setupSimple(t)
	v, err := g.GlobalGet(0)
	require.NoError(t, err)
	assert.Equal(t, journal.I32Scalar(0), v)
}

func TestGuest_GlobalSetAndGetRoundTrip(t *testing.T) {
	_, g := setupSimple(t)
	require.NoError(t, g.GlobalSet(0, journal.I32Scalar(7)))
	v, err := g.GlobalGet(0)
	require.NoError(t, err)
	assert.Equal(t, journal.I32Scalar(7), v)
}

func TestGuest_GlobalSetTypeMismatch(t *testing.T) {
	_, g := setupSimple(t)
	err := g.GlobalSet(0, journal.F64Scalar(0))
	assert.Error(t, err)
}

func TestGuest_GlobalCount(t *testing.T) {
	_, g := setupSimple(t)
	assert.Equal(t, uint32(1), g.GlobalCount())
}

func TestGuest_ReadWriteBytes(t *testing.T) {
	_, g := setupSimple(t)
	ok := g.WriteBytes(0, []byte{1, 2, 3, 4})
	require.True(t, ok)
	got, ok := g.ReadBytes(0, 4)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
}

func TestGuest_MemorySnapshotReflectsWrites(t *testing.T) {
	_, g := setupSimple(t)
	require.True(t, g.WriteBytes(100, []byte{9, 9}))
	snap := g.MemorySnapshot()
	require.GreaterOrEqual(t, len(snap), 102)
	assert.Equal(t, byte(9), snap[100])
	assert.Equal(t, byte(9), snap[101])
}

func TestGuest_ReinstantiateGrowsAndRestoresMemory(t *testing.T) {
	ctx, g := setupSimple(t)
	before := g.Memory().Size() / PageSize

	require.NoError(t, g.Reinstantiate(ctx, before+1, []byte{1, 2, 3}))

	assert.Equal(t, before+1, g.Memory().Size()/PageSize)
	got, ok := g.ReadBytes(0, 3)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestGuest_ReinstantiateResetsGlobalsToModuleDefaults(t *testing.T) {
	ctx, g := setupSimple(t)
	require.NoError(t, g.GlobalSet(0, journal.I32Scalar(123)))

	require.NoError(t, g.Reinstantiate(ctx, 1, nil))

	v, err := g.GlobalGet(0)
	require.NoError(t, err)
	assert.Equal(t, journal.I32Scalar(0), v, "a fresh instance starts from the compiled image's initializer")
}
