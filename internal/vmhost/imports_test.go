package vmhost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/journal"
	"github.com/foldrun/timefold/internal/wasmtest"
)

type recordingRecorder struct {
	writes []struct {
		location uint32
		old      []byte
	}
}

func (r *recordingRecorder) RecordMemoryWrite(location uint32, old []byte) {
	r.writes = append(r.writes, struct {
		location uint32
		old      []byte
	}{location, old})
}
func (r *recordingRecorder) RecordMemoryGrow(uint32)                {}
func (r *recordingRecorder) RecordGlobalWrite(uint32, journal.Scalar) {}

func TestRegisterHostModule_OnStoreCalledFromGuest(t *testing.T) {
	ctx := context.Background()
	rec := &recordingRecorder{}

	g, err := Setup(ctx, Config{Image: wasmtest.TriggerOnStoreModule(), Recorder: rec})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close(ctx) })

	_, err = g.Call(ctx, "trigger")
	require.NoError(t, err)

	require.Len(t, rec.writes, 1)
	assert.Equal(t, uint32(5), rec.writes[0].location)
	assert.Len(t, rec.writes[0].old, 10)
}

type recordingSink struct {
	logs   []string
	errors []string
}

func (s *recordingSink) Log(msg string)   { s.logs = append(s.logs, msg) }
func (s *recordingSink) Error(msg string) { s.errors = append(s.errors, msg) }

func TestDefaultGlobalNamer(t *testing.T) {
	assert.Equal(t, "g0", DefaultGlobalNamer(0))
	assert.Equal(t, "g7", DefaultGlobalNamer(7))
}
