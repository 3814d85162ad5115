package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/core"
)

func TestLoadFileConfig_EmptyPathReturnsZeroValue(t *testing.T) {
	cfg, err := LoadFileConfig("")
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, cfg)
}

func TestLoadFileConfig_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timefold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
interval: 10
next_fire_time: 5
tick_function_name: tick
max_replay: 100
reject_out_of_order: true
`), 0o644))

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.Interval)
	assert.Equal(t, int64(5), cfg.NextFireTime)
	assert.Equal(t, "tick", cfg.TickFunctionName)
	assert.Equal(t, 100, cfg.MaxReplay)
	assert.True(t, cfg.RejectOutOfOrder)
}

func TestLoadFileConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFileConfig_EngineConfig_MapsPeerOrderMode(t *testing.T) {
	strict := &FileConfig{RejectOutOfOrder: true}
	cfg := strict.EngineConfig([]byte{}, nil)
	assert.Equal(t, core.PeerOrderReject, cfg.PeerOrderMode)

	lenient := &FileConfig{}
	cfg = lenient.EngineConfig([]byte{}, nil)
	assert.Equal(t, core.PeerOrderIgnore, cfg.PeerOrderMode)
}
