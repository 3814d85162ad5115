package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/vmhost"
)

func TestResetCommand_ReplacesMemoryImage(t *testing.T) {
	image := writeImage(t)

	replacement := make([]byte, vmhost.PageSize)
	replacement[0] = 0x2a
	memPath := filepath.Join(t.TempDir(), "snapshot.bin")
	require.NoError(t, os.WriteFile(memPath, replacement, 0o644))

	out, _, err := execRoot(t, "reset", "--image", image, "--memory-image", memPath, "--current-time", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "memory_hash=")
}

func TestResetCommand_RequiresMemoryImageFlag(t *testing.T) {
	image := writeImage(t)
	_, _, err := execRoot(t, "reset", "--image", image)
	assert.Error(t, err)
}

func TestResetCommand_MissingMemoryImageFileErrors(t *testing.T) {
	image := writeImage(t)
	_, _, err := execRoot(t, "reset", "--image", image, "--memory-image", "/nonexistent/snapshot.bin")
	assert.Error(t, err)
}
