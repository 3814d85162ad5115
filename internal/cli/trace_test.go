package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceCommand_ListsRecordedCalls(t *testing.T) {
	image := writeImage(t)
	dir := writeScenario(t, singleCallScenario)
	dbPath := filepath.Join(t.TempDir(), "run.db")

	_, _, err := execRoot(t, "run", "--image", image, "--trace-db", dbPath, dir)
	require.NoError(t, err)

	out, _, err := execRoot(t, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 call(s)")
	assert.Contains(t, out, "inc")
}

func TestTraceCommand_MissingDBErrors(t *testing.T) {
	_, _, err := execRoot(t, "trace", "--db", "/nonexistent/run.db")
	assert.Error(t, err)
}

func TestTraceCommand_RequiresDBFlag(t *testing.T) {
	_, _, err := execRoot(t, "trace")
	assert.Error(t, err)
}
