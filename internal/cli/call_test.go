package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallCommand_AppliesSingleCall(t *testing.T) {
	image := writeImage(t)

	out, _, err := execRoot(t, "call", "inc", "--image", image, "--time", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "global[0] i32 = 1")
}

func TestCallCommand_JSONOutput(t *testing.T) {
	image := writeImage(t)

	out, _, err := execRoot(t, "--format", "json", "call", "inc", "--image", image, "--time", "1")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCallCommand_MissingImageErrors(t *testing.T) {
	_, _, err := execRoot(t, "call", "inc", "--image", "/nonexistent/guest.wasm")
	assert.Error(t, err)
}

func TestCallCommand_RequiresImageFlag(t *testing.T) {
	_, _, err := execRoot(t, "call", "inc")
	assert.Error(t, err)
}
