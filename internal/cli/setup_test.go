package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/wasmtest"
)

func writeRewriterModule(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rewriter.wasm")
	require.NoError(t, os.WriteFile(path, wasmtest.RewriterModule(), 0o644))
	return path
}

func TestSetupCommand_WritesInstrumentedImage(t *testing.T) {
	rewriterPath := writeRewriterModule(t)
	rawGuest := writeImage(t) // identity rewriter, any valid module round-trips
	outPath := filepath.Join(t.TempDir(), "guest.instrumented.wasm")

	out, _, err := execRoot(t, "setup", "--rewriter", rewriterPath, "--output", outPath, rawGuest)
	require.NoError(t, err)
	assert.Contains(t, out, "output="+outPath)

	rawBytes, err := os.ReadFile(rawGuest)
	require.NoError(t, err)
	gotBytes, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, rawBytes, gotBytes, "identity rewriter module should round-trip bytes unchanged")
}

func TestSetupCommand_MissingRewriterFlagErrors(t *testing.T) {
	rawGuest := writeImage(t)
	_, _, err := execRoot(t, "setup", "--output", filepath.Join(t.TempDir(), "out.wasm"), rawGuest)
	assert.Error(t, err)
}

func TestSetupCommand_MissingRawGuestFileErrors(t *testing.T) {
	rewriterPath := writeRewriterModule(t)
	_, _, err := execRoot(t, "setup", "--rewriter", rewriterPath, "--output", filepath.Join(t.TempDir(), "out.wasm"), "/nonexistent/raw.wasm")
	assert.Error(t, err)
}
