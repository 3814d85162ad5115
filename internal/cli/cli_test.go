package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foldrun/timefold/internal/wasmtest"
)

// writeImage writes wasmtest.ScenarioModule to a temp file and returns
// its path, for commands that take --image.
func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guest.wasm")
	require.NoError(t, os.WriteFile(path, wasmtest.ScenarioModule(), 0o644))
	return path
}

// writeScenario writes a single .cue file containing source into a
// fresh temp directory and returns the directory path.
func writeScenario(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.cue"), []byte(source), 0o644))
	return dir
}

// execRoot runs the root command with the given args and returns
// stdout, stderr, and the execution error.
func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}
