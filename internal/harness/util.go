package harness

import (
	"fmt"
	"os"

	"github.com/foldrun/timefold/internal/ir"
)

func marshalArgs(v ir.Value) (string, error) {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readMemoryImage loads a reset scenario's replacement memory image
// from disk. Scenario CUE files reference images by path rather than
// embedding raw bytes, so a reset operation's memory stays readable
// and diffable outside the harness.
func readMemoryImage(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("harness: reset operation missing memory_image path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: reading memory image %q: %w", path, err)
	}
	return b, nil
}
