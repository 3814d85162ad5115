package rewriter

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/foldrun/timefold/internal/ir"
)

// GzipEncode compresses data. Spec §6 attributes this helper to "the
// same rewriter module" as the ABI client, but none of the example
// modules this engine is grounded on ship a wasm gzip implementation,
// and Go's own compress/gzip is the idiomatic way to do this in-process
// — there is no third-party gzip library represented anywhere in the
// corpus this engine draws its dependency stack from. See DESIGN.md.
func GzipEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("rewriter: gzip encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("rewriter: gzip encode: %w", err)
	}
	return buf.Bytes(), nil
}

// GzipDecode reverses GzipEncode.
func GzipDecode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rewriter: gzip decode: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rewriter: gzip decode: %w", err)
	}
	return out, nil
}

// Hash128 computes the 128-bit fingerprint spec §6 describes as a
// rewriter helper. It delegates to ir.Hash128 rather than round-tripping
// through a wasm module: the engine already needs a stable 128-bit hash
// for its own content addressing, and giving embedders a second,
// independently-implemented hash under the same name would let the two
// disagree on the same bytes. See DESIGN.md.
func Hash128(data []byte) [16]byte {
	return ir.Hash128(data)
}
