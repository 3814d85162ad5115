package rewriter

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// ModuleRewriter takes a raw guest module and returns an instrumented
// module whose every store, memory growth, and global write is preceded
// by a host callback (spec §4.1). Client implements it. core.Setup does
// not call a rewriter: it takes an already-instrumented image, and the
// CLI's setup command drives a Client directly.
type ModuleRewriter interface {
	Rewrite(ctx context.Context, rawModule []byte) ([]byte, error)
}

// ErrMissingExport is returned when the rewriter module does not export
// one of the four ABI functions Client depends on.
var ErrMissingExport = errors.New("rewriter: module missing required export")

const (
	exportReserveSpace = "reserve_space"
	exportPrepareWasm  = "prepare_wasm"
	exportOutputPtr    = "get_output_ptr"
	exportOutputLen    = "get_output_len"
)

// Client drives a rewriter wasm module through the shared-buffer ABI
// spec §6 defines: reserve_space allocates room in the module's own
// memory, prepare_wasm consumes whatever was written there and produces
// an instrumented module in an internal output buffer, and
// get_output_ptr/get_output_len describe where to read it back from.
//
// A Client owns exactly one rewriter module instance. Concurrent calls
// to Rewrite on the same Client would race over the shared buffer, so
// callers must serialize their own use the same way core.Engine
// serializes guest access.
type Client struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	module   api.Module

	reserveSpace api.Function
	prepareWasm  api.Function
	outputPtr    api.Function
	outputLen    api.Function
}

// NewClient compiles and instantiates the rewriter module supplied by
// the embedder. The module is expected to require no host imports of
// its own; it operates entirely on bytes the caller writes into its
// reserved region.
func NewClient(ctx context.Context, rewriterImage []byte) (*Client, error) {
	rt := wazero.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, rewriterImage)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("rewriter: compile module: %w", err)
	}

	module, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("rewriter"))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("rewriter: instantiate module: %w", err)
	}

	c := &Client{runtime: rt, compiled: compiled, module: module}
	for name, slot := range map[string]*api.Function{
		exportReserveSpace: &c.reserveSpace,
		exportPrepareWasm:  &c.prepareWasm,
		exportOutputPtr:    &c.outputPtr,
		exportOutputLen:    &c.outputLen,
	} {
		fn := module.ExportedFunction(name)
		if fn == nil {
			_ = module.Close(ctx)
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("%w: %s", ErrMissingExport, name)
		}
		*slot = fn
	}

	return c, nil
}

// Close releases the underlying wazero runtime and everything it owns.
func (c *Client) Close(ctx context.Context) error {
	return c.runtime.Close(ctx)
}

// Rewrite implements ModuleRewriter by round-tripping rawModule through
// the reserve_space/prepare_wasm/get_output_ptr/get_output_len ABI.
func (c *Client) Rewrite(ctx context.Context, rawModule []byte) ([]byte, error) {
	return c.roundTrip(ctx, rawModule, c.prepareWasm)
}

// roundTrip is the shape every helper service in this package shares:
// reserve room for the input, write it, invoke the named operation, and
// read back whatever landed at get_output_ptr/get_output_len.
func (c *Client) roundTrip(ctx context.Context, input []byte, op api.Function) ([]byte, error) {
	results, err := c.reserveSpace.Call(ctx, uint64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("rewriter: reserve_space: %w", err)
	}
	ptr := uint32(results[0])

	mem := c.module.Memory()
	if mem == nil {
		return nil, errors.New("rewriter: module exports no memory")
	}
	if len(input) > 0 && !mem.Write(ptr, input) {
		return nil, fmt.Errorf("rewriter: write %d bytes at 0x%x out of range", len(input), ptr)
	}

	if _, err := op.Call(ctx); err != nil {
		return nil, fmt.Errorf("rewriter: %s: %w", op.Definition().Name(), err)
	}

	outPtrRes, err := c.outputPtr.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("rewriter: get_output_ptr: %w", err)
	}
	outLenRes, err := c.outputLen.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("rewriter: get_output_len: %w", err)
	}

	outPtr, outLen := uint32(outPtrRes[0]), uint32(outLenRes[0])
	out, ok := mem.Read(outPtr, outLen)
	if !ok {
		return nil, fmt.Errorf("rewriter: read %d bytes at 0x%x out of range", outLen, outPtr)
	}

	// mem.Read returns a view into the module's own memory; copy it out
	// since the next roundTrip call will overwrite that region.
	copied := make([]byte, len(out))
	copy(copied, out)
	return copied, nil
}
