package vmhost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/foldrun/timefold/internal/journal"
)

// HostModuleName is the import module name the instrumented guest binds
// its callbacks under, per spec §6.
const HostModuleName = "env"

// UndoRecorder receives an UndoRecord just before the guest's mutation
// executes. The core engine implements this by appending directly to
// its Journal.
type UndoRecorder interface {
	RecordMemoryWrite(location uint32, oldBytes []byte)
	RecordMemoryGrow(oldPageCount uint32)
	RecordGlobalWrite(index uint32, old journal.Scalar)
}

// DiagnosticSink receives decoded text from the guest's external_log
// and external_error imports (spec §6).
type DiagnosticSink interface {
	Log(msg string)
	Error(msg string)
}

// GlobalNamer maps a wasm global index to the export name the
// instrumented module publishes it under. wazero's public API resolves
// globals by export name, not by raw section index, so the rewriter
// contract (§4.1) is expected to export every mutable global under a
// stable name; DefaultGlobalNamer is that convention ("g0", "g1", ...).
type GlobalNamer func(index uint32) string

// DefaultGlobalNamer names global i as "gN".
func DefaultGlobalNamer(i uint32) string {
	return fmt.Sprintf("g%d", i)
}

// registerHostModule builds the "env" host module exposing on_store,
// on_grow, on_global_set, external_log, and external_error, closing over
// the given recorder/sink/global lookup. The callbacks read the calling
// module's own linear memory synchronously (spec §5: "the guest cannot
// concurrently modify the bytes being snapshotted because the mutation
// they precede has not yet executed").
func registerHostModule(rt wazero.Runtime, rec UndoRecorder, sink DiagnosticSink, globalName GlobalNamer) wazero.HostModuleBuilder {
	b := rt.NewHostModuleBuilder(HostModuleName)

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, location, size uint32) {
			mem := mod.Memory()
			old, ok := mem.Read(location, size)
			if !ok {
				// Out-of-range store address: the guest is about to
				// trap on the store itself, or the rewriter mis-sized
				// the instrumentation. Either way there is nothing
				// meaningful to snapshot.
				return
			}
			// Read returns a view into the memory's backing array in
			// some wazero configurations; copy before the guest's store
			// overwrites it in place.
			snapshot := make([]byte, len(old))
			copy(snapshot, old)
			rec.RecordMemoryWrite(location, snapshot)
		}).
		Export("on_store")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, pages uint32) {
			current := mod.Memory().Size() / PageSize
			rec.RecordMemoryGrow(current)
		}).
		Export("on_grow")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, globalIndex uint32) {
			g := mod.ExportedGlobal(globalName(globalIndex))
			if g == nil {
				return
			}
			rec.RecordGlobalWrite(globalIndex, scalarFromGlobal(g))
		}).
		Export("on_global_set")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr, length uint32) {
			text, ok := mod.Memory().Read(ptr, length)
			if !ok {
				return
			}
			sink.Log(string(text))
		}).
		Export("external_log")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr, length uint32) {
			text, ok := mod.Memory().Read(ptr, length)
			if !ok {
				return
			}
			sink.Error(string(text))
		}).
		Export("external_error")

	return b
}
