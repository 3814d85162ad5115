package vmhost

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/foldrun/timefold/internal/journal"
)

// ErrNoSuchExport distinguishes a call naming an export the guest never
// declared from a call that reached the guest and trapped (spec §7:
// "unknown call name" is a caller error, a trap is a guest error).
var ErrNoSuchExport = errors.New("vmhost: no such exported function")

// Config configures a Guest at Setup time.
type Config struct {
	// Image is the compiled wasm binary, already instrumented by a
	// ModuleRewriter (spec §4.1). Guest does not perform instrumentation
	// itself.
	Image []byte

	// Recorder receives undo records as the guest mutates state.
	Recorder UndoRecorder

	// Diagnostics receives external_log/external_error text. May be nil,
	// in which case both are discarded.
	Diagnostics DiagnosticSink

	// GlobalName maps a global index to its export name. Defaults to
	// DefaultGlobalNamer.
	GlobalName GlobalNamer

	// ModuleName is the name the compiled module is instantiated under.
	// Defaults to "guest".
	ModuleName string
}

type discardSink struct{}

func (discardSink) Log(string)   {}
func (discardSink) Error(string) {}

// Guest owns one wazero-instantiated instance of an instrumented wasm
// module. It exposes exactly the surface the rest of the engine needs
// to snapshot and restore VM-level state: memory bytes, typed globals,
// and export invocation.
type Guest struct {
	runtime    wazero.Runtime
	compiled   wazero.CompiledModule
	env        wazero.HostModuleBuilder
	moduleName string
	globalName GlobalNamer

	module api.Module
}

// Setup compiles and instantiates the guest image. The returned Guest
// owns the wazero runtime and must be closed via Close when discarded.
func Setup(ctx context.Context, cfg Config) (*Guest, error) {
	if cfg.GlobalName == nil {
		cfg.GlobalName = DefaultGlobalNamer
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = discardSink{}
	}
	if cfg.ModuleName == "" {
		cfg.ModuleName = "guest"
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(false))

	compiled, err := rt.CompileModule(ctx, cfg.Image)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("vmhost: compile guest module: %w", err)
	}

	env := registerHostModule(rt, cfg.Recorder, cfg.Diagnostics, cfg.GlobalName)
	if _, err := env.Instantiate(ctx); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("vmhost: instantiate host module: %w", err)
	}

	g := &Guest{
		runtime:    rt,
		compiled:   compiled,
		env:        env,
		moduleName: cfg.ModuleName,
		globalName: cfg.GlobalName,
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(cfg.ModuleName))
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("vmhost: instantiate guest module: %w", err)
	}
	g.module = mod

	return g, nil
}

// Close releases the underlying wazero runtime and every module
// instantiated from it.
func (g *Guest) Close(ctx context.Context) error {
	return g.runtime.Close(ctx)
}

// Module returns the currently live api.Module. It is replaced wholesale
// by Reinstantiate, so callers must not cache the returned value across
// a rewind that crosses a MemoryGrow undo.
func (g *Guest) Module() api.Module {
	return g.module
}

// Memory returns the guest's exported linear memory.
func (g *Guest) Memory() api.Memory {
	return g.module.Memory()
}

// MemorySnapshot copies the entire current linear memory image, for
// content-addressed hashing (spec §4.9) or full-state checkpoints.
func (g *Guest) MemorySnapshot() []byte {
	mem := g.Memory()
	buf, ok := mem.Read(0, mem.Size())
	if !ok {
		return nil
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out
}

// ReadBytes copies length bytes starting at offset from guest memory.
func (g *Guest) ReadBytes(offset, length uint32) ([]byte, bool) {
	buf, ok := g.Memory().Read(offset, length)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, true
}

// WriteBytes writes data into guest memory at offset, without recording
// an undo entry — callers that need undo tracking record it themselves
// before calling this (this is the primitive rewind uses to restore a
// MemoryWrite record's OldBytes).
func (g *Guest) WriteBytes(offset uint32, data []byte) bool {
	return g.Memory().Write(offset, data)
}

// GlobalCount reports how many globals GlobalGet/GlobalSet can reach
// under the current GlobalNamer, by probing sequential names starting
// at 0 until one is unexported. Instrumented modules are expected to
// export a contiguous run of mutable globals starting at index 0.
func (g *Guest) GlobalCount() uint32 {
	var n uint32
	for g.module.ExportedGlobal(g.globalName(n)) != nil {
		n++
	}
	return n
}

// GlobalGet reads global i's current value, tagged with its wasm type.
func (g *Guest) GlobalGet(i uint32) (journal.Scalar, error) {
	global := g.module.ExportedGlobal(g.globalName(i))
	if global == nil {
		return journal.Scalar{}, fmt.Errorf("vmhost: no exported global at index %d", i)
	}
	return scalarFromGlobal(global), nil
}

// GlobalSet restores global i to a previously captured Scalar, without
// recording an undo entry. It fails closed on a type mismatch rather
// than silently reinterpreting bits (spec §9).
func (g *Guest) GlobalSet(i uint32, value journal.Scalar) error {
	global := g.module.ExportedGlobal(g.globalName(i))
	if global == nil {
		return fmt.Errorf("vmhost: no exported global at index %d", i)
	}
	mutable, ok := global.(api.MutableGlobal)
	if !ok {
		return fmt.Errorf("vmhost: global at index %d is not mutable", i)
	}
	if err := checkTypeMatch(global, value.Type); err != nil {
		return err
	}
	mutable.Set(value.Bits)
	return nil
}

// Reinstantiate replaces the live module with a fresh instance grown to
// targetPages pages of linear memory, then overwrites that memory with
// copiedBytes. This is the suspension point rewind uses to undo a
// MemoryGrow: wazero's linear memory can only grow, never shrink, so
// undoing a grow means starting over from the compiled image rather
// than mutating memory in place (spec §4.4). Globals are not restored
// here; the caller is expected to have already replayed the
// GlobalWrite records that logically precede this MemoryGrow record,
// or to replay any snapshotted globals immediately after this call.
func (g *Guest) Reinstantiate(ctx context.Context, targetPages uint32, copiedBytes []byte) error {
	if err := g.module.Close(ctx); err != nil {
		return fmt.Errorf("vmhost: close prior module instance: %w", err)
	}

	mod, err := g.runtime.InstantiateModule(ctx, g.compiled, wazero.NewModuleConfig().WithName(g.moduleName))
	if err != nil {
		return fmt.Errorf("vmhost: reinstantiate guest module: %w", err)
	}
	g.module = mod

	mem := mod.Memory()
	currentPages := mem.Size() / PageSize
	if targetPages > currentPages {
		if _, ok := mem.Grow(targetPages - currentPages); !ok {
			return fmt.Errorf("vmhost: grow reinstantiated memory to %d pages", targetPages)
		}
	}

	if len(copiedBytes) > 0 {
		if !mem.Write(0, copiedBytes) {
			return fmt.Errorf("vmhost: write restored memory image of %d bytes", len(copiedBytes))
		}
	}

	return nil
}

// ExportedFunction looks up a guest export without invoking it. A nil
// return distinguishes an unknown call name (spec §7) from a call that
// reached the guest and trapped.
func (g *Guest) ExportedFunction(name string) api.Function {
	return g.module.ExportedFunction(name)
}

// Call invokes the named export and returns its results. It returns
// ErrNoSuchExport, wrapped with name, if the guest declares no such
// export; any other error is a guest-side trap.
func (g *Guest) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := g.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchExport, name)
	}
	return fn.Call(ctx, args...)
}
