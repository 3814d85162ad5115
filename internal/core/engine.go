package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/journal"
	"github.com/foldrun/timefold/internal/rewind"
	"github.com/foldrun/timefold/internal/timeline"
	"github.com/foldrun/timefold/internal/vmhost"
)

// journalRecorder adapts *journal.Journal to vmhost.UndoRecorder, the
// interface the instrumented host imports (on_store/on_grow/
// on_global_set) write through.
type journalRecorder struct {
	journal *journal.Journal
}

func (r *journalRecorder) RecordMemoryWrite(location uint32, oldBytes []byte) {
	r.journal.Append(journal.NewMemoryWrite(location, oldBytes))
}

func (r *journalRecorder) RecordMemoryGrow(oldPageCount uint32) {
	r.journal.Append(journal.NewMemoryGrow(oldPageCount))
}

func (r *journalRecorder) RecordGlobalWrite(index uint32, old journal.Scalar) {
	r.journal.Append(journal.NewGlobalWrite(index, old))
}

var _ vmhost.UndoRecorder = (*journalRecorder)(nil)

// Config configures a new Engine at Setup time.
type Config struct {
	// Image is the instrumented guest wasm binary (spec §4.1's output).
	Image []byte

	// Diagnostics receives external_log/external_error text from the
	// guest. May be nil.
	Diagnostics vmhost.DiagnosticSink

	// GlobalName maps a wasm global index to its export name. Defaults
	// to vmhost.DefaultGlobalNamer.
	GlobalName vmhost.GlobalNamer

	// Interval is the recurring-tick period in logical time units
	// (spec §4.6). Zero disables ticking.
	Interval int64

	// NextFireTime is the initial next_fire_time.
	NextFireTime int64

	// TickFunctionName is the guest export AdvanceTime invokes for each
	// synthesized tick.
	TickFunctionName string

	// PeerOrderMode controls whether out-of-order per-peer inserts are
	// rejected or silently admitted (spec §4.5, §7).
	PeerOrderMode PeerOrderMode

	// MaxReplay bounds how many Call Log entries a single CallAt may
	// replay. Zero uses DefaultMaxReplay; negative means unlimited.
	MaxReplay int
}

// Engine is CoreState plus the Timeline Scheduler and Recurring-Tick
// Driver operations described by spec §4.5–§4.8. It is not safe for
// concurrent use by its synchronous methods (CallAt, CallAndRevert,
// AdvanceTime, Reset, ForgetBefore) — spec §5 mandates a single owning
// task. Enqueue is safe from any goroutine; Run is the single-writer
// loop that drains what Enqueue submits.
type Engine struct {
	guest    *vmhost.Guest
	journal  *journal.Journal
	log      *timeline.Log
	rewinder *rewind.Rewinder
	queue    *callQueue

	peerGuard    *PeerOrderGuard
	replayBudget *ReplayBudget

	currentTime      int64
	tickOffset       int64
	interval         int64
	nextFireTime     int64
	tickFunctionName string

	poisoned  bool
	poisonErr *EngineError
}

// Setup constructs an Engine: instantiates the guest VM and wires the
// undo journal, Call Log, and Rewinder around it (spec §4.1's "engine
// constructed once per setup").
func Setup(ctx context.Context, cfg Config) (*Engine, error) {
	maxReplay := cfg.MaxReplay
	if maxReplay == 0 {
		maxReplay = DefaultMaxReplay
	} else if maxReplay < 0 {
		maxReplay = 0
	}

	j := journal.New()
	e := &Engine{
		journal:          j,
		log:              timeline.NewLog(),
		queue:            newCallQueue(),
		peerGuard:        NewPeerOrderGuard(cfg.PeerOrderMode),
		replayBudget:     NewReplayBudget(maxReplay),
		interval:         cfg.Interval,
		nextFireTime:     cfg.NextFireTime,
		tickFunctionName: cfg.TickFunctionName,
	}

	guest, err := vmhost.Setup(ctx, vmhost.Config{
		Image:       cfg.Image,
		Recorder:    &journalRecorder{journal: j},
		Diagnostics: cfg.Diagnostics,
		GlobalName:  cfg.GlobalName,
	})
	if err != nil {
		return nil, newError(CodeSetupFailure, err.Error())
	}
	e.guest = guest
	e.rewinder = rewind.New(j, guest)

	return e, nil
}

// Close releases the underlying guest VM.
func (e *Engine) Close(ctx context.Context) error {
	return e.guest.Close(ctx)
}

// Global reads the current value of the guest global at index i.
// Embedders and tests use this to observe VM state without going
// through a guest export.
func (e *Engine) Global(i uint32) (journal.Scalar, error) {
	return e.guest.GlobalGet(i)
}

// CallLog returns a copy of every Call Log entry, ordered ascending by
// timestamp.
func (e *Engine) CallLog() []timeline.Entry {
	return e.log.All()
}

// GlobalCount returns the number of exported guest globals.
func (e *Engine) GlobalCount() uint32 {
	return e.guest.GlobalCount()
}

// MemorySnapshot returns a copy of the guest's current linear memory.
// Embedders and tests use this alongside Global to compare full VM
// state across two engines, e.g. to check that two different call
// orderings converged on the same state (spec §8, "Order
// independence").
func (e *Engine) MemorySnapshot() []byte {
	return e.guest.MemorySnapshot()
}

// JournalLen returns the current Journal length.
func (e *Engine) JournalLen() int {
	return e.journal.Len()
}

func (e *Engine) checkPoisoned() error {
	if e.poisoned {
		return e.poisonErr
	}
	return nil
}

func (e *Engine) poison(err *EngineError) *EngineError {
	e.poisoned = true
	e.poisonErr = &EngineError{
		Code:    CodePoisoned,
		Message: fmt.Sprintf("engine poisoned by prior %s: %s", err.Code, err.Message),
	}
	return err
}

// CallAt implements the Timeline Scheduler's core operation (spec
// §4.5): locate ts's insertion point, rewind to it, invoke name(args),
// insert the new entry, then replay every later entry so the VM ends
// up exactly where it would be had every entry executed once in
// ascending timestamp order.
//
// Per the resolved trap policy (spec §9 Open Questions), a guest trap
// during the initial invocation or during replay is reported to the
// caller without an automatic rewind — the Journal is left wherever the
// guest reached, matching the source's behavior for non-transient
// calls.
func (e *Engine) CallAt(ctx context.Context, ts timeline.Timestamp, name string, args ir.Value) error {
	if err := e.checkPoisoned(); err != nil {
		return err
	}
	if err := e.peerGuard.Observe(ts); err != nil {
		return err
	}

	i := e.log.FindInsertionIndex(ts)

	var target int
	if i < e.log.Len() {
		target = e.log.At(i).JournalLengthBefore
		if err := e.rewinder.RewindTo(ctx, target); err != nil {
			return e.poison(newCallError(CodeRewindFailure, err.Error(), name, ts))
		}
	} else {
		target = e.journal.Len()
	}

	if err := e.invoke(ctx, name, args, ts); err != nil {
		return err
	}

	e.log.InsertAt(i, timeline.Entry{
		Name:                name,
		Args:                args,
		JournalLengthBefore: target,
		Timestamp:           ts,
	})

	e.replayBudget.Reset()
	for j := i + 1; j < e.log.Len(); j++ {
		if err := e.replayBudget.Charge(); err != nil {
			return err
		}
		entry := e.log.At(j)
		entry.JournalLengthBefore = e.journal.Len()
		e.log.Set(j, entry)
		if err := e.invoke(ctx, entry.Name, entry.Args, entry.Timestamp); err != nil {
			return err
		}
	}
	return nil
}

// invoke resolves name against the guest, converts args to wasm-level
// arguments matching the export's declared parameter types, and calls
// it. Missing-export and trap errors are distinguished per spec §7.
func (e *Engine) invoke(ctx context.Context, name string, args ir.Value, ts timeline.Timestamp) error {
	fn := e.guest.ExportedFunction(name)
	if fn == nil {
		return newCallError(CodeMissingExport, "no such export", name, ts)
	}
	wasmArgs, err := convertArgs(fn, args)
	if err != nil {
		return newCallError(CodeMissingExport, err.Error(), name, ts)
	}
	if _, err := e.guest.Call(ctx, name, wasmArgs...); err != nil {
		return newCallError(CodeGuestTrap, err.Error(), name, ts)
	}
	return nil
}

// CallAndRevert implements the transient call operation (spec §4.5):
// snapshot the journal length, invoke the export, then rewind back to
// the snapshot regardless of outcome. It never touches the Call Log.
//
// Per the resolved trap policy, a trap during a transient call DOES
// trigger an automatic rewind to the pre-call snapshot — unlike CallAt,
// a transient call's entire purpose is leaving no trace, so a
// half-applied query must not be allowed to leak into subsequent state.
func (e *Engine) CallAndRevert(ctx context.Context, name string, args ir.Value) ([]uint64, error) {
	if err := e.checkPoisoned(); err != nil {
		return nil, err
	}

	snapshot := e.journal.Len()

	fn := e.guest.ExportedFunction(name)
	if fn == nil {
		return nil, newError(CodeMissingExport, fmt.Sprintf("no such export: %s", name))
	}
	wasmArgs, err := convertArgs(fn, args)
	if err != nil {
		return nil, newError(CodeMissingExport, err.Error())
	}

	results, callErr := e.guest.Call(ctx, name, wasmArgs...)
	if err := e.rewinder.RewindTo(ctx, snapshot); err != nil {
		return nil, e.poison(newError(CodeRewindFailure, err.Error()))
	}
	if callErr != nil {
		return nil, newError(CodeGuestTrap, callErr.Error())
	}
	return results, nil
}

// AdvanceTime implements the Recurring-Tick Driver (spec §4.6).
func (e *Engine) AdvanceTime(ctx context.Context, delta int64) error {
	if err := e.checkPoisoned(); err != nil {
		return err
	}
	if delta <= 0 || e.interval == 0 {
		return nil
	}

	e.currentTime += delta
	e.tickOffset = 0

	for e.currentTime-e.nextFireTime > e.interval {
		e.nextFireTime += e.interval
		ts := timeline.Timestamp{Time: e.nextFireTime, Offset: 0, PlayerID: 0}
		e.tickOffset++
		if err := e.CallAt(ctx, ts, e.tickFunctionName, ir.Array{}); err != nil {
			return err
		}
	}
	return nil
}

// Reset implements the State Reset join point (spec §4.7): replace the
// VM's memory bitwise, clear the Journal and Call Log, and rebase the
// clock.
func (e *Engine) Reset(ctx context.Context, newMemoryImage []byte, newCurrentTime, newNextFireTime int64) error {
	if err := e.checkPoisoned(); err != nil {
		return err
	}

	requiredPages := uint32(1)
	if n := len(newMemoryImage); n > 0 {
		requiredPages = uint32((n + vmhost.PageSize - 1) / vmhost.PageSize)
	}
	currentPages := e.guest.Memory().Size() / vmhost.PageSize

	switch {
	case requiredPages > currentPages:
		if _, ok := e.guest.Memory().Grow(requiredPages - currentPages); !ok {
			return e.poison(newError(CodeRewindFailure, "reset: grow memory to fit new image"))
		}
		if !e.guest.WriteBytes(0, newMemoryImage) {
			return e.poison(newError(CodeRewindFailure, "reset: write new memory image"))
		}
	case requiredPages < currentPages:
		if err := e.guest.Reinstantiate(ctx, requiredPages, newMemoryImage); err != nil {
			return e.poison(newError(CodeRewindFailure, err.Error()))
		}
	default:
		if !e.guest.WriteBytes(0, newMemoryImage) {
			return e.poison(newError(CodeRewindFailure, "reset: write new memory image"))
		}
	}

	e.journal.Clear()
	e.log.Reset()
	e.peerGuard.Reset()
	e.currentTime = newCurrentTime
	e.nextFireTime = newNextFireTime
	e.tickOffset = 0
	return nil
}

// ForgetBefore implements history compaction (spec §4.8): entries with
// Timestamp < t are dropped from the Call Log, and every Journal record
// they alone referenced is dropped from the head. §9 resolves the
// source's `>=`/`>` ambiguity in favor of the `>=` spec §4.8 specifies:
// entries with Timestamp exactly equal to t survive.
func (e *Engine) ForgetBefore(t timeline.Timestamp) error {
	if err := e.checkPoisoned(); err != nil {
		return err
	}

	k := 0
	for k < e.log.Len() && e.log.At(k).Timestamp.Compare(t) < 0 {
		k++
	}
	if k == 0 {
		return nil
	}

	if k == e.log.Len() {
		// No surviving entry references any journal range; the whole
		// journal is unreachable.
		e.journal.Clear()
		e.log.RemovePrefix(k)
		return nil
	}

	survivorBefore := e.log.At(k).JournalLengthBefore
	e.log.RemovePrefix(k)
	e.journal.TruncateHead(survivorBefore)

	// Rebase so the first survivor's JournalLengthBefore is 0: the kept
	// records move to a cleared Journal (head 0) and every surviving
	// entry shifts down by the same amount.
	kept := make([]journal.Record, 0, e.journal.Len()-survivorBefore)
	for i := survivorBefore; i < e.journal.Len(); i++ {
		kept = append(kept, e.journal.At(i))
	}
	e.journal.Clear()
	for _, r := range kept {
		e.journal.Append(r)
	}
	for i := 0; i < e.log.Len(); i++ {
		entry := e.log.At(i)
		entry.JournalLengthBefore -= survivorBefore
		e.log.Set(i, entry)
	}
	return nil
}

// Enqueue submits a call for asynchronous processing by Run. Safe from
// any goroutine.
func (e *Engine) Enqueue(ts timeline.Timestamp, name string, args ir.Value) bool {
	return e.queue.Enqueue(ScheduledCall{Timestamp: ts, Name: name, Args: args})
}

// Run drains the async queue on the calling goroutine, applying each
// call via CallAt, until ctx is cancelled or the queue is closed. Must
// be called from exactly one goroutine (spec §5's single owning task).
//
// A call that fails with a non-poisoning error is logged and skipped so
// later, independent calls still get a chance to run — matching the
// teacher's "log and continue" replay-safety rationale (determinism
// depends on never silently retrying). Once the engine is poisoned, Run
// stops and returns the poisoning error, since every further call would
// reject anyway.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("core engine starting")

	for {
		sc, ok := e.queue.TryDequeue()
		if ok {
			if err := e.CallAt(ctx, sc.Timestamp, sc.Name, sc.Args); err != nil {
				slog.Error("scheduled call failed", "name", sc.Name, "timestamp", sc.Timestamp.String(), "error", err)
				if e.poisoned {
					return err
				}
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("core engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()
		case _, open := <-e.queue.Wait():
			if !open && e.queue.Len() == 0 {
				slog.Info("core engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the async queue, causing a blocked Run to return.
func (e *Engine) Stop() {
	e.queue.Close()
}

// convertArgs converts an ir.Array of ir.Int/ir.Float elements into the
// raw uint64 wasm argument words fn.Call expects, matching each
// element's encoding to the export's declared parameter type.
func convertArgs(fn api.Function, args ir.Value) ([]uint64, error) {
	var elems ir.Array
	switch v := args.(type) {
	case ir.Array:
		elems = v
	case nil, ir.Null:
		elems = nil
	default:
		return nil, fmt.Errorf("core: call arguments must be an ir.Array, got %T", args)
	}

	paramTypes := fn.Definition().ParamTypes()
	if len(elems) != len(paramTypes) {
		return nil, fmt.Errorf("core: export %s expects %d arguments, got %d",
			fn.Definition().Name(), len(paramTypes), len(elems))
	}

	out := make([]uint64, len(elems))
	for i, pt := range paramTypes {
		switch pt {
		case api.ValueTypeI32:
			iv, ok := elems[i].(ir.Int)
			if !ok {
				return nil, fmt.Errorf("core: argument %d must be an integer for i32 parameter", i)
			}
			out[i] = uint64(uint32(int32(iv)))
		case api.ValueTypeI64:
			iv, ok := elems[i].(ir.Int)
			if !ok {
				return nil, fmt.Errorf("core: argument %d must be an integer for i64 parameter", i)
			}
			out[i] = uint64(iv)
		case api.ValueTypeF32:
			fv, ok := elems[i].(ir.Float)
			if !ok {
				return nil, fmt.Errorf("core: argument %d must be a float for f32 parameter", i)
			}
			out[i] = uint64(math.Float32bits(float32(fv)))
		case api.ValueTypeF64:
			fv, ok := elems[i].(ir.Float)
			if !ok {
				return nil, fmt.Errorf("core: argument %d must be a float for f64 parameter", i)
			}
			out[i] = math.Float64bits(float64(fv))
		default:
			return nil, fmt.Errorf("core: unsupported parameter type %v at index %d", pt, i)
		}
	}
	return out, nil
}
