package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/core"
	"github.com/foldrun/timefold/internal/harness"
	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/scenario"
	"github.com/foldrun/timefold/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Image   string
	TraceDB string
}

// NewRunCommand creates the run command: compile a CUE scenario
// directory into operations and execute them against a fresh engine.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario-dir>",
		Short: "Compile and execute a CUE scenario",
		Long: `Load every .cue file under scenario-dir, compile its "operations"
list, and execute them in order against a freshly instantiated guest.

Example:
  timefold run --image guest.wasm ./scenarios/checkout
  timefold run --image guest.wasm --trace-db run.db ./scenarios/checkout`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "path to the instrumented guest wasm image (required)")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "optional sqlite path to record the resulting Call Log into")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runScenario(opts *RunOptions, dir string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("loading scenario", "dir", dir)
	loaded, errs := scenario.Load(dir, scenario.LoadModeFailFast)
	if len(errs) > 0 {
		return WrapExitError(ExitCommandError, "failed to load scenario", errs[0])
	}
	slog.Info("scenario loaded", "operations", len(loaded.Operations), "files", loaded.FileCount)

	fileCfg, err := LoadFileConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	ctx := context.Background()
	e, traceID, err := buildEngine(ctx, opts.Image, fileCfg, opts.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "setting up engine", err)
	}
	defer e.Close(ctx)

	if err := harness.Apply(ctx, e, loaded.Operations); err != nil {
		return WrapExitError(ExitFailure, "scenario execution failed", err)
	}

	result, err := harness.Snapshot(e)
	if err != nil {
		return WrapExitError(ExitFailure, "reading result", err)
	}

	if opts.TraceDB != "" {
		if err := recordTrace(ctx, opts.TraceDB, e); err != nil {
			return WrapExitError(ExitCommandError, "recording trace", err)
		}
	}

	memoryHash := ir.MemoryImageHash(result.Memory, nil)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	formatter.VerboseLog("trace_id=%s", traceID)
	return formatter.Success(runResult{
		TraceID:    traceID,
		Operations: len(loaded.Operations),
		CallLogLen: len(result.Trace),
		MemoryHash: memoryHash,
	})
}

// recordTrace writes e's final Call Log into the sqlite trace store at
// path, for later inspection via `timefold trace`. It records the
// finished log in one pass rather than incrementally, since the store
// is diagnostic tooling rather than a source of engine truth.
func recordTrace(ctx context.Context, path string, e *core.Engine) error {
	st, err := trace.Open(path)
	if err != nil {
		return fmt.Errorf("opening trace store: %w", err)
	}
	defer st.Close()

	for _, entry := range e.CallLog() {
		if _, err := st.WriteCall(ctx, entry); err != nil {
			return fmt.Errorf("writing call %s@%s: %w", entry.Name, entry.Timestamp, err)
		}
	}
	return nil
}

type runResult struct {
	TraceID    string `json:"trace_id"`
	Operations int    `json:"operations"`
	CallLogLen int    `json:"call_log_len"`
	MemoryHash string `json:"memory_hash"`
}

func (r runResult) String() string {
	return fmt.Sprintf("trace_id=%s operations=%d call_log_len=%d memory_hash=%s",
		r.TraceID, r.Operations, r.CallLogLen, r.MemoryHash)
}
