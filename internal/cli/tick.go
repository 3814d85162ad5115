package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/harness"
)

// TickOptions holds flags for the tick command.
type TickOptions struct {
	*RootOptions
	Image string
	Delta int64
}

// NewTickCommand creates the tick command: advance_time against a
// freshly instantiated guest, synthesizing recurring ticks per the
// config's interval.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TickOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Advance time on a fresh engine",
		Long: `Advance a freshly instantiated guest's logical clock, synthesizing
recurring ticks per the config's interval/tick_function_name.

Example:
  timefold tick --image guest.wasm --config timefold.yaml --delta 35`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTick(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "path to the instrumented guest wasm image (required)")
	cmd.Flags().Int64Var(&opts.Delta, "delta", 0, "amount to advance the logical clock by")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runTick(opts *TickOptions, cmd *cobra.Command) error {
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

	if err := e.AdvanceTime(ctx, opts.Delta); err != nil {
		return WrapExitError(ExitFailure, "advance_time failed", err)
	}

	result, err := harness.Snapshot(e)
	if err != nil {
		return WrapExitError(ExitFailure, "reading result", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	formatter.VerboseLog("trace_id=%s", traceID)
	return formatter.Success(callResult{TraceID: traceID, Globals: result.Globals, JournalLen: result.JournalLen})
}
