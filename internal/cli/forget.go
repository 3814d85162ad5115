package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/timeline"
)

// ForgetOptions holds flags for the forget command.
type ForgetOptions struct {
	*RootOptions
	Image  string
	Time   int64
	Offset int64
	Player int64
}

// NewForgetCommand creates the forget command: History Compaction
// (spec §4.8) against a freshly instantiated guest.
func NewForgetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ForgetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Discard Call Log entries before a cutoff timestamp",
		Long: `Discard Call Log entries strictly before the given cutoff timestamp
on a freshly instantiated guest (spec §4.8).

Example:
  timefold forget --image guest.wasm --time 100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForget(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "path to the instrumented guest wasm image (required)")
	cmd.Flags().Int64Var(&opts.Time, "time", 0, "cutoff logical time")
	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "cutoff offset")
	cmd.Flags().Int64Var(&opts.Player, "player", 0, "cutoff player id")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runForget(opts *ForgetOptions, cmd *cobra.Command) error {
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

	cutoff := timeline.Timestamp{Time: opts.Time, Offset: opts.Offset, PlayerID: opts.Player}
	if err := e.ForgetBefore(cutoff); err != nil {
		return WrapExitError(ExitFailure, "forget_before failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	formatter.VerboseLog("trace_id=%s", traceID)
	return formatter.Success(forgetResult{TraceID: traceID, CallLogLen: len(e.CallLog())})
}

type forgetResult struct {
	TraceID    string `json:"trace_id"`
	CallLogLen int    `json:"call_log_len"`
}

func (r forgetResult) String() string {
	return fmt.Sprintf("trace_id=%s call_log_len=%d", r.TraceID, r.CallLogLen)
}
