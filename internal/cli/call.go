package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/harness"
	"github.com/foldrun/timefold/internal/scenario"
	"github.com/foldrun/timefold/internal/timeline"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Image  string
	Time   int64
	Offset int64
	Player int64
	Args   string
}

// NewCallCommand creates the call command: a single call_at against a
// freshly instantiated guest.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <name>",
		Short: "Apply a single call_at to a fresh engine",
		Long: `Apply a single call to a freshly instantiated guest and print the
resulting state.

Example:
  timefold call inc --image guest.wasm --time 5 --player 0 --args '[1, 2.5]'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "path to the instrumented guest wasm image (required)")
	cmd.Flags().Int64Var(&opts.Time, "time", 0, "logical time of the call")
	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "per-(time, player) offset")
	cmd.Flags().Int64Var(&opts.Player, "player", 0, "player id issuing the call")
	cmd.Flags().StringVar(&opts.Args, "args", "", "call arguments as a CUE list expression of numbers, e.g. '[1, 2.5]'")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runCall(opts *CallOptions, name string, cmd *cobra.Command) error {
	args, err := scenario.ParseArgsExpr(opts.Args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --args expression", err)
	}

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

	ts := timeline.Timestamp{Time: opts.Time, Offset: opts.Offset, PlayerID: opts.Player}
	if err := e.CallAt(ctx, ts, name, args); err != nil {
		return WrapExitError(ExitFailure, "call failed", err)
	}

	result, err := harness.Snapshot(e)
	if err != nil {
		return WrapExitError(ExitFailure, "reading result", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	formatter.VerboseLog("trace_id=%s", traceID)
	return formatter.Success(callResult{TraceID: traceID, Globals: result.Globals, JournalLen: result.JournalLen})
}

type callResult struct {
	TraceID    string                `json:"trace_id"`
	Globals    []harness.GlobalValue `json:"globals"`
	JournalLen int                   `json:"journal_len"`
}

func (r callResult) String() string {
	s := fmt.Sprintf("trace_id=%s journal_len=%d\n", r.TraceID, r.JournalLen)
	for _, g := range r.Globals {
		s += fmt.Sprintf("  global[%d] %s = %d\n", g.Index, g.Type, g.Bits)
	}
	return s
}
