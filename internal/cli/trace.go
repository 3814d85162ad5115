package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	DB   string
	From int64
}

// NewTraceCommand creates the trace command: query a sqlite trace
// store produced by `timefold run --trace-db`.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List Call Log entries recorded by a previous run",
		Long: `Query the sqlite trace store a prior "timefold run --trace-db" wrote
into, listing calls ordered by (time, player_id, offset).

Example:
  timefold trace --db run.db --from 100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the sqlite trace database (required)")
	cmd.Flags().Int64Var(&opts.From, "from", 0, "only show calls at or after this logical time")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	st, err := trace.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening trace database", err)
	}
	defer st.Close()

	ctx := context.Background()
	calls, err := st.ReadCallsSince(ctx, opts.From)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading calls", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	return formatter.Success(traceResult{Calls: calls})
}

type traceResult struct {
	Calls []trace.CallRecord `json:"calls"`
}

func (r traceResult) String() string {
	s := fmt.Sprintf("%d call(s)\n", len(r.Calls))
	for _, c := range r.Calls {
		s += fmt.Sprintf("  [t=%d p=%d o=%d] %s %s\n", c.Time, c.PlayerID, c.Offset, c.Name, c.ArgsJSON)
	}
	return s
}
