package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/rewriter"
)

// SetupOptions holds flags for the setup command.
type SetupOptions struct {
	*RootOptions
	RewriterModule string
	Output         string
}

// NewSetupCommand creates the setup command: run a raw, uninstrumented
// guest module through the Binary Rewriter (spec §4.1) and write the
// resulting instrumented image to disk, ready for `call`/`tick`/`run`/
// `reset`'s --image flag.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "setup <raw-guest>",
		Short: "Instrument a raw guest module via the Binary Rewriter",
		Long: `Round-trip a raw, uninstrumented guest wasm module through a
rewriter module's reserve_space/prepare_wasm/get_output_ptr/
get_output_len ABI (spec §6), producing an instrumented image whose
every store, memory growth, and global write is preceded by a host
callback (spec §4.1). Write the result with --output for later commands
to consume as --image.

Example:
  timefold setup --rewriter rewriter.wasm --output guest.instrumented.wasm raw-guest.wasm`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RewriterModule, "rewriter", "", "path to the rewriter wasm module implementing the reserve_space ABI (required)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "path to write the instrumented image to (required)")
	_ = cmd.MarkFlagRequired("rewriter")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runSetup(opts *SetupOptions, rawGuestPath string, cmd *cobra.Command) error {
	rewriterImage, err := os.ReadFile(opts.RewriterModule)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading rewriter module", err)
	}
	rawGuest, err := os.ReadFile(rawGuestPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading raw guest module", err)
	}

	ctx := context.Background()
	client, err := rewriter.NewClient(ctx, rewriterImage)
	if err != nil {
		return WrapExitError(ExitCommandError, "starting rewriter client", err)
	}
	defer client.Close(ctx)

	instrumented, err := client.Rewrite(ctx, rawGuest)
	if err != nil {
		return WrapExitError(ExitFailure, "rewrite failed", err)
	}

	if err := os.WriteFile(opts.Output, instrumented, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "writing instrumented image", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	return formatter.Success(setupResult{Output: opts.Output, Bytes: len(instrumented)})
}

type setupResult struct {
	Output string `json:"output"`
	Bytes  int    `json:"bytes"`
}

func (r setupResult) String() string {
	return fmt.Sprintf("output=%s bytes=%d", r.Output, r.Bytes)
}
