package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/ir"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Image        string
	MemoryImage  string
	CurrentTime  int64
	NextFireTime int64
}

// NewResetCommand creates the reset command: State Reset (spec §4.7)
// against a freshly instantiated guest, then reports the resulting
// memory hash so a caller can confirm the replacement image landed.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the guest's memory with a replacement memory image",
		Long: `Replace a freshly instantiated guest's linear memory with a replacement
memory image, clearing the Journal and Call Log (spec §4.7). The guest is
reinstantiated only when the image needs fewer pages than it has.

Example:
  timefold reset --image guest.wasm --memory-image snapshot.bin --current-time 100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "path to the instrumented guest wasm image (required)")
	cmd.Flags().StringVar(&opts.MemoryImage, "memory-image", "", "path to the replacement memory image (required)")
	cmd.Flags().Int64Var(&opts.CurrentTime, "current-time", 0, "new current time")
	cmd.Flags().Int64Var(&opts.NextFireTime, "next-fire-time", 0, "new next_fire_time")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("memory-image")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
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

	image, err := os.ReadFile(opts.MemoryImage)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading memory image", err)
	}

	if err := e.Reset(ctx, image, opts.CurrentTime, opts.NextFireTime); err != nil {
		return WrapExitError(ExitFailure, "reset failed", err)
	}

	hash := ir.MemoryImageHash(e.MemorySnapshot(), nil)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	formatter.VerboseLog("trace_id=%s", traceID)
	return formatter.Success(resetResult{TraceID: traceID, MemoryHash: hash})
}

type resetResult struct {
	TraceID    string `json:"trace_id"`
	MemoryHash string `json:"memory_hash"`
}

func (r resetResult) String() string {
	return fmt.Sprintf("trace_id=%s memory_hash=%s", r.TraceID, r.MemoryHash)
}
