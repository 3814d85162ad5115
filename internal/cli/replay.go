package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foldrun/timefold/internal/harness"
	"github.com/foldrun/timefold/internal/scenario"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Image string
}

// ReplayResult holds the outcome of running a scenario twice and
// comparing the two results.
type ReplayResult struct {
	Operations    int  `json:"operations"`
	Deterministic bool `json:"deterministic"`
}

// NewReplayCommand creates the replay command: run a scenario twice
// against independent engines and verify the two runs converge (spec
// §8, Determinism).
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario-dir>",
		Short: "Run a scenario twice and verify determinism",
		Long: `Compile a CUE scenario, run it against two independently
instantiated engines, and verify both runs converge to the same
final state and Call Log.

Exit codes:
  0 - both runs converged
  1 - the runs diverged
  2 - command error (bad scenario, missing image)

Example:
  timefold replay --image guest.wasm ./scenarios/checkout`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "path to the instrumented guest wasm image (required)")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runReplay(opts *ReplayOptions, dir string, cmd *cobra.Command) error {
	loaded, errs := scenario.Load(dir, scenario.LoadModeFailFast)
	if len(errs) > 0 {
		return WrapExitError(ExitCommandError, "failed to load scenario", errs[0])
	}

	fileCfg, err := LoadFileConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	ctx := context.Background()

	cfg, _, err := buildConfig(opts.Image, fileCfg, opts.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "setting up engine", err)
	}

	first, err := harness.Run(ctx, cfg, loaded.Operations)
	if err != nil {
		return WrapExitError(ExitFailure, "first run failed", err)
	}
	second, err := harness.Run(ctx, cfg, loaded.Operations)
	if err != nil {
		return WrapExitError(ExitFailure, "second run failed", err)
	}

	result := ReplayResult{Operations: len(loaded.Operations), Deterministic: first.Equal(second)}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result)
}

func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := Response{Status: "ok", Data: result}
	if !result.Deterministic {
		response.Status = "error"
		response.Error = &ResponseError{Code: "E_DETERMINISM", Message: "replay diverged"}
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}
	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay diverged")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Replayed %d operation(s)\n", result.Operations)
	if result.Deterministic {
		fmt.Fprintln(w, "Deterministic: both runs converged")
		return nil
	}
	fmt.Fprintln(w, "Non-deterministic: runs diverged")
	return NewExitError(ExitFailure, "replay diverged")
}
