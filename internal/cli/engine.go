package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/foldrun/timefold/internal/core"
)

// slogDiagnostics adapts vmhost.DiagnosticSink to log/slog, tagging
// every line with the invoking command's trace ID so external_log and
// external_error output from a guest can be correlated with a single
// CLI invocation in aggregated logs.
type slogDiagnostics struct {
	logger  *slog.Logger
	traceID string
}

func (s slogDiagnostics) Log(msg string) {
	s.logger.Info("guest log", "trace_id", s.traceID, "message", msg)
}

func (s slogDiagnostics) Error(msg string) {
	s.logger.Error("guest error", "trace_id", s.traceID, "message", msg)
}

// buildConfig loads a guest image from imagePath and applies fileCfg,
// returning a core.Config ready for Setup plus the trace ID assigned
// to its diagnostics.
func buildConfig(imagePath string, fileCfg *FileConfig, verbose bool) (core.Config, string, error) {
	if imagePath == "" {
		return core.Config{}, "", fmt.Errorf("--image is required")
	}
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return core.Config{}, "", fmt.Errorf("reading guest image %q: %w", imagePath, err)
	}

	traceID := traceIDGen.Generate()
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg := fileCfg.EngineConfig(image, slogDiagnostics{logger: logger, traceID: traceID})
	return cfg, traceID, nil
}

// buildEngine loads a guest image from imagePath and applies fileCfg,
// returning a ready Engine plus the trace ID assigned to its
// diagnostics.
func buildEngine(ctx context.Context, imagePath string, fileCfg *FileConfig, verbose bool) (*core.Engine, string, error) {
	cfg, traceID, err := buildConfig(imagePath, fileCfg, verbose)
	if err != nil {
		return nil, "", err
	}
	e, err := core.Setup(ctx, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("engine setup: %w", err)
	}
	return e, traceID, nil
}
