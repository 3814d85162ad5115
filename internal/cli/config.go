package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/foldrun/timefold/internal/core"
	"github.com/foldrun/timefold/internal/vmhost"
)

// FileConfig is the shape of a timefold.yaml config file: the engine
// knobs that are awkward to repeat as flags on every invocation
// (recurring-tick interval, replay budget, peer-order strictness).
type FileConfig struct {
	Interval         int64  `yaml:"interval"`
	NextFireTime     int64  `yaml:"next_fire_time"`
	TickFunctionName string `yaml:"tick_function_name"`
	MaxReplay        int    `yaml:"max_replay"`
	RejectOutOfOrder bool   `yaml:"reject_out_of_order"`
}

// LoadFileConfig reads and parses a timefold.yaml config file. An
// empty path returns a zero-value FileConfig rather than an error,
// since every field it sets has a sensible engine default.
func LoadFileConfig(path string) (*FileConfig, error) {
	if path == "" {
		return &FileConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return &cfg, nil
}

// EngineConfig builds a core.Config from a FileConfig plus the guest
// image bytes, applying the CLI's chosen diagnostic sink.
func (c *FileConfig) EngineConfig(image []byte, diagnostics vmhost.DiagnosticSink) core.Config {
	mode := core.PeerOrderIgnore
	if c.RejectOutOfOrder {
		mode = core.PeerOrderReject
	}
	return core.Config{
		Image:            image,
		Diagnostics:      diagnostics,
		Interval:         c.Interval,
		NextFireTime:     c.NextFireTime,
		TickFunctionName: c.TickFunctionName,
		PeerOrderMode:    mode,
		MaxReplay:        c.MaxReplay,
	}
}
