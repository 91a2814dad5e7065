// Package scenevq provides a Go library for per-scene, VMAF-targeted
// VP9/AV1 transcoding.
//
// Basic usage:
//
//	runner, err := scenevq.New(
//	    scenevq.WithCodec(scenevq.CodecAV1),
//	    scenevq.WithVMAFTarget(0.95),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := runner.Run(ctx, "input.mkv", "input.vpy", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Encoded %d scenes, %d frames -> %s\n",
//	    result.Scenes, result.Frames, result.OutputFile) // a directory of .ivf scenes
package scenevq

import (
	"context"
	"os"
	"path/filepath"

	"github.com/five82/scenevq/internal/config"
	"github.com/five82/scenevq/internal/discovery"
	"github.com/five82/scenevq/internal/pipeline"
	"github.com/five82/scenevq/internal/reporter"
)

// Re-export the types a caller needs to build a Config without
// reaching into internal/config directly.
type Codec = config.Codec

const (
	CodecVP9 = config.CodecVP9
	CodecAV1 = config.CodecAV1
)

// Result is an alias of the pipeline's outcome, re-exported so callers
// never need to import internal/pipeline.
type Result = pipeline.Result

// Reporter is re-exported so callers can implement a custom one without
// importing internal/reporter.
type Reporter = reporter.Reporter

// Runner is the library's main entry point.
type Runner struct {
	config *config.Config
}

// Option configures a Runner's defaults before Run supplies the
// per-call input/vpy paths.
type Option func(*config.Config)

// New creates a Runner seeded with every pipeline-tuning default, then
// applies opts.
func New(opts ...Option) (*Runner, error) {
	logDir, err := defaultLogDir()
	if err != nil {
		return nil, err
	}

	cfg := config.NewConfig("", logDir)
	for _, opt := range opts {
		opt(cfg)
	}

	return &Runner{config: cfg}, nil
}

func defaultLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "state", "scenevq", "logs"), nil
}

// WithCodec selects the output bitstream format.
func WithCodec(c Codec) Option {
	return func(cfg *config.Config) { cfg.Codec = c }
}

// WithVMAFTarget sets the normalized [0,1] VMAF score every scene's CQ
// search targets.
func WithVMAFTarget(target float64) Option {
	return func(cfg *config.Config) { cfg.VMAFTarget = target }
}

// WithEncoders sets the process-wide encoder concurrency permit count.
func WithEncoders(n int) Option {
	return func(cfg *config.Config) { cfg.Encoders = n }
}

// WithCPUUsed sets the final second-pass encoder speed preset.
func WithCPUUsed(preset int) Option {
	return func(cfg *config.Config) { cfg.CPUUsed = preset }
}

// WithVMAFCPUUsed sets the fast-probe encoder speed preset used during
// CQ search.
func WithVMAFCPUUsed(preset int) Option {
	return func(cfg *config.Config) { cfg.VMAFCPUUsed = preset }
}

// Run transcodes one input file, decoded via the given VapourSynth
// script, reporting progress to rep if non-nil.
func (r *Runner) Run(ctx context.Context, input, vpyScript string, rep Reporter) (*Result, error) {
	cfg := *r.config
	cfg.Input = input
	cfg.VpyConfig = vpyScript

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return pipeline.Run(ctx, &cfg, rep)
}

// FindVideos finds video files in a directory, sorted alphabetically.
func FindVideos(dir string) ([]string, error) {
	return discovery.FindVideoFiles(dir)
}
