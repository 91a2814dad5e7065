// Package config provides configuration types and defaults for scenevq.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/five82/scenevq/internal/errorsx"
	"github.com/five82/scenevq/internal/util"
)

// Codec selects the output bitstream format.
type Codec string

const (
	CodecVP9 Codec = "vp9"
	CodecAV1 Codec = "av1"
)

// Default constants for pipeline tuning (spec §3-§5).
const (
	// DefaultBufferCapacity is the frame buffer's resident-frame cap K
	// (§3, §5 back-pressure).
	DefaultBufferCapacity = 129

	// DefaultStatsLookahead is the stats processor's lookahead window
	// size (§4.3 step 2).
	DefaultStatsLookahead = 16

	// DefaultForcedKeyframeInterval forces a keyframe after this many
	// frames without one (§4.3.1).
	DefaultForcedKeyframeInterval = 1000

	// DefaultCreditAwaitThreshold is the credit balance the stats
	// processor awaits before opening the stats file (§4.3 step 1).
	DefaultCreditAwaitThreshold = 96

	// DefaultCQWindowMin and DefaultCQWindowMax bound a scene's secant
	// search below the 10-entry history threshold (§4.5 step 3).
	DefaultCQWindowMin = 20
	DefaultCQWindowMax = 40

	// DefaultSecantTolerance and DefaultSecantMaxIterations bound the
	// per-scene CQ search (§4.5.1).
	DefaultSecantTolerance    = 0.005
	DefaultSecantMaxIterations = 10

	// DefaultEncoderAdmission is the process-wide encoder concurrency
	// cap (§5), used when not overridden by memory sizing.
	DefaultEncoderAdmission = 12

	// DefaultCPUUsed and DefaultVMAFCPUUsed are the slow/fast encoder
	// speed presets used outside an explicit user override.
	DefaultCPUUsed     = 4
	DefaultVMAFCPUUsed = 6

	// DefaultVMAFTarget is the normalized [0,1] VMAF target when unset.
	DefaultVMAFTarget = 0.95

	// DefaultThreadsPerWorker mirrors the teacher's per-worker thread
	// budget for the external encoder processes.
	DefaultThreadsPerWorker = 2
)

// Config holds all configuration for one scenevq run.
type Config struct {
	// CLI surface (§6).
	Input      string // source media path
	VpyConfig  string // VapourSynth script driving the decoder
	Encoders   int    // process-wide encoder admission permits
	CPUUsed    int    // final second-pass encoder speed preset
	VMAFCPUUsed int   // fast-probe encoder speed preset used during search
	VMAFTarget float64 // normalized [0,1]
	Codec      Codec

	LogDir  string
	Verbose bool

	// Pipeline tuning, overridable via YAML but not CLI flags.
	BufferCapacity         int
	StatsLookahead         int
	ForcedKeyframeInterval int
	CreditAwaitThreshold   int
	CQWindowMin            int
	CQWindowMax            int
	SecantTolerance        float64
	SecantMaxIterations    int
	ThreadsPerWorker       int
}

// NewConfig returns a Config seeded with every pipeline-tuning default,
// for the given input and log directory. ThreadsPerWorker is derived
// from the host's physical core count split across the default encoder
// admission count, falling back to DefaultThreadsPerWorker if core
// detection fails.
func NewConfig(input, logDir string) *Config {
	return &Config{
		Input:       input,
		LogDir:      logDir,
		Encoders:    DefaultEncoderAdmission,
		CPUUsed:     DefaultCPUUsed,
		VMAFCPUUsed: DefaultVMAFCPUUsed,
		VMAFTarget:  DefaultVMAFTarget,
		Codec:       CodecAV1,

		BufferCapacity:         DefaultBufferCapacity,
		StatsLookahead:         DefaultStatsLookahead,
		ForcedKeyframeInterval: DefaultForcedKeyframeInterval,
		CreditAwaitThreshold:   DefaultCreditAwaitThreshold,
		CQWindowMin:            DefaultCQWindowMin,
		CQWindowMax:            DefaultCQWindowMax,
		SecantTolerance:        DefaultSecantTolerance,
		SecantMaxIterations:    DefaultSecantMaxIterations,
		ThreadsPerWorker:       threadsPerWorkerDefault(),
	}
}

// threadsPerWorkerDefault splits the host's physical cores evenly across
// DefaultEncoderAdmission concurrent encoder workers, per §5's per-worker
// thread budget.
func threadsPerWorkerDefault() int {
	cores := util.PhysicalCores()
	if cores <= 0 {
		return DefaultThreadsPerWorker
	}
	if t := cores / DefaultEncoderAdmission; t > 0 {
		return t
	}
	return 1
}

// LoadFile reads a YAML config file and overlays it onto a
// default-seeded Config for input. CLI flags are expected to override
// the result afterward, matching the teacher's preset-then-override
// pattern in cmd/drapto/main.go.
func LoadFile(path, input, logDir string) (*Config, error) {
	cfg := NewConfig(input, logDir)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorsx.NewIOError(fmt.Sprintf("reading config file %q", path), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errorsx.NewParseError(fmt.Sprintf("parsing config file %q", path), err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: input path is required", ErrMissingInput)
	}
	if c.Codec != CodecVP9 && c.Codec != CodecAV1 {
		return fmt.Errorf("%w: got %q", ErrInvalidCodec, c.Codec)
	}
	if c.VMAFTarget <= 0 || c.VMAFTarget > 1 {
		return fmt.Errorf("%w: vmaf target must be in (0, 1], got %g", ErrInvalidVMAFTarget, c.VMAFTarget)
	}
	if c.Encoders < 1 {
		return fmt.Errorf("%w: encoders must be at least 1, got %d", ErrInvalidEncoders, c.Encoders)
	}
	if c.BufferCapacity < 1 {
		return fmt.Errorf("%w: buffer capacity must be at least 1, got %d", ErrInvalidBufferCapacity, c.BufferCapacity)
	}
	if c.CQWindowMin <= 0 || c.CQWindowMax <= c.CQWindowMin {
		return fmt.Errorf("%w: got [%d, %d]", ErrInvalidCQWindow, c.CQWindowMin, c.CQWindowMax)
	}
	if c.SecantTolerance <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidSecantTolerance, c.SecantTolerance)
	}
	if c.SecantMaxIterations < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSecantMaxIterations, c.SecantMaxIterations)
	}
	return nil
}
