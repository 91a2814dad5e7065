// Package procx wraps the external child-process collaborators named in
// spec §6: the first-pass/second-pass VP9 and AV1 encoders and the VMAF
// scorer. Flag lists are grounded on original_source/src/vp9_encoder.rs
// and av1_encoder.rs; process plumbing (stdio pipes, stderr parsing)
// follows the shape of five82-drapto/internal/ffmpeg/executor.go.
package procx

import (
	"context"
	"fmt"
	"os/exec"
)

// Options configures one encoder invocation.
type Options struct {
	CPUUsed int
	Threads int
	CQ      int
	LogFile string
	Input   string
	Output  string // "-" requests stdout piping for VMAF evaluation mode
}

// Encoder builds the first-pass and second-pass commands for one codec.
type Encoder interface {
	// FirstPass runs the analysis encode that produces the stats file
	// read by internal/statsproc.
	FirstPass(ctx context.Context, opts Options) *exec.Cmd
	// SecondPass runs the constant-quality encode at opts.CQ. When
	// opts.Output is "-", the encoder writes its bitstream to stdout
	// instead of a file, per spec §4.5.2's "piped-output mode".
	SecondPass(ctx context.Context, opts Options) *exec.Cmd
}

// VP9Encoder drives vpxenc, grounded on original_source's Vp9Encoder.
type VP9Encoder struct{}

func (VP9Encoder) FirstPass(ctx context.Context, opts Options) *exec.Cmd {
	args := []string{
		"--quiet",
		"--passes=2",
		"--pass=1",
		"-b", "10",
		"--profile=2",
		fmt.Sprintf("--threads=%d", opts.Threads),
		fmt.Sprintf("--fpf=%s", opts.LogFile),
		"--end-usage=q",
		"-o", "/dev/null",
		opts.Input,
	}
	return exec.CommandContext(ctx, "vpxenc", args...)
}

func (VP9Encoder) SecondPass(ctx context.Context, opts Options) *exec.Cmd {
	args := []string{
		fmt.Sprintf("--cq-level=%d", opts.CQ),
		fmt.Sprintf("--cpu-used=%d", opts.CPUUsed),
		fmt.Sprintf("--fpf=%s", opts.LogFile),
		"--quiet",
		"--passes=2",
		"--pass=2",
		"--profile=2",
		"--good",
		"--lag-in-frames=25",
		"--kf-max-dist=250",
		"--auto-alt-ref=1",
		"--arnr-strength=1",
		"--arnr-maxframes=7",
		"--enable-tpl=1",
		fmt.Sprintf("--threads=%d", opts.Threads),
		"-b", "10",
		"--end-usage=q",
		"--ivf",
		"-o", opts.Output,
		opts.Input,
	}
	return exec.CommandContext(ctx, "vpxenc", args...)
}

// AV1Encoder drives aomenc, grounded on original_source's Av1Encoder.
type AV1Encoder struct{}

func (AV1Encoder) FirstPass(ctx context.Context, opts Options) *exec.Cmd {
	args := []string{
		"--quiet",
		"--good",
		"--passes=2",
		"--pass=1",
		"-b", "10",
		"--kf-max-dist=250",
		"--lag-in-frames=48",
		"--enable-fwd-kf=1",
		"--aq-mode=1",
		"--enable-qm=1",
		"--enable-keyframe-filtering=2",
		"--deltaq-mode=0",
		fmt.Sprintf("--threads=%d", opts.Threads),
		fmt.Sprintf("--fpf=%s", opts.LogFile),
		"--end-usage=q",
		"-o", "/dev/null",
		opts.Input,
	}
	return exec.CommandContext(ctx, "aomenc", args...)
}

func (AV1Encoder) SecondPass(ctx context.Context, opts Options) *exec.Cmd {
	args := []string{
		fmt.Sprintf("--cq-level=%d", opts.CQ),
		fmt.Sprintf("--cpu-used=%d", opts.CPUUsed),
		fmt.Sprintf("--fpf=%s", opts.LogFile),
		"--quiet",
		"--good",
		"--passes=2",
		"--pass=2",
		"--lag-in-frames=48",
		"--enable-fwd-kf=1",
		"--aq-mode=1",
		"--enable-qm=1",
		"--enable-keyframe-filtering=2",
		"--deltaq-mode=0",
		"--kf-max-dist=250",
		"--arnr-strength=0",
		fmt.Sprintf("--threads=%d", opts.Threads),
		"-b", "10",
		"--end-usage=q",
		"--ivf",
		"-o", opts.Output,
		opts.Input,
	}
	return exec.CommandContext(ctx, "aomenc", args...)
}
