// Package pipeline wires every per-file collaborator into one run: decode
// → scene detection → stats processing → scene slicing → per-scene CQ
// search, all running concurrently over one shared frame buffer.
//
// Grounded on five82-drapto/internal/processing/chunked.go's top-level
// ProcessChunked shape (ctx, cfg, paths, ..., rep), rewritten around
// golang.org/x/sync/errgroup for concurrent stages instead of
// chunked.go's sequential detect-then-chunk-then-encode flow, since the
// decoder, detector, stats processor, and slicer genuinely run at once
// here, not in phases.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/five82/scenevq/internal/config"
	"github.com/five82/scenevq/internal/cq"
	"github.com/five82/scenevq/internal/credit"
	"github.com/five82/scenevq/internal/feeder"
	"github.com/five82/scenevq/internal/framebuffer"
	"github.com/five82/scenevq/internal/logging"
	"github.com/five82/scenevq/internal/procx"
	"github.com/five82/scenevq/internal/reporter"
	"github.com/five82/scenevq/internal/slicer"
	"github.com/five82/scenevq/internal/statsproc"
	"github.com/five82/scenevq/internal/util"
	"github.com/five82/scenevq/internal/workdir"
	"github.com/five82/scenevq/internal/y4m"
)

// Result summarizes one completed run. OutputFile is the directory
// holding the run's finished per-scene bitstreams (workdir.OutputDir).
type Result struct {
	Scenes     int
	Frames     uint64
	Elapsed    time.Duration
	OutputFile string
}

func encoderFor(codec config.Codec) (procx.Encoder, error) {
	switch codec {
	case config.CodecVP9:
		return procx.VP9Encoder{}, nil
	case config.CodecAV1:
		return procx.AV1Encoder{}, nil
	default:
		return nil, fmt.Errorf("pipeline: unsupported codec %q", codec)
	}
}

// Run drives one input file through decode, scene detection, and
// per-scene CQ-targeted compression to completion, reporting progress to
// rep as it goes. On success, every scene's encoded bitstream is moved
// out of the temporary work directory into a persistent output
// directory (workdir.OutputDir) before the work directory itself, and
// every scratch artifact left in it, is removed.
func Run(ctx context.Context, cfg *config.Config, rep reporter.Reporter) (*Result, error) {
	start := time.Now()
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid configuration: %w", err)
	}

	encoder, err := encoderFor(cfg.Codec)
	if err != nil {
		return nil, err
	}

	log := logging.Global().WithPrefix("pipeline")
	sysInfo := util.GetSystemInfo()
	log.Debug("host system info", "hostname", sysInfo.Hostname, "num_cpu", sysInfo.NumCPU, "os", sysInfo.OS, "arch", sysInfo.Arch)
	log.Info("starting run", "input", cfg.Input, "codec", cfg.Codec, "vmaf_target", cfg.VMAFTarget)

	rep.Banner(reporter.RunInfo{
		InputFile:  cfg.Input,
		Codec:      string(cfg.Codec),
		VMAFTarget: cfg.VMAFTarget,
		Encoders:   cfg.Encoders,
	})

	wd, err := workdir.New(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("pipeline: creating work directory: %w", err)
	}
	defer wd.Cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	decoder, err := procx.StartDecoder(ctx, cfg.VpyConfig)
	if err != nil {
		return nil, fmt.Errorf("pipeline: starting decoder: %w", err)
	}

	header, err := y4m.ReadHeader(decoder.Reader)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading stream header: %w", err)
	}
	log.Debug("decoded stream header", "width", header.Width, "height", header.Height)

	buf := framebuffer.New(cfg.BufferCapacity, header.CalcFrameSize())
	credits := credit.New()

	// Estimate memory per in-flight scene the way the teacher's permits
	// calculator does: YUV buffer for the scene's share of the frame
	// buffer, plus a fixed per-encoder-process overhead, capped to 50%
	// of available memory.
	const encoderProcessOverheadBytes = 1 << 30
	yuvMemBytes := uint64(header.CalcFrameSize()) * uint64(cfg.BufferCapacity)
	chunkMemBytes := yuvMemBytes + encoderProcessOverheadBytes

	encoderPermits := cfg.Encoders
	if memPermits := util.MaxPermitsForMemory(chunkMemBytes, 0.5); memPermits < encoderPermits {
		log.Info("clamping encoder admission to available memory",
			"configured", encoderPermits, "memory_permits", memPermits, "chunk_mem_bytes", chunkMemBytes)
		encoderPermits = memPermits
	}
	admission := semaphore.NewWeighted(int64(encoderPermits))
	history := cq.NewHistory()
	history.SetWindow(cfg.CQWindowMin, cfg.CQWindowMax)

	detector, err := procx.StartDetector(ctx, encoder, procx.Options{
		Threads: cfg.ThreadsPerWorker,
		LogFile: wd.KeyframeLogPath(),
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: starting detector: %w", err)
	}

	fd := feeder.New(buf, detector.Writer, credits, detector.CloseInput, detector.Wait)
	numMBs := statsproc.NumMacroblocks(header.Width, header.Height)

	openStats := func() (io.Reader, error) {
		return os.Open(wd.KeyframeLogPath())
	}
	events, statsErrc := statsproc.RunWithParams(ctx, openStats, credits, numMBs, statsproc.Params{
		CreditAwaitThreshold:   cfg.CreditAwaitThreshold,
		LookaheadSize:          cfg.StatsLookahead,
		ForcedKeyframeInterval: uint64(cfg.ForcedKeyframeInterval),
	})

	tally := newSceneTally()

	compress := slicer.NewCompressFunc(slicer.CompressionConfig{
		Encoder:             encoder,
		FastCPUUsed:         cfg.VMAFCPUUsed,
		SlowCPUUsed:         cfg.CPUUsed,
		Threads:             cfg.ThreadsPerWorker,
		VMAFTarget:          cfg.VMAFTarget,
		SecantTolerance:     cfg.SecantTolerance,
		SecantMaxIterations: cfg.SecantMaxIterations,
		Admission:           admission,
		History:             history,
		Paths: func(idx int) slicer.Paths {
			return slicer.Paths{
				Source:   wd.ScenePath(idx),
				StatsLog: wd.SceneLogPath(idx),
				Output:   wd.SceneOutputPath(idx),
			}
		},
		OnIteration: rep.SceneSearchIteration,
		OnComplete:  tally.recordOutcome,
	})

	s := slicer.New(buf, header, func(idx int) (io.WriteCloser, error) {
		tally.recordStart(idx)
		return os.Create(wd.ScenePath(idx))
	}, func(ctx context.Context, sceneIndex int) error {
		err := compress(ctx, sceneIndex)
		if err == nil {
			rep.SceneComplete(tally.outcome(sceneIndex))
		}
		return err
	})
	s.OnSceneSpawn = tally.recordSpawn

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var decoded uint64
		for {
			status, err := buf.ReadIn(gctx, decoder.Reader)
			if err != nil {
				return fmt.Errorf("pipeline: reading decoded frame: %w", err)
			}
			if status == y4m.Completed {
				return nil
			}
			decoded++
			rep.DecodeProgress(reporter.DecodeProgress{FramesDecoded: decoded})
		}
	})

	g.Go(func() error {
		return decoder.Wait()
	})

	g.Go(func() error {
		return fd.Run(gctx)
	})

	g.Go(func() error {
		if err := <-statsErrc; err != nil {
			return fmt.Errorf("pipeline: stats processing: %w", err)
		}
		return nil
	})

	scenes := 0
	g.Go(func() error {
		n, err := s.Run(gctx, events)
		scenes = n
		if err != nil {
			return fmt.Errorf("pipeline: slicing scenes: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	outDir := workdir.OutputDir(cfg.Input)
	if err := wd.FinalizeScenes(outDir, scenes); err != nil {
		return nil, fmt.Errorf("pipeline: finalizing scene outputs: %w", err)
	}

	var inputBytes, outputBytes uint64
	if fi, err := os.Stat(cfg.Input); err == nil {
		inputBytes = uint64(fi.Size())
	}
	for i := 0; i < scenes; i++ {
		if fi, err := os.Stat(filepath.Join(outDir, filepath.Base(wd.SceneOutputPath(i)))); err == nil {
			outputBytes += uint64(fi.Size())
		}
	}

	outcome := reporter.RunOutcome{
		TotalScenes: scenes,
		TotalFrames: tally.totalFrames(),
		Elapsed:     time.Since(start),
		OutputFile:  outDir,
		InputBytes:  inputBytes,
		OutputBytes: outputBytes,
	}
	log.Info("run complete", "scenes", outcome.TotalScenes, "frames", outcome.TotalFrames,
		"output_dir", outDir, "input_bytes", inputBytes, "output_bytes", outputBytes)
	rep.Done(outcome)

	return &Result{
		Scenes:     scenes,
		Frames:     outcome.TotalFrames,
		Elapsed:    outcome.Elapsed,
		OutputFile: outcome.OutputFile,
	}, nil
}
