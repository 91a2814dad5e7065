package slicer

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/semaphore"

	"github.com/five82/scenevq/internal/cq"
	"github.com/five82/scenevq/internal/errorsx"
	"github.com/five82/scenevq/internal/procx"
)

// Paths resolves the filesystem locations a compression task reads from
// and writes to for one scene, grounded on spec §6's temporary-artifact
// layout.
type Paths struct {
	Source   string // the scene's .y4m source, written by Slicer.Run
	StatsLog string // the scene's own first-pass stats log
	Output   string // the final muxable bitstream for this scene
}

// PathFunc resolves Paths for a scene index.
type PathFunc func(sceneIndex int) Paths

// CompressionConfig parameterizes the per-scene compression task of
// spec §4.5.
type CompressionConfig struct {
	Encoder     procx.Encoder
	FastCPUUsed int // preset for the two initial secant probes
	SlowCPUUsed int // preset for every later probe and the final encode
	Threads     int
	VMAFTarget  float64 // normalized to [0, 1]

	// SecantTolerance and SecantMaxIterations bound the per-scene search
	// (§4.5.1). Zero values fall back to cq.Search's own defaults.
	SecantTolerance     float64
	SecantMaxIterations int

	// Admission is the process-wide encoder concurrency semaphore of
	// §5 (default 12 permits). Acquired 2-at-a-time per §4.5 step 1.
	Admission *semaphore.Weighted
	History   *cq.History
	Paths     PathFunc

	OnIteration func(cq.Iteration)

	// OnComplete, when set, is called after a scene's final second pass
	// succeeds, reporting the CQ the search accepted and the VMAF score
	// it scored at that CQ. The VMAF value is the last iteration's X1/X2
	// score that matched the accepted CQ, since cq.Search itself returns
	// only the chosen value.
	OnComplete    func(sceneIndex int, chosenCQ int, vmaf float64)
	KeepArtifacts bool // skip deleting Source/StatsLog after success
}

// NewCompressFunc adapts a CompressionConfig into the CompressFunc the
// Slicer spawns at every scene boundary, running spec §4.5 steps 1-7 in
// order.
func NewCompressFunc(cfg CompressionConfig) CompressFunc {
	return func(ctx context.Context, sceneIndex int) error {
		paths := cfg.Paths(sceneIndex)

		// Step 1: acquire 2 permits, held through the first pass and the
		// full secant search.
		if err := cfg.Admission.Acquire(ctx, 2); err != nil {
			return fmt.Errorf("slicer: acquiring encoder admission for scene %d: %w", sceneIndex, err)
		}

		// Step 2: first pass.
		firstPass := cfg.Encoder.FirstPass(ctx, procx.Options{
			Threads: cfg.Threads,
			LogFile: paths.StatsLog,
			Input:   paths.Source,
		})
		if err := firstPass.Run(); err != nil {
			cfg.Admission.Release(2)
			return errorsx.NewChildProcessError(firstPass.Path, errorsx.StageNonZeroExit, err)
		}

		// Step 3: initial CQ window, warm-started from history.
		lo, hi := cfg.History.Window()

		eval := func(ctx context.Context, x float64, preset cq.Preset) (float64, error) {
			cpuUsed := cfg.SlowCPUUsed
			if preset == cq.PresetFast {
				cpuUsed = cfg.FastCPUUsed
			}
			encCmd := cfg.Encoder.SecondPass(ctx, procx.Options{
				CPUUsed: cpuUsed,
				Threads: cfg.Threads,
				CQ:      int(x),
				LogFile: paths.StatsLog,
				Input:   paths.Source,
				Output:  "-",
			})
			return procx.ScoreVMAF(ctx, encCmd, paths.Source)
		}

		// Step 4: secant search. vmafAt tracks the most recent score seen
		// for each probed CQ so the accepted CQ's score can be recovered
		// for OnComplete without re-running the search.
		vmafAt := make(map[int]float64)
		onIteration := func(it cq.Iteration) {
			vmafAt[int(it.X1)] = it.VMAF1
			vmafAt[int(it.X2)] = it.VMAF2
			if cfg.OnIteration != nil {
				cfg.OnIteration(it)
			}
		}

		chosen, err := cq.Search(ctx, eval, cq.Params{
			Min: 10, Max: 60,
			X1: lo, X2: hi,
			Target:    cfg.VMAFTarget,
			Scene:     sceneIndex,
			Tolerance: cfg.SecantTolerance,
			MaxIters:  cfg.SecantMaxIterations,
		}, onIteration)
		if err != nil {
			cfg.Admission.Release(2)
			return fmt.Errorf("slicer: CQ search for scene %d: %w", sceneIndex, err)
		}

		// Step 5: release one permit, record the accepted CQ.
		cfg.Admission.Release(1)
		cfg.History.Insert(int(chosen))

		// Step 6: final second pass at the accepted CQ, holding the one
		// remaining permit.
		secondPass := cfg.Encoder.SecondPass(ctx, procx.Options{
			CPUUsed: cfg.SlowCPUUsed,
			Threads: cfg.Threads,
			CQ:      int(chosen),
			LogFile: paths.StatsLog,
			Input:   paths.Source,
			Output:  paths.Output,
		})
		if err := secondPass.Run(); err != nil {
			cfg.Admission.Release(1)
			return errorsx.NewChildProcessError(secondPass.Path, errorsx.StageNonZeroExit, err)
		}

		// Step 7: release the final permit and clean up scene artifacts.
		cfg.Admission.Release(1)

		if !cfg.KeepArtifacts {
			os.Remove(paths.Source)
			os.Remove(paths.StatsLog)
		}

		if cfg.OnComplete != nil {
			cfg.OnComplete(sceneIndex, int(chosen), vmafAt[int(chosen)])
		}

		return nil
	}
}
