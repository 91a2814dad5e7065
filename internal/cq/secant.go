// Package cq implements the per-scene constant-quality (CQ) search of
// spec §4.5/§4.5.1: a secant-method root find over VMAF score minus
// target, plus a sorted CQ history used to seed future searches.
package cq

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Preset selects encoder speed for a probe: Fast for the initial two
// parallel guesses, Slow for every subsequent, higher-accuracy probe.
type Preset int

const (
	PresetFast Preset = iota
	PresetSlow
)

// EvalFunc runs one probe encode+VMAF evaluation for the given scene at
// the given CQ level and preset, returning the normalized [0,1] VMAF
// score.
type EvalFunc func(ctx context.Context, cq float64, preset Preset) (float64, error)

// Params bounds and seeds one scene's search.
type Params struct {
	Min, Max   float64 // absolute bounds
	X1, X2     float64 // initial guesses, X1 <= X2
	Target     float64 // VMAF target in [0,1]
	Scene      int
	Tolerance  float64 // default 0.005
	MaxIters   int     // default 10
}

// Iteration reports one secant step for progress reporting (§7
// "scene(iter): x1:vmaf1 x2:vmaf2 → next").
type Iteration struct {
	Scene int
	Iter  int
	X1    float64
	VMAF1 float64
	X2    float64
	VMAF2 float64
	Next  float64
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// Search runs the secant method described in §4.5.1 and returns the
// accepted CQ. onIteration, if non-nil, is called after every step.
func Search(ctx context.Context, eval EvalFunc, p Params, onIteration func(Iteration)) (float64, error) {
	tolerance := p.Tolerance
	if tolerance == 0 {
		tolerance = 0.005
	}
	maxIters := p.MaxIters
	if maxIters == 0 {
		maxIters = 10
	}

	x1, x2 := p.X1, p.X2
	initialGuessMin := p.X1

	// §4.5.1: evaluate F(x1) and F(x2) in parallel, each at a fast preset.
	var score1, score2 float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := eval(gctx, x1, PresetFast)
		if err != nil {
			return fmt.Errorf("evaluating initial x1=%v: %w", x1, err)
		}
		score1 = s
		return nil
	})
	g.Go(func() error {
		s, err := eval(gctx, x2, PresetFast)
		if err != nil {
			return fmt.Errorf("evaluating initial x2=%v: %w", x2, err)
		}
		score2 = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("cq: %w", err)
	}

	f1 := score1 - p.Target
	f2 := score2 - p.Target

	if math.Abs(f2) < math.Abs(f1) {
		// §9(a): the displaced point is, by a preserved quirk, reassigned
		// to the named initial_guess_min parameter rather than to the
		// generic "old x1" slot — harmless here since this swap only ever
		// runs once, before x1 has moved from its initial value, but kept
		// literal per the design note rather than "cleaned up" to swap
		// the slot directly.
		oldF1 := f1
		x1, f1 = x2, f2
		x2, f2 = initialGuessMin, oldF1
	}

	if onIteration != nil {
		onIteration(Iteration{Scene: p.Scene, Iter: 0, X1: x1, VMAF1: f1 + p.Target, X2: x2, VMAF2: f2 + p.Target, Next: x1})
	}

	for iter := 1; iter <= maxIters && math.Abs(f1) > tolerance; iter++ {
		if f1 == f2 {
			break
		}

		prevX1 := x1
		prevAtBoundary := prevX1 == p.Min || prevX1 == p.Max

		next := math.Floor(x1 - f1*(x1-x2)/(f1-f2))

		// Shift (x2, F2) <- (x1, F1) before x1 is overwritten.
		x2, f2 = x1, f1

		clamped := clamp(next, p.Min, p.Max)
		if clamped == prevX1 && prevAtBoundary {
			break
		}
		if clamped == x1 {
			break
		}

		x1 = clamped
		score, err := eval(ctx, x1, PresetSlow)
		if err != nil {
			return 0, fmt.Errorf("cq: evaluating x1=%v at iteration %d: %w", x1, iter, err)
		}
		f1 = score - p.Target

		if onIteration != nil {
			onIteration(Iteration{Scene: p.Scene, Iter: iter, X1: x1, VMAF1: score, X2: x2, VMAF2: f2 + p.Target, Next: next})
		}
	}

	if f1 > 0 {
		return x1, nil
	}
	return math.Max(x1-1, p.Min), nil
}
