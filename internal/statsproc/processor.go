package statsproc

import (
	"context"
	"fmt"
	"io"

	"github.com/five82/scenevq/internal/credit"
	"github.com/five82/scenevq/internal/firstpass"
)

// CreditAwaitThreshold is how many credits the processor awaits from the
// feeder before opening the stats file: enough for the detector's
// lookahead window plus a safety margin (§4.3 step 1).
const CreditAwaitThreshold = 96

// LookaheadSize is the number of records kept ahead of current (§4.3
// step 2).
const LookaheadSize = 16

// KeyframeEvent reports whether a decoded frame starts a new scene.
type KeyframeEvent struct {
	FrameNum   uint64
	IsKeyframe bool
}

// OpenFunc lazily opens the detector's stats file. It is called once
// credits have been awaited, matching the ordering in spec §4.3 step 1.
type OpenFunc func() (io.Reader, error)

// Params tunes Run's credit pacing, lookahead depth, and forced-keyframe
// interval. A zero Params falls back to the package defaults.
type Params struct {
	CreditAwaitThreshold   int
	LookaheadSize          int
	ForcedKeyframeInterval uint64
}

func (p Params) withDefaults() Params {
	if p.CreditAwaitThreshold <= 0 {
		p.CreditAwaitThreshold = CreditAwaitThreshold
	}
	if p.LookaheadSize <= 0 {
		p.LookaheadSize = LookaheadSize
	}
	if p.ForcedKeyframeInterval <= 0 {
		p.ForcedKeyframeInterval = forcedKeyframeInterval
	}
	return p
}

// Run reads first-pass records from the stream opened by open and emits
// one KeyframeEvent per record on the returned channel, in strictly
// increasing FrameNum order (§8 "monotone events"). numMBs comes from
// statsproc.NumMacroblocks applied to the stream header dimensions. It
// uses the package's default pacing and lookahead; use RunWithParams to
// override them from config.Config.
//
// The returned error channel receives at most one error; a non-nil error
// is fatal for the current file per spec §7 (stats I/O, not clean EOF).
func Run(ctx context.Context, open OpenFunc, credits *credit.Counter, numMBs int) (<-chan KeyframeEvent, <-chan error) {
	return RunWithParams(ctx, open, credits, numMBs, Params{})
}

// RunWithParams is Run with caller-supplied pacing and lookahead depth.
func RunWithParams(ctx context.Context, open OpenFunc, credits *credit.Counter, numMBs int, params Params) (<-chan KeyframeEvent, <-chan error) {
	params = params.withDefaults()
	events := make(chan KeyframeEvent, params.LookaheadSize)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errc)

		if err := credits.Acquire(ctx, int64(params.CreditAwaitThreshold)); err != nil {
			errc <- fmt.Errorf("statsproc: awaiting initial credits: %w", err)
			return
		}

		r, err := open()
		if err != nil {
			errc <- fmt.Errorf("statsproc: opening stats stream: %w", err)
			return
		}

		current, err := firstpass.ReadRecord(r)
		if err == io.EOF {
			return
		}
		if err != nil {
			errc <- fmt.Errorf("statsproc: reading first record: %w", err)
			return
		}

		lookahead := make([]*firstpass.Record, 0, params.LookaheadSize)
		for i := 0; i < params.LookaheadSize; i++ {
			rec, err := firstpass.ReadRecord(r)
			if err == io.EOF {
				break
			}
			if err != nil {
				errc <- fmt.Errorf("statsproc: filling lookahead: %w", err)
				return
			}
			lookahead = append(lookahead, rec)
		}

		var last *firstpass.Record
		var sinceLastKeyframe uint64
		var frameNum uint64

		for {
			if err := credits.Acquire(ctx, 1); err != nil {
				errc <- fmt.Errorf("statsproc: awaiting credit: %w", err)
				return
			}

			isKeyframe := EvaluateWithInterval(current, last, lookahead, sinceLastKeyframe, numMBs, params.ForcedKeyframeInterval)
			events <- KeyframeEvent{FrameNum: frameNum, IsKeyframe: isKeyframe}

			if isKeyframe {
				sinceLastKeyframe = 0
			} else {
				sinceLastKeyframe++
			}
			frameNum++

			if len(lookahead) == 0 {
				// No more records buffered: current was the last one. Drain is
				// trivial since there is nothing left to emit.
				return
			}

			last = current
			current = lookahead[0]
			lookahead = lookahead[1:]

			rec, err := firstpass.ReadRecord(r)
			switch err {
			case nil:
				lookahead = append(lookahead, rec)
			case io.EOF:
				// Drain: emit non-keyframe events for current and every
				// remaining lookahead record, then stop (§4.3 step 4).
				for {
					if cerr := credits.Acquire(ctx, 1); cerr != nil {
						errc <- fmt.Errorf("statsproc: awaiting credit during drain: %w", cerr)
						return
					}
					events <- KeyframeEvent{FrameNum: frameNum, IsKeyframe: false}
					frameNum++
					if len(lookahead) == 0 {
						return
					}
					current = lookahead[0]
					lookahead = lookahead[1:]
				}
			default:
				errc <- fmt.Errorf("statsproc: reading record: %w", err)
				return
			}
		}
	}()

	return events, errc
}
