// Package statsproc reads first-pass stats records with a lookahead window
// and emits keyframe events, per spec §4.3/§4.3.1.
package statsproc

import (
	"math"

	"github.com/five82/scenevq/internal/firstpass"
)

const forcedKeyframeInterval = 1000

// safeDiv guards against division by zero the way the heuristic specifies:
// any denominator x is replaced by x ± 1e-6.
func safeDiv(num, denom float64) float64 {
	if denom >= 0 {
		denom += 1e-6
	} else {
		denom -= 1e-6
	}
	return num / denom
}

// secondRefThreshold returns T2(f), linearly ramping from 0.085 at 0
// frames to 0.120 at >= 32 frames since the last keyframe.
func secondRefThreshold(framesSinceKeyframe uint64) float64 {
	f := framesSinceKeyframe
	if f > 31 {
		f = 31
	}
	return 0.085 + float64(f)/31.0*0.035
}

// NumMacroblocks computes the macroblock count from stream dimensions:
// align width/height up to a multiple of 8, shift to mi-units, then apply
// the mi_cols/mi_rows formula.
func NumMacroblocks(width, height uint32) int {
	alignedW := (width + 7) &^ 7
	alignedH := (height + 7) &^ 7
	miCols := alignedW >> 2
	miRows := alignedH >> 2
	return int((miCols+2)>>2) * int((miRows+2)>>2)
}

// Evaluate decides whether current is a scene-boundary keyframe, per
// §4.3.1. lookahead must contain at least the next 16 records when
// available (fewer near end of stream); current is not included in
// lookahead. sinceLastKeyframe counts frames since the previous keyframe,
// not including current.
func Evaluate(current, last *firstpass.Record, lookahead []*firstpass.Record, sinceLastKeyframe uint64, numMBs int) bool {
	return EvaluateWithInterval(current, last, lookahead, sinceLastKeyframe, numMBs, forcedKeyframeInterval)
}

// EvaluateWithInterval is Evaluate with a caller-supplied forced-keyframe
// interval, letting Run honor config.Config.ForcedKeyframeInterval instead
// of the package default.
func EvaluateWithInterval(current, last *firstpass.Record, lookahead []*firstpass.Record, sinceLastKeyframe uint64, numMBs int, forcedInterval uint64) bool {
	if sinceLastKeyframe >= forcedInterval {
		return true
	}

	if last == nil {
		return false
	}

	if !viable(current, last, lookahead, sinceLastKeyframe) {
		return false
	}

	return confirmWithBoost(lookahead, numMBs)
}

func viable(current, last *firstpass.Record, lookahead []*firstpass.Record, sinceLastKeyframe uint64) bool {
	if sinceLastKeyframe < 3 {
		return false
	}
	if len(lookahead) == 0 {
		return false
	}
	next := lookahead[0]

	t2 := secondRefThreshold(sinceLastKeyframe)
	if current.PcntSecondRef >= t2 || next.PcntSecondRef >= t2 {
		return false
	}

	if current.PcntInter < 0.05 {
		return true
	}

	if slideTransition(current, last, next) {
		return true
	}

	return intraDominantWithChange(current, last, next)
}

func slideTransition(current, last, next *firstpass.Record) bool {
	return current.IntraError < 1.5*current.CodedError &&
		current.CodedError > 5.0*last.CodedError &&
		current.CodedError > 5.0*next.CodedError
}

func intraDominantWithChange(current, last, next *firstpass.Record) bool {
	pcntIntra := 1 - current.PcntInter
	mpi := current.PcntInter - current.PcntNeutral

	if !(pcntIntra > 0.25 && pcntIntra > 2*mpi) {
		return false
	}
	if safeDiv(current.IntraError, current.CodedError) >= 1.9 {
		return false
	}

	deltaCoded := math.Abs(current.CodedError-last.CodedError) / safeAbsDenom(current.CodedError)
	deltaIntra := math.Abs(current.IntraError-last.IntraError) / safeAbsDenom(current.IntraError)
	nextRatio := safeDiv(next.IntraError, next.CodedError)

	return deltaCoded > 0.4 || deltaIntra > 0.4 || nextRatio > 3.5
}

func safeAbsDenom(x float64) float64 {
	if x >= 0 {
		return x + 1e-6
	}
	return x - 1e-6
}

// confirmWithBoost applies the 16-frame lookahead boost score and accepts
// iff the final boost exceeds 30 and the loop advanced at least 4 frames.
func confirmWithBoost(lookahead []*firstpass.Record, numMBs int) bool {
	decay := 1.0
	boost := 0.0
	old := 0.0
	advanced := 0

	n := len(lookahead)
	if n > 16 {
		n = 16
	}

	for i := 0; i < n; i++ {
		f := lookahead[i]

		ii := 12.5 * safeDiv(f.IntraError, f.CodedError)
		if ii > 128 {
			ii = 128
		}

		var interTerm float64
		if f.PcntInter > 0.85 {
			interTerm = f.PcntInter
		} else {
			interTerm = (0.85 + f.PcntInter) / 2
		}
		decay *= interTerm
		boost += decay * ii

		if f.PcntInter < 0.05 {
			break
		}
		if ii < 1.5 {
			break
		}
		if f.PcntInter-f.PcntNeutral < 0.20 && ii < 3.0 {
			break
		}
		if boost-old < 3.0 {
			break
		}
		if numMBs > 0 && f.IntraError < 200.0/float64(numMBs) {
			break
		}

		old = boost
		advanced++
	}

	return boost > 30 && advanced >= 4
}
