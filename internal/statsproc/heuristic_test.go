package statsproc

import (
	"math"
	"testing"

	"github.com/five82/scenevq/internal/firstpass"
)

func flatRecord(frame float64) *firstpass.Record {
	return &firstpass.Record{
		Frame:         frame,
		IntraError:    10,
		CodedError:    10,
		PcntInter:     0.9,
		PcntSecondRef: 0.01,
		PcntNeutral:   0.1,
	}
}

func TestForcedKeyframeAt1000(t *testing.T) {
	var last *firstpass.Record
	var sinceLastKeyframe uint64
	numMBs := NumMacroblocks(640, 480)

	firedAt := -1
	for i := 0; i < 1001; i++ {
		current := flatRecord(float64(i))
		lookahead := []*firstpass.Record{flatRecord(float64(i + 1))}

		isKey := Evaluate(current, last, lookahead, sinceLastKeyframe, numMBs)
		if isKey {
			if firedAt != -1 {
				t.Fatalf("keyframe fired twice: at %d and %d", firedAt, i)
			}
			firedAt = i
			sinceLastKeyframe = 0
		} else {
			sinceLastKeyframe++
		}
		last = current
	}

	if firedAt != 1000 {
		t.Fatalf("forced keyframe fired at %d, want 1000", firedAt)
	}
}

func TestEvaluateNoLastNeverFires(t *testing.T) {
	current := flatRecord(0)
	lookahead := []*firstpass.Record{flatRecord(1)}
	if Evaluate(current, nil, lookahead, 500, NumMacroblocks(640, 480)) {
		t.Fatal("Evaluate with nil last fired a non-forced keyframe")
	}
}

func TestSecondRefThresholdRamp(t *testing.T) {
	if got := secondRefThreshold(0); got != 0.085 {
		t.Errorf("secondRefThreshold(0) = %v, want 0.085", got)
	}
	if got := secondRefThreshold(32); math.Abs(got-0.120) > 1e-12 {
		t.Errorf("secondRefThreshold(32) = %v, want 0.120", got)
	}
}

func TestNumMacroblocks640x480(t *testing.T) {
	got := NumMacroblocks(640, 480)
	if got <= 0 {
		t.Fatalf("NumMacroblocks = %d, want positive", got)
	}
}

func TestSlideTransitionFires(t *testing.T) {
	last := flatRecord(0)
	last.CodedError = 10

	current := flatRecord(1)
	current.IntraError = 5
	current.CodedError = 100
	current.PcntSecondRef = 0.01

	next := flatRecord(2)
	next.CodedError = 10
	next.PcntSecondRef = 0.01

	if !slideTransition(current, last, next) {
		t.Fatal("expected slide transition to fire")
	}

	ok := viable(current, last, []*firstpass.Record{next}, 10)
	if !ok {
		t.Fatal("expected viable() to accept slide transition candidate")
	}
}
