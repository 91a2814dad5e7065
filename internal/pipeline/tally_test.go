package pipeline

import (
	"sync"
	"testing"
)

func TestSceneTallyAccumulatesAcrossScenes(t *testing.T) {
	tally := newSceneTally()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			tally.recordStart(idx)
			tally.recordSpawn(idx, 10+idx)
			tally.recordOutcome(idx, 20+idx, 0.9)
		}(i)
	}
	wg.Wait()

	if got := tally.totalFrames(); got != 8*10+(0+1+2+3+4+5+6+7) {
		t.Errorf("totalFrames = %d, want %d", got, 8*10+28)
	}

	outcome := tally.outcome(3)
	if outcome.Scene != 3 || outcome.CQ != 23 || outcome.Frames != 13 {
		t.Errorf("outcome(3) = %+v", outcome)
	}
}
