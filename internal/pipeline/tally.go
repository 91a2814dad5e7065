package pipeline

import (
	"sync"
	"time"

	"github.com/five82/scenevq/internal/reporter"
)

// sceneTally collects the per-scene facts (start time, frame count,
// accepted CQ, VMAF score) that arrive from several independent
// goroutines — slicer.Slicer's own loop and every concurrently running
// compression task — and assembles them into a reporter.SceneOutcome
// once a scene finishes.
type sceneTally struct {
	mu     sync.Mutex
	start  map[int]time.Time
	frames map[int]int
	cq     map[int]int
	vmaf   map[int]float64
	total  uint64
}

func newSceneTally() *sceneTally {
	return &sceneTally{
		start:  make(map[int]time.Time),
		frames: make(map[int]int),
		cq:     make(map[int]int),
		vmaf:   make(map[int]float64),
	}
}

func (t *sceneTally) recordStart(sceneIndex int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start[sceneIndex] = time.Now()
}

func (t *sceneTally) recordSpawn(sceneIndex, frames int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames[sceneIndex] = frames
	t.total += uint64(frames)
}

func (t *sceneTally) recordOutcome(sceneIndex int, chosenCQ int, vmaf float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cq[sceneIndex] = chosenCQ
	t.vmaf[sceneIndex] = vmaf
}

func (t *sceneTally) outcome(sceneIndex int) reporter.SceneOutcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return reporter.SceneOutcome{
		Scene:   sceneIndex,
		CQ:      float64(t.cq[sceneIndex]),
		VMAF:    t.vmaf[sceneIndex],
		Frames:  uint64(t.frames[sceneIndex]),
		Elapsed: time.Since(t.start[sceneIndex]),
	}
}

func (t *sceneTally) totalFrames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
