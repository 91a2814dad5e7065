package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/five82/scenevq/internal/cq"
)

// countingReporter records how many times each method was called, to
// verify CompositeReporter fans out to every attached reporter.
type countingReporter struct {
	banners int
	scenes  int
	done    int
}

func (c *countingReporter) Banner(RunInfo)                    { c.banners++ }
func (c *countingReporter) SceneSearchIteration(cq.Iteration) {}
func (c *countingReporter) SceneComplete(SceneOutcome)        { c.scenes++ }
func (c *countingReporter) DecodeProgress(DecodeProgress)     {}
func (c *countingReporter) Warning(string)                    {}
func (c *countingReporter) Error(ReporterError)                {}
func (c *countingReporter) Done(RunOutcome)                    { c.done++ }
func (c *countingReporter) Verbose(string)                     {}

func TestCompositeReporterFansOutToAll(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	composite := NewCompositeReporter(a, b)

	composite.Banner(RunInfo{InputFile: "movie.mkv"})
	composite.SceneComplete(SceneOutcome{Scene: 1})
	composite.Done(RunOutcome{TotalScenes: 1})

	for _, c := range []*countingReporter{a, b} {
		if c.banners != 1 || c.scenes != 1 || c.done != 1 {
			t.Errorf("counts = %+v, want one call to each method", c)
		}
	}
}

func TestNullReporterIsSafeNoOp(t *testing.T) {
	var r Reporter = NullReporter{}
	r.Banner(RunInfo{})
	r.SceneSearchIteration(cq.Iteration{})
	r.SceneComplete(SceneOutcome{})
	r.DecodeProgress(DecodeProgress{})
	r.Warning("ignored")
	r.Error(ReporterError{})
	r.Done(RunOutcome{})
	r.Verbose("ignored")
}

func TestJSONReporterEmitsOneEventPerLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.Banner(RunInfo{InputFile: "movie.mkv", Codec: "av1", VMAFTarget: 0.95, Encoders: 12})
	r.SceneComplete(SceneOutcome{Scene: 3, CQ: 28, VMAF: 0.951, Frames: 240})
	r.Done(RunOutcome{TotalScenes: 3, TotalFrames: 720, OutputFile: "movie.scenes"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var banner map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &banner); err != nil {
		t.Fatalf("unmarshal banner line: %v", err)
	}
	if banner["type"] != "banner" || banner["input_file"] != "movie.mkv" {
		t.Errorf("banner = %+v", banner)
	}

	var done map[string]interface{}
	if err := json.Unmarshal([]byte(lines[2]), &done); err != nil {
		t.Fatalf("unmarshal done line: %v", err)
	}
	if done["type"] != "done" || done["output_file"] != "movie.scenes" {
		t.Errorf("done = %+v", done)
	}
}
