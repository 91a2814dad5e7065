package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/five82/scenevq/internal/cq"
)

// JSONReporter outputs NDJSON events, one per line, for machine
// consumption by a caller wrapping scenevq in a larger pipeline.
type JSONReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{writer: os.Stdout}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Banner(info RunInfo) {
	r.write(map[string]interface{}{
		"type":        "banner",
		"input_file":  info.InputFile,
		"codec":       info.Codec,
		"vmaf_target": info.VMAFTarget,
		"encoders":    info.Encoders,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) SceneSearchIteration(it cq.Iteration) {
	r.write(map[string]interface{}{
		"type":      "scene_search_iteration",
		"scene":     it.Scene,
		"iteration": it.Iter,
		"x1":        it.X1,
		"vmaf1":     it.VMAF1,
		"x2":        it.X2,
		"vmaf2":     it.VMAF2,
		"next":      it.Next,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) SceneComplete(outcome SceneOutcome) {
	r.write(map[string]interface{}{
		"type":             "scene_complete",
		"scene":            outcome.Scene,
		"cq":               outcome.CQ,
		"vmaf":             outcome.VMAF,
		"frames":           outcome.Frames,
		"elapsed_seconds":  outcome.Elapsed.Seconds(),
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) DecodeProgress(progress DecodeProgress) {
	r.write(map[string]interface{}{
		"type":           "decode_progress",
		"frames_decoded": progress.FramesDecoded,
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) Done(outcome RunOutcome) {
	r.write(map[string]interface{}{
		"type":            "done",
		"total_scenes":    outcome.TotalScenes,
		"total_frames":    outcome.TotalFrames,
		"elapsed_seconds": outcome.Elapsed.Seconds(),
		"output_file":     outcome.OutputFile,
		"input_bytes":     outcome.InputBytes,
		"output_bytes":    outcome.OutputBytes,
		"timestamp":       r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
