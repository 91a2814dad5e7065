// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// RunInfo describes the run-level banner printed before any scene work
// starts.
type RunInfo struct {
	InputFile  string
	Codec      string
	VMAFTarget float64
	Encoders   int
}

// SceneOutcome reports one scene's finished compression (§4.5 step 7).
type SceneOutcome struct {
	Scene   int
	CQ      float64
	VMAF    float64
	Frames  uint64
	Elapsed time.Duration
}

// DecodeProgress reports frames the decode stage has handed to the
// frame buffer so far (§5 stage 1).
type DecodeProgress struct {
	FramesDecoded uint64
}

// RunOutcome reports the whole run's completion summary. OutputFile is
// the directory the run's finished per-scene bitstreams were moved into
// (workdir.OutputDir), not a single muxed file. InputBytes/OutputBytes
// are the source file's size and the summed size of every scene
// bitstream moved into OutputFile.
type RunOutcome struct {
	TotalScenes int
	TotalFrames uint64
	Elapsed     time.Duration
	OutputFile  string
	InputBytes  uint64
	OutputBytes uint64
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}
