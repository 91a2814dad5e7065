package reporter

import "github.com/five82/scenevq/internal/cq"

// Reporter defines the interface for progress reporting across one run:
// a banner, per-scene search iterations and outcomes, decode progress,
// and a final summary.
type Reporter interface {
	Banner(info RunInfo)
	SceneSearchIteration(it cq.Iteration)
	SceneComplete(outcome SceneOutcome)
	DecodeProgress(progress DecodeProgress)
	Warning(message string)
	Error(err ReporterError)
	Done(outcome RunOutcome)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Banner(RunInfo)                     {}
func (NullReporter) SceneSearchIteration(cq.Iteration)  {}
func (NullReporter) SceneComplete(SceneOutcome)         {}
func (NullReporter) DecodeProgress(DecodeProgress)      {}
func (NullReporter) Warning(string)                     {}
func (NullReporter) Error(ReporterError)                {}
func (NullReporter) Done(RunOutcome)                    {}
func (NullReporter) Verbose(string)                     {}
