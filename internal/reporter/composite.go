package reporter

import "github.com/five82/scenevq/internal/cq"

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) Banner(info RunInfo) {
	for _, r := range c.reporters {
		r.Banner(info)
	}
}

func (c *CompositeReporter) SceneSearchIteration(it cq.Iteration) {
	for _, r := range c.reporters {
		r.SceneSearchIteration(it)
	}
}

func (c *CompositeReporter) SceneComplete(outcome SceneOutcome) {
	for _, r := range c.reporters {
		r.SceneComplete(outcome)
	}
}

func (c *CompositeReporter) DecodeProgress(progress DecodeProgress) {
	for _, r := range c.reporters {
		r.DecodeProgress(progress)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) Done(outcome RunOutcome) {
	for _, r := range c.reporters {
		r.Done(outcome)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
