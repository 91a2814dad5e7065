// Package feeder forwards frames from the shared buffer to the detector
// child in frame-number order, pacing the stats processor with a credit
// semaphore (§4.2).
//
// Grounded on original_source/src/main.rs's delayed_popper/writing
// goroutine pair and the analyzed_aom_frames credit semaphore.
package feeder

import (
	"bufio"
	"context"
	"fmt"

	"github.com/five82/scenevq/internal/credit"
	"github.com/five82/scenevq/internal/errorsx"
	"github.com/five82/scenevq/internal/framebuffer"
	"github.com/five82/scenevq/internal/y4m"
)

// sentinelCredits is the large credit burst granted on EOF so any stats
// processor blocked awaiting credits unblocks and observes end of stream.
const sentinelCredits = 100

// Feeder writes frames to the detector's stdin and grants one credit per
// frame written.
type Feeder struct {
	buf          *framebuffer.Buffer
	writer       *bufio.Writer
	credits      *credit.Counter
	closeInput   func() error
	waitDetector func() error
}

// New creates a Feeder. closeInput closes the detector's stdin pipe once
// the source is exhausted; waitDetector blocks until the detector child
// process exits and returns a non-nil error on non-zero exit.
func New(buf *framebuffer.Buffer, writer *bufio.Writer, credits *credit.Counter, closeInput, waitDetector func() error) *Feeder {
	return &Feeder{
		buf:          buf,
		writer:       writer,
		credits:      credits,
		closeInput:   closeInput,
		waitDetector: waitDetector,
	}
}

// Run forwards frames 0, 1, 2, … to the detector until the buffer's
// producer finishes, then closes the detector's input, waits for it to
// exit, and grants the sentinel credit burst.
func (f *Feeder) Run(ctx context.Context) error {
	var frameNum uint64
	for {
		frame, err := f.buf.Get(ctx, frameNum)
		if err != nil {
			return fmt.Errorf("feeder: getting frame %d: %w", frameNum, err)
		}
		if frame == nil {
			return f.finish()
		}

		if err := y4m.WriteFrame(f.writer, frame); err != nil {
			return fmt.Errorf("feeder: writing frame %d: %w", frameNum, err)
		}
		f.credits.Grant(1)
		frameNum++
	}
}

func (f *Feeder) finish() error {
	if err := f.writer.Flush(); err != nil {
		return fmt.Errorf("feeder: flushing detector input: %w", err)
	}
	if f.closeInput != nil {
		if err := f.closeInput(); err != nil {
			return fmt.Errorf("feeder: closing detector input: %w", err)
		}
	}
	if f.waitDetector != nil {
		if err := f.waitDetector(); err != nil {
			return errorsx.NewChildProcessError("detector", errorsx.StageWait, err)
		}
	}
	f.credits.Grant(sentinelCredits)
	return nil
}
