package procx

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/five82/scenevq/internal/errorsx"
)

// Detector is the running first-pass encoder child that the scene
// detection feeder (internal/feeder) writes frames into over stdin. Its
// stats file (opts.LogFile) is read concurrently by internal/statsproc.
type Detector struct {
	Writer *bufio.Writer

	stdin io.WriteCloser
	wait  func() error
}

// StartDetector launches enc's first pass reading frames from stdin
// (opts.Input is ignored and forced to "-") and discarding its encoded
// output, matching spec §4.2/§4.3's "detector" collaborator.
func StartDetector(ctx context.Context, enc Encoder, opts Options) (*Detector, error) {
	opts.Input = "-"
	cmd := enc.FirstPass(ctx, opts)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("procx: opening detector stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errorsx.NewChildProcessError(cmd.Path, errorsx.StageStart, err)
	}

	return &Detector{
		Writer: bufio.NewWriter(stdin),
		stdin:  stdin,
		wait: func() error {
			if err := cmd.Wait(); err != nil {
				return errorsx.NewChildProcessError(cmd.Path, errorsx.StageNonZeroExit, err)
			}
			return nil
		},
	}, nil
}

// CloseInput closes the detector's stdin, signaling end of stream.
func (d *Detector) CloseInput() error {
	return d.stdin.Close()
}

// Wait blocks until the detector child exits, returning a
// *errorsx.ChildProcessError on non-zero exit.
func (d *Detector) Wait() error {
	return d.wait()
}
