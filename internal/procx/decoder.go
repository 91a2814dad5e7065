package procx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/five82/scenevq/internal/errorsx"
)

// Decoder is the running vspipe child that emits YUV4MPEG-2 on stdout
// for the frame buffer to read (§6 "Decoder").
type Decoder struct {
	Reader *bufio.Reader

	stdout io.ReadCloser
	wait   func() error
}

// StartDecoder launches vspipe against the given VapourSynth script,
// grounded on original_source/src/main.rs's "vspipe --y4m <input> -".
func StartDecoder(ctx context.Context, vpyScript string) (*Decoder, error) {
	cmd := exec.CommandContext(ctx, "vspipe", "--y4m", vpyScript, "-")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("procx: opening decoder stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errorsx.NewChildProcessError(cmd.Path, errorsx.StageStart, err)
	}

	return &Decoder{
		Reader: bufio.NewReaderSize(stdout, 1<<20),
		stdout: stdout,
		wait: func() error {
			if err := cmd.Wait(); err != nil {
				return errorsx.NewChildProcessError(cmd.Path, errorsx.StageNonZeroExit, err)
			}
			return nil
		},
	}, nil
}

// Wait blocks until the decoder child exits, returning a
// *errorsx.ChildProcessError on non-zero exit.
func (d *Decoder) Wait() error {
	return d.wait()
}
