package procx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/five82/scenevq/internal/errorsx"
)

var vmafScoreRe = regexp.MustCompile(`VMAF score:\s+([\d|.]+)`)

// ScoreVMAF spawns encoderCmd in piped-output mode (opts.Output must be
// "-") and an ffmpeg libvmaf scorer reading that pipe against reference
// as a second input, per spec §4.5.2. It returns the VMAF score
// normalized to [0, 1]. Both children must exit cleanly.
func ScoreVMAF(ctx context.Context, encoderCmd *exec.Cmd, reference string) (float64, error) {
	stdout, err := encoderCmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("procx: opening encoder stdout pipe: %w", err)
	}

	scorer := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-i", "pipe:0",
		"-i", reference,
		"-lavfi", "libvmaf",
		"-f", "null", "-",
	)
	scorer.Stdin = stdout
	stderr, err := scorer.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("procx: opening scorer stderr pipe: %w", err)
	}

	if err := encoderCmd.Start(); err != nil {
		return 0, errorsx.NewChildProcessError(encoderCmd.Path, errorsx.StageStart, err)
	}
	if err := scorer.Start(); err != nil {
		return 0, errorsx.NewChildProcessError(scorer.Path, errorsx.StageStart, err)
	}

	score, parseErr := parseVMAFScore(stderr)

	encErr := encoderCmd.Wait()
	scorerErr := scorer.Wait()

	if encErr != nil {
		return 0, errorsx.NewChildProcessError(encoderCmd.Path, errorsx.StageWait, encErr)
	}
	if scorerErr != nil {
		return 0, errorsx.NewChildProcessError(scorer.Path, errorsx.StageWait, scorerErr)
	}
	if parseErr != nil {
		return 0, fmt.Errorf("procx: parsing VMAF score: %w", parseErr)
	}

	return score / 100, nil
}

// parseVMAFScore scans the scorer's stderr for the last "VMAF score: N"
// line, which libvmaf emits once per run.
func parseVMAFScore(stderr io.Reader) (float64, error) {
	scanner := bufio.NewScanner(stderr)
	var score float64
	found := false
	for scanner.Scan() {
		m := vmafScoreRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		score = v
		found = true
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading scorer stderr: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("no VMAF score line found in scorer output")
	}
	return score, nil
}
