package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/scenevq/internal/cq"
	"github.com/five82/scenevq/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	magenta  *color.Color
	bold     *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Banner(info RunInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("SCENEVQ")
	const w = 10
	r.printLabel(w, "Input:", info.InputFile)
	r.printLabel(w, "Codec:", info.Codec)
	r.printLabel(w, "Target:", fmt.Sprintf("%.3f", info.VMAFTarget))
	r.printLabel(w, "Encoders:", fmt.Sprintf("%d", info.Encoders))

	r.mu.Lock()
	r.progress = progressbar.NewOptions64(
		-1,
		progressbar.OptionSetDescription("decoding"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	r.mu.Unlock()
}

func (r *TerminalReporter) SceneSearchIteration(it cq.Iteration) {
	fmt.Printf("  %s scene %d iter %d  x1=%.0f vmaf1=%.4f x2=%.0f vmaf2=%.4f next=%.0f\n",
		r.magenta.Sprint("›"), it.Scene, it.Iter, it.X1, it.VMAF1, it.X2, it.VMAF2, it.Next)
}

func (r *TerminalReporter) SceneComplete(outcome SceneOutcome) {
	fmt.Printf("  %s scene %d  cq=%.0f vmaf=%.4f frames=%d (%s)\n",
		r.green.Sprint("✓"), outcome.Scene, outcome.CQ, outcome.VMAF, outcome.Frames,
		util.FormatDuration(outcome.Elapsed.Seconds()))
}

func (r *TerminalReporter) DecodeProgress(progress DecodeProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress == nil {
		return
	}
	_ = r.progress.Set64(int64(progress.FramesDecoded))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) Done(outcome RunOutcome) {
	r.mu.Lock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.mu.Unlock()

	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	r.printLabel(10, "Scenes:", fmt.Sprintf("%d", outcome.TotalScenes))
	r.printLabel(10, "Frames:", fmt.Sprintf("%d", outcome.TotalFrames))
	r.printLabel(10, "Time:", util.FormatDuration(outcome.Elapsed.Seconds()))
	if outcome.InputBytes > 0 {
		reduction := util.CalculateSizeReduction(outcome.InputBytes, outcome.OutputBytes)
		r.printLabel(10, "Size:", fmt.Sprintf("%s -> %s (%.1f%% smaller)",
			util.FormatBytes(outcome.InputBytes), util.FormatBytes(outcome.OutputBytes), reduction))
	}
	fmt.Printf("  %s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(outcome.OutputFile))
}

func (r *TerminalReporter) Verbose(message string) {
	fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint("·"), message)
}
