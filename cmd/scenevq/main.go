// Command scenevq runs the per-scene VMAF-targeted transcoding pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/scenevq/internal/config"
	"github.com/five82/scenevq/internal/discovery"
	"github.com/five82/scenevq/internal/logging"
	"github.com/five82/scenevq/internal/pipeline"
	"github.com/five82/scenevq/internal/reporter"
	"github.com/five82/scenevq/internal/util"
)

const (
	appName    = "scenevq"
	appVersion = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Per-scene VMAF-targeted VP9/AV1 transcoding",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
			return nil
		},
	}
}

// encodeFlags holds the parsed flags for the encode command.
type encodeFlags struct {
	input       string
	dir         string
	vpy         string
	encoders    int
	cpuUsed     int
	vmafCPUUsed int
	vmafTarget  float64
	codec       string
	configFile  string
	verbose     bool
	logDir      string
	jsonOutput  bool
}

func newEncodeCmd() *cobra.Command {
	var f encodeFlags

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Transcode one video to VP9 or AV1 at a target VMAF score",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.input, "input", "", "Input video file (required unless --dir is set)")
	flags.StringVar(&f.dir, "dir", "", "Directory of input video files to batch-encode, sorted alphabetically (mutually exclusive with --input)")
	flags.StringVar(&f.vpy, "vpy", "", "VapourSynth script driving the decoder (required)")
	flags.IntVar(&f.encoders, "encoders", config.DefaultEncoderAdmission, "Process-wide encoder concurrency permits")
	flags.IntVar(&f.cpuUsed, "cpu-used", config.DefaultCPUUsed, "Final second-pass encoder speed preset")
	flags.IntVar(&f.vmafCPUUsed, "vmaf-cpu-used", config.DefaultVMAFCPUUsed, "Fast-probe encoder speed preset used during CQ search")
	flags.Float64Var(&f.vmafTarget, "vmaf-target", config.DefaultVMAFTarget, "Target VMAF score, normalized to (0, 1]")
	flags.StringVar(&f.codec, "codec", string(config.CodecAV1), "Output codec: vp9 or av1")
	flags.StringVar(&f.configFile, "config", "", "Optional YAML file overlaying pipeline-tuning defaults")
	flags.BoolVar(&f.verbose, "verbose", false, "Enable debug-level logging to stderr and the run log")
	flags.StringVar(&f.logDir, "log-dir", "", "Log directory (defaults to ~/.local/state/scenevq/logs)")
	flags.BoolVar(&f.jsonOutput, "json", false, "Additionally emit NDJSON progress events to stdout")

	return cmd
}

func runEncode(cmd *cobra.Command, f encodeFlags) error {
	if f.vpy == "" {
		return fmt.Errorf("--vpy is required")
	}
	if f.input == "" && f.dir == "" {
		return fmt.Errorf("one of --input or --dir is required")
	}
	if f.input != "" && f.dir != "" {
		return fmt.Errorf("--input and --dir are mutually exclusive")
	}

	logDir := f.logDir
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		logDir = filepath.Join(homeDir, ".local", "state", appName, "logs")
	}

	fileLog, err := logging.Setup(logDir, f.verbose)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = fileLog.Close() }()

	level := logging.LevelInfo
	if f.verbose {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	inputs, err := resolveInputs(f)
	if err != nil {
		return err
	}

	rep := buildReporter(f, cmd)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	var errs []error
	for _, inputPath := range inputs {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s: %w", inputPath, ctx.Err()))
			break
		}

		cfg, err := buildConfig(f, inputPath, logDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", inputPath, err))
			continue
		}
		if err := cfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid configuration: %w", inputPath, err))
			continue
		}

		result, err := pipeline.Run(ctx, cfg, rep)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", inputPath, err))
			continue
		}
		fileLog.Info("completed: %s -> %d scenes, %d frames, output dir %s",
			inputPath, result.Scenes, result.Frames, result.OutputFile)
	}

	return errors.Join(errs...)
}

// resolveInputs expands --input/--dir into the ordered list of files to
// encode. --dir delegates to internal/discovery for the alphabetical,
// hidden-file-skipping scan a batch run needs.
func resolveInputs(f encodeFlags) ([]string, error) {
	if f.dir != "" {
		dirAbs, err := filepath.Abs(f.dir)
		if err != nil {
			return nil, fmt.Errorf("invalid --dir path: %w", err)
		}
		result, err := discovery.FindVideoFilesWithLogging(dirAbs, discoveryLogAdapter{logging.Global().WithPrefix("discovery")})
		if err != nil {
			return nil, fmt.Errorf("discovering videos in %s: %w", dirAbs, err)
		}
		return result.Files, nil
	}

	inputPath, err := filepath.Abs(f.input)
	if err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}
	if !util.FileExists(inputPath) {
		return nil, fmt.Errorf("input path does not exist: %s", inputPath)
	}
	return []string{inputPath}, nil
}

// discoveryLogAdapter routes internal/discovery's printf-style logging
// interface through the structured global logger.
type discoveryLogAdapter struct {
	log *logging.Logger
}

func (a discoveryLogAdapter) Info(format string, args ...any) { a.log.Info(fmt.Sprintf(format, args...)) }

func (a discoveryLogAdapter) Debug(format string, args ...any) {
	a.log.Debug(fmt.Sprintf(format, args...))
}

func buildConfig(f encodeFlags, inputPath, logDir string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configFile != "" {
		cfg, err = config.LoadFile(f.configFile, inputPath, logDir)
		if err != nil {
			return nil, fmt.Errorf("loading --config: %w", err)
		}
	} else {
		cfg = config.NewConfig(inputPath, logDir)
	}

	cfg.VpyConfig = f.vpy
	cfg.Encoders = f.encoders
	cfg.CPUUsed = f.cpuUsed
	cfg.VMAFCPUUsed = f.vmafCPUUsed
	cfg.VMAFTarget = f.vmafTarget
	cfg.Codec = config.Codec(f.codec)
	cfg.Verbose = f.verbose

	return cfg, nil
}

func buildReporter(f encodeFlags, cmd *cobra.Command) reporter.Reporter {
	term := reporter.NewTerminalReporter()
	if !f.jsonOutput {
		return term
	}
	return reporter.NewCompositeReporter(term, reporter.NewJSONReporterWithWriter(cmd.OutOrStdout()))
}
