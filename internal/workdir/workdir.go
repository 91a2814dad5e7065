// Package workdir manages the per-input temp folder a run slices scenes
// into, and the persistent output directory its finished bitstreams are
// moved to before the temp folder is discarded.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/scenevq/internal/logging"
	"github.com/five82/scenevq/internal/util"
)

// staleWorkDirMaxAge bounds how long an abandoned work directory from a
// crashed prior run is left on disk before New sweeps it away.
const staleWorkDirMaxAge = 24 * time.Hour

// WorkDir is one input's working folder: "<input-basename>_<random>/"
// next to the source, holding every scene's y4m/log/ivf plus the run's
// shared keyframe log. It is discarded once FinalizeScenes has moved the
// scene bitstreams it produced to a persistent output directory.
type WorkDir struct {
	Root string
	temp *util.TempDir
}

// New creates a fresh working folder alongside inputPath, named with a
// random suffix so concurrent runs over inputs sharing a basename (e.g.
// a batch re-run after a rename) never collide. Before creating it, New
// sweeps any work directories left behind by a crashed earlier run on
// the same input and warns if the destination filesystem is low on
// space.
func New(inputPath string) (*WorkDir, error) {
	dir := filepath.Dir(inputPath)
	stem := util.GetFileStem(inputPath)
	log := logging.Global().WithPrefix("workdir")

	if removed, err := util.CleanupStaleTempFiles(dir, stem+"_", staleWorkDirMaxAge); err != nil {
		log.Warn("sweeping stale work directories failed", "dir", dir, "error", err)
	} else if removed > 0 {
		log.Info("swept stale work directories", "count", removed, "dir", dir)
	}

	util.CheckDiskSpace(dir, func(format string, args ...any) {
		log.Warn(fmt.Sprintf(format, args...))
	})

	temp, err := util.CreateTempDir(dir, stem)
	if err != nil {
		return nil, fmt.Errorf("creating work directory under %s: %w", dir, err)
	}
	return &WorkDir{Root: temp.Path(), temp: temp}, nil
}

func (w *WorkDir) scenePath(index int, ext string) string {
	return filepath.Join(w.Root, fmt.Sprintf("scene_%05d.%s", index, ext))
}

// ScenePath returns the path for one scene's y4m source.
func (w *WorkDir) ScenePath(index int) string { return w.scenePath(index, "y4m") }

// SceneLogPath returns the path for one scene's first-pass stats log.
func (w *WorkDir) SceneLogPath(index int) string { return w.scenePath(index, "log") }

// SceneOutputPath returns the path for one scene's final encoded bitstream.
func (w *WorkDir) SceneOutputPath(index int) string { return w.scenePath(index, "ivf") }

// KeyframeLogPath returns the path of the detector's shared first-pass
// stats file.
func (w *WorkDir) KeyframeLogPath() string { return filepath.Join(w.Root, "keyframe.log") }

// OutputDir resolves the persistent directory a run's finished scene
// bitstreams are moved into: "<input-stem>.scenes" alongside the
// source. Unlike Root, this directory survives Cleanup.
func OutputDir(inputPath string) string {
	dir := filepath.Dir(inputPath)
	stem := util.GetFileStem(inputPath)
	return filepath.Join(dir, stem+".scenes")
}

// FinalizeScenes moves every scene index in [0, count) from this work
// directory's SceneOutputPath into outDir, creating outDir if needed.
// Scenes are moved, not copied, so this is only safe to call once per
// scene and before Cleanup removes the source paths.
func (w *WorkDir) FinalizeScenes(outDir string, count int) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", outDir, err)
	}
	if err := util.EnsureDirectoryWritable(outDir); err != nil {
		return fmt.Errorf("output directory %s: %w", outDir, err)
	}
	for i := 0; i < count; i++ {
		src := w.SceneOutputPath(i)
		dst := filepath.Join(outDir, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("moving scene %d output to %s: %w", i, outDir, err)
		}
	}
	return nil
}

// Cleanup removes the working folder and everything still under it.
// Call FinalizeScenes first to preserve a run's scene bitstreams.
func (w *WorkDir) Cleanup() error {
	return w.temp.Cleanup()
}
