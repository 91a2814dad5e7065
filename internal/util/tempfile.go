package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// EnsureDirectoryWritable verifies that path exists, is a directory, and
// is writable by attempting to create and remove a probe file inside it.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	probe, err := os.CreateTemp(path, ".writable_probe_*")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func generateRandomString(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating random string: %w", err)
	}
	return hex.EncodeToString(buf)[:n], nil
}

// TempDir wraps a created temporary directory with its own cleanup.
type TempDir struct {
	path string
}

// Path returns the directory's absolute path.
func (d *TempDir) Path() string { return d.path }

// Cleanup removes the directory and everything under it.
func (d *TempDir) Cleanup() error { return os.RemoveAll(d.path) }

// CreateTempDir creates a new directory under baseDir named
// "<prefix>_<random>", for one input's working files.
func CreateTempDir(baseDir, prefix string) (*TempDir, error) {
	suffix, err := generateRandomString(12)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(baseDir, fmt.Sprintf("%s_%s", prefix, suffix))
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp dir %s: %w", path, err)
	}
	return &TempDir{path: path}, nil
}

// TempFile wraps a created temporary file with its own cleanup.
type TempFile struct {
	path string
	file *os.File
}

// Path returns the file's absolute path.
func (f *TempFile) Path() string { return f.path }

// File returns the open *os.File.
func (f *TempFile) File() *os.File { return f.file }

// Cleanup closes and removes the file.
func (f *TempFile) Cleanup() error {
	_ = f.file.Close()
	return os.Remove(f.path)
}

// CreateTempFile creates and opens a new file under baseDir named
// "<prefix>_<random>.<ext>".
func CreateTempFile(baseDir, prefix, ext string) (*TempFile, error) {
	path, err := CreateTempFilePath(baseDir, prefix, ext)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating temp file %s: %w", path, err)
	}
	return &TempFile{path: path, file: file}, nil
}

// CreateTempFilePath returns a collision-free path under baseDir named
// "<prefix>_<random>.<ext>" without creating the file.
func CreateTempFilePath(baseDir, prefix, ext string) (string, error) {
	suffix, err := generateRandomString(12)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.%s", prefix, suffix, ext)
	return filepath.Join(baseDir, name), nil
}

// CleanupStaleTempFiles removes entries (files or whole directories) in
// baseDir whose name starts with prefix and whose modification time is
// older than maxAge. Returns the number of entries removed. A non-existent baseDir is not an error.
func CleanupStaleTempFiles(baseDir, prefix string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading %s: %w", baseDir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(baseDir, name)
		if err := os.RemoveAll(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

// GetAvailableSpace returns the free bytes on the filesystem holding
// path, or 0 if it cannot be determined.
func GetAvailableSpace(path string) uint64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}
	return stat.Bavail * uint64(stat.Bsize)
}

// DiskSpaceStatus summarizes a disk space check against a minimum
// threshold, for the working directory scenes are sliced into.
type DiskSpaceStatus struct {
	AvailableBytes uint64
	Sufficient     bool
}

// minWorkdirSpaceBytes is the floor below which scenevq warns before
// starting a run: a handful of in-flight scene y4m/ivf files.
const minWorkdirSpaceBytes = 2 * GiB

// CheckDiskSpace checks available space at path against a fixed
// minimum and logs a warning via logger (if non-nil) when low.
func CheckDiskSpace(path string, logger func(format string, args ...any)) DiskSpaceStatus {
	available := GetAvailableSpace(path)
	status := DiskSpaceStatus{
		AvailableBytes: available,
		Sufficient:     available == 0 || available >= minWorkdirSpaceBytes,
	}
	if !status.Sufficient && logger != nil {
		logger("low disk space at %s: %s available", path, FormatBytes(available))
	}
	return status
}
