package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
}

func TestFindVideoFilesSortsAndFiltersHidden(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.mkv", "a.mp4", ".hidden.mkv", "notes.txt")

	files, err := FindVideoFiles(dir)
	if err != nil {
		t.Fatalf("FindVideoFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.mp4" || filepath.Base(files[1]) != "b.mkv" {
		t.Errorf("files not sorted: %v", files)
	}
}

func TestFindVideoFilesEmptyDirIsError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	if _, err := FindVideoFiles(dir); err == nil {
		t.Error("expected error for directory with no video files")
	}
}

func TestFindVideoFilesWithLoggingReportsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mkv", "b.mp4", "notes.txt")

	result, err := FindVideoFilesWithLogging(dir, nil)
	if err != nil {
		t.Fatalf("FindVideoFilesWithLogging: %v", err)
	}
	if len(result.Files) != 2 {
		t.Errorf("got %d files, want 2", len(result.Files))
	}
	if result.SkippedCount != 1 {
		t.Errorf("SkippedCount = %d, want 1", result.SkippedCount)
	}
}
