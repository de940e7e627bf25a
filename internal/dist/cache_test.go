package dist

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"

	"ideadep/internal/coords"
)

func writeTestZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(contents)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// touchSentinel drops a file into an extracted tree so a later re-extraction
// (which replaces the whole tree) can be detected.
func touchSentinel(t *testing.T, cacheDir string) string {
	t.Helper()
	sentinel := filepath.Join(cacheDir, "sentinel")
	if err := os.WriteFile(sentinel, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return sentinel
}

func TestEnsureExtractedIdempotent(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dir := t.TempDir()
	archive := filepath.Join(dir, "ideaIC-2023.2.zip")
	writeTestZip(t, archive, map[string]string{
		"build.txt":      "IC-232.8660.185\n",
		"lib/idea.jar":   "jar",
		"plugins/java/x": "p",
		"bin/idea.sh":    "#!/bin/sh",
	})

	cacheDir := filepath.Join(dir, "dists", "ideaIC", "2023.2")
	root, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeIdeaCommunity, true)
	if err != nil {
		t.Fatalf("EnsureExtracted: %v", err)
	}
	if root != cacheDir {
		t.Fatalf("root = %s, want %s", root, cacheDir)
	}

	marker, err := os.ReadFile(MarkerPath(cacheDir))
	if err != nil {
		t.Fatalf("marker missing: %v", err)
	}
	if string(marker) != "IC-232.8660.185" {
		t.Fatalf("marker = %q", marker)
	}

	sentinel := touchSentinel(t, cacheDir)
	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeIdeaCommunity, true); err != nil {
		t.Fatalf("second EnsureExtracted: %v", err)
	}
	if _, err := os.Stat(sentinel); err != nil {
		t.Fatalf("second call re-extracted a valid tree: %v", err)
	}
}

func TestEnsureExtractedStaleMarkerReExtracts(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dir := t.TempDir()
	archive := filepath.Join(dir, "ideaIC.zip")
	writeTestZip(t, archive, map[string]string{"build.txt": "IC-241.1", "lib/a.jar": "a"})

	cacheDir := filepath.Join(dir, "dists", "ideaIC", "LATEST-EAP-SNAPSHOT")
	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeIdeaCommunity, true); err != nil {
		t.Fatalf("EnsureExtracted: %v", err)
	}

	// Simulate a tree left behind by an older snapshot build.
	if err := os.WriteFile(MarkerPath(cacheDir), []byte("IC-240.9"), 0o644); err != nil {
		t.Fatal(err)
	}
	sentinel := touchSentinel(t, cacheDir)

	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeIdeaCommunity, true); err != nil {
		t.Fatalf("EnsureExtracted after marker change: %v", err)
	}
	if _, err := os.Stat(sentinel); !os.IsNotExist(err) {
		t.Fatal("stale tree was not re-extracted")
	}
	marker, err := os.ReadFile(MarkerPath(cacheDir))
	if err != nil {
		t.Fatal(err)
	}
	if string(marker) != "IC-241.1" {
		t.Fatalf("marker not rewritten, got %q", marker)
	}
}

func TestEnsureExtractedExistenceOnlyCheck(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dir := t.TempDir()
	archive := filepath.Join(dir, "goland.zip")
	writeTestZip(t, archive, map[string]string{"build.txt": "GO-232.1", "lib/a.jar": "a"})

	cacheDir := filepath.Join(dir, "dists", "goland", "2023.2")
	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeGoLand, false); err != nil {
		t.Fatalf("EnsureExtracted: %v", err)
	}

	// With checkVersion disabled a stale marker content is still accepted.
	if err := os.WriteFile(MarkerPath(cacheDir), []byte("something else"), 0o644); err != nil {
		t.Fatal(err)
	}
	sentinel := touchSentinel(t, cacheDir)
	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeGoLand, false); err != nil {
		t.Fatalf("EnsureExtracted: %v", err)
	}
	if _, err := os.Stat(sentinel); err != nil {
		t.Fatal("existence-only check should not re-extract")
	}
}

func TestEnsureExtractedMissingBuildEntryStaysStale(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dir := t.TempDir()
	archive := filepath.Join(dir, "extra.zip")
	writeTestZip(t, archive, map[string]string{"lib/extra.jar": "e"})

	cacheDir := filepath.Join(dir, "extras", "extra", "2023.2")
	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeIdeaCommunity, true); err != nil {
		t.Fatalf("EnsureExtracted: %v", err)
	}
	if _, err := os.Stat(MarkerPath(cacheDir)); !os.IsNotExist(err) {
		t.Fatal("no marker should be written for an archive without a build entry")
	}

	// Without a marker the tree counts as stale and extracts again.
	sentinel := touchSentinel(t, cacheDir)
	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeIdeaCommunity, true); err != nil {
		t.Fatalf("EnsureExtracted: %v", err)
	}
	if _, err := os.Stat(sentinel); !os.IsNotExist(err) {
		t.Fatal("markerless tree should re-extract")
	}
}

func TestEnsureExtractedRejectsTraversalEntries(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeTestZip(t, archive, map[string]string{
		"build.txt":      "IC-1",
		"../escaped.txt": "x",
	})

	cacheDir := filepath.Join(dir, "dists", "ideaIC", "2023.2")
	if _, err := EnsureExtracted(context.Background(), logger, archive, cacheDir, coords.TypeIdeaCommunity, true); err == nil {
		t.Fatal("expected error for entry escaping the extraction directory")
	}
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Fatal("failed extraction must not commit a cache dir")
	}
	// The temp extraction dir sits beside cacheDir, so an escape would land
	// one level up.
	if _, err := os.Stat(filepath.Join(dir, "dists", "ideaIC", "escaped.txt")); !os.IsNotExist(err) {
		t.Fatal("traversal entry escaped the extraction directory")
	}
}

func TestReadBuildNumber(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "build.txt"), []byte("IU-232.6734\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	build, err := ReadBuildNumber(dir)
	if err != nil {
		t.Fatalf("ReadBuildNumber: %v", err)
	}
	if build != "IU-232.6734" {
		t.Fatalf("build = %q", build)
	}

	macDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(macDir, "Resources"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(macDir, "Resources", "build.txt"), []byte("RD-232.1"), 0o644); err != nil {
		t.Fatal(err)
	}
	build, err = ReadBuildNumber(macDir)
	if err != nil {
		t.Fatalf("ReadBuildNumber mac layout: %v", err)
	}
	if build != "RD-232.1" {
		t.Fatalf("build = %q", build)
	}

	if _, err := ReadBuildNumber(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without build.txt")
	}
}

func TestIsZipArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "a.zip")
	writeTestZip(t, archive, map[string]string{"x": "y"})
	if !IsZipArchive(archive) {
		t.Fatal("zip not recognized")
	}

	plain := filepath.Join(dir, "plain.jar.txt")
	if err := os.WriteFile(plain, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if IsZipArchive(plain) {
		t.Fatal("plain file misdetected as zip")
	}
}
