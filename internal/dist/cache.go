package dist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edaniels/golog"

	"ideadep/internal/coords"
)

// EnsureExtracted guarantees that cacheDir holds a valid extracted copy of
// archivePath, re-extracting only when the cached tree is stale. The marker
// file sibling to cacheDir records the archive's embedded build number; with
// checkVersion enabled the marker content must match the archive's build.txt
// entry for the tree to count as valid. Extraction goes through a temporary
// sibling directory renamed into place, guarded by an advisory lock file so
// concurrent invocations sharing the cache cannot race on a stale tree.
func EnsureExtracted(ctx context.Context, logger golog.Logger, archivePath, cacheDir string, platformType coords.PlatformType, checkVersion bool) (string, error) {
	if err := os.MkdirAll(filepath.Dir(cacheDir), 0o755); err != nil {
		return "", fmt.Errorf("prepare cache parent: %w", err)
	}

	unlock, err := acquireCacheLock(ctx, cacheDir)
	if err != nil {
		return "", err
	}
	defer unlock()

	archiveBuild, haveBuild := probeArchiveBuild(logger, archivePath, checkVersion)
	if cacheValid(logger, cacheDir, archiveBuild, haveBuild, checkVersion) {
		logger.Debugw("cache hit", "dir", cacheDir)
		return cacheDir, nil
	}

	logger.Infow("extracting distribution", "archive", archivePath, "dir", cacheDir)
	if err := extractToCache(logger, archivePath, cacheDir, platformType); err != nil {
		return "", err
	}

	if err := writeMarker(cacheDir, archivePath); err != nil {
		return "", err
	}
	return cacheDir, nil
}

// MarkerPath returns the marker file recording the build of an extracted tree.
// It is a sibling of the cache directory so wiping the tree also invalidates
// the marker's meaning without touching it.
func MarkerPath(cacheDir string) string {
	return cacheDir + ".marker"
}

// probeArchiveBuild reads the archive's embedded build entry when version
// checking needs it. Archive-read failures degrade to "no build available";
// the cache is then treated as stale rather than failing the resolution.
func probeArchiveBuild(logger golog.Logger, archivePath string, checkVersion bool) (string, bool) {
	if !checkVersion {
		return "", false
	}
	build, ok, err := readArchiveBuild(archivePath)
	if err != nil {
		logger.Warnw("cannot read build entry from archive; treating cache as stale", "archive", archivePath, "error", err)
		return "", false
	}
	if !ok {
		logger.Debugw("archive has no build entry", "archive", archivePath)
		return "", false
	}
	return build, true
}

func cacheValid(logger golog.Logger, cacheDir, archiveBuild string, haveBuild, checkVersion bool) bool {
	contents, err := os.ReadFile(MarkerPath(cacheDir))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warnw("cannot read cache marker", "marker", MarkerPath(cacheDir), "error", err)
		}
		return false
	}
	if !checkVersion {
		return true
	}
	// An archive without a readable build entry can never match a marker, so
	// the tree re-extracts rather than silently trusting a possibly-wrong
	// cache.
	if !haveBuild {
		return false
	}
	return strings.TrimSpace(string(contents)) == archiveBuild
}

func extractToCache(logger golog.Logger, archivePath, cacheDir string, platformType coords.PlatformType) error {
	tmpDir, err := os.MkdirTemp(filepath.Dir(cacheDir), filepath.Base(cacheDir)+"-extract-")
	if err != nil {
		return fmt.Errorf("create extract dir: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmpDir)
		}
	}()

	if err := extractZip(archivePath, tmpDir); err != nil {
		return err
	}

	RestoreExecutables(logger, tmpDir, platformType)

	if err := os.RemoveAll(cacheDir); err != nil {
		return fmt.Errorf("replace cache dir: %w", err)
	}
	if err := os.Rename(tmpDir, cacheDir); err != nil {
		return fmt.Errorf("commit cache dir: %w", err)
	}
	committed = true
	return nil
}

// writeMarker records the extracted tree's build. A tree without a build entry
// gets no marker and re-extracts on the next run; that degraded behaviour is
// preferable to trusting an unidentifiable tree.
func writeMarker(cacheDir, archivePath string) error {
	markerPath := MarkerPath(cacheDir)
	build, ok, err := readArchiveBuild(archivePath)
	if err != nil || !ok {
		if removeErr := os.Remove(markerPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return fmt.Errorf("remove stale marker: %w", removeErr)
		}
		return nil
	}
	if err := os.WriteFile(markerPath, []byte(build), 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}

func acquireCacheLock(ctx context.Context, cacheDir string) (func(), error) {
	lockPath := cacheDir + ".lock"
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("acquire cache lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire cache lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
