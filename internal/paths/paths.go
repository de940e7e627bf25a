package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// CachePaths captures canonical locations inside an ideadep cache root.
type CachePaths struct {
	Root           string
	DownloadsDir   string
	DistsDir       string
	SourcesDir     string
	ExtrasDir      string
	DescriptorsDir string
}

// Resolve determines the cache root using the optional --cache-dir flag, the
// IDEADEP_CACHE_DIR environment variable, or the per-user default location.
func Resolve(cacheFlag string) (CachePaths, error) {
	root := cacheFlag
	if root == "" {
		root = os.Getenv("IDEADEP_CACHE_DIR")
	}

	var err error
	if root != "" {
		root, err = filepath.Abs(root)
		if err != nil {
			return CachePaths{}, fmt.Errorf("resolve cache root: %w", err)
		}
	} else {
		root, err = defaultRoot()
		if err != nil {
			return CachePaths{}, err
		}
	}

	return newCachePaths(root), nil
}

func newCachePaths(root string) CachePaths {
	return CachePaths{
		Root:           root,
		DownloadsDir:   filepath.Join(root, "downloads"),
		DistsDir:       filepath.Join(root, "dists"),
		SourcesDir:     filepath.Join(root, "sources"),
		ExtrasDir:      filepath.Join(root, "extras"),
		DescriptorsDir: filepath.Join(root, "descriptors"),
	}
}

func defaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "ideadep"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "ideadep"), nil
		}
		return filepath.Join(home, "AppData", "Local", "ideadep"), nil
	default:
		return filepath.Join(home, ".cache", "ideadep"), nil
	}
}

// DistDir returns the extraction target for one (artifact, version) pair.
func (p CachePaths) DistDir(artifactName, version string) string {
	return filepath.Join(p.DistsDir, artifactName, version)
}

// ExtraDir returns the extraction target for one extra artifact.
func (p CachePaths) ExtraDir(name, version string) string {
	return filepath.Join(p.ExtrasDir, name, version)
}

// EnsureDirs creates the standard cache hierarchy.
func (p CachePaths) EnsureDirs() error {
	dirs := []string{p.Root, p.DownloadsDir, p.DistsDir, p.SourcesDir, p.ExtrasDir, p.DescriptorsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
