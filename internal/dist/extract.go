package dist

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// buildFileName is the manifest entry inside a distribution archive (and at
// the root of an extracted tree) identifying its exact build.
const buildFileName = "build.txt"

// IsZipArchive reports whether the file carries a zip magic header.
func IsZipArchive(file string) bool {
	f, err := os.Open(file)
	if err != nil {
		return false
	}
	defer f.Close()

	var header [4]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return false
	}
	return header[0] == 'P' && header[1] == 'K' && header[2] == 0x03 && header[3] == 0x04
}

// readArchiveBuild returns the trimmed content of the shallowest build.txt
// entry inside a zip archive. The second return is false when the archive has
// no such entry.
func readArchiveBuild(archivePath string) (string, bool, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", false, fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	var best *zip.File
	bestDepth := -1
	for _, file := range reader.File {
		if path.Base(file.Name) != buildFileName {
			continue
		}
		depth := strings.Count(file.Name, "/")
		if bestDepth < 0 || depth < bestDepth {
			best = file
			bestDepth = depth
		}
	}
	if best == nil {
		return "", false, nil
	}

	rc, err := best.Open()
	if err != nil {
		return "", false, fmt.Errorf("open zip entry %s: %w", best.Name, err)
	}
	defer rc.Close()

	contents, err := io.ReadAll(rc)
	if err != nil {
		return "", false, fmt.Errorf("read zip entry %s: %w", best.Name, err)
	}
	return strings.TrimSpace(string(contents)), true, nil
}

func extractZip(archivePath, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	prefix := filepath.Clean(dest) + string(os.PathSeparator)
	for _, file := range reader.File {
		target := filepath.Join(dest, filepath.FromSlash(file.Name))
		if !strings.HasPrefix(target, prefix) {
			return fmt.Errorf("zip entry %s escapes extraction directory", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, file.Mode()); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("prepare file %s: %w", target, err)
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", file.Name, err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.Mode())
		if err != nil {
			rc.Close()
			return fmt.Errorf("create file %s: %w", target, err)
		}
		if _, err := io.Copy(out, rc); err != nil {
			rc.Close()
			out.Close()
			return fmt.Errorf("copy file %s: %w", target, err)
		}
		rc.Close()
		if err := out.Close(); err != nil {
			return fmt.Errorf("close file %s: %w", target, err)
		}
	}
	return nil
}

// ReadBuildNumber reads the build marker from the root of an extracted tree,
// falling back to the mac-style Resources layout.
func ReadBuildNumber(directory string) (string, error) {
	candidates := []string{
		filepath.Join(directory, buildFileName),
		filepath.Join(directory, "Resources", buildFileName),
	}
	for _, candidate := range candidates {
		contents, err := os.ReadFile(candidate)
		if err == nil {
			return strings.TrimSpace(string(contents)), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("no %s found under %s", buildFileName, directory)
}
