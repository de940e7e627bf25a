package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ideadep/internal/coords"
)

const userAgent = "ideadep/1.0"

// Downloader fetches artifact files by repository coordinates. It returns the
// local paths of all files matching the request; callers decide whether zero
// or multiple matches are fatal or merely skippable.
type Downloader interface {
	Download(ctx context.Context, c coords.Coordinates, classifier, extension string) ([]string, error)
}

// HTTPDownloader resolves coordinates against a maven2-layout repository over
// HTTP, caching downloads under a local directory. Retries and backoff are the
// transport's concern, not re-implemented here.
type HTTPDownloader struct {
	BaseURL      string
	DownloadsDir string
	Client       *http.Client
}

// NewHTTPDownloader returns a downloader rooted at baseURL storing files in
// downloadsDir.
func NewHTTPDownloader(baseURL, downloadsDir string) *HTTPDownloader {
	return &HTTPDownloader{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		DownloadsDir: downloadsDir,
		Client:       http.DefaultClient,
	}
}

// Download fetches one artifact file, reusing an already-downloaded copy when
// present. It returns a single-element slice on success and an empty slice
// when the repository reports the artifact as absent (HTTP 404).
func (d *HTTPDownloader) Download(ctx context.Context, c coords.Coordinates, classifier, extension string) ([]string, error) {
	fileName := artifactFileName(c, classifier, extension)
	dest := filepath.Join(d.DownloadsDir, fileName)

	if _, err := os.Stat(dest); err == nil {
		return []string{dest}, nil
	}

	sourceURL, err := d.artifactURL(c, fileName)
	if err != nil {
		return nil, err
	}

	found, err := d.fetch(ctx, dest, sourceURL)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := d.verifyChecksum(ctx, dest, sourceURL); err != nil {
		_ = os.Remove(dest)
		return nil, err
	}
	return []string{dest}, nil
}

// verifyChecksum compares the downloaded file against the repository's
// .sha256 sidecar. Repositories that publish no sidecar (or serve something
// that is not a checksum there) skip verification; a well-formed sidecar that
// disagrees with the file is fatal.
func (d *HTTPDownloader) verifyChecksum(ctx context.Context, dest, sourceURL string) error {
	expected, ok, err := d.fetchChecksum(ctx, sourceURL+".sha256")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	actual, err := Checksum(dest)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: repository says %s, file is %s", filepath.Base(dest), expected, actual)
	}
	return nil
}

// fetchChecksum retrieves a checksum sidecar. The second return is false when
// the sidecar is absent or its content is not a sha256sum-style line.
func (d *HTTPDownloader) fetchChecksum(ctx context.Context, sidecarURL string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sidecarURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("create checksum request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch checksum %s: %w", sidecarURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", false, fmt.Errorf("read checksum %s: %w", sidecarURL, err)
	}

	// sha256sum format: the hex digest, optionally followed by a file name.
	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", false, nil
	}
	sum := strings.ToLower(fields[0])
	if len(sum) != sha256.Size*2 {
		return "", false, nil
	}
	if _, err := hex.DecodeString(sum); err != nil {
		return "", false, nil
	}
	return sum, true, nil
}

func (d *HTTPDownloader) artifactURL(c coords.Coordinates, fileName string) (string, error) {
	base, err := url.Parse(d.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse repository url: %w", err)
	}
	base.Path = path.Join(
		base.Path,
		string(c.Channel),
		strings.ReplaceAll(c.Group, ".", "/"),
		c.ArtifactName,
		c.Version,
		fileName,
	)
	return base.String(), nil
}

func artifactFileName(c coords.Coordinates, classifier, extension string) string {
	name := fmt.Sprintf("%s-%s", c.ArtifactName, c.Version)
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + extension
}

func (d *HTTPDownloader) fetch(ctx context.Context, dest, sourceURL string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("prepare download destination: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("download %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("download %s: unexpected status %s", sourceURL, resp.Status)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "download-*.tmp")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return false, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return false, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return false, fmt.Errorf("finalize download: %w", err)
	}
	return true, nil
}

// Checksum returns the hex SHA-256 of a downloaded file.
func Checksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
