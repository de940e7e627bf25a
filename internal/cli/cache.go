package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ideadep/internal/dist"
	"ideadep/internal/paths"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the distribution cache",
	}

	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCacheCleanCmd())

	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached distributions and their build markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newRunContext()
			if err != nil {
				return err
			}

			entries, err := listCachedDists(rc.paths)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("cache is empty")
				return nil
			}
			for _, entry := range entries {
				cmd.Println(summarize(entry.Artifact, entry.Version, entry.Marker))
			}
			return nil
		},
	}
}

func newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove all cached downloads and extracted distributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newRunContext()
			if err != nil {
				return err
			}

			for _, dir := range []string{rc.paths.DownloadsDir, rc.paths.DistsDir, rc.paths.SourcesDir, rc.paths.ExtrasDir, rc.paths.DescriptorsDir} {
				if err := os.RemoveAll(dir); err != nil {
					return fmt.Errorf("clean %s: %w", dir, err)
				}
			}
			cmd.Printf("cleaned %s\n", rc.paths.Root)
			return nil
		},
	}
}

// cacheEntry is one extracted distribution found under the dists directory.
type cacheEntry struct {
	Artifact string
	Version  string
	// Marker is the recorded build number, or a placeholder when the marker
	// file is absent or unreadable.
	Marker string
}

// listCachedDists walks dists/<artifact>/<version> and reads each entry's
// marker file.
func listCachedDists(cachePaths paths.CachePaths) ([]cacheEntry, error) {
	artifacts, err := os.ReadDir(cachePaths.DistsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dists dir: %w", err)
	}

	var entries []cacheEntry
	for _, artifact := range artifacts {
		if !artifact.IsDir() {
			continue
		}
		versions, err := os.ReadDir(filepath.Join(cachePaths.DistsDir, artifact.Name()))
		if err != nil {
			return nil, fmt.Errorf("read versions of %s: %w", artifact.Name(), err)
		}
		for _, version := range versions {
			if !version.IsDir() {
				continue
			}
			entries = append(entries, cacheEntry{
				Artifact: artifact.Name(),
				Version:  version.Name(),
				Marker:   readMarker(cachePaths.DistDir(artifact.Name(), version.Name())),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Artifact != entries[j].Artifact {
			return entries[i].Artifact < entries[j].Artifact
		}
		return entries[i].Version < entries[j].Version
	})
	return entries, nil
}

func readMarker(cacheDir string) string {
	data, err := os.ReadFile(dist.MarkerPath(cacheDir))
	if err != nil {
		return "(no marker)"
	}
	return strings.TrimSpace(string(data))
}
