package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ideadep/internal/coords"
)

// extrasGroup is the fixed repository group extra artifacts resolve under.
const extrasGroup = "com.jetbrains.intellij.idea"

// reservedExtraNames are the primary distribution artifact names; an extra
// must not shadow them.
var reservedExtraNames = map[string]struct{}{
	"ideaIC":           {},
	"ideaIU":           {},
	"ideaJPS":          {},
	"clion":            {},
	"pycharmPC":        {},
	"pycharmPY":        {},
	"goland":           {},
	"riderRD":          {},
	"JetBrainsGateway": {},
	"android-studio":   {},
	LocalName:          {},
}

// ResolveExtras resolves supplementary artifacts on their own, without a main
// distribution.
func (r *Resolver) ResolveExtras(ctx context.Context, version string, names []string) ([]ExtraDependency, error) {
	if err := r.paths.EnsureDirs(); err != nil {
		return nil, err
	}
	return r.resolveExtras(ctx, version, names)
}

// resolveExtras resolves the named supplementary artifacts at the given
// version. Name collisions with reserved primary names fail the whole batch
// up front, before any network access; individual resolution failures only
// skip that name. Independent names resolve concurrently, each against its
// own cache subtree.
func (r *Resolver) resolveExtras(ctx context.Context, version string, names []string) ([]ExtraDependency, error) {
	if len(names) == 0 {
		return nil, nil
	}

	var collisions []string
	for _, name := range names {
		if _, reserved := reservedExtraNames[name]; reserved {
			collisions = append(collisions, name)
		}
	}
	if len(collisions) > 0 {
		sort.Strings(collisions)
		return nil, fmt.Errorf("extra dependency names collide with reserved platform names: %s", strings.Join(collisions, ", "))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		extras []ExtraDependency
	)
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			extra, ok := r.resolveExtra(ctx, name, version)
			if !ok {
				return
			}
			mu.Lock()
			extras = append(extras, extra)
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	sort.Slice(extras, func(i, j int) bool { return extras[i].Name < extras[j].Name })
	return extras, nil
}

// resolveExtra resolves one extra artifact. Zero or multiple matching files
// are warned about and skipped; partial success is the normal case for
// optional extras.
func (r *Resolver) resolveExtra(ctx context.Context, name, version string) (ExtraDependency, bool) {
	r.reporter.Step(name, "downloading")

	c := coords.Coordinates{
		Group:        extrasGroup,
		ArtifactName: name,
		Version:      version,
		Channel:      coords.ChannelFor(version),
	}

	var files []string
	for _, extension := range []string{"zip", "jar"} {
		found, err := r.downloader.Download(ctx, c, "", extension)
		if err != nil {
			r.logger.Warnw("extra dependency download failed; skipping", "name", name, "version", version, "error", err)
			r.reporter.Step(name, "error")
			return ExtraDependency{}, false
		}
		files = append(files, found...)
	}
	if len(files) != 1 {
		r.logger.Warnw("extra dependency did not resolve to exactly one file; skipping", "name", name, "version", version, "files", len(files))
		r.reporter.Step(name, "skipped")
		return ExtraDependency{}, false
	}

	file := files[0]
	extra := ExtraDependency{Name: name, Version: version}

	if isZipArchive(file) {
		cacheDir := r.paths.ExtraDir(name, version)
		root, err := ensureExtracted(ctx, r.logger, file, cacheDir, coords.TypeIdeaCommunity, r.cfg.CheckVersion)
		if err != nil {
			r.logger.Warnw("extra dependency extraction failed; skipping", "name", name, "version", version, "error", err)
			r.reporter.Step(name, "error")
			return ExtraDependency{}, false
		}
		extra.Path = root
		extra.JarFiles = jarsIn(root)
	} else {
		extra.Path = file
		if strings.HasSuffix(file, ".jar") {
			extra.JarFiles = []string{file}
		}
	}

	r.reporter.Step(name, "downloaded")
	return extra, true
}
