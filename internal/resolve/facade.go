package resolve

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/edaniels/golog"

	"ideadep/internal/config"
	"ideadep/internal/coords"
	"ideadep/internal/dist"
	"ideadep/internal/paths"
	"ideadep/internal/plugins"
	"ideadep/internal/repo"
)

// LocalName identifies dependencies resolved from a pre-existing directory.
const LocalName = "ideaLocal"

// Capabilities the facade consumes. Kept as swappable package vars so tests
// can stub the expensive pieces.
var (
	ensureExtracted = dist.EnsureExtracted
	readBuildNumber = dist.ReadBuildNumber
	scanPlugins     = plugins.Scan
	isZipArchive    = dist.IsZipArchive
)

// Request describes a remote resolution.
type Request struct {
	Type        coords.PlatformType
	Version     string
	WantSources bool
	Extras      []string
}

// Reporter receives per-item progress updates during a resolution. Statuses
// are downloading, downloaded, skipped, and error; rows start out as pending
// on the CLI side.
type Reporter interface {
	Step(item, status string)
}

type nopReporter struct{}

func (nopReporter) Step(string, string) {}

// Resolver orchestrates coordinate resolution, download, cache extraction,
// and extra-artifact resolution into one ResolvedDependency. Configuration is
// passed in explicitly; a Resolver holds no ambient global state.
type Resolver struct {
	cfg        config.Config
	paths      paths.CachePaths
	downloader repo.Downloader
	logger     golog.Logger
	reporter   Reporter
}

// New constructs a Resolver.
func New(cfg config.Config, cachePaths paths.CachePaths, downloader repo.Downloader, logger golog.Logger) *Resolver {
	return &Resolver{
		cfg:        cfg,
		paths:      cachePaths,
		downloader: downloader,
		logger:     logger,
		reporter:   nopReporter{},
	}
}

// SetReporter installs a progress reporter. A nil reporter restores the
// default no-op.
func (r *Resolver) SetReporter(reporter Reporter) {
	if reporter == nil {
		r.reporter = nopReporter{}
		return
	}
	r.reporter = reporter
}

// ResolveRemote downloads, extracts, and assembles the platform dependency
// described by req. Main-artifact failures are fatal; sources and extras are
// best-effort.
func (r *Resolver) ResolveRemote(ctx context.Context, req Request) (ResolvedDependency, error) {
	c, warnings, err := coords.Resolve(req.Type, req.Version, req.WantSources)
	if err != nil {
		return ResolvedDependency{}, err
	}
	for _, warning := range warnings {
		r.logger.Warnw("coordinate resolution", "note", string(warning))
	}

	if err := r.paths.EnsureDirs(); err != nil {
		return ResolvedDependency{}, err
	}

	r.reporter.Step(c.ArtifactName, "downloading")
	files, err := r.downloader.Download(ctx, c, "", "zip")
	if err != nil {
		r.reporter.Step(c.ArtifactName, "error")
		return ResolvedDependency{}, fmt.Errorf("download %s:%s: %w", c.ArtifactName, c.Version, err)
	}
	if len(files) != 1 {
		r.reporter.Step(c.ArtifactName, "error")
		return ResolvedDependency{}, fmt.Errorf("resolving %s:%s returned %d files, expected exactly one", c.ArtifactName, c.Version, len(files))
	}

	cacheDir := r.paths.DistDir(c.ArtifactName, c.Version)
	root, err := ensureExtracted(ctx, r.logger, files[0], cacheDir, c.Type, r.cfg.CheckVersion)
	if err != nil {
		r.reporter.Step(c.ArtifactName, "error")
		return ResolvedDependency{}, fmt.Errorf("extract %s:%s: %w", c.ArtifactName, c.Version, err)
	}

	buildNumber, err := readBuildNumber(root)
	if err != nil {
		r.reporter.Step(c.ArtifactName, "error")
		return ResolvedDependency{}, fmt.Errorf("read build number: %w", err)
	}
	r.reporter.Step(c.ArtifactName, "downloaded")

	sourcesFile := ""
	if c.SourcesAvailable {
		sourcesFile = r.resolveSources(ctx, c)
	}

	registry, err := scanPlugins(root)
	if err != nil {
		r.logger.Warnw("plugin scan failed; continuing with empty registry", "root", root, "error", err)
		registry = plugins.Registry{}
	}

	extras, err := r.resolveExtras(ctx, req.Version, req.Extras)
	if err != nil {
		return ResolvedDependency{}, err
	}

	dep := newDependency(c.ArtifactName, c.Type, req.Version, buildNumber, root, sourcesFile, registry, extras)
	r.logger.Infow("resolved platform dependency", "dependency", dep.String(), "jars", len(dep.JarFiles), "plugins", dep.Plugins.Len(), "extras", len(dep.Extras))
	return dep, nil
}

// resolveSources fetches the sources jar for the main artifact. Sources are
// best-effort: any failure, absence, or ambiguity downgrades to a warning and
// the dependency resolves without sources.
func (r *Resolver) resolveSources(ctx context.Context, c coords.Coordinates) string {
	r.reporter.Step("sources", "downloading")
	files, err := r.downloader.Download(ctx, c, "sources", "jar")
	if err != nil {
		r.logger.Warnw("cannot resolve sources; continuing without them", "artifact", c.ArtifactName, "version", c.Version, "error", err)
		r.reporter.Step("sources", "skipped")
		return ""
	}
	if len(files) != 1 {
		r.logger.Warnw("sources resolution was ambiguous; continuing without them", "artifact", c.ArtifactName, "version", c.Version, "files", len(files))
		r.reporter.Step("sources", "skipped")
		return ""
	}
	r.reporter.Step("sources", "downloaded")
	return files[0]
}

// ResolveLocal exposes a pre-existing extracted directory as a dependency.
// The directory path serves as both version and identity; no extras are
// resolved.
func (r *Resolver) ResolveLocal(ctx context.Context, localPath, sourcesPath string) (ResolvedDependency, error) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return ResolvedDependency{}, fmt.Errorf("resolve local path: %w", err)
	}
	ok, err := paths.DirExists(abs)
	if err != nil {
		return ResolvedDependency{}, fmt.Errorf("inspect local path %s: %w", abs, err)
	}
	if !ok {
		return ResolvedDependency{}, fmt.Errorf("local platform path %s does not exist or is not a directory", abs)
	}

	buildNumber, err := readBuildNumber(abs)
	if err != nil {
		return ResolvedDependency{}, fmt.Errorf("read build number: %w", err)
	}

	sourcesFile := ""
	if sourcesPath != "" {
		exists, err := paths.FileExists(sourcesPath)
		if err != nil || !exists {
			r.logger.Warnw("local sources file unusable; continuing without it", "path", sourcesPath, "error", err)
		} else {
			sourcesFile = sourcesPath
		}
	}

	registry, err := scanPlugins(abs)
	if err != nil {
		r.logger.Warnw("plugin scan failed; continuing with empty registry", "root", abs, "error", err)
		registry = plugins.Registry{}
	}

	// Local trees are identified by their path, not a repository version.
	dep := newDependency(LocalName, "", abs, buildNumber, abs, sourcesFile, registry, nil)
	r.logger.Infow("resolved local platform dependency", "dependency", dep.String())
	return dep, nil
}
