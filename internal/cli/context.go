package cli

import (
	"github.com/edaniels/golog"

	"ideadep/internal/config"
	"ideadep/internal/logx"
	"ideadep/internal/paths"
	"ideadep/internal/repo"
	"ideadep/internal/resolve"
)

// runContext bundles everything a command needs: configuration, cache paths,
// logger, and a ready resolver.
type runContext struct {
	cfg      config.Config
	paths    paths.CachePaths
	logger   golog.Logger
	resolver *resolve.Resolver
}

// newRunContext loads configuration, resolves the cache root, and wires the
// resolver. Flag values win over configuration file values.
func newRunContext() (runContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return runContext{}, err
	}

	if repositoryURL != "" {
		cfg.RepositoryURL = repositoryURL
	}

	root := cacheDir
	if root == "" {
		root = cfg.CacheDir
	}
	cachePaths, err := paths.Resolve(root)
	if err != nil {
		return runContext{}, err
	}

	logger := logx.New(debugLogs, cfg.Context)
	downloader := repo.NewHTTPDownloader(cfg.RepositoryURL, cachePaths.DownloadsDir)
	resolver := resolve.New(cfg, cachePaths, downloader, logger)

	return runContext{
		cfg:      cfg,
		paths:    cachePaths,
		logger:   logger,
		resolver: resolver,
	}, nil
}
