package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/release-catalog/internal/config"
	domain "github.com/oshokin/release-catalog/internal/domain/catalog"
	"github.com/oshokin/release-catalog/internal/feed"
	"github.com/oshokin/release-catalog/internal/hasher"
	"github.com/oshokin/release-catalog/internal/logger"
	"github.com/oshokin/release-catalog/internal/pool"
	repository "github.com/oshokin/release-catalog/internal/repository/catalog"
	"github.com/oshokin/release-catalog/internal/version"
)

// Options are inputs accepted by the synchronizer entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// CatalogFile overrides the catalog path from the settings.
	CatalogFile string
	// LogLevel overrides the log level from the settings.
	LogLevel string
	// Progress draws a progress bar on stderr while releases are processed.
	Progress bool
	// DryRun computes the catalog without writing it.
	DryRun bool
}

// Result summarizes a finished run.
type Result struct {
	// Catalog is the computed catalog.
	Catalog *domain.Catalog
	// Changed is set when the computed catalog differs from the loaded one.
	Changed bool
	// Written is set when the catalog file was replaced.
	Written bool
}

var (
	// errUnknownLogLevel is returned for an unparsable log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNoCatalog is returned when there is neither a catalog nor a bootstrap section.
	errNoCatalog = errors.New("catalog file is missing and no bootstrap systems are configured")
)

// runner holds the collaborators of a single synchronization.
type runner struct {
	cfg    *config.Config        // Settings after overrides.
	opts   *Options              // Caller options.
	repo   repository.Repository // Catalog persistence.
	feed   *feed.Client          // Upstream release listing.
	merger *Merger               // Merge and channel selection.
	marker *marker               // Held for the duration of the run.
}

// Run executes a synchronization and is the public entry point for the CLI.
// Every failure, including unreadable settings and a held run marker, is
// logged before it is returned.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "release-catalog")

	result, err := synchronize(ctx, opts)
	if err != nil {
		logger.ErrorKV(ctx, "Synchronization failed", "error", err)

		return nil, err
	}

	return result, nil
}

// synchronize prepares the runner and performs a single run.
func synchronize(ctx context.Context, opts *Options) (*Result, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	r, err := newRunner(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	defer r.cleanup(ctx)

	return r.run(ctx)
}

// loadConfig reads settings and applies the caller overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.CatalogFile != "" {
		cfg.CatalogFile = opts.CatalogFile
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownLogLevel, cfg.LogLevel)
	}

	logger.SetLevel(level)

	return cfg, nil
}

// newRunner wires the collaborators and acquires the run marker.
func newRunner(ctx context.Context, cfg *config.Config, opts *Options) (*runner, error) {
	client, err := feed.NewClient(cfg.FeedURL,
		feed.WithPageSize(cfg.PageSize),
		feed.WithRequestTimeout(cfg.Timeout),
		feed.WithUserAgent("release-catalog/"+version.Short()),
	)
	if err != nil {
		return nil, err
	}

	var progress Progress = noopProgress{}
	if opts.Progress {
		progress = NewBarProgress(os.Stderr)
	}

	resolver := NewResolver(
		hasher.NewCommand(cfg.HashArgs, cfg.HashTimeout),
		cfg.AssetPrefix,
		cfg.AssetExtensions,
	)

	repo := repository.NewFileRepository(cfg.CatalogFile)

	runMarker, err := acquireMarker(ctx, markerPath(repo.Path()))
	if err != nil {
		return nil, err
	}

	return &runner{
		cfg:    cfg,
		opts:   opts,
		repo:   repo,
		feed:   client,
		merger: NewMerger(resolver, WithWorkers(pool.PerCPU(cfg.WorkersPerCPU)), WithProgress(progress)),
		marker: runMarker,
	}, nil
}

// run loads the catalog, fetches the feed, merges and saves if needed.
func (r *runner) run(ctx context.Context) (*Result, error) {
	previous, err := r.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Fetching releases", "feed", r.cfg.FeedURL)

	releases, err := r.feed.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Fetched releases", "count", len(releases))

	next, err := r.merger.Sync(ctx, releases, previous)
	if err != nil {
		return nil, err
	}

	result := &Result{Catalog: next}

	if previous.Equal(next) {
		logger.Info(ctx, "Catalog is up to date")

		return result, nil
	}

	result.Changed = true

	if r.opts.DryRun {
		logger.InfoKV(ctx, "Catalog is out of date, dry run leaves it untouched",
			"versions", next.Versions.Len(), "previous_versions", previous.Versions.Len())

		return result, nil
	}

	if err = r.repo.Save(ctx, next); err != nil {
		return nil, err
	}

	result.Written = true

	logger.InfoKV(ctx, "Catalog updated", "path", r.cfg.CatalogFile, "versions", next.Versions.Len())

	return result, nil
}

// loadCatalog reads the previous catalog or bootstraps an empty one.
func (r *runner) loadCatalog(ctx context.Context) (*domain.Catalog, error) {
	previous, err := r.repo.Load(ctx)

	switch {
	case err == nil:
		return previous, nil
	case errors.Is(err, repository.ErrNotFound) && len(r.cfg.Bootstrap.Systems) > 0:
		logger.InfoKV(ctx, "Catalog not found, bootstrapping",
			"systems", r.cfg.Bootstrap.Systems, "channels", r.cfg.Bootstrap.Channels)

		return bootstrapCatalog(r.cfg.Bootstrap), nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", r.cfg.CatalogFile, errNoCatalog)
	default:
		return nil, fmt.Errorf("load catalog: %w", err)
	}
}

// bootstrapCatalog builds an empty catalog with the configured systems and channels.
func bootstrapCatalog(seed config.Bootstrap) *domain.Catalog {
	channels := domain.NewOrdered[string](len(seed.Channels))
	for _, name := range seed.Channels {
		channels.Set(name, "")
	}

	return &domain.Catalog{
		Systems:  append([]domain.System(nil), seed.Systems...),
		Channels: channels,
		Versions: domain.NewOrdered[domain.Version](0),
	}
}

// cleanup releases the run marker.
func (r *runner) cleanup(ctx context.Context) {
	r.marker.release(ctx)
}
