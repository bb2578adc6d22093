package synchronizer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/oshokin/release-catalog/internal/config"
	domain "github.com/oshokin/release-catalog/internal/domain/catalog"
	"github.com/oshokin/release-catalog/internal/logger"
	"github.com/oshokin/release-catalog/internal/pool"
)

// Merger turns a feed snapshot and the previous catalog into a new catalog.
type Merger struct {
	// resolver builds downloads for releases that need fresh hashes.
	resolver DownloadResolver
	// workers is the number of releases processed at once.
	workers int
	// progress is notified once per processed release.
	progress Progress
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithWorkers sets the number of releases processed at once.
func WithWorkers(workers int) MergerOption {
	return func(m *Merger) {
		if workers > 0 {
			m.workers = workers
		}
	}
}

// WithProgress reports per-release progress to p.
func WithProgress(p Progress) MergerOption {
	return func(m *Merger) {
		if p != nil {
			m.progress = p
		}
	}
}

// NewMerger creates a Merger resolving downloads with resolver.
func NewMerger(resolver DownloadResolver, opts ...MergerOption) *Merger {
	m := &Merger{
		resolver: resolver,
		workers:  pool.PerCPU(config.DefaultWorkersPerCPU),
		progress: noopProgress{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// processed is the outcome of a single release task.
type processed struct {
	// version is the reused or freshly built catalog entry.
	version domain.Version
	// fresh is set when downloads were resolved in this run.
	fresh bool
}

// Sync builds the next catalog: merged versions plus re-selected channels.
// The previous catalog is only read.
func (m *Merger) Sync(ctx context.Context, releases []domain.Release, previous *domain.Catalog) (*domain.Catalog, error) {
	versions, err := m.Merge(ctx, releases, previous)
	if err != nil {
		return nil, err
	}

	return &domain.Catalog{
		Systems:  slices.Clone(previous.Systems),
		Channels: domain.SelectChannels(versions, previous.ChannelNames()),
		Versions: versions,
	}, nil
}

// Merge processes every release concurrently and merges the results with the
// previous versions, newest first.
//
// A release whose version is already cataloged is reused as is, unless it is
// on the testing channel. Every other release gets its downloads resolved.
func (m *Merger) Merge(
	ctx context.Context,
	releases []domain.Release,
	previous *domain.Catalog,
) (domain.Ordered[domain.Version], error) {
	m.progress.Start(len(releases))
	defer m.progress.Done()

	results, err := pool.Map(ctx, m.workers, releases, func(ctx context.Context, release domain.Release) (processed, error) {
		result, err := m.process(ctx, &release, previous)
		if err != nil {
			return processed{}, err
		}

		m.progress.Step(result.version.Info.Version)

		return result, nil
	})
	if err != nil {
		return domain.Ordered[domain.Version]{}, err
	}

	return mergeVersions(ctx, previous.Versions, results), nil
}

// process decides between the cache-hit path and fresh resolution for one release.
func (m *Merger) process(ctx context.Context, release *domain.Release, previous *domain.Catalog) (processed, error) {
	info, err := domain.ParseVersionInfo(release)
	if err != nil {
		return processed{}, err
	}

	if info.Channel != domain.ChannelTesting {
		if known, ok := previous.Versions.Get(info.Version); ok {
			return processed{version: known}, nil
		}
	}

	ctx = logger.WithKV(ctx, "version", info.Version)

	logger.InfoKV(ctx, "Found new version", "channel", info.Channel, "published_at", info.PublishedAt)

	downloads, err := m.resolver.Resolve(ctx, release, previous.Systems)
	if err != nil {
		return processed{}, fmt.Errorf("resolve downloads of %s: %w", info.Version, err)
	}

	return processed{
		version: domain.Version{
			Info:      info,
			Downloads: downloads,
		},
		fresh: true,
	}, nil
}

// mergeVersions overlays the run's results on the previous versions and sorts
// the union by publish time, newest first. Ties keep a fixed base order:
// previous catalog order, then unseen versions in feed order. A version seen
// twice in the feed keeps its first (most recent) occurrence.
func mergeVersions(
	ctx context.Context,
	previous domain.Ordered[domain.Version],
	results []processed,
) domain.Ordered[domain.Version] {
	produced := domain.NewOrdered[domain.Version](len(results))
	fresh := 0

	for _, result := range results {
		key := result.version.Info.Version
		if produced.Has(key) {
			logger.WarnKV(ctx, "Duplicate version in feed, keeping the most recent release", "version", key)

			continue
		}

		produced.Set(key, result.version)

		if result.fresh {
			fresh++
		}
	}

	merged := make([]domain.Version, 0, previous.Len()+produced.Len())

	previous.Each(func(key string, version domain.Version) bool {
		if current, ok := produced.Get(key); ok {
			version = current
		}

		merged = append(merged, version)

		return true
	})

	produced.Each(func(key string, version domain.Version) bool {
		if !previous.Has(key) {
			merged = append(merged, version)
		}

		return true
	})

	slices.SortStableFunc(merged, func(a, b domain.Version) int {
		return strings.Compare(b.Info.PublishedAt, a.Info.PublishedAt)
	})

	versions := domain.NewOrdered[domain.Version](len(merged))
	for _, version := range merged {
		versions.Set(version.Info.Version, version)
	}

	logger.DebugKV(ctx, "Merged versions", "total", versions.Len(), "resolved", fresh)

	return versions
}
