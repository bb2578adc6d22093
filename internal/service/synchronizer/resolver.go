package synchronizer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	domain "github.com/oshokin/release-catalog/internal/domain/catalog"
	"github.com/oshokin/release-catalog/internal/hasher"
	"github.com/oshokin/release-catalog/internal/logger"
	"github.com/oshokin/release-catalog/internal/pool"
)

// DownloadResolver produces the downloads of a single release.
type DownloadResolver interface {
	Resolve(ctx context.Context, release *domain.Release, systems []domain.System) (domain.Ordered[domain.Download], error)
}

// Resolver matches release assets to systems and hashes them concurrently,
// one task per system.
type Resolver struct {
	// hasher computes the content hash of an asset URL.
	hasher hasher.Hasher
	// assetPrefix is the file name component preceding the system name.
	assetPrefix string
	// extensions lists the accepted archive extensions.
	extensions []string
}

// assetJob is an asset selected for a system.
type assetJob struct {
	// system is the platform the asset belongs to.
	system domain.System
	// url is the asset download location.
	url string
}

// NewResolver creates a Resolver matching "<assetPrefix>.<system>.<extension>" file names.
func NewResolver(h hasher.Hasher, assetPrefix string, extensions []string) *Resolver {
	return &Resolver{
		hasher:      h,
		assetPrefix: assetPrefix,
		extensions:  slices.Clone(extensions),
	}
}

// Resolve returns one download per system that has a matching asset, sorted
// by system name. Systems without an asset are left out. When several assets
// match a system, the first one in release order is used.
func (r *Resolver) Resolve(
	ctx context.Context,
	release *domain.Release,
	systems []domain.System,
) (domain.Ordered[domain.Download], error) {
	jobs := r.match(release, systems)

	downloads, err := pool.Map(ctx, len(systems), jobs, func(ctx context.Context, job assetJob) (domain.Download, error) {
		return r.hash(ctx, job)
	})
	if err != nil {
		return domain.Ordered[domain.Download]{}, err
	}

	order := make([]int, len(jobs))
	for i := range order {
		order[i] = i
	}

	slices.SortFunc(order, func(a, b int) int {
		return strings.Compare(jobs[a].system, jobs[b].system)
	})

	result := domain.NewOrdered[domain.Download](len(jobs))
	for _, i := range order {
		result.Set(jobs[i].system, downloads[i])
	}

	return result, nil
}

// match selects at most one asset per system.
func (r *Resolver) match(release *domain.Release, systems []domain.System) []assetJob {
	wanted := make(map[string]domain.System, len(systems)*len(r.extensions))

	for _, system := range systems {
		for _, extension := range r.extensions {
			wanted[r.assetPrefix+"."+system+"."+extension] = system
		}
	}

	var (
		jobs  = make([]assetJob, 0, len(systems))
		taken = make(map[domain.System]struct{}, len(systems))
	)

	for _, asset := range release.Assets {
		system, ok := wanted[asset.Name]
		if !ok {
			continue
		}

		if _, seen := taken[system]; seen {
			continue
		}

		taken[system] = struct{}{}

		jobs = append(jobs, assetJob{
			system: system,
			url:    asset.BrowserDownloadURL,
		})
	}

	return jobs
}

// hash runs the hashing collaborator for a single asset.
func (r *Resolver) hash(ctx context.Context, job assetJob) (domain.Download, error) {
	described := domain.DescribeURL(job.url)

	logger.Infof(ctx, "Computing hash for %s", described)

	hash, err := r.hasher.Hash(ctx, job.url)
	if err != nil {
		return domain.Download{}, fmt.Errorf("hash %s: %w", described, err)
	}

	logger.Infof(ctx, "Hash for %s is %s", described, hash)

	return domain.Download{
		URL:  job.url,
		Hash: hash,
	}, nil
}
