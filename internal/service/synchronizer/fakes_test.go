package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	domain "github.com/oshokin/release-catalog/internal/domain/catalog"
)

var errTestHash = errors.New("test hash error")

// fakeHasher returns "sha256-<file>" and records every URL it was asked for.
type fakeHasher struct {
	// failOn makes Hash fail for this URL.
	failOn string
	// mu protects calls.
	mu sync.Mutex
	// calls lists the hashed URLs.
	calls []string
}

// Hash records url and derives a hash from its file name.
func (f *fakeHasher) Hash(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if url == f.failOn {
		return "", errTestHash
	}

	return "sha256-" + path.Base(url), nil
}

// Calls returns the number of Hash invocations.
func (f *fakeHasher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

// assetURL builds a download URL for a release tag and file name.
func assetURL(tag, file string) string {
	return fmt.Sprintf("https://github.com/zen-browser/desktop/releases/download/%s/%s", tag, file)
}

// release builds a feed record for version with archives for the given systems.
func release(version, publishedAt string, systems ...string) domain.Release {
	assets := make([]domain.Asset, 0, len(systems))
	for _, system := range systems {
		file := "zen." + system + ".tar.xz"
		assets = append(assets, domain.Asset{
			Name:               file,
			BrowserDownloadURL: assetURL(version, file),
		})
	}

	return domain.Release{
		Name:        "Zen Browser - " + version + " (Release)",
		PublishedAt: publishedAt,
		Assets:      assets,
	}
}

// emptyCatalog returns a catalog with systems and channels but no versions.
func emptyCatalog(systems []string, channels ...string) *domain.Catalog {
	names := domain.NewOrdered[string](len(channels))
	for _, name := range channels {
		names.Set(name, "")
	}

	return &domain.Catalog{
		Systems:  systems,
		Channels: names,
		Versions: domain.NewOrdered[domain.Version](0),
	}
}
