package synchronizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/release-catalog/internal/domain/catalog"
)

// TestResolver_SortsBySystem resolves out-of-order assets into a system-sorted map.
func TestResolver_SortsBySystem(t *testing.T) {
	t.Parallel()

	h := new(fakeHasher)
	r := NewResolver(h, "zen", []string{"tar.bz2", "tar.xz"})

	rel := domain.Release{
		Name:        "Zen - 1.0",
		PublishedAt: "2024-01-01T00:00:00Z",
		Assets: []domain.Asset{
			{Name: "zen.macos-arm64.tar.bz2", BrowserDownloadURL: assetURL("1.0", "zen.macos-arm64.tar.bz2")},
			{Name: "zen.installer.exe", BrowserDownloadURL: assetURL("1.0", "zen.installer.exe")},
			{Name: "zen.linux-x64.tar.xz", BrowserDownloadURL: assetURL("1.0", "zen.linux-x64.tar.xz")},
		},
	}

	downloads, err := r.Resolve(context.Background(), &rel, []string{"macos-arm64", "linux-x64", "windows-x64"})
	require.NoError(t, err)
	require.Equal(t, []string{"linux-x64", "macos-arm64"}, downloads.Keys())

	linux, ok := downloads.Get("linux-x64")
	require.True(t, ok)
	require.Equal(t, domain.Download{
		URL:  assetURL("1.0", "zen.linux-x64.tar.xz"),
		Hash: "sha256-zen.linux-x64.tar.xz",
	}, linux)

	// The unrelated installer is never hashed, the missing system is not an error.
	require.Equal(t, 2, h.Calls())
}

// TestResolver_FirstMatchWins hashes a single asset per system.
func TestResolver_FirstMatchWins(t *testing.T) {
	t.Parallel()

	h := new(fakeHasher)
	r := NewResolver(h, "zen", []string{"tar.bz2", "tar.xz"})

	rel := domain.Release{
		Name: "Zen - 1.0",
		Assets: []domain.Asset{
			{Name: "zen.linux-x64.tar.bz2", BrowserDownloadURL: assetURL("1.0", "zen.linux-x64.tar.bz2")},
			{Name: "zen.linux-x64.tar.xz", BrowserDownloadURL: assetURL("1.0", "zen.linux-x64.tar.xz")},
		},
	}

	downloads, err := r.Resolve(context.Background(), &rel, []string{"linux-x64"})
	require.NoError(t, err)
	require.Equal(t, 1, downloads.Len())
	require.Equal(t, 1, h.Calls())

	linux, _ := downloads.Get("linux-x64")
	require.Equal(t, "sha256-zen.linux-x64.tar.bz2", linux.Hash)
}

// TestResolver_Failure aborts the resolution when a hash fails.
func TestResolver_Failure(t *testing.T) {
	t.Parallel()

	rel := release("1.0", "2024-01-01T00:00:00Z", "linux-x64", "macos-arm64")
	h := &fakeHasher{failOn: rel.Assets[1].BrowserDownloadURL}

	_, err := NewResolver(h, "zen", []string{"tar.xz"}).Resolve(context.Background(), &rel, []string{"linux-x64", "macos-arm64"})
	require.ErrorIs(t, err, errTestHash)
}

// TestResolver_NoSystems returns an empty map without hashing.
func TestResolver_NoSystems(t *testing.T) {
	t.Parallel()

	h := new(fakeHasher)
	rel := release("1.0", "2024-01-01T00:00:00Z", "linux-x64")

	downloads, err := NewResolver(h, "zen", []string{"tar.xz"}).Resolve(context.Background(), &rel, nil)
	require.NoError(t, err)
	require.Equal(t, 0, downloads.Len())
	require.Equal(t, 0, h.Calls())
}
