package catalog

import (
	"slices"

	"github.com/google/go-cmp/cmp"
)

// System identifies a target platform, e.g. "linux-x86_64" or "macos-aarch64".
type System = string

// ChannelCode is the single-character code of a distribution channel
// extracted from a release name.
type ChannelCode string

// ChannelTesting marks releases that are republished under the same version
// and therefore are never served from the previous catalog.
const ChannelTesting ChannelCode = "t"

// VersionInfo is the normalized identity of a release.
type VersionInfo struct {
	// Version is the catalog key of the release, unique within a catalog.
	Version string `json:"version"`
	// PublishedAt is the ISO-8601 publish timestamp, comparable lexicographically.
	PublishedAt string `json:"published_at"`
	// Channel is the distribution channel code.
	Channel ChannelCode `json:"channel"`
}

// Download describes a content-addressed asset of a version.
type Download struct {
	// URL is where the asset can be downloaded from.
	URL string `json:"url"`
	// Hash is the content hash reported by the hashing tool.
	Hash string `json:"hash"`
}

// Version is a catalog entry: the release identity and one download per system.
type Version struct {
	// Info is the parsed release identity.
	Info VersionInfo `json:"info"`
	// Downloads maps system names to their download, sorted by system name.
	Downloads Ordered[Download] `json:"downloads"`
}

// Catalog is the persisted set of known versions.
type Catalog struct {
	// Systems lists the target platforms assets are resolved for.
	Systems []System `json:"systems"`
	// Channels maps channel names to the latest version published on them.
	Channels Ordered[string] `json:"channels"`
	// Versions maps version strings to entries, newest first.
	Versions Ordered[Version] `json:"versions"`
}

// ChannelNames returns the configured channel names in catalog order.
func (c *Catalog) ChannelNames() []string {
	return c.Channels.Keys()
}

// Equal reports structural equality. Map members are compared by content,
// the systems list by order.
func (c *Catalog) Equal(other *Catalog) bool {
	if c == nil || other == nil {
		return c == other
	}

	return slices.Equal(c.Systems, other.Systems) &&
		c.Channels.Equal(other.Channels) &&
		cmp.Equal(c.Versions, other.Versions)
}
