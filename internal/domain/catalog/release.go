package catalog

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

const (
	// nameSeparator splits a release display name into prefix and version.
	nameSeparator = " - "
	// suffixMarker starts the optional parenthesized suffix after the version.
	suffixMarker = " ("
	// segmentSeparator splits a version into its channel grammar segments.
	segmentSeparator = "-"
)

var (
	// ErrMalformedName is returned when a release name does not follow
	// the "<prefix> - <version>[ (<suffix>)]" form.
	ErrMalformedName = errors.New("malformed release name")
	// ErrMissingField is returned when a release lacks a required field.
	ErrMissingField = errors.New("required field is missing")
)

// Asset is a downloadable file attached to a release.
type Asset struct {
	// Name is the file name of the asset.
	Name string `json:"name"`
	// BrowserDownloadURL is the public download location.
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is a raw record of the upstream release feed.
type Release struct {
	// Name is the display name, e.g. "Zen Browser - 1.0.2-b.3 (Beta)".
	Name string `json:"name"`
	// PublishedAt is the ISO-8601 publish timestamp.
	PublishedAt string `json:"published_at"`
	// Assets lists the files attached to the release.
	Assets []Asset `json:"assets"`
}

// Validate checks that the fields the catalog depends on are present.
func (r *Release) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("release name: %w", ErrMissingField)
	}

	if r.PublishedAt == "" {
		return fmt.Errorf("release %q published_at: %w", r.Name, ErrMissingField)
	}

	for i, asset := range r.Assets {
		if asset.Name == "" || asset.BrowserDownloadURL == "" {
			return fmt.Errorf("release %q asset #%d: %w", r.Name, i, ErrMissingField)
		}
	}

	return nil
}

// ParseVersionInfo extracts the version string and channel code from the
// release name and copies the publish timestamp verbatim.
//
// A version made of exactly two "-" separated segments takes its channel
// from the first character of the second segment ("1.0-b.3" is "b").
// Any other shape takes the last character of the first segment
// ("1.0t" is "t", "1.0-a-b" is "0").
func ParseVersionInfo(release *Release) (VersionInfo, error) {
	fields := strings.Split(release.Name, nameSeparator)
	if len(fields) < 2 {
		return VersionInfo{}, fmt.Errorf("%q has no version field: %w", release.Name, ErrMalformedName)
	}

	version, _, _ := strings.Cut(fields[1], suffixMarker)
	if version == "" {
		return VersionInfo{}, fmt.Errorf("%q has an empty version: %w", release.Name, ErrMalformedName)
	}

	var (
		segments = strings.Split(version, segmentSeparator)
		channel  rune
	)

	// TODO: versions with more than one "-" fall back to the first segment
	// rule; confirm with release owners whether "1.0-b-2" should map to "b".
	if len(segments) == 2 {
		channel, _ = utf8.DecodeRuneInString(segments[1])
	} else {
		channel, _ = utf8.DecodeLastRuneInString(segments[0])
	}

	if channel == utf8.RuneError {
		return VersionInfo{}, fmt.Errorf("%q has no channel code: %w", release.Name, ErrMalformedName)
	}

	return VersionInfo{
		Version:     version,
		PublishedAt: release.PublishedAt,
		Channel:     ChannelCode(channel),
	}, nil
}

// DescribeURL renders an asset URL as "<file> (<tag>)" for progress messages,
// where tag is the path element preceding the file name.
func DescribeURL(rawURL string) string {
	dir, file := path.Split(rawURL)
	tag := path.Base(dir)

	if tag == "." || tag == "/" || tag == "" {
		return file
	}

	return file + " (" + tag + ")"
}
