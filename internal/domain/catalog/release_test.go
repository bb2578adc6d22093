package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseVersionInfo covers both channel grammar branches and the suffix handling.
func TestParseVersionInfo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		releaseName string
		version     string
		channel     ChannelCode
	}{
		{
			name:        "two segments take the second segment",
			releaseName: "App - 1.0-t (build)",
			version:     "1.0-t",
			channel:     "t",
		},
		{
			name:        "single segment takes the last character",
			releaseName: "App - 1.0 (build)",
			version:     "1.0",
			channel:     "0",
		},
		{
			name:        "beta release with dotted channel segment",
			releaseName: "Zen Browser - 1.0.2-b.3 (Beta)",
			version:     "1.0.2-b.3",
			channel:     "b",
		},
		{
			name:        "suffix-less name",
			releaseName: "Zen Browser - 1.7.5b",
			version:     "1.7.5b",
			channel:     "b",
		},
		{
			name:        "more than two segments fall back to the first segment",
			releaseName: "App - 1.0s-b-2 (odd)",
			version:     "1.0s-b-2",
			channel:     "s",
		},
		{
			name:        "extra separators after the version are ignored",
			releaseName: "App - 2.0t - mirror",
			version:     "2.0t",
			channel:     "t",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			info, err := ParseVersionInfo(&Release{
				Name:        tc.releaseName,
				PublishedAt: "2024-01-01T00:00:00Z",
			})
			require.NoError(t, err)
			require.Equal(t, tc.version, info.Version)
			require.Equal(t, tc.channel, info.Channel)
			require.Equal(t, "2024-01-01T00:00:00Z", info.PublishedAt)
		})
	}
}

// TestParseVersionInfo_Malformed ensures names outside the grammar are rejected.
func TestParseVersionInfo_Malformed(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"no separator at all",
		"App -  (build)",
		"App - 1.0- (build)",
		"App - -a-b",
	} {
		_, err := ParseVersionInfo(&Release{Name: name})
		require.ErrorIs(t, err, ErrMalformedName, name)
	}
}

// TestRelease_Validate checks required release and asset fields.
func TestRelease_Validate(t *testing.T) {
	t.Parallel()

	valid := Release{
		Name:        "App - 1.0",
		PublishedAt: "2024-01-01T00:00:00Z",
		Assets: []Asset{
			{Name: "zen.linux-x86_64.tar.xz", BrowserDownloadURL: "https://example.com/zen.tar.xz"},
		},
	}
	require.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	require.ErrorIs(t, noName.Validate(), ErrMissingField)

	noDate := valid
	noDate.PublishedAt = ""
	require.ErrorIs(t, noDate.Validate(), ErrMissingField)

	badAsset := valid
	badAsset.Assets = []Asset{{Name: "zen.linux-x86_64.tar.xz"}}
	require.ErrorIs(t, badAsset.Validate(), ErrMissingField)
}

// TestDescribeURL verifies the "<file> (<tag>)" rendering used in progress messages.
func TestDescribeURL(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"zen.linux-x86_64.tar.bz2 (1.0.2-b.3)",
		DescribeURL("https://github.com/zen-browser/desktop/releases/download/1.0.2-b.3/zen.linux-x86_64.tar.bz2"),
	)
	require.Equal(t, "zen.tar.xz", DescribeURL("zen.tar.xz"))
}
