package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// versionsOf builds a newest-first version map from (version, channel) pairs.
func versionsOf(pairs ...[2]string) Ordered[Version] {
	versions := NewOrdered[Version](len(pairs))

	for _, pair := range pairs {
		versions.Set(pair[0], Version{
			Info: VersionInfo{
				Version: pair[0],
				Channel: ChannelCode(pair[1]),
			},
		})
	}

	return versions
}

// TestSelectChannels picks the newest version per channel.
func TestSelectChannels(t *testing.T) {
	t.Parallel()

	versions := versionsOf(
		[2]string{"V3", "b"},
		[2]string{"V2", "s"},
		[2]string{"V1", "s"},
	)

	got := SelectChannels(versions, []string{"stable", "beta"})

	require.Equal(t, 2, got.Len())

	stable, _ := got.Get("stable")
	beta, _ := got.Get("beta")

	require.Equal(t, "V2", stable)
	require.Equal(t, "V3", beta)
	require.Equal(t, []string{"beta", "stable"}, got.Keys())
}

// TestSelectChannels_EdgeCases covers empty channel sets, unknown codes and unmatched channels.
func TestSelectChannels_EdgeCases(t *testing.T) {
	t.Parallel()

	versions := versionsOf(
		[2]string{"V3", "x"},
		[2]string{"V2", "t"},
		[2]string{"V1", "b"},
	)

	// Nothing configured, nothing assigned.
	require.Equal(t, 0, SelectChannels(versions, nil).Len())

	// Unknown code "x" is skipped, "release" stays unassigned.
	got := SelectChannels(versions, []string{"release", "twilight", "beta"})
	require.Equal(t, []string{"twilight", "beta"}, got.Keys())

	// Colliding first characters: the later name owns the code.
	got = SelectChannels(versions, []string{"beta", "bleeding"})
	require.Equal(t, []string{"bleeding"}, got.Keys())
}
