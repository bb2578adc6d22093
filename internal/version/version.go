package version

import (
	"fmt"
	"runtime/debug"
)

// unset marks a build field that was not injected with -ldflags.
const unset = "unknown"

//nolint:gochecknoglobals // Overridden with -ldflags "-X".
var (
	// Version is the release of the binary.
	Version = "0.1.0"
	// Commit is the VCS revision the binary was built from.
	Commit = unset
	// BuildTime is the UTC timestamp of the build.
	BuildTime = unset
)

// Short returns the release string sent in the feed User-Agent.
func Short() string {
	return Version
}

// Full describes the build. Revision and time missing from -ldflags are
// taken from the VCS stamp the go tool embeds in module builds.
func Full() string {
	commit, built := Commit, BuildTime

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch {
			case setting.Key == "vcs.revision" && commit == unset:
				commit = setting.Value
			case setting.Key == "vcs.time" && built == unset:
				built = setting.Value
			}
		}
	}

	return fmt.Sprintf("release-catalog %s (commit %s, built %s)", Version, commit, built)
}
