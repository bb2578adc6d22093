package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/release-catalog/internal/config"
	"github.com/oshokin/release-catalog/internal/logger"
)

// markerSuffix is appended to the catalog path to name the run marker.
const markerSuffix = ".lock"

// ErrAlreadyRunning is returned when another run holds the catalog marker.
var ErrAlreadyRunning = errors.New("another synchronization is running")

// marker marks that a run owns the catalog file to avoid parallel execution.
type marker struct {
	// path is the marker file location.
	path string
}

// markerPath returns the marker location for a catalog file.
func markerPath(catalogPath string) string {
	return catalogPath + markerSuffix
}

// acquireMarker creates the marker holding the current PID. A marker left by a
// process that is gone, or that now belongs to another program, is stale and
// gets replaced.
func acquireMarker(ctx context.Context, path string) (*marker, error) {
	logger.Debugf(ctx, "Checking for the presence of a run marker at %s", path)

	contents, err := os.ReadFile(path)
	switch {
	case err == nil:
		if isOwnerAlive(ctx, strings.TrimSpace(string(contents))) {
			return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
		}

		logger.Info(ctx, "The run marker is stale, removing it")

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale marker: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No run in progress.
	default:
		return nil, fmt.Errorf("read marker: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
		}

		return nil, fmt.Errorf("create marker: %w", err)
	}

	_, err = file.WriteString(strconv.Itoa(os.Getpid()))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(path)

		return nil, fmt.Errorf("write marker: %w", err)
	}

	return &marker{path: path}, nil
}

// release removes the marker.
func (m *marker) release(ctx context.Context) {
	if m == nil {
		return
	}

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove run marker", "path", m.path, "error", err)
	}
}

// isOwnerAlive reports whether the PID recorded in a marker belongs to a
// running process of the same executable as this one.
func isOwnerAlive(ctx context.Context, recorded string) bool {
	pid, err := strconv.Atoi(recorded)
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return false
	}

	owner, err := ps.FindProcess(pid)
	if err != nil {
		// Unable to inspect the process table: assume the owner is alive.
		logger.WarnKV(ctx, "Unable to inspect marker owner", "pid", pid, "error", err)

		return true
	}

	if owner == nil {
		return false
	}

	self, err := ps.FindProcess(os.Getpid())
	if err != nil || self == nil {
		return true
	}

	return owner.Executable() == self.Executable()
}
