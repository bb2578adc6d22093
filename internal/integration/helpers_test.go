package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-catalog/internal/config"
	domain "github.com/oshokin/release-catalog/internal/domain/catalog"
)

// testSystems are the platforms every fixture release ships archives for.
var testSystems = []string{"linux-aarch64", "linux-x86_64"}

// fixtureRelease builds a feed record named like the upstream releases.
func fixtureRelease(version, label, publishedAt string) domain.Release {
	assets := make([]domain.Asset, 0, len(testSystems)+1)
	for _, system := range testSystems {
		file := "zen." + system + ".tar.xz"
		assets = append(assets, domain.Asset{
			Name:               file,
			BrowserDownloadURL: fmt.Sprintf("https://github.com/zen-browser/desktop/releases/download/%s/%s", version, file),
		})
	}

	// Assets of other platforms are ignored.
	assets = append(assets, domain.Asset{
		Name:               "zen.installer.exe",
		BrowserDownloadURL: "https://github.com/zen-browser/desktop/releases/download/" + version + "/zen.installer.exe",
	})

	return domain.Release{
		Name:        fmt.Sprintf("Zen Browser - %s (%s)", version, label),
		PublishedAt: publishedAt,
		Assets:      assets,
	}
}

// startFeed serves releases as one page followed by an empty page.
func startFeed(t *testing.T, releases []domain.Release) string {
	t.Helper()

	first, err := json.Marshal(releases)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")

		if page <= 1 {
			_, _ = w.Write(first)

			return
		}

		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)

	return server.URL
}

// writeHashTool creates a hashing tool that logs every URL to a calls file.
func writeHashTool(t *testing.T, dir string) (script, callsFile string) {
	t.Helper()

	callsFile = filepath.Join(dir, "hash-calls.log")
	script = filepath.Join(dir, "hash-tool.sh")

	body := strings.Join([]string{
		"#!/bin/sh",
		`echo "$1" >> '` + callsFile + `'`,
		`printf '{"hash":"sha256-%s"}' "$(basename "$(dirname "$1")")-$(basename "$1")"`,
		"",
	}, "\n")

	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	return script, callsFile
}

// hashCalls returns how many times the hashing tool ran.
func hashCalls(t *testing.T, callsFile string) int {
	t.Helper()

	data, err := os.ReadFile(callsFile)
	if os.IsNotExist(err) {
		return 0
	}

	require.NoError(t, err)

	return strings.Count(string(data), "\n")
}

// writeSettings stores a configuration pointing at the fake feed and tool.
func writeSettings(t *testing.T, dir, feedURL, script string) (configPath, catalogPath string) {
	t.Helper()

	configPath = filepath.Join(dir, "release-catalog.yaml")
	catalogPath = filepath.Join(dir, "info.json")

	require.NoError(t, config.Save(configPath, &config.Config{
		FeedURL:       feedURL,
		PageSize:      50,
		CatalogFile:   catalogPath,
		HashCommand:   []string{script, config.URLPlaceholder},
		Timeout:       5 * time.Second,
		HashTimeout:   10 * time.Second,
		WorkersPerCPU: 1,
		LogLevel:      "error",
		Bootstrap: config.Bootstrap{
			Systems:  testSystems,
			Channels: []string{"beta", "twilight"},
		},
	}))

	return configPath, catalogPath
}
