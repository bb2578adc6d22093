package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the parameters of a catalog synchronization run.
type Config struct {
	// FeedURL is the paginated releases endpoint.
	FeedURL string `yaml:"feed_url"`
	// PageSize is the number of releases requested per page.
	PageSize int `yaml:"page_size"`
	// CatalogFile is the path to the JSON catalog.
	CatalogFile string `yaml:"catalog_file"`
	// AssetPrefix is the first component of asset file names ("zen" in zen.linux-x86_64.tar.xz).
	AssetPrefix string `yaml:"asset_prefix"`
	// AssetExtensions lists the archive extensions accepted per system.
	AssetExtensions []string `yaml:"asset_extensions"`
	// HashCommand is the argv of the hashing tool. The URLPlaceholder element
	// is replaced with the asset URL, otherwise the URL is appended.
	HashCommand []string `yaml:"hash_command"`
	// Timeout bounds every feed page request.
	Timeout time.Duration `yaml:"timeout"`
	// HashTimeout bounds every hashing tool invocation.
	HashTimeout time.Duration `yaml:"hash_timeout"`
	// WorkersPerCPU scales the per-release worker pool by the logical CPU count.
	WorkersPerCPU int `yaml:"workers_per_cpu"`
	// LogLevel is the minimum level of emitted log entries.
	LogLevel string `yaml:"log_level"`
	// Bootstrap seeds a catalog when the catalog file does not exist yet.
	Bootstrap Bootstrap `yaml:"bootstrap"`
}

// Bootstrap lists the systems and channels of a brand new catalog.
type Bootstrap struct {
	// Systems are the target platforms to resolve downloads for.
	Systems []string `yaml:"systems"`
	// Channels are the channel names, in catalog order.
	Channels []string `yaml:"channels"`
}

const (
	// DefaultConfigFilename is the default filename for synchronizer settings.
	DefaultConfigFilename = "release-catalog.yaml"

	// DefaultCatalogFilename is the default filename of the JSON catalog.
	DefaultCatalogFilename = "info.json"

	// DefaultFeedURL is the releases endpoint of the Zen browser repository.
	DefaultFeedURL = "https://api.github.com/repos/zen-browser/desktop/releases"

	// DefaultPageSize is the number of releases requested per feed page.
	DefaultPageSize = 100

	// DefaultAssetPrefix is the file name prefix of release archives.
	DefaultAssetPrefix = "zen"

	// DefaultTimeout bounds a single feed page request.
	DefaultTimeout = 30 * time.Second

	// DefaultHashTimeout bounds a single hashing tool invocation.
	DefaultHashTimeout = 10 * time.Minute

	// DefaultWorkersPerCPU is the per-release pool size factor.
	DefaultWorkersPerCPU = 4

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// URLPlaceholder is substituted with the asset URL in HashCommand.
	URLPlaceholder = "{url}"

	// DefaultFilePermissions is the permission of files written by the tool.
	DefaultFilePermissions = 0o644
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errHashCommandRequired is returned when the hashing tool is not configured.
	errHashCommandRequired = errors.New("hash command must be provided")
	// errInvalidPageSize is returned for a negative page size.
	errInvalidPageSize = errors.New("page size must be positive")
)

// DefaultAssetExtensions returns the archive extensions matched per system.
func DefaultAssetExtensions() []string {
	return []string{"tar.bz2", "tar.xz"}
}

// DefaultHashCommand returns the nix prefetch invocation used to hash assets.
func DefaultHashCommand() []string {
	return []string{"nix", "store", "prefetch-file", URLPlaceholder, "--log-format", "raw", "--json"}
}

// Default returns a validated configuration with every field at its default.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Defaults always pass validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// An empty path or a missing default file yields the defaults; a missing
// file that was asked for explicitly is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for unset fields and checks the rest for formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}

	if _, err := url.ParseRequestURI(cfg.FeedURL); err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	switch {
	case cfg.PageSize == 0:
		cfg.PageSize = DefaultPageSize
	case cfg.PageSize < 0:
		return fmt.Errorf("%w: %d", errInvalidPageSize, cfg.PageSize)
	}

	if cfg.CatalogFile == "" {
		cfg.CatalogFile = DefaultCatalogFilename
	}

	if cfg.AssetPrefix == "" {
		cfg.AssetPrefix = DefaultAssetPrefix
	}

	if len(cfg.AssetExtensions) == 0 {
		cfg.AssetExtensions = DefaultAssetExtensions()
	}

	if cfg.HashCommand == nil {
		cfg.HashCommand = DefaultHashCommand()
	}

	if len(cfg.HashCommand) == 0 || cfg.HashCommand[0] == "" {
		return errHashCommandRequired
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.HashTimeout <= 0 {
		cfg.HashTimeout = DefaultHashTimeout
	}

	if cfg.WorkersPerCPU <= 0 {
		cfg.WorkersPerCPU = DefaultWorkersPerCPU
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return nil
}

// HashArgs renders HashCommand for assetURL.
func (c *Config) HashArgs(assetURL string) []string {
	args := slices.Clone(c.HashCommand)

	if i := slices.Index(args, URLPlaceholder); i >= 0 {
		args[i] = assetURL

		return args
	}

	return append(args, assetURL)
}
