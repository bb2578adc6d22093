package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/release-catalog/internal/config"
	domain "github.com/oshokin/release-catalog/internal/domain/catalog"
)

// Repository defines persistence operations for the catalog.
type Repository interface {
	Load(ctx context.Context) (*domain.Catalog, error)
	Save(ctx context.Context, catalog *domain.Catalog) error
}

var (
	// ErrNotFound is returned when the catalog file does not exist yet.
	ErrNotFound = errors.New("catalog not found")
	// ErrInvalidCatalog is returned when the catalog document breaks the schema
	// or its invariants.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// errCatalogIsNotSet is returned when saving a nil catalog.
	errCatalogIsNotSet = errors.New("catalog is not set")
)

// FileRepository persists the catalog as an indented JSON document.
type FileRepository struct {
	// path is the filesystem location of the catalog.
	path string
	// mu serializes access to the catalog file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the catalog location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and validates the catalog.
func (r *FileRepository) Load(_ context.Context) (*domain.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	if err = validateDocument(contents); err != nil {
		return nil, err
	}

	var catalog domain.Catalog
	if err = json.Unmarshal(contents, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}

	if err = checkKeys(&catalog); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// Save replaces the catalog file with the 2-space indented encoding of catalog.
func (r *FileRepository) Save(_ context.Context, catalog *domain.Catalog) error {
	if catalog == nil {
		return errCatalogIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := Encode(catalog)
	if err != nil {
		return err
	}

	// go-update renames the previous file away, so one has to exist.
	if _, err = os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(r.path, nil, config.DefaultFilePermissions); err != nil {
			return fmt.Errorf("create catalog file: %w", err)
		}
	}

	// Apply stages the bytes next to the target and swaps them in with renames.
	options := goupdate.Options{
		TargetPath: r.path,
		TargetMode: config.DefaultFilePermissions,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}

	return nil
}

// Encode renders catalog as stored on disk.
func Encode(catalog *domain.Catalog) ([]byte, error) {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}

	return data, nil
}

// checkKeys enforces that every versions key equals the version it stores.
func checkKeys(catalog *domain.Catalog) error {
	var err error

	catalog.Versions.Each(func(key string, version domain.Version) bool {
		if key != version.Info.Version {
			err = fmt.Errorf("%w: key %q holds version %q", ErrInvalidCatalog, key, version.Info.Version)

			return false
		}

		return true
	})

	return err
}
