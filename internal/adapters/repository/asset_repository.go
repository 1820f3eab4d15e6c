package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/pkg/vault"
)

// ErrAssetNotFound is returned when the manifest has no matching record
var ErrAssetNotFound = errors.New("asset not found")

// FileAssetRepository keeps the asset manifest as a JSON file in the vault
type FileAssetRepository struct {
	manifestPath string

	mu     sync.RWMutex
	loaded bool
	cache  map[string]domain.Asset
}

func NewFileAssetRepository(v *vault.Vault) *FileAssetRepository {
	return &FileAssetRepository{
		manifestPath: v.ManifestPath,
		cache:        make(map[string]domain.Asset),
	}
}

// Load reads the manifest from disk
func (r *FileAssetRepository) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

func (r *FileAssetRepository) loadLocked() error {
	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	cache := make(map[string]domain.Asset)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cache); err != nil {
			return fmt.Errorf("failed to parse manifest: %w", err)
		}
	}
	r.cache = cache
	r.loaded = true
	return nil
}

func (r *FileAssetRepository) ensureLoaded() error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	return r.loadLocked()
}

// Save persists an asset to the manifest
func (r *FileAssetRepository) Save(ctx context.Context, asset domain.Asset) error {
	if asset.Path == "" {
		return fmt.Errorf("asset has no path")
	}
	if err := r.ensureLoaded(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[asset.Path] = asset
	return r.flushLocked()
}

// Delete removes an asset record; unknown paths are not an error
func (r *FileAssetRepository) Delete(ctx context.Context, path string) error {
	if err := r.ensureLoaded(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache[path]; !ok {
		return nil
	}
	delete(r.cache, path)
	return r.flushLocked()
}

// flushLocked writes the cache to disk; callers hold the write lock
func (r *FileAssetRepository) flushLocked() error {
	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.manifestPath), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	tmp := r.manifestPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, r.manifestPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

func (r *FileAssetRepository) Get(ctx context.Context, path string) (*domain.Asset, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.cache[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrAssetNotFound)
	}
	return &asset, nil
}

func (r *FileAssetRepository) GetByHash(ctx context.Context, hash string) (*domain.Asset, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, asset := range r.sortedLocked() {
		if asset.Hash == hash {
			return &asset, nil
		}
	}
	return nil, fmt.Errorf("hash %s: %w", hash, ErrAssetNotFound)
}

// Search matches query against filename, path and note, newest first
// An empty query returns every asset
func (r *FileAssetRepository) Search(ctx context.Context, query string) ([]domain.Asset, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var matches []domain.Asset

	for _, asset := range r.sortedLocked() {
		if query == "" ||
			strings.Contains(strings.ToLower(asset.Filename), query) ||
			strings.Contains(strings.ToLower(asset.Path), query) ||
			strings.Contains(strings.ToLower(asset.Document), query) {
			matches = append(matches, asset)
		}
	}

	return matches, nil
}

// List returns every asset, newest first
func (r *FileAssetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	return r.Search(ctx, "")
}

func (r *FileAssetRepository) sortedLocked() []domain.Asset {
	assets := make([]domain.Asset, 0, len(r.cache))
	for _, a := range r.cache {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool {
		if !assets[i].StoredAt.Equal(assets[j].StoredAt) {
			return assets[i].StoredAt.After(assets[j].StoredAt)
		}
		return assets[i].Path < assets[j].Path
	})
	return assets
}
