package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// MockAssetRepository is a mock implementation of the AssetRepository interface
type MockAssetRepository struct {
	mu     sync.Mutex
	assets map[string]domain.Asset
}

// NewMockAssetRepository creates a new mock asset repository
func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{
		assets: make(map[string]domain.Asset),
	}
}

// Save persists an asset to the mock store
func (m *MockAssetRepository) Save(ctx context.Context, asset domain.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[asset.Path] = asset
	return nil
}

// Get retrieves an asset by path
func (m *MockAssetRepository) Get(ctx context.Context, path string) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.assets[path]
	if !ok {
		return nil, fmt.Errorf("asset not found")
	}
	return &asset, nil
}

// GetByHash retrieves an asset by its content hash
func (m *MockAssetRepository) GetByHash(ctx context.Context, hash string) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, asset := range m.assets {
		if asset.Hash == hash {
			return &asset, nil
		}
	}

	return nil, fmt.Errorf("asset not found")
}

// Search mock implementation
func (m *MockAssetRepository) Search(ctx context.Context, query string) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []domain.Asset
	query = strings.ToLower(query)
	for _, a := range m.assets {
		if query == "" || strings.Contains(strings.ToLower(a.Filename), query) || strings.Contains(strings.ToLower(a.Document), query) {
			results = append(results, a)
		}
	}
	return results, nil
}

// Delete removes an asset from the mock repository
func (m *MockAssetRepository) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assets, path)
	return nil
}

// Count returns the number of stored records
func (m *MockAssetRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}
