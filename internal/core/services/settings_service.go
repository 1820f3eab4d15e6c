package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
	"github.com/kamal-hamza/webpaste/internal/logger"
)

// SettingsService owns the quality preference
// Reads are lock-free and always see the latest value; a paste in flight may use a stale one
type SettingsService struct {
	store   ports.SettingsStore
	quality atomic.Int32
	saveMu  sync.Mutex
}

// storedSettings mirrors domain.Settings with optional fields
// so that absent keys can be told apart from zero values
type storedSettings struct {
	Quality *float64 `yaml:"quality"`
}

// NewSettingsService creates a settings service holding the defaults
func NewSettingsService(store ports.SettingsStore) *SettingsService {
	s := &SettingsService{store: store}
	s.quality.Store(int32(domain.DefaultQuality))
	return s
}

// Load merges the persisted blob over the defaults
// Missing or unreadable values keep their default; out-of-range quality is clamped.
// On error the defaults stay in effect.
func (s *SettingsService) Load(ctx context.Context) error {
	settings := domain.DefaultSettings()
	defer func() { s.quality.Store(int32(settings.Quality)) }()

	data, err := s.store.LoadData(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var stored storedSettings
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}

	if q := stored.Quality; q != nil && !math.IsNaN(*q) {
		rounded := math.Round(*q)
		switch {
		case rounded < domain.MinQuality:
			settings.Quality = domain.MinQuality
		case rounded > domain.MaxQuality:
			settings.Quality = domain.MaxQuality
		default:
			settings.Quality = int(rounded)
		}
		if float64(settings.Quality) != *q {
			logger.Warn("stored quality %v adjusted to %d", *q, settings.Quality)
		}
	}

	return nil
}

// Quality returns the current quality (1-100)
func (s *SettingsService) Quality() int {
	return int(s.quality.Load())
}

// Settings returns a snapshot of the current settings
func (s *SettingsService) Settings() domain.Settings {
	return domain.Settings{Quality: s.Quality()}
}

// SetQuality clamps q, applies it and persists the settings immediately
// The new value is in effect even if persisting fails
func (s *SettingsService) SetQuality(ctx context.Context, q int) (int, error) {
	q = domain.ClampQuality(q)
	s.quality.Store(int32(q))

	if err := s.Save(ctx); err != nil {
		return q, err
	}
	return q, nil
}

// Save writes the current settings through the store
func (s *SettingsService) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	data, err := yaml.Marshal(s.Settings())
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.store.SaveData(ctx, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
