package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/rs/zerolog"
)

// settingsCacheKey is bumped whenever the cached representation changes.
const settingsCacheKey = "shopfront:settings:v1"

// Cache is a shared store for JSON-encodable values.
type Cache interface {
	// Get decodes the value at key into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type settingsService struct {
	repo   repository.SettingsRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSettingsService creates a settings service. cache may be nil, in which
// case every snapshot is read from the database.
func NewSettingsService(repo repository.SettingsRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) SettingsService {
	return &settingsService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("service", "settings").Logger(),
	}
}

// Snapshot reads through the cache. Cache failures fall back to the database.
func (s *settingsService) Snapshot(ctx context.Context) (model.Settings, error) {
	if s.cache != nil {
		var cached model.Settings
		found, err := s.cache.Get(ctx, settingsCacheKey, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Msg("settings cache read failed")
		} else if found {
			return cached, nil
		}
	}

	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	snapshot := model.NewSettings(values)

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, snapshot, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("settings cache write failed")
		}
	}

	return snapshot, nil
}

// Update writes values and refreshes the shared cache entry. The entry is
// dropped before the re-read and then overwritten with the fresh snapshot,
// so a reader that cached the old values meanwhile does not keep them.
func (s *settingsService) Update(ctx context.Context, values map[string]string) (model.Settings, error) {
	if len(values) == 0 {
		return model.Settings{}, model.NewValidationError("at least one setting is required")
	}
	for key := range values {
		if strings.TrimSpace(key) == "" {
			return model.Settings{}, model.NewValidationError("setting keys must not be empty")
		}
	}

	if err := s.repo.Upsert(ctx, values); err != nil {
		return model.Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info().Int("count", len(values)).Msg("settings updated")

	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	snapshot := model.NewSettings(values)

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, snapshot, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("settings cache write failed")
			s.invalidate(ctx)
		}
	}

	return snapshot, nil
}

func (s *settingsService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.logger.Error().Err(err).Msg("failed to invalidate settings cache")
	}
}
