package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const settingsCacheTTL = 60 * time.Second

// SettingsService reads per-tenant configuration with a Redis read-through
// cache. Redis being down degrades to direct Postgres reads; it never fails a
// lookup.
type SettingsService struct {
	settings repository.SettingsRepository
	cache    *redis.Client
	logger   *zap.Logger
}

// NewSettingsService constructs the service. cache may be nil.
func NewSettingsService(settings repository.SettingsRepository, cache *redis.Client, logger *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, cache: cache, logger: logger}
}

// Get returns the raw setting value, pgx.ErrNoRows when absent.
func (s *SettingsService) Get(ctx context.Context, companyID, key string) ([]byte, error) {
	cacheKey := settingsCacheKey(companyID, key)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("settings cache read failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}

	value, err := s.settings.Get(ctx, companyID, key)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, value, settingsCacheTTL).Err(); err != nil {
			s.logger.Debug("settings cache write failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}
	return value, nil
}

// Set stores a setting and invalidates the cached copy.
func (s *SettingsService) Set(ctx context.Context, companyID, key string, value []byte) error {
	if !json.Valid(value) {
		return errors.New("setting value must be valid JSON")
	}
	if err := s.settings.Upsert(ctx, companyID, key, value); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, settingsCacheKey(companyID, key)).Err(); err != nil {
			s.logger.Debug("settings cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

// List returns all settings for a company.
func (s *SettingsService) List(ctx context.Context, companyID string) ([]domain.SystemSetting, error) {
	return s.settings.ListByCompany(ctx, companyID)
}

// EventEnabled consults the events_to_n8n toggle map. Events default to
// enabled: a missing setting, a missing key, or any read failure all mean
// "attempt the dispatch".
func (s *SettingsService) EventEnabled(ctx context.Context, companyID string, eventType events.EventType) bool {
	raw, err := s.Get(ctx, companyID, domain.SettingKeyEventsToN8N)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("event toggle lookup failed; defaulting to enabled",
				zap.Error(err), zap.String("company_id", companyID))
		}
		return true
	}

	toggles := map[string]bool{}
	if err := json.Unmarshal(raw, &toggles); err != nil {
		s.logger.Warn("event toggle setting malformed; defaulting to enabled",
			zap.Error(err), zap.String("company_id", companyID))
		return true
	}

	enabled, ok := toggles[toggleKey(eventType)]
	if !ok {
		return true
	}
	return enabled
}

func settingsCacheKey(companyID, key string) string {
	return "settings:" + companyID + ":" + key
}

// toggleKey maps "ticket.created" to the stored flag name "ticket_created".
func toggleKey(eventType events.EventType) string {
	return strings.ReplaceAll(string(eventType), ".", "_")
}
