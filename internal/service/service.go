package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/asheeshkh/mausam/internal/cache"
	"github.com/asheeshkh/mausam/internal/client"
	"github.com/asheeshkh/mausam/internal/input"
	"github.com/asheeshkh/mausam/internal/models"
	"github.com/asheeshkh/mausam/internal/observability"
)

// WeatherService orchestrates report retrieval using the cache-aside pattern:
// cache get, on miss fetch current plus forecast, cache set.
type WeatherService struct {
	client  client.WeatherClient
	store   cache.Store
	ttl     time.Duration
	backend string
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a WeatherService. backend names the cache backend for metrics
// labels ("in_memory" or "memcached").
func New(c client.WeatherClient, store cache.Store, ttl time.Duration, backend string, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		client:  c,
		store:   store,
		ttl:     ttl,
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the weather report for a classified query. Within the TTL window
// consecutive identical queries are served from cache and make no upstream
// calls. Cache failures degrade to a fetch; a forecast failure after a
// successful current-weather fetch yields a report with an empty forecast.
func (s *WeatherService) Get(ctx context.Context, q input.Query) (models.Report, error) {
	observability.WeatherQueriesTotal.Inc()
	key := q.Key()

	cached, ok, err := s.store.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		if s.logger != nil {
			s.logger.Warn("cache get failed, fetching upstream", zap.String("key", key), zap.Error(err))
		}
	} else if ok {
		observability.CacheHitsTotal.WithLabelValues(s.backend).Inc()
		if s.logger != nil {
			s.logger.Debug("cache hit", zap.String("key", key))
		}
		cached.Cached = true
		return cached, nil
	} else {
		observability.CacheMissesTotal.WithLabelValues(s.backend).Inc()
	}

	if s.logger != nil {
		s.logger.Debug("cache miss, fetching upstream", zap.String("key", key))
	}

	current, err := s.client.FetchCurrent(ctx, q)
	if err != nil {
		return models.Report{}, err
	}

	forecast, err := s.client.FetchForecast(ctx, q)
	if err != nil {
		// Current conditions alone are still worth showing.
		if s.logger != nil {
			s.logger.Warn("forecast fetch failed, showing current weather only",
				zap.String("key", key), zap.Error(err))
		}
		forecast = nil
	}

	report := models.Report{
		Current:   current,
		Forecast:  forecast,
		FetchedAt: s.now(),
	}

	if err := s.store.Set(ctx, key, report, s.ttl); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		if s.logger != nil {
			s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}

	return report, nil
}
