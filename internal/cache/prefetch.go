package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/asheeshkh/mausam/internal/input"
	"github.com/asheeshkh/mausam/internal/models"
)

// ReportFetcher is implemented by the service layer to fetch a report for a
// classified query. Used by Prefetcher to avoid a circular dependency on the
// service package.
type ReportFetcher interface {
	Get(ctx context.Context, q input.Query) (models.Report, error)
}

// Prefetcher warms the cache at startup by fetching the configured favourite
// locations, so the first lookup of a daily-checked city is a cache hit.
type Prefetcher struct {
	fetcher ReportFetcher
	logger  *zap.Logger
}

// NewPrefetcher creates a Prefetcher using the given fetcher and logger.
func NewPrefetcher(fetcher ReportFetcher, logger *zap.Logger) *Prefetcher {
	return &Prefetcher{fetcher: fetcher, logger: logger}
}

// Warm fetches each location in order, populating the cache through the
// fetcher. Locations are run sequentially; the session model is one request
// at a time and warming follows it. Failures are logged and skipped, never
// fatal: a dead network at startup must not prevent the prompt from showing.
func (p *Prefetcher) Warm(ctx context.Context, locations []string) {
	if len(locations) == 0 {
		return
	}
	start := time.Now()
	if p.logger != nil {
		p.logger.Info("prefetching favourite locations", zap.Int("count", len(locations)))
	}
	var failed int
	for _, loc := range locations {
		q, err := input.Classify(loc)
		if err != nil || q.Kind == input.KindQuit || q.Kind == input.KindStats {
			failed++
			if p.logger != nil {
				p.logger.Warn("skipping favourite location", zap.String("location", loc), zap.Error(err))
			}
			continue
		}
		if _, err := p.fetcher.Get(ctx, q); err != nil {
			failed++
			if p.logger != nil {
				p.logger.Warn("prefetch failed", zap.String("location", loc), zap.Error(err))
			}
		}
	}
	if p.logger != nil {
		p.logger.Info("prefetch complete",
			zap.Int("locations", len(locations)),
			zap.Int("failed", failed),
			zap.Duration("duration", time.Since(start)))
	}
}
