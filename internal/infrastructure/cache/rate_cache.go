package cache

import (
	"context"
	"time"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/damon-houk/donation-ledger/internal/domain/repository"
	"github.com/damon-houk/donation-ledger/internal/domain/service"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/metrics"
)

// DefaultExpiration is the freshness window of a stored rate snapshot
const DefaultExpiration = 12 * time.Hour

// RateCache serves exchange rates from the persisted snapshot while it is
// fresh and refreshes it from the provider once it has expired
type RateCache struct {
	repo       repository.RateSnapshotRepository
	provider   service.RateProvider
	base       string
	symbols    []string
	expiration time.Duration
	now        func() time.Time
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewRateCache creates a new rate cache for base against symbols
func NewRateCache(repo repository.RateSnapshotRepository, provider service.RateProvider, base string, symbols []string, log logger.Logger, m *metrics.Metrics) *RateCache {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}

	return &RateCache{
		repo:       repo,
		provider:   provider,
		base:       base,
		symbols:    symbols,
		expiration: DefaultExpiration,
		now:        time.Now,
		logger:     log,
		metrics:    m,
	}
}

// SetExpiration sets the freshness window
func (c *RateCache) SetExpiration(duration time.Duration) {
	c.expiration = duration
}

// SetClock replaces the time source
func (c *RateCache) SetClock(now func() time.Time) {
	c.now = now
}

// GetRates returns the best available rates. It never fails: when the
// provider cannot be reached the last stored rates are returned, and zero
// rates when nothing was ever stored.
func (c *RateCache) GetRates(ctx context.Context) entity.Rates {
	now := c.now()

	cached, err := c.repo.Load(ctx)
	if err != nil {
		c.logger.Warn("Failed to read cached exchange rates", map[string]interface{}{
			"error": err.Error(),
		})
		cached = nil
	}

	if cached.IsFresh(now, c.expiration) {
		c.metrics.RateCacheHitsTotal.Inc()
		return cached.Rates
	}

	start := time.Now()
	rates, err := c.provider.FetchRates(ctx, c.base, c.symbols)
	c.metrics.RateRefreshDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.RateRefreshesTotal.WithLabelValues("failure").Inc()
		c.logger.Error("Failed to refresh exchange rates", map[string]interface{}{
			"base":    c.base,
			"symbols": c.symbols,
			"error":   err.Error(),
		})

		// Stale data beats zeros; a failed fetch is never persisted so the next call retries
		if cached != nil && len(cached.Rates) > 0 {
			return cached.Rates
		}
		return c.zeroRates()
	}

	c.metrics.RateRefreshesTotal.WithLabelValues("success").Inc()

	snapshot := &entity.ExchangeRateSnapshot{
		Rates:     rates,
		Timestamp: now.UnixMilli(),
	}
	if err := c.repo.Save(ctx, snapshot); err != nil {
		c.logger.Warn("Failed to store exchange rates", map[string]interface{}{
			"error": err.Error(),
		})
	}

	c.logger.Info("Exchange rates refreshed", map[string]interface{}{
		"base":  c.base,
		"rates": rates,
	})

	return rates
}

func (c *RateCache) zeroRates() entity.Rates {
	rates := make(entity.Rates, len(c.symbols))
	for _, symbol := range c.symbols {
		rates[symbol] = 0
	}
	return rates
}
