package coinbase

import (
	"context"
	"fmt"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go-exchange-rate-graph/domain"
	"sync"
	"time"
)

// cachingService decorates a coinbase.Service with a cache of exchange rates.
// The cachingService is concurrency safe and will periodically refresh cached values.
type cachingService struct {
	// next the service being decorated with a cache
	next Service
	// cache the cache of rates
	cache map[domain.Currency]domain.Rates

	// updateFrequency how often to refresh cached values
	updateFrequency time.Duration

	// lock synchronizes access to cache to make it concurrency safe
	lock sync.RWMutex

	logger log.Logger
}

// NewCachingService returns a new caching Service. Cached currencies are
// refreshed every updateFrequency until the context of their first lookup is done.
func NewCachingService(updateFrequency time.Duration, logger log.Logger, s Service) Service {
	return &cachingService{
		next:            s,
		cache:           map[domain.Currency]domain.Rates{},
		updateFrequency: updateFrequency,
		logger:          logger,
	}
}

// ExchangeRates looks up exchange rates and caches the results
func (s *cachingService) ExchangeRates(ctx context.Context, currency domain.Currency) (domain.Rates, error) {
	s.lock.RLock()
	rates, ok := s.cache[currency]
	s.lock.RUnlock()

	if ok {
		return rates, nil
	}

	// Concurrent misses on the same currency may all refresh; only the first
	// one to store a value starts the periodic refresh.
	rates, firstTime, err := s.refreshNow(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("refreshing cache [%v]: %w", currency, err)
	}
	if firstTime {
		level.Debug(s.logger).Log("msg", "scheduling periodic refresh", "currency", currency, "every", s.updateFrequency)
		go s.refreshPeriodically(ctx, currency)
	}
	return rates, nil
}

// refreshNow refreshes a cached entry immediately
func (s *cachingService) refreshNow(ctx context.Context, currency domain.Currency) (domain.Rates, bool, error) {
	rates, err := s.next.ExchangeRates(ctx, currency)
	if err != nil {
		return nil, false, fmt.Errorf("refresh [%v]: %w", currency, err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.cache[currency]
	s.cache[currency] = rates
	return rates, !ok, nil
}

// refreshPeriodically refreshes a cached entry on a given schedule.
// This is expected to be called from a go-routine for each currency.
func (s *cachingService) refreshPeriodically(ctx context.Context, currency domain.Currency) {
	ticker := time.NewTicker(s.updateFrequency)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _, err := s.refreshNow(ctx, currency)
			if err != nil {
				// keep the stale rates and hope this is a transient error
				level.Warn(s.logger).Log("msg", "periodic refresh failed", "currency", currency, "err", err)
			}
		case <-ctx.Done():
			level.Debug(s.logger).Log("msg", "stopping periodic refresh", "currency", currency)
			s.uncache(currency)
			return
		}
	}
}

// uncache safely removes currency from cachingService
func (s *cachingService) uncache(currency domain.Currency) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.cache, currency)
}
