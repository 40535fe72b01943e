package coinbase

import (
	"context"
	"errors"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"go-exchange-rate-graph/domain"
	"sync/atomic"
	"testing"
	"time"
)

type mock struct {
	count int32
	err   error
}

func (m *mock) ExchangeRates(_ context.Context, _ domain.Currency) (domain.Rates, error) {
	atomic.AddInt32(&m.count, 1)
	if m.err != nil {
		return nil, m.err
	}
	return domain.Rates{}, nil
}

func (m *mock) calls() int32 {
	return atomic.LoadInt32(&m.count)
}

func TestCachingService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background()) // must cancel to stop go-routine started by this test
	defer cancel()

	var underlyingService mock
	s := NewCachingService(1*time.Minute, log.NewNopLogger(), &underlyingService)

	_, _ = s.ExchangeRates(ctx, "ABC")
	assert.Equal(t, int32(1), underlyingService.calls())

	_, _ = s.ExchangeRates(ctx, "ABC")
	assert.Equal(t, int32(1), underlyingService.calls())

	_, _ = s.ExchangeRates(ctx, "XYZ")
	assert.Equal(t, int32(2), underlyingService.calls())
}

func TestCachingService_PeriodicRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background()) // must cancel to stop go-routine started by this test
	defer cancel()

	var underlyingService mock
	s := NewCachingService(1*time.Millisecond, log.NewNopLogger(), &underlyingService)

	_, _ = s.ExchangeRates(ctx, "ABC")
	assert.Eventually(t, func() bool {
		return underlyingService.calls() > 1
	}, time.Second, time.Millisecond)
}

func TestCachingService_Error(t *testing.T) {
	underlyingService := mock{err: errors.New("boom")}
	s := NewCachingService(1*time.Minute, log.NewNopLogger(), &underlyingService)

	_, err := s.ExchangeRates(context.Background(), "ABC")
	assert.Error(t, err)

	_, _ = s.ExchangeRates(context.Background(), "ABC")
	assert.Equal(t, int32(2), underlyingService.calls(), "failures are not cached")
}
