package exchange

import (
	"context"
	"errors"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/graph"
	"sync"
	"testing"
)

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddExchange("USD", "EUR", decimal.RequireFromString("0.8")))
	require.NoError(t, g.AddExchange("EUR", "GBP", decimal.RequireFromString("0.9")))
	require.NoError(t, g.AddExchange("JPY", "KRW", decimal.RequireFromString("13.1151")))
	return g
}

func TestService_Convert(t *testing.T) {
	service := NewService(newGraph(t))

	type args struct {
		amount int64
		from   domain.Currency
		to     domain.Currency
	}
	tests := []struct {
		name    string
		args    args
		want    int64
		route   []domain.Currency
		wantErr error
	}{
		{
			"usd -> eur",
			args{100, "USD", "EUR"},
			80,
			[]domain.Currency{"USD", "EUR"},
			nil,
		},
		{
			"usd -> gbp",
			args{100, "USD", "GBP"},
			72,
			[]domain.Currency{"USD", "EUR", "GBP"},
			nil,
		},
		{
			"gbp -> usd",
			args{72, "gbp", "usd"},
			100,
			[]domain.Currency{"GBP", "EUR", "USD"},
			nil,
		},
		{
			"usd -> jpy",
			args{100, "USD", "JPY"},
			0,
			nil,
			graph.ErrNoRoute,
		},
		{
			"usd -> xyz",
			args{100, "USD", "XYZ"},
			0,
			nil,
			graph.ErrUnknownCurrency,
		},
		{
			"abc -> usd",
			args{100, "ABC", "USD"},
			0,
			nil,
			graph.ErrUnknownCurrency,
		},
		{
			"negative",
			args{-1, "USD", "EUR"},
			0,
			nil,
			graph.ErrNegativeAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Convert(context.Background(), decimal.NewFromInt(tt.args.amount), tt.args.from, tt.args.to)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "Convert() error = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Amount)
			assert.Equal(t, tt.route, got.Route)
		})
	}
}

func TestService_NotLoaded(t *testing.T) {
	service := NewService(nil)

	_, err := service.Convert(context.Background(), decimal.NewFromInt(1), "USD", "EUR")
	assert.True(t, errors.Is(err, ErrNotLoaded))

	assert.True(t, errors.Is(service.Reload(context.Background(), nil), ErrNotLoaded))
	require.NoError(t, service.Reload(context.Background(), newGraph(t)))

	got, err := service.Convert(context.Background(), decimal.NewFromInt(100), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(80), got.Amount)
}

func TestService_Cancelled(t *testing.T) {
	service := NewService(newGraph(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Convert(ctx, decimal.NewFromInt(100), "USD", "EUR")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestService_ConcurrentConversions(t *testing.T) {
	service := NewService(newGraph(t))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			got, err := service.Convert(context.Background(), decimal.NewFromInt(100), "USD", "GBP")
			assert.NoError(t, err)
			assert.Equal(t, int64(72), got.Amount)
		}()
		go func() {
			defer wg.Done()
			got, err := service.Convert(context.Background(), decimal.NewFromInt(100), "GBP", "EUR")
			assert.NoError(t, err)
			assert.Equal(t, int64(111), got.Amount)
		}()
	}
	wg.Wait()
}

func TestDecorators(t *testing.T) {
	reg := prometheus.NewRegistry()
	service := NewService(newGraph(t))
	service = NewLoggingService(log.NewNopLogger(), service)
	service = NewInstrumentingService(reg, service)

	_, err := service.Convert(context.Background(), decimal.NewFromInt(100), "USD", "GBP")
	require.NoError(t, err)
	_, err = service.Convert(context.Background(), decimal.NewFromInt(100), "USD", "JPY")
	require.Error(t, err)
	_, err = service.Convert(context.Background(), decimal.NewFromInt(100), "USD", "XYZ")
	require.Error(t, err)
	require.NoError(t, service.Reload(context.Background(), newGraph(t)))

	is := service.(*instrumentingService)
	assert.Equal(t, float64(1), testutil.ToFloat64(is.conversions.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(is.conversions.WithLabelValues("no_route")))
	assert.Equal(t, float64(1), testutil.ToFloat64(is.conversions.WithLabelValues("unknown_currency")))
	assert.Equal(t, float64(1), testutil.ToFloat64(is.reloads))
	assert.Equal(t, 1, testutil.CollectAndCount(is.hops))
}
