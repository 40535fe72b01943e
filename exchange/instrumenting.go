package exchange

import (
	"context"
	"errors"
	"github.com/prometheus/client_golang/prometheus"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/graph"
	"time"
)

// instrumentingService decorates an exchange.Service with prometheus metrics
type instrumentingService struct {
	conversions *prometheus.CounterVec
	latency     prometheus.Histogram
	hops        prometheus.Histogram
	reloads     prometheus.Counter
	next        Service
}

// NewInstrumentingService registers the conversion metrics with reg and returns an instrumented Service
func NewInstrumentingService(reg prometheus.Registerer, s Service) Service {
	is := &instrumentingService{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rategraph_conversions_total",
			Help: "Conversions by outcome",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rategraph_conversion_duration_seconds",
			Help:    "Time spent finding a route and converting",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		hops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rategraph_route_hops",
			Help:    "Hops of the routes used by successful conversions",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rategraph_reloads_total",
			Help: "Exchange rate graphs loaded",
		}),
		next: s,
	}
	reg.MustRegister(is.conversions, is.latency, is.hops, is.reloads)
	return is
}

func (s *instrumentingService) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error) {
	begin := time.Now()
	ex, err := s.next.Convert(ctx, amount, from, to)
	s.latency.Observe(time.Since(begin).Seconds())
	s.conversions.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		s.hops.Observe(float64(ex.Hops()))
	}
	return ex, err
}

func (s *instrumentingService) Reload(ctx context.Context, g *graph.Graph) error {
	err := s.next.Reload(ctx, g)
	if err == nil {
		s.reloads.Inc()
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, graph.ErrNoRoute):
		return "no_route"
	case errors.Is(err, graph.ErrUnknownCurrency):
		return "unknown_currency"
	case errors.Is(err, graph.ErrNegativeAmount):
		return "invalid_amount"
	default:
		return "error"
	}
}
