package exchange

import (
	"context"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/graph"
	"time"
)

// loggingService decorates an exchange.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (ex domain.Exchanged, err error) {
	defer func(begin time.Time) {
		logger := level.Info(s.logger)
		if err != nil {
			logger = level.Warn(s.logger)
		}
		logger.Log(
			"method", "convert",
			"amount", amount,
			"from", from,
			"to", to,
			"hops", ex.Hops(),
			"converted_amount", ex.Amount,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}

func (s *loggingService) Reload(ctx context.Context, g *graph.Graph) (err error) {
	defer func(begin time.Time) {
		var currencies, edges int
		if g != nil {
			currencies, edges = g.Len(), len(g.Edges())
		}
		level.Info(s.logger).Log(
			"method", "reload",
			"currencies", currencies,
			"edges", edges,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Reload(ctx, g)
}
