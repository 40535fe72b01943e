package exchange

import (
	"context"
	"errors"
	"fmt"
	"go-exchange-rate-graph/domain"
	"go-exchange-rate-graph/graph"
	"sync"
)

// ErrNotLoaded conversion requested before any graph was loaded
var ErrNotLoaded = errors.New("no exchange rates loaded")

// Service interface for converting from one currency to another
type Service interface {
	// Convert converts amount along the route with the fewest hops from one currency to another.
	Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error)

	// Reload replaces the exchange rates used by later conversions.
	Reload(ctx context.Context, g *graph.Graph) error
}

// service converts on a shared graph. A graph keeps the configured conversion
// and the last route, so lock is held from configuration to conversion.
type service struct {
	lock  sync.Mutex
	graph *graph.Graph
}

// NewService constructs a valid Service. g may be nil until the first Reload.
func NewService(g *graph.Graph) Service {
	return &service{
		graph: g,
	}
}

// Convert computes a conversion from one currency to another with the loaded exchange rates.
func (s *service) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (domain.Exchanged, error) {
	if err := ctx.Err(); err != nil {
		return domain.Exchanged{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.graph == nil {
		return domain.Exchanged{}, ErrNotLoaded
	}
	if err := s.graph.SetSource(from); err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert [%v -> %v]: %w", from, to, err)
	}
	if err := s.graph.SetDestination(to); err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert [%v -> %v]: %w", from, to, err)
	}
	if err := s.graph.SetAmount(amount); err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert [%v -> %v]: %w", from, to, err)
	}
	if !s.graph.FindRoute() {
		return domain.Exchanged{}, fmt.Errorf("convert [%v -> %v]: %w", from, to, graph.ErrNoRoute)
	}
	return s.graph.Exchange()
}

// Reload swaps the graph once no conversion is running on the current one.
func (s *service) Reload(_ context.Context, g *graph.Graph) error {
	if g == nil {
		return ErrNotLoaded
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.graph = g
	return nil
}
