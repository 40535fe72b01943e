// Package graph models currencies as nodes of a directed weighted graph and
// converts amounts along the route with the fewest hops between two of them.
//
// A Graph is not safe for concurrent use. Callers that share one graph between
// goroutines must hold a lock across configuration, FindRoute and Convert.
package graph

import (
	"fmt"
	"github.com/shopspring/decimal"
	"go-exchange-rate-graph/domain"
	"strings"
)

// NodeID position of a node in its graph
type NodeID int

// none marks an absent node reference
const none NodeID = -1

// Node a currency and the indices of the edges leaving it, in registration order.
type Node struct {
	Currency domain.Currency
	edges    []int
}

// Edge a directed exchange: an amount in From multiplied by Rate gives an amount in To.
type Edge struct {
	From NodeID
	To   NodeID
	Rate domain.Rate
}

// Graph owns the nodes and the edge arena, plus the conversion currently configured.
type Graph struct {
	nodes []Node
	edges []Edge

	// index maps a currency code to its node
	index map[domain.Currency]NodeID

	source      NodeID
	destination NodeID
	amount      domain.Amount

	// route found by the last FindRoute, nil when stale or not found
	route *Route
}

// New returns an empty graph
func New() *Graph {
	return &Graph{
		index:       map[domain.Currency]NodeID{},
		source:      none,
		destination: none,
		amount:      decimal.Zero,
	}
}

func normalize(code domain.Currency) domain.Currency {
	return domain.Currency(strings.ToUpper(strings.TrimSpace(string(code))))
}

// Node returns the node registered for code, creating it when missing.
func (g *Graph) Node(code domain.Currency) NodeID {
	code = normalize(code)
	if id, ok := g.index[code]; ok {
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{Currency: code})
	g.index[code] = id
	return id
}

// Lookup returns the node registered for code without creating one.
func (g *Graph) Lookup(code domain.Currency) (NodeID, bool) {
	id, ok := g.index[normalize(code)]
	return id, ok
}

// Currency returns the code of a node
func (g *Graph) Currency(id NodeID) domain.Currency {
	return g.nodes[id].Currency
}

// Currencies returns every registered code in registration order.
func (g *Graph) Currencies() []domain.Currency {
	codes := make([]domain.Currency, len(g.nodes))
	for i, n := range g.nodes {
		codes[i] = n.Currency
	}
	return codes
}

// Len number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Edges returns a copy of the edge arena in registration order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// Outgoing returns the edges leaving a node in registration order.
func (g *Graph) Outgoing(id NodeID) []Edge {
	out := make([]Edge, 0, len(g.nodes[id].edges))
	for _, e := range g.nodes[id].edges {
		out = append(out, g.edges[e])
	}
	return out
}

// AddExchange registers an exchange from one currency to another and its reversal.
// The reverse edge carries 1/rate rounded to domain.Precision places.
// On error the graph is left untouched.
func (g *Graph) AddExchange(from, to domain.Currency, rate domain.Rate) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: %v -> %v at %v", ErrInvalidRate, from, to, rate)
	}
	inverse := domain.Round(decimal.NewFromInt(1).Div(rate))
	if !inverse.IsPositive() {
		return fmt.Errorf("%w: %v -> %v at %v has no inverse at %d places", ErrInvalidRate, from, to, rate, domain.Precision)
	}

	start := g.Node(from)
	end := g.Node(to)
	g.link(start, end, rate)
	g.link(end, start, inverse)
	g.route = nil
	return nil
}

func (g *Graph) link(from, to NodeID, rate domain.Rate) {
	g.edges = append(g.edges, Edge{From: from, To: to, Rate: rate})
	g.nodes[from].edges = append(g.nodes[from].edges, len(g.edges)-1)
}

// SetSource selects the currency to convert from. The currency must already be registered.
func (g *Graph) SetSource(code domain.Currency) error {
	id, ok := g.Lookup(code)
	if !ok {
		return fmt.Errorf("source %v: %w", code, ErrUnknownCurrency)
	}
	if id != g.source {
		g.source = id
		g.route = nil
	}
	return nil
}

// SetDestination selects the currency to convert to. The currency must already be registered.
func (g *Graph) SetDestination(code domain.Currency) error {
	id, ok := g.Lookup(code)
	if !ok {
		return fmt.Errorf("destination %v: %w", code, ErrUnknownCurrency)
	}
	if id != g.destination {
		g.destination = id
		g.route = nil
	}
	return nil
}

// SetAmount sets the amount to convert
func (g *Graph) SetAmount(amount domain.Amount) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %v", ErrNegativeAmount, amount)
	}
	g.amount = amount
	return nil
}

// Source returns the configured source currency, if any
func (g *Graph) Source() (domain.Currency, bool) {
	if g.source == none {
		return "", false
	}
	return g.nodes[g.source].Currency, true
}

// Destination returns the configured destination currency, if any
func (g *Graph) Destination() (domain.Currency, bool) {
	if g.destination == none {
		return "", false
	}
	return g.nodes[g.destination].Currency, true
}

// Amount returns the configured amount
func (g *Graph) Amount() domain.Amount {
	return g.amount
}

// FindRoute looks for a route from the configured source to the configured
// destination and keeps it for Convert. It reports whether one exists.
func (g *Graph) FindRoute() bool {
	g.route = nil
	if g.source == none || g.destination == none {
		return false
	}
	route, ok := g.find(g.source, g.destination)
	if !ok {
		return false
	}
	g.route = &route
	return true
}

// Convert applies the route found by FindRoute to the configured amount and
// rounds the result to a whole number, half to even.
func (g *Graph) Convert() (int64, error) {
	ex, err := g.Exchange()
	if err != nil {
		return 0, err
	}
	return ex.Amount, nil
}

// Exchange is Convert with the route and the exact amount kept.
func (g *Graph) Exchange() (domain.Exchanged, error) {
	if g.route == nil {
		return domain.Exchanged{}, ErrNoRoute
	}
	exact := g.route.Apply(g.amount)
	return domain.Exchanged{
		Route:  g.route.Currencies(),
		Exact:  exact,
		Amount: exact.RoundBank(0).IntPart(),
	}, nil
}
