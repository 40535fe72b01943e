package graph

import (
	"fmt"
	"go-exchange-rate-graph/domain"
)

// Route the edges to follow from a source to a destination, in order.
type Route struct {
	edges []Edge
	path  []domain.Currency
}

// Hops number of edges in the route
func (r Route) Hops() int {
	return len(r.edges)
}

// Edges returns the edges of the route from source to destination.
func (r Route) Edges() []Edge {
	edges := make([]Edge, len(r.edges))
	copy(edges, r.edges)
	return edges
}

// Currencies returns the currencies visited, source and destination included.
func (r Route) Currencies() []domain.Currency {
	path := make([]domain.Currency, len(r.path))
	copy(path, r.path)
	return path
}

// Apply converts amount hop by hop, rounding to domain.Precision places after every hop.
func (r Route) Apply(amount domain.Amount) domain.Amount {
	for _, e := range r.edges {
		amount = domain.Round(amount.Mul(e.Rate))
	}
	return amount
}

// Route finds the route with the fewest hops between two registered currencies
// without touching the configured conversion.
func (g *Graph) Route(from, to domain.Currency) (Route, bool, error) {
	start, ok := g.Lookup(from)
	if !ok {
		return Route{}, false, fmt.Errorf("source %v: %w", from, ErrUnknownCurrency)
	}
	end, ok := g.Lookup(to)
	if !ok {
		return Route{}, false, fmt.Errorf("destination %v: %w", to, ErrUnknownCurrency)
	}
	route, found := g.find(start, end)
	return route, found, nil
}

// search traversal state of a single route discovery, indexed by NodeID.
// A distance of 0 means unvisited, the source has distance 1.
type search struct {
	distance    []int
	predecessor []NodeID
}

func newSearch(n int) *search {
	s := &search{
		distance:    make([]int, n),
		predecessor: make([]NodeID, n),
	}
	for i := range s.predecessor {
		s.predecessor[i] = none
	}
	return s
}

// relax explores the graph from source with a LIFO work list. Whenever a node
// is reached unvisited, or in strictly fewer hops than recorded, its distance
// and predecessor are updated and it is pushed again. The destination is never
// expanded. Exploration is depth first, so among routes with the same number
// of hops the one kept depends on edge registration order.
func (g *Graph) relax(source, destination NodeID) *search {
	s := newSearch(len(g.nodes))
	s.distance[source] = 1
	stack := []NodeID{source}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == destination {
			continue
		}

		next := s.distance[current] + 1
		// targets are selected before any of them is updated
		var reached []NodeID
		for _, e := range g.nodes[current].edges {
			to := g.edges[e].To
			if s.distance[to] == 0 || s.distance[to] > next {
				reached = append(reached, to)
			}
		}
		for _, to := range reached {
			s.distance[to] = next
			s.predecessor[to] = current
			stack = append(stack, to)
		}
	}
	return s
}

// find runs a search and rebuilds the route from the predecessors of destination.
func (g *Graph) find(source, destination NodeID) (Route, bool) {
	s := g.relax(source, destination)
	if s.distance[destination] == 0 {
		return Route{}, false
	}

	hops := s.distance[destination] - 1
	edges := make([]Edge, hops)
	path := make([]domain.Currency, hops+1)
	path[hops] = g.nodes[destination].Currency

	node := destination
	for i := hops - 1; i >= 0; i-- {
		parent := s.predecessor[node]
		edges[i] = g.edgeBetween(parent, node)
		path[i] = g.nodes[parent].Currency
		node = parent
	}
	return Route{edges: edges, path: path}, true
}

// edgeBetween first edge registered from one node to another
func (g *Graph) edgeBetween(from, to NodeID) Edge {
	for _, e := range g.nodes[from].edges {
		if g.edges[e].To == to {
			return g.edges[e]
		}
	}
	panic(fmt.Sprintf("graph: no edge from %v to %v", g.nodes[from].Currency, g.nodes[to].Currency))
}
