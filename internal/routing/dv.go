package routing

import (
	"math"
	"sync"

	"github.com/okdaichi/meshroute/internal/wire"
)

// DVEngine is the distance-vector routing engine: a single dvTable of
// best known distances plus the neighbor that achieves each, updated
// by relaxation against every neighbor's most recently advertised
// vector. Grounded on the teacher's sdn.Client heartbeat-loop shape
// for the periodic-advertisement half; the relaxation step itself has
// no teacher analogue and is written directly from spec.md §4.8.
//
// No split-horizon, poisoned-reverse, or hold-down timers: this
// mirrors the reference implementation and can count-to-infinity on
// link failure, a known limitation rather than an oversight.
type DVEngine struct {
	self      string
	neighbors *NeighborTable
	table     *RoutingTable

	mu      sync.Mutex
	dist    map[string]Cost
	nextHop map[string]string
}

func NewDVEngine(self string, neighbors *NeighborTable, table *RoutingTable) *DVEngine {
	e := &DVEngine{
		self:      self,
		neighbors: neighbors,
		table:     table,
		dist:      map[string]Cost{self: 0},
		nextHop:   map[string]string{},
	}
	e.seedDirectNeighbors()
	return e
}

// seedDirectNeighbors initializes the vector with each direct
// neighbor mapping to itself, per spec.md §4.8.
func (e *DVEngine) seedDirectNeighbors() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.neighbors.Neighbors() {
		cost, ok := e.neighbors.CostOf(id)
		if !ok {
			continue
		}
		e.dist[id] = cost
		e.nextHop[id] = id
	}
	e.publish()
}

// MakeVector returns the local distance vector for broadcast.
func (e *DVEngine) MakeVector() wire.DVPayload {
	e.mu.Lock()
	defer e.mu.Unlock()

	dist := make(map[string]float64, len(e.dist))
	for dst, c := range e.dist {
		dist[dst] = float64(c)
	}
	return wire.DVPayload{Origin: e.self, Dist: dist}
}

// IngestVector relaxes the local table against a neighbor's
// advertised vector. Reports whether anything changed, so the caller
// knows whether to reprint/re-advertise.
func (e *DVEngine) IngestVector(v wire.DVPayload) bool {
	neighborCost, ok := e.neighbors.CostOf(v.Origin)
	if !ok {
		return false // vector from a non-neighbor is not relaxable
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	for dst, d := range v.Dist {
		if dst == e.self {
			continue
		}
		candidate := neighborCost + Cost(d)
		current, known := e.dist[dst]
		if !known || candidate < current {
			e.dist[dst] = candidate
			e.nextHop[dst] = v.Origin
			changed = true
		}
	}

	if changed {
		e.publish()
	}
	return changed
}

// publish rebuilds the RoutingTable from the current dist/nextHop
// state. Caller must hold e.mu.
func (e *DVEngine) publish() {
	entries := make(map[string]RouteEntry, len(e.dist))
	for dst, c := range e.dist {
		if dst == e.self || math.IsInf(float64(c), 1) {
			continue
		}
		entries[dst] = RouteEntry{NextHop: e.nextHop[dst], Cost: float64(c)}
	}
	e.table.Replace(entries)
}
