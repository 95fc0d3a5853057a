package routing

import (
	"sync"

	"github.com/okdaichi/meshroute/internal/wire"
)

// LSREngine is the link-state routing engine: it owns the local
// sequence counter, delegates installation to the LSDB, and recomputes
// the RoutingTable via Dijkstra whenever a new LSP changes the graph.
// Grounded on the teacher's topology.dijkstraRouter plus
// bjoern621-ChatProtoGol's Router (RecalculateLocalLSA /
// BuildRoutingTable split between "what do I advertise" and "what do I
// route with").
type LSREngine struct {
	self      string
	neighbors *NeighborTable
	lsdb      *LSDB
	table     *RoutingTable

	mu  sync.Mutex
	seq uint64
}

func NewLSREngine(self string, neighbors *NeighborTable, lsdb *LSDB, table *RoutingTable) *LSREngine {
	return &LSREngine{self: self, neighbors: neighbors, lsdb: lsdb, table: table}
}

// MakeLocalLSP increments the sequence counter and snapshots the
// node's direct links as an LSP. Every neighbor in the NeighborTable
// is included; HELLO liveness is not consulted, so a neighbor that has
// never answered or has timed out is still advertised.
func (e *LSREngine) MakeLocalLSP() wire.LSPPayload {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	links := make([]wire.LinkEdge, 0, len(e.neighbors.Neighbors()))
	for _, id := range e.neighbors.Neighbors() {
		cost, ok := e.neighbors.CostOf(id)
		if !ok {
			continue
		}
		links = append(links, wire.LinkEdge{To: id, W: float64(cost)})
	}

	return wire.LSPPayload{Origin: e.self, Seq: seq, Links: links}
}

// IngestLSP installs a remote (or the originator's own) LSP into the
// LSDB and recomputes routes if it was newer than what was on file.
// Reports whether installation happened, so the caller (Node) knows
// whether to re-flood the frame.
func (e *LSREngine) IngestLSP(lsp wire.LSPPayload) bool {
	installed := e.lsdb.Accept(lsp.Origin, lsp.Seq, lsp.Links)
	if installed {
		e.Recompute()
	}
	return installed
}

// OnHelloResult accepts a measured round-trip to a neighbor and is a
// no-op: it does not mutate the NeighborTable's advertised cost or
// trigger a reannounce. The measurement is recorded by Node itself
// (observability.Recorder's neighbor_rtt_seconds) when an ECHO arrives.
func (e *LSREngine) OnHelloResult(neighbor string, measuredCost Cost) {
	_ = neighbor
	_ = measuredCost
}

// Recompute rebuilds the graph from the LSDB and runs Dijkstra from
// self, replacing the RoutingTable wholesale. Exported so a restored
// LSDB snapshot (see StateStore) can be turned into routes immediately
// at startup, without waiting for the next LSP to arrive.
func (e *LSREngine) Recompute() {
	g := e.lsdb.BuildGraph()
	spt, err := ComputeSPT(g, e.self)
	if err != nil {
		// self missing from the graph; BuildGraph always adds self, so
		// this only guards against a graph built some other way.
		e.table.Replace(map[string]RouteEntry{})
		return
	}

	entries := make(map[string]RouteEntry, len(spt.NextHop))
	for dst, nextHop := range spt.NextHop {
		entries[dst] = RouteEntry{NextHop: nextHop, Cost: float64(spt.Dist[dst])}
	}
	e.table.Replace(entries)
}
