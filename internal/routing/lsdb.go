package routing

import (
	"sync"

	"github.com/okdaichi/meshroute/internal/wire"
)

// lsdbEntry is the latest accepted LSP from one origin.
type lsdbEntry struct {
	Seq   uint64
	Links []wire.LinkEdge
}

// LSDB is the link-state database: the latest-by-sequence-number LSP
// from every origin this node has heard from, directly or via
// flooding. Adapted from the teacher's topology.Topology (RWMutex-
// guarded map, Register/Snapshot/graph-building shape), with the
// freshness check grounded on bjoern621-ChatProtoGol's LSA sequence
// comparison (routing-lsdb.go.go's getLatestSequenceNumber) in place
// of the teacher's register-always-wins (LSR needs monotonicity;
// relay registration didn't).
type LSDB struct {
	mu      sync.RWMutex
	entries map[string]lsdbEntry
	self    string
}

func NewLSDB(self string) *LSDB {
	return &LSDB{entries: make(map[string]lsdbEntry), self: self}
}

// Accept applies an incoming LSP if its sequence number is newer than
// what's on file for that origin (or it's the first one seen). It
// reports whether the LSP was new (and therefore worth re-flooding).
func (l *LSDB) Accept(origin string, seq uint64, links []wire.LinkEdge) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.entries[origin]
	if ok && seq <= existing.Seq {
		return false
	}
	l.entries[origin] = lsdbEntry{Seq: seq, Links: links}
	return true
}

// SeqOf returns the sequence number on file for origin, if any.
func (l *LSDB) SeqOf(origin string) (uint64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[origin]
	return e.Seq, ok
}

// BuildGraph reconstructs the full network Graph from every LSP on
// file. Each LSP entry (u, v, w) adds both u->v and v->u unconditionally,
// since a link's cost is a property of the link, not of whichever
// origin's LSP reported it first: a node must see the reverse edge as
// soon as it has heard of the link from one side, even if the other
// endpoint's own LSP hasn't been flooded yet (startup convergence, or
// a delayed/lost LSP). When two origins' LSPs disagree on the same
// link's cost, the later AddEdgeUndirected call wins in both
// directions. Origins are visited in map iteration order, so which
// origin's cost wins is not defined and does not follow the order in
// which the LSPs were installed.
func (l *LSDB) BuildGraph() *Graph {
	l.mu.RLock()
	defer l.mu.RUnlock()

	g := NewGraph()
	g.AddNode(l.self)
	for origin, e := range l.entries {
		g.AddNode(origin)
		for _, link := range e.Links {
			g.AddEdgeUndirected(origin, link.To, Cost(link.W))
		}
	}
	return g
}

// Origins returns every origin currently represented in the database.
func (l *LSDB) Origins() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	origins := make([]string, 0, len(l.entries))
	for origin := range l.entries {
		origins = append(origins, origin)
	}
	return origins
}

// Snapshot returns a copy of the raw per-origin LSP state, for
// StateStore persistence.
func (l *LSDB) Snapshot() map[string]lsdbEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cp := make(map[string]lsdbEntry, len(l.entries))
	for k, v := range l.entries {
		links := make([]wire.LinkEdge, len(v.Links))
		copy(links, v.Links)
		cp[k] = lsdbEntry{Seq: v.Seq, Links: links}
	}
	return cp
}

// Restore replaces the database contents, used when loading a
// StateStore snapshot at startup.
func (l *LSDB) Restore(snapshot map[string]lsdbEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = snapshot
}
