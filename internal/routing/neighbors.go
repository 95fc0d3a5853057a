package routing

import (
	"sync"
	"time"
)

// neighborInfo is one direct neighbor's known cost, transport address,
// and last-seen HELLO timestamp.
type neighborInfo struct {
	Cost        Cost
	Address     string
	LastHelloAt time.Time
	everHelloed bool
}

// NeighborTable tracks a node's direct neighbors: edge cost (from the
// topology file, defaulting to DefaultCost), transport address, and
// HELLO liveness. Adapted from the teacher's relay.peerRegistry
// (RWMutex-guarded map, register/deregister/snapshot shape), extended
// with the cost and liveness fields a routing neighbor needs that a
// MoQT peer connection didn't.
type NeighborTable struct {
	mu        sync.RWMutex
	neighbors map[string]*neighborInfo
}

func NewNeighborTable() *NeighborTable {
	return &NeighborTable{neighbors: make(map[string]*neighborInfo)}
}

// Add registers a neighbor with its topology-file cost and transport
// address. A zero or negative cost is normalized to DefaultCost, per
// spec.md's "costs default to 1.0 if the topology file supplies no
// weight".
func (nt *NeighborTable) Add(id, address string, cost Cost) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	if cost <= 0 {
		cost = DefaultCost
	}
	n, ok := nt.neighbors[id]
	if !ok {
		n = &neighborInfo{}
		nt.neighbors[id] = n
	}
	n.Cost = cost
	n.Address = address
}

// Neighbors returns the set of known neighbor ids.
func (nt *NeighborTable) Neighbors() []string {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	ids := make([]string, 0, len(nt.neighbors))
	for id := range nt.neighbors {
		ids = append(ids, id)
	}
	return ids
}

// CostOf returns the configured edge cost to a neighbor.
func (nt *NeighborTable) CostOf(id string) (Cost, bool) {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	n, ok := nt.neighbors[id]
	if !ok {
		return 0, false
	}
	return n.Cost, true
}

// SetCost updates a neighbor's edge cost, e.g. after a measured RTT
// (informational only; see DESIGN.md's resolution of the RTT-based
// cost update open question).
func (nt *NeighborTable) SetCost(id string, cost Cost) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	if n, ok := nt.neighbors[id]; ok {
		n.Cost = cost
	}
}

// AddressOf resolves a neighbor id to its transport address, so
// NeighborTable can serve as a transport.Addresser.
func (nt *NeighborTable) AddressOf(id string) (string, bool) {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	n, ok := nt.neighbors[id]
	if !ok {
		return "", false
	}
	return n.Address, true
}

// TouchHello records a HELLO (or ECHO reply) received from id at ts.
func (nt *NeighborTable) TouchHello(id string, ts time.Time) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	if n, ok := nt.neighbors[id]; ok {
		n.LastHelloAt = ts
		n.everHelloed = true
	}
}

// DeadNeighbors returns neighbors whose last HELLO is older than
// timeout. A neighbor that was never HELLO-ed is not-yet-proven-alive
// rather than dead, per spec.md §4.7, so it is excluded here too: it
// belongs to neither the alive nor the dead set until its first HELLO.
func (nt *NeighborTable) DeadNeighbors(timeout time.Duration) []string {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	now := time.Now()
	var dead []string
	for id, n := range nt.neighbors {
		if !n.everHelloed {
			continue
		}
		if now.Sub(n.LastHelloAt) > timeout {
			dead = append(dead, id)
		}
	}
	return dead
}

// IsAlive reports whether id has sent a HELLO within timeout.
func (nt *NeighborTable) IsAlive(id string, timeout time.Duration) bool {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	n, ok := nt.neighbors[id]
	if !ok || !n.everHelloed {
		return false
	}
	return time.Since(n.LastHelloAt) <= timeout
}
