package routing

import (
	"encoding/json"
	"net/http"
	"time"
)

// NodeStatus is the /status JSON shape: routing table, neighbor
// liveness, and uptime. Adapted from the teacher's relay.Status, with
// ActiveConnections/UpstreamConnected swapped for the routing-specific
// fields a mesh node actually tracks.
type NodeStatus struct {
	ID            string                 `json:"id"`
	Proto         string                 `json:"proto"`
	Uptime        string                 `json:"uptime"`
	Neighbors     []NeighborStatus       `json:"neighbors"`
	RoutingTable  map[string]RouteEntry  `json:"routing_table"`
	SeenCacheSize int                    `json:"seen_cache_size"`
}

// NeighborStatus reports one neighbor's configured cost and liveness.
type NeighborStatus struct {
	ID    string `json:"id"`
	Cost  Cost   `json:"cost"`
	Alive bool   `json:"alive"`
}

// Status assembles the current NodeStatus snapshot.
func (n *Node) Status() NodeStatus {
	n.mu.Lock()
	startedAt := n.startedAt
	n.mu.Unlock()

	var uptime time.Duration
	if !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}

	ids := n.neighbors.Neighbors()
	neighborStatuses := make([]NeighborStatus, 0, len(ids))
	for _, id := range ids {
		cost, _ := n.neighbors.CostOf(id)
		neighborStatuses = append(neighborStatuses, NeighborStatus{
			ID:    id,
			Cost:  cost,
			Alive: n.neighbors.IsAlive(id, n.cfg.HelloTimeout),
		})
	}

	return NodeStatus{
		ID:            n.cfg.ID,
		Proto:         string(n.cfg.Proto),
		Uptime:        uptime.String(),
		Neighbors:     neighborStatuses,
		RoutingTable:  n.table.Snapshot(),
		SeenCacheSize: n.seen.Count(),
	}
}

// StatusHandlerFunc serves GET /status with the node's NodeStatus as JSON.
func StatusHandlerFunc(n *Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(n.Status())
	}
}

// HealthHandlerFunc serves GET /health, a lightweight liveness probe
// distinct from /status's full detail dump, matching the teacher's
// probe-query-param convention in cli.healthHandler.
func HealthHandlerFunc(n *Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "id": n.cfg.ID})
	}
}
