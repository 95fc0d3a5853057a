package routing

import (
	"container/heap"
	"errors"
	"math"
)

// ErrNodeNotFound is returned when a requested source or destination
// is absent from the graph.
var ErrNodeNotFound = errors.New("routing: node not found")

// ErrNoPath is returned when src and dst are not connected.
var ErrNoPath = errors.New("routing: no path between nodes")

// SPT is a single-source shortest-path tree: for every reachable node,
// its distance from src and the next hop to take to reach it. Computed
// once per Dijkstra run rather than once per destination, since LSR
// needs the full table, not a single route.
type SPT struct {
	Src     string
	Dist    map[string]Cost
	NextHop map[string]string
	prev    map[string]string
}

// ComputeSPT runs Dijkstra from src over g, producing distances and
// next hops to every other reachable node in one pass. Grounded on the
// teacher's dijkstra.go priority-queue shape, generalized from a
// single-destination shortestPath to a full tree the way
// bjoern621-ChatProtoGol's buildRoutingTable does (one Dijkstra run
// populates the whole table, not one run per destination).
func ComputeSPT(g *Graph, src string) (*SPT, error) {
	if _, ok := g.Nodes[src]; !ok {
		return nil, ErrNodeNotFound
	}

	dist := make(map[string]Cost, len(g.Nodes))
	prev := make(map[string]string, len(g.Nodes))
	for id := range g.Nodes {
		dist[id] = Cost(math.Inf(1))
	}
	dist[src] = 0

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{nodeID: src, cost: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		u := item.nodeID
		if item.cost > dist[u] {
			continue // stale entry
		}

		node := g.Nodes[u]
		for _, edge := range node.Edges {
			alt := dist[u] + edge.Cost
			if alt < dist[edge.To] {
				dist[edge.To] = alt
				prev[edge.To] = u
				heap.Push(pq, &pqItem{nodeID: edge.To, cost: alt})
			}
		}
	}

	nextHop := make(map[string]string, len(prev))
	for dst := range dist {
		if dst == src || math.IsInf(float64(dist[dst]), 1) {
			continue
		}
		nextHop[dst] = firstHop(prev, src, dst)
	}

	return &SPT{Src: src, Dist: dist, NextHop: nextHop, prev: prev}, nil
}

// path reconstructs the full src->dst node sequence from the tree's
// prev map, in the teacher's dijkstra.go reconstruction style.
func (s *SPT) path(dst string) []string {
	path := []string{}
	for at := dst; at != ""; at = s.prev[at] {
		path = append(path, at)
		if at == s.Src {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// firstHop walks the prev chain from dst back to src and returns the
// node reached immediately after src.
func firstHop(prev map[string]string, src, dst string) string {
	hop := dst
	for {
		p, ok := prev[hop]
		if !ok || p == src {
			return hop
		}
		hop = p
	}
}

// ShortestPath computes the single src->dst path and its cost. Kept
// alongside ComputeSPT for callers (currently only tests) that want
// one route as a node sequence; it runs ComputeSPT internally.
func ShortestPath(g *Graph, src, dst string) ([]string, Cost, error) {
	if _, ok := g.Nodes[src]; !ok {
		return nil, 0, ErrNodeNotFound
	}
	if _, ok := g.Nodes[dst]; !ok {
		return nil, 0, ErrNodeNotFound
	}

	spt, err := ComputeSPT(g, src)
	if err != nil {
		return nil, 0, err
	}
	if math.IsInf(float64(spt.Dist[dst]), 1) {
		return nil, 0, ErrNoPath
	}
	return spt.path(dst), spt.Dist[dst], nil
}

type pqItem struct {
	nodeID string
	cost   Cost
	index  int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
