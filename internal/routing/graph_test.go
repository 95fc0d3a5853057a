package routing

import "testing"

func TestAddEdgeUpdatesExistingCost(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B", 5)
	g.AddEdge("A", "B", 2)

	node := g.Nodes["A"]
	if len(node.Edges) != 1 {
		t.Fatalf("expected a single edge, got %d", len(node.Edges))
	}
	if node.Edges[0].Cost != 2 {
		t.Fatalf("cost = %v, want 2", node.Edges[0].Cost)
	}
}

func TestAddEdgeUndirectedCreatesBothDirections(t *testing.T) {
	g := NewGraph()
	g.AddEdgeUndirected("A", "B", 3)

	if len(g.Nodes["A"].Edges) != 1 || g.Nodes["A"].Edges[0].To != "B" {
		t.Fatalf("missing A->B edge: %+v", g.Nodes["A"])
	}
	if len(g.Nodes["B"].Edges) != 1 || g.Nodes["B"].Edges[0].To != "A" {
		t.Fatalf("missing B->A edge: %+v", g.Nodes["B"])
	}
}
