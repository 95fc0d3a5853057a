package routing

import "testing"

func triangle() *Graph {
	g := NewGraph()
	g.AddEdgeUndirected("A", "B", 1)
	g.AddEdgeUndirected("B", "C", 1)
	g.AddEdgeUndirected("A", "C", 4)
	return g
}

func TestComputeSPTTriangle(t *testing.T) {
	spt, err := ComputeSPT(triangle(), "A")
	if err != nil {
		t.Fatalf("ComputeSPT: %v", err)
	}
	if spt.Dist["C"] != 2 {
		t.Fatalf("dist A->C = %v, want 2 (via B)", spt.Dist["C"])
	}
	if spt.NextHop["C"] != "B" {
		t.Fatalf("nextHop A->C = %v, want B", spt.NextHop["C"])
	}
	if spt.NextHop["B"] != "B" {
		t.Fatalf("nextHop A->B = %v, want B", spt.NextHop["B"])
	}
}

func TestShortestPathNoRoute(t *testing.T) {
	g := NewGraph()
	g.AddNode("A")
	g.AddNode("B")

	if _, _, err := ShortestPath(g, "A", "B"); err != ErrNoPath {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
}

func TestShortestPathUnknownNode(t *testing.T) {
	g := triangle()
	if _, _, err := ShortestPath(g, "A", "Z"); err != ErrNodeNotFound {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestShortestPathReconstructsFullRoute(t *testing.T) {
	path, cost, err := ShortestPath(triangle(), "A", "C")
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if cost != 2 {
		t.Fatalf("cost = %v, want 2", cost)
	}
	want := []string{"A", "B", "C"}
	if len(path) != len(want) {
		t.Fatalf("path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
}

func TestRouteSymmetryUnderSymmetricCosts(t *testing.T) {
	g := triangle()
	sptA, _ := ComputeSPT(g, "A")
	sptC, _ := ComputeSPT(g, "C")
	if sptA.Dist["C"] != sptC.Dist["A"] {
		t.Fatalf("asymmetric cost: A->C=%v C->A=%v", sptA.Dist["C"], sptC.Dist["A"])
	}
}
