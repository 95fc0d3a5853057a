package routing

import (
	"testing"

	"github.com/okdaichi/meshroute/internal/wire"
)

func TestDVEngineSeedsDirectNeighbors(t *testing.T) {
	nt := NewNeighborTable()
	nt.Add("B", "addr", 2)
	table := NewRoutingTable()
	NewDVEngine("A", nt, table)

	entry, ok := table.Lookup("B")
	if !ok || entry.NextHop != "B" || entry.Cost != 2 {
		t.Fatalf("route to B = %+v, %v, want nextHop=B cost=2", entry, ok)
	}
}

func TestDVEngineRelaxesThroughNeighbor(t *testing.T) {
	// A-B cost 1, B advertises C at cost 2 => A should learn C via B at cost 3.
	nt := NewNeighborTable()
	nt.Add("B", "addr", 1)
	table := NewRoutingTable()
	e := NewDVEngine("A", nt, table)

	changed := e.IngestVector(wire.DVPayload{Origin: "B", Dist: map[string]float64{"A": 1, "C": 2}})
	if !changed {
		t.Fatal("expected vector ingestion to change the table")
	}

	entry, ok := table.Lookup("C")
	if !ok || entry.NextHop != "B" || entry.Cost != 3 {
		t.Fatalf("route to C = %+v, %v, want nextHop=B cost=3", entry, ok)
	}
}

func TestDVEngineIgnoresWorseRoute(t *testing.T) {
	nt := NewNeighborTable()
	nt.Add("B", "addr", 1)
	nt.Add("D", "addr", 1)
	table := NewRoutingTable()
	e := NewDVEngine("A", nt, table)

	e.IngestVector(wire.DVPayload{Origin: "B", Dist: map[string]float64{"C": 1}})
	changed := e.IngestVector(wire.DVPayload{Origin: "D", Dist: map[string]float64{"C": 5}})
	if changed {
		t.Fatal("worse candidate route must not change the table")
	}

	entry, _ := table.Lookup("C")
	if entry.NextHop != "B" || entry.Cost != 2 {
		t.Fatalf("route to C = %+v, want unchanged nextHop=B cost=2", entry)
	}
}

func TestDVEngineIgnoresVectorFromNonNeighbor(t *testing.T) {
	nt := NewNeighborTable()
	table := NewRoutingTable()
	e := NewDVEngine("A", nt, table)

	if e.IngestVector(wire.DVPayload{Origin: "Z", Dist: map[string]float64{"C": 1}}) {
		t.Fatal("vector from a non-neighbor must not be applied")
	}
}
