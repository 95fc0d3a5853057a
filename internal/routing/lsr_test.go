package routing

import "testing"

func TestLSREngineMakeLocalLSPIncrementsSeq(t *testing.T) {
	nt := NewNeighborTable()
	nt.Add("B", "addr", 1)
	e := NewLSREngine("A", nt, NewLSDB("A"), NewRoutingTable())

	lsp1 := e.MakeLocalLSP()
	lsp2 := e.MakeLocalLSP()

	if lsp1.Seq != 1 || lsp2.Seq != 2 {
		t.Fatalf("seqs = %d, %d, want 1, 2", lsp1.Seq, lsp2.Seq)
	}
	if lsp1.Origin != "A" {
		t.Fatalf("origin = %q, want A", lsp1.Origin)
	}
	if len(lsp1.Links) != 1 || lsp1.Links[0].To != "B" {
		t.Fatalf("links = %+v, want one link to B", lsp1.Links)
	}
}

func TestLSREngineIngestRecomputesRoutingTable(t *testing.T) {
	table := NewRoutingTable()
	lsdb := NewLSDB("A")
	nt := NewNeighborTable()
	nt.Add("B", "addr", 1)
	e := NewLSREngine("A", nt, lsdb, table)

	own := e.MakeLocalLSP()
	if !e.IngestLSP(own) {
		t.Fatal("own LSP must install on first ingestion")
	}

	installed := e.IngestLSP(wireLSP("B", 1, []linkSpec{{"A", 1}, {"C", 1}}))
	if !installed {
		t.Fatal("expected new remote LSP to install")
	}
	installed = e.IngestLSP(wireLSP("C", 1, []linkSpec{{"B", 1}}))
	if !installed {
		t.Fatal("expected new remote LSP to install")
	}

	entry, ok := table.Lookup("C")
	if !ok {
		t.Fatal("expected route to C after LSDB converges")
	}
	if entry.NextHop != "B" || entry.Cost != 2 {
		t.Fatalf("route to C = %+v, want nextHop=B cost=2", entry)
	}
}

func TestLSREngineIngestDuplicateSeqDoesNotReinstall(t *testing.T) {
	e := NewLSREngine("A", NewNeighborTable(), NewLSDB("A"), NewRoutingTable())

	lsp := wireLSP("B", 1, []linkSpec{{"A", 1}})
	if !e.IngestLSP(lsp) {
		t.Fatal("first ingestion should install")
	}
	if e.IngestLSP(lsp) {
		t.Fatal("duplicate sequence must not reinstall")
	}
}
