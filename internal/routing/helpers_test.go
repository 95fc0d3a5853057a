package routing

import "github.com/okdaichi/meshroute/internal/wire"

type linkSpec struct {
	to string
	w  float64
}

func wireLSP(origin string, seq uint64, links []linkSpec) wire.LSPPayload {
	edges := make([]wire.LinkEdge, len(links))
	for i, l := range links {
		edges[i] = wire.LinkEdge{To: l.to, W: l.w}
	}
	return wire.LSPPayload{Origin: origin, Seq: seq, Links: edges}
}
