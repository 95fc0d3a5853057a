// Package transport implements the abstract byte-transport contract
// routing engines depend on, plus concrete realizations (TCP stream,
// Redis pub/sub, and an in-process loopback for tests). The routing
// core only ever depends on the Transport interface.
package transport

import (
	"context"

	"github.com/okdaichi/meshroute/internal/wire"
)

// Transport delivers frames to named neighbors and accepts inbound
// frames, handing each to a single registered callback exactly once.
// Implementations MAY be safe for concurrent use; the Node orchestrator
// never calls Start more than once.
type Transport interface {
	// Start begins accepting inbound frames. Each decoded frame is
	// delivered to onMessage exactly once. Start returns once the
	// transport is ready to accept, or with an error on bind failure.
	Start(ctx context.Context, onMessage func(*wire.Frame)) error

	// SendTo is a best-effort unicast to a named direct neighbor,
	// addressed by the neighbor's TransportAddress. Failure is silent
	// from the caller's point of view — the control protocols tolerate
	// loss.
	SendTo(ctx context.Context, addr string, f *wire.Frame) error

	// Close releases any resources and unblocks Start's inbound loop.
	Close() error
}

// Addresser resolves a neighbor id to the address string a Transport
// understands (host:port for TCP, channel name for Redis). Node owns
// the mapping; Transport only deals in opaque address strings so it
// never needs to know about NodeIds.
type Addresser interface {
	AddressOf(neighborID string) (string, bool)
}
