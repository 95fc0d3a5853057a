package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/okdaichi/meshroute/internal/wire"
)

// LoopbackHub wires a set of in-process LoopbackTransports together so
// several Node instances can run in one process without real sockets,
// the way the Python reference's mainLocal harness runs several nodes
// against in-memory queues instead of real connections.
type LoopbackHub struct {
	mu     sync.Mutex
	routes map[string]chan *wire.Frame
}

func NewLoopbackHub() *LoopbackHub {
	return &LoopbackHub{routes: make(map[string]chan *wire.Frame)}
}

// register creates (or returns) the named endpoint's inbound queue.
func (h *LoopbackHub) register(addr string) chan *wire.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.routes[addr]; ok {
		return ch
	}
	ch := make(chan *wire.Frame, 64)
	h.routes[addr] = ch
	return ch
}

func (h *LoopbackHub) send(addr string, f *wire.Frame) error {
	h.mu.Lock()
	ch, ok := h.routes[addr]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("loopback: no such address %q", addr)
	}
	select {
	case ch <- f:
	default:
		// queue full: drop silently, matching the best-effort contract.
	}
	return nil
}

// LoopbackTransport is an in-process Transport backed by a shared
// LoopbackHub. It is used by tests and by the local multi-node harness
// so the routing core can be exercised without binding real sockets.
type LoopbackTransport struct {
	hub  *LoopbackHub
	addr string
	in   chan *wire.Frame
	done chan struct{}
}

var _ Transport = (*LoopbackTransport)(nil)

func NewLoopbackTransport(hub *LoopbackHub, addr string) *LoopbackTransport {
	return &LoopbackTransport{hub: hub, addr: addr, done: make(chan struct{})}
}

func (t *LoopbackTransport) Start(ctx context.Context, onMessage func(*wire.Frame)) error {
	t.in = t.hub.register(t.addr)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.done:
				return
			case f := <-t.in:
				onMessage(f)
			}
		}
	}()
	return nil
}

func (t *LoopbackTransport) SendTo(_ context.Context, addr string, f *wire.Frame) error {
	return t.hub.send(addr, f)
}

func (t *LoopbackTransport) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}
