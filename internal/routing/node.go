// Package routing implements the protocol-agnostic routing core: the
// LSDB, Dijkstra, LSR/DV/flooding engines, and the Node orchestrator
// that wires them to a transport.Transport. Generalizes the teacher's
// internal/topology and internal/relay packages (graph/Dijkstra and
// the coarse-lock server lifecycle, respectively) from a centralized
// SDN controller to a peer routing node.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/okdaichi/meshroute/internal/transport"
	"github.com/okdaichi/meshroute/internal/wire"
	"github.com/okdaichi/meshroute/observability"
)

// Config fixes a Node's identity, protocol, and timer intervals.
// HelloTimeout defaults to 3x HelloEvery when zero, the way the
// teacher defaults NodeTTL relative to its sweep interval.
type Config struct {
	ID           string
	Proto        wire.Proto
	HelloEvery   time.Duration
	LSPEvery     time.Duration
	DVEvery      time.Duration
	HelloTimeout time.Duration
	TTLDefault   int
	SeenTTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.HelloEvery <= 0 {
		c.HelloEvery = 5 * time.Second
	}
	if c.LSPEvery <= 0 {
		c.LSPEvery = 20 * time.Second
	}
	if c.DVEvery <= 0 {
		c.DVEvery = 10 * time.Second
	}
	if c.HelloTimeout <= 0 {
		c.HelloTimeout = 3 * c.HelloEvery
	}
	if c.TTLDefault <= 0 {
		c.TTLDefault = 8
	}
	if c.SeenTTL <= 0 {
		c.SeenTTL = 5 * time.Minute
	}
	return c
}

type pendingHello struct {
	neighbor string
	sentAt   time.Time
}

type outbound struct {
	neighborID string
	frame      *wire.Frame
}

// Node is the single logical process that owns the neighbor table,
// LSDB, routing table, the selected protocol engine, and the timers
// that drive it. One coarse sync.Mutex serializes every state
// transition; outbound frames are always collected under the lock and
// sent after Unlock, matching the teacher's relay.Server discipline
// generalized from "gather announcements, send once" to "gather
// outbound frames, send once."
type Node struct {
	cfg       Config
	transport transport.Transport
	neighbors *NeighborTable
	lsdb      *LSDB
	table     *RoutingTable
	lsr       *LSREngine
	dv        *DVEngine
	flood     *FloodingEngine
	seen      *SeenCache
	rec       *observability.Recorder

	// OnDeliver is invoked for every DATA frame addressed to this
	// node, outside the state lock. If nil, delivery is only logged.
	OnDeliver func(f *wire.Frame)

	mu           sync.Mutex
	pendingHello map[string]pendingHello
	initOnce     sync.Once
	startedAt    time.Time
	runCtx       context.Context
}

// NewNode builds a Node with the engine for cfg.Proto only; the other
// two engines (and, for non-LSR nodes, the LSDB) are left nil. The
// routing table and seen cache are always built, so Status() reports
// the same shape for every protocol.
func NewNode(cfg Config, tr transport.Transport, neighbors *NeighborTable) *Node {
	cfg = cfg.withDefaults()
	table := NewRoutingTable()
	seen := NewSeenCache(cfg.SeenTTL)

	n := &Node{
		cfg:          cfg,
		transport:    tr,
		neighbors:    neighbors,
		table:        table,
		seen:         seen,
		rec:          observability.NewRecorder(cfg.ID),
		pendingHello: make(map[string]pendingHello),
	}

	// Only the configured protocol's engine is ever driven by Dispatch;
	// building just that one keeps Status() from reporting routing
	// state (e.g. DV's direct-neighbor seeding) that this node's
	// protocol never actually uses.
	switch cfg.Proto {
	case wire.ProtoLSR:
		n.lsdb = NewLSDB(cfg.ID)
		n.lsr = NewLSREngine(cfg.ID, neighbors, n.lsdb, table)
	case wire.ProtoDV:
		n.dv = NewDVEngine(cfg.ID, neighbors, table)
	case wire.ProtoFlooding:
		n.flood = NewFloodingEngine(cfg.ID, seen)
	}

	return n
}

// Start registers the inbound handler with the transport, emits the
// initial LSP for LSR nodes, and starts the protocol's periodic
// timers. Safe to call only once; subsequent calls are no-ops.
func (n *Node) Start(ctx context.Context) error {
	var startErr error
	n.initOnce.Do(func() {
		n.mu.Lock()
		n.runCtx = ctx
		n.startedAt = time.Now()
		n.mu.Unlock()

		if err := n.transport.Start(ctx, n.onMessage); err != nil {
			startErr = fmt.Errorf("node %s: start transport: %w", n.cfg.ID, err)
			return
		}

		if n.cfg.Proto == wire.ProtoLSR {
			n.announceLSP()
		}

		n.startTimers(ctx)
	})
	return startErr
}

// Close releases the transport. Symmetric with Start the way the
// teacher's relay.Server pairs ListenAndServe with Close/Shutdown.
func (n *Node) Close() error {
	return n.transport.Close()
}

// LoadState restores this node's LSDB from store and recomputes routes
// from the restored graph, so an LSR node doesn't have to rediscover
// the whole topology through flooding alone after a restart. Call
// before Start. No-op for non-LSR nodes or a nil store.
func (n *Node) LoadState(store StateStore) error {
	if n.lsdb == nil || store == nil {
		return nil
	}
	snapshot, err := store.Load()
	if err != nil {
		return fmt.Errorf("load lsdb snapshot: %w", err)
	}
	if snapshot == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	RestoreLSDB(n.lsdb, snapshot)
	n.lsr.Recompute()
	return nil
}

// SaveState persists this node's current LSDB snapshot to store.
// No-op for non-LSR nodes or a nil store.
func (n *Node) SaveState(store StateStore) error {
	if n.lsdb == nil || store == nil {
		return nil
	}
	if err := store.Save(SnapshotLSDB(n.lsdb)); err != nil {
		return fmt.Errorf("save lsdb snapshot: %w", err)
	}
	return nil
}

func (n *Node) startTimers(ctx context.Context) {
	switch n.cfg.Proto {
	case wire.ProtoLSR:
		go n.tick(ctx, n.cfg.HelloEvery, n.sendHellos)
		go n.tick(ctx, n.cfg.LSPEvery, n.announceLSP)
	case wire.ProtoDV:
		go n.tick(ctx, n.cfg.DVEvery, n.announceVector)
	case wire.ProtoFlooding:
		// no periodic tasks, per spec.md §4.10.
	}
	n.seen.StartSweeper(ctx, n.cfg.SeenTTL)
}

func (n *Node) tick(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// onMessage is the transport's single entry point into the node.
// State mutation and outbound-frame gathering happen under the lock
// in handle; the actual sends happen after it's released.
func (n *Node) onMessage(f *wire.Frame) {
	_, span := observability.StartWith(n.runCtx, "routing.handle",
		observability.Attrs(observability.NodeID(n.cfg.ID), observability.Protocol(string(f.Proto)), observability.FrameID(f.ID)))
	defer span.End()

	n.mu.Lock()
	outs, delivered := n.handle(f)
	n.mu.Unlock()

	n.dispatch(outs)
	for _, d := range delivered {
		n.deliver(d)
	}
}

// handle applies the dispatch rules for one inbound frame and returns
// the frames that must be sent, plus any DATA frames destined for this
// node. Caller must hold n.mu.
func (n *Node) handle(f *wire.Frame) (outs []outbound, delivered []*wire.Frame) {
	if f.Proto != n.cfg.Proto {
		return nil, nil
	}

	switch f.Type {
	case wire.TypeHello:
		n.neighbors.TouchHello(f.From, time.Now())
		reply := &wire.Frame{
			ID: f.ID, Type: wire.TypeEcho, Proto: n.cfg.Proto,
			From: n.cfg.ID, To: f.From, TS: f.TS,
		}
		outs = append(outs, outbound{neighborID: f.From, frame: reply})

	case wire.TypeEcho:
		if pending, ok := n.pendingHello[f.ID]; ok {
			n.rec.ObserveRTT("hello", time.Since(pending.sentAt))
			delete(n.pendingHello, f.ID)
		}
		n.neighbors.TouchHello(f.From, time.Now())

	case wire.TypeInfo:
		outs = n.handleInfo(f)

	case wire.TypeData:
		outs, delivered = n.handleData(f)
	}

	return outs, delivered
}

func (n *Node) handleInfo(f *wire.Frame) []outbound {
	switch n.cfg.Proto {
	case wire.ProtoLSR:
		var lsp wire.LSPPayload
		if err := json.Unmarshal(f.Payload, &lsp); err != nil {
			slog.Debug("node: dropping malformed LSP payload", "error", err)
			return nil
		}
		if !n.lsr.IngestLSP(lsp) {
			return nil // duplicate or stale: controlled flood stops here
		}
		n.rec.LSPReceived()
		n.rec.RouteRecomputed()
		return n.floodToAll(f)

	case wire.ProtoDV:
		var v wire.DVPayload
		if err := json.Unmarshal(f.Payload, &v); err != nil {
			slog.Debug("node: dropping malformed DV payload", "error", err)
			return nil
		}
		if n.dv.IngestVector(v) {
			n.rec.DVUpdateReceived()
			n.rec.RouteRecomputed()
		}
		return nil // DV re-advertises on its own timer, not on receipt.
	}
	return nil
}

func (n *Node) handleData(f *wire.Frame) (outs []outbound, delivered []*wire.Frame) {
	if n.cfg.Proto == wire.ProtoFlooding {
		switch n.flood.HandleData(f) {
		case FloodDeliver:
			delivered = append(delivered, f)
			n.rec.DataDelivered()
		case FloodForward:
			outs = n.floodToAll(f)
			n.rec.DataForwarded()
		}
		return outs, delivered
	}

	// LSR and DV: unicast forwarding along the computed routing table,
	// with the same id-based dedup so a mis-routed loop can't spin.
	if n.seen.SeenOrRecord(f.ID) {
		n.rec.DataDropped("duplicate")
		return nil, nil
	}
	if f.Dst == n.cfg.ID {
		n.rec.DataDelivered()
		return nil, []*wire.Frame{f}
	}

	out, ok := n.forwardLocked(f)
	if !ok {
		return nil, nil
	}
	return []outbound{out}, nil
}

// forwardLocked implements spec.md §4.10's forward(m) for LSR/DV.
// Caller must hold n.mu.
func (n *Node) forwardLocked(f *wire.Frame) (outbound, bool) {
	if f.TTL <= 0 {
		slog.Debug("node: dropping frame, ttl exhausted", "id", f.ID)
		n.rec.DataDropped("ttl")
		return outbound{}, false
	}
	entry, ok := n.table.Lookup(f.Dst)
	if !ok {
		slog.Debug("node: dropping frame, no route", "id", f.ID, "dst", f.Dst)
		n.rec.DataDropped("no_route")
		return outbound{}, false
	}

	f.TTL--
	f.Headers = append(f.Headers, wire.HopAnnotation{Hop: n.cfg.ID, At: time.Now()})
	n.rec.DataForwarded()
	return outbound{neighborID: entry.NextHop, frame: f}, true
}

// floodToAll fans a frame out to every known neighbor. Caller must
// hold n.mu. See DESIGN.md: the Transport/onMessage contract carries
// no sender identity (matching spec.md's own abstract interface), so
// "except the one it arrived from" is not generally identifiable; the
// harmless duplicate a sender receives back is dropped by its own
// SeenCache or LSDB sequence check.
func (n *Node) floodToAll(f *wire.Frame) []outbound {
	ids := n.neighbors.Neighbors()
	outs := make([]outbound, 0, len(ids))
	for _, id := range ids {
		outs = append(outs, outbound{neighborID: id, frame: f})
	}
	return outs
}

func (n *Node) sendHellos() {
	var outs []outbound
	n.mu.Lock()
	for _, id := range n.neighbors.Neighbors() {
		id2 := wire.NewID()
		now := time.Now()
		n.pendingHello[id2] = pendingHello{neighbor: id, sentAt: now}
		f := &wire.Frame{
			ID: id2, Type: wire.TypeHello, Proto: n.cfg.Proto,
			From: n.cfg.ID, To: id, TS: now,
		}
		outs = append(outs, outbound{neighborID: id, frame: f})
	}
	n.mu.Unlock()

	n.dispatch(outs)
}

func (n *Node) announceLSP() {
	var outs []outbound
	n.mu.Lock()
	lsp := n.lsr.MakeLocalLSP()
	n.lsr.IngestLSP(lsp)
	payload, err := json.Marshal(lsp)
	if err == nil {
		f := &wire.Frame{ID: wire.NewID(), Type: wire.TypeInfo, Proto: wire.ProtoLSR, Payload: payload}
		outs = n.floodToAll(f)
		n.rec.LSPSent()
	}
	n.mu.Unlock()

	n.dispatch(outs)
}

func (n *Node) announceVector() {
	var outs []outbound
	n.mu.Lock()
	v := n.dv.MakeVector()
	payload, err := json.Marshal(v)
	if err == nil {
		f := &wire.Frame{ID: wire.NewID(), Type: wire.TypeInfo, Proto: wire.ProtoDV, Payload: payload}
		outs = n.floodToAll(f)
		n.rec.DVUpdateSent()
	}
	n.mu.Unlock()

	n.dispatch(outs)
}

// dispatch sends every outbound frame, outside the state lock.
func (n *Node) dispatch(outs []outbound) {
	for _, out := range outs {
		addr, ok := n.neighbors.AddressOf(out.neighborID)
		if !ok {
			continue
		}
		if err := n.transport.SendTo(n.runCtx, addr, out.frame); err != nil {
			slog.Debug("node: send failed", "neighbor", out.neighborID, "error", err)
		}
	}
}

func (n *Node) deliver(f *wire.Frame) {
	if n.OnDeliver != nil {
		n.OnDeliver(f)
		return
	}
	slog.Info("node: delivered DATA", "id", f.ID, "src", f.Src, "hops", len(f.Headers))
}
