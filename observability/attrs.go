package observability

import "go.opentelemetry.io/otel/attribute"

// Domain-specific span/event attributes for routing operations. Keys
// follow the "mesh.<noun>" convention the way the original moq.* keys
// scoped MoQT attributes to their domain.

// NodeID tags a span with the local node's identity.
func NodeID(id string) attribute.KeyValue { return attribute.String("mesh.node", id) }

// Neighbor tags a span with a neighbor node's identity.
func Neighbor(id string) attribute.KeyValue { return attribute.String("mesh.neighbor", id) }

// Protocol tags a span with the active routing protocol (lsr/dv/flooding).
func Protocol(proto string) attribute.KeyValue { return attribute.String("mesh.proto", proto) }

// FrameID tags a span with a wire frame's id.
func FrameID(id string) attribute.KeyValue { return attribute.String("mesh.frame_id", id) }

// Hops records how many nodes a DATA frame has traversed.
func Hops(n int) attribute.KeyValue { return attribute.Int64("mesh.hops", int64(n)) }

// TTL records a frame's remaining time-to-live.
func TTL(n int) attribute.KeyValue { return attribute.Int64("mesh.ttl", int64(n)) }

// RouteCount records the number of entries in a routing table snapshot.
func RouteCount(n int) attribute.KeyValue { return attribute.Int64("mesh.route_count", int64(n)) }

// Sequence records an LSP or DV update's sequence number.
func Sequence(n int64) attribute.KeyValue { return attribute.Int64("mesh.sequence", n) }

// Str is a generic string attribute, for call sites with no domain helper.
func Str(key, value string) attribute.KeyValue { return attribute.String(key, value) }

// Num is a generic integer attribute, for call sites with no domain helper.
func Num(key string, value int64) attribute.KeyValue { return attribute.Int64(key, value) }
