package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lspsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_lsps_sent_total",
		Help: "Link-state packets originated by this node.",
	}, []string{"component"})

	lspsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_lsps_received_total",
		Help: "Link-state packets accepted into the LSDB.",
	}, []string{"component"})

	dvUpdatesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_dv_updates_sent_total",
		Help: "Distance-vector updates broadcast by this node.",
	}, []string{"component"})

	dvUpdatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_dv_updates_received_total",
		Help: "Distance-vector updates that changed this node's table.",
	}, []string{"component"})

	routesRecomputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_routes_recomputed_total",
		Help: "Routing table recomputations (Dijkstra runs or DV relaxations).",
	}, []string{"component"})

	dataForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_data_forwarded_total",
		Help: "DATA frames forwarded toward their destination.",
	}, []string{"component"})

	dataDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_data_dropped_total",
		Help: "DATA frames dropped, labeled by reason.",
	}, []string{"component", "reason"})

	dataDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshroute_data_delivered_total",
		Help: "DATA frames delivered to this node as final destination.",
	}, []string{"component"})

	neighborRTT = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meshroute_neighbor_rtt_seconds",
		Help:    "HELLO/ECHO round-trip time to a neighbor.",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "op"})

	activeNeighbors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meshroute_active_neighbors",
		Help: "Neighbors currently considered alive across all nodes in this process.",
	})
)

// Recorder scopes metric emission to one named component (typically a
// node id), the way the teacher's per-track Recorder scoped emission
// to one media track.
type Recorder struct {
	component string
}

// NewRecorder returns a Recorder scoped to component.
func NewRecorder(component string) *Recorder {
	return &Recorder{component: component}
}

// LSPSent records this node having originated an LSP.
func (r *Recorder) LSPSent() {
	if !MetricsEnabled() {
		return
	}
	lspsSent.WithLabelValues(r.component).Inc()
}

// LSPReceived records an LSP accepted into the LSDB.
func (r *Recorder) LSPReceived() {
	if !MetricsEnabled() {
		return
	}
	lspsReceived.WithLabelValues(r.component).Inc()
}

// DVUpdateSent records this node broadcasting its distance vector.
func (r *Recorder) DVUpdateSent() {
	if !MetricsEnabled() {
		return
	}
	dvUpdatesSent.WithLabelValues(r.component).Inc()
}

// DVUpdateReceived records an ingested vector that changed the table.
func (r *Recorder) DVUpdateReceived() {
	if !MetricsEnabled() {
		return
	}
	dvUpdatesReceived.WithLabelValues(r.component).Inc()
}

// RouteRecomputed records a routing table rebuild.
func (r *Recorder) RouteRecomputed() {
	if !MetricsEnabled() {
		return
	}
	routesRecomputed.WithLabelValues(r.component).Inc()
}

// DataForwarded records one DATA frame forwarded toward its destination.
func (r *Recorder) DataForwarded() {
	if !MetricsEnabled() {
		return
	}
	dataForwarded.WithLabelValues(r.component).Inc()
}

// DataDropped records one DATA frame dropped for reason (e.g. "ttl",
// "no_route", "duplicate").
func (r *Recorder) DataDropped(reason string) {
	if !MetricsEnabled() {
		return
	}
	dataDropped.WithLabelValues(r.component, reason).Inc()
}

// DataDelivered records one DATA frame delivered to this node.
func (r *Recorder) DataDelivered() {
	if !MetricsEnabled() {
		return
	}
	dataDelivered.WithLabelValues(r.component).Inc()
}

// LatencyObs returns a histogram observer for op's round-trip time, or
// nil when metrics are disabled so callers can skip the timing call
// entirely.
func (r *Recorder) LatencyObs(op string) prometheus.Observer {
	if !MetricsEnabled() {
		return nil
	}
	return neighborRTT.WithLabelValues(r.component, op)
}

// ObserveRTT is shorthand for recording a HELLO/ECHO round trip.
func (r *Recorder) ObserveRTT(op string, d time.Duration) {
	obs := r.LatencyObs(op)
	if obs == nil {
		return
	}
	obs.Observe(d.Seconds())
}

// IncActiveNeighbors increments the process-wide active neighbor gauge.
func IncActiveNeighbors() {
	if !MetricsEnabled() {
		return
	}
	activeNeighbors.Inc()
}

// DecActiveNeighbors decrements the process-wide active neighbor gauge.
func DecActiveNeighbors() {
	if !MetricsEnabled() {
		return
	}
	activeNeighbors.Dec()
}
