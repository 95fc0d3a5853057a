// Package cli implements the meshroute command surface: RunNode starts
// one routing node process, generalizing the teacher's RunRelay/RunSDN
// flag-parsing, config-loading, and graceful-shutdown shape from a
// media relay / SDN controller to a routing overlay node.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okdaichi/meshroute/internal/config"
	"github.com/okdaichi/meshroute/internal/routing"
	"github.com/okdaichi/meshroute/internal/transport"
	"github.com/okdaichi/meshroute/internal/wire"
	"github.com/okdaichi/meshroute/observability"
)

// TransportError marks a failure to bind or start a node's transport,
// distinguishing it from a configuration error so callers (cmd/meshroute)
// can map it to a distinct process exit code.
type TransportError struct{ Err error }

func (e *TransportError) Error() string { return fmt.Sprintf("failed to start node: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err (or something it wraps) is a
// TransportError, for mapping to the spec's transport-bind-failure
// exit code.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// RunNode parses flags (or a YAML config file), wires up the
// transport and routing engine for one node, and serves /status,
// /health, and /metrics until it receives SIGINT/SIGTERM.
func RunNode(args []string) error {
	fs := flag.NewFlagSet("node", flag.ContinueOnError)
	id := fs.String("id", "", "node id (required unless -config is set)")
	proto := fs.String("proto", "lsr", "routing protocol: lsr|dv|flooding")
	namesPath := fs.String("names", "names.txt", "path to the names file")
	topoPath := fs.String("topo", "topo.txt", "path to the topology file")
	configPath := fs.String("config", "", "path to a YAML config file; overrides the flags above")
	transportKind := fs.String("transport", "tcp", "transport: tcp|redis")
	listenAddr := fs.String("listen", "", "tcp listen address; defaults to this node's entry in the names file")
	statusAddr := fs.String("status-addr", ":8080", "HTTP listen address for /status, /health, /metrics")
	statePath := fs.String("state", "", "path to persist LSDB state across restarts (LSR only); empty disables persistence")
	redisHost := fs.String("redis-host", "localhost", "redis host, when -transport=redis")
	redisPort := fs.Int("redis-port", 6379, "redis port, when -transport=redis")
	redisSection := fs.String("redis-section", "lab", "redis channel-naming section, when -transport=redis")
	redisTopo := fs.String("redis-topo", "default", "redis channel-naming topology name, when -transport=redis")
	metricsEnabled := fs.Bool("metrics", true, "enable Prometheus metrics")
	traceAddr := fs.String("trace-addr", "", "OTLP/gRPC collector address for traces; empty disables tracing")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg, err := resolveConfig(*configPath, nodeFlags{
		id: *id, proto: *proto, namesPath: *namesPath, topoPath: *topoPath,
		transportKind: *transportKind, listenAddr: *listenAddr, statusAddr: *statusAddr,
		redisHost: *redisHost, redisPort: *redisPort, redisSection: *redisSection, redisTopo: *redisTopo,
		metrics: *metricsEnabled, traceAddr: *traceAddr, statePath: *statePath,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	names, err := config.ParseNamesFile(cfg.NamesPath)
	if err != nil {
		return fmt.Errorf("failed to load names file: %w", err)
	}
	edges, err := config.ParseTopoFile(cfg.TopoPath)
	if err != nil {
		return fmt.Errorf("failed to load topology file: %w", err)
	}

	byID := config.AddrByID(names)
	self, ok := byID[cfg.NodeID]
	if !ok {
		return fmt.Errorf("node id %q not found in names file %s", cfg.NodeID, cfg.NamesPath)
	}

	neighbors := routing.NewNeighborTable()
	for peerID, cost := range config.NeighborsOf(edges, cfg.NodeID) {
		addr, ok := byID[peerID]
		if !ok {
			return fmt.Errorf("topology file references unknown node %q", peerID)
		}
		peerAddr := addr.Addr()
		if cfg.TransportKind == "redis" {
			peerAddr = cfg.Redis.RedisTransportConfig(cfg.NodeID).ChannelOf(peerID)
		}
		neighbors.Add(peerID, peerAddr, routing.Cost(cost))
	}

	tr, err := buildTransport(cfg, self)
	if err != nil {
		return fmt.Errorf("failed to build transport: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := observability.Setup(ctx, observability.Config{
		Service:   cfg.Observability.Service,
		TraceAddr: cfg.Observability.TraceAddr,
		Metrics:   cfg.Observability.Metrics,
	}); err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}
	defer observability.Shutdown(context.Background())

	node := routing.NewNode(routing.Config{
		ID:         cfg.NodeID,
		Proto:      cfg.Proto,
		HelloEvery: cfg.HelloEvery,
		LSPEvery:   cfg.LSPEvery,
		DVEvery:    cfg.DVEvery,
		TTLDefault: cfg.TTLDefault,
	}, tr, neighbors)

	var store routing.StateStore
	if cfg.StatePath != "" {
		fileStore := routing.NewFileStateStore(cfg.StatePath)
		if err := node.LoadState(fileStore); err != nil {
			return fmt.Errorf("failed to load persisted state: %w", err)
		}
		store = fileStore
	}

	if err := node.Start(ctx); err != nil {
		return &TransportError{Err: err}
	}

	if store != nil {
		go persistPeriodically(ctx, node, store, cfg.LSPEvery)
	}

	mux := http.NewServeMux()
	mux.Handle("/status", routing.StatusHandlerFunc(node))
	mux.Handle("/health", routing.HealthHandlerFunc(node))
	if cfg.Observability.Metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	httpServer := &http.Server{Addr: cfg.StatusAddr, Handler: mux}

	serveNode(ctx, node, httpServer, 5*time.Second)

	if store != nil {
		if err := node.SaveState(store); err != nil {
			log.Printf("failed to persist state at shutdown: %v", err)
		}
	}
	return nil
}

// persistPeriodically saves node's LSDB to store on every interval
// until ctx is cancelled, so a restart loses at most one interval's
// worth of topology churn instead of requiring a full reflood.
func persistPeriodically(ctx context.Context, node *routing.Node, store routing.StateStore, interval time.Duration) {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := node.SaveState(store); err != nil {
				log.Printf("failed to persist state: %v", err)
			}
		}
	}
}

// nodeFlags mirrors the RunNode flag surface so resolveConfig can
// build a config.Config without reaching back into flag.Value types.
type nodeFlags struct {
	id, proto, namesPath, topoPath       string
	transportKind, listenAddr, statusAddr string
	redisHost, redisSection, redisTopo   string
	redisPort                            int
	metrics                              bool
	traceAddr                            string
	statePath                            string
}

// resolveConfig loads a YAML config file when configPath is set,
// otherwise builds a config.Config directly from flags.
func resolveConfig(configPath string, f nodeFlags) (*config.Config, error) {
	if configPath != "" {
		return config.LoadYAML(configPath)
	}
	if f.id == "" {
		return nil, fmt.Errorf("-id is required when -config is not set")
	}
	return &config.Config{
		NodeID:        f.id,
		Proto:         wire.Proto(f.proto),
		TransportKind: f.transportKind,
		ListenAddr:    f.listenAddr,
		Redis: config.RedisConfig{
			Host:    f.redisHost,
			Port:    f.redisPort,
			Section: f.redisSection,
			Topo:    f.redisTopo,
		},
		NamesPath:  f.namesPath,
		TopoPath:   f.topoPath,
		StatusAddr: f.statusAddr,
		StatePath:  f.statePath,
		Observability: config.ObservabilityConfig{
			Service:   "meshroute-" + f.id,
			Metrics:   f.metrics,
			TraceAddr: f.traceAddr,
		},
	}, nil
}

func buildTransport(cfg *config.Config, self config.NamesEntry) (transport.Transport, error) {
	switch cfg.TransportKind {
	case "redis":
		return transport.NewRedisTransport(cfg.Redis.RedisTransportConfig(cfg.NodeID)), nil
	case "tcp", "":
		addr := cfg.ListenAddr
		if addr == "" {
			addr = self.Addr()
		}
		return transport.NewTCPTransport(addr), nil
	default:
		return nil, fmt.Errorf("unknown transport kind %q", cfg.TransportKind)
	}
}

// nodeRunner is implemented by *routing.Node so serveNode can shut it
// down the same way serveComponents shuts down a serverRunner.
type nodeRunner interface {
	Close() error
}

// serveNode starts the HTTP status server and blocks until ctx is
// cancelled, then shuts down both the HTTP server and the node.
// Mirrors the teacher's serveComponents gather/wait/shutdown shape.
func serveNode(ctx context.Context, node nodeRunner, httpSrv *http.Server, shutdownTimeout time.Duration) {
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("status server error: %v", err)
		}
	}()

	log.Println("node started successfully")
	log.Println("  /status  - routing table, neighbor liveness, uptime")
	log.Println("  /health  - liveness probe")
	log.Println("  /metrics - Prometheus metrics")

	<-ctx.Done()

	slog.Info("shutting down node...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down status server: %v", err)
	}
	if err := node.Close(); err != nil {
		log.Printf("error closing node: %v", err)
	}

	slog.Info("node stopped")
}
