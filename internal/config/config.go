// Package config loads node configuration: either the flag-driven
// --id/--proto/--names/--topo surface or a YAML config file, adapted
// from the teacher's internal/cli loadConfig shape (gopkg.in/yaml.v3,
// os.Open + yaml.NewDecoder, defaults applied after decode).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okdaichi/meshroute/internal/transport"
	"github.com/okdaichi/meshroute/internal/wire"
)

// Config is the fully resolved configuration for one node process,
// whichever surface (flags or YAML) produced it.
type Config struct {
	NodeID string
	Proto  wire.Proto

	TransportKind string // "tcp" or "redis"
	ListenAddr    string // for tcp: host:port to bind
	Redis         RedisConfig

	NamesPath string
	TopoPath  string

	HelloEvery time.Duration
	LSPEvery   time.Duration
	DVEvery    time.Duration
	TTLDefault int

	Observability ObservabilityConfig

	StatusAddr string // HTTP addr for /health, /status, /metrics
	StatePath  string // path to persist LSDB state across restarts; empty disables persistence
}

// RedisConfig mirrors transport.RedisConfig's YAML shape.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Section  string `yaml:"section"`
	Topo     string `yaml:"topo"`
}

// ObservabilityConfig mirrors observability.Config's YAML shape.
type ObservabilityConfig struct {
	Service   string `yaml:"service"`
	Metrics   bool   `yaml:"metrics"`
	TraceAddr string `yaml:"trace_addr"`
	LogAddr   string `yaml:"log_addr"`
}

// yamlFile is the on-disk shape for the config.yaml alternative to the
// --names/--topo flag surface, per SPEC_FULL.md §6.
type yamlFile struct {
	Node struct {
		ID    string `yaml:"id"`
		Proto string `yaml:"proto"`
	} `yaml:"node"`
	Transport struct {
		Kind  string `yaml:"kind"`
		Redis struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			Section  string `yaml:"section"`
			Topo     string `yaml:"topo"`
		} `yaml:"redis"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"transport"`
	Names string `yaml:"names"`
	Topo  string `yaml:"topo"`
	Timers struct {
		HelloEverySec int `yaml:"hello_every_sec"`
		LSPEverySec   int `yaml:"lsp_every_sec"`
		DVEverySec    int `yaml:"dv_every_sec"`
	} `yaml:"timers"`
	Observability struct {
		Service   string `yaml:"service"`
		Metrics   bool   `yaml:"metrics"`
		TraceAddr string `yaml:"trace_addr"`
	} `yaml:"observability"`
	StatusAddr string `yaml:"status_addr"`
	StatePath  string `yaml:"state_path"`
}

// LoadYAML reads and decodes the config.yaml alternative to the flag
// surface. Only node.proto (lsr) and transport.kind (tcp) get defaults
// here; other fields left out of the file stay empty rather than
// taking the flag defaults.
func LoadYAML(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	var raw yamlFile
	if err := yaml.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	if raw.Node.ID == "" {
		return nil, fmt.Errorf("config: node.id is required")
	}
	proto := wire.Proto(raw.Node.Proto)
	if proto == "" {
		proto = wire.ProtoLSR
	}

	cfg := &Config{
		NodeID:        raw.Node.ID,
		Proto:         proto,
		TransportKind: raw.Transport.Kind,
		ListenAddr:    raw.Transport.ListenAddr,
		Redis: RedisConfig{
			Host:     raw.Transport.Redis.Host,
			Port:     raw.Transport.Redis.Port,
			Password: raw.Transport.Redis.Password,
			Section:  raw.Transport.Redis.Section,
			Topo:     raw.Transport.Redis.Topo,
		},
		NamesPath: raw.Names,
		TopoPath:  raw.Topo,
		Observability: ObservabilityConfig{
			Service:   raw.Observability.Service,
			Metrics:   raw.Observability.Metrics,
			TraceAddr: raw.Observability.TraceAddr,
		},
		StatusAddr: raw.StatusAddr,
		StatePath:  raw.StatePath,
	}
	if raw.Timers.HelloEverySec > 0 {
		cfg.HelloEvery = time.Duration(raw.Timers.HelloEverySec) * time.Second
	}
	if raw.Timers.LSPEverySec > 0 {
		cfg.LSPEvery = time.Duration(raw.Timers.LSPEverySec) * time.Second
	}
	if raw.Timers.DVEverySec > 0 {
		cfg.DVEvery = time.Duration(raw.Timers.DVEverySec) * time.Second
	}
	if cfg.TransportKind == "" {
		cfg.TransportKind = "tcp"
	}

	return cfg, nil
}

// RedisTransportConfig converts the YAML Redis block to the shape
// transport.NewRedisTransport expects, filling in the node id as the
// channel-naming NODE component.
func (c RedisConfig) RedisTransportConfig(nodeID string) transport.RedisConfig {
	return transport.RedisConfig{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		Section:  c.Section,
		Topo:     c.Topo,
		Node:     nodeID,
	}
}
