package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okdaichi/meshroute/internal/config"
)

func TestIsTransportErrorDistinguishesFromPlainErrors(t *testing.T) {
	require.True(t, IsTransportError(&TransportError{Err: errors.New("bind: address in use")}))
	require.False(t, IsTransportError(errors.New("missing id")))
}

func TestResolveConfigRequiresIDWithoutConfigFile(t *testing.T) {
	_, err := resolveConfig("", nodeFlags{proto: "lsr"})
	require.Error(t, err)
}

func TestResolveConfigFromFlags(t *testing.T) {
	cfg, err := resolveConfig("", nodeFlags{
		id: "A", proto: "lsr", namesPath: "names.txt", topoPath: "topo.txt",
		transportKind: "tcp", statusAddr: ":8080", metrics: true, statePath: "/tmp/a.lsdb.json",
	})
	require.NoError(t, err)
	require.Equal(t, "A", cfg.NodeID)
	require.Equal(t, "tcp", cfg.TransportKind)
	require.Equal(t, "meshroute-A", cfg.Observability.Service)
	require.Equal(t, "/tmp/a.lsdb.json", cfg.StatePath)
}

func TestBuildTransportTCP(t *testing.T) {
	cfg := &config.Config{TransportKind: "tcp"}
	self := config.NamesEntry{ID: "A", Host: "127.0.0.1", Port: 9001}

	tr, err := buildTransport(cfg, self)
	require.NoError(t, err)
	require.NotNil(t, tr)
}

func TestBuildTransportRedis(t *testing.T) {
	cfg := &config.Config{TransportKind: "redis", Redis: config.RedisConfig{Host: "localhost", Port: 6379}}
	self := config.NamesEntry{ID: "A", Host: "127.0.0.1", Port: 9001}

	tr, err := buildTransport(cfg, self)
	require.NoError(t, err)
	require.NotNil(t, tr)
}

func TestBuildTransportUnknownKindErrors(t *testing.T) {
	cfg := &config.Config{TransportKind: "carrier-pigeon"}
	self := config.NamesEntry{ID: "A", Host: "127.0.0.1", Port: 9001}

	_, err := buildTransport(cfg, self)
	require.Error(t, err)
}
