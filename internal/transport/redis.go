package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/okdaichi/meshroute/internal/wire"
)

// RedisConfig configures the Redis pub/sub transport variant. Field
// names mirror the REDIS_HOST/REDIS_PORT/REDIS_PWD/SECTION/TOPO/NODE
// environment variables.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	Section  string
	Topo     string
	Node     string
}

// channel returns the {SECTION}.{TOPO}.{NODE_ID} convention for a
// given node id. Callers outside the package use the exported
// ChannelOf wrapper below.
func (c RedisConfig) channel(nodeID string) string {
	return fmt.Sprintf("%s.%s.%s", c.Section, c.Topo, nodeID)
}

// RedisTransport realizes Transport over a Redis pub/sub bus: each
// node subscribes to its own channel and publishes directly to a
// peer's channel, addressed by channel name rather than host:port.
// Grounded on the go-redis client usage in the pack's klaytn manifest;
// the subscribe/publish split itself follows the teacher's
// accept-loop/dial-per-send split in TCPTransport, just swapping the
// listener for a subscription.
type RedisTransport struct {
	cfg    RedisConfig
	client *redis.Client
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

var _ Transport = (*RedisTransport)(nil)

func NewRedisTransport(cfg RedisConfig) *RedisTransport {
	return &RedisTransport{cfg: cfg}
}

func (t *RedisTransport) Start(ctx context.Context, onMessage func(*wire.Frame)) error {
	t.client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port),
		Password: t.cfg.Password,
	})

	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis transport: ping %s:%d: %w", t.cfg.Host, t.cfg.Port, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	own := t.cfg.channel(t.cfg.Node)
	t.pubsub = t.client.Subscribe(runCtx, own)
	if _, err := t.pubsub.Receive(runCtx); err != nil {
		cancel()
		return fmt.Errorf("redis transport: subscribe %s: %w", own, err)
	}

	go t.receiveLoop(runCtx, onMessage)

	return nil
}

func (t *RedisTransport) receiveLoop(ctx context.Context, onMessage func(*wire.Frame)) {
	ch := t.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			f, err := wire.Decode([]byte(msg.Payload))
			if err != nil {
				slog.Debug("redis transport: dropping malformed frame", "error", err)
				continue
			}
			onMessage(f)
		}
	}
}

// SendTo publishes to the channel named addr (a peer's
// {SECTION}.{TOPO}.{NODE_ID} channel, not a host:port pair).
func (t *RedisTransport) SendTo(ctx context.Context, addr string, f *wire.Frame) error {
	line, err := wire.Encode(f)
	if err != nil {
		return err
	}
	if err := t.client.Publish(ctx, addr, line).Err(); err != nil {
		slog.Debug("redis transport: publish failed, dropping", "channel", addr, "error", err)
	}
	return nil
}

func (t *RedisTransport) Close() error {
	if t.cancel != nil {
		t.cancel()
	}
	if t.pubsub != nil {
		_ = t.pubsub.Close()
	}
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// ChannelOf exposes the channel-naming convention so a Node built with
// a RedisTransport can resolve a neighbor id to its subscribe channel
// without duplicating the {SECTION}.{TOPO}.{NODE_ID} format string.
func (c RedisConfig) ChannelOf(neighborID string) string {
	return c.channel(neighborID)
}
