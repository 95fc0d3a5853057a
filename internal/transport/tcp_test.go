package transport

import (
	"context"
	"testing"
	"time"

	"github.com/okdaichi/meshroute/internal/wire"
)

func TestTCPTransportSendAndReceive(t *testing.T) {
	recv := NewTCPTransport("127.0.0.1:0")
	got := make(chan *wire.Frame, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := recv.Start(ctx, func(f *wire.Frame) { got <- f }); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer recv.Close()

	addr := recv.ln.Addr().String()

	send := NewTCPTransport("127.0.0.1:0")
	if err := send.Start(ctx, func(*wire.Frame) {}); err != nil {
		t.Fatalf("start sender: %v", err)
	}
	defer send.Close()

	f := &wire.Frame{ID: "1", Type: wire.TypeHello, Proto: wire.ProtoLSR, From: "A", To: "B"}
	if err := send.SendTo(ctx, addr, f); err != nil {
		t.Fatalf("sendto: %v", err)
	}

	select {
	case out := <-got:
		if out.ID != "1" {
			t.Fatalf("unexpected frame: %+v", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestTCPTransportSendToUnreachableIsSilent(t *testing.T) {
	send := NewTCPTransport("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := send.Start(ctx, func(*wire.Frame) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer send.Close()

	err := send.SendTo(ctx, "127.0.0.1:1", &wire.Frame{ID: "1", Type: wire.TypeHello, Proto: wire.ProtoLSR})
	if err != nil {
		t.Fatalf("expected silent drop, got error: %v", err)
	}
}
