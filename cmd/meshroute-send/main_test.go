package main

import (
	"bufio"
	"net"
	"strconv"
	"testing"

	"github.com/okdaichi/meshroute/internal/wire"
)

func TestRunSendsDataFrame(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan *wire.Frame, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		if scanner.Scan() {
			f, err := wire.Decode(scanner.Bytes())
			if err == nil {
				received <- f
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	code := run([]string{addr.IP.String(), strconv.Itoa(addr.Port), "A", "C", "lsr", "hello", "world"})
	if code != 0 {
		t.Fatalf("run returned %d, want 0", code)
	}

	f := <-received
	if f.Type != wire.TypeData || f.Src != "A" || f.Dst != "C" || f.TTL != 8 {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestRunRejectsTooFewArgs(t *testing.T) {
	if code := run([]string{"host", "9001"}); code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}

func TestRunRejectsBadPort(t *testing.T) {
	code := run([]string{"host", "not-a-port", "A", "C", "lsr", "hi"})
	if code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}
