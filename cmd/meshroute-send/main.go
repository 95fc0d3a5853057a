// Command meshroute-send is the standalone data-sender CLI: it builds
// one DATA frame and writes it to a running node's TCP listener, per
// spec.md §6 ("HOST PORT SRC DST PROTO PAYLOAD…"). Grounded on the
// teacher's flag-light, single-purpose cmd/qumo-relay/main.go shape,
// reduced to the one-shot job this tool does.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okdaichi/meshroute/internal/wire"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 6 {
		fmt.Fprintln(os.Stderr, "usage: meshroute-send HOST PORT SRC DST PROTO PAYLOAD...")
		return 1
	}

	host := args[0]
	port, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid port %q: %v\n", args[1], err)
		return 1
	}
	src, dst, proto := args[2], args[3], args[4]
	payload := strings.Join(args[5:], " ")

	f := &wire.Frame{
		ID:      wire.NewID(),
		Type:    wire.TypeData,
		Proto:   wire.Proto(proto),
		Src:     src,
		Dst:     dst,
		TTL:     8,
		TS:      time.Now(),
		Payload: []byte(strconv.Quote(payload)),
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: dial %s: %v\n", addr, err)
		return 1
	}
	defer conn.Close()

	if err := wire.WriteFrame(conn, f); err != nil {
		fmt.Fprintf(os.Stderr, "error: write frame: %v\n", err)
		return 1
	}

	return 0
}
