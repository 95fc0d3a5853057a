// Command meshroute starts one routing overlay node. Generalizes the
// teacher's cmd/qumo-relay/main.go flag-parse/load-config/run shape
// (and root main.go's subcommand-dispatch/os.Exit convention) to a
// single-command node runner with the spec's exit codes: 0 on normal
// shutdown, 1 on configuration error, 2 on transport bind failure.
package main

import (
	"fmt"
	"os"

	"github.com/okdaichi/meshroute/internal/cli"
	"github.com/okdaichi/meshroute/internal/version"
)

// runNode is overridable for unit-testing main's exit-code mapping.
var runNode = cli.RunNode

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 && (args[0] == "-version" || args[0] == "--version") {
		fmt.Println(version.Short())
		return 0
	}

	err := runNode(args)
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if cli.IsTransportError(err) {
		return 2
	}
	return 1
}
