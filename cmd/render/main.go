// Command render turns a report saved as JSON into the same single-page PDF
// the service exports, without starting the HTTP server.
//
// Usage:
//
//	go run ./cmd/render -i laudo.json -o laudo.pdf
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

const version = "0.1.0"

// shutdownSignals cancel the command context. SIGKILL cannot be caught.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(shutdownSignals...),
	); err != nil {
		os.Exit(1)
	}
}
