// Package delegate runs the wrapped markmap CLI as a child process.
//
// Two strategies reach the same entry point: Bundled loads a pre-bundled
// CommonJS build through node and calls its main(); Library runs the
// markmap-cli executable directly. The default is fixed at build time by the
// "bundled" build tag.
package delegate

import (
	"context"
	"io"
)

type Delegate interface {
	// Name returns the strategy name.
	Name() string
	// Execute runs the delegate once with args and blocks until it settles.
	// A nil error means success; failures are *LoadError or *ExecError.
	Execute(ctx context.Context, args []string) error
}

// Streams wires the child process to the forwarder's standard streams.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (s Streams) stderr() io.Writer {
	if s.Stderr == nil {
		return io.Discard
	}
	return s.Stderr
}
