package delegate

import (
	"fmt"
	"strings"
)

const (
	StrategyBundled = "bundled"
	StrategyLibrary = "library"
)

// DefaultStrategy is the strategy compiled into this binary.
func DefaultStrategy() string {
	return defaultStrategy
}

type Options struct {
	Strategy    string
	NodePath    string
	BundlePath  string
	MarkmapPath string
	Streams     Streams
}

// New builds the delegate for opts.Strategy, or the build default when it is
// empty. Nothing is resolved or started here.
func New(opts Options) (Delegate, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Strategy))
	if name == "" {
		name = defaultStrategy
	}
	switch name {
	case StrategyBundled:
		return NewBundled(opts.NodePath, opts.BundlePath, opts.Streams), nil
	case StrategyLibrary:
		return NewLibrary(opts.MarkmapPath, opts.Streams), nil
	default:
		return nil, fmt.Errorf("unknown delegate strategy %q (want %q or %q)", opts.Strategy, StrategyBundled, StrategyLibrary)
	}
}
