//go:build bundled

package delegate

const defaultStrategy = StrategyBundled
