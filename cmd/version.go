package cmd

import "fmt"

// Build identity of the wrapper itself, set with -ldflags -X. The --version
// flag reports markmap-cli's version, not this one.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func versionText() string {
	return fmt.Sprintf("markmap-wrapper %s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
