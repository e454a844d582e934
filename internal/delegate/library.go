package delegate

import (
	"context"
	"fmt"
	"strings"
)

const (
	libraryLoadLabel = "Failed to load markmap-cli"
	libraryExecLabel = "Error running markmap"
)

// Library runs the markmap-cli entry point with the arguments unchanged.
type Library struct {
	MarkmapPath string
	Streams     Streams
}

func NewLibrary(markmapPath string, streams Streams) *Library {
	return &Library{MarkmapPath: markmapPath, Streams: streams}
}

func (l *Library) Name() string {
	return StrategyLibrary
}

func (l *Library) Execute(ctx context.Context, args []string) error {
	bin := strings.TrimSpace(l.MarkmapPath)
	if bin == "" {
		bin = "markmap"
	}
	resolved, err := execLookPath(bin)
	if err != nil {
		return &LoadError{Label: libraryLoadLabel, Err: fmt.Errorf("markmap-cli not found (%s): %w", bin, err)}
	}

	res, err := runProcess(ctx, resolved, append([]string{}, args...), l.Streams)
	if err != nil {
		return &LoadError{Label: libraryLoadLabel, Err: err}
	}
	if res.ExitCode != 0 {
		return &ExecError{Label: libraryExecLabel, Message: res.failureMessage(), ExitCode: res.ExitCode, Err: res.Err}
	}
	return nil
}
