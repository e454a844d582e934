package delegate

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
)

var execCommandContext = exec.CommandContext
var execLookPath = exec.LookPath

const stderrTailLimit = 8 << 10

type processResult struct {
	ExitCode int
	LastLine string
	Err      error
}

// runProcess starts bin and waits for it. The returned error is non-nil only
// when the process could not be started; a non-zero exit is reported in
// processResult.
func runProcess(ctx context.Context, bin string, args []string, streams Streams) (processResult, error) {
	tail := &tailBuffer{limit: stderrTailLimit}
	cmd := execCommandContext(ctx, bin, args...)
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = io.MultiWriter(streams.stderr(), tail)

	if err := cmd.Start(); err != nil {
		return processResult{}, err
	}
	waitErr := cmd.Wait()

	res := processResult{LastLine: tail.LastLine()}
	if waitErr != nil {
		res.Err = waitErr
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
	}
	return res, nil
}

// failureMessage picks what the delegate said last, else the wait error.
func (r processResult) failureMessage() string {
	if r.LastLine != "" {
		return r.LastLine
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return "unknown failure"
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) LastLine() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := strings.Split(strings.ReplaceAll(string(t.buf), "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
