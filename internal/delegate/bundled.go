package delegate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	bundledLoadLabel = "Failed to execute markmap"
	bundledExecLabel = "Markmap execution error"

	// SyntheticArg fills the script slot of the child's process.argv so the
	// bundled CLI sees the real arguments from argv[2] on.
	SyntheticArg = "markmap"

	// loaderExitCode is what the loader exits with when require() fails.
	loaderExitCode = 70
)

// Bundled runs a pre-bundled CommonJS markmap build through node and awaits
// its exported main().
type Bundled struct {
	NodePath   string
	BundlePath string
	Streams    Streams
}

func NewBundled(nodePath, bundlePath string, streams Streams) *Bundled {
	return &Bundled{NodePath: nodePath, BundlePath: bundlePath, Streams: streams}
}

func (b *Bundled) Name() string {
	return StrategyBundled
}

func (b *Bundled) Execute(ctx context.Context, args []string) error {
	bundle, err := filepath.Abs(strings.TrimSpace(b.BundlePath))
	if err != nil || strings.TrimSpace(b.BundlePath) == "" {
		return &LoadError{Label: bundledLoadLabel, Err: fmt.Errorf("invalid bundle path %q", b.BundlePath)}
	}
	if _, err := os.Stat(bundle); err != nil {
		return &LoadError{Label: bundledLoadLabel, Err: fmt.Errorf("bundle not found: %s", bundle)}
	}

	bin := strings.TrimSpace(b.NodePath)
	if bin == "" {
		bin = "node"
	}
	resolved, err := execLookPath(bin)
	if err != nil {
		return &LoadError{Label: bundledLoadLabel, Err: fmt.Errorf("node runtime not found (%s): %w", bin, err)}
	}

	script, err := loaderScript(bundle)
	if err != nil {
		return &LoadError{Label: bundledLoadLabel, Err: err}
	}

	nodeArgs := append([]string{"-e", script}, BundledArgs(args)...)
	res, err := runProcess(ctx, resolved, nodeArgs, b.Streams)
	if err != nil {
		return &LoadError{Label: bundledLoadLabel, Err: err}
	}
	switch res.ExitCode {
	case 0:
		return nil
	case loaderExitCode:
		return &LoadError{Label: bundledLoadLabel, Err: errors.New(res.failureMessage())}
	default:
		return &ExecError{Label: bundledExecLabel, Message: res.failureMessage(), ExitCode: res.ExitCode, Err: res.Err}
	}
}

// BundledArgs returns args preceded by SyntheticArg. args is not modified.
func BundledArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	out = append(out, SyntheticArg)
	return append(out, args...)
}

func loaderScript(bundle string) (string, error) {
	quoted, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("encode bundle path: %w", err)
	}
	var b strings.Builder
	b.WriteString("const describe = (e) => (e && e.message) ? e.message : String(e);\n")
	b.WriteString("let main;\n")
	b.WriteString("try {\n")
	fmt.Fprintf(&b, "  ({ main } = require(%s));\n", quoted)
	b.WriteString("  if (typeof main !== 'function') throw new Error('bundle does not export main()');\n")
	b.WriteString("} catch (e) {\n")
	b.WriteString("  console.error(describe(e));\n")
	fmt.Fprintf(&b, "  process.exit(%d);\n", loaderExitCode)
	b.WriteString("}\n")
	b.WriteString("Promise.resolve().then(() => main()).catch((e) => {\n")
	b.WriteString("  console.error(describe(e));\n")
	b.WriteString("  process.exit(1);\n")
	b.WriteString("});\n")
	return b.String(), nil
}
