package delegate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

func TestBundledArgsPrependsSyntheticToken(t *testing.T) {
	in := []string{"input.md", "-o", "out.html"}
	got := BundledArgs(in)
	require.Equal(t, []string{"markmap", "input.md", "-o", "out.html"}, got)
	require.Equal(t, []string{"input.md", "-o", "out.html"}, in)

	require.Equal(t, []string{"markmap"}, BundledArgs(nil))
}

func TestLibraryPassesArgsVerbatim(t *testing.T) {
	tmp := t.TempDir()
	record := filepath.Join(tmp, "args.txt")
	bin := writeScript(t, tmp, "markmap", "printf '%s\\n' \"$@\" > \""+record+"\"\nexit 0\n")

	stdout := bytes.NewBuffer(nil)
	stderr := bytes.NewBuffer(nil)
	d := NewLibrary(bin, Streams{Stdout: stdout, Stderr: stderr})
	err := d.Execute(context.Background(), []string{"input.md", "-o", "out.html", "--no-open"})
	require.NoError(t, err)
	require.Empty(t, stderr.String())

	bs, err := os.ReadFile(record)
	require.NoError(t, err)
	require.Equal(t, "input.md\n-o\nout.html\n--no-open\n", string(bs))
}

func TestLibraryReportedFailure(t *testing.T) {
	tmp := t.TempDir()
	bin := writeScript(t, tmp, "markmap", "echo 'reading bad.md' 1>&2\necho 'file not found' 1>&2\nexit 1\n")

	stderr := bytes.NewBuffer(nil)
	d := NewLibrary(bin, Streams{Stderr: stderr})
	err := d.Execute(context.Background(), []string{"bad.md"})

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, "Error running markmap", execErr.Label)
	require.Equal(t, "file not found", execErr.Message)
	require.Equal(t, 1, execErr.ExitCode)
	require.Equal(t, "Error running markmap: file not found", err.Error())
	require.Contains(t, stderr.String(), "file not found")
}

func TestLibraryFailureWithoutStderrUsesExitStatus(t *testing.T) {
	tmp := t.TempDir()
	bin := writeScript(t, tmp, "markmap", "exit 3\n")

	err := NewLibrary(bin, Streams{}).Execute(context.Background(), nil)
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, 3, execErr.ExitCode)
	require.Contains(t, execErr.Message, "exit status 3")
}

func TestLibraryMissingBinaryIsLoadFailure(t *testing.T) {
	orig := execCommandContext
	defer func() { execCommandContext = orig }()
	called := false
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		called = true
		return exec.CommandContext(ctx, "sh", "-c", "exit 0")
	}

	d := NewLibrary(filepath.Join(t.TempDir(), "missing-markmap"), Streams{})
	err := d.Execute(context.Background(), []string{"input.md"})

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, "Failed to load markmap-cli", loadErr.Label)
	require.True(t, strings.HasPrefix(err.Error(), "Failed to load markmap-cli: "))
	require.False(t, called)
}

func TestLibraryUnstartableBinaryIsLoadFailure(t *testing.T) {
	tmp := t.TempDir()
	bin := filepath.Join(tmp, "markmap")
	require.NoError(t, os.WriteFile(bin, []byte{0x00, 0x01, 0x02, 0x03}, 0o755))

	err := NewLibrary(bin, Streams{}).Execute(context.Background(), nil)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestBundledBuildsNodeCommand(t *testing.T) {
	origCmd, origLook := execCommandContext, execLookPath
	defer func() { execCommandContext, execLookPath = origCmd, origLook }()

	execLookPath = func(file string) (string, error) {
		return "/opt/node/bin/" + file, nil
	}
	var gotName string
	var gotArgs []string
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName = name
		gotArgs = append([]string{}, args...)
		return exec.CommandContext(ctx, "sh", "-c", "exit 0")
	}

	tmp := t.TempDir()
	bundle := filepath.Join(tmp, "bundled", "index.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(bundle), 0o755))
	require.NoError(t, os.WriteFile(bundle, []byte("exports.main = async () => {};"), 0o644))

	d := NewBundled("", bundle, Streams{})
	err := d.Execute(context.Background(), []string{"input.md", "-o", "out.html"})
	require.NoError(t, err)
	require.Equal(t, "/opt/node/bin/node", gotName)
	require.Len(t, gotArgs, 6)
	require.Equal(t, "-e", gotArgs[0])
	require.Contains(t, gotArgs[1], "require(\""+bundle+"\")")
	require.Equal(t, []string{"markmap", "input.md", "-o", "out.html"}, gotArgs[2:])
}

func TestBundledMissingBundleIsLoadFailure(t *testing.T) {
	orig := execCommandContext
	defer func() { execCommandContext = orig }()
	called := false
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		called = true
		return exec.CommandContext(ctx, "sh", "-c", "exit 0")
	}

	d := NewBundled("node", filepath.Join(t.TempDir(), "bundled", "index.js"), Streams{})
	err := d.Execute(context.Background(), []string{"input.md"})

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.Equal(t, "Failed to execute markmap", loadErr.Label)
	require.Contains(t, err.Error(), "bundle not found")
	require.False(t, called)
}

func TestBundledExitCodes(t *testing.T) {
	cases := []struct {
		name      string
		script    string
		wantLoad  bool
		wantLabel string
	}{
		{name: "require throws", script: "echo \"Cannot find module 'd3'\" 1>&2; exit 70", wantLoad: true, wantLabel: "Failed to execute markmap"},
		{name: "main rejects", script: "echo 'file not found' 1>&2; exit 1", wantLabel: "Markmap execution error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			origCmd, origLook := execCommandContext, execLookPath
			defer func() { execCommandContext, execLookPath = origCmd, origLook }()
			execLookPath = func(file string) (string, error) { return file, nil }
			execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
				return exec.CommandContext(ctx, "sh", "-c", tc.script)
			}

			tmp := t.TempDir()
			bundle := filepath.Join(tmp, "index.js")
			require.NoError(t, os.WriteFile(bundle, []byte(""), 0o644))

			stderr := bytes.NewBuffer(nil)
			err := NewBundled("node", bundle, Streams{Stderr: stderr}).Execute(context.Background(), []string{"bad.md"})
			require.Error(t, err)
			require.True(t, strings.HasPrefix(err.Error(), tc.wantLabel+": "))

			var loadErr *LoadError
			var execErr *ExecError
			if tc.wantLoad {
				require.True(t, errors.As(err, &loadErr))
				require.Contains(t, err.Error(), "Cannot find module")
				return
			}
			require.True(t, errors.As(err, &execErr))
			require.Equal(t, "file not found", execErr.Message)
			require.Contains(t, stderr.String(), "file not found")
		})
	}
}

func TestLoaderScriptQuotesBundlePath(t *testing.T) {
	script, err := loaderScript(`/tmp/it's "here"/index.js`)
	require.NoError(t, err)
	require.Contains(t, script, `require("/tmp/it's \"here\"/index.js")`)
	require.Contains(t, script, "process.exit(70)")
	require.Contains(t, script, "main()")
}

func TestNewSelectsStrategy(t *testing.T) {
	d, err := New(Options{})
	require.NoError(t, err)
	require.Equal(t, DefaultStrategy(), d.Name())

	d, err = New(Options{Strategy: "library", MarkmapPath: "markmap"})
	require.NoError(t, err)
	require.IsType(t, &Library{}, d)

	d, err = New(Options{Strategy: " BUNDLED ", BundlePath: "bundled/index.js"})
	require.NoError(t, err)
	require.IsType(t, &Bundled{}, d)

	_, err = New(Options{Strategy: "pkg"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown delegate strategy")
}

func TestTailBufferKeepsLastLine(t *testing.T) {
	tb := &tailBuffer{limit: 16}
	_, _ = tb.Write([]byte("first line that is long\n"))
	_, _ = tb.Write([]byte("last\r\n\n  "))
	require.Equal(t, "last", tb.LastLine())
	require.LessOrEqual(t, len(tb.buf), 16)

	require.Equal(t, "", (&tailBuffer{limit: 4}).LastLine())
}
