package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"markmap-wrapper/internal/app"
	"markmap-wrapper/internal/config"
	"markmap-wrapper/internal/delegate"
	"markmap-wrapper/internal/metadata"
)

func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(os.Args[1:])
	return root.Execute()
}

// NewRootCmd builds a command that hands every argument to markmap untouched.
// Flag parsing is disabled so --help, -o and friends reach the delegate.
func NewRootCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:                "markmap-wrapper [args...]",
		Short:              "Forward arguments to markmap-cli",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               runForward(stdout, stderr),
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

func runForward(stdout io.Writer, stderr io.Writer) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		exeDir := executableDir()
		cfg, err := loadConfig(exeDir, args)
		if err != nil {
			return err
		}
		trace := newTracer(stderr, cfg.Trace)
		trace("info", "forward_start", "forwarding arguments", map[string]any{
			"args":     args,
			"strategy": strategyName(cfg.Strategy),
			"wrapper":  versionText(),
		})

		res, err := app.Run(cmd.Context(), app.Options{
			Args: args,
			NewDelegate: func() (delegate.Delegate, error) {
				return delegate.New(delegate.Options{
					Strategy:    cfg.Strategy,
					NodePath:    cfg.NodePath,
					BundlePath:  cfg.BundlePath,
					MarkmapPath: cfg.MarkmapPath,
					Streams: delegate.Streams{
						Stdin:  cmd.InOrStdin(),
						Stdout: stdout,
						Stderr: stderr,
					},
				})
			},
			PackageDirs:     packageDirs(cfg, exeDir),
			FallbackVersion: metadata.FallbackVersion,
			Stdout:          stdout,
		})
		if err != nil {
			if !isDelegateFailure(err) {
				return err
			}
			fmt.Fprintln(stderr, err.Error())
			trace("error", "delegate_failed", "markmap failed", map[string]any{
				"strategy": res.Strategy,
				"error":    err.Error(),
			})
			return fmt.Errorf("%w: %w", errDelegateFailed, err)
		}

		if res.Path == app.PathVersion {
			trace("info", "version_info", "markmap-cli version", map[string]any{
				"version":  res.Version,
				"fallback": !res.VersionFound,
			})
		}
		return nil
	}
}

// loadConfig lets --version through a broken config file; only the
// environment is consulted on that path.
func loadConfig(exeDir string, args []string) (*config.Config, error) {
	cfg, err := config.Load(exeDir)
	if err == nil || !app.HasVersionFlag(args) {
		return cfg, err
	}
	return config.LoadEnv(exeDir)
}

func isDelegateFailure(err error) bool {
	var loadErr *delegate.LoadError
	var execErr *delegate.ExecError
	return errors.As(err, &loadErr) || errors.As(err, &execErr)
}

func strategyName(configured string) string {
	if configured == "" {
		return delegate.DefaultStrategy()
	}
	return configured
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// packageDirs lists where markmap-cli's package.json may live: configured
// roots first, then the executable's directory, then the working directory.
func packageDirs(cfg *config.Config, exeDir string) []string {
	dirs := append([]string{}, cfg.PackageDirs...)
	if exeDir != "" {
		dirs = append(dirs, exeDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	return dirs
}
