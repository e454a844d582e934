package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"markmap-wrapper/internal/metadata"
)

// Run either prints the markmap-cli version or hands args to the delegate and
// waits for its single outcome. Delegate failures come back as
// *delegate.LoadError or *delegate.ExecError.
func Run(ctx context.Context, opts Options) (Result, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	if HasVersionFlag(opts.Args) {
		fallback := strings.TrimSpace(opts.FallbackVersion)
		if fallback == "" {
			fallback = metadata.FallbackVersion
		}
		version, found := metadata.ReadVersion(opts.PackageDirs)
		if !found {
			version = fallback
		}
		fmt.Fprintln(stdout, version)
		return Result{Path: PathVersion, Version: version, VersionFound: found}, nil
	}

	if opts.NewDelegate == nil {
		return Result{Path: PathDelegate}, fmt.Errorf("no delegate configured")
	}
	d, err := opts.NewDelegate()
	if err != nil {
		return Result{Path: PathDelegate}, err
	}

	res := Result{Path: PathDelegate, Strategy: d.Name()}
	args := slices.Clone(opts.Args)
	if args == nil {
		args = []string{}
	}
	if err := d.Execute(ctx, args); err != nil {
		return res, err
	}
	return res, nil
}

func HasVersionFlag(args []string) bool {
	return slices.Contains(args, VersionFlag)
}
