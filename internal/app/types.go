package app

import (
	"io"

	"markmap-wrapper/internal/delegate"
)

const VersionFlag = "--version"

type Options struct {
	Args []string
	// NewDelegate is called only on the delegation path.
	NewDelegate func() (delegate.Delegate, error)
	// PackageDirs are the roots searched for markmap-cli's package.json.
	PackageDirs     []string
	FallbackVersion string
	Stdout          io.Writer
}

type Path string

const (
	PathVersion  Path = "version"
	PathDelegate Path = "delegate"
)

type Result struct {
	Path Path
	// Version and VersionFound are set on the version path.
	Version      string
	VersionFound bool
	// Strategy is the delegate that ran on the delegation path.
	Strategy string
}
