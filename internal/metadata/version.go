// Package metadata reads the markmap-cli package descriptor.
package metadata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	PackageName     = "markmap-cli"
	FallbackVersion = "1.0.0"
)

// ReadVersion looks for node_modules/markmap-cli/package.json starting at
// each dir and walking up to the filesystem root, the way node resolves a
// package. The first descriptor found decides the result.
func ReadVersion(dirs []string) (string, bool) {
	for _, dir := range dirs {
		path, ok := findDescriptor(dir)
		if !ok {
			continue
		}
		return versionFromFile(path)
	}
	return "", false
}

func findDescriptor(dir string) (string, bool) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", false
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, "node_modules", PackageName, "package.json")
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}

func versionFromFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !gjson.ValidBytes(data) {
		return "", false
	}
	res := gjson.GetBytes(data, "version")
	if res.Type != gjson.String {
		return "", false
	}
	v := strings.TrimSpace(res.Str)
	if v == "" {
		return "", false
	}
	return v, true
}
