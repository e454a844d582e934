// Package config loads forwarder settings from MARKMAP_WRAPPER_* environment
// variables and an optional markmap-wrapper.yaml next to the executable.
// Command-line arguments are never consulted: they all belong to markmap.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "MARKMAP_WRAPPER"
	FileName  = "markmap-wrapper"
)

type Config struct {
	Strategy    string   `mapstructure:"strategy"`
	NodePath    string   `mapstructure:"node"`
	BundlePath  string   `mapstructure:"bundle"`
	MarkmapPath string   `mapstructure:"bin"`
	PackageDirs []string `mapstructure:"-"`
	Trace       bool     `mapstructure:"trace"`
}

// Load reads configuration. exeDir is where the config file and the default
// bundle are looked up; it may be empty.
func Load(exeDir string) (*Config, error) {
	v := newViper(exeDir)
	if err := loadConfigFile(v, exeDir); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// LoadEnv is Load without the config file.
func LoadEnv(exeDir string) (*Config, error) {
	return unmarshal(newViper(exeDir))
}

func newViper(exeDir string) *viper.Viper {
	v := viper.New()
	setDefaults(v, exeDir)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	bindEnvVars(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.PackageDirs = splitDirs(v.GetString("package_dirs"))
	return &cfg, nil
}

func setDefaults(v *viper.Viper, exeDir string) {
	v.SetDefault("strategy", "")
	v.SetDefault("node", "node")
	v.SetDefault("bundle", filepath.Join(exeDir, "bundled", "index.js"))
	v.SetDefault("bin", "markmap")
	v.SetDefault("package_dirs", "")
	v.SetDefault("trace", false)
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("strategy", EnvPrefix+"_STRATEGY")
	_ = v.BindEnv("node", EnvPrefix+"_NODE")
	_ = v.BindEnv("bundle", EnvPrefix+"_BUNDLE")
	_ = v.BindEnv("bin", EnvPrefix+"_BIN")
	_ = v.BindEnv("package_dirs", EnvPrefix+"_PACKAGE_DIRS")
	_ = v.BindEnv("trace", EnvPrefix+"_TRACE")
}

func loadConfigFile(v *viper.Viper, exeDir string) error {
	if strings.TrimSpace(exeDir) == "" {
		return nil
	}
	v.AddConfigPath(exeDir)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read %s.yaml: %w", FileName, err)
	}
	return nil
}

func splitDirs(raw string) []string {
	out := make([]string, 0)
	for _, dir := range filepath.SplitList(raw) {
		dir = strings.TrimSpace(dir)
		if dir != "" {
			out = append(out, dir)
		}
	}
	return out
}
