// Package config loads tprlog configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// TPRLOG_* environment variables. Command-line flags override all three in
// the CLI layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvLogRoot  = "TPRLOG_LOG_ROOT"
	EnvDataDir  = "TPRLOG_DATA_DIR"
	EnvLogLevel = "TPRLOG_LOG_LEVEL"
)

// DefaultConfigName is the config file looked up under the user config dir.
const DefaultConfigName = "config.yaml"

const appDir = "tprlog"

// Config holds tprlog settings.
type Config struct {
	// LogRoot is the directory searched for log artifacts.
	LogRoot string `yaml:"logRoot"`

	// DataDir is where extracted replay sets are persisted.
	DataDir string `yaml:"dataDir"`

	// LogLevel is the minimum level for diagnostic output
	// (debug, info, warn, error).
	LogLevel string `yaml:"logLevel"`
}

// Default returns the built-in defaults. The log root intentionally has no
// default; extraction requires one from config, env, or flag.
func Default() Config {
	return Config{
		DataDir:  defaultDataDir(),
		LogLevel: "info",
	}
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appDir)
	}
	return filepath.Join(base, appDir)
}

// DefaultPath returns the default config file path, or "" when the user
// config dir is unavailable.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appDir, DefaultConfigName)
}

// Load builds a Config from defaults, the file at path (skipped when path
// is "" or the file does not exist), and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No file is fine; defaults and env apply.
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvLogRoot); v != "" {
		cfg.LogRoot = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
