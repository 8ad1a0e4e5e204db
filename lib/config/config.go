// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/gustavscirulis/snapgrid-sub001/lib/capability"
	"github.com/gustavscirulis/snapgrid-sub001/lib/netutil"
	"github.com/gustavscirulis/snapgrid-sub001/lib/service"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "SNAPGRID_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development builds.
	Development Environment = "development"
	// Production is for packaged releases.
	Production Environment = "production"
)

// MaxPayloadLimit is the largest payload ceiling the bridge accepts
// in configuration. Requests are buffered whole in memory.
const MaxPayloadLimit = 1 << 30

// Config is the master configuration.
type Config struct {
	// Environment identifies the deployment type (development, production).
	Environment Environment `yaml:"environment"`

	// Storage configures the board's storage directory.
	Storage StorageConfig `yaml:"storage"`

	// Bridge configures the access bridge socket.
	Bridge BridgeConfig `yaml:"bridge"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Storage *StorageConfig `yaml:"storage,omitempty"`
	Bridge  *BridgeConfig  `yaml:"bridge,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// StorageConfig configures the storage directory.
type StorageConfig struct {
	// Dir is the storage root. Empty means the platform default
	// (storagedir.Default).
	Dir string `yaml:"dir"`
}

// BridgeConfig configures the access bridge.
type BridgeConfig struct {
	// SocketPath is the Unix socket the bridge listens on.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/snapgrid-bridge.sock
	SocketPath string `yaml:"socket_path"`

	// MaxPayloadBytes is the largest image payload a save may carry.
	// Default: 64 MiB
	MaxPayloadBytes int64 `yaml:"max_payload_bytes"`

	// Grants lists the action patterns the caller may invoke. See
	// package capability for the pattern syntax.
	// Default: ["**"]
	Grants []string `yaml:"grants"`

	// RelayListen, if set, starts a TCP relay on this loopback address
	// that forwards to SocketPath. Off by default. Any local user can
	// connect to the relay, so it does not inherit the socket's
	// owner-only permissions; Grants is the only restriction on what
	// relayed callers may do.
	RelayListen string `yaml:"relay_listen"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info (development), warn (production)
	Level string `yaml:"level"`
}

// Default returns the default configuration. Paths are unexpanded;
// Resolve and LoadFile expand them.
func Default() *Config {
	return &Config{
		Environment: Development,
		Bridge: BridgeConfig{
			SocketPath:      "${XDG_RUNTIME_DIR:-/tmp}/snapgrid-bridge.sock",
			MaxPayloadBytes: 64 << 20,
			Grants:          []string{"**"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the SNAPGRID_CONFIG environment
// variable. It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your snapgrid.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values; the only expansion performed is
// ${HOME}, ${SNAPGRID_ROOT}, and similar path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.finish()
	return cfg, nil
}

// Resolve loads path if it is non-empty, else the file named by
// SNAPGRID_CONFIG if set, else returns the expanded defaults.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	cfg := Default()
	cfg.finish()
	return cfg, nil
}

func (c *Config) finish() {
	c.applyEnvironmentOverrides()
	c.expandVariables()
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Storage != nil && overrides.Storage.Dir != "" {
		c.Storage.Dir = overrides.Storage.Dir
	}

	if overrides.Bridge != nil {
		if overrides.Bridge.SocketPath != "" {
			c.Bridge.SocketPath = overrides.Bridge.SocketPath
		}
		if overrides.Bridge.MaxPayloadBytes != 0 {
			c.Bridge.MaxPayloadBytes = overrides.Bridge.MaxPayloadBytes
		}
		// A present grants list replaces the base list; it never merges.
		if overrides.Bridge.Grants != nil {
			c.Bridge.Grants = overrides.Bridge.Grants
		}
		if overrides.Bridge.RelayListen != "" {
			c.Bridge.RelayListen = overrides.Bridge.RelayListen
		}
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Storage.Dir = expandVars(c.Storage.Dir, vars)
	vars["SNAPGRID_ROOT"] = c.Storage.Dir

	c.Bridge.SocketPath = expandVars(c.Bridge.SocketPath, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Provided vars
// take precedence over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}

	if c.Storage.Dir != "" && !filepath.IsAbs(c.Storage.Dir) {
		errs = append(errs, fmt.Errorf("storage.dir must be absolute, got %q", c.Storage.Dir))
	}

	if c.Bridge.SocketPath == "" {
		errs = append(errs, fmt.Errorf("bridge.socket_path is required"))
	} else if !filepath.IsAbs(c.Bridge.SocketPath) {
		errs = append(errs, fmt.Errorf("bridge.socket_path must be absolute, got %q", c.Bridge.SocketPath))
	}

	if c.Bridge.MaxPayloadBytes <= 0 || c.Bridge.MaxPayloadBytes > MaxPayloadLimit {
		errs = append(errs, fmt.Errorf("bridge.max_payload_bytes must be between 1 and %d, got %d",
			MaxPayloadLimit, c.Bridge.MaxPayloadBytes))
	}

	if err := capability.Validate(c.Bridge.Grants); err != nil {
		errs = append(errs, fmt.Errorf("bridge.grants: %w", err))
	}

	if c.Bridge.RelayListen != "" {
		if err := netutil.CheckLoopbackAddress(c.Bridge.RelayListen); err != nil {
			errs = append(errs, fmt.Errorf("bridge.relay_listen: %w", err))
		}
	}

	if _, err := service.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
