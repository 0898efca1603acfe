// Package am loads the atomspace configuration ("I am").
//
// Sources, lowest precedence first: built-in defaults,
// /etc/atomspace/am.toml, ~/.atomspace/am.toml, the nearest am.toml found
// walking up from the working directory, then ATOMSPACE_* environment
// variables.
package am

import "fmt"

// Config is the atomspace configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database" json:"database"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics" toml:"metrics" json:"metrics"`
	Graph    GraphConfig    `mapstructure:"graph" toml:"graph" json:"graph"`
}

// DatabaseConfig configures the SQLite atom store
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path"`
}

// LogConfig configures the global logger
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json"`
	Level string `mapstructure:"level" toml:"level" json:"level"` // debug, info, warn, error
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	Addr    string `mapstructure:"addr" toml:"addr" json:"addr"`
}

// GraphConfig bounds neighbourhood graphs
type GraphConfig struct {
	MaxDepth int `mapstructure:"max_depth" toml:"max_depth" json:"max_depth"`
	MaxNodes int `mapstructure:"max_nodes" toml:"max_nodes" json:"max_nodes"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// EnvPrefix prefixes every environment override, e.g. ATOMSPACE_DATABASE_PATH
const EnvPrefix = "ATOMSPACE"

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Log: {JSON: %t, Level: %s}, Metrics: {Enabled: %t}}",
		c.Database.Path, c.Log.JSON, c.Log.Level, c.Metrics.Enabled)
}
