package am

import (
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultDatabasePath = "atomspace.db"
	DefaultLogLevel     = "info"
	DefaultMetricsAddr  = "127.0.0.1:9464"
	DefaultMaxDepth     = 3
	DefaultMaxNodes     = 500
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", DefaultLogLevel)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", DefaultMetricsAddr)

	v.SetDefault("graph.max_depth", DefaultMaxDepth)
	v.SetDefault("graph.max_nodes", DefaultMaxNodes)
}

// BindEnvVars binds every known key to its ATOMSPACE_* variable so
// Unmarshal sees overrides even for keys no file mentions.
func BindEnvVars(v *viper.Viper) {
	for _, key := range Keys() {
		v.BindEnv(key, envKey(key))
	}
}

// Keys lists every configuration key in dot notation
func Keys() []string {
	return []string{
		"database.path",
		"log.json",
		"log.level",
		"metrics.enabled",
		"metrics.addr",
		"graph.max_depth",
		"graph.max_nodes",
	}
}
