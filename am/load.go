package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

// SystemConfigPath is the lowest-precedence config file
var SystemConfigPath = "/etc/atomspace/am.toml"

// ConfigFileName is the name searched for in the user and project locations
const ConfigFileName = "am.toml"

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper

	// ConfigSources records which file last set each key during loading
	ConfigSources = map[string]SourceInfo{}
)

// Load reads the configuration once and caches it
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads defaults plus a single file, ignoring every other source
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// Reset clears the cached configuration
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper builds the Viper instance; callers hold mu
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)

	SetDefaults(v)
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// UserConfigPath returns ~/.atomspace/am.toml, or "" without a home directory
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".atomspace", ConfigFileName)
}

// findProjectConfig walks up from the working directory to the first am.toml
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// configFiles lists the existing config files, lowest precedence first
func configFiles() []struct {
	source ConfigSource
	path   string
} {
	candidates := []struct {
		source ConfigSource
		path   string
	}{
		{SourceSystem, SystemConfigPath},
		{SourceUser, UserConfigPath()},
		{SourceProject, findProjectConfig()},
	}

	out := candidates[:0]
	seen := map[string]bool{}
	for _, c := range candidates {
		if c.path == "" || seen[c.path] {
			continue
		}
		if _, err := os.Stat(c.path); err != nil {
			continue
		}
		seen[c.path] = true
		out = append(out, c)
	}
	return out
}

// mergeConfigFiles merges the config files into v's config layer, so
// environment variables still take precedence.
func mergeConfigFiles(v *viper.Viper) {
	for _, file := range configFiles() {
		tmp := viper.New()
		tmp.SetConfigFile(file.path)
		tmp.SetConfigType("toml")

		if err := tmp.ReadInConfig(); err != nil {
			logger.Warnw("Skipping unreadable config file", logger.FieldPath, file.path, logger.FieldError, err)
			continue
		}
		if err := v.MergeConfigMap(tmp.AllSettings()); err != nil {
			logger.Warnw("Skipping unmergeable config file", logger.FieldPath, file.path, logger.FieldError, err)
			continue
		}
		for _, key := range tmp.AllKeys() {
			ConfigSources[key] = SourceInfo{Source: file.source, Path: file.path}
		}
		logger.Debugw("Config file merged", logger.FieldPath, file.path, "source", file.source)
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return GetViper().GetString(key)
}

func envKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
