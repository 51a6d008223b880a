package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/twitgraph/errors"
)

// EnvPrefix prefixes environment overrides, e.g. TWITGRAPH_DATABASE_PATH
const EnvPrefix = "TWITGRAPH"

// SystemConfigPath is the lowest-precedence config file
const SystemConfigPath = "/etc/twitgraph/am.toml"

var (
	globalConfig  *Config
	viperInstance *viper.Viper
	loadMu        sync.Mutex

	// ConfigSources records which file supplied each key during the last
	// Load. Keys absent from it came from defaults.
	ConfigSources = map[string]SourceInfo{}
)

// Load reads the twitgraph configuration using Viper
func Load() (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViperLocked()

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	loadMu.Lock()
	defer loadMu.Unlock()
	return initViperLocked()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Defaults, but no environment binding for an explicit file
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.WithDetailf(err, "Config file: %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	loadMu.Lock()
	defer loadMu.Unlock()
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViperLocked initializes Viper with configuration sources and defaults.
// Callers hold loadMu.
func initViperLocked() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)

	SetDefaults(v)

	// system -> user -> project, then env vars on top
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// UserConfigDir returns ~/.twitgraph
func UserConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".twitgraph")
}

// FindProjectConfig searches for am.toml by walking up from the working
// directory. Returns "" when none is found.
func FindProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		amPath := filepath.Join(dir, "am.toml")
		if _, err := os.Stat(amPath); err == nil {
			return amPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

type configFile struct {
	path   string
	source ConfigSource
}

// configFiles lists existing config files, lowest precedence first
func configFiles() []configFile {
	candidates := []configFile{{SystemConfigPath, SourceSystem}}
	if userDir := UserConfigDir(); userDir != "" {
		candidates = append(candidates, configFile{filepath.Join(userDir, "am.toml"), SourceUser})
	}
	if project := FindProjectConfig(); project != "" {
		candidates = append(candidates, configFile{project, SourceProject})
	}

	var out []configFile
	seen := map[string]bool{}
	for _, c := range candidates {
		abs, err := filepath.Abs(c.path)
		if err != nil {
			abs = c.path
		}
		// A project search from $HOME finds the user file again.
		if seen[abs] {
			continue
		}
		if _, err := os.Stat(c.path); err == nil {
			seen[abs] = true
			out = append(out, c)
		}
	}
	return out
}

// mergeConfigFiles merges configuration files in precedence order and
// records the source of every key it sets.
// Precedence (lowest to highest): system < user < project < env vars
func mergeConfigFiles(v *viper.Viper) {
	for _, cf := range configFiles() {
		tempViper := viper.New()
		tempViper.SetConfigFile(cf.path)
		tempViper.SetConfigType("toml")

		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}
		// MergeConfigMap keeps file values below env vars in Viper's precedence
		if err := v.MergeConfigMap(tempViper.AllSettings()); err != nil {
			continue
		}
		for _, key := range tempViper.AllKeys() {
			ConfigSources[key] = SourceInfo{Source: cf.source, Path: cf.path}
		}
	}
}

// ActiveConfigFile returns the highest-precedence config file in effect,
// or "" when running on defaults.
func ActiveConfigFile() string {
	files := configFiles()
	if len(files) == 0 {
		return ""
	}
	return files[len(files)-1].path
}

// GetDatabasePath returns the configured database path
func GetDatabasePath() (string, error) {
	config, err := Load()
	if err != nil {
		return "", err
	}
	return config.GetDatabasePath(), nil
}
