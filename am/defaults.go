package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultDatabasePath         = "twitgraph.db"
	DefaultDistributionCapacity = 1024
	DefaultDistributionPolicy   = "drop_oldest"
	DefaultMaxAncestryDepth     = 64
	DefaultATProtoHost          = "https://bsky.social"
	DefaultPollIntervalSeconds  = 60
	DefaultRequestsPerMinute    = 30
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("distribution.capacity", DefaultDistributionCapacity)
	v.SetDefault("distribution.policy", DefaultDistributionPolicy)

	v.SetDefault("persist.max_ancestry_depth", DefaultMaxAncestryDepth)
	v.SetDefault("persist.resolve_places", true)

	v.SetDefault("atproto.host", DefaultATProtoHost)
	v.SetDefault("atproto.poll_interval_seconds", DefaultPollIntervalSeconds)
	v.SetDefault("atproto.requests_per_minute", DefaultRequestsPerMinute) // well under the PDS limit

	v.SetDefault("dump.file", "")
	v.SetDefault("dump.interval_seconds", 0)

	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "TWITGRAPH_DATABASE_PATH")

	v.BindEnv("atproto.identifier", "TWITGRAPH_ATPROTO_IDENTIFIER")
	v.BindEnv("atproto.app_password", "TWITGRAPH_ATPROTO_APP_PASSWORD")
}

// Defaults returns a Config holding only default values
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always unmarshal.
		panic(err)
	}
	return cfg
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// PollInterval returns the Bluesky poll interval
func (c *Config) PollInterval() time.Duration {
	if c.ATProto.PollIntervalSeconds <= 0 {
		return DefaultPollIntervalSeconds * time.Second
	}
	return time.Duration(c.ATProto.PollIntervalSeconds) * time.Second
}

// DumpInterval returns the periodic dump interval, zero when disabled
func (c *Config) DumpInterval() time.Duration {
	if c.Dump.File == "" || c.Dump.IntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Dump.IntervalSeconds) * time.Second
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Distribution: {Capacity: %d, Policy: %s}, Persist: {MaxAncestryDepth: %d}}",
		c.Database.Path, c.Distribution.Capacity, c.Distribution.Policy, c.Persist.MaxAncestryDepth)
}
