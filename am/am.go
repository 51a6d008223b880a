// Package am holds twitgraph's configuration: TOML files merged by Viper
// with environment overrides under the TWITGRAPH_ prefix.
package am

// Config represents the twitgraph configuration
type Config struct {
	Database     DatabaseConfig     `mapstructure:"database" toml:"database"`
	Distribution DistributionConfig `mapstructure:"distribution" toml:"distribution"`
	Persist      PersistConfig      `mapstructure:"persist" toml:"persist"`
	ATProto      ATProtoConfig      `mapstructure:"atproto" toml:"atproto"`
	Dump         DumpConfig         `mapstructure:"dump" toml:"dump"`
	Log          LogConfig          `mapstructure:"log" toml:"log"`
}

// DatabaseConfig configures the SQLite graph store
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// DistributionConfig configures the queue that forwards newly stored
// assertions to downstream consumers.
type DistributionConfig struct {
	Capacity int    `mapstructure:"capacity" toml:"capacity"` // fixed at startup
	Policy   string `mapstructure:"policy" toml:"policy"`     // drop_oldest | drop_most_recent; reloadable
}

// PersistConfig configures the cascade persister
type PersistConfig struct {
	MaxAncestryDepth int  `mapstructure:"max_ancestry_depth" toml:"max_ancestry_depth"`
	ResolvePlaces    bool `mapstructure:"resolve_places" toml:"resolve_places"`
}

// ATProtoConfig configures the Bluesky timeline source
type ATProtoConfig struct {
	Host                string `mapstructure:"host" toml:"host"`
	Identifier          string `mapstructure:"identifier" toml:"identifier"`
	AppPassword         string `mapstructure:"app_password" toml:"app_password,omitempty"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds" toml:"poll_interval_seconds"`
	RequestsPerMinute   int    `mapstructure:"requests_per_minute" toml:"requests_per_minute"`
}

// DumpConfig configures the periodic N-Quads dump written while ingesting.
// An empty file or zero interval disables it; a .gz suffix compresses.
type DumpConfig struct {
	File            string `mapstructure:"file" toml:"file"`
	IntervalSeconds int    `mapstructure:"interval_seconds" toml:"interval_seconds"`
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
