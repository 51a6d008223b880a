package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance without user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultDistributionCapacity, cfg.Distribution.Capacity)
	assert.Equal(t, "drop_oldest", cfg.Distribution.Policy)
	assert.Equal(t, DefaultMaxAncestryDepth, cfg.Persist.MaxAncestryDepth)
	assert.True(t, cfg.Persist.ResolvePlaces)
	assert.Equal(t, DefaultATProtoHost, cfg.ATProto.Host)
	assert.Equal(t, DefaultRequestsPerMinute, cfg.ATProto.RequestsPerMinute)
	assert.False(t, cfg.Log.JSON)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func(mutate func(*Config)) Config {
		cfg := *Defaults()
		mutate(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", valid(func(*Config) {}), false},
		{"zero capacity is invalid", valid(func(c *Config) { c.Distribution.Capacity = 0 }), true},
		{"negative capacity is invalid", valid(func(c *Config) { c.Distribution.Capacity = -1 }), true},
		{"drop_most_recent is valid", valid(func(c *Config) { c.Distribution.Policy = "drop_most_recent" }), false},
		{"unknown policy is invalid", valid(func(c *Config) { c.Distribution.Policy = "drop_random" }), true},
		{"zero ancestry depth is valid", valid(func(c *Config) { c.Persist.MaxAncestryDepth = 0 }), false},
		{"negative ancestry depth is invalid", valid(func(c *Config) { c.Persist.MaxAncestryDepth = -1 }), true},
		{"negative poll interval is invalid", valid(func(c *Config) { c.ATProto.PollIntervalSeconds = -5 }), true},
		{"negative rate limit is invalid", valid(func(c *Config) { c.ATProto.RequestsPerMinute = -1 }), true},
		{"zero dump interval is valid", valid(func(c *Config) { c.Dump.IntervalSeconds = 0 }), false},
		{"negative dump interval is invalid", valid(func(c *Config) { c.Dump.IntervalSeconds = -1 }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIntervals(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, time.Minute, cfg.PollInterval())
	assert.Zero(t, cfg.DumpInterval())

	cfg.Dump.File = "graph.nq.gz"
	assert.Zero(t, cfg.DumpInterval(), "no interval means no periodic dump")
	cfg.Dump.IntervalSeconds = 30
	assert.Equal(t, 30*time.Second, cfg.DumpInterval())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "/var/lib/twitgraph/graph.db"

[distribution]
capacity = 16
policy = "drop_most_recent"

[atproto]
identifier = "alice.bsky.social"
`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/twitgraph/graph.db", cfg.Database.Path)
	assert.Equal(t, 16, cfg.Distribution.Capacity)
	assert.Equal(t, "drop_most_recent", cfg.Distribution.Policy)
	assert.Equal(t, "alice.bsky.social", cfg.ATProto.Identifier)
	// Unset keys keep their defaults
	assert.Equal(t, DefaultMaxAncestryDepth, cfg.Persist.MaxAncestryDepth)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"database.path", DefaultDatabasePath},
		{"distribution.capacity", DefaultDistributionCapacity},
		{"distribution.policy", DefaultDistributionPolicy},
		{"persist.max_ancestry_depth", DefaultMaxAncestryDepth},
		{"persist.resolve_places", true},
		{"atproto.poll_interval_seconds", DefaultPollIntervalSeconds},
		{"dump.interval_seconds", 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.Get(tt.key))
		})
	}
}

func TestBindSensitiveEnvVars(t *testing.T) {
	t.Setenv("TWITGRAPH_ATPROTO_APP_PASSWORD", "xxxx-xxxx-xxxx-xxxx")

	v := viper.New()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	assert.Equal(t, "xxxx-xxxx-xxxx-xxxx", cfg.ATProto.AppPassword)
}
