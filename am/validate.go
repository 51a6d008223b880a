package am

import (
	"github.com/teranos/twitgraph/distribute"
	"github.com/teranos/twitgraph/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Capacity is fixed when the queue is built, so zero is not "unbounded"
	if c.Distribution.Capacity <= 0 {
		return errors.Newf("distribution.capacity must be > 0, got %d", c.Distribution.Capacity)
	}
	if _, err := distribute.ParsePolicy(c.Distribution.Policy); err != nil {
		return errors.Wrap(err, "distribution.policy")
	}

	// 0 = persist the message without following its ancestry
	if c.Persist.MaxAncestryDepth < 0 {
		return errors.Newf("persist.max_ancestry_depth must be >= 0, got %d", c.Persist.MaxAncestryDepth)
	}

	if c.ATProto.PollIntervalSeconds < 0 {
		return errors.Newf("atproto.poll_interval_seconds must be >= 0, got %d", c.ATProto.PollIntervalSeconds)
	}
	if c.ATProto.RequestsPerMinute < 0 {
		return errors.Newf("atproto.requests_per_minute must be >= 0, got %d", c.ATProto.RequestsPerMinute)
	}

	// 0 = no periodic dump
	if c.Dump.IntervalSeconds < 0 {
		return errors.Newf("dump.interval_seconds must be >= 0, got %d", c.Dump.IntervalSeconds)
	}

	return nil
}
