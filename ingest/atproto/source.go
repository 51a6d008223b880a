// Package atproto reads messages from a Bluesky home timeline.
package atproto

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/model"
	"github.com/teranos/twitgraph/sym"
)

// Defaults for Config fields left at zero.
const (
	DefaultHost              = "https://bsky.social"
	DefaultPollInterval      = time.Minute
	DefaultRequestsPerMinute = 30
	DefaultPageSize          = 50
)

// seenTTL bounds how long a post id is remembered between polls.
const seenTTL = 24 * time.Hour

// Config configures a Source.
type Config struct {
	PollInterval      time.Duration
	RequestsPerMinute int
	PageSize          int64
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = DefaultPageSize
	}
	return c
}

type refresher interface {
	Refresh(ctx context.Context) error
}

// Source polls a timeline and emits posts it has not emitted before, oldest
// first. It implements ingest.Source.
type Source struct {
	timeline Timeline
	cfg      Config
	limiter  *rate.Limiter
	seen     *gocache.Cache
	logger   *zap.SugaredLogger
}

// NewSource creates a timeline poller.
func NewSource(t Timeline, cfg Config, log *zap.SugaredLogger) *Source {
	cfg = cfg.withDefaults()
	return &Source{
		timeline: t,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1),
		seen:     gocache.New(seenTTL, time.Hour),
		logger:   logger.OrNop(log),
	}
}

// Run polls until ctx is cancelled. Failed polls are logged and retried on
// the next tick.
func (s *Source) Run(ctx context.Context, emit func(*model.Message) error) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if err := s.Poll(ctx, emit); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warnw("Timeline poll failed", logger.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll fetches one page and emits the new posts in it.
func (s *Source) Poll(ctx context.Context, emit func(*model.Message) error) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	out, err := s.timeline.Timeline(ctx, "", s.cfg.PageSize)
	if err != nil {
		r, ok := s.timeline.(refresher)
		if !ok {
			return err
		}
		s.logger.Debugw("Refreshing session after failed poll", logger.FieldError, err)
		if rerr := r.Refresh(ctx); rerr != nil {
			return err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		if out, err = s.timeline.Timeline(ctx, "", s.cfg.PageSize); err != nil {
			return err
		}
	}

	// Timelines are newest first.
	emitted := 0
	for i := len(out.Feed) - 1; i >= 0; i-- {
		msg, err := FeedMessage(out.Feed[i])
		if err != nil {
			s.logger.Warnw("Skipping unmappable timeline entry", logger.FieldError, err)
			continue
		}
		if _, dup := s.seen.Get(msg.ID); dup {
			continue
		}
		if err := emit(msg); err != nil {
			return err
		}
		s.seen.SetDefault(msg.ID, struct{}{})
		emitted++
	}
	s.logger.Debugw("Timeline polled",
		logger.FieldCount, emitted,
		logger.FieldSymbol, sym.IX)
	return nil
}
