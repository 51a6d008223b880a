package atproto

import (
	"context"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/internal/httpclient"
)

const requestTimeout = 30 * time.Second

// Timeline fetches one page of the authenticated account's home timeline.
type Timeline interface {
	Timeline(ctx context.Context, cursor string, limit int64) (*appbsky.FeedGetTimeline_Output, error)
}

// Client is a Timeline backed by an authenticated XRPC session.
type Client struct {
	xrpc *xrpc.Client
}

// Login authenticates with a PDS using an app password.
func Login(ctx context.Context, host, identifier, appPassword string) (*Client, error) {
	if identifier == "" || appPassword == "" {
		return nil, errors.NewInvalidRequestError("atproto identifier and app password are required")
	}
	client := &xrpc.Client{
		Host:   host,
		Client: httpclient.ForHost(host, requestTimeout).Client,
	}

	session, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: identifier,
		Password:   appPassword,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create session with PDS %s for %s", host, identifier)
	}

	client.Auth = &xrpc.AuthInfo{
		AccessJwt:  session.AccessJwt,
		RefreshJwt: session.RefreshJwt,
		Handle:     session.Handle,
		Did:        session.Did,
	}
	return &Client{xrpc: client}, nil
}

// Handle returns the handle the session was opened for.
func (c *Client) Handle() string {
	return c.xrpc.Auth.Handle
}

// Timeline implements Timeline.
func (c *Client) Timeline(ctx context.Context, cursor string, limit int64) (*appbsky.FeedGetTimeline_Output, error) {
	out, err := appbsky.FeedGetTimeline(ctx, c.xrpc, "", cursor, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get timeline from %s", c.xrpc.Host)
	}
	return out, nil
}

// Refresh exchanges the refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) error {
	if c.xrpc.Auth == nil {
		return errors.New("no auth session to refresh")
	}

	refreshClient := &xrpc.Client{
		Host:   c.xrpc.Host,
		Client: c.xrpc.Client,
		Auth:   &xrpc.AuthInfo{AccessJwt: c.xrpc.Auth.RefreshJwt},
	}
	session, err := comatproto.ServerRefreshSession(ctx, refreshClient)
	if err != nil {
		return errors.Wrapf(err, "failed to refresh session at %s", c.xrpc.Host)
	}

	c.xrpc.Auth.AccessJwt = session.AccessJwt
	c.xrpc.Auth.RefreshJwt = session.RefreshJwt
	c.xrpc.Auth.Handle = session.Handle
	c.xrpc.Auth.Did = session.Did
	return nil
}
