// Package atproto is a read-mostly client for AT-Proto-compatible servers.
// One client is bound to exactly one server base URL and optionally one
// bearer credential; all operations share the same authenticated session.
// The client performs no automatic retry and no automatic re-auth: token
// refresh is a caller-invoked operation.
package atproto

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"resty.dev/v3"
)

const (
	getProfilePath     = "/xrpc/app.bsky.actor.getProfile"
	getAuthorFeedPath  = "/xrpc/app.bsky.feed.getAuthorFeed"
	refreshSessionPath = "/xrpc/com.atproto.server.refreshSession"

	defaultProfileCacheTTL = time.Hour
)

type Config struct {
	// ServerURL is the remote server base, e.g. https://pds.example.com.
	ServerURL string
	// AccessToken, when set, is attached as a bearer credential on every
	// request.
	AccessToken string

	// ProfileCacheTTL overrides the 1h profile cache expiry. Used by
	// tests.
	ProfileCacheTTL time.Duration

	Logger *slog.Logger

	ResponseMiddlewares []resty.ResponseMiddleware
}

type Client struct {
	client   *resty.Client
	logger   *slog.Logger
	profiles *profileCache
}

func NewClient(cfg Config) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         2 * time.Second,
		IdleConnTimeout:       10 * time.Second,
		TLSHandshakeTimeout:   2 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	})

	client.SetBaseURL(strings.TrimRight(cfg.ServerURL, "/"))

	if cfg.AccessToken != "" {
		client.SetAuthToken(cfg.AccessToken)
	}

	for _, m := range cfg.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	ttl := cfg.ProfileCacheTTL
	if ttl <= 0 {
		ttl = defaultProfileCacheTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client:   client,
		logger:   logger.With("component", "atproto.Client", "server", cfg.ServerURL),
		profiles: newProfileCache(ttl),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}
