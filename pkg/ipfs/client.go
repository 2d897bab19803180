// Package ipfs is a client for an IPFS-style content-addressed blob API.
package ipfs

import (
	"log/slog"
	"strings"
	"time"

	"resty.dev/v3"
)

type Config struct {
	// APIURL is the base of the add/cat HTTP API.
	APIURL string
	// GatewayURL is the base public retrieval URLs are built from.
	GatewayURL string
	// MediaDir receives advisory local working copies of uploaded content.
	MediaDir string

	Logger *slog.Logger

	ResponseMiddlewares []resty.ResponseMiddleware
}

type Client struct {
	client     *resty.Client
	gatewayURL string
	mediaDir   string
	logger     *slog.Logger
}

func NewClient(cfg Config) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         2 * time.Second,
		IdleConnTimeout:       10 * time.Second,
		TLSHandshakeTimeout:   2 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	})

	client.SetBaseURL(strings.TrimRight(cfg.APIURL, "/"))

	for _, m := range cfg.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client:     client,
		gatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		mediaDir:   cfg.MediaDir,
		logger:     logger.With("component", "ipfs.Client"),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}
