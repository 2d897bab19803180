package config

import "time"

type Config struct {
	DatabaseURL string `flag:"database-url"`
	ListenAddr  string `flag:"listen-addr"`
	MetricsAddr string `flag:"metrics-addr"`
	LogLevel    string `flag:"log-level"`

	IPFSAPIURL     string `flag:"ipfs-api-url"`
	IPFSGatewayURL string `flag:"ipfs-gateway-url"`
	MediaDir       string `flag:"media-dir"`

	FeedPageSize      int           `flag:"feed-page-size"`
	FederationLimit   int           `flag:"federation-limit"`
	FederationWorkers int           `flag:"federation-workers"`
	FederationTimeout time.Duration `flag:"federation-timeout"`
}
